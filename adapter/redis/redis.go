// Package redis publishes upload completion events on a Redis pub/sub
// channel, encoded as JSON or MessagePack.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pithecene-io/mpub/adapter"
)

// DefaultChannel is the default pub/sub channel name.
const DefaultChannel = "mpub:upload_completed"

// DefaultTimeout is the default per-publish timeout.
const DefaultTimeout = 5 * time.Second

// DefaultRetries is the default number of retry attempts.
const DefaultRetries = 3

// Encoding selects the payload format.
type Encoding string

const (
	// EncodingJSON publishes the event as JSON (default).
	EncodingJSON Encoding = "json"
	// EncodingMsgpack publishes the event as MessagePack.
	EncodingMsgpack Encoding = "msgpack"
)

// ParseEncoding parses an encoding name. Empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingMsgpack:
		return EncodingMsgpack, nil
	default:
		return "", fmt.Errorf("invalid redis encoding %q (valid: json, msgpack)", s)
	}
}

// Encode serializes the event in the given encoding.
func Encode(enc Encoding, event *adapter.UploadCompletedEvent) ([]byte, error) {
	switch enc {
	case EncodingMsgpack:
		return msgpack.Marshal(event)
	case EncodingJSON, "":
		return json.Marshal(event)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

// Config configures the Redis pub/sub adapter.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// Channel is the pub/sub channel name (default: mpub:upload_completed).
	Channel string
	// Encoding is the payload format (default json).
	Encoding Encoding
	// Timeout is the per-publish timeout (default 5s).
	Timeout time.Duration
	// Retries is the number of retry attempts on failure.
	Retries int
	// Backoff is the delay before the first retry (default 500ms).
	Backoff time.Duration
}

// Adapter publishes upload completion events via Redis PUBLISH.
type Adapter struct {
	config Config
	client *goredis.Client
}

// New creates a Redis pub/sub adapter from the given config.
func New(cfg Config) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis adapter requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis adapter: invalid URL: %w", err)
	}

	enc, err := ParseEncoding(string(cfg.Encoding))
	if err != nil {
		return nil, err
	}
	cfg.Encoding = enc
	if cfg.Channel == "" {
		cfg.Channel = DefaultChannel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = adapter.DefaultBackoff
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must be >= 0, got %d", cfg.Retries)
	}

	return &Adapter{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Publish sends the encoded event to the configured channel.
// Every failure is retried with exponential backoff.
func (a *Adapter) Publish(ctx context.Context, event *adapter.UploadCompletedEvent) error {
	body, err := Encode(a.config.Encoding, event)
	if err != nil {
		return fmt.Errorf("redis: encode event: %w", err)
	}

	var lastErr error
	attempts := 1 + a.config.Retries

	for i := range attempts {
		if err := adapter.Sleep(ctx, adapter.Backoff(a.config.Backoff, i)); err != nil {
			return fmt.Errorf("redis: context canceled: %w", err)
		}

		publishCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		lastErr = a.client.Publish(publishCtx, a.config.Channel, body).Err()
		cancel()

		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, goredis.ErrClosed) {
			break
		}
	}

	return fmt.Errorf("redis: failed after %d attempts: %w", attempts, lastErr)
}

// Close releases adapter resources.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// Verify Adapter implements the adapter interface.
var _ adapter.Adapter = (*Adapter)(nil)

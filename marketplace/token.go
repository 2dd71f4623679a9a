package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token with a nil error means "not logged in".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

// Token implements TokenSource.
func (t StaticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// TokenFile is the on-disk form of a saved access token.
type TokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Server    string    `json:"server,omitempty"`
}

// IsExpired returns true if the token has expired (with optional margin).
// A zero ExpiresAt never expires.
func (t *TokenFile) IsExpired(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// FileToken reads the token from a file on every call, so a token refreshed
// by another process is picked up. The file holds either a TokenFile JSON
// document or the bare token.
type FileToken struct {
	Path string
}

// Token implements TokenSource.
func (f FileToken) Token(context.Context) (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed, nil
	}

	var tf TokenFile
	if err := json.Unmarshal([]byte(trimmed), &tf); err != nil {
		return "", fmt.Errorf("parse token file %s: %w", f.Path, err)
	}
	if tf.IsExpired(30 * time.Second) {
		return "", fmt.Errorf("%w: token in %s expired at %s", ErrNotAuthenticated, f.Path, tf.ExpiresAt.Format(time.RFC3339))
	}
	return tf.Token, nil
}

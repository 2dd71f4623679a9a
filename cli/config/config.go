package config

import (
	"errors"
	"fmt"
	"time"
)

// Config represents an mpub.yaml configuration file.
// All values are optional and act as defaults for command flags.
// CLI flags always override config values.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Listing ListingConfig `yaml:"listing"`
	Archive ArchiveConfig `yaml:"archive"`
	S3      S3Config      `yaml:"s3"`
	Adapter AdapterConfig `yaml:"adapter"`
}

// APIConfig holds marketplace API settings.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Token is a bearer token. Takes precedence over TokenFile.
	Token string `yaml:"token"`
	// TokenFile holds a bare token or a JSON token document.
	TokenFile     string   `yaml:"token_file"`
	Timeout       Duration `yaml:"timeout"`
	UploadTimeout Duration `yaml:"upload_timeout"`
}

// ListingConfig holds listing defaults.
type ListingConfig struct {
	Category        string `yaml:"category"`
	CategoryMode    string `yaml:"category_mode"`
	FixedCategoryID int    `yaml:"fixed_category_id"`
	License         *int   `yaml:"license,omitempty"`
}

// ArchiveConfig holds archive limits.
type ArchiveConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// S3Config holds settings for s3:// inputs.
type S3Config struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// AdapterConfig holds completion adapter defaults.
type AdapterConfig struct {
	Type     string            `yaml:"type"`
	URL      string            `yaml:"url"`
	Channel  string            `yaml:"channel,omitempty"`
	Encoding string            `yaml:"encoding,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
	Timeout  Duration          `yaml:"timeout,omitempty"`
	Retries  *int              `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must not be negative: %q", s)
	}
	d.Duration = parsed
	return nil
}

// Validate checks values that have a closed set of options.
func (c *Config) Validate() error {
	var errs []error

	switch c.Listing.CategoryMode {
	case "", "resolved", "fixed":
	default:
		errs = append(errs, fmt.Errorf("listing.category_mode: invalid value %q (valid: resolved, fixed)", c.Listing.CategoryMode))
	}
	if c.Listing.FixedCategoryID < 0 {
		errs = append(errs, fmt.Errorf("listing.fixed_category_id: must be >= 0, got %d", c.Listing.FixedCategoryID))
	}
	if c.Archive.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("archive.max_bytes: must be >= 0, got %d", c.Archive.MaxBytes))
	}

	switch c.Adapter.Type {
	case "":
	case "webhook", "redis":
		if c.Adapter.URL == "" {
			errs = append(errs, fmt.Errorf("adapter.url: required for %s adapter", c.Adapter.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("adapter.type: invalid value %q (valid: webhook, redis)", c.Adapter.Type))
	}
	switch c.Adapter.Encoding {
	case "", "json", "msgpack":
	default:
		errs = append(errs, fmt.Errorf("adapter.encoding: invalid value %q (valid: json, msgpack)", c.Adapter.Encoding))
	}
	if c.Adapter.Retries != nil && *c.Adapter.Retries < 0 {
		errs = append(errs, fmt.Errorf("adapter.retries: must be >= 0, got %d", *c.Adapter.Retries))
	}

	return errors.Join(errs...)
}

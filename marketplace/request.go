package marketplace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// AuthMode selects how a request is authenticated.
type AuthMode int

const (
	// AuthNone sends no credentials.
	AuthNone AuthMode = iota
	// AuthOptional attaches a token when one is available.
	AuthOptional
	// AuthRequired fails with ErrNotAuthenticated when no token is available.
	AuthRequired
)

func (m AuthMode) String() string {
	switch m {
	case AuthNone:
		return "none"
	case AuthOptional:
		return "optional"
	case AuthRequired:
		return "required"
	default:
		return fmt.Sprintf("AuthMode(%d)", int(m))
	}
}

// RequestFactory builds requests against the marketplace API base.
// Implementations own credential handling.
type RequestFactory interface {
	NewRequest(ctx context.Context, method, path string, auth AuthMode, body io.Reader) (*http.Request, error)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Factory is the default RequestFactory: base URL plus bearer token.
type Factory struct {
	base      *url.URL
	tokens    TokenSource
	userAgent string
}

// NewFactory creates a Factory. tokens may be nil when only
// unauthenticated requests will be built.
func NewFactory(baseURL string, tokens TokenSource, userAgent string) (*Factory, error) {
	if baseURL == "" {
		return nil, errors.New("marketplace base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid marketplace base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("marketplace base URL must be http or https, got %q", baseURL)
	}
	return &Factory{base: u, tokens: tokens, userAgent: userAgent}, nil
}

// NewRequest implements RequestFactory.
func (f *Factory) NewRequest(ctx context.Context, method, path string, auth AuthMode, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, joinURL(f.base, path), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	if auth == AuthNone {
		return req, nil
	}

	var token string
	if f.tokens != nil {
		token, err = f.tokens.Token(ctx)
		if err != nil && auth == AuthRequired {
			return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
		}
	}
	if token == "" {
		if auth == AuthRequired {
			return nil, fmt.Errorf("%w: %s %s requires a token", ErrNotAuthenticated, method, path)
		}
		return req, nil
	}

	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

// Verify Factory implements the RequestFactory interface.
var _ RequestFactory = (*Factory)(nil)

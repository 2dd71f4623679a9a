package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mpub/cli/config"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/types"
)

// userAgent identifies mpub to the marketplace.
var userAgent = "mpub/" + types.Version

// apiChoice holds resolved API settings.
type apiChoice struct {
	baseURL   string
	token     string
	tokenFile string
	timeout   time.Duration
}

func resolveAPIChoice(c *cli.Context, cfg *config.Config) apiChoice {
	return apiChoice{
		baseURL:   resolveString(c, "api-url", cfg.API.BaseURL),
		token:     resolveString(c, "token", cfg.API.Token),
		tokenFile: resolveString(c, "token-file", cfg.API.TokenFile),
		timeout:   resolveDuration(c, "timeout", cfg.API.Timeout),
	}
}

// tokenSource returns the configured token source. A static token wins over
// a token file; nil means not logged in.
func (a apiChoice) tokenSource() marketplace.TokenSource {
	switch {
	case a.token != "":
		return marketplace.StaticToken(a.token)
	case a.tokenFile != "":
		return marketplace.FileToken{Path: a.tokenFile}
	default:
		return nil
	}
}

// newClient builds a marketplace client. Deadlines are applied per request
// by the caller, so the HTTP client carries none.
func newClient(a apiChoice) (*marketplace.Client, error) {
	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = marketplace.DefaultBaseURL
	}
	factory, err := marketplace.NewFactory(baseURL, a.tokenSource(), userAgent)
	if err != nil {
		return nil, fmt.Errorf("invalid --api-url: %w", err)
	}
	return marketplace.NewClient(factory, &http.Client{}), nil
}

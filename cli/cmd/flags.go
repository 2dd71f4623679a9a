// Package cmd provides CLI commands for the mpub binary.
package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mpub/cli/config"
)

// Shared output flags.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored output.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables the Bubble Tea progress view.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Show an interactive progress view (upload only)",
	}
)

// OutputFlags returns the flags shared by every command that renders a result.
// Includes --tui so that commands without a TUI can reject it explicitly.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		FormatFlag,
		NoColorFlag,
		TUIFlag,
	}
}

// APIFlags returns the flags that locate and authenticate against the API.
func APIFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to mpub.yaml config file",
		},
		&cli.StringFlag{
			Name:  "api-url",
			Usage: "Marketplace API base URL",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Bearer access token",
			EnvVars: []string{"MPUB_TOKEN"},
		},
		&cli.StringFlag{
			Name:  "token-file",
			Usage: "File holding the access token (bare or JSON)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Timeout for each category and inventory request",
		},
	}
}

// loadConfig loads --config when set. Without it an empty Config is returned.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return &config.Config{}, nil
	}
	return config.Load(path)
}

// resolveString returns the flag value when set on the command line,
// otherwise the config value, otherwise the flag default.
func resolveString(c *cli.Context, name, configured string) string {
	if c.IsSet(name) || configured == "" {
		return c.String(name)
	}
	return configured
}

// resolveInt is resolveString for ints. A nil configured value means unset.
func resolveInt(c *cli.Context, name string, configured *int) int {
	if c.IsSet(name) || configured == nil {
		return c.Int(name)
	}
	return *configured
}

// resolveInt64 is resolveString for int64 values where zero means unset.
func resolveInt64(c *cli.Context, name string, configured int64) int64 {
	if c.IsSet(name) || configured == 0 {
		return c.Int64(name)
	}
	return configured
}

// resolveBool returns true when either the flag or the config is true,
// unless the flag was explicitly set.
func resolveBool(c *cli.Context, name string, configured bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return configured || c.Bool(name)
}

// resolveDuration is resolveString for durations where zero means unset.
func resolveDuration(c *cli.Context, name string, configured config.Duration) time.Duration {
	if c.IsSet(name) || configured.Duration == 0 {
		return c.Duration(name)
	}
	return configured.Duration
}

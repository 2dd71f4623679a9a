package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mpub/cli/render"
	"github.com/pithecene-io/mpub/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command. It never contacts the API.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  OutputFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitInvalidInput)
		}

		r, err := render.NewRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), exitInvalidInput)
		}

		return r.Render(VersionResponse{
			Version: types.Version,
			Commit:  commit,
		})
	}
}

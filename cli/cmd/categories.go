package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mpub/cli/render"
	"github.com/pithecene-io/mpub/marketplace"
	"github.com/pithecene-io/mpub/session"
)

// CategoriesCommand returns the categories command, which lists the
// marketplace categories a listing can be filed under.
func CategoriesCommand() *cli.Command {
	return &cli.Command{
		Name:   "categories",
		Usage:  "List marketplace categories",
		Flags:  append(OutputFlags(), APIFlags()...),
		Action: categoriesAction,
	}
}

func categoriesAction(c *cli.Context) error {
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for categories command", exitInvalidInput)
	}

	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	choice := resolveAPIChoice(c, cfg)
	client, err := newClient(choice)
	if err != nil {
		return cli.Exit(err.Error(), exitInvalidInput)
	}

	timeout := choice.timeout
	if timeout <= 0 {
		timeout = session.DefaultRequestTimeout
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	cats, err := client.ListCategories(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("list categories: %v", err), exitFailed)
	}
	if cats == nil {
		cats = []marketplace.Category{}
	}
	return r.Render(cats)
}

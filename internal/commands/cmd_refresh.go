package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
)

type RefreshCmd struct {
	flags *Flags
	app   *dock.App
}

// NewRefreshCmd creates a new refresh command
func NewRefreshCmd(flags *Flags, app *dock.App) *RefreshCmd {
	return &RefreshCmd{flags: flags, app: app}
}

// Register adds the refresh command to the application
func (cmd *RefreshCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "refresh",
		Usage:     "Drop cached schemas and user lists",
		UsageText: "taskdock refresh",
		Description: `Clears the persistent side-cache. Schemas and the workspace member list
are refetched on the next command that needs them.`,
		Action: cmd.run,
	})

	return app
}

func (cmd *RefreshCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Service.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh caches: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, styles.Success.Render("Caches cleared"))
	return nil
}

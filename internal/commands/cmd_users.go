package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/pkg/iojson"
)

type UsersCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	jsonOutput bool
}

// NewUsersCmd creates a new users command
func NewUsersCmd(flags *Flags, app *dock.App) *UsersCmd {
	return &UsersCmd{flags: flags, app: app}
}

// Register adds the users command to the application
func (cmd *UsersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "users",
		Usage:     "List workspace members",
		UsageText: "taskdock users [--json]",
		Description: `Lists the workspace members available for 'set assignees'. The listing is
cached for a day; run 'taskdock refresh' to force a refetch.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UsersCmd) run(ctx context.Context, c *cli.Command) error {
	users, err := cmd.app.Service.Users(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	if len(users) == 0 {
		fmt.Fprintf(os.Stderr, "No workspace members found\n")
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, u := range users {
			if err := iojson.WriteLine(out, u); err != nil {
				return fmt.Errorf("encode user: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTYPE\tID")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", u.Name, u.Type, u.ID)
	}
	_ = w.Flush()

	return nil
}

package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/internal/remote"
)

type SetCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	tags      []string
	assignees []string
}

// NewSetCmd creates a new set command
func NewSetCmd(flags *Flags, app *dock.App) *SetCmd {
	return &SetCmd{flags: flags, app: app}
}

// Register adds the set command and its subcommands to the application
func (cmd *SetCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "set",
		Usage:     "Edit a task's fields",
		UsageText: "taskdock set <subcommand> <task-id> [values]",
		Commands: []*cli.Command{
			{
				Name:      "due",
				Usage:     "Set or clear the due date",
				UsageText: "taskdock set due <task-id> [YYYY-MM-DD]",
				Description: `Writes the task's due date. Omitting the date clears it.`,
				Action:    cmd.runDue,
			},
			{
				Name:      "tags",
				Usage:     "Replace the task's tags",
				UsageText: "taskdock set tags <task-id> [--tag name]...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "tag",
						Usage:       "tag to apply (repeatable, none clears)",
						Destination: &cmd.tags,
					},
				},
				Action: cmd.runTags,
			},
			{
				Name:      "assignees",
				Usage:     "Replace the task's assignees",
				UsageText: "taskdock set assignees <task-id> [--user name]...",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "user",
						Usage:       "workspace member name or id (repeatable, none clears)",
						Destination: &cmd.assignees,
					},
				},
				Action: cmd.runAssignees,
			},
			{
				Name:      "title",
				Usage:     "Rename the task",
				UsageText: "taskdock set title <task-id> <new title>",
				Action:    cmd.runTitle,
			},
		},
	})

	return app
}

func (cmd *SetCmd) findTask(ctx context.Context, c *cli.Command) (*dock.Board, *dock.Task, error) {
	id := c.Args().First()
	if id == "" {
		return nil, nil, fmt.Errorf("a task id is required")
	}

	tasks, err := cmd.app.Service.LoadTasks(ctx, dock.LoadOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("load tasks: %w", err)
	}

	board := dock.NewBoard(cmd.app.Service, tasks, cmd.app.Config.Fade.Delay, log.Logger)
	task, err := board.Find(id)
	if err != nil {
		board.Close()
		return nil, nil, err
	}
	return board, task, nil
}

func (cmd *SetCmd) runDue(ctx context.Context, c *cli.Command) error {
	board, task, err := cmd.findTask(ctx, c)
	if err != nil {
		return err
	}
	defer board.Close()

	due := c.Args().Get(1)
	_, err = board.Apply(ctx, dock.EditDue, task, func(ctx context.Context) (*remote.Page, error) {
		return cmd.app.Service.SetDue(ctx, task, due)
	})
	if err != nil {
		return err
	}

	if due == "" {
		fmt.Fprintf(c.Root().Writer, "%s due date for %s\n", styles.Success.Render("Cleared"), task.Title)
	} else {
		fmt.Fprintf(c.Root().Writer, "%s %s due %s\n", styles.Success.Render("Set"), task.Title, due)
	}
	return nil
}

func (cmd *SetCmd) runTags(ctx context.Context, c *cli.Command) error {
	board, task, err := cmd.findTask(ctx, c)
	if err != nil {
		return err
	}
	defer board.Close()

	_, err = board.Apply(ctx, dock.EditTags, task, func(ctx context.Context) (*remote.Page, error) {
		return cmd.app.Service.SetTags(ctx, task, cmd.tags)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "%s tags for %s\n", styles.Success.Render("Updated"), task.Title)
	return nil
}

func (cmd *SetCmd) runAssignees(ctx context.Context, c *cli.Command) error {
	board, task, err := cmd.findTask(ctx, c)
	if err != nil {
		return err
	}
	defer board.Close()

	_, err = board.Apply(ctx, dock.EditAssignees, task, func(ctx context.Context) (*remote.Page, error) {
		return cmd.app.Service.SetAssignees(ctx, task, cmd.assignees)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "%s assignees for %s\n", styles.Success.Render("Updated"), task.Title)
	return nil
}

func (cmd *SetCmd) runTitle(ctx context.Context, c *cli.Command) error {
	board, task, err := cmd.findTask(ctx, c)
	if err != nil {
		return err
	}
	defer board.Close()

	title := c.Args().Get(1)
	if title == "" {
		return fmt.Errorf("a new title is required")
	}

	_, err = board.Apply(ctx, dock.EditRename, task, func(ctx context.Context) (*remote.Page, error) {
		return cmd.app.Service.Rename(ctx, task, title)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Root().Writer, "%s task to %q\n", styles.Success.Render("Renamed"), title)
	return nil
}

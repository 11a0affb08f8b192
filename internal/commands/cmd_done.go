package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/internal/remote"
)

type DoneCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	undo    bool
	archive bool
}

// NewDoneCmd creates a new done command
func NewDoneCmd(flags *Flags, app *dock.App) *DoneCmd {
	return &DoneCmd{flags: flags, app: app}
}

// Register adds the done command to the application
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "done",
		Usage:     "Mark a task done (or not done with --undo)",
		UsageText: "taskdock done [--undo] <task-id>",
		Description: `Toggles a task's completion signal: the schema's status property when it
has one, its checkbox otherwise. Task ids may be abbreviated to a unique
prefix; run 'taskdock ls --ids' to see them.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "undo",
				Usage:       "mark the task open again",
				Destination: &cmd.undo,
			},
			&cli.BoolFlag{
				Name:        "archive",
				Usage:       "archive the task instead of completing it",
				Destination: &cmd.archive,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DoneCmd) run(ctx context.Context, c *cli.Command) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("a task id is required")
	}

	tasks, err := cmd.app.Service.LoadTasks(ctx, dock.LoadOptions{})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	board := dock.NewBoard(cmd.app.Service, tasks, cmd.app.Config.Fade.Delay+cmd.app.Config.Fade.Duration, log.Logger)
	defer board.Close()

	task, err := board.Find(id)
	if errors.Is(err, dock.ErrTaskNotFound) {
		// Completed and archived tasks never make it onto the board, so a
		// full id can still reach them directly. This is what lets --undo
		// find the task it is supposed to reopen.
		task, err = cmd.app.Service.TaskByID(ctx, id)
	}
	if err != nil {
		return err
	}

	if cmd.archive {
		if err := cmd.app.Service.Archive(ctx, task); err != nil {
			return err
		}
		fmt.Fprintf(c.Root().Writer, "%s %s\n", styles.Success.Render("Archived"), task.Title)
		return nil
	}

	kind := dock.EditComplete
	mutate := func(ctx context.Context) (*remote.Page, error) {
		return cmd.app.Service.Complete(ctx, task)
	}
	if cmd.undo {
		kind = dock.EditReopen
		mutate = func(ctx context.Context) (*remote.Page, error) {
			return cmd.app.Service.Reopen(ctx, task)
		}
	}

	policy, err := board.Apply(ctx, kind, task, mutate)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	switch policy {
	case dock.PatchAndFade:
		fmt.Fprintf(out, "%s %s\n", styles.Success.Render("Done"), styles.Done.Render(task.Title))
		// Keep the grace-period semantics observable: the task lingers
		// until its fade timer fires, then drops off the list.
		for ev := range board.Events() {
			if ev.Kind == dock.EventRemoved && ev.TaskID == task.ID() {
				break
			}
		}
	case dock.ForceReload:
		fmt.Fprintf(out, "%s %s\n", styles.Success.Render("Reopened"), task.Title)
	default:
		fmt.Fprintf(out, "%s %s\n", styles.Success.Render("Updated"), task.Title)
	}

	return nil
}

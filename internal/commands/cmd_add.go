package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	database string
	due      string
	tags     []string
	reader   iojson.FileReader[[]newTask]
	fromFile bool
}

// newTask is the JSON shape accepted by --file / piped input.
type newTask struct {
	Title    string   `json:"title"`
	Database string   `json:"database,omitempty"`
	Due      string   `json:"due,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *dock.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Create a new task",
		UsageText: "taskdock add [--db id] [--due date] [--tag name]... <title>",
		Description: `Creates a task in a configured database. With no --db flag the first
configured database is used.

Batch mode reads JSON from a file or stdin: taskdock add --batch -f tasks.json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db",
				Usage:       "target database id (defaults to the first configured)",
				Destination: &cmd.database,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD)",
				Destination: &cmd.due,
			},
			&cli.StringSliceFlag{
				Name:        "tag",
				Usage:       "tag to apply (repeatable)",
				Destination: &cmd.tags,
			},
			&cli.BoolFlag{
				Name:        "batch",
				Usage:       "read tasks as JSON from --file or stdin",
				Destination: &cmd.fromFile,
			},
			cmd.reader.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.fromFile {
		return cmd.runBatch(ctx, c)
	}

	title := c.Args().First()
	if title == "" {
		return fmt.Errorf("a task title is required")
	}

	dbID, err := cmd.targetDatabase()
	if err != nil {
		return err
	}

	page, err := cmd.app.Service.AddTask(ctx, dbID, title, cmd.due, cmd.tags)
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "%s %s\n", styles.Success.Render("Added"), title)
	fmt.Fprintf(c.Root().Writer, "  %s\n", styles.Muted.Render(page.ID))
	return nil
}

func (cmd *AddCmd) runBatch(ctx context.Context, c *cli.Command) error {
	items, err := cmd.reader.Read()
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Title == "" {
			return fmt.Errorf("batch item missing title")
		}
		dbID := item.Database
		if dbID == "" {
			if dbID, err = cmd.targetDatabase(); err != nil {
				return err
			}
		}
		if _, err := cmd.app.Service.AddTask(ctx, dbID, item.Title, item.Due, item.Tags); err != nil {
			return fmt.Errorf("add task %q: %w", item.Title, err)
		}
	}

	fmt.Fprintf(c.Root().Writer, "%s %d task(s)\n", styles.Success.Render("Added"), len(items))
	return nil
}

func (cmd *AddCmd) targetDatabase() (string, error) {
	if cmd.database != "" {
		return cmd.database, nil
	}
	if len(cmd.app.Config.Databases) == 0 {
		return "", dock.ErrNoDatabases
	}
	return cmd.app.Config.Databases[0].ID, nil
}

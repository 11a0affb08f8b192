package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	jsonOutput bool
	showIDs    bool
	database   string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *dock.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List open tasks across all configured databases",
		UsageText: "taskdock ls [--json] [--ids] [--db name]",
		Description: `Queries every configured database in parallel and prints the merged task
list: open tasks first by due date, undated tasks after, newest first on ties.

Use --db to narrow the list to one database, --json for machine-readable
output, one task per line.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db",
				Usage:       "only list tasks from this database (id or configured name)",
				Destination: &cmd.database,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "ids",
				Usage:       "show task ids",
				Destination: &cmd.showIDs,
			},
		},
		Action: cmd.run,
	})

	return app
}

type taskInfo struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Due      string            `json:"due,omitempty"`
	Database string            `json:"database"`
	Columns  map[string]string `json:"columns,omitempty"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.app.Service.LoadTasks(ctx, dock.LoadOptions{Database: cmd.database})
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	if len(tasks) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No open tasks\n")
		}
		return nil
	}

	rows := cmd.app.Service.Rows(ctx, tasks, time.Now())
	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, row := range rows {
			info := taskInfo{
				ID:       row.Task.ID(),
				Title:    row.Task.Title,
				Due:      row.Task.Due,
				Database: row.Task.DBName,
			}
			if len(row.Cells) > 0 {
				info.Columns = make(map[string]string, len(row.Cells))
				for _, cell := range row.Cells {
					info.Columns[cell.Name] = cell.Display.Value
				}
			}
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(cmd.renderRow(row), "\t"))
	}
	_ = w.Flush()

	return nil
}

func (cmd *LsCmd) renderRow(row dock.Row) []string {
	var cols []string

	cols = append(cols, styles.Checkmark(row.Task.Complete))

	title := styles.Title.Render(row.Task.Title)
	if row.Task.Fading || row.Task.Complete {
		title = styles.Done.Render(row.Task.Title)
	}
	cols = append(cols, title)

	due := styles.Muted.Render("-")
	switch {
	case row.Due == "":
	case row.Overdue:
		due = styles.Overdue.Render(row.Due)
	case row.Due == "today" || row.Due == "tomorrow":
		due = styles.DueSoon.Render(row.Due)
	default:
		due = styles.Due.Render(row.Due)
	}
	cols = append(cols, due)

	for _, cell := range row.Cells {
		v := cell.Display.Value
		if v == "" {
			cols = append(cols, styles.Muted.Render("-"))
			continue
		}
		if cell.Display.Kind == remote.TypeMultiSelect {
			v = styles.Tag.Render(v)
		}
		cols = append(cols, v)
	}

	cols = append(cols, styles.Source.Render(row.Task.DBName))

	if cmd.showIDs {
		cols = append(cols, styles.Muted.Render(shortID(row.Task.ID())))
	}

	return cols
}

// shortID trims a record id to its first hyphenated segment, enough to be
// unambiguous in practice.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

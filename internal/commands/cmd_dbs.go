package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/taskdock/taskdock/internal/core/styles"
	"github.com/taskdock/taskdock/internal/dock"
	"github.com/taskdock/taskdock/pkg/iojson"
)

type DbsCmd struct {
	flags *Flags
	app   *dock.App

	// flags
	jsonOutput bool
}

// NewDbsCmd creates a new dbs command
func NewDbsCmd(flags *Flags, app *dock.App) *DbsCmd {
	return &DbsCmd{flags: flags, app: app}
}

// Register adds the dbs command to the application
func (cmd *DbsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dbs",
		Usage:     "Inspect configured databases and their inferred roles",
		UsageText: "taskdock dbs [--json]",
		Description: `Shows each configured database with the property roles inferred from its
schema: which property holds the title, due date, tags, and completion
signal, and which status names count as done.`,
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

type dbInfo struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Title     string   `json:"title_property,omitempty"`
	Due       string   `json:"date_property,omitempty"`
	Tags      string   `json:"tag_property,omitempty"`
	Status    string   `json:"status_property,omitempty"`
	Checkbox  string   `json:"checkbox_property,omitempty"`
	Completed []string `json:"completed_statuses,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func (cmd *DbsCmd) run(ctx context.Context, c *cli.Command) error {
	if len(cmd.app.Config.Databases) == 0 {
		return dock.ErrNoDatabases
	}

	infos := make([]dbInfo, 0, len(cmd.app.Config.Databases))
	for _, dbCfg := range cmd.app.Config.Databases {
		info := dbInfo{
			ID:   dbCfg.ID,
			Name: cmd.app.Service.DatabaseName(ctx, dbCfg.ID),
		}
		sch, err := cmd.app.Service.Schema(ctx, dbCfg.ID)
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Title = sch.TitleKey
			info.Due = sch.DateKey
			info.Tags = sch.TagKey
			info.Status = sch.StatusKey
			info.Checkbox = sch.CheckboxKey
			info.Completed = sch.CompletedStatusNames
		}
		infos = append(infos, info)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, info := range infos {
			if err := iojson.WriteLine(out, info); err != nil {
				return fmt.Errorf("encode database: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tTITLE\tDUE\tTAGS\tDONE SIGNAL\tID")
	for _, info := range infos {
		if info.Error != "" {
			_, _ = fmt.Fprintf(w, "%s\t%s\t\t\t\t%s\n", info.Name, styles.Error.Render("unreachable"), info.ID)
			continue
		}
		signal := info.Checkbox
		if info.Status != "" {
			signal = fmt.Sprintf("%s (%s)", info.Status, strings.Join(info.Completed, ", "))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Name, orDash(info.Title), orDash(info.Due), orDash(info.Tags), orDash(signal), info.ID)
	}
	_ = w.Flush()

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package dock

import (
	"context"
	"strings"
	"time"

	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/internal/schema"
)

// Cell is one rendered extra column of a task row.
type Cell struct {
	Name    string
	Display schema.Display
}

// Row is a display-ready task: the derived task plus its configured extra
// columns, with relation ids and bare user ids resolved to names.
type Row struct {
	Task    Task
	Due     string // relative rendering of the due date
	Overdue bool
	Cells   []Cell
}

// Rows prepares tasks for rendering. now anchors relative date wording.
func (s *Service) Rows(ctx context.Context, tasks []Task, now time.Time) []Row {
	rows := make([]Row, 0, len(tasks))
	for i := range tasks {
		rows = append(rows, s.row(ctx, tasks[i], now))
	}
	return rows
}

func (s *Service) row(ctx context.Context, t Task, now time.Time) Row {
	row := Row{
		Task:    t,
		Overdue: t.Due != "" && schema.IsOverdue(t.Due, now),
	}
	if t.Due != "" {
		row.Due = schema.FormatDue(t.Due, now)
	}

	for _, name := range s.columnNames(t) {
		p, ok := t.Page.Properties.Get(name)
		if !ok {
			continue
		}
		d, ok := s.classify(ctx, p, now)
		if !ok {
			continue
		}
		row.Cells = append(row.Cells, Cell{Name: name, Display: d})
	}
	return row
}

// columnNames decides which extra columns a task gets. A configured
// allow-list wins when one is set, an explicitly empty list hides every
// extra column, and with no list at all every property is shown except
// the title and date, which already have dedicated columns.
func (s *Service) columnNames(t Task) []string {
	for _, db := range s.cfg.Databases {
		if db.ID == t.DBID && db.VisibleProperties != nil {
			return db.VisibleProperties
		}
	}

	var names []string
	for _, name := range t.Page.Properties.Names() {
		p, ok := t.Page.Properties.Get(name)
		if !ok || p.Type == remote.TypeTitle || p.Type == remote.TypeDate {
			continue
		}
		names = append(names, name)
	}
	return names
}

// classify renders one property, layering cross-record resolution on top
// of the pure codec: relation ids become related record titles, and
// people entries missing a display name are looked up in the workspace
// member list.
func (s *Service) classify(ctx context.Context, p remote.Property, now time.Time) (schema.Display, bool) {
	switch p.Type {
	case remote.TypeRelation:
		titles := make([]string, 0, len(p.Relation))
		for _, ref := range p.Relation {
			titles = append(titles, s.PageTitle(ctx, ref.ID))
		}
		return schema.Display{Kind: p.Type, Value: strings.Join(titles, ", ")}, true
	case remote.TypePeople:
		names := make([]string, 0, len(p.People))
		for _, u := range p.People {
			names = append(names, s.userName(ctx, u))
		}
		return schema.Display{Kind: p.Type, Value: strings.Join(names, ", ")}, true
	default:
		return schema.Classify(p, now)
	}
}

func (s *Service) userName(ctx context.Context, ref remote.UserRef) string {
	if ref.Name != "" {
		return ref.Name
	}
	if users, err := s.Users(ctx); err == nil {
		for i := range users {
			if users[i].ID == ref.ID && users[i].Name != "" {
				return users[i].Name
			}
		}
	}
	// Guests never appear in the workspace listing; try their profile.
	if u := s.userByID(ctx, ref.ID); u != nil && u.Name != "" {
		return u.Name
	}
	return ref.ID
}

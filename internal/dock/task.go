package dock

import (
	"time"

	"github.com/taskdock/taskdock/internal/remote"
	"github.com/taskdock/taskdock/internal/schema"
)

// Task is one open item in the merged list: the raw record plus the
// derived fields ordering and rendering need. Schema is nil when the
// database schema could not be resolved; derivation then falls back to
// scanning the record itself.
type Task struct {
	Page   *remote.Page
	Schema *schema.Database

	DBID   string
	DBName string

	Title    string
	Due      string // raw date start, empty when the record has none
	Complete bool

	// Fading marks a task completed in this session that is still shown
	// during its grace period.
	Fading bool
}

// NewTask derives a Task from a raw record.
func NewTask(page *remote.Page, sch *schema.Database, dbID, dbName string, vocab schema.Vocabulary) Task {
	return Task{
		Page:     page,
		Schema:   sch,
		DBID:     dbID,
		DBName:   dbName,
		Title:    taskTitle(page, sch),
		Due:      taskDue(page, sch),
		Complete: schema.IsComplete(page, sch, vocab),
	}
}

// ID returns the record id.
func (t *Task) ID() string {
	return t.Page.ID
}

// CreatedTime returns the record's creation timestamp.
func (t *Task) CreatedTime() time.Time {
	return t.Page.CreatedTime
}

// taskTitle reads the schema's title property, or the first title-kind
// property found on the record when no schema is available.
func taskTitle(page *remote.Page, sch *schema.Database) string {
	if sch != nil && sch.TitleKey != "" {
		if p, ok := page.Properties.Get(sch.TitleKey); ok && p.Type == remote.TypeTitle {
			return remote.PlainText(p.Title)
		}
	}
	for _, name := range page.Properties.Names() {
		if p, ok := page.Properties.Get(name); ok && p.Type == remote.TypeTitle {
			return remote.PlainText(p.Title)
		}
	}
	return ""
}

// taskDue reads the schema's date property, or the first date-kind
// property on the record when no schema is available.
func taskDue(page *remote.Page, sch *schema.Database) string {
	if sch != nil && sch.DateKey != "" {
		if p, ok := page.Properties.Get(sch.DateKey); ok && p.Type == remote.TypeDate && p.Date != nil {
			return p.Date.Start
		}
		return ""
	}
	for _, name := range page.Properties.Names() {
		if p, ok := page.Properties.Get(name); ok && p.Type == remote.TypeDate {
			if p.Date != nil {
				return p.Date.Start
			}
			return ""
		}
	}
	return ""
}

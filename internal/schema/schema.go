// Package schema infers semantic roles (title, due date, tags, completion
// signal) from the arbitrary per-database property schemas of a record
// store, and classifies raw property values for display.
package schema

import (
	"slices"

	"github.com/taskdock/taskdock/internal/remote"
)

// Vocabulary is the configurable "done" wording. Group names match status
// groups in the remote schema; status names are literal fallbacks applied
// unconditionally, as a defense against missing or renamed groups.
type Vocabulary struct {
	CompletedGroups   []string `json:"completed_groups" yaml:"completed_groups"`
	CompletedStatuses []string `json:"completed_statuses" yaml:"completed_statuses"`
}

// DefaultVocabulary covers the English and Japanese wordings the stores in
// the wild actually use.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CompletedGroups:   []string{"Complete", "Completed", "完了"},
		CompletedStatuses: []string{"Done", "Complete", "Completed", "完了"},
	}
}

// IsCompletedStatus reports whether name is one of the literal fallback
// status names.
func (v Vocabulary) IsCompletedStatus(name string) bool {
	return slices.Contains(v.CompletedStatuses, name)
}

// Database is the derived schema of one record-store database: which
// property fills each semantic role. At most one property is chosen per
// role, first seen wins. Serialized as-is into the persistent side-cache.
type Database struct {
	ID string `json:"id"`

	TitleKey    string `json:"title_key,omitempty"`
	DateKey     string `json:"date_key,omitempty"`
	TagKey      string `json:"tag_key,omitempty"`
	StatusKey   string `json:"status_key,omitempty"`
	CheckboxKey string `json:"checkbox_key,omitempty"`

	// TagOptions is the tag property's full option vocabulary.
	TagOptions []string `json:"tag_options,omitempty"`

	// StatusOptions is the status property's option names in schema order.
	StatusOptions []string `json:"status_options,omitempty"`

	// CompletedStatusNames are the status names treated as "done".
	CompletedStatusNames []string `json:"completed_status_names,omitempty"`
}

// Resolve derives the semantic roles from a raw database schema.
// Properties are visited in schema document order with first-match
// priority per role.
func Resolve(db *remote.Database, vocab Vocabulary) *Database {
	sch := &Database{ID: db.ID}

	for _, name := range db.Properties.Names() {
		def, ok := db.Properties.Get(name)
		if !ok {
			continue
		}

		switch def.Type {
		case remote.TypeTitle:
			if sch.TitleKey == "" {
				sch.TitleKey = name
			}
		case remote.TypeDate:
			if sch.DateKey == "" {
				sch.DateKey = name
			}
		case remote.TypeMultiSelect:
			if sch.TagKey == "" {
				sch.TagKey = name
				if def.MultiSelect != nil {
					for _, opt := range def.MultiSelect.Options {
						sch.TagOptions = append(sch.TagOptions, opt.Name)
					}
				}
			}
		case remote.TypeStatus:
			if sch.StatusKey == "" {
				sch.StatusKey = name
				sch.StatusOptions, sch.CompletedStatusNames = deriveStatus(def.Status, vocab)
			}
		case remote.TypeCheckbox:
			if sch.CheckboxKey == "" {
				sch.CheckboxKey = name
			}
		}
	}

	return sch
}

// deriveStatus collects the option names of one status definition and the
// subset counting as completed: options belonging to a "done" group, plus
// the vocabulary's literal fallbacks, applied unconditionally.
func deriveStatus(def *remote.StatusDef, vocab Vocabulary) (options, completed []string) {
	if def == nil {
		return nil, slices.Clone(vocab.CompletedStatuses)
	}

	doneGroupIDs := make(map[string]bool)
	doneOptionIDs := make(map[string]bool)
	for _, g := range def.Groups {
		if !slices.Contains(vocab.CompletedGroups, g.Name) {
			continue
		}
		doneGroupIDs[g.ID] = true
		for _, id := range g.OptionIDs {
			doneOptionIDs[id] = true
		}
	}

	for _, opt := range def.Options {
		options = append(options, opt.Name)
		switch {
		case opt.GroupID != "" && doneGroupIDs[opt.GroupID],
			doneOptionIDs[opt.ID],
			slices.Contains(vocab.CompletedGroups, opt.Name):
			if !slices.Contains(completed, opt.Name) {
				completed = append(completed, opt.Name)
			}
		}
	}

	for _, name := range vocab.CompletedStatuses {
		if !slices.Contains(completed, name) {
			completed = append(completed, name)
		}
	}

	return options, completed
}

// IsCompletedStatus reports whether a status name counts as done for this
// database.
func (d *Database) IsCompletedStatus(name string) bool {
	return slices.Contains(d.CompletedStatusNames, name)
}

// CompleteStatusName returns the status option used when marking a task
// done: the first schema option that counts as completed, or the first
// completed name as a last resort.
func (d *Database) CompleteStatusName() string {
	for _, name := range d.StatusOptions {
		if d.IsCompletedStatus(name) {
			return name
		}
	}
	if len(d.CompletedStatusNames) > 0 {
		return d.CompletedStatusNames[0]
	}
	return ""
}

// ReopenStatusName returns the status option used when un-completing a
// task: the first schema option that does not count as completed.
func (d *Database) ReopenStatusName() string {
	for _, name := range d.StatusOptions {
		if !d.IsCompletedStatus(name) {
			return name
		}
	}
	return ""
}

package dock

import (
	"context"
	"fmt"

	"github.com/taskdock/taskdock/internal/remote"
)

// Complete marks a task done, preferring the schema's status property,
// then its checkbox, then whichever completion signal the record itself
// carries.
func (s *Service) Complete(ctx context.Context, t *Task) (*remote.Page, error) {
	key, patch, err := s.completionPatch(t, true)
	if err != nil {
		return nil, err
	}
	return s.updateProperty(ctx, t, key, patch)
}

// Reopen marks a completed task open again.
func (s *Service) Reopen(ctx context.Context, t *Task) (*remote.Page, error) {
	key, patch, err := s.completionPatch(t, false)
	if err != nil {
		return nil, err
	}
	return s.updateProperty(ctx, t, key, patch)
}

func (s *Service) completionPatch(t *Task, done bool) (string, any, error) {
	if t.Schema != nil && t.Schema.StatusKey != "" {
		name := s.statusTarget(t, done)
		if name == "" {
			return "", nil, ErrNoCompletionSignal
		}
		return t.Schema.StatusKey, remote.StatusPatch(name), nil
	}
	if t.Schema != nil && t.Schema.CheckboxKey != "" {
		return t.Schema.CheckboxKey, remote.CheckboxPatch(done), nil
	}

	// No usable schema: toggle the first completion-shaped property the
	// record itself carries.
	for _, name := range t.Page.Properties.Names() {
		p, ok := t.Page.Properties.Get(name)
		if !ok {
			continue
		}
		switch p.Type {
		case remote.TypeCheckbox:
			return name, remote.CheckboxPatch(done), nil
		case remote.TypeStatus:
			target := s.statusTarget(t, done)
			if target == "" {
				return "", nil, ErrNoCompletionSignal
			}
			return name, remote.StatusPatch(target), nil
		}
	}
	return "", nil, ErrNoCompletionSignal
}

// statusTarget picks the status name written when toggling. Configuration
// overrides win; otherwise the schema decides; as a last resort for done,
// the first configured completed literal.
func (s *Service) statusTarget(t *Task, done bool) string {
	if done {
		if s.cfg.CompleteStatus != "" {
			return s.cfg.CompleteStatus
		}
		if t.Schema != nil {
			return t.Schema.CompleteStatusName()
		}
		if len(s.cfg.Completed.CompletedStatuses) > 0 {
			return s.cfg.Completed.CompletedStatuses[0]
		}
		return ""
	}
	if s.cfg.ReopenStatus != "" {
		return s.cfg.ReopenStatus
	}
	if t.Schema != nil {
		return t.Schema.ReopenStatusName()
	}
	return ""
}

// SetDue writes the task's due date; an empty start clears it.
func (s *Service) SetDue(ctx context.Context, t *Task, start string) (*remote.Page, error) {
	key := ""
	if t.Schema != nil {
		key = t.Schema.DateKey
	}
	if key == "" {
		key = firstPropertyOfType(t.Page, remote.TypeDate)
	}
	if key == "" {
		return nil, fmt.Errorf("%w: no date property", ErrNoProperty)
	}
	return s.updateProperty(ctx, t, key, remote.DatePatch(start))
}

// SetTags replaces the task's tag set.
func (s *Service) SetTags(ctx context.Context, t *Task, names []string) (*remote.Page, error) {
	if t.Schema == nil || t.Schema.TagKey == "" {
		return nil, fmt.Errorf("%w: no tag property", ErrNoProperty)
	}
	return s.updateProperty(ctx, t, t.Schema.TagKey, remote.MultiSelectPatch(names))
}

// SetAssignees replaces the task's assignees, given workspace member
// names or ids.
func (s *Service) SetAssignees(ctx context.Context, t *Task, names []string) (*remote.Page, error) {
	key, err := s.peopleKey(ctx, t.DBID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		user, err := s.UserByName(ctx, name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, user.ID)
	}
	return s.updateProperty(ctx, t, key, remote.PeoplePatch(ids))
}

// Rename rewrites the task's title.
func (s *Service) Rename(ctx context.Context, t *Task, title string) (*remote.Page, error) {
	key := ""
	if t.Schema != nil {
		key = t.Schema.TitleKey
	}
	if key == "" {
		key = firstPropertyOfType(t.Page, remote.TypeTitle)
	}
	if key == "" {
		return nil, ErrNoTitleProperty
	}
	return s.updateProperty(ctx, t, key, remote.TitlePatch(title))
}

// AddTask creates a new record in a configured database.
func (s *Service) AddTask(ctx context.Context, dbID, title, due string, tags []string) (*remote.Page, error) {
	sch, err := s.Schema(ctx, dbID)
	if err != nil {
		return nil, err
	}
	if sch.TitleKey == "" {
		return nil, ErrNoTitleProperty
	}

	props := map[string]any{
		sch.TitleKey: remote.TitlePatch(title),
	}
	if due != "" {
		if sch.DateKey == "" {
			return nil, fmt.Errorf("%w: no date property", ErrNoProperty)
		}
		props[sch.DateKey] = remote.DatePatch(due)
	}
	if len(tags) > 0 {
		if sch.TagKey == "" {
			return nil, fmt.Errorf("%w: no tag property", ErrNoProperty)
		}
		props[sch.TagKey] = remote.MultiSelectPatch(tags)
	}
	// New tasks start in the not-started column, not the database default.
	if sch.StatusKey != "" {
		name := s.cfg.ReopenStatus
		if name == "" {
			name = sch.ReopenStatusName()
		}
		if name != "" {
			props[sch.StatusKey] = remote.StatusPatch(name)
		}
	}

	page, err := s.api.CreatePage(ctx, &remote.PageCreate{
		Parent:     remote.Parent{Type: "database_id", DatabaseID: dbID},
		Properties: props,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return page, nil
}

// Archive soft-deletes a record.
func (s *Service) Archive(ctx context.Context, t *Task) error {
	archived := true
	_, err := s.api.UpdatePage(ctx, t.ID(), &remote.PageUpdate{Archived: &archived})
	if err != nil {
		return fmt.Errorf("archive task: %w", err)
	}
	return nil
}

func (s *Service) updateProperty(ctx context.Context, t *Task, key string, patch any) (*remote.Page, error) {
	page, err := s.api.UpdatePage(ctx, t.ID(), &remote.PageUpdate{
		Properties: map[string]any{key: patch},
	})
	if err != nil {
		return nil, fmt.Errorf("update task %s: %w", t.ID(), err)
	}
	return page, nil
}

// peopleKey finds the database's first people-kind property.
func (s *Service) peopleKey(ctx context.Context, dbID string) (string, error) {
	db, err := s.Database(ctx, dbID)
	if err != nil {
		return "", err
	}
	for _, name := range db.Properties.Names() {
		if def, ok := db.Properties.Get(name); ok && def.Type == remote.TypePeople {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: no people property", ErrNoProperty)
}

func firstPropertyOfType(page *remote.Page, kind remote.PropertyType) string {
	for _, name := range page.Properties.Names() {
		if p, ok := page.Properties.Get(name); ok && p.Type == kind {
			return name
		}
	}
	return ""
}

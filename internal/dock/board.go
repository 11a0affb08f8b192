package dock

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdock/taskdock/internal/remote"
)

// EditKind identifies one user-initiated mutation.
type EditKind string

const (
	EditComplete  EditKind = "complete"
	EditReopen    EditKind = "reopen"
	EditDue       EditKind = "due"
	EditTags      EditKind = "tags"
	EditAssignees EditKind = "assignees"
	EditRename    EditKind = "rename"
)

// Policy decides how the local list reacts to a successful mutation.
type Policy int

const (
	// PatchInPlace rewrites the local task from the returned record and
	// keeps it in the list.
	PatchInPlace Policy = iota
	// PatchAndFade marks the task completed locally, keeps it visible for
	// a grace period, then removes it.
	PatchAndFade
	// ForceReload discards local state; the caller must reload from the
	// remote. Used when a mutation can pull previously excluded records
	// back into view.
	ForceReload
)

// policies maps each edit kind to its list reaction. Any remote failure
// downgrades to ForceReload regardless of kind.
var policies = map[EditKind]Policy{
	EditComplete:  PatchAndFade,
	EditReopen:    ForceReload,
	EditDue:       PatchInPlace,
	EditTags:      PatchInPlace,
	EditAssignees: PatchInPlace,
	EditRename:    PatchInPlace,
}

// PolicyFor returns the list reaction for an edit kind.
func PolicyFor(kind EditKind) Policy {
	if p, ok := policies[kind]; ok {
		return p
	}
	return ForceReload
}

// EventKind classifies board notifications.
type EventKind string

const (
	EventPatched EventKind = "patched"
	EventFading  EventKind = "fading"
	EventRemoved EventKind = "removed"
	EventReload  EventKind = "reload"
)

// Event is one board notification. TaskID is set except for EventReload.
type Event struct {
	Kind   EventKind
	TaskID string
}

// Board holds the loaded task list and applies edits optimistically: the
// local list is patched from each mutation's response without a second
// query, except where the policy table demands a reload.
type Board struct {
	svc       *Service
	log       zerolog.Logger
	fadeDelay time.Duration

	mu     sync.Mutex
	tasks  []Task
	timers map[string]*time.Timer

	events chan Event
}

// NewBoard creates a board over an already loaded task list.
func NewBoard(svc *Service, tasks []Task, fadeDelay time.Duration, log zerolog.Logger) *Board {
	return &Board{
		svc:       svc,
		log:       log.With().Str("component", "board").Logger(),
		fadeDelay: fadeDelay,
		tasks:     slices.Clone(tasks),
		timers:    make(map[string]*time.Timer),
		events:    make(chan Event, 16),
	}
}

// Events delivers board notifications. Removal after a fade arrives on
// this channel once the grace period elapses.
func (b *Board) Events() <-chan Event {
	return b.events
}

// Snapshot returns the current list in display order.
func (b *Board) Snapshot() []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := slices.Clone(b.tasks)
	SortTasks(out)
	return out
}

// Find locates a task by record id, or by unique id prefix.
func (b *Board) Find(idOrPrefix string) (*Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var match *Task
	for i := range b.tasks {
		t := &b.tasks[i]
		if t.ID() == idOrPrefix {
			return t, nil
		}
		if len(idOrPrefix) >= 4 && len(t.ID()) > len(idOrPrefix) && t.ID()[:len(idOrPrefix)] == idOrPrefix {
			if match != nil {
				return nil, ErrAmbiguousTask
			}
			match = t
		}
	}
	if match == nil {
		return nil, ErrTaskNotFound
	}
	return match, nil
}

// Apply runs one edit against the remote and reconciles the local list
// per the policy table. It returns the applied policy so callers know
// whether a reload is required; ForceReload is also returned alongside
// any remote error.
func (b *Board) Apply(ctx context.Context, kind EditKind, t *Task, mutate func(ctx context.Context) (*remote.Page, error)) (Policy, error) {
	page, err := mutate(ctx)
	if err != nil {
		b.log.Error().Err(err).Str("task", t.ID()).Str("edit", string(kind)).Msg("mutation failed")
		b.emit(Event{Kind: EventReload})
		return ForceReload, err
	}

	policy := PolicyFor(kind)
	switch policy {
	case PatchInPlace:
		b.patch(t.ID(), page)
		b.emit(Event{Kind: EventPatched, TaskID: t.ID()})
	case PatchAndFade:
		b.fade(t.ID(), page)
		b.emit(Event{Kind: EventFading, TaskID: t.ID()})
	case ForceReload:
		b.emit(Event{Kind: EventReload})
	}
	return policy, nil
}

// patch rewrites one local task from the mutation response.
func (b *Board) patch(id string, page *remote.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID() != id {
			continue
		}
		old := b.tasks[i]
		b.tasks[i] = NewTask(page, old.Schema, old.DBID, old.DBName, b.svc.cfg.Completed)
		return
	}
}

// fade marks a task completed but keeps it listed until the grace period
// elapses, then removes it and emits EventRemoved.
func (b *Board) fade(id string, page *remote.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID() != id {
			continue
		}
		old := b.tasks[i]
		task := NewTask(page, old.Schema, old.DBID, old.DBName, b.svc.cfg.Completed)
		task.Fading = true
		b.tasks[i] = task
		break
	}

	if prev, ok := b.timers[id]; ok {
		prev.Stop()
	}
	b.timers[id] = time.AfterFunc(b.fadeDelay, func() {
		b.remove(id)
		b.emit(Event{Kind: EventRemoved, TaskID: id})
	})
}

func (b *Board) remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = slices.DeleteFunc(b.tasks, func(t Task) bool { return t.ID() == id })
	delete(b.timers, id)
}

// Close stops pending fade timers.
func (b *Board) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, timer := range b.timers {
		timer.Stop()
		delete(b.timers, id)
	}
}

func (b *Board) emit(ev Event) {
	select {
	case b.events <- ev:
	default:
		b.log.Debug().Str("kind", string(ev.Kind)).Msg("event dropped, no listener")
	}
}

package dock

import "errors"

var (
	// ErrNoToken means no record-store credential is configured.
	ErrNoToken = errors.New("no record-store token configured")
	// ErrNoDatabases means the configuration names no databases to pull from.
	ErrNoDatabases = errors.New("no databases configured")
	// ErrTaskNotFound means no loaded task matched the given id or prefix.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousTask means an id prefix matched more than one task.
	ErrAmbiguousTask = errors.New("task id prefix is ambiguous")
	// ErrNoCompletionSignal means neither the schema nor the record itself
	// carries a status or checkbox to toggle.
	ErrNoCompletionSignal = errors.New("no status or checkbox property to toggle")
	// ErrNoTitleProperty means the database schema has no title property
	// to write a new task's name into.
	ErrNoTitleProperty = errors.New("database has no title property")
	// ErrNoProperty means the database schema lacks the property a
	// mutation needs, such as a date or tag field.
	ErrNoProperty = errors.New("database schema lacks the required property")
)

package schema

import "github.com/taskdock/taskdock/internal/remote"

// A completion strategy either decides a record's done state or defers to
// the next one. The chain runs in fixed order: schema status, schema
// checkbox, then a schema-less scan of the record itself. A record nothing
// can decide counts as not done.
type completionStrategy func(page *remote.Page, sch *Database, vocab Vocabulary) (done, decided bool)

var completionStrategies = []completionStrategy{
	statusCompletion,
	checkboxCompletion,
	scanCompletion,
}

// IsComplete infers whether a record is done. sch may be nil when the
// database schema could not be fetched; inference then falls back to
// scanning the record's own properties.
func IsComplete(page *remote.Page, sch *Database, vocab Vocabulary) bool {
	for _, strat := range completionStrategies {
		if done, decided := strat(page, sch, vocab); decided {
			return done
		}
	}
	return false
}

func statusCompletion(page *remote.Page, sch *Database, _ Vocabulary) (bool, bool) {
	if sch == nil || sch.StatusKey == "" {
		return false, false
	}
	p, ok := page.Properties.Get(sch.StatusKey)
	if !ok || p.Type != remote.TypeStatus || p.Status == nil {
		return false, false
	}
	return sch.IsCompletedStatus(p.Status.Name), true
}

func checkboxCompletion(page *remote.Page, sch *Database, _ Vocabulary) (bool, bool) {
	if sch == nil || sch.CheckboxKey == "" {
		return false, false
	}
	p, ok := page.Properties.Get(sch.CheckboxKey)
	if !ok || p.Type != remote.TypeCheckbox {
		return false, false
	}
	return p.Checkbox, true
}

// scanCompletion walks the record's properties in document order and
// applies the status or checkbox rule to the first one of either kind.
func scanCompletion(page *remote.Page, _ *Database, vocab Vocabulary) (bool, bool) {
	for _, name := range page.Properties.Names() {
		p, ok := page.Properties.Get(name)
		if !ok {
			continue
		}
		switch p.Type {
		case remote.TypeStatus:
			if p.Status == nil {
				continue
			}
			return vocab.IsCompletedStatus(p.Status.Name), true
		case remote.TypeCheckbox:
			return p.Checkbox, true
		}
	}
	return false, false
}

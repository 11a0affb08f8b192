package dock

import (
	"slices"
	"strings"
)

// Compare defines the list order: open tasks before completed ones, then
// dated tasks before undated with earlier due dates first, then newest
// created first. It is a strict weak ordering, so equal tasks keep their
// merge order under a stable sort.
func Compare(a, b Task) int {
	if a.Complete != b.Complete {
		if a.Complete {
			return 1
		}
		return -1
	}

	switch {
	case a.Due != "" && b.Due == "":
		return -1
	case a.Due == "" && b.Due != "":
		return 1
	case a.Due != "" && b.Due != "":
		// ISO 8601 values order lexicographically.
		if c := strings.Compare(a.Due, b.Due); c != 0 {
			return c
		}
	}

	return b.Page.CreatedTime.Compare(a.Page.CreatedTime)
}

// SortTasks orders tasks in place.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, Compare)
}

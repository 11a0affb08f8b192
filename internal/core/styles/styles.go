// Package styles provides shared lipgloss styles for task list rendering.
package styles

import "github.com/charmbracelet/lipgloss"

// Semantic colors for task rows.
var (
	colorMuted   = lipgloss.Color("240")
	colorOverdue = lipgloss.Color("9")
	colorSoon    = lipgloss.Color("11")
	colorTag     = lipgloss.Color("13")
	colorSource  = lipgloss.Color("12")
	colorOK      = lipgloss.Color("10")
)

var (
	// Header styles column titles and section headings.
	Header = lipgloss.NewStyle().Bold(true).Underline(true)

	// Title styles an open task's name.
	Title = lipgloss.NewStyle()

	// Done styles a completed task still visible in its grace period.
	Done = lipgloss.NewStyle().Strikethrough(true).Faint(true)

	// Muted styles ids, empty cells, and secondary text.
	Muted = lipgloss.NewStyle().Foreground(colorMuted)

	// Overdue styles due dates in the past.
	Overdue = lipgloss.NewStyle().Foreground(colorOverdue).Bold(true)

	// DueSoon styles due dates landing today or tomorrow.
	DueSoon = lipgloss.NewStyle().Foreground(colorSoon)

	// Due styles any other due date.
	Due = lipgloss.NewStyle().Foreground(colorMuted)

	// Tag styles multi-select values.
	Tag = lipgloss.NewStyle().Foreground(colorTag)

	// Source styles the database label a task came from.
	Source = lipgloss.NewStyle().Foreground(colorSource)

	// Success styles confirmation messages.
	Success = lipgloss.NewStyle().Foreground(colorOK)

	// Error styles failure messages.
	Error = lipgloss.NewStyle().Foreground(colorOverdue)
)

// Checkmark renders a task's completion marker.
func Checkmark(done bool) string {
	if done {
		return Success.Render("✓")
	}
	return Muted.Render("•")
}

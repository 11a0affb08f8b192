package schema

import (
	"strconv"
	"strings"
	"time"

	"github.com/taskdock/taskdock/internal/remote"
)

// Display is a classified property value: its semantic kind and a
// human-readable rendering. The rendering is plain text; styling and
// cross-record resolution (relation titles, workspace user names) happen
// in the view layer.
type Display struct {
	Kind  remote.PropertyType
	Value string
}

// Classify renders one raw property value. It is pure: now is injected so
// relative date wording ("today", "tomorrow") is deterministic. Unknown or
// unrenderable property types return ok=false and are omitted from views
// rather than erroring.
func Classify(p remote.Property, now time.Time) (Display, bool) {
	switch p.Type {
	case remote.TypeTitle:
		return Display{Kind: p.Type, Value: remote.PlainText(p.Title)}, true
	case remote.TypeRichText:
		return Display{Kind: p.Type, Value: remote.PlainText(p.RichText)}, true
	case remote.TypeNumber:
		if p.Number == nil {
			return Display{Kind: p.Type}, true
		}
		return Display{Kind: p.Type, Value: formatNumber(*p.Number)}, true
	case remote.TypeSelect:
		return Display{Kind: p.Type, Value: optionName(p.Select)}, true
	case remote.TypeMultiSelect:
		names := make([]string, 0, len(p.MultiSelect))
		for _, opt := range p.MultiSelect {
			names = append(names, opt.Name)
		}
		return Display{Kind: p.Type, Value: strings.Join(names, ", ")}, true
	case remote.TypeStatus:
		return Display{Kind: p.Type, Value: optionName(p.Status)}, true
	case remote.TypeCheckbox:
		v := ""
		if p.Checkbox {
			v = "✓"
		}
		return Display{Kind: p.Type, Value: v}, true
	case remote.TypeDate:
		if p.Date == nil {
			return Display{Kind: p.Type}, true
		}
		return Display{Kind: p.Type, Value: FormatDue(p.Date.Start, now)}, true
	case remote.TypePeople:
		names := make([]string, 0, len(p.People))
		for _, u := range p.People {
			if u.Name != "" {
				names = append(names, u.Name)
			} else {
				names = append(names, u.ID)
			}
		}
		return Display{Kind: p.Type, Value: strings.Join(names, ", ")}, true
	case remote.TypeURL:
		return Display{Kind: p.Type, Value: p.URL}, true
	case remote.TypeRelation:
		ids := make([]string, 0, len(p.Relation))
		for _, ref := range p.Relation {
			ids = append(ids, ref.ID)
		}
		return Display{Kind: p.Type, Value: strings.Join(ids, ", ")}, true
	case remote.TypeRollup:
		return classifyRollup(p.Rollup, now)
	case remote.TypeFormula:
		return classifyFormula(p.Formula, now)
	case remote.TypeCreatedTime:
		if p.CreatedTime == nil {
			return Display{Kind: p.Type}, true
		}
		return Display{Kind: p.Type, Value: FormatDue(p.CreatedTime.Format("2006-01-02"), now)}, true
	default:
		return Display{}, false
	}
}

// classifyRollup renders an aggregate by recursing into its element values
// and joining the non-empty renderings.
func classifyRollup(r *remote.Rollup, now time.Time) (Display, bool) {
	if r == nil {
		return Display{Kind: remote.TypeRollup}, true
	}
	switch r.Type {
	case "array":
		var parts []string
		for _, sub := range r.Array {
			d, ok := Classify(sub, now)
			if ok && d.Value != "" {
				parts = append(parts, d.Value)
			}
		}
		return Display{Kind: remote.TypeRollup, Value: strings.Join(parts, ", ")}, true
	case "number":
		if r.Number == nil {
			return Display{Kind: remote.TypeRollup}, true
		}
		return Display{Kind: remote.TypeRollup, Value: formatNumber(*r.Number)}, true
	case "date":
		if r.Date == nil {
			return Display{Kind: remote.TypeRollup}, true
		}
		return Display{Kind: remote.TypeRollup, Value: FormatDue(r.Date.Start, now)}, true
	default:
		return Display{}, false
	}
}

func classifyFormula(f *remote.Formula, now time.Time) (Display, bool) {
	if f == nil {
		return Display{Kind: remote.TypeFormula}, true
	}
	switch f.Type {
	case "string":
		if f.String == nil {
			return Display{Kind: remote.TypeFormula}, true
		}
		return Display{Kind: remote.TypeFormula, Value: *f.String}, true
	case "number":
		if f.Number == nil {
			return Display{Kind: remote.TypeFormula}, true
		}
		return Display{Kind: remote.TypeFormula, Value: formatNumber(*f.Number)}, true
	case "boolean":
		v := ""
		if f.Boolean != nil && *f.Boolean {
			v = "✓"
		}
		return Display{Kind: remote.TypeFormula, Value: v}, true
	case "date":
		if f.Date == nil {
			return Display{Kind: remote.TypeFormula}, true
		}
		return Display{Kind: remote.TypeFormula, Value: FormatDue(f.Date.Start, now)}, true
	default:
		return Display{}, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optionName(opt *remote.Option) string {
	if opt == nil {
		return ""
	}
	return opt.Name
}

// FormatDue renders a record-store date value relative to now: "today",
// "tomorrow", or "M/D". Values whose date portion does not parse are
// passed through unchanged.
func FormatDue(start string, now time.Time) string {
	d, ok := parseDate(start)
	if !ok {
		return start
	}
	y, m, dd := now.Date()
	cur := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	switch {
	case d.Equal(cur):
		return "today"
	case d.Equal(cur.AddDate(0, 0, 1)):
		return "tomorrow"
	default:
		return strconv.Itoa(int(d.Month())) + "/" + strconv.Itoa(d.Day())
	}
}

// IsOverdue reports whether a date value falls strictly before today.
func IsOverdue(start string, now time.Time) bool {
	d, ok := parseDate(start)
	if !ok {
		return false
	}
	y, m, dd := now.Date()
	cur := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	return d.Before(cur)
}

// parseDate reads the date portion of a date or datetime value.
func parseDate(start string) (time.Time, bool) {
	if len(start) < 10 {
		return time.Time{}, false
	}
	d, err := time.Parse("2006-01-02", start[:10])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdock/taskdock/internal/remote"
)

var now = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func fptr(f float64) *float64 { return &f }

func TestClassify_TextKinds(t *testing.T) {
	d, ok := Classify(remote.Property{
		Type:  remote.TypeTitle,
		Title: []remote.RichText{{PlainText: "Buy "}, {PlainText: "milk"}},
	}, now)
	require.True(t, ok)
	assert.Equal(t, remote.TypeTitle, d.Kind)
	assert.Equal(t, "Buy milk", d.Value)

	d, ok = Classify(remote.Property{
		Type:     remote.TypeRichText,
		RichText: []remote.RichText{{PlainText: "note"}},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "note", d.Value)
}

func TestClassify_Number(t *testing.T) {
	d, ok := Classify(remote.Property{Type: remote.TypeNumber, Number: fptr(3.5)}, now)
	require.True(t, ok)
	assert.Equal(t, "3.5", d.Value)

	d, ok = Classify(remote.Property{Type: remote.TypeNumber, Number: fptr(42)}, now)
	require.True(t, ok)
	assert.Equal(t, "42", d.Value)

	d, ok = Classify(remote.Property{Type: remote.TypeNumber}, now)
	require.True(t, ok)
	assert.Empty(t, d.Value)
}

func TestClassify_Options(t *testing.T) {
	d, ok := Classify(remote.Property{Type: remote.TypeSelect, Select: &remote.Option{Name: "high"}}, now)
	require.True(t, ok)
	assert.Equal(t, "high", d.Value)

	d, ok = Classify(remote.Property{
		Type:        remote.TypeMultiSelect,
		MultiSelect: []remote.Option{{Name: "home"}, {Name: "urgent"}},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "home, urgent", d.Value)

	d, ok = Classify(remote.Property{Type: remote.TypeStatus, Status: &remote.Option{Name: "完了"}}, now)
	require.True(t, ok)
	assert.Equal(t, "完了", d.Value)
}

func TestClassify_Checkbox(t *testing.T) {
	d, ok := Classify(remote.Property{Type: remote.TypeCheckbox, Checkbox: true}, now)
	require.True(t, ok)
	assert.Equal(t, "✓", d.Value)

	d, ok = Classify(remote.Property{Type: remote.TypeCheckbox}, now)
	require.True(t, ok)
	assert.Empty(t, d.Value)
}

func TestClassify_People(t *testing.T) {
	d, ok := Classify(remote.Property{
		Type: remote.TypePeople,
		People: []remote.UserRef{
			{ID: "u1", Name: "Ada"},
			{ID: "u2"},
		},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "Ada, u2", d.Value)
}

func TestClassify_Rollup(t *testing.T) {
	d, ok := Classify(remote.Property{
		Type: remote.TypeRollup,
		Rollup: &remote.Rollup{
			Type: "array",
			Array: []remote.Property{
				{Type: remote.TypeSelect, Select: &remote.Option{Name: "a"}},
				{Type: remote.TypeSelect},
				{Type: remote.TypeNumber, Number: fptr(7)},
			},
		},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "a, 7", d.Value)

	d, ok = Classify(remote.Property{
		Type:   remote.TypeRollup,
		Rollup: &remote.Rollup{Type: "number", Number: fptr(12)},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "12", d.Value)
}

func TestClassify_Formula(t *testing.T) {
	s := "ok"
	d, ok := Classify(remote.Property{
		Type:    remote.TypeFormula,
		Formula: &remote.Formula{Type: "string", String: &s},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "ok", d.Value)

	b := true
	d, ok = Classify(remote.Property{
		Type:    remote.TypeFormula,
		Formula: &remote.Formula{Type: "boolean", Boolean: &b},
	}, now)
	require.True(t, ok)
	assert.Equal(t, "✓", d.Value)
}

func TestClassify_UnknownKindOmitted(t *testing.T) {
	_, ok := Classify(remote.Property{Type: remote.PropertyType("files")}, now)
	assert.False(t, ok)
}

func TestFormatDue(t *testing.T) {
	assert.Equal(t, "today", FormatDue("2024-03-15", now))
	assert.Equal(t, "today", FormatDue("2024-03-15T18:00:00+09:00", now))
	assert.Equal(t, "tomorrow", FormatDue("2024-03-16", now))
	assert.Equal(t, "3/20", FormatDue("2024-03-20", now))
	assert.Equal(t, "3/1", FormatDue("2024-03-01", now))
	assert.Equal(t, "garbage", FormatDue("garbage", now))
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, IsOverdue("2024-03-14", now))
	assert.False(t, IsOverdue("2024-03-15", now))
	assert.False(t, IsOverdue("2024-03-16", now))
	assert.False(t, IsOverdue("bad", now))
}

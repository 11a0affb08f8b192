package remote

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilter_NoRules(t *testing.T) {
	assert.Nil(t, CompileFilter(nil, FilterAnd))
	assert.Nil(t, CompileFilter([]FilterRule{}, FilterOr))
}

func TestCompileFilter_SkipsUnusableRules(t *testing.T) {
	rules := []FilterRule{
		{Property: "Status", Kind: TypeStatus, Value: ""},     // no value
		{Property: "", Kind: TypeSelect, Value: "x"},          // no property
		{Property: "Notes", Kind: TypeRichText, Value: "abc"}, // unfilterable kind
	}
	assert.Nil(t, CompileFilter(rules, FilterAnd))
}

func TestCompileFilter_SingleRuleIsBare(t *testing.T) {
	f := CompileFilter([]FilterRule{
		{Property: "Priority", Kind: TypeSelect, Value: "High"},
	}, FilterAnd)

	require.NotNil(t, f)
	assert.Empty(t, f.And)
	assert.Empty(t, f.Or)
	assert.Equal(t, "Priority", f.Property)
	require.NotNil(t, f.Select)
	assert.Equal(t, "High", f.Select.Equals)
}

func TestCompileFilter_MultipleRulesWrapped(t *testing.T) {
	rules := []FilterRule{
		{Property: "Tags", Kind: TypeMultiSelect, Value: "home"},
		{Property: "Done", Kind: TypeCheckbox, Value: "false"},
		{Property: "Status", Kind: TypeStatus, Value: "In progress"},
	}

	t.Run("and", func(t *testing.T) {
		f := CompileFilter(rules, FilterAnd)
		require.NotNil(t, f)
		require.Len(t, f.And, 3)
		assert.Empty(t, f.Or)
	})

	t.Run("or", func(t *testing.T) {
		f := CompileFilter(rules, FilterOr)
		require.NotNil(t, f)
		require.Len(t, f.Or, 3)
		assert.Empty(t, f.And)
	})

	t.Run("unknown operator defaults to and", func(t *testing.T) {
		f := CompileFilter(rules, FilterOperator(""))
		require.NotNil(t, f)
		assert.Len(t, f.And, 3)
	})
}

func TestCompileFilter_KindShapes(t *testing.T) {
	tests := []struct {
		name string
		rule FilterRule
		want string
	}{
		{
			name: "select equality",
			rule: FilterRule{Property: "Priority", Kind: TypeSelect, Value: "High"},
			want: `{"property":"Priority","select":{"equals":"High"}}`,
		},
		{
			name: "status equality",
			rule: FilterRule{Property: "Status", Kind: TypeStatus, Value: "完了"},
			want: `{"property":"Status","status":{"equals":"完了"}}`,
		},
		{
			name: "checkbox true",
			rule: FilterRule{Property: "Done", Kind: TypeCheckbox, Value: "true"},
			want: `{"property":"Done","checkbox":{"equals":true}}`,
		},
		{
			name: "checkbox false",
			rule: FilterRule{Property: "Done", Kind: TypeCheckbox, Value: "false"},
			want: `{"property":"Done","checkbox":{"equals":false}}`,
		},
		{
			name: "multi select containment",
			rule: FilterRule{Property: "Tags", Kind: TypeMultiSelect, Value: "work"},
			want: `{"property":"Tags","multi_select":{"contains":"work"}}`,
		},
		{
			name: "people containment",
			rule: FilterRule{Property: "Assignee", Kind: TypePeople, Value: "user-1"},
			want: `{"property":"Assignee","people":{"contains":"user-1"}}`,
		},
		{
			name: "people empty sentinel",
			rule: FilterRule{Property: "Assignee", Kind: TypePeople, Value: FilterValueEmpty},
			want: `{"property":"Assignee","people":{"is_empty":true}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := CompileFilter([]FilterRule{tt.rule}, FilterAnd)
			require.NotNil(t, f)
			raw, err := json.Marshal(f)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))
		})
	}
}

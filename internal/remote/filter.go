package remote

// FilterOperator combines multiple filter rules.
type FilterOperator string

// Supported rule combinators. And is the default.
const (
	FilterAnd FilterOperator = "and"
	FilterOr  FilterOperator = "or"
)

// FilterValueEmpty is the sentinel rule value meaning "this people field
// has no one assigned".
const FilterValueEmpty = "empty"

// FilterRule is one stored, declarative filter row: match records whose
// named property relates to Value per its Kind. Rules are never evaluated
// locally; they compile to remote query predicates.
type FilterRule struct {
	Property string       `json:"property" yaml:"property"`
	Kind     PropertyType `json:"kind" yaml:"kind"`
	Value    string       `json:"value" yaml:"value"`
}

// Filter is a query predicate: either one property condition or an and/or
// composition of sub-filters.
type Filter struct {
	Property string `json:"property,omitempty"`

	And []Filter `json:"and,omitempty"`
	Or  []Filter `json:"or,omitempty"`

	Select      *TextCondition     `json:"select,omitempty"`
	Status      *TextCondition     `json:"status,omitempty"`
	MultiSelect *ContainsCondition `json:"multi_select,omitempty"`
	People      *PeopleCondition   `json:"people,omitempty"`
	Checkbox    *BoolCondition     `json:"checkbox,omitempty"`
}

// TextCondition matches an exact option name.
type TextCondition struct {
	Equals string `json:"equals"`
}

// ContainsCondition matches multi-value fields containing a name.
type ContainsCondition struct {
	Contains string `json:"contains"`
}

// PeopleCondition matches people fields by member id, or emptiness.
type PeopleCondition struct {
	Contains string `json:"contains,omitempty"`
	IsEmpty  bool   `json:"is_empty,omitempty"`
}

// BoolCondition matches a checkbox value.
type BoolCondition struct {
	Equals bool `json:"equals"`
}

// CompileFilter translates stored filter rules into a query predicate.
// Zero usable rules compile to nil (no filter). A single rule compiles to
// its bare predicate. Two or more compile to one and/or wrapper per the
// operator. Rules with an empty value or an unfilterable kind are skipped.
func CompileFilter(rules []FilterRule, op FilterOperator) *Filter {
	compiled := make([]Filter, 0, len(rules))
	for _, r := range rules {
		if f, ok := compileRule(r); ok {
			compiled = append(compiled, f)
		}
	}

	switch len(compiled) {
	case 0:
		return nil
	case 1:
		return &compiled[0]
	}

	if op == FilterOr {
		return &Filter{Or: compiled}
	}
	return &Filter{And: compiled}
}

func compileRule(r FilterRule) (Filter, bool) {
	if r.Property == "" || r.Value == "" {
		return Filter{}, false
	}

	f := Filter{Property: r.Property}
	switch r.Kind {
	case TypeSelect:
		f.Select = &TextCondition{Equals: r.Value}
	case TypeStatus:
		f.Status = &TextCondition{Equals: r.Value}
	case TypeMultiSelect:
		f.MultiSelect = &ContainsCondition{Contains: r.Value}
	case TypeCheckbox:
		f.Checkbox = &BoolCondition{Equals: r.Value == "true"}
	case TypePeople:
		if r.Value == FilterValueEmpty {
			f.People = &PeopleCondition{IsEmpty: true}
		} else {
			f.People = &PeopleCondition{Contains: r.Value}
		}
	default:
		return Filter{}, false
	}
	return f, true
}

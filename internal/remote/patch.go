package remote

// PageUpdate is the body of a page PATCH. Properties maps property names to
// patch shapes built by the helpers below.
type PageUpdate struct {
	Properties map[string]any `json:"properties,omitempty"`
	Archived   *bool          `json:"archived,omitempty"`
}

// PageCreate is the body of a page create.
type PageCreate struct {
	Parent     Parent         `json:"parent"`
	Properties map[string]any `json:"properties"`
}

// TitlePatch sets a title property.
func TitlePatch(text string) any {
	return map[string]any{
		"title": []RichText{{Text: &TextContent{Content: text}}},
	}
}

// DatePatch sets a date property. An empty start clears the date by
// sending an explicit null.
func DatePatch(start string) any {
	if start == "" {
		return map[string]any{"date": nil}
	}
	return map[string]any{"date": DateValue{Start: start}}
}

// MultiSelectPatch replaces the full tag set of a multi-select property.
func MultiSelectPatch(names []string) any {
	opts := make([]Option, len(names))
	for i, n := range names {
		opts[i] = Option{Name: n}
	}
	return map[string]any{"multi_select": opts}
}

// PeoplePatch replaces the full assignee set of a people property.
func PeoplePatch(userIDs []string) any {
	refs := make([]UserRef, len(userIDs))
	for i, id := range userIDs {
		refs[i] = UserRef{Object: "user", ID: id}
	}
	return map[string]any{"people": refs}
}

// StatusPatch sets a status property by option name.
func StatusPatch(name string) any {
	return map[string]any{"status": Option{Name: name}}
}

// CheckboxPatch sets a checkbox property.
func CheckboxPatch(checked bool) any {
	return map[string]any{"checkbox": checked}
}

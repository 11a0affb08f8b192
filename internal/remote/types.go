// Package remote is the wire client for Notion-compatible record stores.
// It defines the typed request/response shapes the sync engine consumes and
// a small HTTP client over them.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// PropertyType tags the members of the property union.
type PropertyType string

// The closed set of property kinds the engine understands. Anything else
// is carried through the wire types but omitted from views.
const (
	TypeTitle       PropertyType = "title"
	TypeRichText    PropertyType = "rich_text"
	TypeNumber      PropertyType = "number"
	TypeSelect      PropertyType = "select"
	TypeMultiSelect PropertyType = "multi_select"
	TypeStatus      PropertyType = "status"
	TypeCheckbox    PropertyType = "checkbox"
	TypeDate        PropertyType = "date"
	TypePeople      PropertyType = "people"
	TypeURL         PropertyType = "url"
	TypeRelation    PropertyType = "relation"
	TypeRollup      PropertyType = "rollup"
	TypeFormula     PropertyType = "formula"
	TypeCreatedTime PropertyType = "created_time"
)

// RichText is one span of formatted text.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the writable half of a RichText span.
type TextContent struct {
	Content string `json:"content"`
}

// PlainText concatenates the plain text of a rich text array.
func PlainText(spans []RichText) string {
	var buf bytes.Buffer
	for _, s := range spans {
		if s.PlainText != "" {
			buf.WriteString(s.PlainText)
		} else if s.Text != nil {
			buf.WriteString(s.Text.Content)
		}
	}
	return buf.String()
}

// Option is one select/multi-select/status choice. GroupID is only set on
// status options, linking the option to its status group.
type Option struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	GroupID string `json:"group_id,omitempty"`
}

// Group is a status group ("To-do", "In progress", "Complete", ...).
type Group struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	OptionIDs []string `json:"option_ids,omitempty"`
}

// DateValue is a date or date range. Start uses YYYY-MM-DD or RFC 3339.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// UserRef identifies a user inside a people property value.
type UserRef struct {
	Object string `json:"object,omitempty"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
}

// PageRef identifies a related page inside a relation property value.
type PageRef struct {
	ID string `json:"id"`
}

// Rollup is a derived aggregate over a relation: either an array of typed
// sub-items or a single number/date.
type Rollup struct {
	Type     string     `json:"type"`
	Array    []Property `json:"array,omitempty"`
	Number   *float64   `json:"number,omitempty"`
	Date     *DateValue `json:"date,omitempty"`
	Function string     `json:"function,omitempty"`
}

// Formula is a computed value with a typed result.
type Formula struct {
	Type    string     `json:"type"`
	String  *string    `json:"string,omitempty"`
	Number  *float64   `json:"number,omitempty"`
	Boolean *bool      `json:"boolean,omitempty"`
	Date    *DateValue `json:"date,omitempty"`
}

// Property is one property value on a page: a tagged union over Type.
// Exactly the member named by Type is populated.
type Property struct {
	ID          string       `json:"id,omitempty"`
	Type        PropertyType `json:"type"`
	Title       []RichText   `json:"title,omitempty"`
	RichText    []RichText   `json:"rich_text,omitempty"`
	Number      *float64     `json:"number,omitempty"`
	Select      *Option      `json:"select,omitempty"`
	MultiSelect []Option     `json:"multi_select,omitempty"`
	Status      *Option      `json:"status,omitempty"`
	Checkbox    bool         `json:"checkbox,omitempty"`
	Date        *DateValue   `json:"date,omitempty"`
	People      []UserRef    `json:"people,omitempty"`
	URL         string       `json:"url,omitempty"`
	Relation    []PageRef    `json:"relation,omitempty"`
	Rollup      *Rollup      `json:"rollup,omitempty"`
	Formula     *Formula     `json:"formula,omitempty"`
	CreatedTime *time.Time   `json:"created_time,omitempty"`
}

// OptionSet carries the option vocabulary of a select or multi-select
// property definition.
type OptionSet struct {
	Options []Option `json:"options"`
}

// StatusDef carries the option and group vocabulary of a status property
// definition.
type StatusDef struct {
	Options []Option `json:"options"`
	Groups  []Group  `json:"groups,omitempty"`
}

// PropertyDef is one property definition on a database schema.
type PropertyDef struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Type        PropertyType `json:"type"`
	Select      *OptionSet   `json:"select,omitempty"`
	MultiSelect *OptionSet   `json:"multi_select,omitempty"`
	Status      *StatusDef   `json:"status,omitempty"`
}

// Database is a record store database: its identity plus the property
// schema role inference runs over.
type Database struct {
	ID         string                  `json:"id"`
	Title      []RichText              `json:"title,omitempty"`
	Properties OrderedMap[PropertyDef] `json:"properties"`
}

// Parent locates a page inside its database.
type Parent struct {
	Type       string `json:"type,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

// Page is one record.
type Page struct {
	ID             string               `json:"id"`
	CreatedTime    time.Time            `json:"created_time"`
	LastEditedTime time.Time            `json:"last_edited_time"`
	Archived       bool                 `json:"archived"`
	Parent         Parent               `json:"parent"`
	Properties     OrderedMap[Property] `json:"properties"`
}

// User is a workspace member or bot.
type User struct {
	Object    string `json:"object,omitempty"`
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// OrderedMap is a JSON object that remembers document key order.
// Role inference and the schema-less completion scan are specified in
// property-iteration order, which a plain map cannot preserve.
type OrderedMap[T any] struct {
	keys   []string
	values map[string]T
}

// Get returns the value stored under name.
func (m OrderedMap[T]) Get(name string) (T, bool) {
	v, ok := m.values[name]
	return v, ok
}

// Set stores a value, appending name to the key order if it is new.
func (m *OrderedMap[T]) Set(name string, value T) {
	if m.values == nil {
		m.values = make(map[string]T)
	}
	if _, exists := m.values[name]; !exists {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

// Names returns the keys in document order.
func (m OrderedMap[T]) Names() []string {
	return m.keys
}

// Len returns the number of entries.
func (m OrderedMap[T]) Len() int {
	return len(m.keys)
}

// UnmarshalJSON decodes a JSON object keeping its key order.
func (m *OrderedMap[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil { // JSON null
		*m = OrderedMap[T]{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ordered map: expected object, got %v", tok)
	}

	m.keys = nil
	m.values = make(map[string]T)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered map: expected string key, got %v", keyTok)
		}

		var v T
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered map: decode %q: %w", key, err)
		}

		if _, exists := m.values[key]; !exists {
			m.keys = append(m.keys, key)
		}
		m.values[key] = v
	}

	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON encodes the object in key order.
func (m OrderedMap[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

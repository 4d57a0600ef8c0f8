package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SnapshotTokenLength is the length of a revision token that pins a snapshot
// by id rather than by sequential version.
const SnapshotTokenLength = 24

// ProjectPlaceholder replaces every project reference in exported components.
// Projects are never exported, so a real id would dangle.
const ProjectPlaceholder = "project"

// Component is one node of a form's component tree.
//
// Only the fields the export rewrites are named; the rest of the node is kept
// in Extra. Child containers are Components, Columns and Rows; other node
// kinds nest through Components.
type Component struct {
	Type         string          `json:"type,omitempty"`
	Key          string          `json:"key,omitempty"`
	Form         *string         `json:"form,omitempty"`
	Revision     *RevisionToken  `json:"revision,omitempty"`
	Resource     *string         `json:"resource,omitempty"`
	Project      *string         `json:"project,omitempty"`
	DataSrc      string          `json:"dataSrc,omitempty"`
	DefaultValue json.RawMessage `json:"defaultValue,omitempty"`
	Data         *ComponentData  `json:"data,omitempty"`
	Fetch        *Fetch          `json:"fetch,omitempty"`
	Components   []*Component    `json:"components"`
	Columns      *Columns        `json:"columns,omitempty"`
	Rows         *Rows           `json:"rows,omitempty"`
	Extra        map[string]any  `json:"-"`
	present      keySet
}

// IsResourceSelect reports whether the component is a select whose options
// come from resource submissions.
func (c *Component) IsResourceSelect() bool {
	return c.Type == "select" && c.DataSrc == "resource"
}

// HasDefaultValue reports whether the default value is set to something
// truthy: not null, false, zero or the empty string. Empty arrays and objects
// count as set.
func (c *Component) HasDefaultValue() bool {
	raw := bytes.TrimSpace(c.DefaultValue)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case '"':
		return len(raw) > 2
	case '[', '{', 't':
		return true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && f != 0
	}
}

// ClearDefaultValue removes the default value from the component.
func (c *Component) ClearDefaultValue() {
	c.DefaultValue = nil
	c.present.forget("defaultValue")
}

func (c Component) MarshalJSON() ([]byte, error) {
	type plain Component
	return mergeExtra(plain(c), c.present, c.Extra)
}

func (c *Component) UnmarshalJSON(data []byte) error {
	type plain Component
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*c = Component(p)
	c.Extra = extra
	c.present = present
	return nil
}

// RevisionToken pins a component to a historical snapshot of the form it
// embeds. The stored value is either a 24-character snapshot id or a
// sequential version, which may arrive as a JSON string or number; the
// original encoding is preserved.
type RevisionToken struct {
	Value   string
	Numeric bool
}

// IsSnapshotID reports whether the token addresses a snapshot by id.
func (t RevisionToken) IsSnapshotID() bool {
	return len(t.Value) == SnapshotTokenLength
}

// Version parses the token as a sequential version number.
func (t RevisionToken) Version() (int64, error) {
	return strconv.ParseInt(t.Value, 10, 64)
}

// IsZero reports whether the token is empty. An empty token does not pin.
func (t RevisionToken) IsZero() bool {
	return t.Value == "" || (t.Numeric && t.Value == "0")
}

func (t RevisionToken) String() string {
	return t.Value
}

func (t RevisionToken) MarshalJSON() ([]byte, error) {
	if t.Numeric {
		return []byte(t.Value), nil
	}
	return json.Marshal(t.Value)
}

func (t *RevisionToken) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty revision token")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = RevisionToken{Value: s}
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("revision token must be a string or number: %w", err)
	}
	*t = RevisionToken{Value: n.String(), Numeric: true}
	return nil
}

// ComponentData is the "data" object of option-sourcing components.
// A non-object value is kept verbatim in Raw and never rewritten.
type ComponentData struct {
	Form     *string         `json:"form,omitempty"`
	Resource *string         `json:"resource,omitempty"`
	Project  *string         `json:"project,omitempty"`
	Extra    map[string]any  `json:"-"`
	present  keySet
	Raw      json.RawMessage `json:"-"`
}

func (d ComponentData) MarshalJSON() ([]byte, error) {
	if d.Raw != nil {
		return d.Raw, nil
	}
	type plain ComponentData
	return mergeExtra(plain(d), d.present, d.Extra)
}

func (d *ComponentData) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*d = ComponentData{Raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	type plain ComponentData
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*d = ComponentData(p)
	d.Extra = extra
	d.present = present
	return nil
}

// Fetch is the "fetch" object of data-sourcing components.
// A non-object value is kept verbatim in Raw.
type Fetch struct {
	Resource *string         `json:"resource,omitempty"`
	Extra    map[string]any  `json:"-"`
	present  keySet
	Raw      json.RawMessage `json:"-"`
}

func (f Fetch) MarshalJSON() ([]byte, error) {
	if f.Raw != nil {
		return f.Raw, nil
	}
	type plain Fetch
	return mergeExtra(plain(f), f.present, f.Extra)
}

func (f *Fetch) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*f = Fetch{Raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	type plain Fetch
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*f = Fetch(p)
	f.Extra = extra
	f.present = present
	return nil
}

// Column is one column of a columns layout or one cell of a table row.
type Column struct {
	Components []*Component   `json:"components"`
	Extra      map[string]any `json:"-"`
	present    keySet
}

func (c Column) MarshalJSON() ([]byte, error) {
	type plain Column
	return mergeExtra(plain(c), c.present, c.Extra)
}

func (c *Column) UnmarshalJSON(data []byte) error {
	type plain Column
	var p plain
	extra, present, err := splitExtra(data, &p)
	if err != nil {
		return err
	}
	*c = Column(p)
	c.Extra = extra
	c.present = present
	return nil
}

// Columns is a component's "columns" value. Anything that is not an array of
// column objects is kept verbatim in Raw.
type Columns struct {
	Items []*Column
	Raw   json.RawMessage
}

func (c Columns) MarshalJSON() ([]byte, error) {
	if c.Raw != nil {
		return c.Raw, nil
	}
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

func (c *Columns) UnmarshalJSON(data []byte) error {
	var items []*Column
	if err := json.Unmarshal(data, &items); err != nil {
		*c = Columns{Raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	*c = Columns{Items: items}
	return nil
}

// Rows is a table component's "rows" value: rows of cells. Other shapes, such
// as a textarea's numeric row count, are kept verbatim in Raw.
type Rows struct {
	Cells [][]*Column
	Raw   json.RawMessage
}

func (r Rows) MarshalJSON() ([]byte, error) {
	if r.Raw != nil {
		return r.Raw, nil
	}
	if r.Cells == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Cells)
}

func (r *Rows) UnmarshalJSON(data []byte) error {
	var cells [][]*Column
	if err := json.Unmarshal(data, &cells); err != nil {
		*r = Rows{Raw: append(json.RawMessage(nil), data...)}
		return nil
	}
	*r = Rows{Cells: cells}
	return nil
}

func isObject(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '{'
}

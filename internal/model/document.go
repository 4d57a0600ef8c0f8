package model

import "encoding/json"

// Fields is a projected entity: the whitelisted subset of its JSON fields.
type Fields map[string]any

// Document is the export artifact.
//
// Every section maps machine names (revision keys are "name:token", reports
// are keyed by report name) to projected entity fields. Reports is nil unless
// report export is enabled, in which case it is always present.
type Document struct {
	Title       string            `json:"title"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Name        string            `json:"name"`
	Roles       map[string]Fields `json:"roles"`
	Forms       map[string]Fields `json:"forms"`
	Resources   map[string]Fields `json:"resources"`
	Actions     map[string]Fields `json:"actions"`
	Revisions   map[string]Fields `json:"revisions"`
	Reports     map[string]Fields `json:"-"`
}

// MarshalJSON emits the reports section whenever it is enabled, even empty.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	var extra map[string]any
	if d.Reports != nil {
		extra = map[string]any{"reports": d.Reports}
	}
	return mergeExtra(plain(d), nil, extra)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var sections struct {
		Reports map[string]Fields `json:"reports"`
	}
	if err := json.Unmarshal(data, &sections); err != nil {
		return err
	}
	*d = Document(p)
	d.Reports = sections.Reports
	return nil
}

// NewDocument returns a document with every mandatory section initialized.
func NewDocument() *Document {
	return &Document{
		Roles:     make(map[string]Fields),
		Forms:     make(map[string]Fields),
		Resources: make(map[string]Fields),
		Actions:   make(map[string]Fields),
		Revisions: make(map[string]Fields),
	}
}

// EnableReports adds the reports section.
func (d *Document) EnableReports() {
	if d.Reports == nil {
		d.Reports = make(map[string]Fields)
	}
}

// Section returns the form-like section with the given name: "resources"
// or, for anything else, "forms".
func (d *Document) Section(name string) map[string]Fields {
	if name == FormTypeResource+"s" {
		return d.Resources
	}
	return d.Forms
}

// EnsureSections initializes every nil mandatory section. The reports
// section is added when reports is true and removed otherwise.
func (d *Document) EnsureSections(reports bool) {
	for _, section := range []*map[string]Fields{&d.Roles, &d.Forms, &d.Resources, &d.Actions, &d.Revisions} {
		if *section == nil {
			*section = make(map[string]Fields)
		}
	}
	if reports {
		d.EnableReports()
	} else {
		d.Reports = nil
	}
}

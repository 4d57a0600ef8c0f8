// Package projection selects the exported subset of an entity's fields.
package projection

import (
	"fmt"
	"slices"

	"github.com/roach88/formexport/internal/model"
)

// Fields is an ordered field whitelist.
type Fields []string

var (
	// RoleFields are the exported fields of a role.
	RoleFields = Fields{"title", "description", "admin", "default"}

	// FormFields are the exported fields of a form or resource.
	FormFields = Fields{
		"title",
		"type",
		"name",
		"path",
		"pdfComponents",
		"display",
		"action",
		"tags",
		"settings",
		"components",
		"access",
		"submissionAccess",
		"properties",
		"controller",
		"submissionRevisions",
		"revisions",
		"esign",
	}

	// ActionFields are the exported fields of an action.
	ActionFields = Fields{"title", "name", "form", "condition", "settings", "priority", "method", "handler"}

	// RevisionFields are the exported fields of a form revision snapshot:
	// the form fields except the revision policy, plus the snapshot version
	// and id.
	RevisionFields = append(FormFields.Without("revisions"), "_vid", "revisionId")

	// ReportFields are the exported fields of a report submission.
	ReportFields = Fields{"data"}
)

// With returns a new whitelist extended by extra. Empty names and names
// already present are skipped. The receiver is never modified.
func (f Fields) With(extra ...string) Fields {
	out := make(Fields, len(f), len(f)+len(extra))
	copy(out, f)
	seen := make(map[string]struct{}, len(f)+len(extra))
	for _, name := range f {
		seen[name] = struct{}{}
	}
	for _, name := range extra {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Without returns a new whitelist with the named fields removed.
func (f Fields) Without(names ...string) Fields {
	out := make(Fields, 0, len(f))
	for _, name := range f {
		if !slices.Contains(names, name) {
			out = append(out, name)
		}
	}
	return out
}

// Pick copies the whitelisted keys that are present in src.
func (f Fields) Pick(src map[string]any) model.Fields {
	out := make(model.Fields, len(f))
	for _, name := range f {
		if v, ok := src[name]; ok {
			out[name] = v
		}
	}
	return out
}

// Project converts entity to its field map and picks the whitelisted keys.
func Project(entity any, fields Fields) (model.Fields, error) {
	all, err := model.ToFields(entity)
	if err != nil {
		return nil, fmt.Errorf("project %T: %w", entity, err)
	}
	return fields.Pick(all), nil
}

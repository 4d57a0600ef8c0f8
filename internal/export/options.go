package export

import "strings"

// Options are the caller-supplied parameters of one export run.
type Options struct {
	// Title, Version, Description and Name override the document defaults
	// when non-empty.
	Title       string `json:"title,omitempty" yaml:"title"`
	Version     string `json:"version,omitempty" yaml:"version"`
	Description string `json:"description,omitempty" yaml:"description"`
	Name        string `json:"name,omitempty" yaml:"name"`

	// IncludeFormFields are extra form fields exported with every form,
	// resource and revision snapshot.
	IncludeFormFields []string `json:"includeFormFields,omitempty" yaml:"includeFormFields"`
}

// Document defaults.
const (
	DefaultTitle   = "Export"
	DefaultVersion = "2.0.0"
	DefaultName    = "export"
)

// ParseInclude splits a comma-separated field list. Surrounding whitespace is
// trimmed and empty entries are dropped. An empty list returns nil.
func ParseInclude(raw string) []string {
	var fields []string
	for _, f := range strings.Split(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// Package schema validates export documents against a CUE schema.
//
// The schema (document.cue) describes the sections of an export and the
// minimal shape of each entity. It is used by `formexport export --validate`
// and by tests that want to assert an export is structurally sound without
// pinning every field.
package schema

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/formexport/internal/canonical"
)

//go:embed document.cue
var documentSchema string

// ValidationError is one schema violation.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validator checks documents against the compiled schema.
//
// Thread-safety: Validator serializes access to its CUE context and is safe
// for concurrent use.
type Validator struct {
	mu       sync.Mutex
	ctx      *cue.Context
	document cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(documentSchema, cue.Filename("document.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Document"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no #Document definition")
	}
	return &Validator{ctx: ctx, document: def}, nil
}

// ValidateJSON validates an encoded document. It returns every violation
// found; an empty result means the document is valid.
func (v *Validator) ValidateJSON(data []byte) []ValidationError {
	v.mu.Lock()
	defer v.mu.Unlock()

	doc := v.ctx.CompileBytes(data, cue.Filename("export.json"))
	if err := doc.Err(); err != nil {
		return toValidationErrors(err)
	}
	unified := v.document.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// Validate encodes doc canonically and validates it.
func (v *Validator) Validate(doc any) ([]ValidationError, error) {
	data, err := canonical.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return v.ValidateJSON(data), nil
}

func toValidationErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		ve := ValidationError{
			Path:    joinPath(e.Path()),
			Message: fmt.Sprintf(format, args...),
		}
		if pos := e.Position(); pos.IsValid() {
			ve.Line = pos.Line()
		}
		out = append(out, ve)
	}
	if len(out) == 0 {
		out = append(out, ValidationError{Message: err.Error()})
	}
	return out
}

// joinPath renders a CUE error path as dotted plain labels, relative to the
// document root.
func joinPath(path []string) string {
	labels := make([]string, 0, len(path))
	for _, p := range path {
		if p == "#Document" {
			continue
		}
		if s, err := strconv.Unquote(p); err == nil {
			p = s
		}
		labels = append(labels, p)
	}
	return strings.Join(labels, ".")
}

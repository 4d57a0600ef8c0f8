package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formexport/internal/model"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}

func TestValidate_GoldenExport(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "export", "testdata", "golden", "full_export.golden"))
	require.NoError(t, err)

	assert.Empty(t, newValidator(t).ValidateJSON(data))
}

func TestValidate_EmptyDocument(t *testing.T) {
	doc := model.NewDocument()
	doc.Title = "Export"
	doc.Version = "2.0.0"
	doc.Name = "export"

	errs, err := newValidator(t).Validate(doc)
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidate_SparseAndNullFields(t *testing.T) {
	doc := `{"title":"t","version":"1","description":"","name":"n",
		"roles":{"anonymous":{},"authenticated":{"default":true}},
		"forms":{"blank":{"title":"","name":null,"components":[{"key":"","type":null,"defaultValue":null}]}},
		"resources":{},"actions":{},"revisions":{"user:2":{"name":"user"}}}`

	assert.Empty(t, newValidator(t).ValidateJSON([]byte(doc)))
}

func TestValidate_Violations(t *testing.T) {
	base := `"title":"t","version":"1","description":"","name":"n","roles":{},"forms":{},"actions":{}`

	tests := []struct {
		name string
		doc  string
		path string
	}{
		{
			name: "missing section",
			doc:  `{` + base + `,"resources":{}}`,
			path: "revisions",
		},
		{
			name: "resource with form type",
			doc:  `{` + base + `,"resources":{"user":{"type":"form","components":[]}},"revisions":{}}`,
			path: "resources.user.type",
		},
		{
			name: "revision key without token",
			doc:  `{` + base + `,"resources":{},"revisions":{"user":{"components":[]}}}`,
			path: "revisions.user",
		},
		{
			name: "negative version",
			doc:  `{` + base + `,"resources":{},"revisions":{"user:1":{"_vid":-1}}}`,
			path: "revisions.user:1._vid",
		},
		{
			name: "unknown top-level field",
			doc:  `{` + base + `,"resources":{},"revisions":{},"extra":true}`,
			path: "extra",
		},
		{
			name: "report forms not a map of ids",
			doc:  `{` + base + `,"resources":{},"revisions":{},"reports":{"r":{"data":{"forms":["a"]}}}}`,
			path: "reports.r.data.forms",
		},
	}

	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.ValidateJSON([]byte(tt.doc))
			require.NotEmpty(t, errs)

			var paths []string
			for _, e := range errs {
				paths = append(paths, e.Path)
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	errs := newValidator(t).ValidateJSON([]byte(`{"title":`))
	require.NotEmpty(t, errs)
	assert.NotEmpty(t, errs[0].Message)
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "roles.admin.title: incomplete value", ValidationError{Path: "roles.admin.title", Message: "incomplete value"}.Error())
	assert.Equal(t, "bad", ValidationError{Message: "bad"}.Error())
}

package projection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/formexport/internal/model"
)

func TestWithAppendsWithoutMutating(t *testing.T) {
	base := Fields{"title", "name"}
	extended := base.With("path", "", "title", "path", "custom")

	assert.Equal(t, Fields{"title", "name", "path", "custom"}, extended)
	assert.Equal(t, Fields{"title", "name"}, base)
}

func TestRevisionFields(t *testing.T) {
	assert.Equal(t, len(FormFields)+1, len(RevisionFields))
	assert.Equal(t, Fields{"_vid", "revisionId"}, RevisionFields[len(RevisionFields)-2:])
	assert.NotContains(t, RevisionFields, "revisions")
	assert.Contains(t, FormFields, "revisions")
	assert.NotContains(t, FormFields, "_vid")
}

func TestWithout(t *testing.T) {
	base := Fields{"a", "b", "c"}
	assert.Equal(t, Fields{"a", "c"}, base.Without("b", "missing"))
	assert.Equal(t, Fields{"a", "b", "c"}, base)
}

func TestPickOnlyPresentKeys(t *testing.T) {
	src := map[string]any{"title": "T", "secret": "x", "admin": false}
	out := RoleFields.Pick(src)

	assert.Equal(t, model.Fields{"title": "T", "admin": false}, out)
}

func TestProjectRole(t *testing.T) {
	role := model.Role{
		ID:          "r1",
		MachineName: "administrator",
		Title:       "Administrator",
		Description: "Full access",
		Admin:       true,
		Extra:       map[string]any{"owner": "someone"},
	}

	out, err := Project(role, RoleFields)
	require.NoError(t, err)
	assert.Equal(t, model.Fields{
		"title":       "Administrator",
		"description": "Full access",
		"admin":       true,
		"default":     false,
	}, out)
}

func TestProjectFormKeepsWhitelistAndExtras(t *testing.T) {
	var form model.Form
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "f1",
		"title": "User",
		"type": "resource",
		"name": "user",
		"path": "user",
		"display": "form",
		"owner": "o1",
		"created": "2020-01-01",
		"customField": {"a": 1},
		"components": []
	}`), &form))

	out, err := Project(form, FormFields.With("customField"))
	require.NoError(t, err)

	assert.Equal(t, "User", out["title"])
	assert.Equal(t, "form", out["display"])
	assert.Equal(t, []any{}, out["components"])
	assert.Equal(t, map[string]any{"a": json.Number("1")}, out["customField"])
	assert.NotContains(t, out, "_id")
	assert.NotContains(t, out, "owner")
	assert.NotContains(t, out, "created")
	assert.NotContains(t, out, "machineName")
}

func TestProjectAction(t *testing.T) {
	var action model.Action
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id": "a1",
		"form": "user",
		"title": "Save",
		"name": "save",
		"priority": 10,
		"method": ["create"],
		"handler": ["before"],
		"settings": {},
		"deleted": null
	}`), &action))

	out, err := Project(action, ActionFields)
	require.NoError(t, err)
	assert.Equal(t, model.Fields{
		"title":    "Save",
		"name":     "save",
		"form":     "user",
		"priority": json.Number("10"),
		"method":   []any{"create"},
		"handler":  []any{"before"},
		"settings": map[string]any{},
	}, out)
}

package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/formexport/internal/model"
)

func oid(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}

func TestNormalize(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got := Normalize(bson.M{
		"_id":     oid(t, "5f0000000000000000000001"),
		"created": primitive.NewDateTimeFromTime(when),
		"count":   int32(7),
		"nested":  bson.D{{Key: "owner", Value: oid(t, "5f00000000000000000000ab")}},
		"list":    bson.A{oid(t, "5f0000000000000000000002"), "x", primitive.Null{}},
	})

	assert.Equal(t, map[string]any{
		"_id":     "5f0000000000000000000001",
		"created": "2024-03-01T12:00:00Z",
		"count":   int64(7),
		"nested":  map[string]any{"owner": "5f00000000000000000000ab"},
		"list":    []any{"5f0000000000000000000002", "x", nil},
	}, got)
}

func TestDecodeRaw_Form(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid(t, "5f00000000000000000000a1")},
		{Key: "name", Value: "user"},
		{Key: "type", Value: "resource"},
		{Key: "project", Value: oid(t, "5f00000000000000000000f1")},
		{Key: "access", Value: bson.A{
			bson.D{
				{Key: "type", Value: "read_all"},
				{Key: "roles", Value: bson.A{oid(t, "5f0000000000000000000001")}},
			},
		}},
		{Key: "components", Value: bson.A{
			bson.D{
				{Key: "type", Value: "form"},
				{Key: "form", Value: oid(t, "5f00000000000000000000a2")},
				{Key: "revision", Value: int32(3)},
			},
		}},
		{Key: "settings", Value: bson.D{{Key: "theme", Value: "dark"}}},
	})
	require.NoError(t, err)

	var form model.Form
	require.NoError(t, decodeRaw(raw, &form))

	assert.Equal(t, "5f00000000000000000000a1", form.ID)
	assert.Equal(t, "5f00000000000000000000f1", form.Project)
	assert.Equal(t, []string{"5f0000000000000000000001"}, form.Access[0].Roles)
	require.Len(t, form.Components, 1)
	assert.Equal(t, "5f00000000000000000000a2", *form.Components[0].Form)
	assert.Equal(t, model.RevisionToken{Value: "3", Numeric: true}, *form.Components[0].Revision)
	assert.Equal(t, map[string]any{"theme": "dark"}, form.Extra["settings"])
}

func TestDecodeRaw_Revision(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid(t, "5f00000000000000000000c2")},
		{Key: "_rid", Value: oid(t, "5f00000000000000000000a1")},
		{Key: "_vid", Value: int32(2)},
		{Key: "name", Value: "user"},
		{Key: "deleted", Value: nil},
	})
	require.NoError(t, err)

	var rev model.FormRevision
	require.NoError(t, decodeRaw(raw, &rev))
	assert.Equal(t, "5f00000000000000000000a1", rev.FormID)
	assert.Equal(t, int64(2), rev.VID)
	assert.Nil(t, rev.Deleted)
}

package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/projection"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/store"
)

// Fixture ids used across tests.
const (
	roleAdmin  = "5f0000000000000000000001"
	roleAuth   = "5f0000000000000000000002"
	formUser   = "5f00000000000000000000a1"
	formOrder  = "5f00000000000000000000a2"
	formRep    = "5f00000000000000000000a3"
	snapshotC9 = "5f00000000000000000000c9"
)

// createFixtureStore opens a temp store seeded with testdata/fixture.json.
func createFixtureStore(t *testing.T) *store.Store {
	t.Helper()
	s := createEmptyStore(t)
	f, err := store.LoadFixture(filepath.Join("testdata", "fixture.json"))
	require.NoError(t, err)
	require.NoError(t, s.Seed(context.Background(), f))
	return s
}

// fixtureEntity returns the raw fixture document with the given _id.
func fixtureEntity(t *testing.T, collection, id string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "fixture.json"))
	require.NoError(t, err)

	var fixture map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &fixture))
	for _, doc := range fixture[collection] {
		if doc["_id"] == id {
			return doc
		}
	}
	t.Fatalf("no %s fixture with _id %s", collection, id)
	return nil
}

// whitelisted returns the keys of doc that fields exports.
func whitelisted(doc map[string]any, fields projection.Fields) []string {
	var out []string
	for _, name := range fields {
		if _, ok := doc[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func createEmptyStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestExporter(src Source, hooks ...Hook) *Exporter {
	return New(src,
		WithHooks(hooks...),
		WithRunIDGenerator(NewFixedGenerator("run-test")),
	)
}

// memSource is an in-memory Source that ignores filters and records them.
type memSource struct {
	roles       []model.Role
	forms       []model.Form
	actions     []model.Action
	submissions []model.Submission
	revisions   []model.FormRevision

	failOn  string
	filters map[string]queryir.Predicate
}

func (m *memSource) record(kind string, filter queryir.Predicate) error {
	if m.filters == nil {
		m.filters = make(map[string]queryir.Predicate)
	}
	m.filters[kind] = filter
	if m.failOn == kind {
		return errBackend
	}
	return nil
}

func (m *memSource) Roles(_ context.Context, filter queryir.Predicate) ([]model.Role, error) {
	if err := m.record("roles", filter); err != nil {
		return nil, err
	}
	return append([]model.Role(nil), m.roles...), nil
}

func (m *memSource) Forms(_ context.Context, filter queryir.Predicate) ([]model.Form, error) {
	if err := m.record("forms", filter); err != nil {
		return nil, err
	}
	return append([]model.Form(nil), m.forms...), nil
}

func (m *memSource) Actions(_ context.Context, filter queryir.Predicate) ([]model.Action, error) {
	if err := m.record("actions", filter); err != nil {
		return nil, err
	}
	return append([]model.Action(nil), m.actions...), nil
}

func (m *memSource) Submissions(_ context.Context, filter queryir.Predicate) ([]model.Submission, error) {
	if err := m.record("submissions", filter); err != nil {
		return nil, err
	}
	return append([]model.Submission(nil), m.submissions...), nil
}

// memRevisions is a RevisionCollection backed by a slice.
type memRevisions struct {
	m *memSource
}

func (r memRevisions) Revisions(_ context.Context, filter queryir.Predicate) ([]model.FormRevision, error) {
	if err := r.m.record("revisions", filter); err != nil {
		return nil, err
	}
	return append([]model.FormRevision(nil), r.m.revisions...), nil
}

// revisionSource adds the RevisionCollection methods to memSource.
type revisionSource struct {
	*memSource
}

func (s revisionSource) Revisions(ctx context.Context, filter queryir.Predicate) ([]model.FormRevision, error) {
	return memRevisions{s.memSource}.Revisions(ctx, filter)
}

var errBackend = errors.New("backend unavailable")

func strPtr(s string) *string { return &s }

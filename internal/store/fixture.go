package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/formexport/internal/model"
)

// Fixture is a set of entities to seed a store with.
type Fixture struct {
	Roles       []model.Role         `json:"roles"`
	Forms       []model.Form         `json:"forms"`
	Actions     []model.Action       `json:"actions"`
	Revisions   []model.FormRevision `json:"formrevisions"`
	Submissions []model.Submission   `json:"submissions"`
}

type fixtureBatch struct {
	collection string
	entities   []any
}

func (f *Fixture) batches() []fixtureBatch {
	return []fixtureBatch{
		{CollectionRoles, toAny(f.Roles)},
		{CollectionForms, toAny(f.Forms)},
		{CollectionActions, toAny(f.Actions)},
		{CollectionRevisions, toAny(f.Revisions)},
		{CollectionSubmissions, toAny(f.Submissions)},
	}
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

// LoadFixture reads a fixture from a JSON or YAML file, chosen by extension.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseFixtureYAML(data)
	default:
		return ParseFixtureJSON(data)
	}
}

// ParseFixtureJSON parses a JSON fixture. Unknown top-level keys are rejected.
func ParseFixtureJSON(data []byte) (*Fixture, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// ParseFixtureYAML parses a YAML fixture by converting it to JSON first, so
// entities decode exactly as they would from a JSON fixture.
func ParseFixtureYAML(data []byte) (*Fixture, error) {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if generic == nil {
		return &Fixture{}, nil
	}
	converted, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return ParseFixtureJSON(converted)
}

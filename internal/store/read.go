package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/queryir"
)

// Roles returns the roles matching filter.
func (s *Store) Roles(ctx context.Context, filter queryir.Predicate) ([]model.Role, error) {
	return find[model.Role](ctx, s, CollectionRoles, filter)
}

// Forms returns the forms and resources matching filter.
func (s *Store) Forms(ctx context.Context, filter queryir.Predicate) ([]model.Form, error) {
	return find[model.Form](ctx, s, CollectionForms, filter)
}

// Actions returns the actions matching filter.
func (s *Store) Actions(ctx context.Context, filter queryir.Predicate) ([]model.Action, error) {
	return find[model.Action](ctx, s, CollectionActions, filter)
}

// Submissions returns the submissions matching filter.
func (s *Store) Submissions(ctx context.Context, filter queryir.Predicate) ([]model.Submission, error) {
	return find[model.Submission](ctx, s, CollectionSubmissions, filter)
}

// Revisions returns the form revision snapshots matching filter.
func (s *Store) Revisions(ctx context.Context, filter queryir.Predicate) ([]model.FormRevision, error) {
	return find[model.FormRevision](ctx, s, CollectionRevisions, filter)
}

// Count returns the number of documents in collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if !knownCollection(collection) {
		return 0, fmt.Errorf("unknown collection %q", collection)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// find runs filter against collection and decodes every matching document.
// Results are ordered by id. Returns an empty slice (not nil) when nothing
// matches.
func find[T any](ctx context.Context, s *Store, collection string, filter queryir.Predicate) ([]T, error) {
	query, args, err := s.compiler.Compile(queryir.Select{From: collection, Filter: filter})
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", collection, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		var v T
		if err := decodeDocument(id, doc, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", collection, id, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

// decodeDocument decodes doc into v with "_id" forced to the row id.
func decodeDocument(id, doc string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return err
	}
	obj["_id"] = id

	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

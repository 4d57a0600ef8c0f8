package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/roach88/formexport/internal/model"
)

// Insert stores entity in collection and returns its id. An entity without
// "_id" gets a fresh object id. Uses ON CONFLICT(id) DO NOTHING for
// idempotency - re-inserting an existing id is silently ignored.
func (s *Store) Insert(ctx context.Context, collection string, entity any) (string, error) {
	return insert(ctx, s.db, collection, entity)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, db execer, collection string, entity any) (string, error) {
	if !knownCollection(collection) {
		return "", fmt.Errorf("insert: unknown collection %q", collection)
	}

	fields, err := model.ToFields(entity)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	id, _ := fields["_id"].(string)
	if id == "" {
		id = primitive.NewObjectID().Hex()
		fields["_id"] = id
	}

	doc, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}

	_, err = db.ExecContext(ctx,
		"INSERT INTO "+collection+" (id, doc) VALUES (?, ?) ON CONFLICT(id) DO NOTHING",
		id, string(doc),
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return id, nil
}

// Seed inserts every entity of f in a single transaction.
func (s *Store) Seed(ctx context.Context, f *Fixture) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, batch := range f.batches() {
		for _, entity := range batch.entities {
			if _, err = insert(ctx, tx, batch.collection, entity); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}

package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/querybson"
	"github.com/roach88/formexport/internal/queryir"
)

// Collection names.
const (
	CollectionRoles       = "roles"
	CollectionForms       = "forms"
	CollectionActions     = "actions"
	CollectionRevisions   = "formrevisions"
	CollectionSubmissions = "submissions"
)

// connectTimeout bounds Connect when the caller's context has no deadline.
const connectTimeout = 10 * time.Second

// Store reads entities from one MongoDB database.
type Store struct {
	db     *mongo.Database
	client *mongo.Client
	logger *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger queries are traced to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New wraps an existing database handle. Close is a no-op for stores built
// this way; the caller owns the client.
func New(db *mongo.Database, opts ...Option) *Store {
	s := &Store{db: db, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect dials uri, verifies the connection and returns a store over
// database.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := New(client.Database(database), opts...)
	s.client = client
	return s, nil
}

// Close disconnects the client if the store opened it.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

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

// find runs filter against collection sorted by _id and decodes every
// document. Returns an empty slice (not nil) when nothing matches.
func find[T any](ctx context.Context, s *Store, collection string, filter queryir.Predicate) ([]T, error) {
	query, err := querybson.Compile(filter)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", collection, err)
	}
	s.logger.Debug("mongo find", zap.String("collection", collection), zap.Any("filter", query))

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	for cursor.Next(ctx) {
		var v T
		if err := decodeRaw(cursor.Current, &v); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		out = append(out, v)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return out, nil
}

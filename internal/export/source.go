package export

import (
	"context"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/queryir"
)

// Source is the storage the exporter reads from. Every method returns the
// entities matching filter in a stable order.
type Source interface {
	Roles(ctx context.Context, filter queryir.Predicate) ([]model.Role, error)
	Forms(ctx context.Context, filter queryir.Predicate) ([]model.Form, error)
	Actions(ctx context.Context, filter queryir.Predicate) ([]model.Action, error)
	Submissions(ctx context.Context, filter queryir.Predicate) ([]model.Submission, error)
}

// RevisionCollection is the queryable collection of form revision snapshots.
// A Source that also implements RevisionCollection is used as the default
// collection.
type RevisionCollection interface {
	Revisions(ctx context.Context, filter queryir.Predicate) ([]model.FormRevision, error)
}

// QueryKind identifies the collection a query hook is asked to adjust.
type QueryKind string

const (
	QueryRoles       QueryKind = "roles"
	QueryForms       QueryKind = "forms"
	QueryActions     QueryKind = "actions"
	QuerySubmissions QueryKind = "submissions"
)

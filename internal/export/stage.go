package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/refmap"
)

// Built-in stage names.
const (
	StageRoles     = "roles"
	StageForms     = "forms"
	StageActions   = "actions"
	StageRevisions = "revisions"
	StageReports   = "reports"
)

// Stage is one step of an export run.
type Stage interface {
	Name() string
	Run(ctx context.Context, run *Run) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, run *Run) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context, run *Run) error { return s.Fn(ctx, run) }

// DefaultStages returns the built-in stages in execution order.
func DefaultStages() []Stage {
	return []Stage{
		rolesStage{},
		formsStage{},
		actionsStage{},
		revisionsStage{},
		reportsStage{},
	}
}

// Run is the state of one export run. It is owned by a single Export call
// and must not be retained after it returns.
type Run struct {
	// ID identifies the run in logs.
	ID string

	// Doc is the document being built.
	Doc *model.Document

	// Refs maps ids to machine names for the stages that follow.
	Refs *refmap.Map

	// Options are the caller's options.
	Options Options

	// ReportsEnabled is the reports hook verdict for this run.
	ReportsEnabled bool

	src    Source
	hooks  hookChain
	logger *zap.Logger
}

// Source returns the storage the run reads from.
func (r *Run) Source() Source { return r.src }

// Logger returns the run's logger, tagged with the run id.
func (r *Run) Logger() *zap.Logger { return r.logger }

// MachineName derives an entity's export name: the stored machine name, else
// the first non-empty fallback, passed through the machine-name hooks.
func (r *Run) MachineName(stored string, fallbacks ...string) string {
	name := stored
	for _, f := range fallbacks {
		if name != "" {
			break
		}
		name = f
	}
	return r.hooks.alterMachineName(name)
}

// resolveAccess rewrites the role ids of every rule to machine names.
func (r *Run) resolveAccess(rules []model.AccessRule) {
	for i := range rules {
		for j, id := range rules[i].Roles {
			rules[i].Roles[j] = r.Refs.Resolve(refmap.KindRole, id)
		}
	}
}

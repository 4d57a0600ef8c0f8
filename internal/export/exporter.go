package export

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/refmap"
)

// StageObserver is notified after every stage with its duration and result.
type StageObserver func(stage string, elapsed time.Duration, err error)

// Exporter runs export pipelines against a Source.
//
// An Exporter holds no per-run state and may serve concurrent Export calls
// as long as its Source and hooks do.
type Exporter struct {
	src      Source
	hooks    hookChain
	logger   *zap.Logger
	runIDs   RunIDGenerator
	observer StageObserver
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks appends hooks. Hooks of one kind run in the order given.
func WithHooks(hooks ...Hook) Option {
	return func(e *Exporter) {
		all := append(e.hookList(), hooks...)
		e.hooks = newHookChain(all)
	}
}

// WithRunIDGenerator sets the run id generator. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Exporter) {
		if g != nil {
			e.runIDs = g
		}
	}
}

// WithStageObserver registers a callback invoked after each stage.
func WithStageObserver(o StageObserver) Option {
	return func(e *Exporter) {
		e.observer = o
	}
}

// New creates an Exporter reading from src.
func New(src Source, opts ...Option) *Exporter {
	e := &Exporter{
		src:    src,
		logger: zap.NewNop(),
		runIDs: UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// hookList returns the registered hooks as an ordered list.
func (e *Exporter) hookList() []Hook {
	return append([]Hook(nil), e.hooks.all...)
}

// HookNames returns the names of the registered hooks in order.
func (e *Exporter) HookNames() []string {
	names := make([]string, 0, len(e.hooks.all))
	for _, h := range e.hooks.all {
		names = append(names, h.HookName())
	}
	return names
}

// Export runs every stage in order and returns the finished document.
// The first stage error aborts the run; no partial document is returned.
func (e *Exporter) Export(ctx context.Context, opts Options) (*model.Document, error) {
	runID := e.runIDs.Generate()
	logger := e.logger.With(zap.String("run_id", runID))
	start := time.Now()

	reports := e.hooks.includeReports()
	doc := e.baseDocument(opts, reports)

	run := &Run{
		ID:             runID,
		Doc:            doc,
		Refs:           refmap.New(),
		Options:        opts,
		ReportsEnabled: reports,
		src:            e.src,
		hooks:          e.hooks,
		logger:         logger,
	}

	stages := e.hooks.alterStages(DefaultStages())
	logger.Info("export started",
		zap.Int("stages", len(stages)),
		zap.Bool("reports", reports),
		zap.Strings("include", opts.IncludeFormFields),
	)

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			logger.Warn("export cancelled", zap.String("stage", stage.Name()), zap.Error(err))
			return nil, err
		}

		stageStart := time.Now()
		err := stage.Run(ctx, run)
		elapsed := time.Since(stageStart)
		if e.observer != nil {
			e.observer(stage.Name(), elapsed, err)
		}
		if err != nil {
			logger.Error("export failed", zap.String("stage", stage.Name()), zap.Error(err))
			return nil, err
		}
		logger.Debug("stage finished", zap.String("stage", stage.Name()), zap.Duration("elapsed", elapsed))
	}

	logger.Info("export finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("roles", len(run.Doc.Roles)),
		zap.Int("forms", len(run.Doc.Forms)),
		zap.Int("resources", len(run.Doc.Resources)),
		zap.Int("actions", len(run.Doc.Actions)),
		zap.Int("revisions", len(run.Doc.Revisions)),
	)
	return run.Doc, nil
}

// baseDocument builds the empty document with the caller's overrides
// applied and the template hooks run.
func (e *Exporter) baseDocument(opts Options, reports bool) *model.Document {
	doc := model.NewDocument()
	doc.Title = DefaultTitle
	doc.Version = DefaultVersion
	doc.Name = DefaultName
	if opts.Title != "" {
		doc.Title = opts.Title
	}
	if opts.Version != "" {
		doc.Version = opts.Version
	}
	if opts.Description != "" {
		doc.Description = opts.Description
	}
	if opts.Name != "" {
		doc.Name = opts.Name
	}
	if reports {
		doc.EnableReports()
	}
	doc = e.hooks.alterTemplate(doc, opts)
	doc.EnsureSections(reports)
	return doc
}

package export

import (
	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/queryir"
)

// Hook is an extension strategy passed to New. A hook implements one or more
// of the interfaces below; hooks of the same kind run in the order given, each
// receiving the previous hook's result.
//
// Hooks are shared between runs and must not keep per-run state.
type Hook interface {
	HookName() string
}

// MachineNameHook rewrites the machine name an entity is exported under.
type MachineNameHook interface {
	Hook
	AlterMachineName(name string) string
}

// TemplateHook adjusts the base document before any stage runs.
// Returning nil keeps the previous document.
type TemplateHook interface {
	Hook
	AlterTemplate(doc *model.Document, opts Options) *model.Document
}

// StageListHook replaces or augments the stage list.
type StageListHook interface {
	Hook
	AlterStages(stages []Stage) []Stage
}

// QueryHook adjusts the filter used to load entities of kind.
type QueryHook interface {
	Hook
	AlterQuery(kind QueryKind, filter queryir.Predicate, opts Options) queryir.Predicate
}

// ReportsHook decides whether the reports section is exported.
type ReportsHook interface {
	Hook
	IncludeReports(enabled bool) bool
}

// ComponentHook adjusts each form component after its references have been
// rewritten. It may mutate the component freely.
type ComponentHook interface {
	Hook
	AlterComponent(c *model.Component)
}

// RevisionCollectionHook supplies the collection revision snapshots are
// loaded from.
type RevisionCollectionHook interface {
	Hook
	AlterRevisionCollection(prev RevisionCollection) RevisionCollection
}

// hookChain holds the hooks of each kind in registration order.
type hookChain struct {
	all         []Hook
	machineName []MachineNameHook
	template    []TemplateHook
	stages      []StageListHook
	query       []QueryHook
	reports     []ReportsHook
	component   []ComponentHook
	revisions   []RevisionCollectionHook
}

func newHookChain(hooks []Hook) hookChain {
	var c hookChain
	for _, h := range hooks {
		if h == nil {
			continue
		}
		c.all = append(c.all, h)
		if v, ok := h.(MachineNameHook); ok {
			c.machineName = append(c.machineName, v)
		}
		if v, ok := h.(TemplateHook); ok {
			c.template = append(c.template, v)
		}
		if v, ok := h.(StageListHook); ok {
			c.stages = append(c.stages, v)
		}
		if v, ok := h.(QueryHook); ok {
			c.query = append(c.query, v)
		}
		if v, ok := h.(ReportsHook); ok {
			c.reports = append(c.reports, v)
		}
		if v, ok := h.(ComponentHook); ok {
			c.component = append(c.component, v)
		}
		if v, ok := h.(RevisionCollectionHook); ok {
			c.revisions = append(c.revisions, v)
		}
	}
	return c
}

func (c hookChain) alterMachineName(name string) string {
	for _, h := range c.machineName {
		name = h.AlterMachineName(name)
	}
	return name
}

func (c hookChain) alterTemplate(doc *model.Document, opts Options) *model.Document {
	for _, h := range c.template {
		if next := h.AlterTemplate(doc, opts); next != nil {
			doc = next
		}
	}
	return doc
}

func (c hookChain) alterStages(stages []Stage) []Stage {
	for _, h := range c.stages {
		stages = h.AlterStages(stages)
	}
	return stages
}

func (c hookChain) alterQuery(kind QueryKind, filter queryir.Predicate, opts Options) queryir.Predicate {
	for _, h := range c.query {
		filter = h.AlterQuery(kind, filter, opts)
	}
	return filter
}

func (c hookChain) includeReports() bool {
	enabled := false
	for _, h := range c.reports {
		enabled = h.IncludeReports(enabled)
	}
	return enabled
}

func (c hookChain) alterComponent(comp *model.Component) {
	for _, h := range c.component {
		h.AlterComponent(comp)
	}
}

func (c hookChain) revisionCollection(prev RevisionCollection) RevisionCollection {
	for _, h := range c.revisions {
		prev = h.AlterRevisionCollection(prev)
	}
	return prev
}

// ReportsEnabled is a ReportsHook that turns report export on.
type ReportsEnabled struct{}

func (ReportsEnabled) HookName() string { return "reports-enabled" }

func (ReportsEnabled) IncludeReports(bool) bool { return true }

// ExtraFilter is a QueryHook that adds Filter to every query of Kind.
type ExtraFilter struct {
	Kind   QueryKind
	Filter queryir.Predicate
}

func (f ExtraFilter) HookName() string { return "extra-filter:" + string(f.Kind) }

func (f ExtraFilter) AlterQuery(kind QueryKind, filter queryir.Predicate, _ Options) queryir.Predicate {
	if kind != f.Kind || f.Filter == nil {
		return filter
	}
	return queryir.AllOf(filter, f.Filter)
}

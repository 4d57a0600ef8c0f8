package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/formtree"
	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/projection"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/refmap"
)

// formsStage exports forms and resources in two passes. The first registers
// every form id; the second rewrites component references, which may point
// at any form of the batch.
type formsStage struct{}

func (formsStage) Name() string { return StageForms }

func (s formsStage) Run(ctx context.Context, run *Run) error {
	filter := run.hooks.alterQuery(QueryForms, queryir.NotDeleted(), run.Options)
	forms, err := run.src.Forms(ctx, filter)
	if err != nil {
		return newStorageError(s.Name(), "forms", err)
	}

	batch := make([]*model.Form, 0, len(forms))
	for i := range forms {
		form := &forms[i]
		if form.ID == "" {
			run.logger.Debug("skipping form without id", zap.String("name", form.Name))
			continue
		}

		run.resolveAccess(form.Access)
		run.resolveAccess(form.SubmissionAccess)
		form.MachineName = run.MachineName(form.MachineName, form.Name, form.Title)
		if form.Revisions.Enabled() {
			run.Refs.EnableRevisions(refmap.RevisionForm{
				MachineName: form.MachineName,
				Policy:      form.Revisions,
				Project:     form.Project,
			})
		}
		run.Refs.Register(refmap.KindForm, form.ID, form.MachineName)
		batch = append(batch, form)
	}

	components := 0
	for _, form := range batch {
		formtree.Walk(form.Components, func(c *model.Component) {
			s.rewriteComponent(run, c)
			components++
		})
	}

	fields := projection.FormFields.With(run.Options.IncludeFormFields...)
	for _, form := range batch {
		projected, err := projection.Project(form, fields)
		if err != nil {
			return newProjectionError(s.Name(), form.MachineName, err)
		}
		run.Doc.Section(form.Section())[form.MachineName] = projected
	}

	run.logger.Debug("forms exported",
		zap.Int("queried", len(forms)),
		zap.Int("exported", len(batch)),
		zap.Int("components", components),
		zap.Int("pending_revisions", len(run.Refs.PendingRevisions())),
	)
	return nil
}

// rewriteComponent replaces the ids a component embeds with machine names,
// masks project references and queues pinned revisions.
func (formsStage) rewriteComponent(run *Run, c *model.Component) {
	refs := run.Refs

	refs.ResolvePtr(refmap.KindForm, c.Form)
	refs.ResolvePtr(refmap.KindResource, c.Resource)
	if d := c.Data; d != nil && d.Raw == nil {
		refs.ResolvePtr(refmap.KindForm, d.Form)
		refs.ResolvePtr(refmap.KindResource, d.Resource)
		maskProject(d.Project)
	}
	if f := c.Fetch; f != nil && f.Raw == nil {
		refs.ResolvePtr(refmap.KindResource, f.Resource)
	}
	maskProject(c.Project)

	// The default would reference a submission that is not exported.
	if c.IsResourceSelect() && c.HasDefaultValue() {
		c.ClearDefaultValue()
	}

	if c.Form != nil && c.Revision != nil && !c.Revision.IsZero() {
		refs.EnqueueRevision(*c.Form, *c.Revision)
	}

	run.hooks.alterComponent(c)
}

func maskProject(ref *string) {
	if ref != nil && *ref != "" {
		*ref = model.ProjectPlaceholder
	}
}

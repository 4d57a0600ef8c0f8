package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/projection"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/refmap"
)

// revisionsStage exports the form snapshots pinned by components.
//
// A 24-character token pins a snapshot by its id or revisionId. Any other
// token is a sequential version of the referenced form, looked up together
// with that form's project and name.
type revisionsStage struct{}

func (revisionsStage) Name() string { return StageRevisions }

func (s revisionsStage) Run(ctx context.Context, run *Run) error {
	pending := run.Refs.PendingRevisions()
	if len(pending) == 0 {
		return nil
	}

	terms := s.terms(run, pending)
	if len(terms) == 0 {
		run.logger.Debug("no revision terms", zap.Int("pending", len(pending)))
		return nil
	}

	var collection RevisionCollection
	if rc, ok := run.src.(RevisionCollection); ok {
		collection = rc
	}
	collection = run.hooks.revisionCollection(collection)
	if collection == nil {
		run.logger.Warn("no revision collection, skipping pinned revisions", zap.Int("pending", len(pending)))
		return nil
	}

	filter := queryir.AllOf(queryir.NotDeleted(), queryir.Or{Predicates: terms})
	snapshots, err := collection.Revisions(ctx, filter)
	if err != nil {
		return newStorageError(s.Name(), "form revisions", err)
	}
	if len(run.Refs.RevisionForms()) == 0 {
		run.logger.Debug("no revision-enabled forms exported", zap.Int("snapshots", len(snapshots)))
		return nil
	}

	fields := projection.RevisionFields.With(run.Options.IncludeFormFields...)
	exported := 0
	for i := range snapshots {
		snap := &snapshots[i]
		entry, ok := matchPending(pending, snap)
		if !ok {
			run.logger.Debug("snapshot matches no component", zap.String("name", snap.Name), zap.String("id", snap.ID))
			continue
		}

		run.resolveAccess(snap.Access)
		run.resolveAccess(snap.SubmissionAccess)

		key := snap.Name + ":" + entry.Token.String()
		projected, err := projection.Project(snap, fields)
		if err != nil {
			return newProjectionError(s.Name(), key, err)
		}
		run.Doc.Revisions[key] = projected
		exported++

		if rf, ok := run.Refs.RevisionForm(snap.Name); ok {
			if form, ok := run.Doc.Section(snap.Section())[snap.Name]; ok {
				form["revisions"] = string(rf.Policy)
			}
		}
	}

	run.logger.Debug("revisions exported",
		zap.Int("pending", len(pending)),
		zap.Int("snapshots", len(snapshots)),
		zap.Int("exported", exported),
	)
	return nil
}

// terms builds one query term per addressable pending reference.
func (revisionsStage) terms(run *Run, pending []refmap.PendingRevision) []queryir.Predicate {
	var terms []queryir.Predicate
	for _, p := range pending {
		if p.Token.IsSnapshotID() {
			id := queryir.ID(p.Token.Value)
			terms = append(terms,
				queryir.Equals{Field: "_id", Value: id},
				queryir.Equals{Field: "revisionId", Value: id},
			)
			continue
		}

		rf, ok := run.Refs.RevisionForm(p.Form)
		if !ok {
			run.logger.Debug("dropping revision of form without revisions",
				zap.String("form", p.Form), zap.String("token", p.Token.String()))
			continue
		}
		vid, err := p.Token.Version()
		if err != nil {
			run.logger.Warn("dropping malformed revision version",
				zap.String("form", p.Form), zap.String("token", p.Token.String()), zap.Error(err))
			continue
		}

		var project queryir.Predicate = queryir.IsNull{Field: "project"}
		if rf.Project != "" {
			project = queryir.Equals{Field: "project", Value: queryir.ID(rf.Project)}
		}
		terms = append(terms, queryir.And{Predicates: []queryir.Predicate{
			project,
			queryir.Equals{Field: "name", Value: queryir.String(p.Form)},
			queryir.Equals{Field: "_vid", Value: queryir.Int(vid)},
		}})
	}
	return terms
}

// matchPending picks the pending reference a snapshot answers: the first one
// naming the snapshot's form whose token addresses the snapshot, else the
// first one naming the form at all.
func matchPending(pending []refmap.PendingRevision, snap *model.FormRevision) (refmap.PendingRevision, bool) {
	fallback := -1
	for i, p := range pending {
		if p.Form != snap.Name {
			continue
		}
		if addresses(p.Token, snap) {
			return p, true
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return refmap.PendingRevision{}, false
	}
	return pending[fallback], true
}

func addresses(token model.RevisionToken, snap *model.FormRevision) bool {
	if token.IsSnapshotID() {
		return token.Value == snap.ID || token.Value == snap.RevisionID
	}
	vid, err := token.Version()
	return err == nil && vid == snap.VID
}

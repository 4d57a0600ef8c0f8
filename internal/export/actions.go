package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/projection"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/refmap"
)

// actionsStage exports the actions attached to exported forms.
type actionsStage struct{}

func (actionsStage) Name() string { return StageActions }

func (s actionsStage) Run(ctx context.Context, run *Run) error {
	base := queryir.AllOf(
		queryir.In{Field: "form", Values: queryir.IDs(run.Refs.IDs(refmap.KindForm))},
		queryir.NotDeleted(),
	)
	filter := run.hooks.alterQuery(QueryActions, base, run.Options)
	actions, err := run.src.Actions(ctx, filter)
	if err != nil {
		return newStorageError(s.Name(), "actions", err)
	}

	refs := run.Refs
	exported := 0
	for i := range actions {
		action := &actions[i]
		if action.ID == "" {
			run.logger.Debug("skipping action without id", zap.String("name", action.Name))
			continue
		}

		action.Form = refs.Resolve(refmap.KindForm, action.Form)
		if st := action.Settings; st != nil {
			refs.ResolvePtr(refmap.KindRole, st.Role)
			refs.ResolvePtr(refmap.KindResource, st.Resource)
			for j, id := range st.Resources {
				st.Resources[j] = refs.Resolve(refmap.KindResource, id)
			}
		}
		action.MachineName = run.MachineName(action.MachineName, action.Name)

		fields, err := projection.Project(action, projection.ActionFields)
		if err != nil {
			return newProjectionError(s.Name(), action.MachineName, err)
		}
		refs.Register(refmap.KindAction, action.ID, action.MachineName)
		run.Doc.Actions[action.MachineName] = fields
		exported++
	}

	run.logger.Debug("actions exported", zap.Int("queried", len(actions)), zap.Int("exported", exported))
	return nil
}

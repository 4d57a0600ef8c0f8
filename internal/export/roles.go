package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/projection"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/refmap"
)

// rolesStage exports every non-deleted role. The Everyone sentinel is
// registered but never written to the roles section.
type rolesStage struct{}

func (rolesStage) Name() string { return StageRoles }

func (s rolesStage) Run(ctx context.Context, run *Run) error {
	filter := run.hooks.alterQuery(QueryRoles, queryir.NotDeleted(), run.Options)
	roles, err := run.src.Roles(ctx, filter)
	if err != nil {
		return newStorageError(s.Name(), "roles", err)
	}
	roles = append(roles, model.Everyone())

	exported := 0
	for i := range roles {
		role := &roles[i]
		if role.ID == "" {
			run.logger.Debug("skipping role without id", zap.String("title", role.Title))
			continue
		}

		role.MachineName = run.MachineName(role.MachineName, role.Title)
		run.Refs.Register(refmap.KindRole, role.ID, role.MachineName)
		if role.IsEveryone() {
			continue
		}

		fields, err := projection.Project(role, projection.RoleFields)
		if err != nil {
			return newProjectionError(s.Name(), role.MachineName, err)
		}
		run.Doc.Roles[role.MachineName] = fields
		exported++
	}

	run.logger.Debug("roles exported", zap.Int("queried", len(roles)-1), zap.Int("exported", exported))
	return nil
}

package export

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/formexport/internal/model"
	"github.com/roach88/formexport/internal/queryir"
	"github.com/roach88/formexport/internal/refmap"
)

// reportsStage exports the report configurations stored as submissions of
// the reporting form. It does nothing unless reports are enabled and the
// reporting form was exported.
type reportsStage struct{}

func (reportsStage) Name() string { return StageReports }

func (s reportsStage) Run(ctx context.Context, run *Run) error {
	if !run.ReportsEnabled {
		return nil
	}
	formID, ok := run.Refs.FindID(refmap.KindForm, model.ReportingFormName)
	if !ok {
		run.logger.Debug("reporting form not exported")
		return nil
	}
	run.Doc.EnableReports()

	base := queryir.AllOf(
		queryir.Equals{Field: "form", Value: queryir.ID(formID)},
		queryir.NotDeleted(),
	)
	filter := run.hooks.alterQuery(QuerySubmissions, base, run.Options)
	submissions, err := run.src.Submissions(ctx, filter)
	if err != nil {
		return newStorageError(s.Name(), "report submissions", err)
	}

	exported := 0
	for i := range submissions {
		data := submissions[i].Data
		if data == nil {
			continue
		}

		name := data.ReportName()
		fields, err := model.ToFields(data)
		if err != nil {
			return newProjectionError(s.Name(), name, err)
		}
		forms := make(map[string]any, len(data.Forms))
		for _, id := range data.Forms {
			forms[run.Refs.Resolve(refmap.KindForm, id)] = id
		}
		fields["forms"] = forms

		run.Doc.Reports[name] = model.Fields{"data": fields}
		exported++
	}

	run.logger.Debug("reports exported", zap.Int("queried", len(submissions)), zap.Int("exported", exported))
	return nil
}

package runner

import (
	"context"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/lineage"
	"wealthos/governance/pkg/governance/storage"
	"wealthos/governance/pkg/telemetry/logging"
)

// Lineage returns the lineage of the metric kpiID.
func (r *Runner) Lineage(ctx context.Context, kpiID string) (*governance.Lineage, error) {
	kpi, err := storage.Load[governance.Kpi](ctx, r.catalog, governance.CollectionKpis, kpiID)
	if err != nil {
		return nil, err
	}
	return r.lineageFor(ctx, kpi)
}

// DefineLineage stores a new lineage for the metric kpiID and links the
// metric to it. Earlier lineage records are kept; the metric points at the
// newest one.
func (r *Runner) DefineLineage(ctx context.Context, kpiID string, inputs []governance.LineageInput, transforms []governance.LineageTransform, outputs []governance.LineageOutput) (*governance.Lineage, error) {
	ctx = logging.WithKpiID(ctx, kpiID)

	kpi, err := storage.Load[governance.Kpi](ctx, r.catalog, governance.CollectionKpis, kpiID)
	if err != nil {
		return nil, err
	}
	l, err := lineage.Define(kpiID, inputs, transforms, outputs)
	if err != nil {
		return nil, err
	}
	if err := storage.Save(ctx, r.catalog, governance.CollectionLineage, l); err != nil {
		return nil, err
	}

	kpi.LineageID = l.ID
	if err := storage.Save(ctx, r.catalog, governance.CollectionKpis, kpi); err != nil {
		return nil, err
	}

	if res := lineage.Validate(l); !res.Valid {
		r.logger.WarnContext(ctx, "lineage stored with issues", "lineage_id", l.ID, "issues", res.Issues)
	}
	return l, nil
}

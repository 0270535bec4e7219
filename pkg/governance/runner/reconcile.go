package runner

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/recon"
	"wealthos/governance/pkg/telemetry/tracing"
)

// ReconRequest names the two raw collections to compare and how to read
// them. Rows are decoded as recon.Position (ibor_abor,
// positions_custodian), recon.CashEntry (cash_bank) or recon.LedgerBalance
// (gl_subledger).
type ReconRequest struct {
	Type            governance.ReconType `json:"type"`
	LeftCollection  string               `json:"left_collection"`
	RightCollection string               `json:"right_collection"`
	Filter          recon.Filter         `json:"filter"`

	// EntityID and PortfolioID are copied into the snapshot scope.
	EntityID    string `json:"entity_id,omitempty"`
	PortfolioID string `json:"portfolio_id,omitempty"`

	// TolerancePercent overrides the runner default when set.
	TolerancePercent *float64 `json:"tolerance_percent,omitempty"`

	// AsOf stamps the snapshot and both sources. Zero means now.
	AsOf time.Time `json:"as_of,omitempty"`
}

func (req ReconRequest) validate() error {
	var issues []string
	switch req.Type {
	case governance.ReconIborAbor, governance.ReconCashBank,
		governance.ReconPositionsCustodian, governance.ReconGLSubledger:
	default:
		issues = append(issues, fmt.Sprintf("unknown reconciliation type %q", req.Type))
	}
	if req.LeftCollection == "" {
		issues = append(issues, "left collection is required")
	}
	if req.RightCollection == "" {
		issues = append(issues, "right collection is required")
	}
	if req.TolerancePercent != nil && *req.TolerancePercent < 0 {
		issues = append(issues, "tolerance percent must not be negative")
	}
	if len(issues) > 0 {
		return governance.NewValidationError("reconciliation", issues...)
	}
	return nil
}

// Reconcile compares the two collections of req and appends the result to
// the snapshot log. Empty collections reconcile to a zero delta.
func (r *Runner) Reconcile(ctx context.Context, req ReconRequest) (*governance.Reconciliation, error) {
	ctx, span := r.tracer.Start(ctx, "governance.reconcile")
	start := time.Now()

	rec, err := r.reconcile(ctx, req)

	tracing.End(span, err)
	r.metrics.RecordRun("reconcile", time.Since(start), err)
	return rec, err
}

func (r *Runner) reconcile(ctx context.Context, req ReconRequest) (*governance.Reconciliation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	in, err := r.reconInput(ctx, req)
	if err != nil {
		return nil, err
	}

	now := r.now()
	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = now
	}
	in.AsOf = asOf
	in.Left.AsOf = asOf
	in.Right.AsOf = asOf
	in.Now = now
	in.Scope.EntityID = req.EntityID
	in.Scope.PortfolioID = req.PortfolioID
	in.TolerancePercent = req.TolerancePercent
	if in.TolerancePercent == nil {
		in.TolerancePercent = r.config.TolerancePercent
	}

	rec := recon.BuildReconciliation(in)
	if err := r.snapshots.AppendReconciliation(ctx, &rec); err != nil {
		return nil, fmt.Errorf("append reconciliation: %w", err)
	}

	breaks := 0
	for _, item := range rec.Breakdown {
		if item.Status == governance.ReconBreak {
			breaks++
		}
	}
	r.metrics.RecordReconciliation(string(rec.ReconTypeKey), rec.Scope.Key(), string(rec.StatusKey), rec.DeltaValue.Percent, breaks)
	tracing.SetReconAttributes(trace.SpanFromContext(ctx), string(rec.ReconTypeKey), string(rec.StatusKey), rec.DeltaValue.Percent)

	r.logger.InfoContext(ctx, "reconciliation computed",
		"recon_id", rec.ID,
		"type", rec.ReconTypeKey,
		"status", rec.StatusKey,
		"delta", rec.DeltaValue.Amount,
		"delta_percent", rec.DeltaValue.Percent,
		"breakdown_breaks", breaks,
	)
	return &rec, nil
}

// reconInput decodes both collections and runs the extractor for req.Type.
func (r *Runner) reconInput(ctx context.Context, req ReconRequest) (recon.Input, error) {
	switch req.Type {
	case governance.ReconIborAbor, governance.ReconPositionsCustodian:
		left, err := decodeRows[recon.Position](ctx, r.catalog, req.LeftCollection)
		if err != nil {
			return recon.Input{}, err
		}
		right, err := decodeRows[recon.Position](ctx, r.catalog, req.RightCollection)
		if err != nil {
			return recon.Input{}, err
		}
		if req.Type == governance.ReconIborAbor {
			return recon.IborAborInput(left, right, req.Filter), nil
		}
		return recon.PositionsCustodianInput(left, right, req.Filter), nil

	case governance.ReconCashBank:
		left, err := decodeRows[recon.CashEntry](ctx, r.catalog, req.LeftCollection)
		if err != nil {
			return recon.Input{}, err
		}
		right, err := decodeRows[recon.CashEntry](ctx, r.catalog, req.RightCollection)
		if err != nil {
			return recon.Input{}, err
		}
		return recon.CashBankInput(left, right, req.Filter), nil

	default:
		left, err := decodeRows[recon.LedgerBalance](ctx, r.catalog, req.LeftCollection)
		if err != nil {
			return recon.Input{}, err
		}
		right, err := decodeRows[recon.LedgerBalance](ctx, r.catalog, req.RightCollection)
		if err != nil {
			return recon.Input{}, err
		}
		return recon.GLSubledgerInput(left, right, req.Filter.Currency), nil
	}
}

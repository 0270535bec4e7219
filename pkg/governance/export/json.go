package export

import (
	"context"
	"encoding/json"
	"io"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

// JSONExporter writes snapshots and rule results as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// QualityScores writes scores as a JSON array. An empty input writes "[]".
func (e *JSONExporter) QualityScores(ctx context.Context, scores []*governance.QualityScore, w io.Writer) error {
	if scores == nil {
		scores = []*governance.QualityScore{}
	}
	return e.write(ctx, scores, w)
}

// Reconciliations writes reconciliations as a JSON array.
func (e *JSONExporter) Reconciliations(ctx context.Context, recons []*governance.Reconciliation, w io.Writer) error {
	if recons == nil {
		recons = []*governance.Reconciliation{}
	}
	return e.write(ctx, recons, w)
}

// RuleResults writes rule evaluation results as a JSON array.
func (e *JSONExporter) RuleResults(ctx context.Context, results []rules.Result, w io.Writer) error {
	if results == nil {
		results = []rules.Result{}
	}
	return e.write(ctx, results, w)
}

func (e *JSONExporter) write(ctx context.Context, v any, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return governance.NewExportError("json", err)
	}
	return nil
}

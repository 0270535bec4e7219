package export

import (
	"context"
	"fmt"
	"io"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

// Exporter writes governance records in one output format.
type Exporter interface {
	QualityScores(ctx context.Context, scores []*governance.QualityScore, w io.Writer) error
	Reconciliations(ctx context.Context, recons []*governance.Reconciliation, w io.Writer) error
	RuleResults(ctx context.Context, results []rules.Result, w io.Writer) error
}

// New returns the exporter for format ("json" or "csv").
func New(format string) (Exporter, error) {
	switch format {
	case "json", "":
		return NewJSONExporter(true), nil
	case "csv":
		return NewCSVExporter(true), nil
	default:
		return nil, governance.NewExportError(format, fmt.Errorf("unsupported format"))
	}
}

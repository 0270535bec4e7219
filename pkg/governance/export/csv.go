package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/rules"
)

// CSVExporter writes snapshots and rule results as flat CSV rows. Nested
// values are flattened: lists are joined with ";" and breakdowns are
// omitted.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var (
	qualityHeader = []string{
		"id", "scope_key", "scope_id", "domain_key",
		"completeness", "freshness", "consistency", "coverage", "score_total",
		"as_of", "computed_at", "missing_fields", "stale_records",
	}
	reconHeader = []string{
		"id", "recon_type", "entity_id", "portfolio_id", "account_id", "currency",
		"left_value", "right_value", "delta", "delta_percent", "status",
		"as_of", "computed_at",
	}
	ruleResultHeader = []string{
		"rule_id", "rule_name", "type", "triggered", "severity",
		"should_emit_exception", "exception_category", "affected_ids", "message", "evaluated_at",
	}
)

// QualityScores writes one row per score.
func (e *CSVExporter) QualityScores(ctx context.Context, scores []*governance.QualityScore, w io.Writer) error {
	rows := make([][]string, 0, len(scores))
	for _, s := range scores {
		var missing string
		var stale int
		if s.Details != nil {
			missing = strings.Join(s.Details.MissingFields, ";")
			stale = s.Details.StaleRecordsCount
		}
		rows = append(rows, []string{
			s.ID, string(s.ScopeKey), s.ScopeID, string(s.DomainKey),
			strconv.Itoa(s.CompletenessScore), strconv.Itoa(s.FreshnessScore),
			strconv.Itoa(s.ConsistencyScore), strconv.Itoa(s.CoverageScore), strconv.Itoa(s.ScoreTotal),
			formatTime(s.AsOf), formatTime(s.ComputedAt), missing, strconv.Itoa(stale),
		})
	}
	return e.write(ctx, qualityHeader, rows, w)
}

// Reconciliations writes one row per reconciliation.
func (e *CSVExporter) Reconciliations(ctx context.Context, recons []*governance.Reconciliation, w io.Writer) error {
	rows := make([][]string, 0, len(recons))
	for _, r := range recons {
		rows = append(rows, []string{
			r.ID, string(r.ReconTypeKey),
			r.Scope.EntityID, r.Scope.PortfolioID, r.Scope.AccountID, r.Scope.Currency,
			formatFloat(r.Left.Value), formatFloat(r.Right.Value),
			formatFloat(r.DeltaValue.Amount), formatFloat(r.DeltaValue.Percent),
			string(r.StatusKey), formatTime(r.AsOf), formatTime(r.ComputedAt),
		})
	}
	return e.write(ctx, reconHeader, rows, w)
}

// RuleResults writes one row per rule result.
func (e *CSVExporter) RuleResults(ctx context.Context, results []rules.Result, w io.Writer) error {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			r.RuleID, r.RuleName, string(r.Type), strconv.FormatBool(r.Triggered), string(r.Severity),
			strconv.FormatBool(r.ShouldEmitException), r.ExceptionCategory,
			strings.Join(r.AffectedIDs, ";"), r.Message, formatTime(r.EvaluatedAt),
		})
	}
	return e.write(ctx, ruleResultHeader, rows, w)
}

func (e *CSVExporter) write(ctx context.Context, header []string, rows [][]string, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(header); err != nil {
			return governance.NewExportError("csv", err)
		}
	}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(row); err != nil {
			return governance.NewExportError("csv", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return governance.NewExportError("csv", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/explain"
	"wealthos/governance/pkg/governance/lineage"
	"wealthos/governance/pkg/governance/quality"
	"wealthos/governance/pkg/governance/rules"
)

// printResult writes v to the command's stdout in the --output format.
func printResult(cmd *cobra.Command, v any) error {
	format, err := cli.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type scoreTable []*governance.QualityScore

func (t scoreTable) Header() []string {
	return []string{"ID", "SCOPE", "SCOPE_ID", "TOTAL", "LEVEL", "COMPLETENESS", "FRESHNESS", "CONSISTENCY", "COVERAGE", "COMPUTED_AT"}
}

func (t scoreTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{
			s.ID,
			string(s.ScopeKey),
			s.ScopeID,
			strconv.Itoa(s.ScoreTotal),
			string(quality.LevelFor(s.ScoreTotal)),
			strconv.Itoa(s.CompletenessScore),
			strconv.Itoa(s.FreshnessScore),
			strconv.Itoa(s.ConsistencyScore),
			strconv.Itoa(s.CoverageScore),
			formatTime(s.ComputedAt),
		})
	}
	return rows
}

type reconTable []*governance.Reconciliation

func (t reconTable) Header() []string {
	return []string{"ID", "TYPE", "STATUS", "LEFT", "RIGHT", "DELTA", "DELTA_PCT", "BREAKS", "AS_OF"}
}

func (t reconTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		breaks := 0
		for _, b := range r.Breakdown {
			if b.Status == governance.ReconBreak {
				breaks++
			}
		}
		rows = append(rows, []string{
			r.ID,
			string(r.ReconTypeKey),
			string(r.StatusKey),
			formatFloat(r.Left.Value),
			formatFloat(r.Right.Value),
			formatFloat(r.DeltaValue.Amount),
			formatFloat(r.DeltaValue.Percent),
			strconv.Itoa(breaks),
			formatTime(r.AsOf),
		})
	}
	return rows
}

type ruleTable []governance.Rule

func (t ruleTable) Header() []string {
	return []string{"ID", "NAME", "TYPE", "ENABLED", "SEVERITY", "AUTO_EMIT"}
}

func (t ruleTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		sev := r.Config.Severity
		if sev == "" {
			sev = governance.SeverityMedium
		}
		rows = append(rows, []string{
			r.ID,
			r.Name,
			string(r.RuleTypeKey),
			strconv.FormatBool(r.Enabled),
			string(sev),
			strconv.FormatBool(r.Config.AutoEmitException),
		})
	}
	return rows
}

type resultTable []rules.Result

func (t resultTable) Header() []string {
	return []string{"RULE", "NAME", "TRIGGERED", "SEVERITY", "EMIT", "MESSAGE"}
}

func (t resultTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.RuleID,
			r.RuleName,
			strconv.FormatBool(r.Triggered),
			string(r.Severity),
			strconv.FormatBool(r.ShouldEmitException),
			r.Message,
		})
	}
	return rows
}

type overrideTable []*governance.Override

func (t overrideTable) Header() []string {
	return []string{"ID", "TARGET", "TARGET_ID", "TYPE", "STATUS", "REQUESTED_BY", "APPROVED_BY"}
}

func (t overrideTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, o := range t {
		rows = append(rows, []string{
			o.ID,
			string(o.TargetType),
			o.TargetID,
			string(o.OverrideTypeKey),
			string(o.StatusKey),
			o.RequestedBy,
			o.ApprovedBy,
		})
	}
	return rows
}

// graphTable renders a lineage graph as its edge list.
type graphTable lineage.Graph

func (t graphTable) Header() []string {
	return []string{"FROM", "FROM_KIND", "TO", "TO_KIND"}
}

func (t graphTable) Rows() [][]string {
	nodes := make(map[string]lineage.Node, len(t.Nodes))
	for _, n := range t.Nodes {
		nodes[n.ID] = n
	}
	rows := make([][]string, 0, len(t.Edges))
	for _, e := range t.Edges {
		from, to := nodes[e.From], nodes[e.To]
		rows = append(rows, []string{from.Label, string(from.Kind), to.Label, string(to.Kind)})
	}
	return rows
}

// whyView prints an explanation as a short report in text mode and as the
// plain structure in JSON mode.
type whyView struct {
	*explain.WhyThisNumber
}

func (v whyView) String() string {
	w := v.WhyThisNumber
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s)\n", w.Name, w.KpiID)
	if w.Value != nil {
		fmt.Fprintf(&b, "  Value:       %s %s\n", formatFloat(w.Value.Value), w.Value.Currency)
	}
	fmt.Fprintf(&b, "  As of:       %s\n", formatTime(w.AsOf))
	fmt.Fprintf(&b, "  Formula:     %s\n", w.FormulaText)
	fmt.Fprintf(&b, "  Trust badge: %s\n", w.TrustBadge)
	fmt.Fprintf(&b, "  Confidence:  %s\n", w.ConfidenceLabel)
	if w.Quality != nil {
		fmt.Fprintf(&b, "  Quality:     %d (%s)\n", w.Quality.Total, w.Quality.LevelLabel)
	}
	if w.LineageSummary != "" {
		fmt.Fprintf(&b, "  Lineage:     %s\n", w.LineageSummary)
	}
	for i, t := range w.Transforms {
		if i == 0 {
			b.WriteString("  Steps:\n")
		}
		fmt.Fprintf(&b, "    %d. %s\n", t.StepNo, t.Title)
	}
	for i, a := range w.Assumptions {
		if i == 0 {
			b.WriteString("  Assumptions:\n")
		}
		fmt.Fprintf(&b, "    - %s\n", a)
	}
	for i, o := range w.Overrides {
		if i == 0 {
			b.WriteString("  Overrides:\n")
		}
		fmt.Fprintf(&b, "    - %s %s: %s\n", o.ID, o.Type, o.Reason)
	}
	return strings.TrimRight(b.String(), "\n")
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/lineage"
)

var lineageFlags struct {
	file   string
	locale string
}

var lineageCmd = &cobra.Command{
	Use:   "lineage",
	Short: "Define and inspect metric lineage",
	Long: `Define and inspect the provenance of derived metrics.

Subcommands:
  define    - Store a lineage for a metric from a JSON file
  validate  - Check step numbering and descriptions
  graph     - Print the input, transform and output graph
  summary   - Print a one-line lineage summary`,
}

var lineageDefineCmd = &cobra.Command{
	Use:   "define <kpi-id>",
	Short: "Store a lineage for a metric",
	Long: `Store a lineage for a metric and link the metric to it. The file holds
{"inputs": [...], "transforms": [...], "outputs": [...]}.

Examples:
  govctl lineage define net_worth --file net_worth.lineage.json`,
	Args: cobra.ExactArgs(1),
	RunE: runLineageDefine,
}

var lineageValidateCmd = &cobra.Command{
	Use:   "validate <kpi-id>",
	Short: "Validate the lineage of a metric",
	Args:  cobra.ExactArgs(1),
	RunE:  runLineageValidate,
}

var lineageGraphCmd = &cobra.Command{
	Use:   "graph <kpi-id>",
	Short: "Print the lineage graph of a metric",
	Args:  cobra.ExactArgs(1),
	RunE:  runLineageGraph,
}

var lineageSummaryCmd = &cobra.Command{
	Use:   "summary <kpi-id>",
	Short: "Summarize the lineage of a metric",
	Args:  cobra.ExactArgs(1),
	RunE:  runLineageSummary,
}

func init() {
	rootCmd.AddCommand(lineageCmd)
	lineageCmd.AddCommand(lineageDefineCmd, lineageValidateCmd, lineageGraphCmd, lineageSummaryCmd)

	lineageDefineCmd.Flags().StringVarP(&lineageFlags.file, "file", "f", "", "lineage JSON file (required)")
	lineageSummaryCmd.Flags().StringVar(&lineageFlags.locale, "locale", "", "summary locale: en, ru, uk (default from config)")
}

// lineageFile is the on-disk form accepted by lineage define.
type lineageFile struct {
	Inputs     []governance.LineageInput     `json:"inputs"`
	Transforms []governance.LineageTransform `json:"transforms"`
	Outputs    []governance.LineageOutput    `json:"outputs"`
}

func runLineageDefine(cmd *cobra.Command, args []string) error {
	if lineageFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	data, err := os.ReadFile(lineageFlags.file)
	if err != nil {
		return cli.NewCommandError("lineage define", err)
	}
	var lf lineageFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return cli.NewConfigError("file", fmt.Sprintf("invalid lineage file: %v", err))
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()

	l, err := eng.runner.DefineLineage(commandContext(cmd), args[0], lf.Inputs, lf.Transforms, lf.Outputs)
	if err != nil {
		return cli.NewCommandError("lineage define", err)
	}
	return printResult(cmd, validationView{KpiID: l.KpiID, LineageID: l.ID, Result: lineage.Validate(l)})
}

// validationView is the output of lineage validate and define.
type validationView struct {
	KpiID     string `json:"kpi_id"`
	LineageID string `json:"lineage_id"`
	lineage.Result
}

func (v validationView) Header() []string {
	return []string{"KPI", "LINEAGE", "VALID", "ISSUE"}
}

func (v validationView) Rows() [][]string {
	valid := fmt.Sprint(v.Valid)
	if len(v.Issues) == 0 {
		return [][]string{{v.KpiID, v.LineageID, valid, ""}}
	}
	rows := make([][]string, 0, len(v.Issues))
	for _, issue := range v.Issues {
		rows = append(rows, []string{v.KpiID, v.LineageID, valid, issue})
	}
	return rows
}

func loadLineage(cmd *cobra.Command, kpiID string) (*engine, *governance.Lineage, error) {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return nil, nil, err
	}
	l, err := eng.runner.Lineage(commandContext(cmd), kpiID)
	if err != nil {
		eng.Close()
		return nil, nil, cli.NewCommandError("lineage", err)
	}
	return eng, l, nil
}

func runLineageValidate(cmd *cobra.Command, args []string) error {
	eng, l, err := loadLineage(cmd, args[0])
	if err != nil {
		return err
	}
	defer eng.Close()

	res := lineage.Validate(l)
	if err := printResult(cmd, validationView{KpiID: args[0], LineageID: l.ID, Result: res}); err != nil {
		return err
	}
	if !res.Valid {
		return governance.NewValidationError("lineage", res.Issues...)
	}
	return nil
}

func runLineageGraph(cmd *cobra.Command, args []string) error {
	eng, l, err := loadLineage(cmd, args[0])
	if err != nil {
		return err
	}
	defer eng.Close()

	return printResult(cmd, graphTable(lineage.BuildGraph(l)))
}

// summaryView is the output of lineage summary.
type summaryView struct {
	KpiID             string                        `json:"kpi_id"`
	Summary           string                        `json:"summary"`
	SourceCollections []string                      `json:"source_collections"`
	SourceFields      []string                      `json:"source_fields"`
	Steps             int                           `json:"steps"`
	HighRisk          []governance.LineageTransform `json:"high_risk,omitempty"`
}

func (v summaryView) String() string {
	var b strings.Builder
	b.WriteString(v.Summary)
	fmt.Fprintf(&b, "\n  Sources: %s", strings.Join(v.SourceCollections, ", "))
	fmt.Fprintf(&b, "\n  Fields:  %s", strings.Join(v.SourceFields, ", "))
	for _, t := range v.HighRisk {
		fmt.Fprintf(&b, "\n  High risk step %d: %s", t.StepNo, t.Title)
	}
	return b.String()
}

func runLineageSummary(cmd *cobra.Command, args []string) error {
	eng, l, err := loadLineage(cmd, args[0])
	if err != nil {
		return err
	}
	defer eng.Close()

	tag := lineageFlags.locale
	if tag == "" {
		tag = eng.cfg.Locale
	}
	return printResult(cmd, summaryView{
		KpiID:             args[0],
		Summary:           lineage.Summary(l, governance.ParseLocale(tag)),
		SourceCollections: lineage.SourceCollections(l),
		SourceFields:      lineage.SourceFields(l),
		Steps:             lineage.TransformStepCount(l),
		HighRisk:          lineage.HighRiskTransforms(l),
	})
}

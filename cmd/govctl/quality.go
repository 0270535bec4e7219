package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/quality"
)

var qualityFlags struct {
	all       bool
	file      string
	required  []string
	asOf      string
	sources   int
	conflicts int
}

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score data quality",
	Long: `Score data quality of metrics and raw record batches.

Subcommands:
  score    - Score metrics from their lineage inputs and store the snapshots
  compute  - Score a JSON file of records without touching the stores`,
}

var qualityScoreCmd = &cobra.Command{
	Use:   "score [kpi-id...]",
	Short: "Score metrics and append quality snapshots",
	Long: `Score one or more metrics over the source collections named by their
lineage. Each score is appended to the snapshot log and the metric's trust
badge is refreshed.

Examples:
  # Score a single metric
  govctl quality score net_worth

  # Score every active metric with lineage
  govctl quality score --all`,
	RunE: runQualityScore,
}

var qualityComputeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Score a batch of records from a file",
	Long: `Compute a quality score for a JSON array of records and print the
sub-scores with remediation suggestions. Nothing is stored.

Examples:
  govctl quality compute --file accounts.json --required balance,currency \
    --as-of 2026-06-28T00:00:00Z --sources 2`,
	RunE: runQualityCompute,
}

func init() {
	rootCmd.AddCommand(qualityCmd)
	qualityCmd.AddCommand(qualityScoreCmd, qualityComputeCmd)

	qualityScoreCmd.Flags().BoolVar(&qualityFlags.all, "all", false, "score every active metric")

	qualityComputeCmd.Flags().StringVarP(&qualityFlags.file, "file", "f", "", "JSON file with an array of records (required)")
	qualityComputeCmd.Flags().StringSliceVar(&qualityFlags.required, "required", nil, "required field names")
	qualityComputeCmd.Flags().StringVar(&qualityFlags.asOf, "as-of", "", "as-of time of the batch (RFC3339, default now)")
	qualityComputeCmd.Flags().IntVar(&qualityFlags.sources, "sources", 1, "number of independent sources")
	qualityComputeCmd.Flags().IntVar(&qualityFlags.conflicts, "conflicts", 0, "number of conflicting records")
}

func runQualityScore(cmd *cobra.Command, args []string) error {
	if !qualityFlags.all && len(args) == 0 {
		return cli.NewConfigError("args", "pass one or more metric ids or --all")
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()
	ctx := commandContext(cmd)

	var scores []*governance.QualityScore
	if qualityFlags.all {
		scores, err = eng.runner.ScoreAll(ctx)
		if err != nil {
			return cli.NewCommandError("quality score", err)
		}
	} else {
		for _, id := range args {
			score, err := eng.runner.ScoreKpi(ctx, id)
			if err != nil {
				return cli.NewCommandError("quality score", err)
			}
			scores = append(scores, score)
		}
	}
	return printResult(cmd, scoreTable(scores))
}

// qualityReport is the output of quality compute.
type qualityReport struct {
	quality.Result
	Suggestions []quality.Suggestion `json:"suggestions"`
}

func (r qualityReport) Header() []string {
	return []string{"DIMENSION", "SCORE", "SUGGESTION"}
}

func (r qualityReport) Rows() [][]string {
	hints := make(map[quality.Dimension]string, len(r.Suggestions))
	for _, s := range r.Suggestions {
		hints[s.Dimension] = s.Message
	}
	rows := [][]string{
		{string(quality.DimCompleteness), strconv.Itoa(r.Completeness), hints[quality.DimCompleteness]},
		{string(quality.DimFreshness), strconv.Itoa(r.Freshness), hints[quality.DimFreshness]},
		{string(quality.DimConsistency), strconv.Itoa(r.Consistency), hints[quality.DimConsistency]},
		{string(quality.DimCoverage), strconv.Itoa(r.Coverage), hints[quality.DimCoverage]},
		{"total", strconv.Itoa(r.Total), string(r.Level)},
	}
	if len(r.Details.MissingFields) > 0 {
		rows = append(rows, []string{"missing", strconv.Itoa(len(r.Details.MissingFields)), strings.Join(r.Details.MissingFields, ", ")})
	}
	return rows
}

func runQualityCompute(cmd *cobra.Command, args []string) error {
	if qualityFlags.file == "" {
		return cli.NewConfigError("file", "--file is required")
	}
	data, err := os.ReadFile(qualityFlags.file)
	if err != nil {
		return cli.NewCommandError("quality compute", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return cli.NewConfigError("file", fmt.Sprintf("%s is not a JSON array of objects: %v", qualityFlags.file, err))
	}

	now := time.Now().UTC()
	asOf := now
	if qualityFlags.asOf != "" {
		asOf, err = time.Parse(time.RFC3339, qualityFlags.asOf)
		if err != nil {
			return cli.NewConfigError("as-of", err.Error())
		}
	}

	res := quality.Compute(quality.Input{
		Records:        quality.MapRecords(rows),
		RequiredFields: qualityFlags.required,
		AsOf:           asOf,
		SourceCount:    qualityFlags.sources,
		ConflictCount:  qualityFlags.conflicts,
		Now:            now,
	})
	return printResult(cmd, qualityReport{Result: res, Suggestions: quality.GenerateSuggestions(res)})
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wealthos/governance/pkg/cli"
	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/export"
	"wealthos/governance/pkg/governance/query"
	"wealthos/governance/pkg/governance/retention"
)

var snapshotFlags struct {
	kind      string
	scope     string
	scopeID   string
	domain    string
	maxScore  int
	reconType string
	status    string
	since     string
	until     string
	latest    bool
	limit     int
	offset    int
	sortBy    string
	sortOrder string

	format string
	file   string

	days    int
	max     int64
	archive string
	dryRun  bool
}

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Query, export and prune the snapshot log",
	Long: `Query, export and prune quality-score and reconciliation snapshots.

Snapshot kinds:
  quality  quality scores (filters: --scope, --scope-id, --domain, --max-score)
  recon    reconciliations (filters: --type, --status)

Time filters apply to computed_at and take RFC3339 timestamps.`,
}

var snapshotsQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query snapshots",
	Long: `Query snapshots with filters.

Examples:
  # Low quality scores of the last week
  govctl snapshots query --kind quality --max-score 69 --since 2026-06-23T00:00:00Z

  # Latest reconciliation of each scope that is in break
  govctl snapshots query --kind recon --status break --latest`,
	RunE: runSnapshotsQuery,
}

var snapshotsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots as JSON or CSV",
	Long: `Export snapshots matching the query filters.

Examples:
  govctl snapshots export --kind quality --format csv --file scores.csv`,
	RunE: runSnapshotsExport,
}

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy once",
	Long: `Delete snapshots older than the retention window or above the per-kind
cap. The latest snapshot of every scope is always kept.

Flags override the retention section of the config.`,
	RunE: runSnapshotsPrune,
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsQueryCmd, snapshotsExportCmd, snapshotsPruneCmd)

	for _, cmd := range []*cobra.Command{snapshotsQueryCmd, snapshotsExportCmd} {
		f := cmd.Flags()
		f.StringVar(&snapshotFlags.kind, "kind", "quality", "snapshot kind: quality, recon")
		f.StringVar(&snapshotFlags.scope, "scope", "", "quality scope: kpi, collection, entity, portfolio")
		f.StringVar(&snapshotFlags.scopeID, "scope-id", "", "quality scope id")
		f.StringVar(&snapshotFlags.domain, "domain", "", "quality domain")
		f.IntVar(&snapshotFlags.maxScore, "max-score", -1, "only scores at or below this total")
		f.StringVar(&snapshotFlags.reconType, "type", "", "reconciliation type")
		f.StringVar(&snapshotFlags.status, "status", "", "reconciliation status: ok, break, pending")
		f.StringVar(&snapshotFlags.since, "since", "", "computed at or after (RFC3339)")
		f.StringVar(&snapshotFlags.until, "until", "", "computed at or before (RFC3339)")
		f.BoolVar(&snapshotFlags.latest, "latest", false, "only the latest snapshot of each scope")
		f.IntVar(&snapshotFlags.limit, "limit", query.DefaultLimit, "max results")
		f.IntVar(&snapshotFlags.offset, "offset", 0, "pagination offset")
		f.StringVar(&snapshotFlags.sortBy, "sort", "computed_at", "sort field: computed_at, as_of, created_at")
		f.StringVar(&snapshotFlags.sortOrder, "order", "desc", "sort order: asc, desc")
	}
	snapshotsExportCmd.Flags().StringVar(&snapshotFlags.format, "format", "json", "export format: json, csv")
	snapshotsExportCmd.Flags().StringVar(&snapshotFlags.file, "file", "", "output file (default: stdout)")

	f := snapshotsPruneCmd.Flags()
	f.IntVar(&snapshotFlags.days, "days", 0, "retention window in days (default from config)")
	f.Int64Var(&snapshotFlags.max, "max", 0, "max snapshots per kind (default from config)")
	f.StringVar(&snapshotFlags.archive, "archive", "", "archive pruned snapshots to this directory first")
	f.BoolVar(&snapshotFlags.dryRun, "dry-run", false, "count what would be pruned without deleting")
}

// buildSnapshotQuery turns the query flags into a validated query.
func buildSnapshotQuery() (*governance.SnapshotQuery, error) {
	q := &governance.SnapshotQuery{
		ScopeKey:   governance.QualityScope(snapshotFlags.scope),
		ScopeID:    snapshotFlags.scopeID,
		DomainKey:  governance.Domain(snapshotFlags.domain),
		ReconType:  governance.ReconType(snapshotFlags.reconType),
		Status:     governance.ReconStatus(snapshotFlags.status),
		LatestOnly: snapshotFlags.latest,
		Limit:      snapshotFlags.limit,
		Offset:     snapshotFlags.offset,
		SortBy:     snapshotFlags.sortBy,
		SortOrder:  snapshotFlags.sortOrder,
	}
	if snapshotFlags.maxScore >= 0 {
		maxScore := snapshotFlags.maxScore
		q.MaxScore = &maxScore
	}
	if snapshotFlags.since != "" {
		t, err := time.Parse(time.RFC3339, snapshotFlags.since)
		if err != nil {
			return nil, governance.NewQueryError("since", err)
		}
		q.StartTime = &t
	}
	if snapshotFlags.until != "" {
		t, err := time.Parse(time.RFC3339, snapshotFlags.until)
		if err != nil {
			return nil, governance.NewQueryError("until", err)
		}
		q.EndTime = &t
	}

	query.ApplyDefaults(q)
	if err := query.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

func checkKind() error {
	switch snapshotFlags.kind {
	case "quality", "recon":
		return nil
	default:
		return cli.NewConfigError("kind", fmt.Sprintf("unknown snapshot kind %q (want quality or recon)", snapshotFlags.kind))
	}
}

func runSnapshotsQuery(cmd *cobra.Command, args []string) error {
	if err := checkKind(); err != nil {
		return err
	}
	q, err := buildSnapshotQuery()
	if err != nil {
		return err
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()
	ctx := commandContext(cmd)

	if snapshotFlags.kind == "recon" {
		recons, err := eng.snapshots.QueryReconciliations(ctx, q)
		if err != nil {
			return cli.NewCommandError("snapshots query", err)
		}
		return printResult(cmd, reconTable(recons))
	}
	scores, err := eng.snapshots.QueryQualityScores(ctx, q)
	if err != nil {
		return cli.NewCommandError("snapshots query", err)
	}
	return printResult(cmd, scoreTable(scores))
}

func runSnapshotsExport(cmd *cobra.Command, args []string) error {
	if err := checkKind(); err != nil {
		return err
	}
	q, err := buildSnapshotQuery()
	if err != nil {
		return err
	}
	exporter, err := export.New(snapshotFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()
	ctx := commandContext(cmd)

	var w io.Writer = cmd.OutOrStdout()
	if snapshotFlags.file != "" {
		f, err := os.Create(snapshotFlags.file)
		if err != nil {
			return cli.NewCommandError("snapshots export", err)
		}
		defer f.Close()
		w = f
	}

	if snapshotFlags.kind == "recon" {
		recons, err := eng.snapshots.QueryReconciliations(ctx, q)
		if err != nil {
			return cli.NewCommandError("snapshots export", err)
		}
		if err := exporter.Reconciliations(ctx, recons, w); err != nil {
			return cli.NewCommandError("snapshots export", err)
		}
		return nil
	}

	scores, err := eng.snapshots.QueryQualityScores(ctx, q)
	if err != nil {
		return cli.NewCommandError("snapshots export", err)
	}
	if err := exporter.QualityScores(ctx, scores, w); err != nil {
		return cli.NewCommandError("snapshots export", err)
	}
	return nil
}

// pruneView is the output of snapshots prune.
type pruneView struct {
	DryRun          bool  `json:"dry_run"`
	QualityScores   int64 `json:"quality_scores"`
	Reconciliations int64 `json:"reconciliations"`
	Total           int64 `json:"total"`
}

func (v pruneView) Header() []string {
	return []string{"DRY_RUN", "QUALITY_SCORES", "RECONCILIATIONS", "TOTAL"}
}

func (v pruneView) Rows() [][]string {
	return [][]string{{
		fmt.Sprint(v.DryRun),
		fmt.Sprint(v.QualityScores),
		fmt.Sprint(v.Reconciliations),
		fmt.Sprint(v.Total),
	}}
}

func runSnapshotsPrune(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(engineOptions{})
	if err != nil {
		return err
	}
	defer eng.Close()
	ctx := commandContext(cmd)

	rc := retentionConfig(&eng.cfg.Retention)
	if cmd.Flags().Changed("days") {
		rc.RetentionDays = snapshotFlags.days
	}
	if cmd.Flags().Changed("max") {
		rc.MaxSnapshots = snapshotFlags.max
	}
	if snapshotFlags.archive != "" {
		rc.ArchiveBeforeDelete = true
		rc.ArchivePath = snapshotFlags.archive
	}

	if snapshotFlags.dryRun {
		view, err := pruneEstimate(cmd, eng, rc)
		if err != nil {
			return cli.NewCommandError("snapshots prune", err)
		}
		return printResult(cmd, view)
	}

	report, err := retention.NewPruner(eng.snapshots, rc).Prune(ctx)
	if err != nil {
		return cli.NewCommandError("snapshots prune", err)
	}
	return printResult(cmd, pruneView{
		QualityScores:   report.QualityScores,
		Reconciliations: report.Reconciliations,
		Total:           report.Total(),
	})
}

// pruneEstimate counts snapshots past the retention window. The count
// includes the latest snapshot of each scope, which Prune keeps, so it is an
// upper bound. The count cap is not estimated.
func pruneEstimate(cmd *cobra.Command, eng *engine, rc *retention.Config) (pruneView, error) {
	view := pruneView{DryRun: true}
	if rc.RetentionDays <= 0 {
		return view, nil
	}
	ctx := commandContext(cmd)
	cutoff := time.Now().AddDate(0, 0, -rc.RetentionDays)
	q := &governance.SnapshotQuery{EndTime: &cutoff}

	scores, err := eng.snapshots.CountQualityScores(ctx, q)
	if err != nil {
		return view, err
	}
	recons, err := eng.snapshots.CountReconciliations(ctx, q)
	if err != nil {
		return view, err
	}
	view.QualityScores = scores
	view.Reconciliations = recons
	view.Total = scores + recons
	return view, nil
}

package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/export"
)

// Config contains configuration for the snapshot pruner.
type Config struct {
	// RetentionDays is the number of days to retain snapshots.
	// 0 means keep snapshots forever.
	RetentionDays int

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// ArchiveBeforeDelete writes pruned snapshots to ArchivePath as JSON.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory for archives.
	ArchivePath string

	// MaxSnapshots caps each snapshot kind separately. 0 means unlimited.
	MaxSnapshots int64
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 365,
		PruneSchedule: "0 3 * * *",
		ArchivePath:   "data/archives/",
	}
}

// Report counts what a prune removed.
type Report struct {
	QualityScores   int64
	Reconciliations int64
}

// Total returns the number of snapshots removed.
func (r Report) Total() int64 {
	return r.QualityScores + r.Reconciliations
}

// Pruner enforces retention on the snapshot log. The latest snapshot of
// every scope is never pruned, however old it is.
type Pruner struct {
	store     governance.SnapshotStore
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
	now       func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(store governance.SnapshotStore, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	p := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "governance.retention"),
		now:    time.Now,
	}
	p.scheduler = NewScheduler(p)
	return p
}

// Prune runs age-based then count-based pruning over both snapshot kinds.
func (p *Pruner) Prune(ctx context.Context) (Report, error) {
	var report Report

	if p.config.RetentionDays > 0 {
		cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)
		q := &governance.SnapshotQuery{EndTime: &cutoff, KeepLatest: true}

		scores, recons, err := p.prune(ctx, q)
		if err != nil {
			return report, fmt.Errorf("prune by age failed: %w", err)
		}
		report.QualityScores += scores
		report.Reconciliations += recons

		p.logger.Info("pruned snapshots by age",
			"quality_scores", scores,
			"reconciliations", recons,
			"retention_days", p.config.RetentionDays,
		)
	}

	if p.config.MaxSnapshots > 0 {
		scores, recons, err := p.pruneByCount(ctx)
		if err != nil {
			return report, fmt.Errorf("prune by count failed: %w", err)
		}
		report.QualityScores += scores
		report.Reconciliations += recons
	}

	if report.Total() == 0 {
		p.logger.Debug("no snapshots pruned")
	} else {
		p.logger.Info("snapshot pruning completed",
			"total_deleted", report.Total(),
			"retention_days", p.config.RetentionDays,
			"max_snapshots", p.config.MaxSnapshots,
		)
	}
	return report, nil
}

func (p *Pruner) prune(ctx context.Context, q *governance.SnapshotQuery) (int64, int64, error) {
	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, q); err != nil {
			return 0, 0, err
		}
	}

	scores, err := p.store.DeleteQualityScores(ctx, q)
	if err != nil {
		return 0, 0, err
	}
	recons, err := p.store.DeleteReconciliations(ctx, q)
	if err != nil {
		return scores, 0, err
	}
	return scores, recons, nil
}

// pruneByCount removes the oldest snapshots of each kind above
// MaxSnapshots. The cutoff is the computed_at of the last snapshot to go,
// so ties and protected latest snapshots can leave the count slightly
// above the cap.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, int64, error) {
	var scoresDeleted, reconsDeleted int64

	count, err := p.store.CountQualityScores(ctx, &governance.SnapshotQuery{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count quality scores: %w", err)
	}
	if excess := count - p.config.MaxSnapshots; excess > 0 {
		oldest, err := p.store.QueryQualityScores(ctx, &governance.SnapshotQuery{
			SortBy: "computed_at", SortOrder: "asc", Limit: int(excess),
		})
		if err != nil {
			return 0, 0, err
		}
		if len(oldest) > 0 {
			cutoff := oldest[len(oldest)-1].ComputedAt
			q := &governance.SnapshotQuery{EndTime: &cutoff, KeepLatest: true}
			if p.config.ArchiveBeforeDelete {
				if err := p.archiveScores(ctx, oldest); err != nil {
					return 0, 0, err
				}
			}
			if scoresDeleted, err = p.store.DeleteQualityScores(ctx, q); err != nil {
				return 0, 0, err
			}
		}
	}

	count, err = p.store.CountReconciliations(ctx, &governance.SnapshotQuery{})
	if err != nil {
		return scoresDeleted, 0, fmt.Errorf("failed to count reconciliations: %w", err)
	}
	if excess := count - p.config.MaxSnapshots; excess > 0 {
		oldest, err := p.store.QueryReconciliations(ctx, &governance.SnapshotQuery{
			SortBy: "computed_at", SortOrder: "asc", Limit: int(excess),
		})
		if err != nil {
			return scoresDeleted, 0, err
		}
		if len(oldest) > 0 {
			cutoff := oldest[len(oldest)-1].ComputedAt
			q := &governance.SnapshotQuery{EndTime: &cutoff, KeepLatest: true}
			if p.config.ArchiveBeforeDelete {
				if err := p.archiveRecons(ctx, oldest); err != nil {
					return scoresDeleted, 0, err
				}
			}
			if reconsDeleted, err = p.store.DeleteReconciliations(ctx, q); err != nil {
				return scoresDeleted, 0, err
			}
		}
	}

	p.logger.Info("pruned snapshots by count",
		"quality_scores", scoresDeleted,
		"reconciliations", reconsDeleted,
		"max_snapshots", p.config.MaxSnapshots,
	)
	return scoresDeleted, reconsDeleted, nil
}

// archive exports everything q would delete. Latest snapshots are
// excluded because the delete keeps them.
func (p *Pruner) archive(ctx context.Context, q *governance.SnapshotQuery) error {
	scores, err := p.store.QueryQualityScores(ctx, &governance.SnapshotQuery{EndTime: q.EndTime})
	if err != nil {
		return fmt.Errorf("failed to query quality scores for archiving: %w", err)
	}
	latestScores, err := p.store.QueryQualityScores(ctx, &governance.SnapshotQuery{EndTime: q.EndTime, LatestOnly: true})
	if err != nil {
		return fmt.Errorf("failed to query quality scores for archiving: %w", err)
	}
	if err := p.archiveScores(ctx, withoutIDs(scores, latestScores)); err != nil {
		return err
	}

	recons, err := p.store.QueryReconciliations(ctx, &governance.SnapshotQuery{EndTime: q.EndTime})
	if err != nil {
		return fmt.Errorf("failed to query reconciliations for archiving: %w", err)
	}
	latestRecons, err := p.store.QueryReconciliations(ctx, &governance.SnapshotQuery{EndTime: q.EndTime, LatestOnly: true})
	if err != nil {
		return fmt.Errorf("failed to query reconciliations for archiving: %w", err)
	}
	return p.archiveRecons(ctx, withoutIDs(recons, latestRecons))
}

// withoutIDs drops from all every record whose ID appears in exclude.
func withoutIDs[T interface{ Identity() *governance.Envelope }](all, exclude []T) []T {
	skip := make(map[string]bool, len(exclude))
	for _, r := range exclude {
		skip[r.Identity().ID] = true
	}
	out := make([]T, 0, len(all))
	for _, r := range all {
		if !skip[r.Identity().ID] {
			out = append(out, r)
		}
	}
	return out
}

func (p *Pruner) archiveScores(ctx context.Context, scores []*governance.QualityScore) error {
	if len(scores) == 0 {
		return nil
	}
	f, path, err := p.createArchive("quality-scores")
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).QualityScores(ctx, scores, f); err != nil {
		return fmt.Errorf("failed to archive quality scores: %w", err)
	}
	p.logger.Info("quality scores archived", "archive_file", path, "count", len(scores))
	return nil
}

func (p *Pruner) archiveRecons(ctx context.Context, recons []*governance.Reconciliation) error {
	if len(recons) == 0 {
		return nil
	}
	f, path, err := p.createArchive("reconciliations")
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.NewJSONExporter(true).Reconciliations(ctx, recons, f); err != nil {
		return fmt.Errorf("failed to archive reconciliations: %w", err)
	}
	p.logger.Info("reconciliations archived", "archive_file", path, "count", len(recons))
	return nil
}

func (p *Pruner) createArchive(kind string) (*os.File, string, error) {
	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	path := filepath.Join(p.config.ArchivePath, fmt.Sprintf("%s-%s.json", kind, p.now().Format("2006-01-02-150405")))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create archive file: %w", err)
	}
	return f, path, nil
}

// Start starts the pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

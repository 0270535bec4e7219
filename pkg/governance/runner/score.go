package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/quality"
	"wealthos/governance/pkg/governance/storage"
	"wealthos/governance/pkg/telemetry/logging"
	"wealthos/governance/pkg/telemetry/tracing"
)

// ScoreKpi scores a metric over the source collections named by its
// lineage, appends the score to the snapshot log and updates the metric's
// LastQualityScoreID and TrustBadge.
//
// A metric without lineage yields a NotFoundError for CollectionLineage.
func (r *Runner) ScoreKpi(ctx context.Context, kpiID string) (*governance.QualityScore, error) {
	ctx = logging.WithKpiID(ctx, kpiID)
	ctx, span := r.tracer.Start(ctx, "governance.score_kpi")
	start := time.Now()

	score, err := r.scoreKpi(ctx, kpiID)

	tracing.End(span, err)
	r.metrics.RecordRun("score", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordQualityScore(string(score.ScopeKey), score.ScopeID, score.ScoreTotal, time.Since(start))
	return score, nil
}

func (r *Runner) scoreKpi(ctx context.Context, kpiID string) (*governance.QualityScore, error) {
	kpi, err := storage.Load[governance.Kpi](ctx, r.catalog, governance.CollectionKpis, kpiID)
	if err != nil {
		return nil, err
	}
	l, err := r.lineageFor(ctx, kpi)
	if err != nil {
		return nil, err
	}

	batches, records, err := r.loadBatches(ctx, l)
	if err != nil {
		return nil, err
	}

	now := r.now()
	asOf := kpi.AsOf
	if asOf.IsZero() {
		asOf = now
	}
	score := quality.BuildScore(governance.ScopeKpi, kpi.ID, kpi.Domain, quality.Input{
		Batches:     batches,
		AsOf:        asOf,
		SourceCount: len(batches),
		Now:         now,
	})
	if err := r.snapshots.AppendQualityScore(ctx, &score); err != nil {
		return nil, fmt.Errorf("append quality score: %w", err)
	}

	kpi.LastQualityScoreID = score.ID
	kpi.TrustBadge = quality.DeriveTrustBadge(&score, asOf, now, r.config.StaleDays)
	if err := storage.Save(ctx, r.catalog, governance.CollectionKpis, kpi); err != nil {
		return nil, fmt.Errorf("update metric: %w", err)
	}
	r.metrics.RecordTrustBadge(string(kpi.TrustBadge))

	span := trace.SpanFromContext(ctx)
	tracing.SetKpiAttributes(span, kpi.ID, string(kpi.Domain))
	tracing.SetQualityAttributes(span, string(score.ScopeKey), score.ScopeID, score.ScoreTotal, records)

	r.logger.DebugContext(ctx, "metric scored",
		"score_id", score.ID,
		"score_total", score.ScoreTotal,
		"trust_badge", kpi.TrustBadge,
		"records", records,
	)
	return &score, nil
}

// ScoreAll scores every non-archived metric, at most Concurrency at a
// time. Metrics without lineage are skipped. The first other failure
// cancels the remaining work.
func (r *Runner) ScoreAll(ctx context.Context) ([]*governance.QualityScore, error) {
	scores, _, err := r.scoreAll(ctx)
	return scores, err
}

func (r *Runner) scoreAll(ctx context.Context) ([]*governance.QualityScore, int, error) {
	kpis, err := storage.LoadAll[governance.Kpi](ctx, r.catalog, governance.CollectionKpis)
	if err != nil {
		return nil, 0, err
	}

	results := make([]*governance.QualityScore, len(kpis))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for i, kpi := range kpis {
		if kpi.Status == governance.KpiArchived {
			continue
		}
		g.Go(func() error {
			score, err := r.ScoreKpi(gctx, kpi.ID)
			if err != nil {
				if isMissingLineage(err) {
					r.logger.WarnContext(gctx, "metric has no lineage, skipping", "kpi_id", kpi.ID)
					return nil
				}
				return fmt.Errorf("metric %s: %w", kpi.ID, err)
			}
			results[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	scores := make([]*governance.QualityScore, 0, len(results))
	skipped := 0
	for i, s := range results {
		if s == nil {
			if kpis[i].Status != governance.KpiArchived {
				skipped++
			}
			continue
		}
		scores = append(scores, s)
	}
	return scores, skipped, nil
}

// RefreshTrustBadges recomputes the trust badge of every metric from its
// latest quality score and its as-of date, saving only metrics whose badge
// changed. It returns how many changed.
func (r *Runner) RefreshTrustBadges(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "governance.refresh_trust_badges")
	start := time.Now()

	changed, err := r.refreshTrustBadges(ctx)

	tracing.End(span, err)
	r.metrics.RecordRun("refresh_badges", time.Since(start), err)
	return changed, err
}

func (r *Runner) refreshTrustBadges(ctx context.Context) (int, error) {
	kpis, err := storage.LoadAll[governance.Kpi](ctx, r.catalog, governance.CollectionKpis)
	if err != nil {
		return 0, err
	}

	now := r.now()
	changed := 0
	for _, kpi := range kpis {
		score, err := r.snapshots.LatestQualityScore(ctx, governance.ScopeKpi, kpi.ID)
		if err != nil && !isNotFound(err) {
			return changed, err
		}
		badge := quality.DeriveTrustBadge(score, kpi.AsOf, now, r.config.StaleDays)
		if badge == kpi.TrustBadge {
			continue
		}

		r.logger.InfoContext(ctx, "trust badge changed",
			"kpi_id", kpi.ID,
			"from", kpi.TrustBadge,
			"to", badge,
		)
		kpi.TrustBadge = badge
		if err := storage.Save(ctx, r.catalog, governance.CollectionKpis, kpi); err != nil {
			return changed, err
		}
		r.metrics.RecordTrustBadge(string(badge))
		changed++
	}
	return changed, nil
}

// lineageFor resolves the lineage of kpi, by LineageID when set and
// otherwise by scanning for a lineage naming the metric.
func (r *Runner) lineageFor(ctx context.Context, kpi *governance.Kpi) (*governance.Lineage, error) {
	if kpi.LineageID != "" {
		l, err := storage.Load[governance.Lineage](ctx, r.catalog, governance.CollectionLineage, kpi.LineageID)
		if err == nil || !isNotFound(err) {
			return l, err
		}
	}

	all, err := storage.LoadAll[governance.Lineage](ctx, r.catalog, governance.CollectionLineage)
	if err != nil {
		return nil, err
	}
	for _, l := range all {
		if l.KpiID == kpi.ID {
			return l, nil
		}
	}
	return nil, governance.NewNotFoundError(governance.CollectionLineage, kpi.ID)
}

// loadBatches reads one batch per lineage input collection. It returns the
// batches and the total number of records read.
func (r *Runner) loadBatches(ctx context.Context, l *governance.Lineage) ([]quality.Batch, int, error) {
	batches := make([]quality.Batch, 0, len(l.Inputs))
	total := 0
	for _, in := range l.Inputs {
		rows, err := decodeRows[map[string]any](ctx, r.catalog, in.Collection)
		if err != nil {
			return nil, 0, err
		}
		batches = append(batches, quality.Batch{
			Name:           in.Collection,
			Records:        quality.MapRecords(rows),
			RequiredFields: in.Fields,
		})
		total += len(rows)
	}
	return batches, total, nil
}

// decodeRows decodes every document of a raw source collection into T.
func decodeRows[T any](ctx context.Context, c governance.Catalog, collection string) ([]T, error) {
	docs, err := c.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	rows := make([]T, 0, len(docs))
	for _, doc := range docs {
		var row T
		if err := json.Unmarshal(doc.Data, &row); err != nil {
			return nil, governance.NewStorageError("catalog", "decode "+collection+"/"+doc.ID, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isMissingLineage(err error) bool {
	var nf *governance.NotFoundError
	return errors.As(err, &nf) && nf.Collection == governance.CollectionLineage
}

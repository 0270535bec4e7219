package retention

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wealthos/governance/pkg/governance"
	"wealthos/governance/pkg/governance/storage"
)

func appendScore(t *testing.T, store governance.SnapshotStore, scopeID string, computedAt time.Time) {
	t.Helper()
	err := store.AppendQualityScore(context.Background(), &governance.QualityScore{
		ScopeKey:   governance.ScopeKpi,
		ScopeID:    scopeID,
		ScoreTotal: 50,
		ComputedAt: computedAt,
	})
	if err != nil {
		t.Fatalf("AppendQualityScore() error = %v", err)
	}
}

func TestPruner_PruneByAgeKeepsLatest(t *testing.T) {
	store := storage.NewMemorySnapshotStore()
	now := time.Now()

	appendScore(t, store, "kpi-1", now.AddDate(0, 0, -40))
	appendScore(t, store, "kpi-1", now.AddDate(0, 0, -35))
	appendScore(t, store, "kpi-1", now.AddDate(0, 0, -1))
	// kpi-2 only has an old snapshot; it is its latest and must survive.
	appendScore(t, store, "kpi-2", now.AddDate(0, 0, -100))

	config := DefaultConfig()
	config.RetentionDays = 30
	report, err := NewPruner(store, config).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if report.QualityScores != 2 {
		t.Errorf("pruned %d quality scores, want 2", report.QualityScores)
	}

	if _, err := store.LatestQualityScore(context.Background(), governance.ScopeKpi, "kpi-2"); err != nil {
		t.Errorf("latest kpi-2 snapshot pruned: %v", err)
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	store := storage.NewMemorySnapshotStore()
	now := time.Now()
	for i := 0; i < 5; i++ {
		appendScore(t, store, "kpi-1", now.Add(time.Duration(i)*time.Minute))
	}

	config := &Config{MaxSnapshots: 2}
	report, err := NewPruner(store, config).Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if report.QualityScores != 3 {
		t.Errorf("pruned %d, want 3", report.QualityScores)
	}
	n, _ := store.CountQualityScores(context.Background(), &governance.SnapshotQuery{})
	if n != 2 {
		t.Errorf("remaining = %d, want 2", n)
	}
}

func TestPruner_Archive(t *testing.T) {
	store := storage.NewMemorySnapshotStore()
	now := time.Now()
	appendScore(t, store, "kpi-1", now.AddDate(0, 0, -10))
	appendScore(t, store, "kpi-1", now)

	dir := t.TempDir()
	config := &Config{RetentionDays: 5, ArchiveBeforeDelete: true, ArchivePath: dir}
	if _, err := NewPruner(store, config).Prune(context.Background()); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "quality-scores-*.json"))
	if len(matches) != 1 {
		t.Fatalf("archives = %v, want one quality-scores archive", matches)
	}
	data, _ := os.ReadFile(matches[0])
	if len(data) == 0 {
		t.Error("archive is empty")
	}
}

func TestPruner_Disabled(t *testing.T) {
	store := storage.NewMemorySnapshotStore()
	appendScore(t, store, "kpi-1", time.Now().AddDate(-5, 0, 0))

	report, err := NewPruner(store, &Config{}).Prune(context.Background())
	if err != nil || report.Total() != 0 {
		t.Errorf("Prune() = %+v, %v, want nothing pruned", report, err)
	}
}

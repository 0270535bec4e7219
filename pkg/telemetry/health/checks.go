package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wealthos/governance/pkg/governance"
)

// Pinger is implemented by backends with their own health probe, such as
// the Redis signal sink.
type Pinger interface {
	Health(ctx context.Context) error
}

// CatalogCheck lists a reserved collection to prove the catalog answers.
func CatalogCheck(catalog governance.Catalog) CheckFunc {
	return func(ctx context.Context) error {
		_, err := catalog.List(ctx, "_health")
		return err
	}
}

// SnapshotStoreCheck counts quality snapshots to prove the log answers.
func SnapshotStoreCheck(store governance.SnapshotStore) CheckFunc {
	return func(ctx context.Context) error {
		_, err := store.CountQualityScores(ctx, &governance.SnapshotQuery{})
		return err
	}
}

// RulesCheck fails when no governance rules are loaded.
func RulesCheck(count func() int) CheckFunc {
	return func(ctx context.Context) error {
		if count() == 0 {
			return errors.New("no governance rules loaded")
		}
		return nil
	}
}

// PingCheck adapts a Pinger.
func PingCheck(p Pinger) CheckFunc {
	return p.Health
}

// FreshnessCheck fails when last() is older than maxAge, which flags a
// scheduler that stopped running. A zero time means no run yet and is
// reported as healthy.
func FreshnessCheck(last func() time.Time, maxAge time.Duration, now func() time.Time) CheckFunc {
	return func(ctx context.Context) error {
		t := last()
		if t.IsZero() {
			return nil
		}
		if age := now().Sub(t); age > maxAge {
			return fmt.Errorf("last successful run %s ago exceeds %s", age.Round(time.Second), maxAge)
		}
		return nil
	}
}

package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"wealthos/governance/pkg/governance"
)

// MemorySnapshotStore implements governance.SnapshotStore with append-only
// slices. Intended for tests and single-shot CLI runs.
type MemorySnapshotStore struct {
	mu     sync.RWMutex
	scores []*governance.QualityScore
	recons []*governance.Reconciliation
	now    func() time.Time
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		now: func() time.Time { return time.Now().UTC() },
	}
}

func copyScore(s *governance.QualityScore) *governance.QualityScore {
	c := *s
	if s.Details != nil {
		d := *s.Details
		c.Details = &d
	}
	return &c
}

func copyRecon(r *governance.Reconciliation) *governance.Reconciliation {
	c := *r
	c.Breakdown = append([]governance.BreakdownItem(nil), r.Breakdown...)
	return &c
}

// AppendQualityScore persists a copy of score.
func (s *MemorySnapshotStore) AppendQualityScore(ctx context.Context, score *governance.QualityScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&score.Envelope, uuid.NewString(), s.now())
	s.scores = append(s.scores, copyScore(score))
	return nil
}

// AppendReconciliation persists a copy of recon.
func (s *MemorySnapshotStore) AppendReconciliation(ctx context.Context, recon *governance.Reconciliation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp(&recon.Envelope, uuid.NewString(), s.now())
	s.recons = append(s.recons, copyRecon(recon))
	return nil
}

// GetQualityScore returns the score with the given ID.
func (s *MemorySnapshotStore) GetQualityScore(ctx context.Context, id string) (*governance.QualityScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, score := range s.scores {
		if score.ID == id {
			return copyScore(score), nil
		}
	}
	return nil, governance.NewNotFoundError(governance.CollectionQualityScores, id)
}

// GetReconciliation returns the reconciliation with the given ID.
func (s *MemorySnapshotStore) GetReconciliation(ctx context.Context, id string) (*governance.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, recon := range s.recons {
		if recon.ID == id {
			return copyRecon(recon), nil
		}
	}
	return nil, governance.NewNotFoundError(governance.CollectionReconciliations, id)
}

// LatestQualityScore returns the last score appended for the scope.
func (s *MemorySnapshotStore) LatestQualityScore(ctx context.Context, scope governance.QualityScope, scopeID string) (*governance.QualityScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.scores) - 1; i >= 0; i-- {
		if s.scores[i].ScopeKey == scope && s.scores[i].ScopeID == scopeID {
			return copyScore(s.scores[i]), nil
		}
	}
	return nil, governance.NewNotFoundError(governance.CollectionQualityScores, governance.QualityScopeKey(scope, scopeID))
}

// LatestReconciliation returns the last reconciliation appended for the
// type and scope.
func (s *MemorySnapshotStore) LatestReconciliation(ctx context.Context, reconType governance.ReconType, scope governance.ReconScope) (*governance.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.recons) - 1; i >= 0; i-- {
		if s.recons[i].ReconTypeKey == reconType && s.recons[i].Scope == scope {
			return copyRecon(s.recons[i]), nil
		}
	}
	return nil, governance.NewNotFoundError(governance.CollectionReconciliations, governance.ReconScopeKey(reconType, scope))
}

// latestScores returns the positions of the latest score of every scope.
func (s *MemorySnapshotStore) latestScores() map[int]bool {
	byScope := make(map[string]int)
	for i, score := range s.scores {
		byScope[governance.QualityScopeKey(score.ScopeKey, score.ScopeID)] = i
	}
	latest := make(map[int]bool, len(byScope))
	for _, i := range byScope {
		latest[i] = true
	}
	return latest
}

func (s *MemorySnapshotStore) latestRecons() map[int]bool {
	byScope := make(map[string]int)
	for i, recon := range s.recons {
		byScope[governance.ReconScopeKey(recon.ReconTypeKey, recon.Scope)] = i
	}
	latest := make(map[int]bool, len(byScope))
	for _, i := range byScope {
		latest[i] = true
	}
	return latest
}

// matchingScores returns the positions of scores that match q, ignoring
// pagination.
func (s *MemorySnapshotStore) matchingScores(q *governance.SnapshotQuery) []int {
	var latest map[int]bool
	if q.LatestOnly {
		latest = s.latestScores()
	}
	var idx []int
	for i, score := range s.scores {
		if latest != nil && !latest[i] {
			continue
		}
		if matchesQualityScore(score, q) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (s *MemorySnapshotStore) matchingRecons(q *governance.SnapshotQuery) []int {
	var latest map[int]bool
	if q.LatestOnly {
		latest = s.latestRecons()
	}
	var idx []int
	for i, recon := range s.recons {
		if latest != nil && !latest[i] {
			continue
		}
		if matchesReconciliation(recon, q) {
			idx = append(idx, i)
		}
	}
	return idx
}

// QueryQualityScores returns scores matching q.
func (s *MemorySnapshotStore) QueryQualityScores(ctx context.Context, q *governance.SnapshotQuery) ([]*governance.QualityScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := orderAndPage(s.matchingScores(q), func(i int) time.Time {
		return sortKey(s.scores[i].Envelope, s.scores[i].AsOf, s.scores[i].ComputedAt, q.SortBy)
	}, q)

	results := make([]*governance.QualityScore, 0, len(idx))
	for _, i := range idx {
		results = append(results, copyScore(s.scores[i]))
	}
	return results, nil
}

// QueryReconciliations returns reconciliations matching q.
func (s *MemorySnapshotStore) QueryReconciliations(ctx context.Context, q *governance.SnapshotQuery) ([]*governance.Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := orderAndPage(s.matchingRecons(q), func(i int) time.Time {
		return sortKey(s.recons[i].Envelope, s.recons[i].AsOf, s.recons[i].ComputedAt, q.SortBy)
	}, q)

	results := make([]*governance.Reconciliation, 0, len(idx))
	for _, i := range idx {
		results = append(results, copyRecon(s.recons[i]))
	}
	return results, nil
}

// CountQualityScores counts scores matching q.
func (s *MemorySnapshotStore) CountQualityScores(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchingScores(q))), nil
}

// CountReconciliations counts reconciliations matching q.
func (s *MemorySnapshotStore) CountReconciliations(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.matchingRecons(q))), nil
}

// DeleteQualityScores removes scores matching q.
func (s *MemorySnapshotStore) DeleteQualityScores(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keep map[int]bool
	if q.KeepLatest {
		keep = s.latestScores()
	}
	remove := make(map[int]bool)
	for _, i := range s.matchingScores(q) {
		if !keep[i] {
			remove[i] = true
		}
	}

	kept := s.scores[:0]
	for i, score := range s.scores {
		if !remove[i] {
			kept = append(kept, score)
		}
	}
	s.scores = kept
	return int64(len(remove)), nil
}

// DeleteReconciliations removes reconciliations matching q.
func (s *MemorySnapshotStore) DeleteReconciliations(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keep map[int]bool
	if q.KeepLatest {
		keep = s.latestRecons()
	}
	remove := make(map[int]bool)
	for _, i := range s.matchingRecons(q) {
		if !keep[i] {
			remove[i] = true
		}
	}

	kept := s.recons[:0]
	for i, recon := range s.recons {
		if !remove[i] {
			kept = append(kept, recon)
		}
	}
	s.recons = kept
	return int64(len(remove)), nil
}

// Close is a no-op.
func (s *MemorySnapshotStore) Close() error {
	return nil
}

package storage

import (
	"sort"
	"time"

	"wealthos/governance/pkg/governance"
)

// stamp assigns the envelope of a snapshot being appended.
func stamp(env *governance.Envelope, id string, now time.Time) {
	env.ID = id
	env.CreatedAt = now
	env.UpdatedAt = now
}

func inRange(t time.Time, q *governance.SnapshotQuery) bool {
	if q.StartTime != nil && t.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && t.After(*q.EndTime) {
		return false
	}
	return true
}

func matchesQualityScore(s *governance.QualityScore, q *governance.SnapshotQuery) bool {
	if !inRange(s.ComputedAt, q) {
		return false
	}
	if q.ScopeKey != "" && s.ScopeKey != q.ScopeKey {
		return false
	}
	if q.ScopeID != "" && s.ScopeID != q.ScopeID {
		return false
	}
	if q.DomainKey != "" && s.DomainKey != q.DomainKey {
		return false
	}
	if q.MaxScore != nil && s.ScoreTotal > *q.MaxScore {
		return false
	}
	return true
}

func matchesReconciliation(r *governance.Reconciliation, q *governance.SnapshotQuery) bool {
	if !inRange(r.ComputedAt, q) {
		return false
	}
	if q.ReconType != "" && r.ReconTypeKey != q.ReconType {
		return false
	}
	if q.Status != "" && r.StatusKey != q.Status {
		return false
	}
	return true
}

// sortKey picks the timestamp a query sorts by.
func sortKey(env governance.Envelope, asOf, computedAt time.Time, field string) time.Time {
	switch field {
	case "as_of":
		return asOf
	case "created_at":
		return env.CreatedAt
	default:
		return computedAt
	}
}

// orderAndPage sorts idx by the query's sort field and applies pagination.
// idx holds append positions, which break ties so equal timestamps keep
// their append order.
func orderAndPage(idx []int, key func(int) time.Time, q *governance.SnapshotQuery) []int {
	desc := q.SortOrder != "asc"
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := key(idx[a]), key(idx[b])
		if ka.Equal(kb) {
			if desc {
				return idx[a] > idx[b]
			}
			return idx[a] < idx[b]
		}
		if desc {
			return ka.After(kb)
		}
		return ka.Before(kb)
	})

	if q.Offset >= len(idx) {
		return nil
	}
	idx = idx[q.Offset:]
	if q.Limit > 0 && q.Limit < len(idx) {
		idx = idx[:q.Limit]
	}
	return idx
}

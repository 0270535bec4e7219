package governance

import "time"

// SnapshotQuery filters quality-score and reconciliation snapshots. Fields
// that do not apply to a snapshot kind are ignored for that kind.
type SnapshotQuery struct {
	// Time range over ComputedAt
	StartTime *time.Time
	EndTime   *time.Time

	// Quality score filters
	ScopeKey  QualityScope
	ScopeID   string
	DomainKey Domain
	MaxScore  *int // ScoreTotal <= MaxScore

	// Reconciliation filters
	ReconType ReconType
	Status    ReconStatus

	// LatestOnly returns only the most recent snapshot of each scope.
	LatestOnly bool
	// KeepLatest protects the most recent snapshot of each scope from
	// deletion. Only consulted by Delete.
	KeepLatest bool

	// Sorting and pagination
	SortBy    string // "computed_at", "as_of", "created_at"
	SortOrder string // "asc", "desc"
	Limit     int
	Offset    int
}

// Identity returns the envelope itself. It is promoted to every record that
// embeds Envelope so generic store helpers can reach the identity fields.
func (e *Envelope) Identity() *Envelope {
	return e
}

package governance

import (
	"context"
	"encoding/json"
)

// SnapshotStore is an append-only log of quality-score and reconciliation
// snapshots. Appends never modify earlier snapshots. The most recently
// appended snapshot of a scope is its latest, regardless of timestamps.
type SnapshotStore interface {
	// AppendQualityScore assigns ID, CreatedAt and UpdatedAt and persists
	// the score.
	AppendQualityScore(ctx context.Context, score *QualityScore) error

	// AppendReconciliation assigns ID, CreatedAt and UpdatedAt and persists
	// the reconciliation.
	AppendReconciliation(ctx context.Context, recon *Reconciliation) error

	// GetQualityScore returns a NotFoundError when id is unknown.
	GetQualityScore(ctx context.Context, id string) (*QualityScore, error)

	// GetReconciliation returns a NotFoundError when id is unknown.
	GetReconciliation(ctx context.Context, id string) (*Reconciliation, error)

	// LatestQualityScore returns the last score appended for the scope.
	LatestQualityScore(ctx context.Context, scope QualityScope, scopeID string) (*QualityScore, error)

	// LatestReconciliation returns the last reconciliation appended for the
	// type and scope.
	LatestReconciliation(ctx context.Context, reconType ReconType, scope ReconScope) (*Reconciliation, error)

	QueryQualityScores(ctx context.Context, q *SnapshotQuery) ([]*QualityScore, error)
	QueryReconciliations(ctx context.Context, q *SnapshotQuery) ([]*Reconciliation, error)

	CountQualityScores(ctx context.Context, q *SnapshotQuery) (int64, error)
	CountReconciliations(ctx context.Context, q *SnapshotQuery) (int64, error)

	// DeleteQualityScores removes matching scores and returns how many were
	// removed. With q.KeepLatest the latest score of every scope survives.
	DeleteQualityScores(ctx context.Context, q *SnapshotQuery) (int64, error)

	// DeleteReconciliations is DeleteQualityScores for reconciliations.
	DeleteReconciliations(ctx context.Context, q *SnapshotQuery) (int64, error)

	Close() error
}

// Document is a JSON record held by a Catalog.
type Document struct {
	Envelope
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
}

// Catalog stores mutable governance records (metrics, lineage, overrides,
// rules) as JSON documents keyed by collection and ID.
type Catalog interface {
	// Put inserts or replaces a document. An empty id is replaced by a new
	// UUID. CreatedAt is kept across replacements.
	Put(ctx context.Context, collection, id string, data json.RawMessage) (*Document, error)

	// Get returns a NotFoundError when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Document, error)

	// List returns every document of a collection ordered by ID.
	List(ctx context.Context, collection string) ([]*Document, error)

	// Delete returns a NotFoundError when the document does not exist.
	Delete(ctx context.Context, collection, id string) error

	Close() error
}

// QualityScopeKey is the identity of a quality-score scope.
func QualityScopeKey(scope QualityScope, scopeID string) string {
	return string(scope) + "|" + scopeID
}

// ReconScopeKey is the identity of a reconciliation scope.
func ReconScopeKey(reconType ReconType, scope ReconScope) string {
	return string(reconType) + "|" + scope.Key()
}

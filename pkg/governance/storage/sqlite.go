package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"wealthos/governance/pkg/governance"
)

// SQLiteConfig contains configuration for the SQLite snapshot store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/snapshots.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteSnapshotStore implements governance.SnapshotStore on SQLite.
type SQLiteSnapshotStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteSnapshotStore opens (or creates) the snapshot database.
func NewSQLiteSnapshotStore(config *SQLiteConfig) (*SQLiteSnapshotStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "governance.storage.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteSnapshotStore{
		db:     db,
		config: config,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite snapshot store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteSnapshotStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return governance.NewStorageError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return governance.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return governance.NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return governance.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return governance.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return governance.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// AppendQualityScore persists score.
func (s *SQLiteSnapshotStore) AppendQualityScore(ctx context.Context, score *governance.QualityScore) error {
	stamp(&score.Envelope, uuid.NewString(), s.now())

	payload, err := json.Marshal(score)
	if err != nil {
		return governance.NewStorageError("sqlite", "marshal", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quality_scores (id, scope_key, scope_id, domain_key, score_total, as_of, computed_at, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		score.ID, string(score.ScopeKey), score.ScopeID, string(score.DomainKey), score.ScoreTotal,
		score.AsOf.UnixNano(), score.ComputedAt.UnixNano(), score.CreatedAt.UnixNano(), string(payload),
	)
	if err != nil {
		return governance.NewStorageError("sqlite", "append", err)
	}
	return nil
}

// AppendReconciliation persists recon.
func (s *SQLiteSnapshotStore) AppendReconciliation(ctx context.Context, recon *governance.Reconciliation) error {
	stamp(&recon.Envelope, uuid.NewString(), s.now())

	payload, err := json.Marshal(recon)
	if err != nil {
		return governance.NewStorageError("sqlite", "marshal", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reconciliations (id, recon_type, scope, status, as_of, computed_at, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		recon.ID, string(recon.ReconTypeKey), recon.Scope.Key(), string(recon.StatusKey),
		recon.AsOf.UnixNano(), recon.ComputedAt.UnixNano(), recon.CreatedAt.UnixNano(), string(payload),
	)
	if err != nil {
		return governance.NewStorageError("sqlite", "append", err)
	}
	return nil
}

// GetQualityScore returns the score with the given ID.
func (s *SQLiteSnapshotStore) GetQualityScore(ctx context.Context, id string) (*governance.QualityScore, error) {
	var score governance.QualityScore
	err := s.getOne(ctx, &score, `SELECT payload FROM quality_scores WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.NewNotFoundError(governance.CollectionQualityScores, id)
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// GetReconciliation returns the reconciliation with the given ID.
func (s *SQLiteSnapshotStore) GetReconciliation(ctx context.Context, id string) (*governance.Reconciliation, error) {
	var recon governance.Reconciliation
	err := s.getOne(ctx, &recon, `SELECT payload FROM reconciliations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.NewNotFoundError(governance.CollectionReconciliations, id)
	}
	if err != nil {
		return nil, err
	}
	return &recon, nil
}

// LatestQualityScore returns the last score appended for the scope.
func (s *SQLiteSnapshotStore) LatestQualityScore(ctx context.Context, scope governance.QualityScope, scopeID string) (*governance.QualityScore, error) {
	var score governance.QualityScore
	err := s.getOne(ctx, &score, `
		SELECT payload FROM quality_scores
		WHERE scope_key = ? AND scope_id = ?
		ORDER BY seq DESC LIMIT 1`, string(scope), scopeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.NewNotFoundError(governance.CollectionQualityScores, governance.QualityScopeKey(scope, scopeID))
	}
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// LatestReconciliation returns the last reconciliation appended for the
// type and scope.
func (s *SQLiteSnapshotStore) LatestReconciliation(ctx context.Context, reconType governance.ReconType, scope governance.ReconScope) (*governance.Reconciliation, error) {
	var recon governance.Reconciliation
	err := s.getOne(ctx, &recon, `
		SELECT payload FROM reconciliations
		WHERE recon_type = ? AND scope = ?
		ORDER BY seq DESC LIMIT 1`, string(reconType), scope.Key())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.NewNotFoundError(governance.CollectionReconciliations, governance.ReconScopeKey(reconType, scope))
	}
	if err != nil {
		return nil, err
	}
	return &recon, nil
}

// getOne scans a single payload column into dst. sql.ErrNoRows is returned
// unwrapped so callers can map it to a NotFoundError.
func (s *SQLiteSnapshotStore) getOne(ctx context.Context, dst any, query string, args ...any) error {
	var payload string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return governance.NewStorageError("sqlite", "get", err)
	}
	if err := json.Unmarshal([]byte(payload), dst); err != nil {
		return governance.NewStorageError("sqlite", "unmarshal", err)
	}
	return nil
}

// QueryQualityScores returns scores matching q.
func (s *SQLiteSnapshotStore) QueryQualityScores(ctx context.Context, q *governance.SnapshotQuery) ([]*governance.QualityScore, error) {
	where, args := scoreWhere(q)
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM quality_scores"+where+orderClause(q), args...)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	results := []*governance.QualityScore{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, governance.NewStorageError("sqlite", "scan", err)
		}
		var score governance.QualityScore
		if err := json.Unmarshal([]byte(payload), &score); err != nil {
			return nil, governance.NewStorageError("sqlite", "unmarshal", err)
		}
		results = append(results, &score)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("sqlite", "query", err)
	}
	return results, nil
}

// QueryReconciliations returns reconciliations matching q.
func (s *SQLiteSnapshotStore) QueryReconciliations(ctx context.Context, q *governance.SnapshotQuery) ([]*governance.Reconciliation, error) {
	where, args := reconWhere(q)
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM reconciliations"+where+orderClause(q), args...)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	results := []*governance.Reconciliation{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, governance.NewStorageError("sqlite", "scan", err)
		}
		var recon governance.Reconciliation
		if err := json.Unmarshal([]byte(payload), &recon); err != nil {
			return nil, governance.NewStorageError("sqlite", "unmarshal", err)
		}
		results = append(results, &recon)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("sqlite", "query", err)
	}
	return results, nil
}

// CountQualityScores counts scores matching q.
func (s *SQLiteSnapshotStore) CountQualityScores(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	where, args := scoreWhere(q)
	return s.count(ctx, "SELECT COUNT(*) FROM quality_scores"+where, args)
}

// CountReconciliations counts reconciliations matching q.
func (s *SQLiteSnapshotStore) CountReconciliations(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	where, args := reconWhere(q)
	return s.count(ctx, "SELECT COUNT(*) FROM reconciliations"+where, args)
}

func (s *SQLiteSnapshotStore) count(ctx context.Context, query string, args []any) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, governance.NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteQualityScores removes scores matching q.
func (s *SQLiteSnapshotStore) DeleteQualityScores(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	where, args := scoreWhere(q)
	if q.KeepLatest {
		where = appendCondition(where, "seq NOT IN ("+latestScoreSeqs+")")
	}
	return s.delete(ctx, "DELETE FROM quality_scores"+where, args)
}

// DeleteReconciliations removes reconciliations matching q.
func (s *SQLiteSnapshotStore) DeleteReconciliations(ctx context.Context, q *governance.SnapshotQuery) (int64, error) {
	where, args := reconWhere(q)
	if q.KeepLatest {
		where = appendCondition(where, "seq NOT IN ("+latestReconSeqs+")")
	}
	return s.delete(ctx, "DELETE FROM reconciliations"+where, args)
}

func (s *SQLiteSnapshotStore) delete(ctx context.Context, query string, args []any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, governance.NewStorageError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, governance.NewStorageError("sqlite", "delete", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLiteSnapshotStore) Close() error {
	if err := s.db.Close(); err != nil {
		return governance.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite snapshot store closed")
	return nil
}

// timeConditions adds the computed_at range of q.
func timeConditions(q *governance.SnapshotQuery) ([]string, []any) {
	var conditions []string
	var args []any
	if q.StartTime != nil {
		conditions = append(conditions, "computed_at >= ?")
		args = append(args, q.StartTime.UnixNano())
	}
	if q.EndTime != nil {
		conditions = append(conditions, "computed_at <= ?")
		args = append(args, q.EndTime.UnixNano())
	}
	return conditions, args
}

// scoreWhere builds the WHERE clause (with leading keyword) for quality
// score queries.
func scoreWhere(q *governance.SnapshotQuery) (string, []any) {
	conditions, args := timeConditions(q)
	if q.ScopeKey != "" {
		conditions = append(conditions, "scope_key = ?")
		args = append(args, string(q.ScopeKey))
	}
	if q.ScopeID != "" {
		conditions = append(conditions, "scope_id = ?")
		args = append(args, q.ScopeID)
	}
	if q.DomainKey != "" {
		conditions = append(conditions, "domain_key = ?")
		args = append(args, string(q.DomainKey))
	}
	if q.MaxScore != nil {
		conditions = append(conditions, "score_total <= ?")
		args = append(args, *q.MaxScore)
	}
	if q.LatestOnly {
		conditions = append(conditions, "seq IN ("+latestScoreSeqs+")")
	}
	return whereClause(conditions), args
}

func reconWhere(q *governance.SnapshotQuery) (string, []any) {
	conditions, args := timeConditions(q)
	if q.ReconType != "" {
		conditions = append(conditions, "recon_type = ?")
		args = append(args, string(q.ReconType))
	}
	if q.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(q.Status))
	}
	if q.LatestOnly {
		conditions = append(conditions, "seq IN ("+latestReconSeqs+")")
	}
	return whereClause(conditions), args
}

func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

func appendCondition(where, condition string) string {
	if where == "" {
		return " WHERE " + condition
	}
	return where + " AND " + condition
}

var sortColumns = map[string]bool{
	"computed_at": true,
	"as_of":       true,
	"created_at":  true,
}

// orderClause renders ORDER BY and pagination. Unknown sort fields fall back
// to computed_at.
func orderClause(q *governance.SnapshotQuery) string {
	sortBy := "computed_at"
	if sortColumns[q.SortBy] {
		sortBy = q.SortBy
	}
	sortOrder := "DESC"
	if strings.EqualFold(q.SortOrder, "asc") {
		sortOrder = "ASC"
	}

	clause := fmt.Sprintf(" ORDER BY %s %s, seq %s", sortBy, sortOrder, sortOrder)
	if q.Limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", q.Limit)
		if q.Offset > 0 {
			clause += fmt.Sprintf(" OFFSET %d", q.Offset)
		}
	} else if q.Offset > 0 {
		clause += fmt.Sprintf(" LIMIT -1 OFFSET %d", q.Offset)
	}
	return clause
}

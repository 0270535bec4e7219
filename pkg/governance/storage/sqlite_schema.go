package storage

// SchemaVersion is the current snapshot database schema version.
const SchemaVersion = 1

// Schema creates the snapshot log tables. seq is the append order and
// defines which snapshot of a scope is the latest. Timestamps are stored as
// Unix nanoseconds in UTC; payload holds the full JSON record.
const Schema = `
CREATE TABLE IF NOT EXISTS quality_scores (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    scope_key TEXT NOT NULL,
    scope_id TEXT NOT NULL,
    domain_key TEXT,
    score_total INTEGER NOT NULL,
    as_of INTEGER NOT NULL,
    computed_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reconciliations (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    recon_type TEXT NOT NULL,
    scope TEXT NOT NULL,
    status TEXT NOT NULL,
    as_of INTEGER NOT NULL,
    computed_at INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    payload TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_quality_scores_scope ON quality_scores(scope_key, scope_id);
CREATE INDEX IF NOT EXISTS idx_quality_scores_computed_at ON quality_scores(computed_at);
CREATE INDEX IF NOT EXISTS idx_reconciliations_scope ON reconciliations(recon_type, scope);
CREATE INDEX IF NOT EXISTS idx_reconciliations_computed_at ON reconciliations(computed_at);
`

// InsertSchemaVersion records the schema version once.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion returns the newest applied schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

const (
	latestScoreSeqs = `SELECT MAX(seq) FROM quality_scores GROUP BY scope_key, scope_id`
	latestReconSeqs = `SELECT MAX(seq) FROM reconciliations GROUP BY recon_type, scope`
)

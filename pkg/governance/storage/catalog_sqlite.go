package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"wealthos/governance/pkg/governance"
)

// SQLiteCatalogConfig configures the SQLite catalog.
type SQLiteCatalogConfig struct {
	// Path is the path to the SQLite database file.
	Path string

	// CheckpointInterval is how often to checkpoint the WAL. Zero disables
	// the background checkpoint.
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteCatalog implements governance.Catalog on a pure-Go SQLite driver.
// Documents live in one table keyed by (collection, id).
type SQLiteCatalog struct {
	db        *sql.DB
	interval  time.Duration
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
	now       func() time.Time
}

// NewSQLiteCatalog opens (or creates) the catalog database.
func NewSQLiteCatalog(cfg SQLiteCatalogConfig) (*SQLiteCatalog, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "open", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	c := &SQLiteCatalog{
		db:       db,
		interval: cfg.CheckpointInterval,
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "governance.storage.catalog"),
		now:      func() time.Time { return time.Now().UTC() },
	}

	if _, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (collection, id)
	);
	`); err != nil {
		db.Close()
		return nil, governance.NewStorageError("sqlite", "create_schema", err)
	}

	if c.interval > 0 {
		go c.checkpointLoop()
	}
	return c, nil
}

// Put inserts or replaces a document.
func (c *SQLiteCatalog) Put(ctx context.Context, collection, id string, data json.RawMessage) (*governance.Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	now := c.now()

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		collection, id, string(data), now.UnixNano(), now.UnixNano(),
	)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "put", err)
	}
	return c.Get(ctx, collection, id)
}

// Get returns a document by collection and ID.
func (c *SQLiteCatalog) Get(ctx context.Context, collection, id string) (*governance.Document, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT collection, id, data, created_at, updated_at
		FROM documents WHERE collection = ? AND id = ?`, collection, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, governance.NewNotFoundError(collection, id)
	}
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "get", err)
	}
	return doc, nil
}

// List returns every document of a collection ordered by ID.
func (c *SQLiteCatalog) List(ctx context.Context, collection string) ([]*governance.Document, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT collection, id, data, created_at, updated_at
		FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, governance.NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	docs := []*governance.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, governance.NewStorageError("sqlite", "scan", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, governance.NewStorageError("sqlite", "list", err)
	}
	return docs, nil
}

// Delete removes a document.
func (c *SQLiteCatalog) Delete(ctx context.Context, collection, id string) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return governance.NewStorageError("sqlite", "delete", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return governance.NewStorageError("sqlite", "delete", err)
	}
	if n == 0 {
		return governance.NewNotFoundError(collection, id)
	}
	return nil
}

// Close stops the checkpoint loop and closes the database.
func (c *SQLiteCatalog) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if _, cpErr := c.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); cpErr != nil {
			c.logger.Warn("final checkpoint failed", "error", cpErr)
		}
		err = c.db.Close()
	})
	if err != nil {
		return governance.NewStorageError("sqlite", "close", err)
	}
	return nil
}

func (c *SQLiteCatalog) checkpointLoop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := c.db.Exec("PRAGMA wal_checkpoint(PASSIVE)"); err != nil {
				c.logger.Warn("checkpoint failed", "error", err)
			}
		case <-c.done:
			return
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*governance.Document, error) {
	var (
		doc                  governance.Document
		data                 string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&doc.Collection, &doc.ID, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	doc.Data = json.RawMessage(data)
	doc.CreatedAt = time.Unix(0, createdAt).UTC()
	doc.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &doc, nil
}

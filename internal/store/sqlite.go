package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/playbill/playbill/internal/notify"
)

// SQLiteStore keeps every document in one SQLite database, a single row per
// store identifier.
type SQLiteStore struct {
	db       *sql.DB
	notifier notify.Notifier
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
    store_id   TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// NewSQLiteStore opens (creating when missing) the catalog database under
// the given directory.
func NewSQLiteStore(opts Options) (*SQLiteStore, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("sqlite store requires a directory")
	}
	path := filepath.Join(opts.Dir, "playbill.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// The modernc driver serializes writes through a single connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating documents table: %w", err)
	}
	return &SQLiteStore{db: db, notifier: opts.Notifier}, nil
}

// ReadDocument implements catalog.Gateway.
func (s *SQLiteStore) ReadDocument(ctx context.Context, storeID string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE store_id = ?`, storeID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteDocument implements catalog.Gateway.
func (s *SQLiteStore) WriteDocument(ctx context.Context, storeID string, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO documents (store_id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT(store_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		storeID, data, time.Now().Unix())
	return err
}

// NotifyRefresh implements catalog.Gateway.
func (s *SQLiteStore) NotifyRefresh(ctx context.Context, storeID string) error {
	return s.notifier.Notify(ctx, storeID)
}

// Close implements io.Closer.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

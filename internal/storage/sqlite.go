package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		partition_key TEXT NOT NULL,
		entry_key     TEXT NOT NULL,
		value         BLOB NOT NULL,
		updated_at    DATETIME NOT NULL,
		PRIMARY KEY (partition_key, entry_key)
	)
`

const (
	sqliteUpsert = `
		INSERT INTO ledger_entries (partition_key, entry_key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (partition_key, entry_key) DO UPDATE
		SET value = excluded.value,
		    updated_at = excluded.updated_at
	`
	sqliteDelete = `DELETE FROM ledger_entries WHERE partition_key = ? AND entry_key = ?`
)

// SQLiteStore persists partitions in a local SQLite file (modernc.org/sqlite, no CGO)
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the schema exists
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required for sqlite storage")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer; one connection avoids "database is locked" under concurrent requests
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the ledger_entries table if it does not exist
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create ledger_entries table: %w", err)
	}
	return nil
}

// Get implements Store
func (s *SQLiteStore) Get(ctx context.Context, partition string, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ")
	query := `SELECT entry_key, value FROM ledger_entries WHERE partition_key = ? AND entry_key IN (` + placeholders + `)`

	args := make([]any, 0, len(keys)+1)
	args = append(args, partition)
	for _, key := range keys {
		args = append(args, key)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", partition, err)
	}
	return scanEntries(rows, len(keys))
}

// PutAll implements Store
func (s *SQLiteStore) PutAll(ctx context.Context, partition string, entries map[string][]byte) error {
	return putAllSQL(ctx, s.db, sqliteUpsert, partition, entries)
}

// DeleteAll implements Store
func (s *SQLiteStore) DeleteAll(ctx context.Context, partition string, keys ...string) error {
	return deleteAllSQL(ctx, s.db, sqliteDelete, partition, keys)
}

// Ping implements Store
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

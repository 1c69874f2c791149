package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		partition_key TEXT NOT NULL,
		entry_key     TEXT NOT NULL,
		value         BYTEA NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (partition_key, entry_key)
	)
`

const (
	postgresUpsert = `
		INSERT INTO ledger_entries (partition_key, entry_key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (partition_key, entry_key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
	`
	postgresDelete = `DELETE FROM ledger_entries WHERE partition_key = $1 AND entry_key = $2`
	postgresSelect = `
		SELECT entry_key, value
		FROM ledger_entries
		WHERE partition_key = $1 AND entry_key = ANY($2)
	`
)

// PostgresStore persists partitions in a Postgres table via lib/pq
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to databaseURL and ensures the schema exists
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required for postgres storage")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the ledger_entries table if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create ledger_entries table: %w", err)
	}
	return nil
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, partition string, keys ...string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	rows, err := s.db.QueryContext(ctx, postgresSelect, partition, pq.Array(keys))
	if err != nil {
		return nil, fmt.Errorf("failed to read partition %s: %w", partition, err)
	}
	return scanEntries(rows, len(keys))
}

// PutAll implements Store
func (s *PostgresStore) PutAll(ctx context.Context, partition string, entries map[string][]byte) error {
	return putAllSQL(ctx, s.db, postgresUpsert, partition, entries)
}

// DeleteAll implements Store
func (s *PostgresStore) DeleteAll(ctx context.Context, partition string, keys ...string) error {
	return deleteAllSQL(ctx, s.db, postgresDelete, partition, keys)
}

// Ping implements Store
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ledger_entries holds one row per (partition, key). Both SQL backends share the layout.

// execInTx runs fn inside a transaction, rolling back on any error
func execInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// putAllSQL upserts every entry with upsertQuery (args: partition, key, value, updated_at)
func putAllSQL(ctx context.Context, db *sql.DB, upsertQuery, partition string, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	now := time.Now().UTC()
	err := execInTx(ctx, db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertQuery)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for key, value := range entries {
			if _, err := stmt.ExecContext(ctx, partition, key, value, now); err != nil {
				return fmt.Errorf("failed to upsert %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write partition %s: %w", partition, err)
	}
	return nil
}

// deleteAllSQL deletes keys with deleteQuery (args: partition, key)
func deleteAllSQL(ctx context.Context, db *sql.DB, deleteQuery, partition string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	err := execInTx(ctx, db, func(tx *sql.Tx) error {
		for _, key := range keys {
			if _, err := tx.ExecContext(ctx, deleteQuery, partition, key); err != nil {
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete partition %s: %w", partition, err)
	}
	return nil
}

// scanEntries collects (entry_key, value) rows
func scanEntries(rows *sql.Rows, expected int) (map[string][]byte, error) {
	defer func() { _ = rows.Close() }()

	out := make(map[string][]byte, expected)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return out, nil
}

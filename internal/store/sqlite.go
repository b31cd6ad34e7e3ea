// Package store persists interview sessions and reports in SQLite, with an
// in-memory implementation for tests and throwaway runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/soyeahso/evaluet/internal/logging"
)

const memoryPath = ":memory:"

// Report workers and live sessions write concurrently; writers wait this long
// for the lock instead of failing with SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// DB is a migrated SQLite handle.
type DB struct {
	sql *sql.DB
	log *logging.Logger
}

// Open opens or creates the database at path and applies pending migrations.
// ":memory:" gives a private in-memory database.
func Open(path string, log *logging.Logger) (*DB, error) {
	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == memoryPath {
		// Every pooled connection would otherwise get its own empty database.
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout.Milliseconds()),
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	db := &DB{sql: sqlDB, log: log.Sub("store")}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	applied, err := db.migrate(ctx)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db.log.Info().Str("path", path).Int("migrations", applied).Msg("database opened")
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	db.log.Info().Msg("closing database")
	return db.sql.Close()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// migrate applies pending migrations in version order and reports how many
// ran.
func (db *DB) migrate(ctx context.Context) (int, error) {
	if _, err := db.sql.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	var current int
	if err := db.sql.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version), 0) FROM schema_migrations",
	).Scan(&current); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	applied := 0
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		db.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		err := db.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
				return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("recording migration %d: %w", m.Version, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

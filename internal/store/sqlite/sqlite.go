// Package sqlite stores streak snapshots in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is stamped into PRAGMA user_version. Databases
// written by a newer schema are refused rather than silently misread.
const currentSchemaVersion = 0

// Store keeps streaks in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically.
//
// The database is configured with:
//   - WAL mode
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ReadStreaks returns every stored (member, streak) pair.
// Returns an empty map, not nil, for a fresh database.
func (s *Store) ReadStreaks(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, streak
		FROM streaks
		ORDER BY user_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read streaks: %w", err)
	}
	defer rows.Close()

	streaks := make(map[string]int)
	for rows.Next() {
		var (
			id     string
			streak int
		)
		if err := rows.Scan(&id, &streak); err != nil {
			return nil, fmt.Errorf("read streaks: scan: %w", err)
		}
		streaks[id] = streak
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read streaks: iterate: %w", err)
	}
	return streaks, nil
}

// WriteStreaks upserts the batch in a single transaction.
// Either every row is written or none is.
func (s *Store) WriteStreaks(ctx context.Context, streaks map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write streaks: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO streaks (user_id, streak)
		VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			streak = excluded.streak,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
	`)
	if err != nil {
		return fmt.Errorf("write streaks: prepare: %w", err)
	}
	defer stmt.Close()

	for id, streak := range streaks {
		if _, err := stmt.ExecContext(ctx, id, streak); err != nil {
			return fmt.Errorf("write streaks: upsert %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write streaks: commit: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and checks the schema version.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := checkSchemaVersion(db); err != nil {
		return fmt.Errorf("failed to check schema version: %w", err)
	}

	return nil
}

// checkSchemaVersion rejects databases from a newer schema and stamps the
// current version on new ones.
func checkSchemaVersion(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}

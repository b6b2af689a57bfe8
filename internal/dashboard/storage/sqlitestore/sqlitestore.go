// Package sqlitestore persists workspace entries in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"finitefield.org/artist-dashboard/internal/dashboard/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
    scope TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
    PRIMARY KEY (scope, key)
);
`

// Store is a storage.Backend over SQLite.
type Store struct {
	db   *sql.DB
	path string
}

var _ storage.Backend = (*Store)(nil)

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlitestore: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	return open(path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
}

// OpenMemory opens a private in-memory database (useful for testing).
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases
	// from being split across connections.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db, path: dsn}, nil
}

// Get implements storage.Backend.
func (s *Store) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if strings.TrimSpace(scope) == "" {
		return "", false, storage.ErrInvalidScope
	}
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM entries WHERE scope = ? AND key = ?`, scope, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("getting entry", err)
	}
	return value, true, nil
}

// Set implements storage.Backend.
func (s *Store) Set(ctx context.Context, scope, key, value string) error {
	if strings.TrimSpace(scope) == "" {
		return storage.ErrInvalidScope
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (scope, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(scope, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		scope, key, value, time.Now().UTC(),
	)
	if err != nil {
		return wrap("writing entry", err)
	}
	return nil
}

// Delete implements storage.Backend.
func (s *Store) Delete(ctx context.Context, scope, key string) error {
	if strings.TrimSpace(scope) == "" {
		return storage.ErrInvalidScope
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE scope = ? AND key = ?`, scope, key); err != nil {
		return wrap("deleting entry", err)
	}
	return nil
}

// Entries implements storage.Backend.
func (s *Store) Entries(ctx context.Context, scope string) ([]storage.Entry, error) {
	if strings.TrimSpace(scope) == "" {
		return nil, storage.ErrInvalidScope
	}
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM entries WHERE scope = ? ORDER BY key`, scope)
	if err != nil {
		return nil, wrap("listing entries", err)
	}
	defer rows.Close()

	var entries []storage.Entry
	for rows.Next() {
		var e storage.Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, wrap("scanning entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("listing entries", err)
	}
	return entries, nil
}

// Usage implements storage.Backend.
func (s *Store) Usage(ctx context.Context, scope string) (int64, error) {
	if strings.TrimSpace(scope) == "" {
		return 0, storage.ErrInvalidScope
	}
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))) FROM entries WHERE scope = ?`, scope,
	).Scan(&total)
	if err != nil {
		return 0, wrap("computing usage", err)
	}
	return total.Int64, nil
}

// Close implements storage.Backend.
func (s *Store) Close() error {
	return s.db.Close()
}

func wrap(op string, err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return fmt.Errorf("%s: %w", op, storage.ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

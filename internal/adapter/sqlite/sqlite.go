// Package sqlite implements the domain repositories on a local SQLite
// database, for single-node and development deployments.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"streaks/migrations"
)

// DB wraps a *sql.DB and hands out repository implementations.
type DB struct {
	sql *sql.DB
}

// Open opens the SQLite database at dsn and runs pending migrations.
func Open(dsn string) (*DB, error) {
	s, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := s.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	// The driver serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent request handling.
	s.SetMaxOpenConns(1)

	if err := migrations.Up(s, "sqlite"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{sql: s}, nil
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Users returns the user repository.
func (d *DB) Users() *UserRepo { return &UserRepo{db: d} }

// Reads returns the read-event repository.
func (d *DB) Reads() *ReadRepo { return &ReadRepo{db: d} }

// Admins returns the admin repository.
func (d *DB) Admins() *AdminRepo { return &AdminRepo{db: d} }

// Sessions returns the session repository.
func (d *DB) Sessions() *SessionRepo { return &SessionRepo{db: d} }

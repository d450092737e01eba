// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"

	"streaks/migrations"
)

// DB wraps a *sql.DB and hands out repository implementations.
type DB struct {
	sql *sql.DB
}

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := migrations.Up(s, "postgres"); err != nil {
		_ = s.Close()
		return nil, err
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

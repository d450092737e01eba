// Package migrations embeds the SQL schema migrations, one directory per
// supported dialect.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS

// dialectDir maps a goose dialect onto its migration directory.
func dialectDir(dialect string) (string, error) {
	switch dialect {
	case "postgres":
		return "postgres", nil
	case "sqlite3", "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}

// Up applies all pending migrations to the given database.
func Up(db *sql.DB, dialect string) error {
	dir, err := prepare(dialect)
	if err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func Down(db *sql.DB, dialect string) error {
	dir, err := prepare(dialect)
	if err != nil {
		return err
	}
	return goose.Down(db, dir)
}

// Status prints the migration status to stdout.
func Status(db *sql.DB, dialect string) error {
	dir, err := prepare(dialect)
	if err != nil {
		return err
	}
	return goose.Status(db, dir)
}

// Version prints the current migration version to stdout.
func Version(db *sql.DB, dialect string) error {
	dir, err := prepare(dialect)
	if err != nil {
		return err
	}
	return goose.Version(db, dir)
}

func prepare(dialect string) (string, error) {
	dir, err := dialectDir(dialect)
	if err != nil {
		return "", err
	}
	goose.SetBaseFS(FS)
	if dialect == "sqlite" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return "", fmt.Errorf("set dialect: %w", err)
	}
	return dir, nil
}

package repo

import (
	"context"
	"fmt"
)

// SchemaError marks a table-creation or migration failure. It is fatal:
// the process must not serve traffic over an unmigrated schema.
type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema migration failed: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

const (
	createRegistrationsTable = `
		CREATE TABLE IF NOT EXISTS registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			student_name TEXT NOT NULL,
			event_name TEXT NOT NULL,
			tickets INTEGER NOT NULL,
			email TEXT,
			phone TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`

	createEventsTable = `
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			type TEXT,
			start_datetime TEXT,
			end_datetime TEXT,
			venue TEXT,
			description TEXT,
			rules TEXT,
			coordinators TEXT,
			prizes TEXT,
			fee TEXT,
			banner TEXT
		)`

	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL
		)`
)

// EnsureSchema creates the three tables if absent and applies additive
// migrations. It is idempotent and safe to run on every startup: it
// never drops, renames or reorders columns, and never fails on a fresh
// database. All failures come back as *SchemaError.
func (r *repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createRegistrationsTable, createEventsTable, createUsersTable} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return &SchemaError{Err: err}
		}
	}

	hasEventID, err := r.columnExists(ctx, "registrations", "event_id")
	if err != nil {
		return &SchemaError{Err: err}
	}
	if !hasEventID {
		if _, err := r.db.ExecContext(ctx,
			`ALTER TABLE registrations ADD COLUMN event_id INTEGER DEFAULT NULL`); err != nil {
			return &SchemaError{Err: err}
		}
		r.log.Info().Msg("added event_id column to registrations")
	}

	return nil
}

func (r *repository) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s columns: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

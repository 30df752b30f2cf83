package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Ensure SQLite implements Ledger
var _ Ledger = (*SQLite)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS send_attempts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT    NOT NULL,
	row_index     INTEGER NOT NULL,
	contact_email TEXT    NOT NULL,
	position      TEXT    NOT NULL,
	company       TEXT    NOT NULL,
	status        TEXT    NOT NULL,
	subject       TEXT    NOT NULL DEFAULT '',
	body_source   TEXT    NOT NULL DEFAULT '',
	detail        TEXT    NOT NULL DEFAULT '',
	attempted_at  TEXT    NOT NULL
)`

// SQLite is a Ledger stored in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", path, err)
	}
	// One writer; a single connection also keeps :memory: databases consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create send_attempts table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Record inserts an attempt.
func (s *SQLite) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO send_attempts
		   (run_id, row_index, contact_email, position, company, status, subject, body_source, detail, attempted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID.String(), e.RowIndex, e.ContactEmail, e.Position, e.Company, e.Status, e.Subject, e.BodySource, e.Detail,
		e.AttemptedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt for row %d: %w", e.RowIndex, err)
	}
	return nil
}

// Recent returns the latest attempts, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, row_index, contact_email, position, company, status, subject, body_source, detail, attempted_at
		 FROM send_attempts
		 ORDER BY id DESC
		 LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			runID     string
			attempted string
		)
		if err := rows.Scan(&e.ID, &runID, &e.RowIndex, &e.ContactEmail, &e.Position, &e.Company,
			&e.Status, &e.Subject, &e.BodySource, &e.Detail, &attempted); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		if e.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("invalid run_id %q: %w", runID, err)
		}
		if e.AttemptedAt, err = time.Parse(time.RFC3339Nano, attempted); err != nil {
			return nil, fmt.Errorf("invalid attempted_at %q: %w", attempted, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}
	return entries, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

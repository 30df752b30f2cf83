package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Postgres implements Ledger
var _ Ledger = (*Postgres)(nil)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS send_attempts (
	id            BIGSERIAL PRIMARY KEY,
	run_id        UUID        NOT NULL,
	row_index     INTEGER     NOT NULL,
	contact_email TEXT        NOT NULL,
	position      TEXT        NOT NULL,
	company       TEXT        NOT NULL,
	status        TEXT        NOT NULL,
	subject       TEXT        NOT NULL DEFAULT '',
	body_source   TEXT        NOT NULL DEFAULT '',
	detail        TEXT        NOT NULL DEFAULT '',
	attempted_at  TIMESTAMPTZ NOT NULL
)`

// Postgres wraps a PostgreSQL connection pool
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres establishes a connection pool and creates the table if needed
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create send_attempts table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Record inserts an attempt
func (p *Postgres) Record(ctx context.Context, e Entry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO send_attempts
		   (run_id, row_index, contact_email, position, company, status, subject, body_source, detail, attempted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.RunID, e.RowIndex, e.ContactEmail, e.Position, e.Company, e.Status, e.Subject, e.BodySource, e.Detail, e.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt for row %d: %w", e.RowIndex, err)
	}
	return nil
}

// Recent returns the latest attempts, newest first
func (p *Postgres) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, run_id, row_index, contact_email, position, company, status, subject, body_source, detail, attempted_at
		 FROM send_attempts
		 ORDER BY id DESC
		 LIMIT $1`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.RunID, &e.RowIndex, &e.ContactEmail, &e.Position, &e.Company,
			&e.Status, &e.Subject, &e.BodySource, &e.Detail, &e.AttemptedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan attempts: %w", err)
	}
	return entries, nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// Package ledger keeps an append-only history of send attempts, independent of the row store.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-mailer/internal/types"
)

// Entry is one recorded attempt.
type Entry struct {
	ID           int64     `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	RowIndex     int       `json:"row_index"`
	ContactEmail string    `json:"contact_email"`
	Position     string    `json:"position"`
	Company      string    `json:"company"`
	Status       string    `json:"status"`
	Subject      string    `json:"subject,omitempty"`
	BodySource   string    `json:"body_source,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	AttemptedAt  time.Time `json:"attempted_at"`
}

// Ledger stores attempts.
type Ledger interface {
	Record(ctx context.Context, entry Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Open picks a backend from the URL: postgres:// and postgresql:// use PostgreSQL,
// anything else is treated as a SQLite path (an optional sqlite:// prefix is stripped).
func Open(ctx context.Context, url string) (Ledger, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return OpenPostgres(ctx, url)
	default:
		return OpenSQLite(ctx, strings.TrimPrefix(url, "sqlite://"))
	}
}

// EntryFromOutcome converts a processed row into a ledger entry.
func EntryFromOutcome(runID uuid.UUID, o types.Outcome) Entry {
	e := Entry{
		RunID:        runID,
		RowIndex:     o.Row.Index,
		ContactEmail: o.Row.ContactEmail,
		Position:     o.Row.PositionTitle,
		Company:      o.Company,
		Status:       string(o.Status),
		AttemptedAt:  o.ProcessedAt,
	}
	if e.AttemptedAt.IsZero() {
		e.AttemptedAt = time.Now()
	}
	if o.Email != nil {
		e.Subject = o.Email.Subject
		e.BodySource = string(o.Email.Source)
	}
	if o.Err != nil {
		e.Detail = o.Err.Error()
	}
	return e
}

const defaultRecentLimit = 20

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	return limit
}

package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-mailer/internal/types"
)

func openTestLedger(t *testing.T) Ledger {
	t.Helper()
	l, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestSQLite_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	runID := uuid.New()
	attempted := time.Date(2026, 2, 3, 4, 5, 6, 7, time.UTC)

	for i := 2; i <= 4; i++ {
		require.NoError(t, l.Record(ctx, Entry{
			RunID:        runID,
			RowIndex:     i,
			ContactEmail: "hr@acme.io",
			Position:     "Analyst",
			Company:      "Acme",
			Status:       string(types.StatusDone),
			Subject:      "Application for Analyst – Acme",
			BodySource:   string(types.BodySourceAI),
			AttemptedAt:  attempted,
		}))
	}

	entries, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, 4, entries[0].RowIndex)
	assert.Equal(t, 3, entries[1].RowIndex)
	assert.Equal(t, runID, entries[0].RunID)
	assert.Equal(t, "Application for Analyst – Acme", entries[0].Subject)
	assert.True(t, attempted.Equal(entries[0].AttemptedAt))
	assert.Greater(t, entries[0].ID, entries[1].ID)
}

func TestSQLite_RecentDefaultsLimit(t *testing.T) {
	l := openTestLedger(t)

	entries, err := l.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), "")
	assert.ErrorContains(t, err, "ledger path is required")
}

func TestEntryFromOutcome(t *testing.T) {
	runID := uuid.New()
	processed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sent := EntryFromOutcome(runID, types.Outcome{
		Row:         types.Row{Index: 7, ContactEmail: "hr@acme.io", PositionTitle: "Analyst"},
		Status:      types.StatusDone,
		Company:     "Acme",
		Email:       &types.GeneratedEmail{Subject: "subj", Source: types.BodySourceTemplate},
		ProcessedAt: processed,
	})
	assert.Equal(t, Entry{
		RunID:        runID,
		RowIndex:     7,
		ContactEmail: "hr@acme.io",
		Position:     "Analyst",
		Company:      "Acme",
		Status:       "DONE",
		Subject:      "subj",
		BodySource:   "template",
		AttemptedAt:  processed,
	}, sent)

	failed := EntryFromOutcome(runID, types.Outcome{
		Row:    types.Row{Index: 8},
		Status: types.StatusFailed,
		Err:    errors.New("smtp: auth failed"),
	})
	assert.Equal(t, "smtp: auth failed", failed.Detail)
	assert.False(t, failed.AttemptedAt.IsZero())
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-mailer/internal/types"
)

var fixedNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newTestDispatcher(sender *fakeSender, gen *fakeGenerator) *Dispatcher {
	return NewDispatcher(gen, sender, DispatcherOptions{
		AttachmentPath: "/tmp/resume.pdf",
		ResumeText:     "resume",
		Now:            func() time.Time { return fixedNow },
	}, nil)
}

func TestProcess_Sends(t *testing.T) {
	sender := &fakeSender{}
	gen := &fakeGenerator{}
	d := newTestDispatcher(sender, gen)

	out := d.Process(context.Background(), types.Row{
		Index:         2,
		ContactEmail:  " hr@acme-labs.io ",
		PositionTitle: "Data Analyst",
		Status:        types.StatusPending,
	})

	require.NoError(t, out.Err)
	assert.Equal(t, types.StatusDone, out.Status)
	assert.Equal(t, "Acme Labs", out.Company)
	assert.Equal(t, "Dear Acme Labs team", out.Body)
	assert.Equal(t, fixedNow, out.ProcessedAt)
	require.NotNil(t, out.Email)
	assert.True(t, out.Sent())

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "hr@acme-labs.io", msg.To)
	assert.Equal(t, "Application for Data Analyst – Acme Labs", msg.Subject)
	assert.Equal(t, "/tmp/resume.pdf", msg.AttachmentPath)
}

func TestProcess_GenericDomainUsesOverride(t *testing.T) {
	sender := &fakeSender{}
	d := newTestDispatcher(sender, &fakeGenerator{})

	out := d.Process(context.Background(), types.Row{
		Index:           3,
		ContactEmail:    "recruiter@gmail.com",
		PositionTitle:   "Analyst",
		CompanyOverride: "Globex",
	})

	assert.Equal(t, types.StatusDone, out.Status)
	assert.Equal(t, "Globex", out.Company)
}

func TestProcess_SkipsDoneRows(t *testing.T) {
	sender := &fakeSender{}
	gen := &fakeGenerator{}
	d := newTestDispatcher(sender, gen)

	out := d.Process(context.Background(), types.Row{
		Index:         4,
		ContactEmail:  "hr@acme.io",
		PositionTitle: "Analyst",
		Status:        types.StatusDone,
	})

	assert.Equal(t, types.StatusSkipped, out.Status)
	assert.Empty(t, sender.sent)
	assert.Zero(t, gen.calls)
	assert.True(t, out.ProcessedAt.IsZero())
}

func TestProcess_InvalidRowsAreNotSent(t *testing.T) {
	tests := []struct {
		name string
		row  types.Row
	}{
		{"missing email", types.Row{Index: 5, PositionTitle: "Analyst"}},
		{"missing position", types.Row{Index: 6, ContactEmail: "hr@acme.io"}},
		{"whitespace only", types.Row{Index: 7, ContactEmail: "  ", PositionTitle: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{}
			gen := &fakeGenerator{}
			d := newTestDispatcher(sender, gen)

			out := d.Process(context.Background(), tt.row)

			assert.Equal(t, types.StatusFailed, out.Status)
			assert.Equal(t, "Missing Mail_ID or Post_name", out.Body)
			assert.ErrorIs(t, out.Err, ErrInvalidRow)
			assert.Equal(t, fixedNow, out.ProcessedAt)
			assert.Empty(t, sender.sent)
			assert.Zero(t, gen.calls)
		})
	}
}

func TestProcess_SendFailure(t *testing.T) {
	sender := &fakeSender{failTo: map[string]error{"hr@acme.io": errAuth}}
	d := newTestDispatcher(sender, &fakeGenerator{})

	out := d.Process(context.Background(), types.Row{Index: 8, ContactEmail: "hr@acme.io", PositionTitle: "Analyst"})

	assert.Equal(t, types.StatusFailed, out.Status)
	assert.ErrorIs(t, out.Err, errAuth)
	assert.Contains(t, out.Body, "535 authentication failed")
	assert.Equal(t, "Acme", out.Company)
	assert.NotNil(t, out.Email)
	assert.False(t, out.Sent())
}

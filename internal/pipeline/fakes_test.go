package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/mailer"
	"github.com/jonathan/job-mailer/internal/types"
)

type fakeGenerator struct {
	calls int
}

func (f *fakeGenerator) Generate(_ context.Context, companyName, position, _ string) types.GeneratedEmail {
	f.calls++
	return types.GeneratedEmail{
		Subject: "Application for " + position + " – " + companyName,
		Body:    "Dear " + companyName + " team",
		Source:  types.BodySourceTemplate,
	}
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []mailer.Message
	failTo map[string]error
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failTo[msg.To]; ok {
		return &mailer.SendError{To: msg.To, Cause: err}
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeRecorder struct {
	outcomes []types.Outcome
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, o types.Outcome) error {
	f.outcomes = append(f.outcomes, o)
	return f.err
}

type fakeLedger struct {
	entries []ledger.Entry
}

func (f *fakeLedger) Record(_ context.Context, e ledger.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeLedger) Recent(context.Context, int) ([]ledger.Entry, error) {
	return f.entries, nil
}

func (f *fakeLedger) Close() error { return nil }

var errAuth = errors.New("535 authentication failed")

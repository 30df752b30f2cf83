// Package pipeline drives the per-row send loop: resolve the company, draft the email,
// send it with the resume attached and report the row's outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/company"
	"github.com/jonathan/job-mailer/internal/mailer"
	"github.com/jonathan/job-mailer/internal/types"
)

// ErrInvalidRow marks rows without a contact email or position.
var ErrInvalidRow = errors.New("missing Mail_ID or Post_name")

// InvalidRowMessage is the text written into the body cell of such rows.
const InvalidRowMessage = "Missing Mail_ID or Post_name"

// EmailGenerator drafts the subject and body for a row. It must never fail.
type EmailGenerator interface {
	Generate(ctx context.Context, companyName, position, resumeText string) types.GeneratedEmail
}

// Processor turns a row into an outcome.
type Processor interface {
	Process(ctx context.Context, row types.Row) types.Outcome
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// AttachmentPath is the resume attached to every email.
	AttachmentPath string
	// ResumeText is embedded in the generation prompt. It may be empty.
	ResumeText string
	// Now is the clock used for ProcessedAt. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher processes one row at a time.
type Dispatcher struct {
	generator  EmailGenerator
	sender     mailer.Sender
	attachment string
	resumeText string
	now        func() time.Time
	logger     *zap.Logger
}

// Ensure Dispatcher implements Processor
var _ Processor = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher.
func NewDispatcher(gen EmailGenerator, sender mailer.Sender, opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Dispatcher{
		generator:  gen,
		sender:     sender,
		attachment: opts.AttachmentPath,
		resumeText: opts.ResumeText,
		now:        opts.Now,
		logger:     logger,
	}
}

// Process runs the row state machine:
//
//	DONE                 -> SKIPPED, no side effects
//	missing email/title  -> FAILED, nothing sent
//	send error           -> FAILED, body is the error text
//	otherwise            -> DONE, body is the generated text
func (d *Dispatcher) Process(ctx context.Context, row types.Row) types.Outcome {
	if row.Done() {
		return types.Outcome{Row: row, Status: types.StatusSkipped}
	}

	if err := row.Validate(); err != nil {
		return d.fail(row, "", nil, fmt.Errorf("%w: %v", ErrInvalidRow, err), InvalidRowMessage)
	}
	row = row.Normalized()

	companyName := company.Resolve(row.ContactEmail, row.CompanyOverride)
	email := d.generator.Generate(ctx, companyName, row.PositionTitle, d.resumeText)

	err := d.sender.Send(ctx, mailer.Message{
		To:             row.ContactEmail,
		Subject:        email.Subject,
		Body:           email.Body,
		AttachmentPath: d.attachment,
	})
	if err != nil {
		return d.fail(row, companyName, &email, err, err.Error())
	}

	d.logger.Debug("email sent",
		zap.Int("row", row.Index),
		zap.String("to", row.ContactEmail),
		zap.String("company", companyName),
		zap.String("source", string(email.Source)))

	return types.Outcome{
		Row:         row,
		Status:      types.StatusDone,
		Company:     companyName,
		Email:       &email,
		Body:        email.Body,
		ProcessedAt: d.now(),
	}
}

func (d *Dispatcher) fail(row types.Row, companyName string, email *types.GeneratedEmail, err error, body string) types.Outcome {
	return types.Outcome{
		Row:         row,
		Status:      types.StatusFailed,
		Company:     companyName,
		Email:       email,
		Body:        body,
		ProcessedAt: d.now(),
		Err:         err,
	}
}

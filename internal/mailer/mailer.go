// Package mailer delivers application emails with the resume attached.
package mailer

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// PDFContentType is declared for the attachment regardless of its extension.
const PDFContentType = "application/pdf"

// Message is one outbound email.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Sender is a pluggable email sending interface.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendError wraps a failed delivery to a single recipient.
type SendError struct {
	To    string
	Cause error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.To, e.Cause)
}

func (e *SendError) Unwrap() error {
	return e.Cause
}

// LogSender records messages in the log instead of delivering them (dry runs).
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

// Send logs the message and reports success.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("dry run: email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("attachment", msg.AttachmentPath),
	)
	return nil
}

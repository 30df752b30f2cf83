package mailer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gomail.v2"
)

// Ensure SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)

// SMTPConfig holds the submission endpoint and sender credentials.
type SMTPConfig struct {
	Host string
	// Port 465 uses implicit TLS; other ports negotiate STARTTLS.
	Port     int
	From     string
	Password string
}

// DefaultSMTPHost and DefaultSMTPPort point at Gmail's implicit-TLS submission endpoint.
const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 465
)

// SMTPSender sends messages through an authenticated SMTP server.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender validates cfg and prepares a dialer. No connection is opened until Send.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultSMTPHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultSMTPPort
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("SMTP app password is required")
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.From, cfg.Password),
		from:   cfg.From,
	}, nil
}

// Send composes msg and delivers it over a fresh connection.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := Compose(s.from, msg)
	if err != nil {
		return &SendError{To: msg.To, Cause: err}
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return &SendError{To: msg.To, Cause: err}
	}
	return nil
}

// Compose builds the MIME message: a plain-text body and the attachment declared as PDF.
func Compose(from string, msg Message) (*gomail.Message, error) {
	if strings.TrimSpace(msg.To) == "" {
		return nil, fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if msg.AttachmentPath != "" {
		// gomail opens the file only while writing; check now so the row gets a clear error.
		if _, err := os.Stat(msg.AttachmentPath); err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		name := filepath.Base(msg.AttachmentPath)
		m.Attach(msg.AttachmentPath,
			gomail.Rename(name),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {fmt.Sprintf("%s; name=%q", PDFContentType, name)},
			}),
		)
	}

	return m, nil
}

// Package content composes the subject and body of an application email.
package content

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/llm"
	"github.com/jonathan/job-mailer/internal/types"
)

const defaultTimeout = 60 * time.Second

// Options configures a Generator.
type Options struct {
	Signature Signature
	// Timeout bounds a single call to the text service.
	Timeout time.Duration
}

// Generator drafts emails with the text service and falls back to a fixed template.
type Generator struct {
	client    llm.Client
	signature Signature
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGenerator creates a Generator. A nil client means every body comes from the template.
func NewGenerator(client llm.Client, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Signature == (Signature{}) {
		opts.Signature = DefaultSignature()
	}
	return &Generator{
		client:    client,
		signature: opts.Signature,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// Generate always returns a usable subject and body. Failures of the text
// service are logged and replaced by the template letter.
func (g *Generator) Generate(ctx context.Context, companyName, position, resumeText string) types.GeneratedEmail {
	email := types.GeneratedEmail{
		Subject: Subject(position, companyName),
	}

	body, err := g.draft(ctx, companyName, position, resumeText)
	if err != nil {
		g.logger.Warn("text generation failed, using template",
			zap.String("company", companyName),
			zap.String("position", position),
			zap.Error(err),
		)
		email.Body = FallbackBody(companyName, position, g.signature)
		email.Source = types.BodySourceTemplate
		return email
	}

	email.Body = body
	email.Source = types.BodySourceAI
	return email
}

func (g *Generator) draft(ctx context.Context, companyName, position, resumeText string) (string, error) {
	if g.client == nil {
		return "", errNoClient
	}

	prompt, err := BuildPrompt(companyName, position, resumeText)
	if err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.GenerateText(callCtx, prompt)
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

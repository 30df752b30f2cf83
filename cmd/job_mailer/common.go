package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/content"
	"github.com/jonathan/job-mailer/internal/llm"
	"github.com/jonathan/job-mailer/internal/mailer"
	"github.com/jonathan/job-mailer/internal/resume"
	"github.com/jonathan/job-mailer/internal/store"
)

// Constructors for external services. Tests replace them with fakes.
var (
	newTextClient = func(ctx context.Context, cfg config.Config) (llm.Client, error) {
		llmCfg := llm.DefaultConfig().WithModel(cfg.Model).WithTemperature(cfg.Temperature)
		client, err := llm.NewClient(ctx, llmCfg, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return llm.WithRateLimit(client, cfg.RequestsPerMinute), nil
	}

	newMailSender = func(cfg config.Config, _ *zap.Logger) (mailer.Sender, error) {
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.SenderEmail,
			Password: cfg.SMTPPassword,
		})
	}
)

// loadConfig builds the effective configuration: defaults, then the config
// file, then the environment, then flags set on the command line.
func loadConfig(cmd *cobra.Command, applyFlags func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
	}

	cfg = cfg.MergeWithDefaults(config.Default())
	cfg.ApplyEnv(os.Getenv)

	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if applyFlags != nil {
		applyFlags(&cfg)
	}
	return cfg, nil
}

// newGenerator creates the email generator. Without an API key and with
// allowTemplateOnly set, every body comes from the template letter.
func newGenerator(ctx context.Context, cfg config.Config, allowTemplateOnly bool, logger *zap.Logger) (*content.Generator, func(), error) {
	opts := content.Options{
		Signature: content.Signature{Name: cfg.SignatureName, PortfolioURL: cfg.PortfolioURL},
		Timeout:   cfg.GenerationTimeoutDuration(),
	}

	if cfg.GeminiAPIKey == "" && allowTemplateOnly {
		logger.Warn("no API key configured, using the template letter")
		return content.NewGenerator(nil, opts, logger), func() {}, nil
	}

	client, err := newTextClient(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create text generation client: %w", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Debug("failed to close text generation client", zap.Error(err))
		}
	}
	return content.NewGenerator(client, opts, logger), closeFn, nil
}

// newSender returns the SMTP sender, or a logging sender on dry runs.
func newSender(cfg config.Config, logger *zap.Logger) (mailer.Sender, error) {
	if cfg.DryRun {
		return mailer.NewLogSender(logger), nil
	}
	sender, err := newMailSender(cfg, logger)
	if err != nil {
		return nil, &config.Error{Problems: []string{err.Error()}, Cause: err}
	}
	return sender, nil
}

// openStore opens the configured row store.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	switch cfg.Store {
	case config.StoreXLSX:
		return store.OpenXLSX(store.XLSXConfig{
			Path:      cfg.Workbook,
			SheetName: cfg.SheetName,
			Columns:   cfg.Columns,
			Location:  loc,
		})
	default:
		return store.NewSheetsStore(ctx, store.SheetsConfig{
			SpreadsheetID:   cfg.SheetID,
			SheetName:       cfg.SheetName,
			CredentialsFile: cfg.Credentials,
			Columns:         cfg.Columns,
			Location:        loc,
		})
	}
}

// loadResumeText extracts the resume text for the prompt. Failures are logged
// and yield empty text; the resume is still attached.
func loadResumeText(ctx context.Context, cfg config.Config, logger *zap.Logger) string {
	if cfg.Resume == "" {
		return ""
	}
	loader := resume.NewLoader(resume.Config{Pdftotext: cfg.Pdftotext}, nil, logger)
	text, err := loader.Load(ctx, cfg.Resume)
	if err != nil {
		logger.Warn("could not extract resume text, continuing without it",
			zap.String("path", cfg.Resume),
			zap.Error(err))
		return ""
	}
	logger.Debug("resume text loaded", zap.Int("chars", len(text)))
	return text
}

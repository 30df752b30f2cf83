package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/logging"
	"github.com/jonathan/job-mailer/internal/observability"
	"github.com/jonathan/job-mailer/internal/pipeline"
	"github.com/jonathan/job-mailer/internal/types"
)

var sendCommand = &cobra.Command{
	Use:   "send",
	Short: "Send a single application email",
	Long: `Drafts and sends one application email to --to for --position, with the resume attached.
The row store is not touched; the attempt is recorded in the ledger when one is configured.`,
	Example: `  job_mailer send --to hr@acme.io --position "Data Analyst"
  job_mailer send --to recruiter@gmail.com --position "BI Analyst" --company Globex`,
	RunE: runSendCmd,
}

var (
	sendTo       string
	sendPosition string
	sendCompany  string
	sendResume   string
	sendDryRun   bool
	sendLedger   string
)

func init() {
	sendCommand.Flags().StringVar(&sendTo, "to", "", "Recipient email address")
	sendCommand.Flags().StringVarP(&sendPosition, "position", "p", "", "Position applied for")
	sendCommand.Flags().StringVarP(&sendCompany, "company", "c", "", "Company name used when the address is a webmail domain")
	sendCommand.Flags().StringVarP(&sendResume, "resume", "r", "", "Resume attached to the email (default \"resume.pdf\")")
	sendCommand.Flags().BoolVar(&sendDryRun, "dry-run", false, "Print the email instead of sending it")
	sendCommand.Flags().StringVar(&sendLedger, "ledger", "", "Attempt ledger: postgres:// URL or SQLite path (defaults to LEDGER_URL)")

	_ = sendCommand.MarkFlagRequired("to")
	_ = sendCommand.MarkFlagRequired("position")

	rootCmd.AddCommand(sendCommand)
}

func runSendCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("resume") {
			cfg.Resume = sendResume
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.DryRun = sendDryRun
		}
		if cmd.Flags().Changed("ledger") {
			cfg.LedgerURL = sendLedger
		}
	})
	if err != nil {
		return err
	}
	if err := cfg.ValidateWithoutStore(); err != nil {
		return err
	}
	if err := cfg.RequireCredentials(!cfg.DryRun); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}
	generator, closeGenerator, err := newGenerator(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer closeGenerator()

	dispatcher := pipeline.NewDispatcher(generator, sender, pipeline.DispatcherOptions{
		AttachmentPath: cfg.Resume,
		ResumeText:     loadResumeText(ctx, cfg, logger),
	}, logger)

	outcome := dispatcher.Process(ctx, types.Row{
		ContactEmail:    sendTo,
		PositionTitle:   sendPosition,
		CompanyOverride: sendCompany,
	})

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if outcome.Email != nil {
		printer.PrintEmail(outcome.Row.ContactEmail, outcome.Company, *outcome.Email)
	}

	if !cfg.DryRun {
		recordSingleAttempt(ctx, cfg, outcome, logger)
	}

	if outcome.Status != types.StatusDone {
		return fmt.Errorf("send failed: %w", outcome.Err)
	}
	if cfg.DryRun {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Dry run: email not sent.")
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Email sent to %s.\n", outcome.Row.ContactEmail)
	return nil
}

// recordSingleAttempt appends a one-off send to the ledger. Ledger problems are logged only.
func recordSingleAttempt(ctx context.Context, cfg config.Config, outcome types.Outcome, logger *zap.Logger) {
	if cfg.LedgerURL == "" {
		return
	}
	attempts, err := ledger.Open(ctx, cfg.LedgerURL)
	if err != nil {
		logger.Warn("failed to open ledger", zap.Error(err))
		return
	}
	defer func() { _ = attempts.Close() }()

	if err := attempts.Record(ctx, ledger.EntryFromOutcome(uuid.New(), outcome)); err != nil {
		logger.Warn("failed to record attempt", zap.Error(err))
	}
}

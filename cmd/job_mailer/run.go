package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/logging"
	"github.com/jonathan/job-mailer/internal/observability"
	"github.com/jonathan/job-mailer/internal/pipeline"
	"github.com/jonathan/job-mailer/internal/types"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Send an application email for every pending row",
	Long: `Reads every row of the contact sheet, skips rows already marked DONE and, for each remaining
row, resolves the company, drafts the email, sends it with the resume attached and writes
DONE or FAILED back to the row. Rows are paced by --delay.

Press Ctrl-C to stop after the current row; unprocessed rows stay pending for the next run.`,
	RunE: runBatchCmd,
}

var (
	runStore       string
	runWorkbook    string
	runSheetID     string
	runSheetName   string
	runCredentials string
	runResume      string
	runDelay       time.Duration
	runDryRun      bool
	runLedger      string
)

// errInterrupted is returned when a signal stops the batch before every row was reached.
var errInterrupted = errors.New("batch interrupted")

func init() {
	runCommand.Flags().StringVar(&runStore, "store", "", `Row store: "sheets" or "xlsx" (default "sheets")`)
	runCommand.Flags().StringVar(&runWorkbook, "workbook", "", "Path to the .xlsx workbook (xlsx store)")
	runCommand.Flags().StringVar(&runSheetID, "sheet-id", "", "Google spreadsheet ID (defaults to SHEET_ID env var)")
	runCommand.Flags().StringVar(&runSheetName, "sheet-name", "", "Worksheet name (defaults to Sheet1, or the active sheet of a workbook)")
	runCommand.Flags().StringVar(&runCredentials, "credentials", "", "Service-account JSON file (defaults to GOOGLE_APPLICATION_CREDENTIALS)")
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Resume attached to every email (default \"resume.pdf\")")
	runCommand.Flags().DurationVar(&runDelay, "delay", 0, "Pause between rows, 0 disables (default 10s)")
	runCommand.Flags().BoolVar(&runDryRun, "dry-run", false, "Draft emails without sending or writing results")
	runCommand.Flags().StringVar(&runLedger, "ledger", "", "Attempt ledger: postgres:// URL or SQLite path (defaults to LEDGER_URL)")

	rootCmd.AddCommand(runCommand)
}

func applyRunFlags(cmd *cobra.Command) func(*config.Config) {
	return func(cfg *config.Config) {
		flags := cmd.Flags()
		if flags.Changed("store") {
			cfg.Store = runStore
		}
		if flags.Changed("workbook") {
			cfg.Workbook = runWorkbook
		}
		if flags.Changed("sheet-id") {
			cfg.SheetID = runSheetID
		}
		if flags.Changed("sheet-name") {
			cfg.SheetName = runSheetName
		}
		if flags.Changed("credentials") {
			cfg.Credentials = runCredentials
		}
		if flags.Changed("resume") {
			cfg.Resume = runResume
		}
		if flags.Changed("delay") {
			cfg.Delay = runDelay.String()
		}
		if flags.Changed("dry-run") {
			cfg.DryRun = runDryRun
		}
		if flags.Changed("ledger") {
			cfg.LedgerURL = runLedger
		}
	}
}

func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, applyRunFlags(cmd))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
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

	logger.Info("job mailer starting",
		zap.Time("started_at", time.Now().UTC()),
		zap.String("store", cfg.Store),
		zap.Duration("delay", cfg.PacingDelay()),
		zap.Bool("dry_run", cfg.DryRun))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, err := newSender(cfg, logger)
	if err != nil {
		return err
	}

	generator, closeGenerator, err := newGenerator(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer closeGenerator()

	rowStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store, err)
	}
	defer func() { _ = rowStore.Close() }()

	var attempts ledger.Ledger
	if cfg.LedgerURL != "" && !cfg.DryRun {
		attempts, err = ledger.Open(ctx, cfg.LedgerURL)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer func() { _ = attempts.Close() }()
	}

	// Rows and resume text are independent; fetch both before the loop starts.
	var (
		rows       []types.Row
		resumeText string
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fetched, err := rowStore.Rows(gCtx)
		if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}
		rows = fetched
		return nil
	})
	g.Go(func() error {
		resumeText = loadResumeText(gCtx, cfg, logger)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("rows loaded", zap.Int("rows", len(rows)))

	printer := observability.NewPrinter(cmd.OutOrStdout())
	dispatcher := pipeline.NewDispatcher(generator, sender, pipeline.DispatcherOptions{
		AttachmentPath: cfg.Resume,
		ResumeText:     resumeText,
	}, logger)

	batch := pipeline.NewBatch(dispatcher, pipeline.BatchOptions{
		Recorder: rowStore,
		Ledger:   attempts,
		Pacer:    pipeline.NewPacer(cfg.PacingDelay()),
		DryRun:   cfg.DryRun,
		OnProgress: func(o types.Outcome) {
			printer.PrintOutcome(o)
			if cfg.DryRun && o.Email != nil {
				printer.PrintEmail(o.Row.ContactEmail, o.Company, *o.Email)
			}
		},
	}, logger)

	summary := batch.Run(ctx, rows)
	logger.Info("batch finished",
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("write_errors", summary.WriteErrors),
		zap.Duration("duration", summary.Duration))
	printer.PrintSummary(summary)

	if summary.Interrupted {
		return fmt.Errorf("%w: %d row(s) left pending", errInterrupted, summary.Remaining())
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Batch completed successfully.")
	return nil
}

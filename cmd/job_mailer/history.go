package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/observability"
)

var historyCommand = &cobra.Command{
	Use:   "history",
	Short: "List the most recent send attempts from the ledger",
	RunE:  runHistoryCmd,
}

var (
	historyLimit  int
	historyLedger string
)

func init() {
	historyCommand.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of attempts to show")
	historyCommand.Flags().StringVar(&historyLedger, "ledger", "", "Attempt ledger: postgres:// URL or SQLite path (defaults to LEDGER_URL)")

	rootCmd.AddCommand(historyCommand)
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("ledger") {
			cfg.LedgerURL = historyLedger
		}
	})
	if err != nil {
		return err
	}
	if cfg.LedgerURL == "" {
		return &config.Error{Problems: []string{"no ledger configured: set --ledger or " + config.EnvLedgerURL}}
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	attempts, err := ledger.Open(ctx, cfg.LedgerURL)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer func() { _ = attempts.Close() }()

	entries, err := attempts.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintHistory(entries, loc)
	return nil
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/job-mailer/internal/company"
	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/logging"
	"github.com/jonathan/job-mailer/internal/observability"
)

var previewCommand = &cobra.Command{
	Use:   "preview",
	Short: "Draft an application email and print it without sending",
	Long: `Resolves the company, drafts the subject and body and prints them. Nothing is sent and no
credentials other than the API key are needed; without GEMINI_API_KEY the template letter is shown.`,
	RunE: runPreviewCmd,
}

var (
	previewTo       string
	previewPosition string
	previewCompany  string
	previewResume   string
)

func init() {
	previewCommand.Flags().StringVar(&previewTo, "to", "", "Recipient email address")
	previewCommand.Flags().StringVarP(&previewPosition, "position", "p", "", "Position applied for")
	previewCommand.Flags().StringVarP(&previewCompany, "company", "c", "", "Company name used when the address is a webmail domain")
	previewCommand.Flags().StringVarP(&previewResume, "resume", "r", "", "Resume whose text is used in the prompt")

	_ = previewCommand.MarkFlagRequired("to")
	_ = previewCommand.MarkFlagRequired("position")

	rootCmd.AddCommand(previewCommand)
}

func runPreviewCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("resume") {
			cfg.Resume = previewResume
		}
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()

	generator, closeGenerator, err := newGenerator(ctx, cfg, true, logger)
	if err != nil {
		return err
	}
	defer closeGenerator()

	companyName := company.Resolve(previewTo, previewCompany)
	email := generator.Generate(ctx, companyName, previewPosition, loadResumeText(ctx, cfg, logger))

	observability.NewPrinter(cmd.OutOrStdout()).PrintEmail(previewTo, companyName, email)
	return nil
}

// Package main provides the entry point for the job_mailer CLI.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/job-mailer/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "job_mailer",
	Short: "Send tailored job application emails from a contact sheet",
	Long: `job_mailer reads recruiter contacts from a Google Sheet or a local workbook, drafts a short
application email for each pending row, sends it with your resume attached and records the
result back in the sheet.

Configuration can be loaded from a JSON or YAML file using --config. Secrets come from the
environment (a .env file in the working directory is loaded automatically).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config .json/.yaml file (values can be overridden by flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps configuration problems to 2 and every other failure to 1.
func exitCode(err error) int {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return 2
	}
	return 1
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-mailer/internal/company"
)

var resolveCompanyCommand = &cobra.Command{
	Use:   "resolve-company <email> [sheet-company]",
	Short: "Print the company name inferred from an email address",
	Example: `  job_mailer resolve-company hr@my-startup.io          # My Startup
  job_mailer resolve-company someone@gmail.com Globex  # Globex`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runResolveCompanyCmd,
}

func init() {
	rootCmd.AddCommand(resolveCompanyCommand)
}

func runResolveCompanyCmd(cmd *cobra.Command, args []string) error {
	sheetCompany := ""
	if len(args) > 1 {
		sheetCompany = args[1]
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, company.Resolve(args[0], sheetCompany))

	if verbose {
		domain := ""
		if at := strings.LastIndex(args[0], "@"); at >= 0 {
			domain = args[0][at+1:]
		}
		_, _ = fmt.Fprintf(out, "domain: %q generic: %t\n", domain, company.IsGenericDomain(domain))
	}
	return nil
}

// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/pipeline"
	"github.com/jonathan/job-mailer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxDetailLen bounds error text shown in history lines
	maxDetailLen = 40
)

// Printer handles formatted output for previews and run reports
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintEmail outputs the composed email for one recipient. Body lines are
// wrapped, not truncated, so the full text can be reviewed.
func (p *Printer) PrintEmail(to, companyName string, email types.GeneratedEmail) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("To:       %s\n", to))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", companyName))
	sb.WriteString(fmt.Sprintf("Subject:  %s\n", email.Subject))
	sb.WriteString(fmt.Sprintf("Source:   %s\n", email.Source))
	sb.WriteString("\n")
	for _, line := range strings.Split(email.Body, "\n") {
		for _, wrapped := range wrap(line, boxWidth-4) {
			sb.WriteString(wrapped)
			sb.WriteString("\n")
		}
	}

	p.printBox("EMAIL PREVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome writes one progress line for a processed row.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(o types.Outcome) {
	switch o.Status {
	case types.StatusDone:
		fmt.Fprintf(p.out, "✓ row %d  %s (%s)\n", o.Row.Index, o.Row.ContactEmail, o.Company)
	case types.StatusFailed:
		fmt.Fprintf(p.out, "✗ row %d  %s: %s\n", o.Row.Index, o.Row.ContactEmail, o.Body)
	default:
		fmt.Fprintf(p.out, "- row %d  already sent\n", o.Row.Index)
	}
}

// PrintSummary outputs the totals of a finished batch.
func (p *Printer) PrintSummary(s pipeline.Summary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:          %s\n", s.RunID))
	sb.WriteString(fmt.Sprintf("Rows:         %d\n", s.Total))
	sb.WriteString(fmt.Sprintf("Sent:         %d\n", s.Sent))
	sb.WriteString(fmt.Sprintf("Failed:       %d\n", s.Failed))
	sb.WriteString(fmt.Sprintf("Skipped:      %d\n", s.Skipped))
	if s.WriteErrors > 0 {
		sb.WriteString(fmt.Sprintf("Write errors: %d\n", s.WriteErrors))
	}
	if s.Interrupted {
		sb.WriteString(fmt.Sprintf("Interrupted:  %d row(s) left pending\n", s.Remaining()))
	}
	sb.WriteString(fmt.Sprintf("Duration:     %s", s.Duration.Round(time.Second)))

	p.printBox("BATCH SUMMARY", sb.String())
}

// PrintHistory outputs ledger entries, newest first.
func (p *Printer) PrintHistory(entries []ledger.Entry, loc *time.Location) {
	if len(entries) == 0 {
		p.printBox("SEND HISTORY", "No attempts recorded yet.")
		return
	}
	if loc == nil {
		loc = time.UTC
	}

	var sb strings.Builder
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %-6s row %-4d %s\n",
			e.AttemptedAt.In(loc).Format("2006-01-02 15:04"), e.Status, e.RowIndex, e.ContactEmail))
		if e.Detail != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", truncate(e.Detail, maxDetailLen)))
		} else if e.Company != "" {
			sb.WriteString(fmt.Sprintf("    %s · %s\n", e.Company, e.Position))
		}
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("SEND HISTORY (%d)", len(entries)), strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// wrap splits a line on spaces so that no piece exceeds width runes. Words
// longer than width are hard-split.
func wrap(line string, width int) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		out []string
		cur []rune
	)
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(cur) > 0 {
				out = append(out, string(cur))
				cur = nil
			}
			out = append(out, string(word[:width]))
			word = word[width:]
		}
		if len(word) == 0 {
			continue
		}
		switch {
		case len(cur) == 0:
			cur = word
		case len(cur)+1+len(word) <= width:
			cur = append(append(cur, ' '), word...)
		default:
			out = append(out, string(cur))
			cur = word
		}
	}
	if len(cur) > 0 {
		out = append(out, string(cur))
	}
	return out
}

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jonathan/job-mailer/internal/config"
	"github.com/jonathan/job-mailer/internal/ledger"
	"github.com/jonathan/job-mailer/internal/llm"
	"github.com/jonathan/job-mailer/internal/mailer"
)

type fakeTextClient struct{}

func (fakeTextClient) GenerateText(context.Context, string) (string, error) {
	return "Dear Hiring Manager,\nI would like to apply.", nil
}
func (fakeTextClient) Model() string { return "fake" }
func (fakeTextClient) Close() error  { return nil }

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

// useFakes swaps the external service constructors for the duration of a test.
func useFakes(t *testing.T) *recordingSender {
	t.Helper()
	sender := &recordingSender{}

	origClient, origSender := newTextClient, newMailSender
	newTextClient = func(context.Context, config.Config) (llm.Client, error) { return fakeTextClient{}, nil }
	newMailSender = func(config.Config, *zap.Logger) (mailer.Sender, error) { return sender, nil }
	t.Cleanup(func() { newTextClient, newMailSender = origClient, origSender })

	return sender
}

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, k := range []string{
		config.EnvGeminiAPIKey, config.EnvSMTPPassword, config.EnvGmailPassword, config.EnvSenderEmail,
		config.EnvCredentials, config.EnvSheetID, config.EnvSheetName, config.EnvLedgerURL,
	} {
		t.Setenv(k, env[k])
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeWorkbook(t *testing.T, dir string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	path := filepath.Join(dir, "contacts.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 2, exitCode(&config.Error{Problems: []string{"x"}}))
	assert.Equal(t, 2, exitCode(fmt.Errorf("wrapped: %w", &config.Error{})))
	assert.Equal(t, 1, exitCode(errors.New("store unreachable")))
	assert.Equal(t, 1, exitCode(errInterrupted))
}

func TestResolveCompanyCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"resolve-company", "hr@my-startup.io"}, "My Startup\n"},
		{[]string{"resolve-company", "someone@gmail.com", "Globex"}, "Globex\n"},
		{[]string{"resolve-company", "no-at-sign"}, "Company\n"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunCommand_XLSXEndToEnd(t *testing.T) {
	sender := useFakes(t)
	dir := t.TempDir()
	setEnv(t, map[string]string{
		config.EnvGeminiAPIKey: "test-key",
		config.EnvSenderEmail:  "me@example.com",
		config.EnvSMTPPassword: "app-password",
	})

	workbook := writeWorkbook(t, dir, [][]interface{}{
		{"Mail_ID", "Post_name", "Company_name", "Body", "status", "Body_TimeStamp"},
		{"hr@acme-labs.io", "data analyst"},
		{"", "Engineer"},
		{"old@globex.com", "Analyst", "", "sent earlier", "DONE"},
	})
	resumePath := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(resumePath, []byte("Experienced analyst"), 0o644))
	ledgerPath := filepath.Join(dir, "ledger.db")

	out, err := execute(t, "run",
		"--store", "xlsx",
		"--workbook", workbook,
		"--resume", resumePath,
		"--delay", "0s",
		"--ledger", ledgerPath,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ row 2  hr@acme-labs.io (Acme Labs)")
	assert.Contains(t, out, "✗ row 3")
	assert.Contains(t, out, "- row 4  already sent")
	assert.Contains(t, out, "BATCH SUMMARY")
	assert.Contains(t, out, "Batch completed successfully.")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "hr@acme-labs.io", sender.sent[0].To)
	assert.Equal(t, "Application for Data Analyst – Acme Labs", sender.sent[0].Subject)
	assert.Equal(t, resumePath, sender.sent[0].AttachmentPath)

	f, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	cellValue := func(cell string) string {
		v, err := f.GetCellValue("Sheet1", cell)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "DONE", cellValue("E2"))
	assert.Equal(t, "Dear Hiring Manager,\nI would like to apply.", cellValue("D2"))
	assert.NotEmpty(t, cellValue("F2"))
	assert.Equal(t, "FAILED", cellValue("E3"))
	assert.Equal(t, "Missing Mail_ID or Post_name", cellValue("D3"))
	assert.Equal(t, "DONE", cellValue("E4"))
	assert.Equal(t, "sent earlier", cellValue("D4"))

	l, err := ledger.Open(context.Background(), ledgerPath)
	require.NoError(t, err)
	defer func() { _ = l.Close() }()
	entries, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "FAILED", entries[0].Status)
	assert.Equal(t, "DONE", entries[1].Status)

	history, err := execute(t, "history", "--ledger", ledgerPath)
	require.NoError(t, err)
	assert.Contains(t, history, "SEND HISTORY (2)")
	assert.Contains(t, history, "hr@acme-labs.io")
}

func TestSendCommand_MissingCredentialsIsConfigError(t *testing.T) {
	useFakes(t)
	setEnv(t, nil)
	resumePath := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(resumePath, []byte("%PDF-1.4"), 0o644))

	_, err := execute(t, "send", "--to", "hr@acme.io", "--position", "Analyst", "--resume", resumePath)

	require.Error(t, err)
	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is not set")
	assert.Equal(t, 2, exitCode(err))
}

func TestRunCommand_SheetsWithoutCredentialsIsConfigError(t *testing.T) {
	sender := useFakes(t)
	setEnv(t, map[string]string{
		config.EnvGeminiAPIKey: "key",
		config.EnvSenderEmail:  "me@example.com",
		config.EnvSMTPPassword: "secret",
		config.EnvSheetID:      "sheet-1",
	})
	resumePath := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(resumePath, []byte("%PDF-1.4"), 0o644))

	_, err := execute(t, "run", "--store", "sheets", "--resume", resumePath)

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "'credentials' (or GOOGLE_APPLICATION_CREDENTIALS) is required")
	assert.Equal(t, 2, exitCode(err))
	assert.Empty(t, sender.sent)
}

func TestPreviewCommand_TemplateWithoutAPIKey(t *testing.T) {
	setEnv(t, nil)

	out, err := execute(t, "preview", "--to", "talent@globex.com", "--position", "bi analyst", "--resume", filepath.Join(t.TempDir(), "none.txt"))

	require.NoError(t, err)
	assert.Contains(t, out, "EMAIL PREVIEW")
	assert.Contains(t, out, "Application for Bi Analyst – Globex")
	assert.Contains(t, out, "Source:   template")
}

func TestHistoryCommand_RequiresLedger(t *testing.T) {
	setEnv(t, nil)
	historyLedger = ""
	require.NoError(t, historyCommand.Flags().Set("ledger", ""))

	_, err := execute(t, "history")

	var cfgErr *config.Error
	assert.ErrorAs(t, err, &cfgErr)
}

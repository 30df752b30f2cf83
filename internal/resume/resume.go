// Package resume extracts plain text from the resume document that is attached to every email.
package resume

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Config configures text extraction.
type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
}

// Loader reads resume text from PDF, HTML or plain-text files.
type Loader struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
}

// NewLoader creates a Loader. A nil runner executes real binaries.
func NewLoader(cfg Config, runner Runner, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	return &Loader{cfg: cfg, runner: runner, logger: logger}
}

// ExtractError reports a resume that could not be turned into text.
type ExtractError struct {
	Path  string
	Cause error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract resume text from %s: %v", e.Path, e.Cause)
}

func (e *ExtractError) Unwrap() error {
	return e.Cause
}

// Load returns the trimmed text content of the resume at path.
func (l *Loader) Load(ctx context.Context, path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = l.pdfToText(ctx, path)
	case ".html", ".htm":
		text, err = htmlToText(path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	}
	if err != nil {
		return "", &ExtractError{Path: path, Cause: err}
	}

	text = strings.TrimSpace(text)
	l.logger.Debug("resume loaded", zap.String("path", path), zap.Int("chars", len(text)))
	return text, nil
}

func (l *Loader) pdfToText(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := l.runner.Run(ctx, l.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", l.cfg.Pdftotext, err, msg)
		}
		return "", fmt.Errorf("%s: %w", l.cfg.Pdftotext, err)
	}

	// pdftotext separates pages with form feeds
	return strings.ReplaceAll(string(out), "\f", "\n"), nil
}

func htmlToText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return cleanWhitespace(doc.Text()), nil
	}
	return cleanWhitespace(body.Text()), nil
}

// cleanWhitespace trims every line and drops blank ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

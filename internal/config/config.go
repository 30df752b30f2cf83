// Package config provides configuration loading and validation for the CLI.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // the default zone must resolve on hosts without a zoneinfo database

	"gopkg.in/yaml.v3"

	"github.com/jonathan/job-mailer/internal/schemas"
	"github.com/jonathan/job-mailer/internal/types"
)

//go:embed config.schema.json
var schema []byte

// Store backends.
const (
	StoreSheets = "sheets"
	StoreXLSX   = "xlsx"
)

// Environment variables read by ApplyEnv.
const (
	EnvGeminiAPIKey  = "GEMINI_API_KEY"
	EnvSMTPPassword  = "SMTP_APP_PASSWORD"
	EnvGmailPassword = "GMAIL_APP_PASSWORD"
	EnvSenderEmail   = "SENDER_EMAIL"
	EnvCredentials   = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvSheetID       = "SHEET_ID"
	EnvSheetName     = "SHEET_NAME"
	EnvLedgerURL     = "LEDGER_URL"
)

const (
	defaultTimeZone     = "Asia/Kolkata"
	defaultDelay        = 10 * time.Second
	defaultGenTimeout   = 60 * time.Second
	defaultTemperature  = 0.3
	defaultModel        = "gemini-2.5-flash"
	defaultRPM          = 10
	defaultSMTPHost     = "smtp.gmail.com"
	defaultSMTPPort     = 465
	defaultResumePath   = "resume.pdf"
	defaultSignature    = "Sandeep Kumar"
	defaultPortfolioURL = "https://sandeepkumar3869.github.io/PORTFOLIO/"
)

// Config represents the CLI configuration. It can be loaded from a JSON or YAML
// file; secrets only ever come from the environment.
type Config struct {
	// Row store
	Store       string        `json:"store,omitempty" yaml:"store,omitempty"`             // "sheets" or "xlsx"
	SheetID     string        `json:"sheet_id,omitempty" yaml:"sheet_id,omitempty"`       // Google spreadsheet ID
	SheetName   string        `json:"sheet_name,omitempty" yaml:"sheet_name,omitempty"`   // Worksheet (tab) name
	Credentials string        `json:"credentials,omitempty" yaml:"credentials,omitempty"` // Service-account JSON file
	Workbook    string        `json:"workbook,omitempty" yaml:"workbook,omitempty"`       // Local .xlsx path
	Columns     types.Columns `json:"columns,omitempty" yaml:"columns,omitempty"`

	// Attachment
	Resume    string `json:"resume,omitempty" yaml:"resume,omitempty"`       // Resume attached to every email
	Pdftotext string `json:"pdftotext,omitempty" yaml:"pdftotext,omitempty"` // pdftotext binary

	// Mail
	SenderEmail string `json:"sender_email,omitempty" yaml:"sender_email,omitempty"`
	SMTPHost    string `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty"`
	SMTPPort    int    `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty"`

	// Generation
	Model             string  `json:"model,omitempty" yaml:"model,omitempty"`
	Temperature       float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	GenerationTimeout string  `json:"generation_timeout,omitempty" yaml:"generation_timeout,omitempty"`
	RequestsPerMinute int     `json:"requests_per_minute,omitempty" yaml:"requests_per_minute,omitempty"` // Cap on text-generation calls
	SignatureName     string  `json:"signature_name,omitempty" yaml:"signature_name,omitempty"`
	PortfolioURL      string  `json:"portfolio_url,omitempty" yaml:"portfolio_url,omitempty"`

	// Behavior
	Delay     string `json:"delay,omitempty" yaml:"delay,omitempty"`       // Pause between rows, e.g. "10s"; "0s" disables
	TimeZone  string `json:"timezone,omitempty" yaml:"timezone,omitempty"` // Zone for the processed-at cell
	LedgerURL string `json:"ledger_url,omitempty" yaml:"ledger_url,omitempty"`
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	DryRun    bool   `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`

	// Secrets
	GeminiAPIKey string `json:"-" yaml:"-"`
	SMTPPassword string `json:"-" yaml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store:             StoreSheets,
		Columns:           types.DefaultColumns(),
		Resume:            defaultResumePath,
		SMTPHost:          defaultSMTPHost,
		SMTPPort:          defaultSMTPPort,
		Model:             defaultModel,
		Temperature:       defaultTemperature,
		GenerationTimeout: defaultGenTimeout.String(),
		RequestsPerMinute: defaultRPM,
		SignatureName:     defaultSignature,
		PortfolioURL:      defaultPortfolioURL,
		Delay:             defaultDelay.String(),
		TimeZone:          defaultTimeZone,
	}
}

// LoadConfig loads configuration from a .json, .yaml or .yml file. The document
// is checked against the embedded JSON Schema before it is decoded.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newError(err, fmt.Sprintf("failed to read config file %s: %v", path, err))
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, newError(err, fmt.Sprintf("failed to parse config YAML: %v", err))
		}
		if doc == nil {
			doc = map[string]any{}
		}
		if err := checkSchema(schemas.ValidateValue("config", schema, doc)); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, newError(err, fmt.Sprintf("failed to parse config YAML: %v", err))
		}
	case ".json", "":
		if !json.Valid(data) {
			return nil, newError(nil, "failed to parse config JSON: malformed document")
		}
		if err := checkSchema(schemas.ValidateBytes("config", schema, data)); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, newError(err, fmt.Sprintf("failed to parse config JSON: %v", err))
		}
	default:
		return nil, newError(nil, fmt.Sprintf("unsupported config file extension %q", ext))
	}

	return &cfg, nil
}

func checkSchema(err error) error {
	if err == nil {
		return nil
	}
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		return newError(err, verr.Messages()...)
	}
	return newError(err, err.Error())
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	str := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	str(&result.Store, defaults.Store)
	str(&result.SheetID, defaults.SheetID)
	str(&result.SheetName, defaults.SheetName)
	str(&result.Credentials, defaults.Credentials)
	str(&result.Workbook, defaults.Workbook)
	str(&result.Resume, defaults.Resume)
	str(&result.Pdftotext, defaults.Pdftotext)
	str(&result.SenderEmail, defaults.SenderEmail)
	str(&result.SMTPHost, defaults.SMTPHost)
	str(&result.Model, defaults.Model)
	str(&result.GenerationTimeout, defaults.GenerationTimeout)
	str(&result.SignatureName, defaults.SignatureName)
	str(&result.PortfolioURL, defaults.PortfolioURL)
	str(&result.Delay, defaults.Delay)
	str(&result.TimeZone, defaults.TimeZone)
	str(&result.LedgerURL, defaults.LedgerURL)
	str(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	str(&result.SMTPPassword, defaults.SMTPPassword)

	// Column headers are merged per field
	cols := result.Columns
	str(&cols.ContactEmail, defaults.Columns.ContactEmail)
	str(&cols.Position, defaults.Columns.Position)
	str(&cols.Company, defaults.Columns.Company)
	str(&cols.Status, defaults.Columns.Status)
	str(&cols.Body, defaults.Columns.Body)
	str(&cols.Timestamp, defaults.Columns.Timestamp)
	result.Columns = cols

	// Numeric fields: zero means unset
	if result.SMTPPort == 0 {
		result.SMTPPort = defaults.SMTPPort
	}
	if result.Temperature == 0 {
		result.Temperature = defaults.Temperature
	}
	if result.RequestsPerMinute == 0 {
		result.RequestsPerMinute = defaults.RequestsPerMinute
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// ApplyEnv overrides settings with the non-empty environment variables returned by getenv.
// SMTP_APP_PASSWORD wins over its GMAIL_APP_PASSWORD alias.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.GeminiAPIKey, EnvGeminiAPIKey)
	set(&c.SMTPPassword, EnvSMTPPassword, EnvGmailPassword)
	set(&c.SenderEmail, EnvSenderEmail)
	set(&c.Credentials, EnvCredentials)
	set(&c.SheetID, EnvSheetID)
	set(&c.SheetName, EnvSheetName)
	set(&c.LedgerURL, EnvLedgerURL)
}

// Validate checks that the configuration has valid values. Every problem is
// reported at once in a single *Error.
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateWithoutStore is Validate for commands that never touch the row store.
func (c *Config) ValidateWithoutStore() error {
	return c.validate(false)
}

func (c *Config) storeProblems() []string {
	var problems []string

	switch c.Store {
	case StoreSheets:
		if c.SheetID == "" {
			problems = append(problems, "'sheet_id' (or "+EnvSheetID+") is required for the sheets store")
		}
		if c.Credentials == "" {
			problems = append(problems, "'credentials' (or "+EnvCredentials+") is required for the sheets store")
		} else if _, err := os.Stat(c.Credentials); err != nil {
			problems = append(problems, fmt.Sprintf("credentials file not found: %s", c.Credentials))
		}
	case StoreXLSX:
		if c.Workbook == "" {
			problems = append(problems, "'workbook' is required for the xlsx store")
		} else if _, err := os.Stat(c.Workbook); err != nil {
			problems = append(problems, fmt.Sprintf("workbook not found: %s", c.Workbook))
		}
	default:
		problems = append(problems, fmt.Sprintf("'store' must be %q or %q, got %q", StoreSheets, StoreXLSX, c.Store))
	}
	return problems
}

func (c *Config) validate(withStore bool) error {
	var problems []string
	if withStore {
		problems = c.storeProblems()
	}

	if c.Resume == "" {
		problems = append(problems, "'resume' is required")
	} else if _, err := os.Stat(c.Resume); err != nil {
		problems = append(problems, fmt.Sprintf("resume file not found: %s", c.Resume))
	}

	if c.SMTPPort < 0 || c.SMTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("'smtp_port' out of range: %d", c.SMTPPort))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("'temperature' must be between 0 and 2, got %g", c.Temperature))
	}
	if c.RequestsPerMinute < 0 {
		problems = append(problems, fmt.Sprintf("'requests_per_minute' must not be negative, got %d", c.RequestsPerMinute))
	}
	if _, err := parseDuration("delay", c.Delay); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := parseDuration("generation_timeout", c.GenerationTimeout); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("unknown 'timezone' %q", c.TimeZone))
	}

	if len(problems) > 0 {
		return newError(nil, problems...)
	}
	return nil
}

// RequireCredentials checks the secrets needed before any row is read. The
// SMTP login is only required when mail is actually sent.
func (c *Config) RequireCredentials(sending bool) error {
	var problems []string
	if c.GeminiAPIKey == "" {
		problems = append(problems, EnvGeminiAPIKey+" is not set")
	}
	if sending {
		if c.SenderEmail == "" {
			problems = append(problems, EnvSenderEmail+" is not set")
		}
		if c.SMTPPassword == "" {
			problems = append(problems, EnvSMTPPassword+" (or "+EnvGmailPassword+") is not set")
		}
	}
	if len(problems) > 0 {
		return newError(nil, problems...)
	}
	return nil
}

// Location returns the zone used for processed-at timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, newError(err, fmt.Sprintf("unknown 'timezone' %q", c.TimeZone))
	}
	return loc, nil
}

// PacingDelay returns the pause between rows. An empty value means the default.
func (c *Config) PacingDelay() time.Duration {
	d, err := parseDuration("delay", c.Delay)
	if err != nil || c.Delay == "" {
		return defaultDelay
	}
	return d
}

// GenerationTimeoutDuration returns the per-call bound on text generation.
func (c *Config) GenerationTimeoutDuration() time.Duration {
	d, err := parseDuration("generation_timeout", c.GenerationTimeout)
	if err != nil || d == 0 {
		return defaultGenTimeout
	}
	return d
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("'%s' is not a duration: %q", field, value)
	}
	if d < 0 {
		return 0, fmt.Errorf("'%s' must not be negative: %q", field, value)
	}
	return d, nil
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/jonathan/job-mailer/internal/types"
)

// Ensure SheetsStore implements Store
var _ Store = (*SheetsStore)(nil)

// SheetsConfig identifies the worksheet holding the contacts.
type SheetsConfig struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string // service-account JSON
	Columns         types.Columns
	Location        *time.Location
}

// SheetsStore is a Store backed by a Google Sheets worksheet.
type SheetsStore struct {
	svc    *sheets.Service
	id     string
	tab    string
	cols   types.Columns
	loc    *time.Location
	layout *Layout
}

// NewSheetsStore creates a Sheets client authorised with the service-account file.
// Extra options are appended after the credentials (tests pass an endpoint and HTTP client).
func NewSheetsStore(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = "Sheet1"
	}

	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsStore{
		svc:  svc,
		id:   cfg.SpreadsheetID,
		tab:  cfg.SheetName,
		cols: cfg.Columns.WithDefaults(),
		loc:  cfg.Location,
	}, nil
}

// Rows fetches the whole worksheet and parses the records below the header.
func (s *SheetsStore) Rows(ctx context.Context) ([]types.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.id, quoteTab(s.tab)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.tab, err)
	}

	values := make([][]string, len(resp.Values))
	for i, record := range resp.Values {
		values[i] = make([]string, len(record))
		for j, v := range record {
			values[i][j] = fmt.Sprint(v)
		}
	}

	layout, rows, err := parseRecords(values, s.cols)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", s.tab, err)
	}
	s.layout = &layout
	return rows, nil
}

// Record writes the outcome's cells in a single batch update.
func (s *SheetsStore) Record(ctx context.Context, outcome types.Outcome) error {
	if s.layout == nil {
		return ErrHeaderNotLoaded
	}

	updates := s.layout.Updates(outcome, s.loc)
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		rng, err := a1Range(s.tab, u.Column, outcome.Row.Index)
		if err != nil {
			return err
		}
		data = append(data, &sheets.ValueRange{
			Range:  rng,
			Values: [][]interface{}{{u.Value}},
		})
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to update row %d: %w", outcome.Row.Index, err)
	}
	return nil
}

// Close is a no-op; the HTTP client holds no per-store resources.
func (s *SheetsStore) Close() error {
	return nil
}

// a1Range returns a single-cell A1 range such as 'Sheet1'!D5.
func a1Range(tab string, column, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(column+1, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell (column %d, row %d): %w", column, row, err)
	}
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(tab, "'", "''"), name), nil
}

// quoteTab quotes a sheet name for use as a whole-sheet range when it is not a plain identifier.
func quoteTab(tab string) string {
	for _, r := range tab {
		if !(r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
		}
	}
	return tab
}

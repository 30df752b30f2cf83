// Package store reads contact rows from a spreadsheet and writes each attempt's outcome back.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/job-mailer/internal/types"
)

// Store is the row-based data source. Implementations are used by a single writer.
type Store interface {
	// Rows returns every data row (header excluded) in sheet order.
	Rows(ctx context.Context) ([]types.Row, error)
	// Record writes the outcome's status, body and optional timestamp to its row.
	Record(ctx context.Context, outcome types.Outcome) error
	Close() error
}

// TimestampLayout is the format of the processed-at cell (MM/DD/YYYY HH:MM:SS).
const TimestampLayout = "01/02/2006 15:04:05"

// Fixed positions used by the original sheet when the body/status headers are absent (D and E).
const (
	fallbackBodyColumn   = 3
	fallbackStatusColumn = 4
)

// firstDataRow is the sheet row holding the first record; row 1 is the header.
const firstDataRow = 2

// ErrHeaderNotLoaded is returned by Record when Rows has not been called yet.
var ErrHeaderNotLoaded = errors.New("store: header not loaded, call Rows first")

// HeaderError reports a header row missing a required column, or one where a
// fixed fallback column would overwrite a column the run reads.
type HeaderError struct {
	Missing   []string
	Conflicts []string
}

func (e *HeaderError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("header row is missing required column(s): %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Conflicts) > 0 {
		parts = append(parts, fmt.Sprintf("add an explicit header for %s", strings.Join(e.Conflicts, "; ")))
	}
	return strings.Join(parts, "; ")
}

// Layout maps logical fields to 0-based column indexes. -1 means absent.
type Layout struct {
	ContactEmail int
	Position     int
	Company      int
	Status       int
	Body         int
	Timestamp    int
}

// NewLayout locates the configured columns in a header row. Header matching is
// case-insensitive and ignores surrounding whitespace.
func NewLayout(header []string, cols types.Columns) (Layout, error) {
	cols = cols.WithDefaults()

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	find := func(name string) int {
		if i, ok := index[strings.ToLower(strings.TrimSpace(name))]; ok {
			return i
		}
		return -1
	}

	l := Layout{
		ContactEmail: find(cols.ContactEmail),
		Position:     find(cols.Position),
		Company:      find(cols.Company),
		Status:       find(cols.Status),
		Body:         find(cols.Body),
		Timestamp:    find(cols.Timestamp),
	}

	var missing []string
	if l.ContactEmail < 0 {
		missing = append(missing, cols.ContactEmail)
	}
	if l.Position < 0 {
		missing = append(missing, cols.Position)
	}
	if len(missing) > 0 {
		return Layout{}, &HeaderError{Missing: missing}
	}

	taken := make(map[int]bool)
	for _, i := range []int{l.ContactEmail, l.Position, l.Company, l.Status, l.Body, l.Timestamp} {
		if i >= 0 {
			taken[i] = true
		}
	}
	var conflicts []string
	fallback := func(dst *int, name string, col int) {
		if *dst >= 0 {
			return
		}
		if taken[col] {
			conflicts = append(conflicts, fmt.Sprintf("%q (fallback column %s holds %q)",
				name, columnLetter(col), strings.TrimSpace(header[col])))
			return
		}
		*dst = col
		taken[col] = true
	}
	fallback(&l.Body, cols.Body, fallbackBodyColumn)
	fallback(&l.Status, cols.Status, fallbackStatusColumn)
	if len(conflicts) > 0 {
		return Layout{}, &HeaderError{Conflicts: conflicts}
	}
	return l, nil
}

// columnLetter names a 0-based column the way spreadsheets do.
func columnLetter(i int) string {
	name, err := excelize.ColumnNumberToName(i + 1)
	if err != nil {
		return fmt.Sprint(i + 1)
	}
	return name
}

// Parse converts one record into a Row. rowNumber is the 1-based sheet row.
func (l Layout) Parse(rowNumber int, record []string) types.Row {
	row := types.Row{
		Index:           rowNumber,
		ContactEmail:    cell(record, l.ContactEmail),
		PositionTitle:   cell(record, l.Position),
		CompanyOverride: cell(record, l.Company),
		Status:          types.ParseStatus(cell(record, l.Status)),
		GeneratedBody:   cell(record, l.Body),
	}
	return row
}

// CellUpdate is a single value to write at a 0-based column of a row.
type CellUpdate struct {
	Column int
	Value  string
}

// Updates returns the cells to write for an outcome. Skipped outcomes produce none.
// The timestamp is written only for sent rows and only when the sheet has a timestamp column.
func (l Layout) Updates(outcome types.Outcome, loc *time.Location) []CellUpdate {
	switch outcome.Status {
	case types.StatusDone:
		updates := []CellUpdate{
			{Column: l.Body, Value: outcome.Body},
			{Column: l.Status, Value: string(types.StatusDone)},
		}
		if l.Timestamp >= 0 && !outcome.ProcessedAt.IsZero() {
			if loc == nil {
				loc = time.UTC
			}
			updates = append(updates, CellUpdate{
				Column: l.Timestamp,
				Value:  outcome.ProcessedAt.In(loc).Format(TimestampLayout),
			})
		}
		return updates
	case types.StatusFailed:
		return []CellUpdate{
			{Column: l.Body, Value: outcome.Body},
			{Column: l.Status, Value: string(types.StatusFailed)},
		}
	default:
		return nil
	}
}

// parseRecords turns raw sheet values (header first) into rows.
func parseRecords(values [][]string, cols types.Columns) (Layout, []types.Row, error) {
	if len(values) == 0 {
		d := cols.WithDefaults()
		return Layout{}, nil, &HeaderError{Missing: []string{d.ContactEmail, d.Position}}
	}

	layout, err := NewLayout(values[0], cols)
	if err != nil {
		return Layout{}, nil, err
	}

	rows := make([]types.Row, 0, len(values)-1)
	for i, record := range values[1:] {
		if blank(record) {
			continue
		}
		rows = append(rows, layout.Parse(i+firstDataRow, record))
	}
	return layout, rows, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

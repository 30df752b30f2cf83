package store

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/job-mailer/internal/types"
)

// Ensure XLSXStore implements Store
var _ Store = (*XLSXStore)(nil)

// XLSXConfig identifies a local workbook and worksheet.
type XLSXConfig struct {
	Path      string
	SheetName string // empty -> active sheet
	Columns   types.Columns
	Location  *time.Location
}

// XLSXStore is a Store backed by a local Excel workbook. The file is saved after
// every recorded outcome so an interrupted run keeps its progress.
type XLSXStore struct {
	path   string
	sheet  string
	f      *excelize.File
	cols   types.Columns
	loc    *time.Location
	layout *Layout
}

// OpenXLSX opens the workbook at cfg.Path.
func OpenXLSX(cfg XLSXConfig) (*XLSXStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("workbook path is required")
	}

	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", cfg.Path, err)
	}

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_ = f.Close()
		return nil, fmt.Errorf("worksheet %q not found in %s", sheet, cfg.Path)
	}

	return &XLSXStore{
		path:  cfg.Path,
		sheet: sheet,
		f:     f,
		cols:  cfg.Columns.WithDefaults(),
		loc:   cfg.Location,
	}, nil
}

// Rows reads every record below the header.
func (s *XLSXStore) Rows(ctx context.Context) ([]types.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values, err := s.f.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %s: %w", s.sheet, err)
	}

	layout, rows, err := parseRecords(values, s.cols)
	if err != nil {
		return nil, fmt.Errorf("worksheet %s: %w", s.sheet, err)
	}
	s.layout = &layout
	return rows, nil
}

// Record sets the outcome's cells and saves the workbook.
func (s *XLSXStore) Record(ctx context.Context, outcome types.Outcome) error {
	if s.layout == nil {
		return ErrHeaderNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	updates := s.layout.Updates(outcome, s.loc)
	if len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		cellName, err := excelize.CoordinatesToCellName(u.Column+1, outcome.Row.Index)
		if err != nil {
			return fmt.Errorf("invalid cell for row %d: %w", outcome.Row.Index, err)
		}
		if err := s.f.SetCellValue(s.sheet, cellName, u.Value); err != nil {
			return fmt.Errorf("failed to set %s: %w", cellName, err)
		}
	}

	if err := s.f.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", s.path, err)
	}
	return nil
}

// Close releases the workbook.
func (s *XLSXStore) Close() error {
	return s.f.Close()
}

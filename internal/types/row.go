// Package types provides type definitions for the rows, emails and outcomes shared across the job mailer.
package types

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the persisted state of a row in the store.
type Status string

const (
	// StatusPending marks a row that has not been attempted yet (also used for blank cells)
	StatusPending Status = "PENDING"
	// StatusDone marks a row whose application email was sent
	StatusDone Status = "DONE"
	// StatusFailed marks a row whose last attempt failed
	StatusFailed Status = "FAILED"
	// StatusSkipped is never persisted; it reports a row left untouched by a run
	StatusSkipped Status = "SKIPPED"
)

// ParseStatus maps a raw status cell to a Status. Matching is case-insensitive
// and anything unrecognised is treated as pending.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(StatusDone):
		return StatusDone
	case string(StatusFailed):
		return StatusFailed
	default:
		return StatusPending
	}
}

// Row is one contact/position record in the row store.
type Row struct {
	// Index is the 1-based row number in the source sheet and identifies the row.
	Index           int        `json:"index"`
	ContactEmail    string     `json:"contact_email" sheet:"Mail_ID" validate:"required"`
	PositionTitle   string     `json:"position_title" sheet:"Post_name" validate:"required"`
	CompanyOverride string     `json:"company_override,omitempty" sheet:"Company_name"`
	Status          Status     `json:"status"`
	GeneratedBody   string     `json:"generated_body,omitempty"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
}

// Done reports whether the row was already sent in an earlier run.
func (r Row) Done() bool {
	return r.Status == StatusDone
}

// Normalized returns a copy of the row with surrounding whitespace removed from its text fields.
func (r Row) Normalized() Row {
	r.ContactEmail = strings.TrimSpace(r.ContactEmail)
	r.PositionTitle = strings.TrimSpace(r.PositionTitle)
	r.CompanyOverride = strings.TrimSpace(r.CompanyOverride)
	return r
}

// ValidationError lists the required row fields that were blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing " + strings.Join(e.Fields, " or ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their sheet header so the message written back is meaningful to the sheet owner.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("sheet"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks that the contact email and position title are present.
func (r Row) Validate() error {
	n := r.Normalized()
	err := validate.Struct(n)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, fe.Field())
	}
	return out
}

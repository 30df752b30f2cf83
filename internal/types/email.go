package types

import "time"

// BodySource records which path produced an email body.
type BodySource string

const (
	// BodySourceAI is a body returned by the text-generation service
	BodySourceAI BodySource = "ai"
	// BodySourceTemplate is the fixed fallback letter
	BodySourceTemplate BodySource = "template"
)

// GeneratedEmail is the subject and body composed for one row. It is not persisted
// except as the row's generated body.
type GeneratedEmail struct {
	Subject string     `json:"subject"`
	Body    string     `json:"body"`
	Source  BodySource `json:"source"`
}

// Outcome is the result of processing one row. The batch driver inspects it to
// decide which cells to write back.
type Outcome struct {
	Row     Row
	Status  Status
	Company string
	Email   *GeneratedEmail

	// Body is the text written to the body column: the generated body on success,
	// the error message on failure.
	Body        string
	ProcessedAt time.Time
	Err         error
}

// Sent reports whether the outcome represents a delivered email.
func (o Outcome) Sent() bool {
	return o.Status == StatusDone
}

// Columns names the sheet headers used by the row store.
type Columns struct {
	ContactEmail string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	Position     string `json:"position,omitempty" yaml:"position,omitempty"`
	Company      string `json:"company,omitempty" yaml:"company,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	Body         string `json:"body,omitempty" yaml:"body,omitempty"`
	Timestamp    string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// DefaultColumns returns the header names used by the original contact sheet.
func DefaultColumns() Columns {
	return Columns{
		ContactEmail: "Mail_ID",
		Position:     "Post_name",
		Company:      "Company_name",
		Status:       "status",
		Body:         "Body",
		Timestamp:    "Body_TimeStamp",
	}
}

// WithDefaults fills blank header names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.ContactEmail == "" {
		c.ContactEmail = d.ContactEmail
	}
	if c.Position == "" {
		c.Position = d.Position
	}
	if c.Company == "" {
		c.Company = d.Company
	}
	if c.Status == "" {
		c.Status = d.Status
	}
	if c.Body == "" {
		c.Body = d.Body
	}
	if c.Timestamp == "" {
		c.Timestamp = d.Timestamp
	}
	return c
}

package domain

import (
	"time"
)

// Sentinel values for context that was never established in a document
const (
	UnknownSchool = "Unknown School"
	UnknownTitle  = "Unknown Title"
)

// SessionDateLayout is the calendar date format used on every boundary
const SessionDateLayout = "2006-01-02"

// AttendeeRecord is one detected participant occurrence.
// Records are built once per matching line and never mutated afterwards.
type AttendeeRecord struct {
	Email         string     `json:"email" validate:"required"`
	FirstName     string     `json:"first_name" validate:"required"`
	LastName      string     `json:"last_name"`
	School        string     `json:"school"`
	Attended      bool       `json:"attended"`
	SessionDate   time.Time  `json:"session_date"`
	GradeLevel    GradeLevel `json:"grade_level"`
	GroupNumber   int        `json:"group_number"`
	WorkshopTitle string     `json:"workshop_title"`
	SourceFile    string     `json:"source_file"`
	LineNumber    int        `json:"line_number"`
}

// BatchMetadata is the operator-supplied metadata for one source document.
// It is attached verbatim to every record drawn from that document.
type BatchMetadata struct {
	SessionDate time.Time  `json:"session_date" yaml:"session_date" validate:"required"`
	GradeLevel  GradeLevel `json:"grade_level" yaml:"grade_level" validate:"required,gradelevel"`
	GroupNumber int        `json:"group_number" yaml:"group_number" validate:"required,groupnumber"`
}

// SourceDocument is the text of one document as handed over by an extraction backend.
// Exactly one of Lines (text variant) or Rows (tabular variant) is populated.
type SourceDocument struct {
	Name     string        `json:"name"`
	Lines    []string      `json:"lines,omitempty"`
	Rows     [][]string    `json:"rows,omitempty"`
	Metadata BatchMetadata `json:"metadata"`
}

// IsTabular reports whether the document came from a table extraction backend
func (d *SourceDocument) IsTabular() bool {
	return len(d.Rows) > 0 && len(d.Lines) == 0
}

// CSVHeaders is the column order of the combined attendance export
var CSVHeaders = []string{
	"Email",
	"First Name",
	"Last Name",
	"School",
	"Attended",
	"Session Date",
	"Grade Level",
	"Group #",
	"Workshop Title",
	"File",
}

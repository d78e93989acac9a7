package attendance

import (
	"fmt"
	"sync"

	"attendcli/pkg/contracts/domain"
)

// WarningLevel is the scope a warning applies to
type WarningLevel string

const (
	LevelDocument WarningLevel = "document"
	LevelLine     WarningLevel = "line"
)

// WarningKind classifies a non-fatal failure
type WarningKind string

const (
	KindDocumentUnreadable WarningKind = "DocumentUnreadable"
	KindLineUnparsable     WarningKind = "LineUnparsable"
)

// Warning is a user-visible, non-fatal failure of one document or one line
type Warning struct {
	Level      WarningLevel `json:"level"`
	Kind       WarningKind  `json:"kind"`
	SourceFile string       `json:"source_file"`
	LineNumber int          `json:"line_number,omitempty"`
	Line       string       `json:"line,omitempty"`
	Message    string       `json:"message"`
}

// NewDocumentWarning reports a document that produced no usable text
func NewDocumentWarning(sourceFile string, err error) Warning {
	return Warning{
		Level:      LevelDocument,
		Kind:       KindDocumentUnreadable,
		SourceFile: sourceFile,
		Message:    fmt.Sprintf("Could not process %s: %v", sourceFile, err),
	}
}

// NewLineWarning reports a candidate line the strategy could not parse
func NewLineWarning(sourceFile string, lineNumber int, line string) Warning {
	return Warning{
		Level:      LevelLine,
		Kind:       KindLineUnparsable,
		SourceFile: sourceFile,
		LineNumber: lineNumber,
		Line:       line,
		Message:    "Could not parse name data for line: " + line,
	}
}

func (w Warning) String() string {
	return w.Message
}

// Collector is the append-only aggregate of one batch. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	records  []domain.AttendeeRecord
	warnings []Warning
}

// NewCollector returns an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// AddRecords appends records in the given order
func (c *Collector) AddRecords(records ...domain.AttendeeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
}

// Warn appends warnings in the given order
func (c *Collector) Warn(warnings ...Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, warnings...)
}

// Records returns a copy of the collected records
func (c *Collector) Records() []domain.AttendeeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.AttendeeRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Warnings returns a copy of the collected warnings
func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Len returns the number of collected records
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

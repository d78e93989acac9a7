package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "attendcli/internal/errors"
	"attendcli/internal/infrastructure"
	"attendcli/pkg/contracts/domain"
)

// LineStatus classifies what a single line produced
type LineStatus int

const (
	// LineIgnored is a line without an email token
	LineIgnored LineStatus = iota
	// LineHeader is a school header line
	LineHeader
	// LineRecord produced a record
	LineRecord
	// LineNoMatch is a candidate line the strategy found no names on
	LineNoMatch
	// LineUnparsable is a candidate line the strategy failed on
	LineUnparsable
)

func (s LineStatus) String() string {
	switch s {
	case LineIgnored:
		return "ignored"
	case LineHeader:
		return "header"
	case LineRecord:
		return "record"
	case LineNoMatch:
		return "no_match"
	case LineUnparsable:
		return "unparsable"
	default:
		return "unknown"
	}
}

// LineResult is either a record or a classified failure for one line
type LineResult struct {
	Status LineStatus
	Record domain.AttendeeRecord
	Err    error
}

// DocumentStats counts line outcomes of one document
type DocumentStats struct {
	Lines      int `json:"lines"`
	Headers    int `json:"headers"`
	Candidates int `json:"candidates"`
	Records    int `json:"records"`
	NoMatch    int `json:"no_match"`
	Unparsable int `json:"unparsable"`
}

func (s *DocumentStats) add(status LineStatus) {
	s.Lines++
	switch status {
	case LineHeader:
		s.Headers++
	case LineRecord:
		s.Candidates++
		s.Records++
	case LineNoMatch:
		s.Candidates++
		s.NoMatch++
	case LineUnparsable:
		s.Candidates++
		s.Unparsable++
	}
}

// DocumentResult is everything one document yielded, in line order
type DocumentResult struct {
	SourceFile string
	Title      string
	Records    []domain.AttendeeRecord
	Warnings   []Warning
	Stats      DocumentStats
}

// Engine runs the line pipeline over a single document
type Engine struct {
	grammar  *Grammar
	strategy Strategy
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default.
func NewEngine(grammar *Grammar, strategy Strategy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		grammar:  grammar,
		strategy: strategy,
		logger:   logger.With(slog.String("component", "attendance_engine")),
	}
}

// Strategy returns the configured field strategy
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Grammar returns the compiled grammar
func (e *Engine) Grammar() *Grammar {
	return e.grammar
}

// ExtractDocument scans the document line by line. Per-line failures become
// warnings; only cancellation of ctx returns an error.
func (e *Engine) ExtractDocument(ctx context.Context, doc *domain.SourceDocument) (DocumentResult, error) {
	result := DocumentResult{SourceFile: doc.Name}

	lines := DocumentLines(doc)
	detector := e.grammar.Detector(doc.IsTabular())

	tracker := NewContextTracker(e.grammar)
	tracker.ScanTitle(lines)
	result.Title = tracker.Snapshot().Title

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		lineNumber := i + 1
		lr := e.extractLine(tracker, detector, doc, lineNumber, line)
		result.Stats.add(lr.Status)

		switch lr.Status {
		case LineRecord:
			result.Records = append(result.Records, lr.Record)
		case LineUnparsable:
			w := NewLineWarning(doc.Name, lineNumber, line)
			result.Warnings = append(result.Warnings, w)
			lineErr := apperrors.NewLineUnparsableError(doc.Name, lineNumber, lr.Err)
			infrastructure.WithError(e.logger, lineErr).WarnContext(ctx, "Could not parse name data",
				slog.String("source_file", doc.Name),
				slog.Int("line_number", lineNumber),
				slog.String("strategy", e.strategy.Name()),
				slog.String("error_type", string(lineErr.Type)))
		}
	}

	return result, nil
}

func (e *Engine) extractLine(tracker *ContextTracker, detector AttendanceDetector, doc *domain.SourceDocument, lineNumber int, line string) LineResult {
	if tracker.Observe(line) {
		return LineResult{Status: LineHeader}
	}

	email, ok := e.grammar.FindEmail(line)
	if !ok {
		return LineResult{Status: LineIgnored}
	}

	fields, err := e.strategy.Extract(line, email)
	if err != nil {
		lineErr := &LineError{LineNumber: lineNumber, Line: line, Err: err}
		if errors.Is(err, ErrNoMatch) {
			return LineResult{Status: LineNoMatch, Err: lineErr}
		}
		return LineResult{Status: LineUnparsable, Err: lineErr}
	}

	first, last := NormalizeName(fields.First, fields.Last)
	if first == "" {
		return LineResult{Status: LineNoMatch, Err: &LineError{LineNumber: lineNumber, Line: line, Err: ErrNoMatch}}
	}

	ctx := tracker.Snapshot()
	return LineResult{
		Status: LineRecord,
		Record: domain.AttendeeRecord{
			Email:         email,
			FirstName:     first,
			LastName:      last,
			School:        ctx.School,
			Attended:      detector.Attended(line),
			SessionDate:   doc.Metadata.SessionDate,
			GradeLevel:    doc.Metadata.GradeLevel,
			GroupNumber:   doc.Metadata.GroupNumber,
			WorkshopTitle: ctx.Title,
			SourceFile:    doc.Name,
			LineNumber:    lineNumber,
		},
	}
}

// DocumentLines returns the text lines of doc. Table rows are flattened by
// joining their non-empty cells with a single space.
func DocumentLines(doc *domain.SourceDocument) []string {
	if !doc.IsTabular() {
		return doc.Lines
	}

	lines := make([]string, 0, len(doc.Rows))
	for _, row := range doc.Rows {
		lines = append(lines, FlattenRow(row))
	}
	return lines
}

// FlattenRow joins the non-empty cells of a table row
func FlattenRow(row []string) string {
	cells := make([]string, 0, len(row))
	for _, cell := range row {
		if cell = strings.TrimSpace(cell); cell != "" {
			cells = append(cells, cell)
		}
	}
	return strings.Join(cells, " ")
}

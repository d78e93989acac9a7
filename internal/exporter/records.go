package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"attendcli/internal/attendance"
	"attendcli/pkg/contracts/domain"
)

// CombinedFileName is the default name of the combined export
const CombinedFileName = "combined_attendance.csv"

// WarningHeaders is the column order of the warnings report
var WarningHeaders = []string{"Level", "Kind", "File", "Line Number", "Line", "Message"}

// RecordRow converts a record to a row in domain.CSVHeaders order
func RecordRow(rec domain.AttendeeRecord) []string {
	return []string{
		rec.Email,
		rec.FirstName,
		rec.LastName,
		rec.School,
		formatBool(rec.Attended),
		formatDate(rec.SessionDate),
		string(rec.GradeLevel),
		formatInt(rec.GroupNumber),
		rec.WorkshopTitle,
		rec.SourceFile,
	}
}

// WarningRow converts a warning to a row in WarningHeaders order
func WarningRow(w attendance.Warning) []string {
	line := ""
	if w.LineNumber > 0 {
		line = formatInt(w.LineNumber)
	}
	return []string{string(w.Level), string(w.Kind), w.SourceFile, line, w.Line, w.Message}
}

// WriteRecords writes the combined attendance CSV
func (w *CSVWriter) WriteRecords(filePath string, records []domain.AttendeeRecord, bom bool) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RecordRow(rec))
	}

	return w.WriteCSV(filePath, WriteOptions{
		Headers:   domain.CSVHeaders,
		Records:   rows,
		BOMPrefix: bom,
	})
}

// WriteWarnings writes the batch warnings report
func (w *CSVWriter) WriteWarnings(filePath string, warnings []attendance.Warning) error {
	stream, err := w.CreateStreamWriter(filePath, WarningHeaders)
	if err != nil {
		return err
	}

	for i, warning := range warnings {
		if err := stream.WriteRecord(WarningRow(warning)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write warning %d: %w", i, err)
		}
	}

	slog.Debug("Warnings report written",
		slog.String("file_path", filePath),
		slog.Int("warning_count", len(warnings)))

	return stream.Close()
}

// EncodeCSV streams the combined CSV to out without a BOM
func EncodeCSV(out io.Writer, records []domain.AttendeeRecord) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(domain.CSVHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(RecordRow(rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"attendcli/internal/attendance"
	"attendcli/pkg/contracts/domain"
)

// Sheet names of the workbook export
const (
	RecordsSheet  = "Records"
	WarningsSheet = "Warnings"
)

// XLSXWriter writes the combined export as an Excel workbook
type XLSXWriter struct {
	csv *CSVWriter
}

// NewXLSXWriter creates a workbook writer sharing the CSV writer's path rules
func NewXLSXWriter(csvWriter *CSVWriter) *XLSXWriter {
	return &XLSXWriter{csv: csvWriter}
}

// Write saves records and warnings to filePath
func (x *XLSXWriter) Write(filePath string, records []domain.AttendeeRecord, warnings []attendance.Warning) error {
	fullPath := filePath
	if x.csv != nil {
		fullPath = x.csv.resolvePath(filePath)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := buildWorkbook(records, warnings)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.SaveAs(fullPath)
}

// EncodeXLSX streams the workbook to out
func EncodeXLSX(out io.Writer, records []domain.AttendeeRecord, warnings []attendance.Warning) error {
	f, err := buildWorkbook(records, warnings)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteTo(out)
	return err
}

func buildWorkbook(records []domain.AttendeeRecord, warnings []attendance.Warning) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, RecordRow(rec))
	}
	if err := writeSheet(f, RecordsSheet, domain.CSVHeaders, rows); err != nil {
		f.Close()
		return nil, err
	}

	if len(warnings) > 0 {
		if _, err := f.NewSheet(WarningsSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create warnings sheet: %w", err)
		}
		wrows := make([][]string, 0, len(warnings))
		for _, w := range warnings {
			wrows = append(wrows, WarningRow(w))
		}
		if err := writeSheet(f, WarningsSheet, WarningHeaders, wrows); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer for %s: %w", sheet, err)
	}

	write := func(rowNum int, values []string) error {
		cells := make([]interface{}, len(values))
		for i, v := range values {
			cells[i] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		return sw.SetRow(cell, cells)
	}

	if err := write(1, headers); err != nil {
		return fmt.Errorf("failed to write %s headers: %w", sheet, err)
	}
	for i, row := range rows {
		if err := write(i+2, row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return sw.Flush()
}

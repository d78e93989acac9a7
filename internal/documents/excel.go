package documents

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// preferredSheets are tried before falling back to every sheet of the workbook
var preferredSheets = []string{"Attendance", "Sign-In", "Sign In", "Roster"}

// ExcelLoader reads the rows of an exported roster workbook
type ExcelLoader struct {
	logger *slog.Logger
}

// NewExcelLoader creates an Excel loader
func NewExcelLoader(logger *slog.Logger) *ExcelLoader {
	return &ExcelLoader{logger: logger.With(slog.String("component", "excel_loader"))}
}

func (l *ExcelLoader) Load(ctx context.Context, path string) (*domain.SourceDocument, error) {
	name := filepath.Base(path)

	rows, err := runBlocking(ctx, func() ([][]string, error) {
		return l.readRows(ctx, path)
	})
	if err != nil {
		return nil, apperrors.NewDocumentUnreadableError(name, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewDocumentUnreadableError(name, fmt.Errorf("workbook has no rows"))
	}

	return &domain.SourceDocument{Name: name, Rows: rows}, nil
}

func (l *ExcelLoader) readRows(ctx context.Context, path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, preferred := range preferredSheets {
		for _, sheet := range sheets {
			if strings.EqualFold(strings.TrimSpace(sheet), preferred) {
				l.logger.DebugContext(ctx, "Found attendance sheet", slog.String("sheet_name", sheet))
				return f.GetRows(sheet)
			}
		}
	}

	var all [][]string
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			l.logger.WarnContext(ctx, "Skipping unreadable sheet",
				slog.String("sheet_name", sheet),
				slog.String("error", err.Error()))
			continue
		}
		all = append(all, nonEmptyRows(rows)...)
	}
	return all, nil
}

func nonEmptyRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

package documents

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/tsawler/tabula"

	apperrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// PDFTextLoader reads the text layer of a PDF, page by page
type PDFTextLoader struct {
	logger *slog.Logger
}

// NewPDFTextLoader creates a PDF text loader
func NewPDFTextLoader(logger *slog.Logger) *PDFTextLoader {
	return &PDFTextLoader{logger: logger.With(slog.String("component", "pdf_text_loader"))}
}

func (l *PDFTextLoader) Load(ctx context.Context, path string) (*domain.SourceDocument, error) {
	name := filepath.Base(path)

	text, err := runBlocking(ctx, func() (string, error) {
		text, warnings, err := tabula.Open(path).Text()
		if len(warnings) > 0 {
			l.logger.DebugContext(ctx, "PDF extraction warnings",
				slog.String("source_file", name),
				slog.Int("count", len(warnings)),
				slog.String("first", fmt.Sprint(warnings[0])))
		}
		return text, err
	})
	if err != nil {
		return nil, apperrors.NewDocumentUnreadableError(name, err)
	}

	lines := SplitLines(text)
	if len(lines) == 0 {
		return nil, apperrors.NewDocumentUnreadableError(name, fmt.Errorf("no extractable text"))
	}

	l.logger.DebugContext(ctx, "PDF text extracted",
		slog.String("source_file", name),
		slog.Int("lines", len(lines)))

	return &domain.SourceDocument{Name: name, Lines: lines}, nil
}

// PDFTableLoader reads the tables tabula detects in a PDF
type PDFTableLoader struct {
	logger *slog.Logger
}

// NewPDFTableLoader creates a PDF table loader
func NewPDFTableLoader(logger *slog.Logger) *PDFTableLoader {
	return &PDFTableLoader{logger: logger.With(slog.String("component", "pdf_table_loader"))}
}

func (l *PDFTableLoader) Load(ctx context.Context, path string) (*domain.SourceDocument, error) {
	name := filepath.Base(path)

	rows, err := runBlocking(ctx, func() ([][]string, error) {
		doc, _, err := tabula.Open(path).Document()
		if err != nil {
			return nil, err
		}

		var rows [][]string
		for _, table := range doc.ExtractTables() {
			for _, row := range table.Rows {
				cells := make([]string, 0, len(row))
				for _, cell := range row {
					cells = append(cells, cell.Text)
				}
				rows = append(rows, cells)
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, apperrors.NewDocumentUnreadableError(name, err)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewDocumentUnreadableError(name, fmt.Errorf("no tables detected"))
	}

	l.logger.DebugContext(ctx, "PDF tables extracted",
		slog.String("source_file", name),
		slog.Int("rows", len(rows)))

	return &domain.SourceDocument{Name: name, Rows: rows}, nil
}

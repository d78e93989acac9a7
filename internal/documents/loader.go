package documents

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"attendcli/internal/config"
	apperrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// Loader fetches the text of one document
type Loader interface {
	Load(ctx context.Context, path string) (*domain.SourceDocument, error)
}

// Supported file extensions
const (
	ExtPDF  = ".pdf"
	ExtXLSX = ".xlsx"
	ExtTXT  = ".txt"
)

// SupportedExtensions lists every extension a Registry can load
var SupportedExtensions = []string{ExtPDF, ExtXLSX, ExtTXT}

// IsSupported reports whether path has a loadable extension
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Registry picks a loader by file extension and configured input mode
type Registry struct {
	pdfText  Loader
	pdfTable Loader
	excel    Loader
	text     Loader
}

// NewRegistry creates a registry with the default loaders
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		pdfText:  NewPDFTextLoader(logger),
		pdfTable: NewPDFTableLoader(logger),
		excel:    NewExcelLoader(logger),
		text:     NewTextLoader(),
	}
}

// ForFile returns the loader for path. PDFs go through the table detector when
// mode is config.InputModeTable; other formats have a single loader.
func (r *Registry) ForFile(path, mode string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtPDF:
		if mode == config.InputModeTable {
			return r.pdfTable, nil
		}
		return r.pdfText, nil
	case ExtXLSX:
		return r.excel, nil
	case ExtTXT:
		return r.text, nil
	default:
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unsupported document type %q", filepath.Ext(path))).
			WithContext("source_file", filepath.Base(path))
	}
}

// SplitLines splits extracted text into lines, keeping blank lines so line
// numbers match the source text.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// runBlocking runs a backend call that does not take a context, returning
// early when ctx ends. The call itself keeps running to completion.
func runBlocking[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	done := make(chan result, 1)
	go func() {
		val, err := fn()
		done <- result{val: val, err: err}
	}()

	select {
	case res := <-done:
		return res.val, res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

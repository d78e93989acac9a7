package documents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "attendcli/internal/errors"
	"attendcli/pkg/contracts/domain"
)

// TextLoader reads a plain text dump produced by an external extractor
type TextLoader struct{}

// NewTextLoader creates a text loader
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

func (l *TextLoader) Load(ctx context.Context, path string) (*domain.SourceDocument, error) {
	name := filepath.Base(path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewDocumentUnreadableError(name, err)
	}

	lines := SplitLines(string(data))
	if len(lines) == 0 {
		return nil, apperrors.NewDocumentUnreadableError(name, fmt.Errorf("no extractable text"))
	}
	return &domain.SourceDocument{Name: name, Lines: lines}, nil
}

package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)), []string{".pdf", ".xlsx", ".txt"})
}

func TestValidateInputDirectory(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	assert.NoError(t, v.ValidateInputDirectory(dir))
	assert.Error(t, v.ValidateInputDirectory(filepath.Join(dir, "missing")))

	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	assert.Error(t, v.ValidateInputDirectory(file))
}

func TestValidateOutputDirectory(t *testing.T) {
	v := newTestValidator()
	dir := filepath.Join(t.TempDir(), "reports", "july")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	_, err := os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidateFile(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, v.ValidateFile(file))
	assert.Error(t, v.ValidateFile(dir))
	assert.Error(t, v.ValidateFile(filepath.Join(dir, "missing.pdf")))
}

func TestValidateDocumentName(t *testing.T) {
	v := newTestValidator()

	assert.NoError(t, v.ValidateDocumentName("Roster.PDF"))
	assert.NoError(t, v.ValidateDocumentName("roster.xlsx"))
	assert.Error(t, v.ValidateDocumentName("scan.png"))
	assert.Error(t, v.ValidateDocumentName("noext"))
}

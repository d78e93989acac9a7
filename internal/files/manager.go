package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"attendcli/internal/config"
)

// Manager stages uploaded documents on disk
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// CreateUploadDir creates a fresh directory for one request's uploads
func (m *Manager) CreateUploadDir(requestID string) (string, error) {
	dir := m.paths.GetUploadPath(SanitizeName(requestID))

	slog.Debug("Creating upload directory", slog.String("dir", dir))

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	return dir, nil
}

// SaveUpload copies src into dir under a sanitized name and returns the path.
// index prefixes the stored name so two uploads with the same name never clash.
func (m *Manager) SaveUpload(dir string, index int, name string, src io.Reader) (string, error) {
	dstPath := filepath.Join(dir, fmt.Sprintf("%03d_%s", index, SanitizeName(name)))

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to store upload: %w", err)
	}

	return dstPath, dst.Sync()
}

// RemoveUploadDir deletes a request's upload directory
func (m *Manager) RemoveUploadDir(dir string) error {
	uploads, err := filepath.Abs(m.paths.UploadsDir)
	if err != nil {
		return err
	}
	target, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(target, uploads+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside the uploads directory", dir)
	}

	slog.Debug("Removing upload directory", slog.String("dir", target))
	return os.RemoveAll(target)
}

// SanitizeName reduces an uploaded file name to a safe base name
func SanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	clean := strings.TrimLeft(b.String(), ".")
	if clean == "" {
		return "upload"
	}
	return clean
}

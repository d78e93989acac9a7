package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath   string
	extensions []string
}

// NewDiscovery creates a discovery that matches the given extensions
// (lower case, with the leading dot)
func NewDiscovery(basePath string, extensions []string) *Discovery {
	return &Discovery{basePath: basePath, extensions: extensions}
}

// FindDocuments lists the matching files of dir sorted by name.
// Subdirectories and hidden files are skipped.
func (d *Discovery) FindDocuments(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !d.matches(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (d *Discovery) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range d.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

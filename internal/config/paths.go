package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths
type Paths struct {
	BaseDir    string
	DataDir    string
	UploadsDir string
	ReportsDir string
	LogsDir    string
}

// GetPaths resolves the configured paths. An empty BaseDir means the directory
// of the running executable, never the current working directory.
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	return NewPaths(base, c.Paths), nil
}

// NewPaths resolves every relative entry of cfg against base
func NewPaths(base string, cfg PathsConfig) *Paths {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(cfg.DataDir),
		UploadsDir: resolve(cfg.UploadsDir),
		ReportsDir: resolve(cfg.ReportsDir),
		LogsDir:    resolve(cfg.LogsDir),
	}
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs every resolved path once at startup
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Info("Resolved application paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("uploads_dir", p.UploadsDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir))
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetUploadPath returns the path for an uploaded document
func (p *Paths) GetUploadPath(filename string) string {
	return filepath.Join(p.UploadsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogFile resolves the configured log file. A bare file name lands in the
// logs directory, other relative paths resolve against BaseDir.
func (p *Paths) LogFile(configured string) string {
	switch {
	case configured == "":
		return p.GetLogPath("app.log")
	case filepath.IsAbs(configured):
		return configured
	case filepath.Base(configured) == configured:
		return p.GetLogPath(configured)
	default:
		return filepath.Join(p.BaseDir, configured)
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

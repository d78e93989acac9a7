package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable (ATTEND_SERVER_PORT, ...)
const EnvPrefix = "ATTEND"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Extraction ExtractionConfig `yaml:"extraction" envconfig:"EXTRACTION"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	ExtractTimeout  time.Duration `yaml:"extract_timeout" envconfig:"EXTRACT_TIMEOUT"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"` // json or text
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative paths resolve against BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	UploadsDir string `yaml:"uploads_dir" envconfig:"UPLOADS_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ExtractionConfig selects and tunes the record extraction heuristics for a document family
type ExtractionConfig struct {
	Strategy          string        `yaml:"strategy" envconfig:"STRATEGY"`
	LastOffset        int           `yaml:"last_offset" envconfig:"LAST_OFFSET"`
	FirstOffset       int           `yaml:"first_offset" envconfig:"FIRST_OFFSET"`
	InstitutionPrefix string        `yaml:"institution_prefix" envconfig:"INSTITUTION_PREFIX"`
	TimestampMonth    string        `yaml:"timestamp_month" envconfig:"TIMESTAMP_MONTH"`
	TimestampYear     string        `yaml:"timestamp_year" envconfig:"TIMESTAMP_YEAR"`
	InputMode         string        `yaml:"input_mode" envconfig:"INPUT_MODE"`
	GradeScheme       string        `yaml:"grade_scheme" envconfig:"GRADE_SCHEME"`
	DocumentTimeout   time.Duration `yaml:"document_timeout" envconfig:"DOCUMENT_TIMEOUT"`
	Concurrency       int           `yaml:"concurrency" envconfig:"CONCURRENCY"`
	// CasingStripTokens blanks the email and timestamps before the casing scan
	CasingStripTokens bool          `yaml:"casing_strip_tokens" envconfig:"CASING_STRIP_TOKENS"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	EnableTracing  bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics  bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Extraction strategies
const (
	StrategyPositional = "positional"
	StrategyCasing     = "casing"
)

// Input modes for the extraction backend
const (
	InputModeText  = "text"
	InputModeTable = "table"
)

// Load loads configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields carry no default tags, so only variables that are actually set override.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	switch c.Extraction.Strategy {
	case StrategyPositional:
		if c.Extraction.LastOffset < 1 || c.Extraction.FirstOffset < 1 {
			return fmt.Errorf("positional offsets must be positive (last=%d, first=%d)",
				c.Extraction.LastOffset, c.Extraction.FirstOffset)
		}
		if c.Extraction.LastOffset == c.Extraction.FirstOffset {
			return fmt.Errorf("positional offsets must differ")
		}
	case StrategyCasing:
	default:
		return fmt.Errorf("unknown extraction strategy: %q", c.Extraction.Strategy)
	}

	switch c.Extraction.InputMode {
	case InputModeText, InputModeTable:
	default:
		return fmt.Errorf("unknown input mode: %q", c.Extraction.InputMode)
	}

	switch strings.ToLower(c.Extraction.GradeScheme) {
	case "k12", "numeric":
	default:
		return fmt.Errorf("unknown grade scheme: %q", c.Extraction.GradeScheme)
	}

	if strings.TrimSpace(c.Extraction.InstitutionPrefix) == "" {
		return fmt.Errorf("institution prefix must not be empty")
	}

	if c.Extraction.Concurrency < 1 {
		c.Extraction.Concurrency = 1
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    2 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			ExtractTimeout:  5 * time.Minute,
			MaxUploadBytes:  64 << 20,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   10,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			UploadsDir: "data/uploads",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Extraction: ExtractionConfig{
			Strategy:          StrategyPositional,
			LastOffset:        2,
			FirstOffset:       3,
			InstitutionPrefix: "La Joya ISD",
			TimestampMonth:    "Jul",
			TimestampYear:     "2025",
			InputMode:         InputModeText,
			GradeScheme:       "k12",
			DocumentTimeout:   60 * time.Second,
			Concurrency:       1,
		},
		Telemetry: TelemetryConfig{
			EnableTracing:  false,
			EnableMetrics:  true,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
	}
}

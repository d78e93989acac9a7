package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"attendcli/internal/config"
	apperrors "attendcli/internal/errors"
	"attendcli/internal/infrastructure"
	"attendcli/internal/services"
	"attendcli/pkg/contracts"
)

// options are the command line flags of one run
type options struct {
	configFile  string
	inDir       string
	manifest    string
	out         string
	format      string
	strategy    string
	mode        string
	warnings    string
	bom         bool
	concurrency int
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("extractor", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "config file (defaults to config.yaml or configs/config.yaml when present)")
	fs.StringVar(&opts.inDir, "in", "", "input directory with .pdf, .xlsx or .txt attendance documents")
	fs.StringVar(&opts.manifest, "manifest", "", "metadata manifest (defaults to <in>/manifest.yaml)")
	fs.StringVar(&opts.out, "out", "", "output file (defaults to combined_attendance.csv in the reports directory)")
	fs.StringVar(&opts.format, "format", services.FormatCSV, "output format: csv or xlsx")
	fs.StringVar(&opts.strategy, "strategy", "", "field extraction strategy: positional or casing")
	fs.StringVar(&opts.mode, "mode", "", "PDF backend: text or table")
	fs.StringVar(&opts.warnings, "warnings", "", "write the batch warnings to this CSV file")
	fs.BoolVar(&opts.bom, "bom", false, "prefix the CSV with a UTF-8 byte order mark for Excel")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "documents extracted in parallel (0 keeps the configured value)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.inDir == "" {
		return nil, errors.New("-in is required")
	}
	return opts, nil
}

// loadConfig applies the command line overrides on top of the loaded config
func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFrom(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.strategy != "" {
		cfg.Extraction.Strategy = opts.strategy
	}
	if opts.mode != "" {
		cfg.Extraction.InputMode = opts.mode
	}
	if opts.concurrency > 0 {
		cfg.Extraction.Concurrency = opts.concurrency
	}
	// the CLI never serves metrics
	cfg.Telemetry.EnableMetrics = false

	return cfg, nil
}

func run(ctx context.Context, opts *options, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	// one trace ID correlates every log line of the run
	ctx = infrastructure.EnsureTraceID(ctx)

	paths, err := cfg.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	providers, err := infrastructure.InitializeOTel(infrastructure.NewOTelConfig(cfg.Telemetry), logger)
	if err != nil {
		return err
	}
	defer providers.Shutdown(context.WithoutCancel(ctx))

	svc, err := services.NewExtractionService(cfg.Extraction, paths, nil, logger)
	if err != nil {
		return err
	}

	report, outPath, err := svc.RunDirectory(ctx, services.DirectoryRequest{
		InputDir:     opts.inDir,
		ManifestPath: opts.manifest,
		OutputPath:   opts.out,
		Format:       opts.format,
		WarningsPath: opts.warnings,
		BOM:          opts.bom,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Extracted %d rows across %d files.\n", len(report.Records), len(report.Documents))
	for _, w := range report.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w.Message)
	}
	fmt.Fprintf(stdout, "Wrote %s\n", outPath)

	return nil
}

// exitCode maps a failed run to the process exit status. Bad input and bad
// configuration exit 2, everything else 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case apperrors.IsType(err, apperrors.ErrTypeValidation),
		apperrors.IsType(err, apperrors.ErrTypeConfig),
		apperrors.IsType(err, apperrors.ErrTypeParsing):
		return 2
	default:
		return 1
	}
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if paths, err := cfg.GetPaths(); err == nil {
		cfg.Logging.FilePath = paths.LogFile(cfg.Logging.FilePath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting attendance extraction",
		slog.String("version", contracts.Version),
		slog.String("input_dir", opts.inDir),
		slog.String("format", opts.format),
		slog.String("strategy", cfg.Extraction.Strategy))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, cfg, logger, os.Stdout); err != nil {
		logger.Error("Extraction failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

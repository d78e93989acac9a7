package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"attendcli/internal/attendance"
	"attendcli/internal/config"
	"attendcli/internal/documents"
	apperrors "attendcli/internal/errors"
	"attendcli/internal/exporter"
	"attendcli/internal/files"
	"attendcli/internal/infrastructure"
	"attendcli/internal/metadata"
	"attendcli/internal/validation"
	"attendcli/pkg/contracts/domain"
)

// Output formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ManifestFileName is looked up in the input directory when no manifest is given
const ManifestFileName = "manifest.yaml"

// ParseFormat normalizes an output format name. Empty means csv.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "":
		return FormatCSV, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// DirectoryRequest describes one batch over an input directory
type DirectoryRequest struct {
	InputDir     string
	ManifestPath string // defaults to InputDir/manifest.yaml
	OutputPath   string // defaults to the reports directory
	Format       string // csv or xlsx
	WarningsPath string // optional warnings report
	BOM          bool
}

// Upload is one uploaded document staged on disk
type Upload struct {
	Name     string
	Path     string
	Metadata domain.BatchMetadata
}

// ExtractionService runs extraction batches
type ExtractionService struct {
	cfg       config.ExtractionConfig
	batch     *attendance.Batch
	strategy  string
	registry  *documents.Registry
	discovery *files.Discovery
	fileCheck *validation.FileValidator
	validator *metadata.Validator
	csv       *exporter.CSVWriter
	xlsx      *exporter.XLSXWriter
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewExtractionService builds the engine for cfg and wires it to the loaders
// and exporters. metrics may be nil.
func NewExtractionService(cfg config.ExtractionConfig, paths *config.Paths, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) (*ExtractionService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "extraction_service")

	grammar, err := attendance.NewGrammar(cfg)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid extraction grammar", err)
	}
	strategy, err := attendance.NewStrategy(cfg, grammar)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid extraction strategy", err)
	}
	scheme, err := domain.ParseGradeScheme(cfg.GradeScheme)
	if err != nil {
		return nil, apperrors.NewConfigError("invalid grade scheme", err)
	}

	engine := attendance.NewEngine(grammar, strategy, logger)
	csvWriter := exporter.NewCSVWriter(paths)
	baseDir := ""
	if paths != nil {
		baseDir = paths.BaseDir
	}

	logger.Info("Extraction service initialized",
		slog.String("strategy", strategy.Name()),
		slog.String("input_mode", cfg.InputMode),
		slog.String("grade_scheme", string(scheme)),
		slog.Int("concurrency", cfg.Concurrency))

	return &ExtractionService{
		cfg: cfg,
		batch: attendance.NewBatch(engine, attendance.BatchOptions{
			Concurrency:     cfg.Concurrency,
			DocumentTimeout: cfg.DocumentTimeout,
		}, logger),
		strategy:  strategy.Name(),
		registry:  documents.NewRegistry(logger),
		discovery: files.NewDiscovery(baseDir, documents.SupportedExtensions),
		fileCheck: validation.NewFileValidator(logger, documents.SupportedExtensions),
		validator: metadata.NewValidator(scheme),
		csv:       csvWriter,
		xlsx:      exporter.NewXLSXWriter(csvWriter),
		metrics:   metrics,
		tracer:    otel.Tracer("attendcli/services"),
		logger:    logger,
	}, nil
}

// Validator returns the metadata validator of the configured grade scheme
func (s *ExtractionService) Validator() *metadata.Validator {
	return s.validator
}

// Grades lists the grade levels an operator may choose
func (s *ExtractionService) Grades() []domain.GradeLevel {
	return s.validator.Scheme().Levels()
}

// CheckUploadName rejects uploads the registry has no loader for
func (s *ExtractionService) CheckUploadName(name string) error {
	if err := s.fileCheck.ValidateDocumentName(name); err != nil {
		return apperrors.NewAppValidationError(err.Error()).WithContext("file", name)
	}
	return nil
}

// RunDirectory extracts every supported document of req.InputDir and writes
// the combined export. Metadata for each document comes from the manifest;
// a document without valid metadata fails the whole request before any
// extraction starts.
func (s *ExtractionService) RunDirectory(ctx context.Context, req DirectoryRequest) (*attendance.BatchReport, string, error) {
	format, err := ParseFormat(req.Format)
	if err != nil || format == FormatJSON {
		return nil, "", apperrors.NewAppValidationError(fmt.Sprintf("unsupported output format %q", req.Format))
	}

	if err := s.fileCheck.ValidateInputDirectory(req.InputDir); err != nil {
		return nil, "", apperrors.NewStorageError("invalid input directory", err)
	}

	found, err := s.discovery.FindDocuments(req.InputDir)
	if err != nil {
		return nil, "", apperrors.NewStorageError("failed to list documents", err)
	}

	manifestPath := req.ManifestPath
	if manifestPath == "" {
		manifestPath = filepath.Join(req.InputDir, ManifestFileName)
	}

	var manifest *metadata.Manifest
	if len(found) > 0 {
		manifest, err = metadata.LoadManifest(manifestPath, s.validator)
		if err != nil {
			return nil, "", err
		}
	}

	uploads := make([]Upload, 0, len(found))
	for _, f := range found {
		meta, err := manifest.For(f.Name)
		if err != nil {
			return nil, "", apperrors.NewAppError(apperrors.ErrTypeValidation, err.Error(), err).
				WithContext("file", f.Name)
		}
		uploads = append(uploads, Upload{Name: f.Name, Path: f.Path, Metadata: meta})
	}

	report, err := s.run(ctx, uploads)
	if err != nil {
		return nil, "", err
	}

	outPath, err := s.export(report, format, req.OutputPath, req.BOM)
	if err != nil {
		return nil, "", err
	}

	if req.WarningsPath != "" {
		if err := s.csv.WriteWarnings(req.WarningsPath, report.Warnings); err != nil {
			return nil, "", apperrors.NewStorageError("failed to write warnings report", err)
		}
	}

	return report, outPath, nil
}

// RunUploads extracts staged uploads in the given order
func (s *ExtractionService) RunUploads(ctx context.Context, uploads []Upload) (*attendance.BatchReport, error) {
	if len(uploads) == 0 {
		return nil, apperrors.NewAppValidationError(ErrNoDocuments.Error())
	}
	for _, u := range uploads {
		if err := s.validator.Validate(u.Metadata); err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrTypeValidation, err.Error(), err).
				WithContext("file", u.Name)
		}
	}
	return s.run(ctx, uploads)
}

func (s *ExtractionService) run(ctx context.Context, uploads []Upload) (*attendance.BatchReport, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.run",
		trace.WithAttributes(
			attribute.Int("documents", len(uploads)),
			attribute.String("strategy", s.strategy),
		))
	defer span.End()

	infrastructure.RecordActiveBatchChange(ctx, s.metrics, 1)
	defer infrastructure.RecordActiveBatchChange(ctx, s.metrics, -1)

	jobs := make([]attendance.DocumentJob, 0, len(uploads))
	for _, u := range uploads {
		job := attendance.DocumentJob{Path: u.Path, Name: u.Name, Metadata: u.Metadata}

		loader, err := s.registry.ForFile(u.Path, s.cfg.InputMode)
		if err != nil {
			// the batch reports it as an unreadable document
			job.Loader = attendance.LoaderFunc(func(context.Context, string) (*domain.SourceDocument, error) {
				return nil, err
			})
		} else {
			job.Loader = loader
		}
		jobs = append(jobs, job)
	}

	report, err := s.batch.Run(ctx, jobs)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewAppError(apperrors.ErrTypeTimeout, "extraction timed out", err)
		}
		return nil, err
	}

	for _, doc := range report.Documents {
		infrastructure.RecordDocumentMetrics(ctx, s.metrics, infrastructure.DocumentOutcome{
			SourceFile:   doc.SourceFile,
			Strategy:     s.strategy,
			Records:      doc.Records,
			SkippedLines: doc.Stats.NoMatch + doc.Stats.Unparsable,
			Warnings:     doc.Warnings,
			Duration:     doc.Duration,
			Failed:       doc.Failed,
		})
	}

	span.SetAttributes(
		attribute.Int("records", len(report.Records)),
		attribute.Int("warnings", len(report.Warnings)),
	)

	return report, nil
}

// export writes the report in format. An empty outPath lands in the reports
// directory under the combined file name.
func (s *ExtractionService) export(report *attendance.BatchReport, format, outPath string, bom bool) (string, error) {
	if outPath == "" {
		outPath = exporter.CombinedFileName
		if format == FormatXLSX {
			outPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".xlsx"
		}
	}

	started := time.Now()
	var err error
	switch format {
	case FormatXLSX:
		err = s.xlsx.Write(outPath, report.Records, report.Warnings)
	default:
		err = s.csv.WriteRecords(outPath, report.Records, bom)
	}
	if err != nil {
		return "", apperrors.NewStorageError("failed to write export", err).WithContext("path", outPath)
	}

	s.logger.Info("Export written",
		slog.String("path", outPath),
		slog.String("format", format),
		slog.Int("records", len(report.Records)),
		slog.Duration("duration", time.Since(started)))

	return outPath, nil
}

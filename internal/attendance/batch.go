package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"attendcli/internal/infrastructure"
	"attendcli/pkg/contracts/domain"
)

const tracerName = "attendcli/attendance"

// Loader fetches the text of one document from an extraction backend
type Loader interface {
	Load(ctx context.Context, path string) (*domain.SourceDocument, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, path string) (*domain.SourceDocument, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (*domain.SourceDocument, error) {
	return f(ctx, path)
}

// DocumentJob is one document of a batch
type DocumentJob struct {
	Path     string
	Name     string // defaults to the base name of Path
	Metadata domain.BatchMetadata
	Loader   Loader
}

func (j DocumentJob) name() string {
	if j.Name != "" {
		return j.Name
	}
	return filepath.Base(j.Path)
}

// DocumentSummary reports how one document of a batch went
type DocumentSummary struct {
	SourceFile string        `json:"source_file"`
	Title      string        `json:"workshop_title,omitempty"`
	Records    int           `json:"records"`
	Warnings   int           `json:"warnings"`
	Stats      DocumentStats `json:"stats"`
	Failed     bool          `json:"failed"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// BatchReport is the aggregate of one batch run.
// Records are ordered by document, then by line.
type BatchReport struct {
	Records   []domain.AttendeeRecord `json:"records"`
	Warnings  []Warning               `json:"warnings"`
	Documents []DocumentSummary       `json:"documents"`
	StartedAt time.Time               `json:"started_at"`
	Duration  time.Duration           `json:"duration"`
}

// FailedDocuments counts documents that were skipped entirely
func (r *BatchReport) FailedDocuments() int {
	n := 0
	for _, d := range r.Documents {
		if d.Failed {
			n++
		}
	}
	return n
}

// BatchOptions bound the resources of a batch run
type BatchOptions struct {
	Concurrency     int
	DocumentTimeout time.Duration
}

// Batch runs the engine over many documents
type Batch struct {
	engine *Engine
	opts   BatchOptions
	logger *slog.Logger
	tracer trace.Tracer
}

// NewBatch creates a batch runner
func NewBatch(engine *Engine, opts BatchOptions, logger *slog.Logger) *Batch {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Batch{
		engine: engine,
		opts:   opts,
		logger: logger.With(slog.String("component", "attendance_batch")),
		tracer: otel.Tracer(tracerName),
	}
}

type documentOutcome struct {
	result  DocumentResult
	summary DocumentSummary
	warning *Warning
}

// Run processes every job and merges the results in job order. A document the
// backend cannot read is skipped with one document-level warning. The only
// error returned is the cancellation of ctx.
func (b *Batch) Run(ctx context.Context, jobs []DocumentJob) (*BatchReport, error) {
	started := time.Now()

	ctx, span := b.tracer.Start(ctx, "attendance.batch",
		trace.WithAttributes(
			attribute.Int("batch.documents", len(jobs)),
			attribute.String("batch.strategy", b.engine.Strategy().Name()),
		))
	defer span.End()

	outcomes := make([]documentOutcome, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := b.runDocument(gctx, job)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	collector := NewCollector()
	report := &BatchReport{
		StartedAt: started,
		Documents: make([]DocumentSummary, 0, len(jobs)),
	}
	for _, out := range outcomes {
		if out.warning != nil {
			collector.Warn(*out.warning)
		}
		collector.AddRecords(out.result.Records...)
		collector.Warn(out.result.Warnings...)
		report.Documents = append(report.Documents, out.summary)
	}
	report.Records = collector.Records()
	report.Warnings = collector.Warnings()
	report.Duration = time.Since(started)

	span.SetAttributes(
		attribute.Int("batch.records", len(report.Records)),
		attribute.Int("batch.warnings", len(report.Warnings)),
	)

	b.logger.InfoContext(ctx, "Batch completed",
		slog.Int("documents", len(jobs)),
		slog.Int("failed_documents", report.FailedDocuments()),
		slog.Int("records", len(report.Records)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Duration("duration", report.Duration))

	return report, nil
}

func (b *Batch) runDocument(ctx context.Context, job DocumentJob) (documentOutcome, error) {
	name := job.name()
	started := time.Now()

	ctx = infrastructure.WithDocument(ctx, name)
	ctx, span := b.tracer.Start(ctx, "attendance.document",
		trace.WithAttributes(attribute.String("document.name", name)))
	defer span.End()

	doc, err := b.load(ctx, job)
	if err != nil {
		// the batch itself was cancelled, not just this document
		if ctxErr := ctx.Err(); ctxErr != nil {
			return documentOutcome{}, ctxErr
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "document unreadable")
		infrastructure.WithError(b.logger, err).WarnContext(ctx, "Could not process document")

		w := NewDocumentWarning(name, err)
		return documentOutcome{
			warning: &w,
			summary: DocumentSummary{
				SourceFile: name,
				Warnings:   1,
				Failed:     true,
				Error:      err.Error(),
				Duration:   time.Since(started),
			},
		}, nil
	}

	doc.Name = name
	doc.Metadata = job.Metadata

	result, err := b.engine.ExtractDocument(ctx, doc)
	if err != nil {
		return documentOutcome{}, err
	}

	span.SetAttributes(
		attribute.Int("document.records", len(result.Records)),
		attribute.Int("document.unparsable_lines", result.Stats.Unparsable),
	)

	b.logger.InfoContext(ctx, "Document processed",
		slog.String("workshop_title", result.Title),
		slog.Int("lines", result.Stats.Lines),
		slog.Int("records", len(result.Records)),
		slog.Int("warnings", len(result.Warnings)))

	return documentOutcome{
		result: result,
		summary: DocumentSummary{
			SourceFile: name,
			Title:      result.Title,
			Records:    len(result.Records),
			Warnings:   len(result.Warnings),
			Stats:      result.Stats,
			Duration:   time.Since(started),
		},
	}, nil
}

// load calls the backend under the per-document timeout
func (b *Batch) load(ctx context.Context, job DocumentJob) (*domain.SourceDocument, error) {
	if job.Loader == nil {
		return nil, errors.New("no loader for document")
	}

	loadCtx := ctx
	if b.opts.DocumentTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, b.opts.DocumentTimeout)
		defer cancel()
	}

	doc, err := job.Loader.Load(loadCtx, job.Path)
	if err != nil {
		return nil, err
	}
	if doc == nil || (len(doc.Lines) == 0 && len(doc.Rows) == 0) {
		return nil, errors.New("no extractable text")
	}
	return doc, nil
}

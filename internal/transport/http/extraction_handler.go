package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"attendcli/internal/attendance"
	apierrors "attendcli/internal/errors"
	"attendcli/internal/exporter"
	"attendcli/internal/files"
	"attendcli/internal/metadata"
	mw "attendcli/internal/middleware"
	"attendcli/internal/services"
	"attendcli/pkg/contracts/domain"
)

// Multipart field names
const (
	FieldFiles       = "files"
	FieldSessionDate = "session_date"
	FieldGradeLevel  = "grade_level"
	FieldGroupNumber = "group_number"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files
const multipartMemory = 8 << 20

var outputFormats = []string{services.FormatJSON, services.FormatCSV, services.FormatXLSX}

// ExtractionHandler handles document uploads and extraction
type ExtractionHandler struct {
	service      ExtractionServiceInterface
	files        *files.Manager
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *mw.QueryParamValidator
}

// NewExtractionHandler creates a new extraction handler
func NewExtractionHandler(service ExtractionServiceInterface, fileManager *files.Manager, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExtractionHandler {
	return &ExtractionHandler{
		service:      service,
		files:        fileManager,
		logger:       logger.With(slog.String("component", "extraction_handler")),
		errorHandler: errorHandler,
		query:        mw.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the extraction routes
func (h *ExtractionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(mw.ContentTypeValidator("multipart/form-data")).Post("/", h.Extract)
	return r
}

// SummaryResponse describes a batch without its records
type SummaryResponse struct {
	Documents       int                          `json:"documents"`
	FailedDocuments int                          `json:"failed_documents"`
	Records         int                          `json:"records"`
	Warnings        int                          `json:"warnings"`
	DurationMS      int64                        `json:"duration_ms"`
	PerDocument     []attendance.DocumentSummary `json:"per_document"`
}

// ExtractResponse is the JSON body of POST /api/extract
type ExtractResponse struct {
	Records  []domain.AttendeeRecord `json:"records"`
	Warnings []attendance.Warning    `json:"warnings"`
	Summary  SummaryResponse         `json:"summary"`
}

// NewExtractResponse converts a batch report to its JSON response
func NewExtractResponse(report *attendance.BatchReport) ExtractResponse {
	records := report.Records
	if records == nil {
		records = []domain.AttendeeRecord{}
	}
	warnings := report.Warnings
	if warnings == nil {
		warnings = []attendance.Warning{}
	}

	return ExtractResponse{
		Records:  records,
		Warnings: warnings,
		Summary: SummaryResponse{
			Documents:       len(report.Documents),
			FailedDocuments: report.FailedDocuments(),
			Records:         len(records),
			Warnings:        len(warnings),
			DurationMS:      report.Duration.Milliseconds(),
			PerDocument:     report.Documents,
		},
	}
}

// Extract handles POST /api/extract
func (h *ExtractionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, ok := h.query.ValidateEnum(w, r, "format", outputFormats, services.FormatJSON)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[FieldFiles]
	if len(headers) == 0 {
		h.errorHandler.HandleError(w, r, apierrors.ErrNoDocuments)
		return
	}

	metas, fieldErrs := h.parseMetadata(r.MultipartForm, headers)
	if len(fieldErrs) > 0 {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationErrors(fieldErrs))
		return
	}

	batchID := middleware.GetReqID(ctx)
	if batchID == "" {
		batchID = uuid.NewString()
	}
	dir, err := h.files.CreateUploadDir(batchID)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to stage uploads", err))
		return
	}
	defer func() {
		if err := h.files.RemoveUploadDir(dir); err != nil {
			h.logger.WarnContext(ctx, "Failed to remove upload directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
		}
	}()

	uploads := make([]services.Upload, 0, len(headers))
	for i, fh := range headers {
		path, err := h.stage(dir, i, fh)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to stage upload", err).
				WithContext("file", fh.Filename))
			return
		}
		uploads = append(uploads, services.Upload{Name: fh.Filename, Path: path, Metadata: metas[i]})
	}

	h.logger.InfoContext(ctx, "Extraction requested",
		slog.Int("documents", len(uploads)),
		slog.String("format", format))

	report, err := h.service.RunUploads(ctx, uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, classifyRunError(err))
		return
	}

	switch format {
	case services.FormatCSV:
		h.writeCSV(w, r, report)
	case services.FormatXLSX:
		h.writeXLSX(w, r, report)
	default:
		render.JSON(w, r, NewExtractResponse(report))
	}
}

// parseMetadata reads the metadata of every uploaded file. Indexed fields
// (session_date[0]) win over the shared field (session_date).
func (h *ExtractionHandler) parseMetadata(form *multipart.Form, headers []*multipart.FileHeader) ([]domain.BatchMetadata, []apierrors.ValidationError) {
	metas := make([]domain.BatchMetadata, len(headers))
	var fieldErrs []apierrors.ValidationError

	for i, fh := range headers {
		if err := h.service.CheckUploadName(fh.Filename); err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{
				Field:   indexedField(FieldFiles, i),
				Message: fmt.Sprintf("%s: unsupported document type", fh.Filename),
			})
			continue
		}

		entry := metadata.Entry{
			File:        fh.Filename,
			SessionDate: formValue(form, FieldSessionDate, i),
			GradeLevel:  formValue(form, FieldGradeLevel, i),
			GroupNumber: formValue(form, FieldGroupNumber, i),
		}

		meta, err := metadata.Parse(entry, h.service.Validator())
		if err != nil {
			var fe *metadata.FieldErrors
			if errors.As(err, &fe) {
				for _, e := range fe.Errors {
					fieldErrs = append(fieldErrs, apierrors.ValidationError{
						Field:   indexedField(e.Field, i),
						Message: e.Message,
					})
				}
				continue
			}
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: indexedField(FieldFiles, i), Message: err.Error()})
			continue
		}
		metas[i] = meta
	}

	return metas, fieldErrs
}

func (h *ExtractionHandler) stage(dir string, index int, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.files.SaveUpload(dir, index, fh.Filename, src)
}

func (h *ExtractionHandler) writeCSV(w http.ResponseWriter, r *http.Request, report *attendance.BatchReport) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(exporter.CombinedFileName))
	w.Header().Set("X-Attendance-Warnings", strconv.Itoa(len(report.Warnings)))

	if err := exporter.EncodeCSV(w, report.Records); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to stream CSV",
			slog.String("error", err.Error()))
	}
}

// writeXLSX builds the workbook in memory so an encoding failure can still be
// reported as a problem response.
func (h *ExtractionHandler) writeXLSX(w http.ResponseWriter, r *http.Request, report *attendance.BatchReport) {
	var buf bytes.Buffer
	if err := exporter.EncodeXLSX(&buf, report.Records, report.Warnings); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExtractionError(err))
		return
	}

	name := strings.TrimSuffix(exporter.CombinedFileName, ".csv") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("X-Attendance-Warnings", strconv.Itoa(len(report.Warnings)))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to send workbook",
			slog.String("error", err.Error()))
	}
}

// classifyRunError keeps typed errors and cancellations as they are and
// reports anything else as an extraction failure.
func classifyRunError(err error) error {
	var appErr *apierrors.AppError
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &appErr), errors.As(err, &apiErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return apierrors.ExtractionError(err)
	}
}

// GradesResponse lists the choices of the operator form
type GradesResponse struct {
	Scheme string              `json:"scheme"`
	Grades []domain.GradeLevel `json:"grades"`
	Groups []int               `json:"groups"`
	Date   string              `json:"date_format"`
}

// Grades handles GET /api/grades
func (h *ExtractionHandler) Grades(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, GradesResponse{
		Scheme: string(h.service.Validator().Scheme()),
		Grades: h.service.Grades(),
		Groups: []int{1, 2},
		Date:   "YYYY-MM-DD",
	})
}

func formValue(form *multipart.Form, field string, index int) string {
	if v := form.Value[indexedField(field, index)]; len(v) > 0 {
		return v[0]
	}
	if v := form.Value[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func indexedField(field string, index int) string {
	return field + "[" + strconv.Itoa(index) + "]"
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}

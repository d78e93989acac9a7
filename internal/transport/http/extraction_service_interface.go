package http

import (
	"context"

	"attendcli/internal/attendance"
	"attendcli/internal/metadata"
	"attendcli/internal/services"
	"attendcli/pkg/contracts/domain"
)

// ExtractionServiceInterface defines the extraction operations the handlers use
type ExtractionServiceInterface interface {
	RunUploads(ctx context.Context, uploads []services.Upload) (*attendance.BatchReport, error)
	CheckUploadName(name string) error
	Validator() *metadata.Validator
	Grades() []domain.GradeLevel
}

var _ ExtractionServiceInterface = (*services.ExtractionService)(nil)

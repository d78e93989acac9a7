package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		want     string
	}{
		{
			name:     "simple message",
			apiError: New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format"),
			want:     "Invalid request format",
		},
		{
			name:     "empty message",
			apiError: New(http.StatusInternalServerError, "INTERNAL_ERROR", ""),
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apiError.Error())
		})
	}
}

func TestAppError(t *testing.T) {
	cause := fmt.Errorf("no text layer")
	err := NewDocumentUnreadableError("roster.pdf", cause)

	assert.Equal(t, ErrTypeDocumentUnreadable, err.Type)
	assert.Contains(t, err.Error(), "DOCUMENT_UNREADABLE")
	assert.Contains(t, err.Error(), "no text layer")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "roster.pdf", err.Context["source_file"])

	wrapped := fmt.Errorf("batch: %w", err)
	assert.True(t, IsType(wrapped, ErrTypeDocumentUnreadable))
	assert.False(t, IsType(wrapped, ErrTypeConfig))
	assert.False(t, IsType(cause, ErrTypeDocumentUnreadable))

	lineErr := NewLineUnparsableError("roster.pdf", 7, cause)
	assert.True(t, IsType(lineErr, ErrTypeLineUnparsable))
	assert.Equal(t, 7, lineErr.Context["line_number"])
	assert.Contains(t, lineErr.Error(), "could not parse name data in roster.pdf")
}

func TestErrorHandler_ErrorToProblem(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", nil)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"api validation", ErrNoDocuments, http.StatusBadRequest, TypeValidation},
		{"api too large", ErrPayloadTooLarge, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"extraction failed", ExtractionError(fmt.Errorf("backend crashed")), http.StatusInternalServerError, TypeExtractionFailed},
		{"app validation", NewAppValidationError("bad manifest"), http.StatusBadRequest, TypeValidation},
		{"app unreadable", NewDocumentUnreadableError("a.pdf", nil), http.StatusUnprocessableEntity, TypeDocumentUnreadable},
		{"plain", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := h.ErrorToProblem(tt.err, req)
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, tt.wantType, p.Type)
			assert.Equal(t, "/api/extract", p.Instance)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	req := httptest.NewRequest(http.MethodPost, "/api/extract", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, ErrValidation("grade_level", "must be one of K,1..12"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeValidation, body["type"])
	assert.Equal(t, "Request validation failed", body["detail"])
	assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, "grade_level", details["field"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusBadRequest, TypeValidation, "Bad Request", "", "").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")
	assert.NotContains(t, body, "instance")
}

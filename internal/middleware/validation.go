package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "attendcli/internal/errors"
)

// MaxBodySize rejects request bodies larger than limit bytes.
// Declared lengths are checked up front; chunked bodies fail on read.
func MaxBodySize(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				writeProblem(w, r, http.StatusRequestEntityTooLarge, apierrors.TypePayloadTooLarge,
					fmt.Sprintf("Request body exceeds maximum allowed size of %d bytes", limit))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeValidator ensures requests have proper content type
func ContentTypeValidator(contentTypes ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodDelete {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" {
				writeProblem(w, r, http.StatusBadRequest, apierrors.TypeValidation,
					"Content-Type header is required")
				return
			}

			for _, allowed := range contentTypes {
				if strings.HasPrefix(contentType, allowed) {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeProblem(w, r, http.StatusUnsupportedMediaType, apierrors.TypeUnsupported,
				fmt.Sprintf("Unsupported content type %q, expected one of: %s",
					contentType, strings.Join(contentTypes, ", ")))
		})
	}
}

// QueryParamValidator validates query parameters
type QueryParamValidator struct {
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateEnum validates an enum query parameter, case-insensitively
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(param)))
	if value == "" {
		return defaultValue, true
	}

	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}

	v.logger.DebugContext(r.Context(), "invalid query parameter",
		slog.String("param", param),
		slog.String("value", value))
	v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", "))))
	return "", false
}

package http

import (
	"net/http"

	"github.com/go-chi/render"

	apierrors "attendcli/internal/errors"
)

// MetricsHandler serves the Prometheus exposition of the OTel meter provider
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a metrics handler. A nil handler means metrics
// are disabled and the endpoint answers 503.
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		render.Render(w, r, apierrors.NewProblemDetails(
			http.StatusServiceUnavailable,
			apierrors.TypeServiceDown,
			http.StatusText(http.StatusServiceUnavailable),
			"metrics exporter is disabled",
			r.URL.Path,
		))
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

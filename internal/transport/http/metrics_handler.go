package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the OpenTelemetry Prometheus exporter handler.
// Without one it serves the default Prometheus registry.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	if exporter == nil {
		exporter = promhttp.Handler()
	}
	return &MetricsHandler{exporter: exporter}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.exporter.ServeHTTP(w, r)
}

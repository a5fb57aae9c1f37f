package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"crpdash/internal/services"
)

// HealthHandler serves the ungated probe and version endpoints
type HealthHandler struct {
	service *services.HealthService
	logger  *slog.Logger
}

// NewHealthHandler creates the probe handler
func NewHealthHandler(service *services.HealthService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck handles GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	probe(w, r, h.service.HealthCheck(r.Context()))
}

// ReadinessCheck handles GET /api/health/ready and answers 503 while no
// dataset snapshot is served.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.ReadinessCheck(r.Context())
	if status.Status != "ready" {
		h.logger.WarnContext(r.Context(), "not ready", slog.Any("services", status.Services))
		render.Status(r, http.StatusServiceUnavailable)
	}
	probe(w, r, status)
}

// LivenessCheck handles GET /api/health/live
func (h *HealthHandler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	probe(w, r, h.service.LivenessCheck(r.Context()))
}

// Version handles GET /api/version
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Version())
}

// probe answers must never come from a cache
func probe(w http.ResponseWriter, r *http.Request, body interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	render.JSON(w, r, body)
}

package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"crpdash/internal/charts"
	apierrors "crpdash/internal/errors"
	"crpdash/internal/exporter"
	"crpdash/internal/middleware"
)

// Dashboard paths
const (
	DisabilityChartPath = "/charts/disability.png"
	ExportPath          = "/api/records/export.csv"
)

// DashboardOptions holds presentation settings
type DashboardOptions struct {
	RawTableLimit int
	ChartSize     charts.Size
}

// DashboardHandler serves the dashboard page and its chart
type DashboardHandler struct {
	service      DatasetService
	pages        *Pages
	opts         DashboardOptions
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDashboardHandler creates the dashboard handler
func NewDashboardHandler(service DatasetService, pages *Pages, opts DashboardOptions, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		pages:        pages,
		opts:         opts,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Dashboard handles GET /
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sel, err := ParseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	showRaw, err := parseFlag(r.URL.Query(), ParamRaw)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, view, err := h.service.Summary(ctx, sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	options, err := h.service.Options(ctx)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	query := SelectionQuery(sel)
	page := DashboardPage{
		Selection: sel,
		Options:   options,
		Summary:   summary,
		Dataset:   h.service.Status(),
		ChartURL:  withQuery(DisabilityChartPath, query),
		ExportURL: withQuery(ExportPath, query),
		ShowRaw:   showRaw,
	}
	if s, ok := middleware.SessionFromContext(ctx); ok {
		page.User = s.Username
	}

	if showRaw {
		var headers []string
		if ds := view.Dataset(); ds != nil {
			headers = ds.Headers
		}
		page.RawHeaders = exporter.RecordHeaders(headers)
		for _, rec := range view.Page(0, h.opts.RawTableLimit) {
			page.RawRows = append(page.RawRows, exporter.RecordRow(&rec, headers))
		}
	}

	if err := h.pages.RenderDashboard(w, page); err != nil {
		h.errorHandler.HandleError(w, r, err)
	}
}

// DisabilityChart handles GET /charts/disability.png
func (h *DashboardHandler) DisabilityChart(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, _, err := h.service.Summary(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderDisabilityPNG(&buf, summary.Disability, h.opts.ChartSize); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render chart", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

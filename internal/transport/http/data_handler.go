package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "crpdash/internal/errors"
	"crpdash/internal/exporter"
	"crpdash/internal/middleware"
	"crpdash/pkg/contracts/domain"
)

// DefaultRecordLimit applies when GET /api/records has no limit
const DefaultRecordLimit = 100

// ExportFilename is the download name of the CSV export
const ExportFilename = "crpd-records.csv"

// Pagination is the paging part of GET /api/records. At most 1000 records
// are served per page.
type Pagination struct {
	Limit  int `json:"limit" validate:"gte=1,lte=1000"`
	Offset int `json:"offset" validate:"gte=0"`
}

// RecordResponse is one record as served by the API
type RecordResponse struct {
	domain.Record
	DateOfBirth string `json:"date_of_birth"`
}

// DataHandler serves the JSON API over the dataset
type DataHandler struct {
	service      DatasetService
	validator    *middleware.Validator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DatasetService, validator *middleware.Validator, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *DataHandler {
	return &DataHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/options", h.GetOptions)
	r.Get("/summary", h.GetSummary)
	r.Get("/records", h.GetRecords)
	r.Get("/records/export.csv", h.ExportRecords)
	r.Post("/dataset/reload", h.ReloadDataset)

	return r
}

// GetOptions handles GET /api/options
func (h *DataHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.Options(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   options,
	})
}

// GetSummary handles GET /api/summary
func (h *DataHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
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

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetRecords handles GET /api/records
func (h *DataHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	page, err := h.parsePagination(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Query(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records := view.Page(page.Offset, page.Limit)
	data := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		data = append(data, RecordResponse{Record: rec, DateOfBirth: rec.DateOfBirth.String()})
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
		"count":  len(data),
		"total":  view.Len(),
		"offset": page.Offset,
		"limit":  page.Limit,
	})
}

// ExportRecords handles GET /api/records/export.csv
func (h *DataHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Query(r.Context(), sel)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Header().Set("Cache-Control", "no-store")

	// headers are already out, so failures can only be logged
	if err := exporter.ExportView(r.Context(), w, view); err != nil {
		h.logger.ErrorContext(r.Context(), "export interrupted",
			slog.String("error", err.Error()),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.Int("records", view.Len()))
	}
}

// ReloadDataset handles POST /api/dataset/reload
func (h *DataHandler) ReloadDataset(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", chimiddleware.GetReqID(r.Context())))

	if _, err := h.service.Load(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Status(),
	})
}

func (h *DataHandler) parsePagination(r *http.Request) (Pagination, error) {
	q := r.URL.Query()
	p := Pagination{Limit: DefaultRecordLimit}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apierrors.InvalidParameter("limit", v)
		}
		p.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apierrors.InvalidParameter("offset", v)
		}
		p.Offset = n
	}

	if err := h.validator.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

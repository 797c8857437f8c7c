package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-stats/internal/models"
	"weather-stats/internal/repository"
	"weather-stats/internal/services"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// ReportHandler handles stored report endpoints
type ReportHandler struct {
	weatherService *services.WeatherService
	reportService  *services.ReportService
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewReportHandler creates a new report handler
func NewReportHandler(
	weatherService *services.WeatherService,
	reportService *services.ReportService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *ReportHandler {
	return &ReportHandler{
		weatherService: weatherService,
		reportService:  reportService,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// CreateReportRequest is the body of POST /api/reports. When Dates is empty
// the report covers every date in the dataset.
type CreateReportRequest struct {
	Name  string        `json:"name"`
	Dates []models.Date `json:"dates"`
}

// CreateReport handles POST /api/reports
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/reports"
	ctx := r.Context()
	defer observe(h.metrics, endpoint, time.Now())

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, h.metrics, endpoint, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		sendError(w, h.metrics, endpoint, r, "name is required", http.StatusBadRequest)
		return
	}

	report := h.reportService.Build(h.weatherService.Dataset(), req.Name, h.weatherService.Source(), req.Dates...)
	if err := h.reportService.Save(ctx, report); err != nil {
		h.storeError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "POST", "201")
	sendJSON(w, report, http.StatusCreated)
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/reports"
	defer observe(h.metrics, endpoint, time.Now())

	page, limit := pagination(r)
	reports, err := h.reportService.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.storeError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	sendJSON(w, reports, http.StatusOK)
}

// GetReport handles GET /api/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/reports/{id}"
	defer observe(h.metrics, endpoint, time.Now())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, h.metrics, endpoint, r, "id must be an integer", http.StatusBadRequest)
		return
	}

	report, err := h.reportService.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	sendJSON(w, report, http.StatusOK)
}

// DeleteReport handles DELETE /api/reports/{id}
func (h *ReportHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/reports/{id}"
	defer observe(h.metrics, endpoint, time.Now())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, h.metrics, endpoint, r, "id must be an integer", http.StatusBadRequest)
		return
	}

	if err := h.reportService.Delete(r.Context(), id); err != nil {
		h.storeError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "DELETE", "204")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) storeError(w http.ResponseWriter, r *http.Request, endpoint string, err error) {
	var notFound *repository.NotFoundError
	switch {
	case errors.As(err, &notFound):
		sendError(w, h.metrics, endpoint, r, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNoStore):
		sendError(w, h.metrics, endpoint, r, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error(r.Context(), "[API_REPORT_ERROR] Report store request failed", logging.Fields{
			"endpoint": endpoint,
			"method":   r.Method,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		sendError(w, h.metrics, endpoint, r, "failed to access report store", http.StatusInternalServerError)
	}
}

// RegisterRoutes registers all report API routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/reports", h.CreateReport).Methods("POST")
	router.HandleFunc("/api/reports", h.ListReports).Methods("GET")
	router.HandleFunc("/api/reports/{id}", h.GetReport).Methods("GET")
	router.HandleFunc("/api/reports/{id}", h.DeleteReport).Methods("DELETE")
}

package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-stats/internal/models"
	"weather-stats/internal/services"
	"weather-stats/pkg/logging"
	"weather-stats/pkg/metrics"
)

// WeatherHandler handles weather API endpoints
type WeatherHandler struct {
	weatherService *services.WeatherService
	logger         *logging.StructuredLogger
	metrics        *metrics.Collector
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(
	weatherService *services.WeatherService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *WeatherHandler {
	return &WeatherHandler{
		weatherService: weatherService,
		logger:         logger,
		metrics:        metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// RecordResponse is one record with its position in the dataset
type RecordResponse struct {
	Index  int                  `json:"index"`
	Record models.WeatherRecord `json:"record"`
}

// ExtremeResponse is the answer to an extremum query
type ExtremeResponse struct {
	Query  string               `json:"query"`
	Record models.WeatherRecord `json:"record"`
}

// InsolationResponse is the insolation on one date
type InsolationResponse struct {
	Date   models.Date `json:"date"`
	Energy float64     `json:"energy_j_per_m2"`
	Hours  int         `json:"hours"`
}

// GetSummary handles GET /api/summary
func (h *WeatherHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	defer observe(h.metrics, "/api/summary", time.Now())

	h.metrics.RecordAPIRequest("/api/summary", "GET", "200")
	sendJSON(w, h.weatherService.Summary(), http.StatusOK)
}

// GetRecords handles GET /api/records
func (h *WeatherHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	defer observe(h.metrics, "/api/records", time.Now())

	page, limit := pagination(r)
	records, total := h.weatherService.Records((page-1)*limit, limit)

	response := PaginatedResponse{
		Data:       records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/records", "GET", "200")
	sendJSON(w, response, http.StatusOK)
}

// GetRecord handles GET /api/records/{index}
func (h *WeatherHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/records/{index}"
	defer observe(h.metrics, endpoint, time.Now())

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		sendError(w, h.metrics, endpoint, r, "index must be an integer", http.StatusBadRequest)
		return
	}

	record, err := h.weatherService.Record(index)
	if err != nil {
		h.metrics.RecordAPIError("not_found", endpoint)
		sendError(w, h.metrics, endpoint, r, err.Error(), http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	sendJSON(w, RecordResponse{Index: index, Record: record}, http.StatusOK)
}

// GetExtreme handles GET /api/extremes/{query}
func (h *WeatherHandler) GetExtreme(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/extremes/{query}"
	defer observe(h.metrics, endpoint, time.Now())

	query := mux.Vars(r)["query"]
	record, ok, err := h.weatherService.Extreme(query)
	if err != nil {
		h.metrics.RecordAPIError("unknown_query", endpoint)
		sendError(w, h.metrics, endpoint, r, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		sendError(w, h.metrics, endpoint, r, "no record has this measurement", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	sendJSON(w, ExtremeResponse{Query: query, Record: record}, http.StatusOK)
}

// GetInsolation handles GET /api/insolation/{date}
func (h *WeatherHandler) GetInsolation(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/api/insolation/{date}"
	defer observe(h.metrics, endpoint, time.Now())

	date, err := models.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		sendError(w, h.metrics, endpoint, r, "invalid date format, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	result, ok := h.weatherService.Insolation(date)
	if !ok {
		sendError(w, h.metrics, endpoint, r, "date not found in dataset", http.StatusNotFound)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, "GET", "200")
	sendJSON(w, InsolationResponse{Date: date, Energy: result.Energy, Hours: result.Hours}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *WeatherHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"records":   h.weatherService.Dataset().Size(),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	sendJSON(w, status, http.StatusOK)
}

// RegisterRoutes registers all weather API routes
func (h *WeatherHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/records", h.GetRecords).Methods("GET")
	router.HandleFunc("/api/records/{index}", h.GetRecord).Methods("GET")
	router.HandleFunc("/api/extremes/{query}", h.GetExtreme).Methods("GET")
	router.HandleFunc("/api/insolation/{date}", h.GetInsolation).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}

// pagination reads page and limit, defaulting to 1 and 100.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 100

	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}
	// (page-1)*limit must fit in an int.
	page = min(page, math.MaxInt/limit)
	return page, limit
}

func observe(m *metrics.Collector, endpoint string, start time.Time) {
	m.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// sendJSON sends a JSON response
func sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func sendError(w http.ResponseWriter, m *metrics.Collector, endpoint string, r *http.Request, message string, statusCode int) {
	m.RecordAPIRequest(endpoint, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	sendJSON(w, response, statusCode)
}

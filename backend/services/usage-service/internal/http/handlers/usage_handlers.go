package handlers

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/service"
)

// UsageHandlers exposes recording and the analytics endpoints.
type UsageHandlers struct {
	svc    *service.UsageService
	logger *zap.Logger
}

// NewUsageHandlers returns handler.
func NewUsageHandlers(svc *service.UsageService, logger *zap.Logger) *UsageHandlers {
	return &UsageHandlers{svc: svc, logger: logger}
}

// Create handles POST /api/usage.
func (h *UsageHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.RecordInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := h.svc.Record(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"entry": entry})
}

// List handles GET /api/usage with optional month and year.
func (h *UsageHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	period, err := periodFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := h.svc.Report(r.Context(), userID, period)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type predictionResponse struct {
	Predictions []analytics.Prediction `json:"predictions"`
	Message     string                 `json:"message,omitempty"`
	Slope       *float64               `json:"slope,omitempty"`
	Intercept   *float64               `json:"intercept,omitempty"`
	DataPoints  int                    `json:"dataPoints"`
}

// Predict handles GET /api/predict-usage.
func (h *UsageHandlers) Predict(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	forecast, err := h.svc.Predict(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	resp := predictionResponse{
		Predictions: forecast.Predictions,
		Message:     forecast.Message,
		DataPoints:  forecast.DataPoints,
	}
	if forecast.Sufficient() {
		resp.Slope = &forecast.Slope
		resp.Intercept = &forecast.Intercept
	}
	writeJSON(w, http.StatusOK, resp)
}

// Tips handles GET /api/energy-tips.
func (h *UsageHandlers) Tips(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tips, err := h.svc.Tips(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tips": tips})
}

type billRequest struct {
	Month      int      `json:"month"`
	Year       int      `json:"year"`
	RatePerKWh *float64 `json:"ratePerKwh"`
}

// Bill handles POST /api/calculate-bill.
func (h *UsageHandlers) Bill(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	calc := analytics.BillRequest{Month: req.Month, Year: req.Year}
	if req.RatePerKWh != nil {
		rate := *req.RatePerKWh
		if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			writeError(w, http.StatusBadRequest, "ratePerKwh must be a positive number")
			return
		}
		calc.RatePerKWh = rate
	}

	bill, err := h.svc.Bill(r.Context(), userID, calc)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bill": bill})
}

// ExportCSV handles GET /api/export-csv.
func (h *UsageHandlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	// Buffer so a store failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.ExportCSV(r.Context(), userID, &buf); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="energy-usage.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func periodFromQuery(r *http.Request) (*analytics.Period, error) {
	q := r.URL.Query()
	rawMonth, rawYear := q.Get("month"), q.Get("year")
	if rawMonth == "" && rawYear == "" {
		return nil, nil
	}
	if rawMonth == "" || rawYear == "" {
		return nil, fmt.Errorf("month and year must be given together")
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil {
		return nil, fmt.Errorf("invalid month %q", rawMonth)
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return nil, fmt.Errorf("invalid year %q", rawYear)
	}
	return &analytics.Period{Month: month, Year: year}, nil
}

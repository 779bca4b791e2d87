package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/analytics"
	"energydash/backend/services/usage-service/internal/http/middleware"
	"energydash/backend/services/usage-service/internal/models"
	"energydash/backend/services/usage-service/internal/service"
)

const (
	maxBodyBytes = 1 << 20
	// retryAfterSeconds is advertised on 503 responses for reads.
	retryAfterSeconds = "5"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(r *http.Request, target interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrDataIntegrity):
		logger.Warn("stored data rejected", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "entry already exists")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		logger.Error("upstream unavailable", zap.String("path", r.URL.Path), zap.Error(err))
		if r.Method == http.MethodGet {
			w.Header().Set("Retry-After", retryAfterSeconds)
		}
		writeError(w, http.StatusServiceUnavailable, "upstream service unavailable")
	case errors.Is(err, analytics.ErrComputation):
		logger.Error("computation failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "prediction could not be computed")
	default:
		logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

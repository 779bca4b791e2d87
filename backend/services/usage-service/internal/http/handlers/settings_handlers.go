package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/service"
)

// SettingsHandlers serves goal and alert preferences.
type SettingsHandlers struct {
	svc    *service.SettingsService
	logger *zap.Logger
}

// NewSettingsHandlers returns handler.
func NewSettingsHandlers(svc *service.SettingsService, logger *zap.Logger) *SettingsHandlers {
	return &SettingsHandlers{svc: svc, logger: logger}
}

// GetGoal handles GET /api/goal.
func (h *SettingsHandlers) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	goal, err := h.svc.Goal(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"goal": goal})
}

// PutGoal handles PUT /api/goal.
func (h *SettingsHandlers) PutGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.GoalInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, err := h.svc.SetGoal(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"goal": goal})
}

// GetAlerts handles GET /api/alerts.
func (h *SettingsHandlers) GetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	alerts, err := h.svc.Alerts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// PutAlerts handles PUT /api/alerts.
func (h *SettingsHandlers) PutAlerts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.AlertsInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := h.svc.SetAlerts(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

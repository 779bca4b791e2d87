package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/clients"
	"energydash/backend/services/usage-service/internal/kvstore"
	"energydash/backend/services/usage-service/internal/service"
)

func TestGoalAndAlertsEndpoints(t *testing.T) {
	store, err := kvstore.OpenBoltStore(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	h := NewSettingsHandlers(service.NewSettingsService(store, 0, zap.NewNop()), zap.NewNop())

	rr := httptest.NewRecorder()
	h.GetGoal(rr, authed(http.MethodGet, "/api/goal", "", "alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0.0, decode(t, rr)["goal"].(map[string]interface{})["monthlyTargetKwh"])

	rr = httptest.NewRecorder()
	h.PutGoal(rr, authed(http.MethodPut, "/api/goal", `{"monthlyTargetKwh":320,"monthlyBudget":50}`, "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.GetGoal(rr, authed(http.MethodGet, "/api/goal", "", "alice"))
	assert.Equal(t, 320.0, decode(t, rr)["goal"].(map[string]interface{})["monthlyTargetKwh"])

	rr = httptest.NewRecorder()
	h.PutAlerts(rr, authed(http.MethodPut, "/api/alerts", `{"enabled":true,"dailyThresholdKwh":0}`, "alice"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.PutAlerts(rr, authed(http.MethodPut, "/api/alerts", `{"enabled":true,"dailyThresholdKwh":35,"email":"alice@example.com"}`, "alice"))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.GetAlerts(rr, authed(http.MethodGet, "/api/alerts", "", "alice"))
	alerts := decode(t, rr)["alerts"].(map[string]interface{})
	assert.Equal(t, true, alerts["enabled"])
	assert.Equal(t, "alice@example.com", alerts["email"])
}

type stubLLM struct{ err error }

func (s stubLLM) Complete(context.Context, []clients.ChatMessage) (string, error) {
	return "Use the dishwasher at night.", s.err
}

func TestChatEndpoint(t *testing.T) {
	usage := newUsageHandlers(t)
	h := NewChatHandler(service.NewAssistantService(usage.svc, stubLLM{}, 0, zap.NewNop()), zap.NewNop())

	rr := httptest.NewRecorder()
	h.Chat(rr, authed(http.MethodPost, "/api/chat", `{"message":"tips?"}`, "alice"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Use the dishwasher at night.", decode(t, rr)["reply"])

	rr = httptest.NewRecorder()
	h.Chat(rr, authed(http.MethodPost, "/api/chat", `{"message":""}`, "alice"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h = NewChatHandler(service.NewAssistantService(usage.svc, stubLLM{err: context.DeadlineExceeded}, 0, zap.NewNop()), zap.NewNop())
	rr = httptest.NewRecorder()
	h.Chat(rr, authed(http.MethodPost, "/api/chat", `{"message":"tips?"}`, "alice"))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, rr.Header().Get("Retry-After"))
}

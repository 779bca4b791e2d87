package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/service"
)

// ChatHandler relays questions to the assistant.
type ChatHandler struct {
	svc    *service.AssistantService
	logger *zap.Logger
}

// NewChatHandler returns handler.
func NewChatHandler(svc *service.AssistantService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{svc: svc, logger: logger}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := h.svc.Reply(r.Context(), userID, req.Message)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

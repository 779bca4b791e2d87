package handlers

import (
	"net/http"

	"energydash/backend/services/usage-service/internal/ws"
)

// LiveHandler upgrades GET /api/usage/live to a websocket feed of the caller's new entries.
type LiveHandler struct {
	server *ws.Server
}

// NewLiveHandler returns handler.
func NewLiveHandler(server *ws.Server) *LiveHandler {
	return &LiveHandler{server: server}
}

// Live handles GET /api/usage/live.
func (h *LiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	h.server.ServeUser(w, r, userID)
}

// Package ws pushes each user's newly recorded entries to their open websocket connections.
package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/models"
)

// Hub tracks live connections per user.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]map[*Connection]struct{}
	logger *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]map[*Connection]struct{}),
		logger: logger,
	}
}

// Add registers a connection.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[conn.UserID()]
	if !ok {
		set = make(map[*Connection]struct{})
		h.conns[conn.UserID()] = set
	}
	set[conn] = struct{}{}
}

// Remove unregisters a connection.
func (h *Hub) Remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.conns[conn.UserID()]
	delete(set, conn)
	if len(set) == 0 {
		delete(h.conns, conn.UserID())
	}
}

// Count returns the number of open connections of the user.
func (h *Hub) Count(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// CloseAll says goodbye to every open connection. Hijacked sockets outlive http.Server
// shutdown, so the app calls this when it stops.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var targets []*Connection
	for _, set := range h.conns {
		for conn := range set {
			targets = append(targets, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range targets {
		conn.Close()
	}
}

// Broadcast sends the entry to every connection of its owner.
func (h *Hub) Broadcast(entry models.UsageEntry) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.conns[entry.UserID]))
	for conn := range h.conns[entry.UserID] {
		targets = append(targets, conn)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		h.logger.Warn("failed to encode live entry", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}
	for _, conn := range targets {
		conn.Send(payload)
	}
}

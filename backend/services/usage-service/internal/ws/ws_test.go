package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"energydash/backend/services/usage-service/internal/models"
)

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubDeliversEntriesToOwnerOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := NewServer(hub, time.Second, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.ServeUser(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")

	require.Eventually(t, func() bool {
		return hub.Count("alice") == 1 && hub.Count("bob") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(models.UsageEntry{ID: "e1", UserID: "alice", Usage: 3.5, Appliance: "HVAC"})

	require.NoError(t, alice.SetReadDeadline(time.Now().Add(time.Second)))
	_, msg, err := alice.ReadMessage()
	require.NoError(t, err)
	var got models.UsageEntry
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "e1", got.ID)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = bob.ReadMessage()
	assert.Error(t, err)
}

func TestHubRemovesClosedConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := NewServer(hub, time.Second, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.ServeUser(w, r, "carol")
	}))
	defer srv.Close()

	conn := dial(t, srv, "carol")
	require.Eventually(t, func() bool { return hub.Count("carol") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Count("carol") == 0 }, time.Second, 10*time.Millisecond)

	// Broadcasting with no subscribers is a no-op.
	hub.Broadcast(models.UsageEntry{UserID: "carol"})
}

func TestHubCloseAllDisconnectsClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := NewServer(hub, time.Second, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		server.ServeUser(w, r, r.URL.Query().Get("user"))
	}))
	defer srv.Close()

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	require.Eventually(t, func() bool {
		return hub.Count("alice") == 1 && hub.Count("bob") == 1
	}, time.Second, 10*time.Millisecond)

	hub.CloseAll()

	assert.Equal(t, 0, hub.Count("alice"))
	assert.Equal(t, 0, hub.Count("bob"))
	for _, conn := range []*websocket.Conn{alice, bob} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, _, err := conn.ReadMessage()
		assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
	}
}

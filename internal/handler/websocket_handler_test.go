package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTokenValidator is a test double for ID token validation
type mockTokenValidator struct {
	userID int32
	err    error
}

func (m *mockTokenValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	return m.userID, m.err
}

var testAllowedOrigins = []string{"http://localhost:3000", "https://fopilot.app"}

func TestWebSocketHandler_HandleWS_MissingToken(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	validator := &mockTokenValidator{userID: 1}
	h := NewWebSocketHandler(hub, validator, testAllowedOrigins)

	// Request without token
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	// Should return 401 for missing token
	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_InvalidToken(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	validator := &mockTokenValidator{err: websocket.ErrInvalidToken}
	h := NewWebSocketHandler(hub, validator, testAllowedOrigins)

	// Request with invalid token
	req := httptest.NewRequest(http.MethodGet, "/ws?token=invalid-jwt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	// Should return 401 for invalid token
	assert.Error(t, err)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestWebSocketHandler_HandleWS_ValidToken_NoUpgrade(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	validator := &mockTokenValidator{userID: 42}
	h := NewWebSocketHandler(hub, validator, testAllowedOrigins)

	// Request with valid token but not a WebSocket upgrade request
	req := httptest.NewRequest(http.MethodGet, "/ws?token=valid-jwt", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	// gorilla/websocket returns an error when upgrade fails (no upgrade headers)
	// This is expected behavior - we're testing auth passes first
	assert.Error(t, err)
	// The error should be about upgrade failure, not auth
	assert.NotContains(t, err.Error(), "unauthorized")
}

func TestWebSocketHandler_CheckOrigin(t *testing.T) {
	hub := websocket.NewHub()
	validator := &mockTokenValidator{userID: 1}
	h := NewWebSocketHandler(hub, validator, testAllowedOrigins)

	tests := []struct {
		name     string
		origin   string
		expected bool
	}{
		{"allowed origin", "http://localhost:3000", true},
		{"allowed origin https", "https://fopilot.app", true},
		{"disallowed origin", "https://evil.com", false},
		{"empty origin (same-origin)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			result := h.checkOrigin(req)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestWebSocketHandler_HandleWS_RegistersClientForUser(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	defer hub.CloseAll()
	h := NewWebSocketHandler(hub, &mockTokenValidator{userID: 7}, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)

	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid"
	conn, resp, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	assert.Eventually(t, func() bool {
		return hub.ClientCount(7) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount(1))
}

type idleClient struct {
	id     string
	userID int32
}

func (c *idleClient) ID() string             { return c.id }
func (c *idleClient) UserID() int32          { return c.userID }
func (c *idleClient) Send(data []byte) error { return nil }
func (c *idleClient) Close() error           { return nil }

func TestWebSocketHandler_HandleWS_TooManyConnections(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	for i := 0; i < MaxConnectionsPerUser; i++ {
		hub.Register(&idleClient{id: fmt.Sprintf("tab-%d", i), userID: 7})
	}
	h := NewWebSocketHandler(hub, &mockTokenValidator{userID: 7}, testAllowedOrigins)

	req := httptest.NewRequest(http.MethodGet, "/ws?token=valid", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.HandleWS(c)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.Code)
	assert.Equal(t, MaxConnectionsPerUser, hub.ClientCount(7))
}

func TestWebSocketHandler_HandleWS_DeliversHeldReminder(t *testing.T) {
	e := echo.New()
	hub := websocket.NewHub()
	defer hub.CloseAll()
	h := NewWebSocketHandler(hub, &mockTokenValidator{userID: 7}, testAllowedOrigins)
	e.GET("/ws", h.HandleWS)

	due := time.Now().UTC().AddDate(0, 0, 3)
	hub.Publish(7, websocket.DeadlineReminder("esv-test", due, map[string]string{"eventId": "esv-test"}))
	require.Equal(t, 1, hub.PendingReminders(7))

	server := httptest.NewServer(e)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=valid"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event map[string]interface{}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "deadline.reminder", event["type"])
	assert.Zero(t, hub.PendingReminders(7))

	// acknowledging from the socket echoes the dismissal to the user's tabs
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "reminder.ack", "eventId": "esv-test"}))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "deadline.acknowledged", event["type"])
}

package handler

import (
	"context"
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// MaxConnectionsPerUser caps the open tabs of one FOP; held reminders go to the first to connect
const MaxConnectionsPerUser = 5

// TokenValidator validates an ID token and returns the user it belongs to
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID int32, err error)
}

// WebSocketHandler upgrades authenticated FOPs to the live update and reminder channel
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      TokenValidator
	allowedOrigins map[string]bool
	maxPerUser     int
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator TokenValidator, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: originMap,
		maxPerUser:     MaxConnectionsPerUser,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS godoc
// @Summary Open the live update channel
// @Description Upgrades to a WebSocket that pushes income, expense, document and deadline reminder events.
// @Description Reminders published while the user was offline are delivered on connect. Send {"type":"reminder.ack","eventId":"..."} to dismiss one.
// @Tags websocket
// @Param token query string true "Firebase ID token"
// @Success 101 "Switching Protocols"
// @Failure 401 {string} string "missing or invalid token"
// @Failure 429 {string} string "too many connections"
// @Router /ws [get]
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	// Get token from query parameter
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	userID, err := h.validator.ValidateToken(c.Request().Context(), token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	if h.hub.ClientCount(userID) >= h.maxPerUser {
		log.Warn().Int32("user_id", userID).Int("limit", h.maxPerUser).Msg("WebSocket connection rejected: too many connections")
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many connections")
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	// Registering flushes held reminders into the send buffer before the pumps start
	client := websocket.NewClient(conn, userID, h.hub)
	h.hub.Register(client)

	log.Info().
		Int32("user_id", userID).
		Str("client_id", client.ID()).
		Int("user_connections", h.hub.ClientCount(userID)).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}

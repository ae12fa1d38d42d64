package websocket

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() int32
	Send(data []byte) error
	Close() error
}

// Hub routes events to the open connections of each FOP.
// A deadline reminder published while the user has no connection is held, one per tax event,
// and delivered when the user next connects unless its due day has passed or it was acknowledged.
// It is safe for concurrent use.
type Hub struct {
	// users maps user ID to a map of client ID to client
	users map[int32]map[string]ClientInterface
	// pending maps user ID to held reminders keyed by tax event ID
	pending map[int32]map[string]Event
	now     func() time.Time
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users:   make(map[int32]map[string]ClientInterface),
		pending: make(map[int32]map[string]Event),
		now:     time.Now,
	}
}

// Register adds a client to the hub under its user and hands it the reminders held for that user
func (h *Hub) Register(client ClientInterface) {
	userID := client.UserID()
	clientID := client.ID()

	h.mu.Lock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	h.users[userID][clientID] = client
	held := h.takePending(userID)
	h.mu.Unlock()

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", clientID).
		Int("held_reminders", len(held)).
		Msg("WebSocket client registered")

	for _, event := range held {
		data, err := event.ToJSON()
		if err != nil {
			continue
		}
		if err := client.Send(data); err != nil {
			log.Warn().Err(err).Int32("user_id", userID).Str("event_id", event.ReminderKey()).Msg("Failed to deliver held reminder")
		}
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	if clients, ok := h.users[userID]; ok {
		if _, exists := clients[clientID]; exists {
			delete(clients, clientID)

			if len(clients) == 0 {
				delete(h.users, userID)
			}

			log.Debug().
				Int32("user_id", userID).
				Str("client_id", clientID).
				Msg("WebSocket client unregistered")
		}
	}
}

// Broadcast sends an event to every connection of a user
func (h *Hub) Broadcast(userID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	clients := h.recipients(userID, event)
	if len(clients) == 0 {
		return
	}

	// Send outside the lock, a slow client must not stall the others
	for _, client := range clients {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("user_id", userID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(clients)).
		Msg("Broadcast event")
}

// recipients snapshots the user's connections. A reminder for a user without any is held instead.
func (h *Hub) recipients(userID int32, event Event) []ClientInterface {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.users[userID]
	if key := event.ReminderKey(); key != "" {
		if len(clients) == 0 {
			h.hold(userID, key, event)
			return nil
		}
		h.dropPending(userID, key)
	}

	result := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		result = append(result, client)
	}
	return result
}

// AcknowledgeReminder dismisses the reminder about eventID for the user, held or delivered,
// and tells the user's other connections to hide it
func (h *Hub) AcknowledgeReminder(userID int32, eventID string) {
	h.mu.Lock()
	h.dropPending(userID, eventID)
	h.mu.Unlock()

	log.Debug().Int32("user_id", userID).Str("event_id", eventID).Msg("Reminder acknowledged")
	h.Broadcast(userID, ReminderAcknowledged(eventID))
}

// PendingReminders returns how many reminders are held for a user
func (h *Hub) PendingReminders(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.pending[userID])
}

// hold keeps the latest reminder per tax event, so the due-today one replaces the early one
func (h *Hub) hold(userID int32, key string, event Event) {
	held := h.pending[userID]
	if held == nil {
		held = make(map[string]Event)
		h.pending[userID] = held
	}
	now := h.now()
	for k, e := range held {
		if e.Expired(now) {
			delete(held, k)
		}
	}
	if !event.Expired(now) {
		held[key] = event
	}
	if len(held) == 0 {
		delete(h.pending, userID)
	}
}

func (h *Hub) dropPending(userID int32, key string) {
	held, ok := h.pending[userID]
	if !ok {
		return
	}
	delete(held, key)
	if len(held) == 0 {
		delete(h.pending, userID)
	}
}

// takePending removes the user's held reminders and returns the live ones, earliest deadline first
func (h *Hub) takePending(userID int32) []Event {
	held, ok := h.pending[userID]
	if !ok {
		return nil
	}
	delete(h.pending, userID)

	now := h.now()
	events := make([]Event, 0, len(held))
	for _, e := range held {
		if !e.Expired(now) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].expiresAt.Equal(events[j].expiresAt) {
			return events[i].expiresAt.Before(events[j].expiresAt)
		}
		return events[i].reminderKey < events[j].reminderKey
	})
	return events
}

// ClientCount returns the number of open connections of a user
func (h *Hub) ClientCount(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if clients, ok := h.users[userID]; ok {
		return len(clients)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.users {
		total += len(clients)
	}
	return total
}

// CloseAll closes every connection, used on shutdown. Held reminders are discarded.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]ClientInterface, 0)
	for _, userClients := range h.users {
		for _, client := range userClients {
			clients = append(clients, client)
		}
	}
	h.users = make(map[int32]map[string]ClientInterface)
	h.pending = make(map[int32]map[string]Event)
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.Close(); err != nil {
			log.Debug().Err(err).Str("client_id", client.ID()).Msg("Error closing WebSocket client")
		}
	}

	if len(clients) > 0 {
		log.Info().Int("client_count", len(clients)).Msg("Closed WebSocket clients")
	}
}

package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated      EventType = "created"
	EventTypeDeleted      EventType = "deleted"
	EventTypeReminder     EventType = "reminder"
	EventTypeAcknowledged EventType = "acknowledged"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeIncome   EntityType = "income"
	EntityTypeExpense  EntityType = "expense"
	EntityTypeDocument EntityType = "document"
	EntityTypeDeadline EntityType = "deadline"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // Combined type e.g. "income.created"
	Entity    EntityType  `json:"entity"`    // Entity type e.g. "income"
	Payload   interface{} `json:"payload"`   // Full entity data
	Timestamp time.Time   `json:"timestamp"` // Event timestamp

	// reminderKey is the tax event ID of a deadline reminder, empty for other events
	reminderKey string
	// expiresAt is the end of the due day, a held reminder is dropped after it
	expiresAt time.Time
}

// ReminderKey returns the tax event ID a deadline reminder is about
func (e Event) ReminderKey() string {
	return e.reminderKey
}

// Expired reports whether a reminder's deadline day has passed at now
func (e Event) Expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// IncomeCreated creates an income.created event
func IncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeIncome, payload)
}

// IncomeDeleted creates an income.deleted event
func IncomeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeIncome, payload)
}

// ExpenseCreated creates an expense.created event
func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

// ExpenseDeleted creates an expense.deleted event
func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// DocumentCreated creates a document.created event
func DocumentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeDocument, payload)
}

// DocumentDeleted creates a document.deleted event
func DocumentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeDocument, payload)
}

// DeadlineReminder creates a deadline.reminder event for the tax event eventID due on due.
// The hub holds it for a user without open connections until the due day ends.
func DeadlineReminder(eventID string, due time.Time, payload interface{}) Event {
	evt := NewEvent(EventTypeReminder, EntityTypeDeadline, payload)
	evt.reminderKey = eventID
	evt.expiresAt = due.AddDate(0, 0, 1)
	return evt
}

// ReminderAck is the payload of a deadline.acknowledged event
type ReminderAck struct {
	EventID string `json:"eventId"`
}

// ReminderAcknowledged creates a deadline.acknowledged event so other tabs hide the reminder
func ReminderAcknowledged(eventID string) Event {
	return NewEvent(EventTypeAcknowledged, EntityTypeDeadline, ReminderAck{EventID: eventID})
}

package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeIncome, payload)
	after := time.Now()

	assert.Equal(t, "income.created", evt.Type)
	assert.Equal(t, EntityTypeIncome, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := NewEvent(EventTypeReminder, EntityTypeDeadline, map[string]interface{}{"daysLeft": float64(2)})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "deadline.reminder", decoded["type"])
	assert.Equal(t, "deadline", decoded["entity"])
	assert.NotNil(t, decoded["payload"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(1)}

	tests := []struct {
		name   string
		evt    Event
		typ    string
		entity EntityType
	}{
		{"IncomeCreated", IncomeCreated(payload), "income.created", EntityTypeIncome},
		{"IncomeDeleted", IncomeDeleted(payload), "income.deleted", EntityTypeIncome},
		{"ExpenseCreated", ExpenseCreated(payload), "expense.created", EntityTypeExpense},
		{"ExpenseDeleted", ExpenseDeleted(payload), "expense.deleted", EntityTypeExpense},
		{"DocumentCreated", DocumentCreated(payload), "document.created", EntityTypeDocument},
		{"DocumentDeleted", DocumentDeleted(payload), "document.deleted", EntityTypeDocument},
		{"DeadlineReminder", DeadlineReminder("decl-2025-03", time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), payload), "deadline.reminder", EntityTypeDeadline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

func TestDeadlineReminder_KeyAndExpiry(t *testing.T) {
	due := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	evt := DeadlineReminder("decl-2025-03", due, map[string]interface{}{"daysLeft": float64(0)})

	assert.Equal(t, "decl-2025-03", evt.ReminderKey())
	assert.False(t, evt.Expired(due.Add(23*time.Hour)))
	assert.True(t, evt.Expired(due.AddDate(0, 0, 1)))

	// reminder bookkeeping never reaches the browser
	data, err := evt.ToJSON()
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 4)

	assert.Empty(t, IncomeCreated(nil).ReminderKey())
	assert.False(t, IncomeCreated(nil).Expired(due))
}

func TestReminderAcknowledged(t *testing.T) {
	evt := ReminderAcknowledged("esv-2025-04")

	assert.Equal(t, "deadline.acknowledged", evt.Type)
	assert.Equal(t, ReminderAck{EventID: "esv-2025-04"}, evt.Payload)
	assert.Empty(t, evt.ReminderKey())
}

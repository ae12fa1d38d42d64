package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a test double for Client that captures sent messages
type mockClient struct {
	id       string
	userID   int32
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string, userID int32) *mockClient {
	return &mockClient{
		id:       id,
		userID:   userID,
		messages: make([][]byte, 0),
	}
}

func (m *mockClient) ID() string {
	return m.id
}

func (m *mockClient) UserID() int32 {
	return m.userID
}

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockClient) GetMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]byte, len(m.messages))
	copy(copied, m.messages)
	return copied
}

func waitForMessages(t *testing.T, c *mockClient, n int) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return len(c.GetMessages()) == n
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	client1 := newMockClient("client-1", 1)
	client2 := newMockClient("client-2", 1)
	client3 := newMockClient("client-3", 2)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	assert.Equal(t, 2, hub.ClientCount(1))
	assert.Equal(t, 1, hub.ClientCount(2))
	assert.Equal(t, 0, hub.ClientCount(999))
	assert.Equal(t, 3, hub.TotalClientCount())

	hub.Unregister(client1)
	assert.Equal(t, 1, hub.ClientCount(1))

	hub.Unregister(client2)
	hub.Unregister(client3)
	assert.Equal(t, 0, hub.ClientCount(1))
	assert.Equal(t, 0, hub.ClientCount(2))
	assert.Equal(t, 0, hub.TotalClientCount())
}

func TestHub_Broadcast_UserIsolation(t *testing.T) {
	hub := NewHub()

	phone := newMockClient("phone", 1)
	laptop := newMockClient("laptop", 1)
	other := newMockClient("other", 2)

	hub.Register(phone)
	hub.Register(laptop)
	hub.Register(other)

	hub.Broadcast(1, IncomeCreated(map[string]interface{}{"id": float64(42)}))

	waitForMessages(t, phone, 1)
	waitForMessages(t, laptop, 1)

	time.Sleep(10 * time.Millisecond)
	assert.Len(t, other.GetMessages(), 0, "another user's client must not receive the event")
}

func TestHub_Broadcast_MultipleFanOut(t *testing.T) {
	hub := NewHub()

	clients := make([]*mockClient, 5)
	for i := 0; i < 5; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), 1)
		hub.Register(clients[i])
	}

	hub.Broadcast(1, ExpenseDeleted(map[string]interface{}{"id": float64(1)}))

	for _, c := range clients {
		waitForMessages(t, c, 1)
	}
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	clientCount := 50

	clients := make([]*mockClient, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = newMockClient(fmt.Sprintf("client-%d", i), int32(i%5))
	}

	for i := 0; i < clientCount; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Register(clients[idx])
		}(i)
	}

	wg.Wait()
	assert.Equal(t, clientCount, hub.TotalClientCount())

	for i := 0; i < clientCount; i++ {
		wg.Add(2)
		go func(idx int) {
			defer wg.Done()
			hub.Broadcast(int32(idx%5), IncomeCreated(map[string]interface{}{"id": float64(idx)}))
		}(i)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister(clients[idx])
		}(i)
	}

	wg.Wait()

	for user := int32(0); user < 5; user++ {
		assert.Equal(t, 0, hub.ClientCount(user))
	}
}

func TestHub_UnregisterNonexistent(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Unregister(newMockClient("client-1", 1))
	})
}

func TestHub_BroadcastToUserWithoutClients(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		hub.Broadcast(999, IncomeCreated(map[string]interface{}{"id": float64(1)}))
	})
}

func TestHub_CloseAll(t *testing.T) {
	hub := NewHub()

	a := newMockClient("a", 1)
	b := newMockClient("b", 2)
	hub.Register(a)
	hub.Register(b)

	hub.CloseAll()

	assert.True(t, a.IsClosed())
	assert.True(t, b.IsClosed())
	assert.Equal(t, 0, hub.TotalClientCount())
}

func reminderAt(eventID string, due time.Time, daysLeft int) Event {
	return DeadlineReminder(eventID, due, map[string]interface{}{"eventId": eventID, "daysLeft": float64(daysLeft)})
}

func decodeEvent(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	return decoded
}

func TestHub_HoldsRemindersForOfflineUser(t *testing.T) {
	hub := NewHub()
	hub.now = func() time.Time { return time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC) }
	due := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	hub.Broadcast(1, reminderAt("tax-2025-03", due, 3))
	hub.Broadcast(1, reminderAt("esv-2025-04", due.AddDate(0, 0, -1), 2))
	hub.Broadcast(1, IncomeCreated(map[string]interface{}{"id": float64(1)}))
	assert.Equal(t, 2, hub.PendingReminders(1), "only reminders are held")
	assert.Zero(t, hub.PendingReminders(2))

	phone := newMockClient("phone", 1)
	hub.Register(phone)

	messages := phone.GetMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, "esv-2025-04", decodeEvent(t, messages[0])["payload"].(map[string]interface{})["eventId"], "earliest deadline first")
	assert.Equal(t, "tax-2025-03", decodeEvent(t, messages[1])["payload"].(map[string]interface{})["eventId"])
	assert.Zero(t, hub.PendingReminders(1))

	// a second tab gets nothing already delivered
	laptop := newMockClient("laptop", 1)
	hub.Register(laptop)
	assert.Empty(t, laptop.GetMessages())
}

func TestHub_HeldReminderReplacedPerDeadline(t *testing.T) {
	hub := NewHub()
	hub.now = func() time.Time { return time.Date(2025, 4, 20, 8, 0, 0, 0, time.UTC) }
	due := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	hub.Broadcast(1, reminderAt("esv-2025-04", due, 3))
	hub.Broadcast(1, reminderAt("esv-2025-04", due, 0))
	assert.Equal(t, 1, hub.PendingReminders(1))

	client := newMockClient("c", 1)
	hub.Register(client)

	messages := client.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, float64(0), decodeEvent(t, messages[0])["payload"].(map[string]interface{})["daysLeft"])
}

func TestHub_ExpiredHeldRemindersDropped(t *testing.T) {
	hub := NewHub()
	now := time.Date(2025, 4, 19, 9, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return now }

	hub.Broadcast(1, reminderAt("esv-2025-04", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), 1))
	hub.Broadcast(1, reminderAt("esv-2025-03", time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC), 0))
	assert.Equal(t, 1, hub.PendingReminders(1), "a reminder past its due day is not held")

	now = time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC)
	client := newMockClient("c", 1)
	hub.Register(client)
	assert.Empty(t, client.GetMessages())
	assert.Zero(t, hub.PendingReminders(1))
}

func TestHub_AcknowledgeReminder(t *testing.T) {
	hub := NewHub()
	hub.now = func() time.Time { return time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC) }
	due := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	hub.Broadcast(1, reminderAt("esv-2025-04", due, 3))
	hub.Broadcast(1, reminderAt("tax-2025-03", due, 3))
	hub.AcknowledgeReminder(1, "esv-2025-04")
	assert.Equal(t, 1, hub.PendingReminders(1))

	phone := newMockClient("phone", 1)
	laptop := newMockClient("laptop", 1)
	hub.Register(phone)
	hub.Register(laptop)
	require.Len(t, phone.GetMessages(), 1)

	hub.AcknowledgeReminder(1, "tax-2025-03")
	waitForMessages(t, phone, 2)
	waitForMessages(t, laptop, 1)

	ack := decodeEvent(t, laptop.GetMessages()[0])
	assert.Equal(t, "deadline.acknowledged", ack["type"])
	assert.Equal(t, "tax-2025-03", ack["payload"].(map[string]interface{})["eventId"])
}

func TestHub_ReminderToConnectedUserNotHeld(t *testing.T) {
	hub := NewHub()
	hub.now = func() time.Time { return time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC) }

	client := newMockClient("c", 1)
	hub.Register(client)
	hub.Broadcast(1, reminderAt("esv-2025-04", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), 3))

	waitForMessages(t, client, 1)
	assert.Zero(t, hub.PendingReminders(1))
}

func TestHub_CloseAllDiscardsHeldReminders(t *testing.T) {
	hub := NewHub()
	hub.now = func() time.Time { return time.Date(2025, 4, 17, 9, 0, 0, 0, time.UTC) }
	hub.Broadcast(1, reminderAt("esv-2025-04", time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC), 3))

	hub.CloseAll()
	assert.Zero(t, hub.PendingReminders(1))
}

package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/repository/storage"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users    map[string]*domain.User
	ByID     map[int32]*domain.User
	nextID   int32
	CreateFn func(uid, email, firstName, lastName string) (*domain.User, error)
	// IncrementErr is returned by IncrementCalculations when set
	IncrementErr error
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:  make(map[string]*domain.User),
		ByID:   make(map[int32]*domain.User),
		nextID: 1,
	}
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByFirebaseUID retrieves a user by Firebase uid
func (m *MockUserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	if user, ok := m.Users[uid]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByFirebaseUID creates or retrieves a user by Firebase uid
func (m *MockUserRepository) CreateOrGetByFirebaseUID(ctx context.Context, uid, email, firstName, lastName string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(uid, email, firstName, lastName)
	}
	if user, ok := m.Users[uid]; ok {
		return user, nil
	}
	now := time.Now().UTC()
	user := &domain.User{
		FirebaseUID: uid,
		Email:       email,
		FirstName:   firstName,
		LastName:    lastName,
		FOPGroup:    domain.DefaultTaxGroup,
		PaysESV:     true,
		KVEDs:       []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.AddUser(user)
	return user, nil
}

// Update updates the editable profile fields
func (m *MockUserRepository) Update(ctx context.Context, id int32, update domain.UserUpdate) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.FirstName = update.FirstName
	user.LastName = update.LastName
	user.MiddleName = update.MiddleName
	user.Phone = update.Phone
	if update.Email != nil {
		user.Email = *update.Email
	}
	user.UpdatedAt = time.Now().UTC()
	return user, nil
}

// CompleteOnboarding stores onboarding data and marks the user onboarded
func (m *MockUserRepository) CompleteOnboarding(ctx context.Context, id int32, o domain.Onboarding) (*domain.User, error) {
	user, ok := m.ByID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	taxID := o.TaxID
	phone := o.Phone
	user.FirstName = o.FirstName
	user.LastName = o.LastName
	user.MiddleName = o.MiddleName
	user.TaxID = &taxID
	user.Email = o.Email
	user.Phone = &phone
	user.FOPGroup = o.TaxGroup
	user.PaysESV = o.PaysESV
	user.KVEDs = o.KVEDs
	user.OnboardingCompleted = true
	user.UpdatedAt = time.Now().UTC()
	return user, nil
}

// IncrementCalculations bumps the user's calculation counter
func (m *MockUserRepository) IncrementCalculations(ctx context.Context, id int32) error {
	if m.IncrementErr != nil {
		return m.IncrementErr
	}
	user, ok := m.ByID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.Calculations++
	return nil
}

// ListOnboarded returns users that completed onboarding, ordered by ID
func (m *MockUserRepository) ListOnboarded(ctx context.Context) ([]*domain.User, error) {
	result := make([]*domain.User, 0)
	for _, user := range m.ByID {
		if user.OnboardingCompleted {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// AddUser adds a user to the mock repository (for test setup)
func (m *MockUserRepository) AddUser(user *domain.User) {
	if user.ID == 0 {
		user.ID = m.nextID
	}
	if user.ID >= m.nextID {
		m.nextID = user.ID + 1
	}
	m.Users[user.FirebaseUID] = user
	m.ByID[user.ID] = user
}

// MockIncomeRepository is a mock implementation of domain.IncomeRepository
type MockIncomeRepository struct {
	Incomes   map[int32]*domain.Income
	nextID    int32
	CreateErr error
	ListErr   error
}

// NewMockIncomeRepository creates a new MockIncomeRepository
func NewMockIncomeRepository() *MockIncomeRepository {
	return &MockIncomeRepository{
		Incomes: make(map[int32]*domain.Income),
		nextID:  1,
	}
}

// Create stores a new income record
func (m *MockIncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	income.ID = m.nextID
	m.nextID++
	income.CreatedAt = time.Now().UTC()
	m.Incomes[income.ID] = income
	return income, nil
}

// GetByID retrieves an income record owned by the user
func (m *MockIncomeRepository) GetByID(ctx context.Context, userID, id int32) (*domain.Income, error) {
	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return nil, domain.ErrIncomeNotFound
	}
	return income, nil
}

// List returns the user's income records, newest first
func (m *MockIncomeRepository) List(ctx context.Context, userID int32, filters *domain.RecordFilters) ([]*domain.Income, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Income, 0)
	for _, income := range m.Incomes {
		if income.UserID == userID && filters.Contains(income.Date) {
			result = append(result, income)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Delete removes an income record owned by the user
func (m *MockIncomeRepository) Delete(ctx context.Context, userID, id int32) error {
	income, ok := m.Incomes[id]
	if !ok || income.UserID != userID {
		return domain.ErrIncomeNotFound
	}
	delete(m.Incomes, id)
	return nil
}

// SumByDateRange sums the user's income in [from, to)
func (m *MockIncomeRepository) SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error) {
	if m.ListErr != nil {
		return decimal.Zero, m.ListErr
	}
	filters := &domain.RecordFilters{From: &from, To: &to}
	total := decimal.Zero
	for _, income := range m.Incomes {
		if income.UserID == userID && filters.Contains(income.Date) {
			total = total.Add(income.Amount)
		}
	}
	return total, nil
}

// Count returns the number of income records of the user
func (m *MockIncomeRepository) Count(ctx context.Context, userID int32) (int64, error) {
	var n int64
	for _, income := range m.Incomes {
		if income.UserID == userID {
			n++
		}
	}
	return n, nil
}

// AddIncome adds an income record to the mock repository (for test setup)
func (m *MockIncomeRepository) AddIncome(income *domain.Income) {
	if income.ID == 0 {
		income.ID = m.nextID
	}
	if income.ID >= m.nextID {
		m.nextID = income.ID + 1
	}
	m.Incomes[income.ID] = income
}

// MockExpenseRepository is a mock implementation of domain.ExpenseRepository
type MockExpenseRepository struct {
	Expenses  map[int32]*domain.Expense
	nextID    int32
	CreateErr error
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[int32]*domain.Expense),
		nextID:   1,
	}
}

// Create stores a new expense record
func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	expense.ID = m.nextID
	m.nextID++
	expense.CreatedAt = time.Now().UTC()
	m.Expenses[expense.ID] = expense
	return expense, nil
}

// GetByID retrieves an expense record owned by the user
func (m *MockExpenseRepository) GetByID(ctx context.Context, userID, id int32) (*domain.Expense, error) {
	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	return expense, nil
}

// List returns the user's expense records, newest first
func (m *MockExpenseRepository) List(ctx context.Context, userID int32, filters *domain.RecordFilters) ([]*domain.Expense, error) {
	result := make([]*domain.Expense, 0)
	for _, expense := range m.Expenses {
		if expense.UserID == userID && filters.Contains(expense.Date) {
			result = append(result, expense)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// Delete removes an expense record owned by the user
func (m *MockExpenseRepository) Delete(ctx context.Context, userID, id int32) error {
	expense, ok := m.Expenses[id]
	if !ok || expense.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// SumByDateRange sums the user's expenses in [from, to)
func (m *MockExpenseRepository) SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error) {
	filters := &domain.RecordFilters{From: &from, To: &to}
	total := decimal.Zero
	for _, expense := range m.Expenses {
		if expense.UserID == userID && filters.Contains(expense.Date) {
			total = total.Add(expense.Amount)
		}
	}
	return total, nil
}

// Count returns the number of expense records of the user
func (m *MockExpenseRepository) Count(ctx context.Context, userID int32) (int64, error) {
	var n int64
	for _, expense := range m.Expenses {
		if expense.UserID == userID {
			n++
		}
	}
	return n, nil
}

// AddExpense adds an expense record to the mock repository (for test setup)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	if expense.ID == 0 {
		expense.ID = m.nextID
	}
	if expense.ID >= m.nextID {
		m.nextID = expense.ID + 1
	}
	m.Expenses[expense.ID] = expense
}

// MockClientRepository is a mock implementation of domain.ClientRepository
type MockClientRepository struct {
	Clients map[int32]*domain.Client
	nextID  int32
}

// NewMockClientRepository creates a new MockClientRepository
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		Clients: make(map[int32]*domain.Client),
		nextID:  1,
	}
}

// Create stores a new client, names are unique per user
func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	for _, existing := range m.Clients {
		if existing.UserID == client.UserID && existing.Name == client.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	client.ID = m.nextID
	m.nextID++
	client.CreatedAt = time.Now().UTC()
	m.Clients[client.ID] = client
	return client, nil
}

// List returns the user's clients ordered by name, filtered by search
func (m *MockClientRepository) List(ctx context.Context, userID int32, search string) ([]*domain.Client, error) {
	needle := strings.ToLower(strings.TrimSpace(search))
	result := make([]*domain.Client, 0)
	for _, client := range m.Clients {
		if client.UserID != userID {
			continue
		}
		if needle != "" && !clientMatches(client, needle) {
			continue
		}
		result = append(result, client)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func clientMatches(c *domain.Client, needle string) bool {
	fields := []string{c.Name}
	if c.Country != nil {
		fields = append(fields, *c.Country)
	}
	if c.Email != nil {
		fields = append(fields, *c.Email)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// MockDocumentRepository is a mock implementation of domain.DocumentRepository
type MockDocumentRepository struct {
	Documents map[uuid.UUID]*domain.Document
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		Documents: make(map[uuid.UUID]*domain.Document),
	}
}

// Create stores document metadata
func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	m.Documents[doc.ID] = doc
	return doc, nil
}

// GetByID retrieves a document owned by the user
func (m *MockDocumentRepository) GetByID(ctx context.Context, userID int32, id uuid.UUID) (*domain.Document, error) {
	doc, ok := m.Documents[id]
	if !ok || doc.UserID != userID {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// List returns the user's documents newest first, optionally of one type
func (m *MockDocumentRepository) List(ctx context.Context, userID int32, docType *domain.DocumentType) ([]*domain.Document, error) {
	result := make([]*domain.Document, 0)
	for _, doc := range m.Documents {
		if doc.UserID != userID {
			continue
		}
		if docType != nil && doc.Type != *docType {
			continue
		}
		result = append(result, doc)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// Delete removes document metadata owned by the user
func (m *MockDocumentRepository) Delete(ctx context.Context, userID int32, id uuid.UUID) error {
	doc, ok := m.Documents[id]
	if !ok || doc.UserID != userID {
		return domain.ErrDocumentNotFound
	}
	delete(m.Documents, id)
	return nil
}

// MockDocumentStore is an in-memory storage.DocumentStore
type MockDocumentStore struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Upload stores the object and returns its path
func (m *MockDocumentStore) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = b
	m.ContentTypes[objectPath] = contentType
	return objectPath, nil
}

// Download returns the stored object
func (m *MockDocumentStore) Download(ctx context.Context, objectPath string) (*storage.Object, error) {
	b, ok := m.Objects[objectPath]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(b)),
		ContentType: m.ContentTypes[objectPath],
		Size:        int64(len(b)),
	}, nil
}

// Delete removes the object
func (m *MockDocumentStore) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	delete(m.ContentTypes, objectPath)
	return nil
}

// GeneratePresignedURL returns a fake URL for the object
func (m *MockDocumentStore) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// MockRateProvider is a mock implementation of domain.ExchangeRateProvider
type MockRateProvider struct {
	mu    sync.Mutex
	Rates *domain.ExchangeRates
	Err   error
	Calls int
}

// FetchRates returns the configured rates or error
func (m *MockRateProvider) FetchRates(ctx context.Context) (*domain.ExchangeRates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Rates == nil {
		return nil, errors.New("no rates configured")
	}
	copied := *m.Rates
	return &copied, nil
}

// SetErr changes the error returned by later calls
func (m *MockRateProvider) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// SentReminder records one delivered reminder
type SentReminder struct {
	UserID  int32
	Email   string
	EventID string
}

// MockReminderSender records reminders instead of sending them
type MockReminderSender struct {
	mu   sync.Mutex
	Sent []SentReminder
	Err  error
}

// SendDeadlineReminder records the reminder
func (m *MockReminderSender) SendDeadlineReminder(ctx context.Context, user *domain.User, upcoming domain.UpcomingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentReminder{UserID: user.ID, Email: user.Email, EventID: upcoming.Event.ID})
	return nil
}

// SentCount returns the number of recorded reminders
func (m *MockReminderSender) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	UserID int32
	Event  websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(userID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{UserID: userID, Event: event})
}

// Types returns the types of recorded events in publish order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}

// MockLegalUpdateRepository is a mock implementation of domain.LegalUpdateRepository
type MockLegalUpdateRepository struct {
	Updates map[string]*domain.LegalUpdate
	Err     error
}

// NewMockLegalUpdateRepository creates a new MockLegalUpdateRepository
func NewMockLegalUpdateRepository() *MockLegalUpdateRepository {
	return &MockLegalUpdateRepository{Updates: make(map[string]*domain.LegalUpdate)}
}

// ListByMonth returns the updates dated within the month, newest first
func (m *MockLegalUpdateRepository) ListByMonth(ctx context.Context, year, month int) ([]*domain.LegalUpdate, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*domain.LegalUpdate, 0)
	for _, u := range m.Updates {
		if u.Date.Year() == year && int(u.Date.Month()) == month {
			result = append(result, u)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Upsert stores the update by ID
func (m *MockLegalUpdateRepository) Upsert(ctx context.Context, update *domain.LegalUpdate) error {
	if m.Err != nil {
		return m.Err
	}
	m.Updates[update.ID] = update
	return nil
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// ExpenseService handles expense-related business logic
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
	publisher   websocket.EventPublisher
	loc         *time.Location
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, publisher websocket.EventPublisher, loc *time.Location) *ExpenseService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &ExpenseService{
		expenseRepo: expenseRepo,
		publisher:   publisher,
		loc:         loc,
		now:         time.Now,
	}
}

// CreateExpenseInput holds the input for recording an expense
type CreateExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        *time.Time
}

// CreateExpense validates and stores an expense record
func (s *ExpenseService) CreateExpense(ctx context.Context, userID int32, input CreateExpenseInput) (*domain.Expense, error) {
	description := strings.TrimSpace(input.Description)
	if err := validateRecord(input.Amount, description); err != nil {
		return nil, err
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if len([]rune(category)) > domain.MaxCategoryLength {
		return nil, domain.ErrCategoryTooLong
	}

	date := util.TruncateToDay(s.now(), s.loc)
	if input.Date != nil {
		date = util.TruncateToDay(*input.Date, nil)
	}

	expense, err := s.expenseRepo.Create(ctx, &domain.Expense{
		UserID:      userID,
		Amount:      input.Amount.Round(2),
		Description: description,
		Category:    category,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.ExpenseCreated(expense))
	return expense, nil
}

// ListExpenses returns the user's expenses, newest first, optionally limited to a year or quarter
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int32, year, quarter *int) ([]*domain.Expense, error) {
	filters, err := PeriodFilters(year, quarter)
	if err != nil {
		return nil, err
	}
	return s.expenseRepo.List(ctx, userID, filters)
}

// DeleteExpense removes an expense record
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int32) error {
	expense, err := s.expenseRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.ExpenseDeleted(expense))
	return nil
}

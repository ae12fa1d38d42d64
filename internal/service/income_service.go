package service

import (
	"context"
	"strings"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// IncomeService handles income-related business logic
type IncomeService struct {
	incomeRepo domain.IncomeRepository
	publisher  websocket.EventPublisher
	loc        *time.Location
	now        func() time.Time
}

// NewIncomeService creates a new IncomeService; dates default to today in loc
func NewIncomeService(incomeRepo domain.IncomeRepository, publisher websocket.EventPublisher, loc *time.Location) *IncomeService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &IncomeService{
		incomeRepo: incomeRepo,
		publisher:  publisher,
		loc:        loc,
		now:        time.Now,
	}
}

// CreateIncomeInput holds the input for recording income
type CreateIncomeInput struct {
	Amount      decimal.Decimal
	Description string
	Date        *time.Time
}

// CreateIncome validates and stores an income record
func (s *IncomeService) CreateIncome(ctx context.Context, userID int32, input CreateIncomeInput) (*domain.Income, error) {
	description := strings.TrimSpace(input.Description)
	if err := validateRecord(input.Amount, description); err != nil {
		return nil, err
	}

	date := util.TruncateToDay(s.now(), s.loc)
	if input.Date != nil {
		date = util.TruncateToDay(*input.Date, nil)
	}

	income, err := s.incomeRepo.Create(ctx, &domain.Income{
		UserID:      userID,
		Amount:      input.Amount.Round(2),
		Description: description,
		Date:        date,
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Int32("user_id", userID).Int32("income_id", income.ID).Msg("Income recorded")
	s.publisher.Publish(userID, websocket.IncomeCreated(income))
	return income, nil
}

// ListIncome returns the user's income, newest first, optionally limited to a year or quarter
func (s *IncomeService) ListIncome(ctx context.Context, userID int32, year, quarter *int) ([]*domain.Income, error) {
	filters, err := PeriodFilters(year, quarter)
	if err != nil {
		return nil, err
	}
	return s.incomeRepo.List(ctx, userID, filters)
}

// DeleteIncome removes an income record
func (s *IncomeService) DeleteIncome(ctx context.Context, userID, id int32) error {
	income, err := s.incomeRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.incomeRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.publisher.Publish(userID, websocket.IncomeDeleted(income))
	return nil
}

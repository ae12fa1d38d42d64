package service

import (
	"context"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
)

// StatsService reports usage statistics of a user
type StatsService struct {
	userRepo    domain.UserRepository
	incomeRepo  domain.IncomeRepository
	expenseRepo domain.ExpenseRepository
	scheduler   *DeadlineScheduler
}

// NewStatsService creates a new StatsService
func NewStatsService(userRepo domain.UserRepository, incomeRepo domain.IncomeRepository, expenseRepo domain.ExpenseRepository, scheduler *DeadlineScheduler) *StatsService {
	return &StatsService{
		userRepo:    userRepo,
		incomeRepo:  incomeRepo,
		expenseRepo: expenseRepo,
		scheduler:   scheduler,
	}
}

// GetStats returns the user's counters; the registration day counts as day one
func (s *StatsService) GetStats(ctx context.Context, userID int32) (*domain.UserStats, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	incomeCount, err := s.incomeRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	expenseCount, err := s.expenseRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	registered := util.TruncateToDay(user.CreatedAt, s.scheduler.loc)
	days := util.DaysBetween(registered, s.scheduler.Today()) + 1
	if days < 1 {
		days = 1
	}

	return &domain.UserStats{
		Calculations: user.Calculations,
		DaysInSystem: days,
		IncomeCount:  incomeCount,
		ExpenseCount: expenseCount,
	}, nil
}

package service

import (
	"context"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DashboardService handles dashboard-related business logic
type DashboardService struct {
	userRepo    domain.UserRepository
	incomeRepo  domain.IncomeRepository
	expenseRepo domain.ExpenseRepository
	taxService  *TaxService
	calculator  *ObligationCalculator
	scheduler   *DeadlineScheduler
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	userRepo domain.UserRepository,
	incomeRepo domain.IncomeRepository,
	expenseRepo domain.ExpenseRepository,
	taxService *TaxService,
	calculator *ObligationCalculator,
	scheduler *DeadlineScheduler,
) *DashboardService {
	return &DashboardService{
		userRepo:    userRepo,
		incomeRepo:  incomeRepo,
		expenseRepo: expenseRepo,
		taxService:  taxService,
		calculator:  calculator,
		scheduler:   scheduler,
	}
}

// GetSummary returns the dashboard summary of a quarter, the current one by default
func (s *DashboardService) GetSummary(ctx context.Context, userID int32, year, quarter *int) (*domain.DashboardSummary, error) {
	y, q, err := s.taxService.ResolvePeriod(year, quarter)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := util.QuarterBounds(y, q)
	income, err := s.incomeRepo.SumByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.SumByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	obligation := s.calculator.CalculateFor(domain.ObligationInput{
		Year:        y,
		Group:       user.FOPGroup,
		TotalIncome: income,
		PaysSocial:  user.PaysESV,
	})

	summary := &domain.DashboardSummary{
		Year:                 y,
		Quarter:              q,
		Income:               income,
		Expenses:             expenses,
		Obligation:           obligation,
		EffectiveTaxRate:     EffectiveTaxRate(obligation.Total, income),
		NetIncome:            income.Sub(obligation.Total),
		AverageMonthlyIncome: income.Div(decimal.NewFromInt(domain.MonthsInQuarter)).Round(2),
	}
	if next, ok := s.scheduler.Next(); ok {
		summary.NextDeadline = next
	}
	return summary, nil
}

// EffectiveTaxRate returns tax as a percentage of income with one decimal, zero without income
func EffectiveTaxRate(tax, income decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return tax.Div(income).Mul(hundred).Round(1)
}

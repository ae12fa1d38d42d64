package service

import (
	"context"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TaxService combines stored income with the obligation calculator
type TaxService struct {
	userRepo   domain.UserRepository
	incomeRepo domain.IncomeRepository
	calculator *ObligationCalculator
	scheduler  *DeadlineScheduler
}

// NewTaxService creates a new TaxService
func NewTaxService(userRepo domain.UserRepository, incomeRepo domain.IncomeRepository, calculator *ObligationCalculator, scheduler *DeadlineScheduler) *TaxService {
	return &TaxService{
		userRepo:   userRepo,
		incomeRepo: incomeRepo,
		calculator: calculator,
		scheduler:  scheduler,
	}
}

// QuarterTax is the income and obligation of one quarter for a user
type QuarterTax struct {
	Aggregate  domain.QuarterAggregate
	Obligation domain.TaxObligation
	Group      domain.TaxGroup
	PaysESV    bool
	TaxRate    decimal.Decimal
}

// ResolvePeriod fills a missing year or quarter from the current date
func (s *TaxService) ResolvePeriod(year, quarter *int) (int, int, error) {
	y, q := util.CurrentQuarter(s.scheduler.Today())
	if year != nil {
		y = *year
	}
	if quarter != nil {
		q = *quarter
	}
	if !ValidYear(y) || !util.ValidQuarter(q) {
		return 0, 0, domain.ErrInvalidPeriod
	}
	return y, q, nil
}

// QuarterSummary computes the obligation for the user's group from the income
// recorded in the quarter, and counts the calculation
func (s *TaxService) QuarterSummary(ctx context.Context, userID int32, year, quarter *int) (*QuarterTax, error) {
	y, q, err := s.ResolvePeriod(year, quarter)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := util.QuarterBounds(y, q)
	total, err := s.incomeRepo.SumByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	obligation := s.calculator.CalculateFor(domain.ObligationInput{
		Year:        y,
		Group:       user.FOPGroup,
		TotalIncome: total,
		PaysSocial:  user.PaysESV,
	})
	s.countCalculation(ctx, userID)

	return &QuarterTax{
		Aggregate:  domain.QuarterAggregate{Year: y, Quarter: q, TotalIncome: total},
		Obligation: obligation,
		Group:      user.FOPGroup,
		PaysESV:    user.PaysESV,
		TaxRate:    s.calculator.Rates().RateFor(user.FOPGroup),
	}, nil
}

// CalculateInput holds an ad-hoc calculation request
type CalculateInput struct {
	TotalIncome decimal.Decimal
	Group       *domain.TaxGroup
	Year        *int
	PaysESV     *bool
}

// Calculate runs the calculator on caller supplied income without reading records
func (s *TaxService) Calculate(ctx context.Context, userID int32, input CalculateInput) (domain.TaxObligation, error) {
	year := s.scheduler.Today().Year()
	if input.Year != nil {
		if !ValidYear(*input.Year) {
			return domain.TaxObligation{}, domain.ErrInvalidPeriod
		}
		year = *input.Year
	}
	group := domain.DefaultTaxGroup
	if input.Group != nil {
		if !input.Group.IsValid() {
			return domain.TaxObligation{}, domain.ErrInvalidTaxGroup
		}
		group = *input.Group
	}
	if input.TotalIncome.IsNegative() {
		return domain.TaxObligation{}, domain.ErrInvalidAmount
	}
	paysESV := true
	if input.PaysESV != nil {
		paysESV = *input.PaysESV
	}

	obligation := s.calculator.CalculateFor(domain.ObligationInput{
		Year:        year,
		Group:       group,
		TotalIncome: input.TotalIncome,
		PaysSocial:  paysESV,
	})
	s.countCalculation(ctx, userID)
	return obligation, nil
}

// DeclarationPrefill returns the values of the group 3 quarterly declaration
func (s *TaxService) DeclarationPrefill(ctx context.Context, userID int32, year, quarter *int) (*domain.DeclarationPrefill, error) {
	y, q, err := s.ResolvePeriod(year, quarter)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	from, to := util.QuarterBounds(y, q)
	total, err := s.incomeRepo.SumByDateRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	taxID := ""
	if user.TaxID != nil {
		taxID = *user.TaxID
	}

	return &domain.DeclarationPrefill{
		FullName:    user.FullName(),
		TaxID:       taxID,
		Year:        y,
		Quarter:     q,
		PeriodText:  util.PeriodText(y, q),
		TotalIncome: total,
		Obligation: s.calculator.CalculateFor(domain.ObligationInput{
			Year:        y,
			Group:       domain.TaxGroup3,
			TotalIncome: total,
			PaysSocial:  user.PaysESV,
		}),
	}, nil
}

// countCalculation increments the usage counter; failures are logged, not returned
func (s *TaxService) countCalculation(ctx context.Context, userID int32) {
	if err := s.userRepo.IncrementCalculations(ctx, userID); err != nil {
		log.Warn().Err(err).Int32("user_id", userID).Msg("Failed to count calculation")
	}
}

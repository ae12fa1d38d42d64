package service

import (
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/shopspring/decimal"
)

// PeriodFilters builds a date range from optional year and quarter.
// A quarter without a year is rejected.
func PeriodFilters(year, quarter *int) (*domain.RecordFilters, error) {
	if year == nil {
		if quarter != nil {
			return nil, domain.ErrInvalidPeriod
		}
		return nil, nil
	}
	if !ValidYear(*year) {
		return nil, domain.ErrInvalidPeriod
	}

	if quarter == nil {
		from := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return &domain.RecordFilters{From: &from, To: &to}, nil
	}
	if !util.ValidQuarter(*quarter) {
		return nil, domain.ErrInvalidPeriod
	}
	from, to := util.QuarterBounds(*year, *quarter)
	return &domain.RecordFilters{From: &from, To: &to}, nil
}

// validateRecord applies the checks shared by income and expense records
func validateRecord(amount decimal.Decimal, description string) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if len([]rune(description)) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	return nil
}

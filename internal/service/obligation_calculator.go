package service

import (
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/shopspring/decimal"
)

var monthsInQuarter = decimal.NewFromInt(domain.MonthsInQuarter)

// ObligationCalculator turns a quarter's income into the single tax and ESV owed.
// It never fails: negative income is treated as zero and unknown groups fall back to the default group.
type ObligationCalculator struct {
	rates *domain.TaxRates
}

// NewObligationCalculator creates a new ObligationCalculator
func NewObligationCalculator(rates *domain.TaxRates) *ObligationCalculator {
	return &ObligationCalculator{rates: rates}
}

// Rates returns the statutory table the calculator uses
func (c *ObligationCalculator) Rates() *domain.TaxRates {
	return c.rates
}

// Calculate computes the default group 3 obligation for a FOP paying ESV
func (c *ObligationCalculator) Calculate(year int, totalIncome decimal.Decimal) domain.TaxObligation {
	return c.CalculateFor(domain.ObligationInput{
		Year:        year,
		Group:       domain.DefaultTaxGroup,
		TotalIncome: totalIncome,
		PaysSocial:  true,
	})
}

// CalculateFor computes the quarterly obligation for any supported group
func (c *ObligationCalculator) CalculateFor(in domain.ObligationInput) domain.TaxObligation {
	income := in.TotalIncome
	if income.IsNegative() {
		income = decimal.Zero
	}

	rule, ok := c.rates.Rule(in.Group)
	if !ok {
		rule, _ = c.rates.Rule(domain.DefaultTaxGroup)
	}

	var singleTax decimal.Decimal
	if rule.IsFixed() {
		singleTax = c.rates.MinimumWageFor(in.Year).Mul(rule.MinimumWageShare).Mul(monthsInQuarter)
	} else {
		singleTax = income.Mul(rule.IncomeRate)
	}
	singleTax = singleTax.Round(2)

	social := decimal.Zero
	if in.PaysSocial {
		social = c.SocialContribution(in.Year)
	}

	return domain.TaxObligation{
		SingleTax:          singleTax,
		SocialContribution: social,
		Total:              singleTax.Add(social).Round(2),
	}
}

// SocialContribution returns the quarterly ESV: minimum wage × ESV rate × 3 months
func (c *ObligationCalculator) SocialContribution(year int) decimal.Decimal {
	return c.rates.MinimumWageFor(year).Mul(c.rates.ESVRate).Mul(monthsInQuarter).Round(2)
}

// MonthlySocialContribution returns the ESV due each month
func (c *ObligationCalculator) MonthlySocialContribution(year int) decimal.Decimal {
	return c.rates.MinimumWageFor(year).Mul(c.rates.ESVRate).Round(2)
}

// AggregateQuarter sums income whose date falls in [quarter start, next quarter start)
func AggregateQuarter(incomes []*domain.Income, year, quarter int) domain.QuarterAggregate {
	start, end := util.QuarterBounds(year, quarter)
	filters := &domain.RecordFilters{From: &start, To: &end}

	total := decimal.Zero
	for _, inc := range incomes {
		if filters.Contains(inc.Date) {
			total = total.Add(inc.Amount)
		}
	}

	return domain.QuarterAggregate{
		Year:        year,
		Quarter:     quarter,
		TotalIncome: total,
	}
}

package service

import (
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/config"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newTestCalculator() *ObligationCalculator {
	return NewObligationCalculator(config.DefaultTaxRates())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestObligationCalculator_SingleTax(t *testing.T) {
	calc := newTestCalculator()

	tests := []struct {
		name   string
		income string
		want   string
	}{
		{"five percent", "100000", "5000.00"},
		{"zero income", "0", "0.00"},
		{"negative clamps to zero", "-1500", "0.00"},
		{"rounds half up", "33333.33", "1666.67"},
		{"small amount", "0.1", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Calculate(2025, dec(tt.income))
			assert.Equal(t, tt.want, got.SingleTax.StringFixed(2))
			assert.Equal(t, got.SingleTax.Add(got.SocialContribution).StringFixed(2), got.Total.StringFixed(2))
		})
	}
}

func TestObligationCalculator_SocialContributionIsIndependentOfIncome(t *testing.T) {
	calc := newTestCalculator()

	low := calc.Calculate(2025, decimal.Zero)
	high := calc.Calculate(2025, dec("1000000"))

	assert.Equal(t, "5280.00", low.SocialContribution.StringFixed(2))
	assert.True(t, low.SocialContribution.Equal(high.SocialContribution))
}

func TestObligationCalculator_SocialContributionFollowsYear(t *testing.T) {
	calc := newTestCalculator()

	assert.Equal(t, "4686.00", calc.SocialContribution(2024).StringFixed(2))
	assert.Equal(t, "5280.00", calc.SocialContribution(2025).StringFixed(2))
	assert.Equal(t, "1760.00", calc.MonthlySocialContribution(2025).StringFixed(2))
}

func TestObligationCalculator_TotalRoundedToMinorUnit(t *testing.T) {
	calc := newTestCalculator()

	got := calc.Calculate(2025, dec("33333.33"))
	assert.Equal(t, "1666.67", got.SingleTax.StringFixed(2))
	assert.Equal(t, "6946.67", got.Total.StringFixed(2))
	assert.Equal(t, int32(-2), got.Total.Exponent())
}

func TestObligationCalculator_WithoutESV(t *testing.T) {
	calc := newTestCalculator()

	got := calc.CalculateFor(domain.ObligationInput{
		Year:        2025,
		Group:       domain.TaxGroup3,
		TotalIncome: dec("100000"),
		PaysSocial:  false,
	})

	assert.True(t, got.SocialContribution.IsZero())
	assert.Equal(t, "5000.00", got.Total.StringFixed(2))
}

func TestObligationCalculator_Group2IsFixed(t *testing.T) {
	calc := newTestCalculator()

	small := calc.CalculateFor(domain.ObligationInput{Year: 2025, Group: domain.TaxGroup2, TotalIncome: dec("10"), PaysSocial: true})
	large := calc.CalculateFor(domain.ObligationInput{Year: 2025, Group: domain.TaxGroup2, TotalIncome: dec("900000"), PaysSocial: true})

	// 8000 × 20% × 3 months
	assert.Equal(t, "4800.00", small.SingleTax.StringFixed(2))
	assert.True(t, small.SingleTax.Equal(large.SingleTax))
	assert.Equal(t, "10080.00", small.Total.StringFixed(2))
}

func TestObligationCalculator_UnknownGroupUsesDefault(t *testing.T) {
	calc := newTestCalculator()

	got := calc.CalculateFor(domain.ObligationInput{Year: 2025, Group: domain.TaxGroup(7), TotalIncome: dec("100000"), PaysSocial: true})
	assert.Equal(t, "5000.00", got.SingleTax.StringFixed(2))
}

func TestAggregateQuarter_EndToEnd(t *testing.T) {
	calc := newTestCalculator()
	incomes := []*domain.Income{
		{Amount: dec("100000"), Date: date("2025-01-15")},
		{Amount: dec("150000"), Date: date("2025-02-20")},
		{Amount: dec("120000"), Date: date("2025-03-10")},
		{Amount: dec("99999"), Date: date("2025-04-01")},
		{Amount: dec("88888"), Date: date("2024-12-31")},
	}

	agg := AggregateQuarter(incomes, 2025, 1)
	assert.Equal(t, 2025, agg.Year)
	assert.Equal(t, 1, agg.Quarter)
	assert.Equal(t, "370000.00", agg.TotalIncome.StringFixed(2))

	got := calc.Calculate(2025, agg.TotalIncome)
	assert.Equal(t, "18500.00", got.SingleTax.StringFixed(2))
	assert.Equal(t, "5280.00", got.SocialContribution.StringFixed(2))
	assert.Equal(t, "23780.00", got.Total.StringFixed(2))
}

func TestAggregateQuarter_Empty(t *testing.T) {
	agg := AggregateQuarter(nil, 2025, 3)
	assert.True(t, agg.TotalIncome.IsZero())
}

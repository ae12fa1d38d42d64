package domain

import "github.com/shopspring/decimal"

// DashboardSummary contains the quarter metrics shown on the dashboard
type DashboardSummary struct {
	Year                 int
	Quarter              int
	Income               decimal.Decimal
	Expenses             decimal.Decimal
	Obligation           TaxObligation
	EffectiveTaxRate     decimal.Decimal
	NetIncome            decimal.Decimal
	AverageMonthlyIncome decimal.Decimal
	NextDeadline         *UpcomingEvent
}

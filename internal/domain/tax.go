package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxGroup is the simplified-regime group of a FOP
type TaxGroup int

const (
	TaxGroup2 TaxGroup = 2
	TaxGroup3 TaxGroup = 3
)

// DefaultTaxGroup is used when a profile has no group yet
const DefaultTaxGroup = TaxGroup3

// IsValid reports whether g is a supported group
func (g TaxGroup) IsValid() bool {
	return g == TaxGroup2 || g == TaxGroup3
}

// MonthsInQuarter is the number of months an ESV or fixed-tax base is multiplied by
const MonthsInQuarter = 3

// TaxObligation is the amount owed for one quarter
type TaxObligation struct {
	SingleTax          decimal.Decimal `json:"singleTax"`
	SocialContribution decimal.Decimal `json:"socialContribution"`
	Total              decimal.Decimal `json:"total"`
}

// QuarterAggregate is the income received in [quarter start, next quarter start)
type QuarterAggregate struct {
	Year        int             `json:"year"`
	Quarter     int             `json:"quarter"`
	TotalIncome decimal.Decimal `json:"totalIncome"`
}

// ObligationInput describes what the calculator needs for one quarter
type ObligationInput struct {
	Year        int
	Group       TaxGroup
	TotalIncome decimal.Decimal
	PaysSocial  bool
}

// GroupRule describes how single tax is charged for a group.
// IncomeRate applies to income; MinimumWageShare makes the tax a fixed monthly share of the minimum wage.
type GroupRule struct {
	IncomeRate       decimal.Decimal
	MinimumWageShare decimal.Decimal
}

// IsFixed reports whether the rule charges a fixed amount independent of income
func (r GroupRule) IsFixed() bool {
	return r.MinimumWageShare.IsPositive()
}

// TaxRates holds the dated statutory parameters
type TaxRates struct {
	ESVRate     decimal.Decimal
	MinimumWage map[int]decimal.Decimal
	Groups      map[TaxGroup]GroupRule
}

// MinimumWageFor returns the minimum wage in force for year.
// Years without an entry use the closest earlier year, or the earliest year when none is earlier.
func (r *TaxRates) MinimumWageFor(year int) decimal.Decimal {
	if len(r.MinimumWage) == 0 {
		return decimal.Zero
	}
	if w, ok := r.MinimumWage[year]; ok {
		return w
	}

	years := make([]int, 0, len(r.MinimumWage))
	for y := range r.MinimumWage {
		years = append(years, y)
	}
	sort.Ints(years)

	chosen := years[0]
	for _, y := range years {
		if y > year {
			break
		}
		chosen = y
	}
	return r.MinimumWage[chosen]
}

// Rule returns the single tax rule for group
func (r *TaxRates) Rule(group TaxGroup) (GroupRule, bool) {
	rule, ok := r.Groups[group]
	return rule, ok
}

// RateFor returns the income rate of group as a percentage (5 for 5%), zero for fixed groups
func (r *TaxRates) RateFor(group TaxGroup) decimal.Decimal {
	rule, ok := r.Rule(group)
	if !ok || rule.IsFixed() {
		return decimal.Zero
	}
	return rule.IncomeRate.Mul(decimal.NewFromInt(100))
}

// DeclarationPrefill holds the values printed on a group 3 quarterly declaration
type DeclarationPrefill struct {
	FullName    string
	TaxID       string
	Year        int
	Quarter     int
	PeriodText  string
	TotalIncome decimal.Decimal
	Obligation  TaxObligation
}

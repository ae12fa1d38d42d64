package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 letter code
type Currency string

const (
	CurrencyUAH Currency = "UAH"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency normalizes a code and checks it is supported
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	switch c {
	case CurrencyUAH, CurrencyUSD, CurrencyEUR:
		return c, nil
	}
	return "", ErrUnknownCurrency
}

// ExchangeRates are official NBU rates, UAH per one unit of currency
type ExchangeRates struct {
	Rates     map[Currency]decimal.Decimal
	Date      time.Time
	FetchedAt time.Time
	Stale     bool
}

// Rate returns the rate of c, UAH is always 1
func (r *ExchangeRates) Rate(c Currency) (decimal.Decimal, bool) {
	if c == CurrencyUAH {
		return decimal.NewFromInt(1), true
	}
	rate, ok := r.Rates[c]
	return rate, ok
}

// Conversion is an amount converted to UAH
type Conversion struct {
	Amount decimal.Decimal
	From   Currency
	Rate   decimal.Decimal
	UAH    decimal.Decimal
	Date   time.Time
}

// ExchangeRateProvider fetches the current official rates
type ExchangeRateProvider interface {
	FetchRates(ctx context.Context) (*ExchangeRates, error)
}

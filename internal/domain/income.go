package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Income is a single income record of a FOP
type Income struct {
	ID          int32           `json:"id"`
	UserID      int32           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RecordFilters narrows income/expense listings to a date range [From, To)
type RecordFilters struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether date falls inside the filter range
func (f *RecordFilters) Contains(date time.Time) bool {
	if f == nil {
		return true
	}
	if f.From != nil && date.Before(*f.From) {
		return false
	}
	if f.To != nil && !date.Before(*f.To) {
		return false
	}
	return true
}

type IncomeRepository interface {
	Create(ctx context.Context, income *Income) (*Income, error)
	GetByID(ctx context.Context, userID, id int32) (*Income, error)
	List(ctx context.Context, userID int32, filters *RecordFilters) ([]*Income, error)
	Delete(ctx context.Context, userID, id int32) error
	SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, userID int32) (int64, error)
}

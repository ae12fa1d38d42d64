package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Expense is a business expense; structurally an income record plus a category
type Expense struct {
	ID          int32           `json:"id"`
	UserID      int32           `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetByID(ctx context.Context, userID, id int32) (*Expense, error)
	List(ctx context.Context, userID int32, filters *RecordFilters) ([]*Expense, error)
	Delete(ctx context.Context, userID, id int32) error
	SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error)
	Count(ctx context.Context, userID int32) (int64, error)
}

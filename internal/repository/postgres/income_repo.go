package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const incomeColumns = `id, user_id, amount, description, date, created_at`

// IncomeRepository implements domain.IncomeRepository using PostgreSQL
type IncomeRepository struct {
	pool *pgxpool.Pool
}

// NewIncomeRepository creates a new IncomeRepository
func NewIncomeRepository(pool *pgxpool.Pool) *IncomeRepository {
	return &IncomeRepository{pool: pool}
}

// Create stores a new income record
func (r *IncomeRepository) Create(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	amount, err := decimalToPgNumeric(income.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO income (user_id, amount, description, date)
		VALUES ($1, $2, $3, $4)
		RETURNING `+incomeColumns,
		income.UserID, amount, income.Description, timeToPgDate(income.Date),
	)
	return scanIncome(row)
}

// GetByID retrieves an income record owned by the user
func (r *IncomeRepository) GetByID(ctx context.Context, userID, id int32) (*domain.Income, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+incomeColumns+` FROM income WHERE user_id = $1 AND id = $2`, userID, id)
	return scanIncome(row)
}

// List returns the user's income newest first, optionally limited to a date range
func (r *IncomeRepository) List(ctx context.Context, userID int32, filters *domain.RecordFilters) ([]*domain.Income, error) {
	from, to := filterBounds(filters)
	rows, err := r.pool.Query(ctx, `
		SELECT `+incomeColumns+`
		FROM income
		WHERE user_id = $1
			AND ($2::date IS NULL OR date >= $2)
			AND ($3::date IS NULL OR date < $3)
		ORDER BY date DESC, id DESC`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	incomes := make([]*domain.Income, 0)
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}

// Delete removes an income record owned by the user
func (r *IncomeRepository) Delete(ctx context.Context, userID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM income WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIncomeNotFound
	}
	return nil
}

// SumByDateRange sums income dated in [from, to)
func (r *IncomeRepository) SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM income
		WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, timeToPgDate(from), timeToPgDate(to),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// Count returns the number of income records of the user
func (r *IncomeRepository) Count(ctx context.Context, userID int32) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM income WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func scanIncome(row pgx.Row) (*domain.Income, error) {
	var (
		inc       domain.Income
		amount    pgtype.Numeric
		date      pgtype.Date
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&inc.ID, &inc.UserID, &amount, &inc.Description, &date, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrIncomeNotFound
		}
		return nil, err
	}
	inc.Amount = pgNumericToDecimal(amount)
	inc.Date = pgDateToTime(date)
	inc.CreatedAt = pgTimestamptzToTime(createdAt)
	return &inc, nil
}

func filterBounds(filters *domain.RecordFilters) (pgtype.Date, pgtype.Date) {
	var from, to pgtype.Date
	if filters == nil {
		return from, to
	}
	if filters.From != nil {
		from = timeToPgDate(*filters.From)
	}
	if filters.To != nil {
		to = timeToPgDate(*filters.To)
	}
	return from, to
}

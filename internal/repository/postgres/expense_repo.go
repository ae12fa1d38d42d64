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

const expenseColumns = `id, user_id, amount, description, category, date, created_at`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create stores a new expense
func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	amount, err := decimalToPgNumeric(expense.Amount)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, description, category, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+expenseColumns,
		expense.UserID, amount, expense.Description, expense.Category, timeToPgDate(expense.Date),
	)
	return scanExpense(row)
}

// GetByID retrieves an expense owned by the user
func (r *ExpenseRepository) GetByID(ctx context.Context, userID, id int32) (*domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	return scanExpense(row)
}

// List returns the user's expenses newest first, optionally limited to a date range
func (r *ExpenseRepository) List(ctx context.Context, userID int32, filters *domain.RecordFilters) ([]*domain.Expense, error) {
	from, to := filterBounds(filters)
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
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

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

// Delete removes an expense owned by the user
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

// SumByDateRange sums expenses dated in [from, to)
func (r *ExpenseRepository) SumByDateRange(ctx context.Context, userID int32, from, to time.Time) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM expenses
		WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, timeToPgDate(from), timeToPgDate(to),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// Count returns the number of expenses of the user
func (r *ExpenseRepository) Count(ctx context.Context, userID int32) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var (
		exp       domain.Expense
		amount    pgtype.Numeric
		date      pgtype.Date
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&exp.ID, &exp.UserID, &amount, &exp.Description, &exp.Category, &date, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, err
	}
	exp.Amount = pgNumericToDecimal(amount)
	exp.Date = pgDateToTime(date)
	exp.CreatedAt = pgTimestamptzToTime(createdAt)
	return &exp, nil
}

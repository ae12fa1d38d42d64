package postgres

import (
	"context"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const legalUpdateColumns = `id, date, title, topic, importance, summary, source, url`

// LegalUpdateRepository implements domain.LegalUpdateRepository using PostgreSQL
type LegalUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewLegalUpdateRepository creates a new LegalUpdateRepository
func NewLegalUpdateRepository(pool *pgxpool.Pool) *LegalUpdateRepository {
	return &LegalUpdateRepository{pool: pool}
}

// ListByMonth returns the updates dated within the month, newest first
func (r *LegalUpdateRepository) ListByMonth(ctx context.Context, year, month int) ([]*domain.LegalUpdate, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	rows, err := r.pool.Query(ctx, `
		SELECT `+legalUpdateColumns+`
		FROM legal_updates
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, id`,
		timeToPgDate(from), timeToPgDate(from.AddDate(0, 1, 0)),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	updates := make([]*domain.LegalUpdate, 0)
	for rows.Next() {
		update, err := scanLegalUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, update)
	}
	return updates, rows.Err()
}

// Upsert stores an update, replacing the one with the same ID
func (r *LegalUpdateRepository) Upsert(ctx context.Context, u *domain.LegalUpdate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO legal_updates (id, date, title, topic, importance, summary, source, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET date = EXCLUDED.date, title = EXCLUDED.title, topic = EXCLUDED.topic,
			importance = EXCLUDED.importance, summary = EXCLUDED.summary,
			source = EXCLUDED.source, url = EXCLUDED.url, updated_at = NOW()`,
		u.ID, timeToPgDate(u.Date), u.Title, stringPtrToPgText(u.Topic), string(u.Importance),
		u.Summary, u.Source, u.URL,
	)
	return err
}

func scanLegalUpdate(row pgx.Row) (*domain.LegalUpdate, error) {
	var (
		u          domain.LegalUpdate
		date       pgtype.Date
		topic      pgtype.Text
		importance string
	)
	if err := row.Scan(&u.ID, &date, &u.Title, &topic, &importance, &u.Summary, &u.Source, &u.URL); err != nil {
		return nil, err
	}
	u.Date = pgDateToTime(date)
	u.Topic = pgTextToStringPtr(topic)
	u.Importance = domain.Importance(importance)
	return &u, nil
}

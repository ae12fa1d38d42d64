package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const clientColumns = `id, user_id, name, country, email, phone, iban, notes, created_at`

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

// Create stores a new client
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (user_id, name, country, email, phone, iban, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+clientColumns,
		client.UserID, client.Name,
		stringPtrToPgText(client.Country), stringPtrToPgText(client.Email), stringPtrToPgText(client.Phone),
		stringPtrToPgText(client.IBAN), stringPtrToPgText(client.Notes),
	)
	created, err := scanClient(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

// List returns the user's clients by name; search matches name, country or email case-insensitively
func (r *ClientRepository) List(ctx context.Context, userID int32, search string) ([]*domain.Client, error) {
	pattern := pgtype.Text{}
	if s := strings.TrimSpace(search); s != "" {
		pattern = pgtype.Text{String: "%" + escapeLike(s) + "%", Valid: true}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE user_id = $1
			AND ($2::text IS NULL OR name ILIKE $2 OR country ILIKE $2 OR email ILIKE $2)
		ORDER BY name, id`,
		userID, pattern,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		c         domain.Client
		country   pgtype.Text
		email     pgtype.Text
		phone     pgtype.Text
		iban      pgtype.Text
		notes     pgtype.Text
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &country, &email, &phone, &iban, &notes, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	c.Country = pgTextToStringPtr(country)
	c.Email = pgTextToStringPtr(email)
	c.Phone = pgTextToStringPtr(phone)
	c.IBAN = pgTextToStringPtr(iban)
	c.Notes = pgTextToStringPtr(notes)
	c.CreatedAt = pgTimestamptzToTime(createdAt)
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

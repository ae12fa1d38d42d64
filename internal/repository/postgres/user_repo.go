package postgres

import (
	"context"
	"errors"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, firebase_uid, email, first_name, last_name, middle_name, phone, tax_id,
	fop_group, pays_esv, kveds, onboarding_completed, calculations, created_at, updated_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByFirebaseUID retrieves a user by Firebase uid
func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE firebase_uid = $1`, uid)
	return scanUser(row)
}

// CreateOrGetByFirebaseUID inserts a user on first login and returns the stored row otherwise.
// A non-empty email from the token refreshes the stored one.
func (r *UserRepository) CreateOrGetByFirebaseUID(ctx context.Context, uid, email, firstName, lastName string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (firebase_uid, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (firebase_uid) DO UPDATE
			SET email = COALESCE(NULLIF(EXCLUDED.email, ''), users.email)
		RETURNING `+userColumns,
		uid, email, firstName, lastName,
	)
	return scanUser(row)
}

// Update changes the editable profile fields
func (r *UserRepository) Update(ctx context.Context, id int32, update domain.UserUpdate) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, middle_name = $4, phone = $5,
			email = COALESCE($6, email), updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, update.FirstName, update.LastName,
		stringPtrToPgText(update.MiddleName), stringPtrToPgText(update.Phone), stringPtrToPgText(update.Email),
	)
	return scanUser(row)
}

// CompleteOnboarding stores the onboarding answers and marks the profile complete
func (r *UserRepository) CompleteOnboarding(ctx context.Context, id int32, o domain.Onboarding) (*domain.User, error) {
	kveds := o.KVEDs
	if kveds == nil {
		kveds = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET first_name = $2, last_name = $3, middle_name = $4, tax_id = $5, email = $6, phone = $7,
			fop_group = $8, pays_esv = $9, kveds = $10, onboarding_completed = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns,
		id, o.FirstName, o.LastName, stringPtrToPgText(o.MiddleName), o.TaxID, o.Email, o.Phone,
		int16(o.TaxGroup), o.PaysESV, kveds,
	)
	return scanUser(row)
}

// IncrementCalculations bumps the tax calculation counter
func (r *UserRepository) IncrementCalculations(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET calculations = calculations + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ListOnboarded returns every user who finished onboarding
func (r *UserRepository) ListOnboarded(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE onboarding_completed ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		middleName pgtype.Text
		phone      pgtype.Text
		taxID      pgtype.Text
		group      int16
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&u.ID, &u.FirebaseUID, &u.Email, &u.FirstName, &u.LastName, &middleName, &phone, &taxID,
		&group, &u.PaysESV, &u.KVEDs, &u.OnboardingCompleted, &u.Calculations, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.MiddleName = pgTextToStringPtr(middleName)
	u.Phone = pgTextToStringPtr(phone)
	u.TaxID = pgTextToStringPtr(taxID)
	u.FOPGroup = domain.TaxGroup(group)
	u.CreatedAt = pgTimestamptzToTime(createdAt)
	u.UpdatedAt = pgTimestamptzToTime(updatedAt)
	return &u, nil
}

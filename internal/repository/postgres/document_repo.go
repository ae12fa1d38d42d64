package postgres

import (
	"context"
	"errors"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentColumns = `id, user_id, type, category, file_name, content_type, size, object_path,
	thumbnail_path, year, quarter, created_at`

// DocumentRepository implements domain.DocumentRepository using PostgreSQL
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// Create stores document metadata; the ID is generated by the caller
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, user_id, type, category, file_name, content_type, size, object_path,
			thumbnail_path, year, quarter)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+documentColumns,
		pgtype.UUID{Bytes: doc.ID, Valid: true}, doc.UserID, string(doc.Type), stringPtrToPgText(doc.Category),
		doc.FileName, doc.ContentType, doc.Size, doc.ObjectPath,
		stringPtrToPgText(doc.ThumbnailPath), intPtrToPgInt4(doc.Year), intPtrToPgInt4(doc.Quarter),
	)
	return scanDocument(row)
}

// GetByID retrieves a document owned by the user
func (r *DocumentRepository) GetByID(ctx context.Context, userID int32, id uuid.UUID) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE user_id = $1 AND id = $2`,
		userID, pgtype.UUID{Bytes: id, Valid: true})
	return scanDocument(row)
}

// List returns the user's documents newest first, optionally of one type
func (r *DocumentRepository) List(ctx context.Context, userID int32, docType *domain.DocumentType) ([]*domain.Document, error) {
	typeFilter := pgtype.Text{}
	if docType != nil {
		typeFilter = pgtype.Text{String: string(*docType), Valid: true}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE user_id = $1 AND ($2::text IS NULL OR type = $2)
		ORDER BY created_at DESC`,
		userID, typeFilter,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes document metadata owned by the user
func (r *DocumentRepository) Delete(ctx context.Context, userID int32, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE user_id = $1 AND id = $2`,
		userID, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var (
		d             domain.Document
		id            pgtype.UUID
		docType       string
		category      pgtype.Text
		thumbnailPath pgtype.Text
		year          pgtype.Int4
		quarter       pgtype.Int4
		createdAt     pgtype.Timestamptz
	)
	err := row.Scan(&id, &d.UserID, &docType, &category, &d.FileName, &d.ContentType, &d.Size, &d.ObjectPath,
		&thumbnailPath, &year, &quarter, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.Type = domain.DocumentType(docType)
	d.Category = pgTextToStringPtr(category)
	d.ThumbnailPath = pgTextToStringPtr(thumbnailPath)
	d.Year = pgInt4ToIntPtr(year)
	d.Quarter = pgInt4ToIntPtr(quarter)
	d.CreatedAt = pgTimestamptzToTime(createdAt)
	return &d, nil
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type DocumentType string

const (
	DocumentTypeDeclaration DocumentType = "declaration"
	DocumentTypeInvoice     DocumentType = "invoice"
	DocumentTypeOther       DocumentType = "other"
)

// IsValid reports whether t is a known document type
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeDeclaration, DocumentTypeInvoice, DocumentTypeOther:
		return true
	}
	return false
}

// Document is metadata of a file stored in the archive bucket
type Document struct {
	ID            uuid.UUID    `json:"id"`
	UserID        int32        `json:"userId"`
	Type          DocumentType `json:"type"`
	Category      *string      `json:"category,omitempty"`
	FileName      string       `json:"fileName"`
	ContentType   string       `json:"contentType"`
	Size          int64        `json:"size"`
	ObjectPath    string       `json:"filePath"`
	ThumbnailPath *string      `json:"thumbnailPath,omitempty"`
	Year          *int         `json:"year,omitempty"`
	Quarter       *int         `json:"quarter,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) (*Document, error)
	GetByID(ctx context.Context, userID int32, id uuid.UUID) (*Document, error)
	List(ctx context.Context, userID int32, docType *DocumentType) ([]*Document, error)
	Delete(ctx context.Context, userID int32, id uuid.UUID) error
}

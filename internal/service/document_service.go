package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/repository/storage"
	"github.com/fopilot/fopilot-backend/internal/util"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	ThumbnailWidth  = 200
	JPEGQuality     = 85
	PresignedURLTTL = 15 * time.Minute
	defaultFileStem = "document"
	thumbnailSuffix = "_thumb.jpg"
	octetStream     = "application/octet-stream"
)

// AllowedDocumentTypes maps accepted MIME types to the extension used in object paths
var AllowedDocumentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"text/xml":        ".xml",
	"application/xml": ".xml",
}

// DocumentView is document metadata with short-lived links to its objects
type DocumentView struct {
	*domain.Document
	ThumbnailURL string
}

// DocumentService handles the document archive
type DocumentService struct {
	docRepo   domain.DocumentRepository
	store     storage.DocumentStore
	publisher websocket.EventPublisher
}

// NewDocumentService creates a new DocumentService; store may be nil when storage is not configured
func NewDocumentService(docRepo domain.DocumentRepository, store storage.DocumentStore, publisher websocket.EventPublisher) *DocumentService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &DocumentService{docRepo: docRepo, store: store, publisher: publisher}
}

// IsEnabled indicates whether uploads and downloads are supported
func (s *DocumentService) IsEnabled() bool {
	return s != nil && s.store != nil
}

// UploadDocumentInput holds an uploaded file and its archive labels
type UploadDocumentInput struct {
	FileName    string
	Data        []byte
	ContentType string
	Type        domain.DocumentType
	Category    *string
	Year        *int
	Quarter     *int
}

// DecodeBase64Document decodes raw base64 or a data URI and returns the content type it declares
func DecodeBase64Document(payload string) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	contentType := ""
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, "", domain.ErrInvalidDocument
		}
		meta := payload[len("data:"):comma]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", domain.ErrInvalidDocument
		}
		contentType = strings.TrimSuffix(meta, ";base64")
		payload = payload[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", domain.ErrInvalidDocument
	}
	return data, contentType, nil
}

// Upload validates and stores a document, adding a thumbnail for images
func (s *DocumentService) Upload(ctx context.Context, userID int32, input UploadDocumentInput) (*DocumentView, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrStorageDisabled
	}
	contentType, err := validateDocument(input)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	base := fmt.Sprintf("%d/documents/%s", userID, id)
	objectPath := base + AllowedDocumentTypes[contentType]

	if _, err := s.store.Upload(ctx, objectPath, bytes.NewReader(input.Data), contentType, int64(len(input.Data))); err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	var thumbnailPath *string
	if strings.HasPrefix(contentType, "image/") {
		path := base + thumbnailSuffix
		if err := s.uploadThumbnail(ctx, path, input.Data); err != nil {
			_ = s.store.Delete(ctx, objectPath)
			return nil, err
		}
		thumbnailPath = &path
	}

	doc, err := s.docRepo.Create(ctx, &domain.Document{
		ID:            id,
		UserID:        userID,
		Type:          input.Type,
		Category:      trimOptional(input.Category),
		FileName:      sanitizeFileName(input.FileName, contentType),
		ContentType:   contentType,
		Size:          int64(len(input.Data)),
		ObjectPath:    objectPath,
		ThumbnailPath: thumbnailPath,
		Year:          input.Year,
		Quarter:       input.Quarter,
	})
	if err != nil {
		s.deleteObjects(ctx, objectPath, thumbnailPath)
		return nil, err
	}

	view := s.view(ctx, doc)
	s.publisher.Publish(userID, websocket.DocumentCreated(doc))
	return view, nil
}

// List returns the user's documents, optionally of one type
func (s *DocumentService) List(ctx context.Context, userID int32, docType *domain.DocumentType) ([]*DocumentView, error) {
	if docType != nil && !docType.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	docs, err := s.docRepo.List(ctx, userID, docType)
	if err != nil {
		return nil, err
	}
	views := make([]*DocumentView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, s.view(ctx, doc))
	}
	return views, nil
}

// Download returns the document metadata and its stored object; the caller closes the body
func (s *DocumentService) Download(ctx context.Context, userID int32, id uuid.UUID) (*domain.Document, *storage.Object, error) {
	if !s.IsEnabled() {
		return nil, nil, domain.ErrStorageDisabled
	}
	doc, err := s.docRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.store.Download(ctx, doc.ObjectPath)
	if err != nil {
		return nil, nil, err
	}
	return doc, obj, nil
}

// Delete removes a document and its objects
func (s *DocumentService) Delete(ctx context.Context, userID int32, id uuid.UUID) error {
	doc, err := s.docRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if s.IsEnabled() {
		s.deleteObjects(ctx, doc.ObjectPath, doc.ThumbnailPath)
	}
	s.publisher.Publish(userID, websocket.DocumentDeleted(doc))
	return nil
}

func validateDocument(input UploadDocumentInput) (string, error) {
	if len(input.Data) == 0 {
		return "", domain.ErrDocumentEmpty
	}
	if len(input.Data) > domain.MaxDocumentSize {
		return "", domain.ErrDocumentTooLarge
	}
	if !input.Type.IsValid() {
		return "", domain.ErrInvalidInput
	}
	if input.Year != nil && !ValidYear(*input.Year) {
		return "", domain.ErrInvalidPeriod
	}
	if input.Quarter != nil && !util.ValidQuarter(*input.Quarter) {
		return "", domain.ErrInvalidPeriod
	}

	contentType := detectContentType(input)
	if _, ok := AllowedDocumentTypes[contentType]; !ok {
		return "", domain.ErrInvalidDocument
	}
	return contentType, nil
}

// detectContentType trusts the declared type unless it is missing or generic, then sniffs the bytes
func detectContentType(input UploadDocumentInput) string {
	declared := strings.ToLower(strings.TrimSpace(strings.Split(input.ContentType, ";")[0]))
	if declared != "" && declared != octetStream {
		return declared
	}
	sniffed := strings.Split(http.DetectContentType(input.Data), ";")[0]
	if sniffed == "text/plain" && strings.EqualFold(filepath.Ext(input.FileName), ".xml") {
		return "application/xml"
	}
	return sniffed
}

func (s *DocumentService) uploadThumbnail(ctx context.Context, path string, data []byte) error {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return domain.ErrInvalidDocument
	}
	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	if _, err := s.store.Upload(ctx, path, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		return fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	return nil
}

func (s *DocumentService) view(ctx context.Context, doc *domain.Document) *DocumentView {
	view := &DocumentView{Document: doc}
	if doc.ThumbnailPath == nil || !s.IsEnabled() {
		return view
	}
	url, err := s.store.GeneratePresignedURL(ctx, *doc.ThumbnailPath, PresignedURLTTL)
	if err != nil {
		log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("Failed to presign thumbnail")
		return view
	}
	view.ThumbnailURL = url
	return view
}

// deleteObjects removes stored objects, best effort
func (s *DocumentService) deleteObjects(ctx context.Context, objectPath string, thumbnailPath *string) {
	paths := []string{objectPath}
	if thumbnailPath != nil {
		paths = append(paths, *thumbnailPath)
	}
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			log.Warn().Err(err).Str("object_path", p).Msg("Failed to delete document object")
		}
	}
}

func sanitizeFileName(name, contentType string) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if name == "" || name == "." || name == "/" {
		return defaultFileStem + AllowedDocumentTypes[contentType]
	}
	return name
}

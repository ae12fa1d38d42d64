package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/repository/storage"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DocumentHandler handles the document archive
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// UploadDocumentRequest is a base64 upload, used for generated declarations
type UploadDocumentRequest struct {
	FileName  string  `json:"file_name"`
	PDFBase64 string  `json:"pdf_base64"`
	Type      string  `json:"type"`
	Category  *string `json:"category,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Quarter   *int    `json:"quarter,omitempty"`
}

// DocumentResponse represents document metadata in API responses
type DocumentResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Category     *string `json:"category"`
	FileName     string  `json:"file_name"`
	ContentType  string  `json:"content_type"`
	Size         int64   `json:"size"`
	Year         *int    `json:"year"`
	Quarter      *int    `json:"quarter"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// ListDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param type query string false "Document type" Enums(declaration, invoice, other)
// @Success 200 {array} DocumentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /documents [get]
func (h *DocumentHandler) ListDocuments(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var docType *domain.DocumentType
	if raw := strings.TrimSpace(c.QueryParam("type")); raw != "" {
		t := domain.DocumentType(raw)
		if !t.IsValid() {
			return NewFieldError(c, "type", "Must be one of: declaration, invoice, other")
		}
		docType = &t
	}

	docs, err := h.documentService.List(c.Request().Context(), userID, docType)
	if err != nil {
		return handleServiceError(c, err, "list documents")
	}

	response := make([]DocumentResponse, len(docs))
	for i, doc := range docs {
		response[i] = toDocumentResponse(doc)
	}
	return c.JSON(http.StatusOK, response)
}

// UploadBase64 godoc
// @Summary Upload a base64 document
// @Description Store a document sent as base64 or a data URI, at most 10 MB decoded
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadDocumentRequest true "Document"
// @Success 201 {object} DocumentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 413 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /documents/upload [post]
func (h *DocumentHandler) UploadBase64(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if !h.documentService.IsEnabled() {
		return NewServiceUnavailableError(c, "Document uploads are disabled (storage not configured)")
	}

	var req UploadDocumentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	data, contentType, err := service.DecodeBase64Document(req.PDFBase64)
	if err != nil {
		return NewFieldError(c, "pdf_base64", "Must be base64 or a base64 data URI")
	}
	docType, ok := parseDocumentType(req.Type)
	if !ok {
		return NewFieldError(c, "type", "Must be one of: declaration, invoice, other")
	}

	return h.upload(c, userID, service.UploadDocumentInput{
		FileName:    req.FileName,
		Data:        data,
		ContentType: contentType,
		Type:        docType,
		Category:    req.Category,
		Year:        req.Year,
		Quarter:     req.Quarter,
	})
}

// UploadMultipart godoc
// @Summary Upload a document
// @Description Store an uploaded file. Images also get a 200px wide JPEG thumbnail
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF, JPEG, PNG or XML file, at most 10 MB"
// @Param type formData string true "Document type" Enums(declaration, invoice, other)
// @Param category formData string false "Free-form category"
// @Param year formData int false "Tax year the document belongs to"
// @Param quarter formData int false "Quarter 1-4 the document belongs to"
// @Success 201 {object} DocumentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /documents [post]
func (h *DocumentHandler) UploadMultipart(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}
	if !h.documentService.IsEnabled() {
		return NewServiceUnavailableError(c, "Document uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewFieldError(c, "file", "File is required")
	}
	if file.Size > domain.MaxDocumentSize {
		return NewFieldError(c, "file", "File must be 10 MB or less")
	}

	docType, ok := parseDocumentType(c.FormValue("type"))
	if !ok {
		return NewFieldError(c, "type", "Must be one of: declaration, invoice, other")
	}
	year, err := optionalFormInt(c, "year")
	if err != nil {
		return NewFieldError(c, "year", "Must be a valid integer")
	}
	quarter, err := optionalFormInt(c, "quarter")
	if err != nil {
		return NewFieldError(c, "quarter", "Must be a valid integer")
	}
	var category *string
	if v := c.FormValue("category"); v != "" {
		category = &v
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, domain.MaxDocumentSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	return h.upload(c, userID, service.UploadDocumentInput{
		FileName:    file.Filename,
		Data:        data,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Type:        docType,
		Category:    category,
		Year:        year,
		Quarter:     quarter,
	})
}

func (h *DocumentHandler) upload(c echo.Context, userID int32, input service.UploadDocumentInput) error {
	view, err := h.documentService.Upload(c.Request().Context(), userID, input)
	if err != nil {
		return handleServiceError(c, err, "upload document")
	}

	log.Info().
		Int32("user_id", userID).
		Str("document_id", view.ID.String()).
		Str("type", string(view.Type)).
		Msg("Document uploaded successfully")

	return c.JSON(http.StatusCreated, toDocumentResponse(view))
}

// Download godoc
// @Summary Download a document
// @Description Streams the stored file as an attachment
// @Tags documents
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Document ID" format(uuid)
// @Success 200 {file} file
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewFieldError(c, "id", "Must be a valid document ID")
	}

	doc, obj, err := h.documentService.Download(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return NewNotFoundError(c, "Document file not found")
		}
		return handleServiceError(c, err, "download document")
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = doc.ContentType
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": doc.FileName}))
	if obj.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(obj.Size, 10))
	}
	return c.Stream(http.StatusOK, contentType, obj.Body)
}

// DeleteDocument godoc
// @Summary Delete a document
// @Tags documents
// @Security BearerAuth
// @Param id path string true "Document ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewFieldError(c, "id", "Must be a valid document ID")
	}

	if err := h.documentService.Delete(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete document")
	}

	return c.NoContent(http.StatusNoContent)
}

// parseDocumentType defaults an empty type to other
func parseDocumentType(raw string) (domain.DocumentType, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.DocumentTypeOther, true
	}
	t := domain.DocumentType(raw)
	return t, t.IsValid()
}

func optionalFormInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.FormValue(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func toDocumentResponse(view *service.DocumentView) DocumentResponse {
	return DocumentResponse{
		ID:           view.ID.String(),
		Type:         string(view.Type),
		Category:     view.Category,
		FileName:     view.FileName,
		ContentType:  view.ContentType,
		Size:         view.Size,
		Year:         view.Year,
		Quarter:      view.Quarter,
		ThumbnailURL: view.ThumbnailURL,
		CreatedAt:    view.CreatedAt.Format(timeLayout),
	}
}

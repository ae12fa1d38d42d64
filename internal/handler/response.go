package handler

import (
	"errors"
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation         = "https://fopilot.app/errors/validation"
	ErrorTypeNotFound           = "https://fopilot.app/errors/not-found"
	ErrorTypeUnauthorized       = "https://fopilot.app/errors/unauthorized"
	ErrorTypeForbidden          = "https://fopilot.app/errors/forbidden"
	ErrorTypeConflict           = "https://fopilot.app/errors/conflict"
	ErrorTypeInternal           = "https://fopilot.app/errors/internal"
	ErrorTypeBadGateway         = "https://fopilot.app/errors/bad-gateway"
	ErrorTypeServiceUnavailable = "https://fopilot.app/errors/service-unavailable"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewFieldError creates a validation error response for a single field
func NewFieldError(c echo.Context, field, message string) error {
	return NewValidationError(c, "Validation failed", []ValidationError{
		{Field: field, Message: message},
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBadGatewayError creates a response for a failed upstream dependency
func NewBadGatewayError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeBadGateway,
		Title:    "Bad Gateway",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a response for a feature that is not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeServiceUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation sentinels to the request field they concern
var fieldErrors = []struct {
	err     error
	field   string
	message string
}{
	{domain.ErrNameRequired, "name", "Name is required"},
	{domain.ErrNameTooLong, "name", "Name must be 255 characters or less"},
	{domain.ErrInvalidAmount, "amount", "Amount must be positive"},
	{domain.ErrInvalidDate, "date", "Must be in YYYY-MM-DD format"},
	{domain.ErrDescriptionTooLong, "description", "Description must be 1000 characters or less"},
	{domain.ErrCategoryRequired, "category", "Category is required"},
	{domain.ErrCategoryTooLong, "category", "Category must be 100 characters or less"},
	{domain.ErrInvalidEmail, "email", "Must be a valid email address"},
	{domain.ErrInvalidTaxID, "taxId", "Tax ID must contain 10 digits"},
	{domain.ErrInvalidTaxGroup, "taxGroup", "Tax group must be 2 or 3"},
	{domain.ErrInvalidPeriod, "period", "Year must be 2000-2100 and quarter 1-4"},
	{domain.ErrDocumentEmpty, "file", "File is empty"},
	{domain.ErrDocumentTooLarge, "file", "File must be 10 MB or less"},
	{domain.ErrInvalidDocument, "file", "Must be a PDF, JPEG, PNG or XML file"},
	{domain.ErrUnknownCurrency, "from", "Must be one of: USD, EUR, UAH"},
	{domain.ErrInvalidImportance, "importance", "Must be one of: high, medium, low"},
}

// handleServiceError writes the response for an error returned by a service
func handleServiceError(c echo.Context, err error, action string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewFieldError(c, fe.field, fe.message)
		}
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Invalid request", nil)
	case errors.Is(err, domain.ErrIncomeNotFound):
		return NewNotFoundError(c, "Income not found")
	case errors.Is(err, domain.ErrExpenseNotFound):
		return NewNotFoundError(c, "Expense not found")
	case errors.Is(err, domain.ErrDocumentNotFound):
		return NewNotFoundError(c, "Document not found")
	case errors.Is(err, domain.ErrClientNotFound):
		return NewNotFoundError(c, "Client not found")
	case errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "User not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrAccountMismatch):
		return NewForbiddenError(c, "Profile does not belong to the signed-in account")
	case errors.Is(err, domain.ErrAlreadyExists):
		return NewConflictError(c, "Resource already exists")
	case errors.Is(err, domain.ErrStorageDisabled):
		return NewServiceUnavailableError(c, "Document storage is not configured")
	case errors.Is(err, domain.ErrRatesUnavailable):
		return NewBadGatewayError(c, "Exchange rates are unavailable")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}

package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalError      = errors.New("internal error")
	ErrUserNotFound       = errors.New("user not found")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrInvalidDate        = errors.New("invalid date")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
	ErrCategoryRequired   = errors.New("category is required")
	ErrCategoryTooLong    = errors.New("category exceeds maximum length")
	ErrIncomeNotFound     = errors.New("income not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrClientNotFound     = errors.New("client not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidTaxID       = errors.New("tax id must contain 10 digits")
	ErrInvalidTaxGroup    = errors.New("unsupported tax group")
	ErrInvalidPeriod      = errors.New("invalid period")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrDocumentTooLarge   = errors.New("document exceeds maximum size")
	ErrDocumentEmpty      = errors.New("document is empty")
	ErrInvalidDocument    = errors.New("invalid document data")
	ErrStorageDisabled    = errors.New("document storage not configured")
	ErrRatesUnavailable   = errors.New("exchange rates unavailable")
	ErrUnknownCurrency    = errors.New("unknown currency")
	ErrAccountMismatch    = errors.New("profile does not belong to the signed-in account")
	ErrInvalidImportance  = errors.New("invalid importance")
	ErrLegalUpdateInvalid = errors.New("legal update needs a date, title and source url")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxCategoryLength    = 100
	MaxDocumentSize      = 10 * 1024 * 1024
	TaxIDLength          = 10
)

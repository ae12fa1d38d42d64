package handler

import (
	"errors"
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// LegalHandler serves the legislation digest
type LegalHandler struct {
	legalService *service.LegalService
}

// NewLegalHandler creates a new LegalHandler
func NewLegalHandler(legalService *service.LegalService) *LegalHandler {
	return &LegalHandler{legalService: legalService}
}

// LegalDigestItemResponse is one legislative change in the digest
type LegalDigestItemResponse struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Title      string  `json:"title"`
	Topic      *string `json:"topic"`
	Importance string  `json:"importance" enums:"high,medium,low"`
	Summary    string  `json:"summary"`
	Source     string  `json:"source"`
	URL        string  `json:"url"`
}

// MonthlyDigestResponse lists the changes of one month
type MonthlyDigestResponse struct {
	Year  int                       `json:"year"`
	Month int                       `json:"month"`
	Count int                       `json:"count"`
	Items []LegalDigestItemResponse `json:"items"`
}

// MonthlyDigest godoc
// @Summary Monthly legislation digest
// @Description Legislative changes relevant to FOPs published in a month, most important first
// @Tags legal
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param month query int false "Month 1-12, defaults to the current one"
// @Success 200 {object} MonthlyDigestResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /legal/monthly-digest [get]
func (h *LegalHandler) MonthlyDigest(c echo.Context) error {
	year, err := optionalIntParam(c, "year")
	if err != nil {
		return NewFieldError(c, "year", "Must be a valid integer")
	}
	month, err := optionalIntParam(c, "month")
	if err != nil {
		return NewFieldError(c, "month", "Must be a valid integer")
	}

	digest, err := h.legalService.MonthlyDigest(c.Request().Context(), year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPeriod) {
			return NewValidationError(c, "Invalid month", []ValidationError{
				{Field: "year", Message: "Must be between 2000 and 2100"},
				{Field: "month", Message: "Must be between 1 and 12"},
			})
		}
		return handleServiceError(c, err, "get legal digest")
	}

	items := make([]LegalDigestItemResponse, len(digest.Items))
	for i, u := range digest.Items {
		items[i] = LegalDigestItemResponse{
			ID:         u.ID,
			Date:       formatDate(u.Date),
			Title:      u.Title,
			Topic:      u.Topic,
			Importance: string(u.Importance),
			Summary:    u.Summary,
			Source:     u.Source,
			URL:        u.URL,
		}
	}
	return c.JSON(http.StatusOK, MonthlyDigestResponse{
		Year:  digest.Year,
		Month: digest.Month,
		Count: len(items),
		Items: items,
	})
}

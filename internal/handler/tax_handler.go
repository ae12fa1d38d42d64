package handler

import (
	"errors"
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// TaxHandler handles tax calculation HTTP requests
type TaxHandler struct {
	taxService *service.TaxService
}

// NewTaxHandler creates a new TaxHandler
func NewTaxHandler(taxService *service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

// ObligationResponse represents a quarter's tax obligation
type ObligationResponse struct {
	SingleTax string `json:"single_tax"`
	ESV       string `json:"esv"`
	Total     string `json:"total"`
}

// QuarterTaxResponse represents the obligation computed from recorded income
type QuarterTaxResponse struct {
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter"`
	TotalIncome string `json:"total_income"`
	FOPGroup    int    `json:"fop_group"`
	TaxRate     string `json:"tax_rate"`
	PaysESV     bool   `json:"pays_esv"`
	ObligationResponse
}

// CalculateRequest represents an ad-hoc calculation request
type CalculateRequest struct {
	TotalIncome DecimalInput `json:"totalIncome"`
	Group       *int         `json:"group,omitempty"`
	Year        *int         `json:"year,omitempty"`
	PaysESV     *bool        `json:"paysESV,omitempty"`
}

// DeclarationPrefillResponse holds the values of a group 3 quarterly declaration
type DeclarationPrefillResponse struct {
	FullName    string `json:"full_name"`
	TaxID       string `json:"tax_id"`
	Year        int    `json:"year"`
	Quarter     int    `json:"quarter"`
	PeriodText  string `json:"period_text"`
	TotalIncome string `json:"total_income"`
	ObligationResponse
}

// GetQuarter godoc
// @Summary Quarter tax
// @Description Income of a quarter and the single tax and ESV owed for the FOP's group
// @Tags taxes
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param quarter query int false "Quarter 1-4, defaults to the current one"
// @Success 200 {object} QuarterTaxResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /taxes/quarter [get]
func (h *TaxHandler) GetQuarter(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, quarter, verr := periodParams(c)
	if verr != nil {
		return NewFieldError(c, verr.Field, verr.Message)
	}

	result, err := h.taxService.QuarterSummary(c.Request().Context(), userID, year, quarter)
	if err != nil {
		return handleServiceError(c, err, "calculate quarter tax")
	}

	return c.JSON(http.StatusOK, QuarterTaxResponse{
		Year:               result.Aggregate.Year,
		Quarter:            result.Aggregate.Quarter,
		TotalIncome:        formatMoney(result.Aggregate.TotalIncome),
		FOPGroup:           int(result.Group),
		TaxRate:            result.TaxRate.String(),
		PaysESV:            result.PaysESV,
		ObligationResponse: toObligationResponse(result.Obligation),
	})
}

// Calculate godoc
// @Summary Calculate tax
// @Description Single tax and ESV for an income amount without touching stored data
// @Tags taxes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CalculateRequest true "Income and optional group, year and ESV flag"
// @Success 200 {object} ObligationResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /taxes/calculate [post]
func (h *TaxHandler) Calculate(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CalculateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	totalIncome, err := req.TotalIncome.Decimal()
	if err != nil {
		return NewFieldError(c, "totalIncome", "Must be a valid decimal number")
	}

	input := service.CalculateInput{
		TotalIncome: totalIncome,
		Year:        req.Year,
		PaysESV:     req.PaysESV,
	}
	if req.Group != nil {
		group := domain.TaxGroup(*req.Group)
		input.Group = &group
	}

	obligation, err := h.taxService.Calculate(c.Request().Context(), userID, input)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewFieldError(c, "totalIncome", "Must not be negative")
		}
		return handleServiceError(c, err, "calculate tax")
	}

	return c.JSON(http.StatusOK, toObligationResponse(obligation))
}

// DeclarationPrefill godoc
// @Summary Prefill group 3 declaration
// @Description Values for the quarterly declaration of a group 3 single tax payer
// @Tags taxes
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param quarter query int false "Quarter 1-4, defaults to the current one"
// @Success 200 {object} DeclarationPrefillResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /forms/declaration/3-group/prefill [get]
func (h *TaxHandler) DeclarationPrefill(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, quarter, verr := periodParams(c)
	if verr != nil {
		return NewFieldError(c, verr.Field, verr.Message)
	}

	prefill, err := h.taxService.DeclarationPrefill(c.Request().Context(), userID, year, quarter)
	if err != nil {
		return handleServiceError(c, err, "prefill declaration")
	}

	return c.JSON(http.StatusOK, DeclarationPrefillResponse{
		FullName:           prefill.FullName,
		TaxID:              prefill.TaxID,
		Year:               prefill.Year,
		Quarter:            prefill.Quarter,
		PeriodText:         prefill.PeriodText,
		TotalIncome:        formatMoney(prefill.TotalIncome),
		ObligationResponse: toObligationResponse(prefill.Obligation),
	})
}

func toObligationResponse(o domain.TaxObligation) ObligationResponse {
	return ObligationResponse{
		SingleTax: formatMoney(o.SingleTax),
		ESV:       formatMoney(o.SocialContribution),
		Total:     formatMoney(o.Total),
	}
}

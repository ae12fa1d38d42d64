package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// IncomeHandler handles income-related HTTP requests
type IncomeHandler struct {
	incomeService *service.IncomeService
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService}
}

// CreateIncomeRequest represents the create income request body.
// Amount accepts a JSON number or a decimal string.
type CreateIncomeRequest struct {
	Amount      DecimalInput `json:"amount"`
	Description string       `json:"description"`
	Date        *string      `json:"date,omitempty"`
}

// IncomeResponse represents an income record in API responses
type IncomeResponse struct {
	ID          int32  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

// CreateIncome godoc
// @Summary Record income
// @Description Record a received payment in UAH. Amount may be a JSON number or a decimal string
// @Tags income
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIncomeRequest true "Income entry"
// @Success 201 {object} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /income [post]
func (h *IncomeHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := req.Amount.Decimal()
	if err != nil {
		return NewFieldError(c, "amount", "Must be a valid decimal number")
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		return NewFieldError(c, "date", "Must be in YYYY-MM-DD format")
	}

	income, err := h.incomeService.CreateIncome(c.Request().Context(), userID, service.CreateIncomeInput{
		Amount:      amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return handleServiceError(c, err, "create income")
	}

	return c.JSON(http.StatusCreated, toIncomeResponse(income))
}

// ListIncome godoc
// @Summary List income
// @Description Income entries of the signed-in FOP, newest first, optionally limited to a year or quarter
// @Tags income
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param quarter query int false "Quarter 1-4, defaults to the current one"
// @Success 200 {array} IncomeResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /income [get]
func (h *IncomeHandler) ListIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, quarter, verr := periodParams(c)
	if verr != nil {
		return NewFieldError(c, verr.Field, verr.Message)
	}

	incomes, err := h.incomeService.ListIncome(c.Request().Context(), userID, year, quarter)
	if err != nil {
		return handleServiceError(c, err, "list income")
	}

	response := make([]IncomeResponse, len(incomes))
	for i, income := range incomes {
		response[i] = toIncomeResponse(income)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteIncome godoc
// @Summary Delete income
// @Tags income
// @Security BearerAuth
// @Param id path int true "Income ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /income/{id} [delete]
func (h *IncomeHandler) DeleteIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Must be a valid income ID")
	}

	if err := h.incomeService.DeleteIncome(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete income")
	}

	return c.NoContent(http.StatusNoContent)
}

func toIncomeResponse(income *domain.Income) IncomeResponse {
	return IncomeResponse{
		ID:          income.ID,
		Amount:      formatMoney(income.Amount),
		Description: income.Description,
		Date:        formatDate(income.Date),
		CreatedAt:   income.CreatedAt.Format(timeLayout),
	}
}

package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles expense-related HTTP requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Amount      DecimalInput `json:"amount"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Date        *string      `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID          int32  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
	CreatedAt   string `json:"created_at"`
}

// CreateExpense godoc
// @Summary Record expense
// @Description Record a business expense. Amount may be a JSON number or a decimal string
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "Expense entry"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateExpenseRequest
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

	expense, err := h.expenseService.CreateExpense(c.Request().Context(), userID, service.CreateExpenseInput{
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
	})
	if err != nil {
		return handleServiceError(c, err, "create expense")
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// ListExpenses godoc
// @Summary List expenses
// @Description Expenses of the signed-in FOP, newest first, optionally limited to a year or quarter
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param quarter query int false "Quarter 1-4, defaults to the current one"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, quarter, verr := periodParams(c)
	if verr != nil {
		return NewFieldError(c, verr.Field, verr.Message)
	}

	expenses, err := h.expenseService.ListExpenses(c.Request().Context(), userID, year, quarter)
	if err != nil {
		return handleServiceError(c, err, "list expenses")
	}

	response := make([]ExpenseResponse, len(expenses))
	for i, expense := range expenses {
		response[i] = toExpenseResponse(expense)
	}
	return c.JSON(http.StatusOK, response)
}

// DeleteExpense godoc
// @Summary Delete expense
// @Tags expenses
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Must be a valid expense ID")
	}

	if err := h.expenseService.DeleteExpense(c.Request().Context(), userID, id); err != nil {
		return handleServiceError(c, err, "delete expense")
	}

	return c.NoContent(http.StatusNoContent)
}

func toExpenseResponse(expense *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          expense.ID,
		Amount:      formatMoney(expense.Amount),
		Description: expense.Description,
		Category:    expense.Category,
		Date:        formatDate(expense.Date),
		CreatedAt:   expense.CreatedAt.Format(timeLayout),
	}
}

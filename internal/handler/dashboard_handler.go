package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// DashboardSummaryResponse represents the dashboard summary API response
type DashboardSummaryResponse struct {
	Year                 int                `json:"year"`
	Quarter              int                `json:"quarter"`
	Income               string             `json:"income"`
	Expenses             string             `json:"expenses"`
	Obligation           ObligationResponse `json:"obligation"`
	EffectiveTaxRate     string             `json:"effective_tax_rate"`
	NetIncome            string             `json:"net_income"`
	AverageMonthlyIncome string             `json:"average_monthly_income"`
	NextDeadline         *NextEventResponse `json:"next_deadline"`
}

// GetSummary godoc
// @Summary Dashboard summary
// @Description Quarter income, expenses, tax owed, effective rate and the next deadline
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Param quarter query int false "Quarter 1-4, defaults to the current one"
// @Success 200 {object} DashboardSummaryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /dashboard/summary [get]
func (h *DashboardHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	year, quarter, verr := periodParams(c)
	if verr != nil {
		return NewFieldError(c, verr.Field, verr.Message)
	}

	summary, err := h.dashboardService.GetSummary(c.Request().Context(), userID, year, quarter)
	if err != nil {
		return handleServiceError(c, err, "get dashboard summary")
	}

	return c.JSON(http.StatusOK, DashboardSummaryResponse{
		Year:                 summary.Year,
		Quarter:              summary.Quarter,
		Income:               formatMoney(summary.Income),
		Expenses:             formatMoney(summary.Expenses),
		Obligation:           toObligationResponse(summary.Obligation),
		EffectiveTaxRate:     summary.EffectiveTaxRate.StringFixed(1),
		NetIncome:            formatMoney(summary.NetIncome),
		AverageMonthlyIncome: formatMoney(summary.AverageMonthlyIncome),
		NextDeadline:         toNextEventResponse(summary.NextDeadline),
	})
}

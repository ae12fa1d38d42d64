package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/middleware"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// StatsHandler serves usage statistics
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats godoc
// @Summary Usage stats
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.UserStats
// @Failure 401 {object} ProblemDetails
// @Router /stats [get]
func (h *StatsHandler) GetStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	stats, err := h.statsService.GetStats(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "get stats")
	}

	return c.JSON(http.StatusOK, stats)
}

package handler

import (
	"net/http"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// CalendarHandler serves the tax calendar
type CalendarHandler struct {
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// TaxEventResponse represents a statutory deadline
type TaxEventResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Urgency     string `json:"urgency"`
}

// NextEventResponse is the nearest deadline with the days left until it
type NextEventResponse struct {
	Event    TaxEventResponse `json:"event"`
	DaysLeft int              `json:"daysLeft"`
}

// CalendarResponse represents the calendar of one year
type CalendarResponse struct {
	Year     int                `json:"year"`
	Events   []TaxEventResponse `json:"events"`
	Upcoming []TaxEventResponse `json:"upcoming"`
	Next     *NextEventResponse `json:"next"`
}

// CalendarDayResponse groups the events of one day
type CalendarDayResponse struct {
	Date    string             `json:"date"`
	Urgency string             `json:"urgency"`
	Events  []TaxEventResponse `json:"events"`
}

// GetYear godoc
// @Summary Tax calendar
// @Description Statutory deadlines of a year with the upcoming ones counted from today
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year 2000-2100, defaults to the current one"
// @Success 200 {object} CalendarResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /calendar [get]
func (h *CalendarHandler) GetYear(c echo.Context) error {
	year, err := optionalIntParam(c, "year")
	if err != nil {
		return NewFieldError(c, "year", "Must be a valid integer")
	}
	y := h.calendarService.CurrentYear()
	if year != nil {
		y = *year
	}

	cal, err := h.calendarService.Year(y)
	if err != nil {
		return NewFieldError(c, "year", "Must be between 2000 and 2100")
	}

	response := CalendarResponse{
		Year:     cal.Year,
		Events:   toTaxEventResponses(cal.Events),
		Upcoming: toTaxEventResponses(cal.Upcoming),
		Next:     toNextEventResponse(cal.Next),
	}
	return c.JSON(http.StatusOK, response)
}

// GetMonth godoc
// @Summary Calendar month
// @Description Days of a month that carry deadlines, with the highest urgency of each day
// @Tags calendar
// @Produce json
// @Security BearerAuth
// @Param year query int true "Year 2000-2100"
// @Param month query int true "Month 1-12"
// @Success 200 {array} CalendarDayResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /calendar/month [get]
func (h *CalendarHandler) GetMonth(c echo.Context) error {
	year, err := optionalIntParam(c, "year")
	if err != nil {
		return NewFieldError(c, "year", "Must be a valid integer")
	}
	month, err := optionalIntParam(c, "month")
	if err != nil {
		return NewFieldError(c, "month", "Must be a valid integer")
	}
	if year == nil || month == nil {
		return NewValidationError(c, "year and month are required", []ValidationError{
			{Field: "year", Message: "Required"},
			{Field: "month", Message: "Required"},
		})
	}

	days, err := h.calendarService.Month(*year, *month)
	if err != nil {
		return NewValidationError(c, "Invalid month", []ValidationError{
			{Field: "year", Message: "Must be between 2000 and 2100"},
			{Field: "month", Message: "Must be between 1 and 12"},
		})
	}

	response := make([]CalendarDayResponse, len(days))
	for i, day := range days {
		response[i] = CalendarDayResponse{
			Date:    formatDate(day.Date),
			Urgency: string(day.Urgency),
			Events:  toTaxEventResponses(day.Events),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func toTaxEventResponse(e domain.TaxEvent) TaxEventResponse {
	return TaxEventResponse{
		ID:          e.ID,
		Date:        formatDate(e.Date),
		Title:       e.Title,
		Description: e.Description,
		Type:        string(e.Kind),
		Urgency:     string(e.Urgency),
	}
}

func toTaxEventResponses(events []domain.TaxEvent) []TaxEventResponse {
	response := make([]TaxEventResponse, len(events))
	for i, e := range events {
		response[i] = toTaxEventResponse(e)
	}
	return response
}

func toNextEventResponse(next *domain.UpcomingEvent) *NextEventResponse {
	if next == nil {
		return nil
	}
	return &NextEventResponse{
		Event:    toTaxEventResponse(next.Event),
		DaysLeft: next.DaysLeft,
	}
}

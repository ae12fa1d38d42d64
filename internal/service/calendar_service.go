package service

import (
	"github.com/fopilot/fopilot-backend/internal/domain"
)

// CalendarService serves the tax calendar views
type CalendarService struct {
	scheduler *DeadlineScheduler
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(scheduler *DeadlineScheduler) *CalendarService {
	return &CalendarService{scheduler: scheduler}
}

// YearCalendar is the calendar of one year with what comes next from today
type YearCalendar struct {
	Year     int
	Events   []domain.TaxEvent
	Upcoming []domain.TaxEvent
	Next     *domain.UpcomingEvent
}

// Year returns the events of year. Upcoming and Next are relative to today
// and cross into neighbouring years, independent of which year is viewed.
func (s *CalendarService) Year(year int) (*YearCalendar, error) {
	if !ValidYear(year) {
		return nil, domain.ErrInvalidPeriod
	}
	next, _ := s.scheduler.Next()
	return &YearCalendar{
		Year:     year,
		Events:   GenerateTaxEvents(year),
		Upcoming: s.scheduler.Upcoming(DefaultUpcomingLimit),
		Next:     next,
	}, nil
}

// Month returns the days of a month that carry events
func (s *CalendarService) Month(year, month int) ([]domain.CalendarDay, error) {
	if !ValidYear(year) || month < 1 || month > 12 {
		return nil, domain.ErrInvalidPeriod
	}
	// January also shows the Q4 declaration and payment of the previous year
	events := append(GenerateTaxEvents(year-1), GenerateTaxEvents(year)...)
	return MonthDays(events, year, month), nil
}

// CurrentYear returns the year of today in the scheduler's time zone
func (s *CalendarService) CurrentYear() int {
	return s.scheduler.Today().Year()
}

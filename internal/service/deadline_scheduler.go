package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/util"
)

const (
	MinEventYear = 2000
	MaxEventYear = 2100

	// DefaultUpcomingLimit is the size of the upcoming list shown next to the calendar
	DefaultUpcomingLimit = 5

	esvDueDay         = 20
	declarationDueDay = 10
	taxDueDay         = 20

	esvEventPrefix         = "esv"
	declarationEventPrefix = "decl"
	taxEventPrefix         = "tax"
)

// DeadlineScheduler generates statutory FOP deadlines and answers "what's next".
// Generation is a pure function of the year; selection depends on the injected clock.
type DeadlineScheduler struct {
	now func() time.Time
	loc *time.Location
}

// NewDeadlineScheduler creates a scheduler that decides "today" with now in loc
func NewDeadlineScheduler(now func() time.Time, loc *time.Location) *DeadlineScheduler {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DeadlineScheduler{now: now, loc: loc}
}

// Today returns the current calendar date in the scheduler's time zone, as midnight UTC
func (s *DeadlineScheduler) Today() time.Time {
	return util.TruncateToDay(s.now(), s.loc)
}

// ValidYear reports whether events can be generated for year
func ValidYear(year int) bool {
	return year >= MinEventYear && year <= MaxEventYear
}

// GenerateTaxEvents returns the 20 statutory events of a year: 12 monthly ESV payments
// followed by a declaration and a single tax payment for each quarter.
// Years outside the supported range yield an empty list.
func GenerateTaxEvents(year int) []domain.TaxEvent {
	if !ValidYear(year) {
		return []domain.TaxEvent{}
	}

	events := make([]domain.TaxEvent, 0, 20)

	for month := 1; month <= 12; month++ {
		events = append(events, domain.TaxEvent{
			ID:          eventID(esvEventPrefix, year, month),
			Date:        dueDate(year, month, esvDueDay),
			Title:       "Сплата ЄСВ за " + util.MonthNameUK(month),
			Description: "Оплата єдиного соціального внеску до 20 числа",
			Kind:        domain.EventKindPayment,
			Urgency:     domain.UrgencyMedium,
		})
	}

	for quarter := 1; quarter <= 4; quarter++ {
		endMonth := util.QuarterEndMonth(quarter)
		dueYear, dueMonth := util.NextMonth(year, endMonth)
		label := util.QuarterLabel(quarter) + " квартал"

		events = append(events,
			domain.TaxEvent{
				ID:          eventID(declarationEventPrefix, year, endMonth),
				Date:        dueDate(dueYear, dueMonth, declarationDueDay),
				Title:       "Подання декларації за " + label,
				Description: "Подання податкової декларації ФОП",
				Kind:        domain.EventKindDeadline,
				Urgency:     domain.UrgencyHigh,
			},
			domain.TaxEvent{
				ID:          eventID(taxEventPrefix, year, endMonth),
				Date:        dueDate(dueYear, dueMonth, taxDueDay),
				Title:       "Сплата ЄП за " + label,
				Description: "Оплата єдиного податку до 20 числа",
				Kind:        domain.EventKindPayment,
				Urgency:     domain.UrgencyHigh,
			},
		)
	}

	return events
}

func eventID(prefix string, year, month int) string {
	return fmt.Sprintf("%s-%d-%02d", prefix, year, month)
}

// IsSocialContribution reports whether e is a monthly ESV payment
func IsSocialContribution(e domain.TaxEvent) bool {
	return strings.HasPrefix(e.ID, esvEventPrefix+"-")
}

func dueDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// UpcomingEvents returns events dated today or later, sorted by date with ties kept in
// input order, truncated to limit. A limit <= 0 returns all of them.
func UpcomingEvents(events []domain.TaxEvent, today time.Time, limit int) []domain.TaxEvent {
	today = util.TruncateToDay(today, nil)

	upcoming := make([]domain.TaxEvent, 0, len(events))
	for _, e := range events {
		if !e.Date.Before(today) {
			upcoming = append(upcoming, e)
		}
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})

	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

// NextEvent returns the earliest event dated today or later
func NextEvent(events []domain.TaxEvent, today time.Time) (*domain.UpcomingEvent, bool) {
	upcoming := UpcomingEvents(events, today, 1)
	if len(upcoming) == 0 {
		return nil, false
	}
	return &domain.UpcomingEvent{
		Event:    upcoming[0],
		DaysLeft: DaysLeft(upcoming[0].Date, today),
	}, true
}

// DaysLeft is the number of whole days from today until date, never negative.
// An event due today has 0 days left.
func DaysLeft(date, today time.Time) int {
	days := util.DaysBetween(util.TruncateToDay(today, nil), util.TruncateToDay(date, nil))
	if days < 0 {
		return 0
	}
	return days
}

// EventsOn returns the events due on day, in input order
func EventsOn(events []domain.TaxEvent, day time.Time) []domain.TaxEvent {
	y, m, d := day.Date()
	var result []domain.TaxEvent
	for _, e := range events {
		ey, em, ed := e.Date.Date()
		if ey == y && em == m && ed == d {
			result = append(result, e)
		}
	}
	return result
}

// DayUrgency reduces the urgency of the events due on day: high beats medium beats low.
// A day without events has no urgency.
func DayUrgency(events []domain.TaxEvent, day time.Time) domain.Urgency {
	return reduceUrgency(EventsOn(events, day))
}

func reduceUrgency(events []domain.TaxEvent) domain.Urgency {
	urgency := domain.UrgencyNone
	for _, e := range events {
		if e.Urgency.Rank() > urgency.Rank() {
			urgency = e.Urgency
		}
	}
	return urgency
}

// MonthDays groups the events of year that fall into month by day, in date order
func MonthDays(events []domain.TaxEvent, year, month int) []domain.CalendarDay {
	days := make([]domain.CalendarDay, 0)
	for day := 1; day <= util.DaysInMonth(year, time.Month(month)); day++ {
		date := dueDate(year, month, day)
		dayEvents := EventsOn(events, date)
		if len(dayEvents) == 0 {
			continue
		}
		days = append(days, domain.CalendarDay{
			Date:    date,
			Events:  dayEvents,
			Urgency: reduceUrgency(dayEvents),
		})
	}
	return days
}

// Upcoming returns the next limit events relative to the scheduler's clock.
// Events of the neighbouring years are included so the list continues across New Year.
func (s *DeadlineScheduler) Upcoming(limit int) []domain.TaxEvent {
	today := s.Today()
	return UpcomingEvents(s.eventsAround(today.Year()), today, limit)
}

// Next returns the next deadline relative to the scheduler's clock
func (s *DeadlineScheduler) Next() (*domain.UpcomingEvent, bool) {
	today := s.Today()
	return NextEvent(s.eventsAround(today.Year()), today)
}

// eventsAround merges the events of year-1, year and year+1 so Q4 deadlines
// falling in January stay visible after the year changes
func (s *DeadlineScheduler) eventsAround(year int) []domain.TaxEvent {
	var events []domain.TaxEvent
	for y := year - 1; y <= year+1; y++ {
		events = append(events, GenerateTaxEvents(y)...)
	}
	return events
}

// Within returns the upcoming events due in at most days days, with their days left
func (s *DeadlineScheduler) Within(days int) []domain.UpcomingEvent {
	today := s.Today()
	result := make([]domain.UpcomingEvent, 0)
	for _, e := range UpcomingEvents(s.eventsAround(today.Year()), today, 0) {
		left := DaysLeft(e.Date, today)
		if left > days {
			break
		}
		result = append(result, domain.UpcomingEvent{Event: e, DaysLeft: left})
	}
	return result
}

package service

import (
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestGenerateTaxEvents_Deterministic(t *testing.T) {
	first := GenerateTaxEvents(2025)
	second := GenerateTaxEvents(2025)

	assert.Equal(t, first, second)
}

func TestGenerateTaxEvents_Coverage(t *testing.T) {
	for _, year := range []int{2000, 2024, 2025, 2100} {
		events := GenerateTaxEvents(year)
		require.Len(t, events, 20, "year %d", year)

		counts := map[string]int{}
		for _, e := range events {
			counts[e.ID[:3]]++
		}
		assert.Equal(t, 12, counts["esv"])
		assert.Equal(t, 4, counts["dec"])
		assert.Equal(t, 4, counts["tax"])
	}
}

func TestGenerateTaxEvents_Order(t *testing.T) {
	events := GenerateTaxEvents(2025)

	assert.Equal(t, "esv-2025-01", events[0].ID)
	assert.Equal(t, "esv-2025-12", events[11].ID)
	assert.Equal(t, "decl-2025-03", events[12].ID)
	assert.Equal(t, "tax-2025-03", events[13].ID)
	assert.Equal(t, "decl-2025-12", events[18].ID)
	assert.Equal(t, "tax-2025-12", events[19].ID)
}

func TestGenerateTaxEvents_ESV(t *testing.T) {
	events := GenerateTaxEvents(2025)

	for i, e := range events[:12] {
		assert.Equal(t, time.Month(i+1), e.Date.Month())
		assert.Equal(t, 20, e.Date.Day())
		assert.Equal(t, 2025, e.Date.Year())
		assert.Equal(t, domain.EventKindPayment, e.Kind)
		assert.Equal(t, domain.UrgencyMedium, e.Urgency)
	}
	assert.Equal(t, "Сплата ЄСВ за січень", events[0].Title)
}

func TestGenerateTaxEvents_QuarterDates(t *testing.T) {
	events := GenerateTaxEvents(2025)

	want := []struct {
		id   string
		date string
		kind domain.EventKind
	}{
		{"decl-2025-03", "2025-04-10", domain.EventKindDeadline},
		{"tax-2025-03", "2025-04-20", domain.EventKindPayment},
		{"decl-2025-06", "2025-07-10", domain.EventKindDeadline},
		{"tax-2025-06", "2025-07-20", domain.EventKindPayment},
		{"decl-2025-09", "2025-10-10", domain.EventKindDeadline},
		{"tax-2025-09", "2025-10-20", domain.EventKindPayment},
		{"decl-2025-12", "2026-01-10", domain.EventKindDeadline},
		{"tax-2025-12", "2026-01-20", domain.EventKindPayment},
	}

	for i, w := range want {
		e := events[12+i]
		assert.Equal(t, w.id, e.ID)
		assert.Equal(t, w.date, e.Date.Format("2006-01-02"))
		assert.Equal(t, w.kind, e.Kind)
		assert.Equal(t, domain.UrgencyHigh, e.Urgency)
	}
	assert.Equal(t, "Подання декларації за I квартал", events[12].Title)
	assert.Equal(t, "Сплата ЄП за IV квартал", events[19].Title)
}

func TestGenerateTaxEvents_DatesWithinYearOrEarlyJanuary(t *testing.T) {
	for _, e := range GenerateTaxEvents(2025) {
		inYear := e.Date.Year() == 2025
		nextJanuary := e.Date.Year() == 2026 && e.Date.Month() == time.January
		assert.True(t, inYear || nextJanuary, e.ID)
	}
}

func TestGenerateTaxEvents_InvalidYear(t *testing.T) {
	for _, year := range []int{-1, 0, 1999, 2101, 99999} {
		events := GenerateTaxEvents(year)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	}
}

func TestUpcomingEvents_SortedAndFiltered(t *testing.T) {
	events := GenerateTaxEvents(2025)
	today := date("2025-04-15")

	upcoming := UpcomingEvents(events, today, 0)
	require.NotEmpty(t, upcoming)

	for i, e := range upcoming {
		assert.False(t, e.Date.Before(today), e.ID)
		if i > 0 {
			assert.False(t, e.Date.Before(upcoming[i-1].Date))
		}
	}
	assert.Equal(t, "esv-2025-04", upcoming[0].ID)
	assert.Equal(t, "tax-2025-03", upcoming[1].ID)
}

func TestUpcomingEvents_TiesKeepGenerationOrder(t *testing.T) {
	events := GenerateTaxEvents(2025)

	upcoming := UpcomingEvents(events, date("2025-07-11"), 3)
	require.Len(t, upcoming, 3)

	// July 20 carries both the monthly ESV and the Q2 single tax
	assert.Equal(t, "esv-2025-07", upcoming[0].ID)
	assert.Equal(t, "tax-2025-06", upcoming[1].ID)
	assert.Equal(t, "esv-2025-08", upcoming[2].ID)
}

func TestUpcomingEvents_Limit(t *testing.T) {
	events := GenerateTaxEvents(2025)

	assert.Len(t, UpcomingEvents(events, date("2025-01-01"), DefaultUpcomingLimit), 5)
	assert.Len(t, UpcomingEvents(events, date("2025-01-01"), 0), 20)
	assert.Empty(t, UpcomingEvents(events, date("2026-02-01"), 5))
}

func TestUpcomingEvents_DoesNotMutateInput(t *testing.T) {
	events := GenerateTaxEvents(2025)
	before := append([]domain.TaxEvent(nil), events...)

	UpcomingEvents(events, date("2025-06-01"), 5)
	assert.Equal(t, before, events)
}

func TestNextEvent_TodayIsInclusive(t *testing.T) {
	events := GenerateTaxEvents(2025)

	next, ok := NextEvent(events, date("2025-04-10"))
	require.True(t, ok)
	assert.Equal(t, "decl-2025-03", next.Event.ID)
	assert.Equal(t, 0, next.DaysLeft)
}

func TestNextEvent_DaysLeft(t *testing.T) {
	events := GenerateTaxEvents(2025)

	next, ok := NextEvent(events, date("2025-04-11"))
	require.True(t, ok)
	assert.Equal(t, "esv-2025-04", next.Event.ID)
	assert.Equal(t, 9, next.DaysLeft)
}

func TestNextEvent_None(t *testing.T) {
	_, ok := NextEvent(GenerateTaxEvents(2025), date("2026-01-21"))
	assert.False(t, ok)
}

func TestDaysLeft(t *testing.T) {
	assert.Equal(t, 0, DaysLeft(date("2025-04-10"), date("2025-04-10")))
	assert.Equal(t, 1, DaysLeft(date("2025-04-11"), date("2025-04-10")))
	assert.Equal(t, 0, DaysLeft(date("2025-04-01"), date("2025-04-10")))
	// time of day is ignored
	assert.Equal(t, 1, DaysLeft(date("2025-04-11"), date("2025-04-10").Add(23*time.Hour)))
}

func TestDayUrgency(t *testing.T) {
	events := GenerateTaxEvents(2025)

	assert.Equal(t, domain.UrgencyHigh, DayUrgency(events, date("2025-04-20")))
	assert.Equal(t, domain.UrgencyHigh, DayUrgency(events, date("2025-04-10")))
	assert.Equal(t, domain.UrgencyMedium, DayUrgency(events, date("2025-05-20")))
	assert.Equal(t, domain.UrgencyNone, DayUrgency(events, date("2025-05-21")))

	low := []domain.TaxEvent{{ID: "x", Date: date("2025-05-01"), Urgency: domain.UrgencyLow}}
	assert.Equal(t, domain.UrgencyLow, DayUrgency(low, date("2025-05-01")))
}

func TestMonthDays(t *testing.T) {
	events := GenerateTaxEvents(2025)

	days := MonthDays(events, 2025, 4)
	require.Len(t, days, 2)
	assert.Equal(t, 10, days[0].Date.Day())
	assert.Len(t, days[0].Events, 1)
	assert.Equal(t, domain.UrgencyHigh, days[0].Urgency)
	assert.Equal(t, 20, days[1].Date.Day())
	assert.Len(t, days[1].Events, 2)

	assert.Len(t, MonthDays(events, 2025, 2), 1)
}

func TestDeadlineScheduler_UsesLocationForToday(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Skip("tzdata not available")
	}

	// 22:30 UTC on April 9 is already April 10 in Kyiv
	s := NewDeadlineScheduler(fixedClock(time.Date(2025, 4, 9, 22, 30, 0, 0, time.UTC)), kyiv)

	assert.Equal(t, "2025-04-10", s.Today().Format("2006-01-02"))
	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, "decl-2025-03", next.Event.ID)
	assert.Equal(t, 0, next.DaysLeft)
}

func TestDeadlineScheduler_AcrossNewYear(t *testing.T) {
	s := NewDeadlineScheduler(fixedClock(time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)), time.UTC)

	upcoming := s.Upcoming(3)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "decl-2025-12", upcoming[0].ID)
	assert.Equal(t, "tax-2025-12", upcoming[1].ID)
	assert.Equal(t, "esv-2026-01", upcoming[2].ID)

	next, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, 5, next.DaysLeft)
}

func TestDeadlineScheduler_Within(t *testing.T) {
	s := NewDeadlineScheduler(fixedClock(time.Date(2025, 4, 17, 8, 0, 0, 0, time.UTC)), time.UTC)

	due := s.Within(3)
	require.Len(t, due, 2)
	assert.Equal(t, "esv-2025-04", due[0].Event.ID)
	assert.Equal(t, "tax-2025-03", due[1].Event.ID)
	assert.Equal(t, 3, due[0].DaysLeft)

	assert.Empty(t, s.Within(2))
}

func TestIsSocialContribution(t *testing.T) {
	events := GenerateTaxEvents(2025)
	count := 0
	for _, e := range events {
		if IsSocialContribution(e) {
			count++
		}
	}
	assert.Equal(t, 12, count)
}

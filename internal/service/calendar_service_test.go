package service

import (
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarService_Year(t *testing.T) {
	service := NewCalendarService(NewDeadlineScheduler(fixedClock(testToday), time.UTC))

	cal, err := service.Year(2025)
	require.NoError(t, err)
	assert.Equal(t, 2025, cal.Year)
	assert.Len(t, cal.Events, 20)
	assert.Len(t, cal.Upcoming, DefaultUpcomingLimit)
	assert.Equal(t, "esv-2025-05", cal.Upcoming[0].ID)
	require.NotNil(t, cal.Next)
	assert.Equal(t, "esv-2025-05", cal.Next.Event.ID)
	assert.Equal(t, 6, cal.Next.DaysLeft)
}

func TestCalendarService_OtherYearKeepsTodayRelativeLists(t *testing.T) {
	service := NewCalendarService(NewDeadlineScheduler(fixedClock(testToday), time.UTC))

	cal, err := service.Year(2030)
	require.NoError(t, err)
	assert.Equal(t, "esv-2030-01", cal.Events[0].ID)
	assert.Equal(t, "esv-2025-05", cal.Upcoming[0].ID)
}

func TestCalendarService_InvalidYear(t *testing.T) {
	service := NewCalendarService(NewDeadlineScheduler(fixedClock(testToday), time.UTC))

	_, err := service.Year(1999)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestCalendarService_Month(t *testing.T) {
	service := NewCalendarService(NewDeadlineScheduler(fixedClock(testToday), time.UTC))

	days, err := service.Month(2026, 1)
	require.NoError(t, err)
	// Jan 10: Q4 2025 declaration; Jan 20: ESV for January and Q4 2025 single tax
	require.Len(t, days, 2)
	assert.Equal(t, "decl-2025-12", days[0].Events[0].ID)
	assert.Len(t, days[1].Events, 2)
	assert.Equal(t, domain.UrgencyHigh, days[1].Urgency)

	empty, err := service.Month(2025, 2)
	require.NoError(t, err)
	assert.Len(t, empty, 1)

	_, err = service.Month(2025, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

package domain

import (
	"context"
	"time"
)

// EventKind classifies a statutory event
type EventKind string

const (
	EventKindDeadline EventKind = "deadline"
	EventKindPayment  EventKind = "payment"
	EventKindReport   EventKind = "report"
)

// Urgency drives calendar coloring
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
	// UrgencyNone marks a day without events
	UrgencyNone Urgency = ""
)

// Rank orders urgencies, higher is more urgent
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 3
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 1
	}
	return 0
}

// TaxEvent is a generated statutory deadline. Date is midnight UTC of the due day.
type TaxEvent struct {
	ID          string
	Date        time.Time
	Title       string
	Description string
	Kind        EventKind
	Urgency     Urgency
}

// UpcomingEvent is an event paired with the whole days remaining until it
type UpcomingEvent struct {
	Event    TaxEvent
	DaysLeft int
}

// CalendarDay groups the events due on one day of a month
type CalendarDay struct {
	Date    time.Time
	Events  []TaxEvent
	Urgency Urgency
}

// ReminderSender delivers a deadline reminder outside the app
type ReminderSender interface {
	SendDeadlineReminder(ctx context.Context, user *User, upcoming UpcomingEvent) error
}

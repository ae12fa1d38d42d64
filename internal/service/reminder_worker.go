package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/websocket"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ReminderWorker periodically notifies onboarded users about approaching deadlines
type ReminderWorker struct {
	userRepo  domain.UserRepository
	scheduler *DeadlineScheduler
	publisher websocket.EventPublisher
	sender    domain.ReminderSender
	logger    zerolog.Logger
	schedule  string
	daysAhead int
	location  *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running bool
}

// ReminderWorkerConfig holds configuration for the reminder worker
type ReminderWorkerConfig struct {
	Schedule  string // standard 5-field cron expression
	DaysAhead int    // remind when a deadline is exactly this many days away, and again on the day
	Location  *time.Location
}

// DefaultReminderWorkerConfig returns sensible defaults
func DefaultReminderWorkerConfig() ReminderWorkerConfig {
	return ReminderWorkerConfig{
		Schedule:  "0 9 * * *",
		DaysAhead: 3,
		Location:  time.UTC,
	}
}

// ReminderResult summarizes one reminder run
type ReminderResult struct {
	Deadlines int
	Users     int
	Published int
	Emailed   int
	Errors    int
}

// NewReminderWorker creates a new reminder worker; sender may be nil when email is not configured
func NewReminderWorker(
	userRepo domain.UserRepository,
	scheduler *DeadlineScheduler,
	publisher websocket.EventPublisher,
	sender domain.ReminderSender,
	logger zerolog.Logger,
	config ReminderWorkerConfig,
) (*ReminderWorker, error) {
	defaults := DefaultReminderWorkerConfig()
	if config.Schedule == "" {
		config.Schedule = defaults.Schedule
	}
	if config.DaysAhead < 0 {
		config.DaysAhead = defaults.DaysAhead
	}
	if config.Location == nil {
		config.Location = defaults.Location
	}
	if _, err := cron.ParseStandard(config.Schedule); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", config.Schedule, err)
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &ReminderWorker{
		userRepo:  userRepo,
		scheduler: scheduler,
		publisher: publisher,
		sender:    sender,
		logger:    logger.With().Str("component", "reminder_worker").Logger(),
		schedule:  config.Schedule,
		daysAhead: config.DaysAhead,
		location:  config.Location,
	}, nil
}

// Start schedules reminder runs; calling it again while running does nothing
func (w *ReminderWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithLocation(w.location))
	if _, err := c.AddFunc(w.schedule, func() { w.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}
	c.Start()

	w.cron = c
	w.cancel = cancel
	w.running = true

	w.logger.Info().
		Str("schedule", w.schedule).
		Str("location", w.location.String()).
		Int("days_ahead", w.daysAhead).
		Msg("Starting reminder worker")
	return nil
}

// Stop cancels pending runs and waits for a running one to finish
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	c, cancel := w.cron, w.cancel
	w.running = false
	w.cron = nil
	w.cancel = nil
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reminder worker")
	cancel()
	<-c.Stop().Done()
	w.logger.Info().Msg("Reminder worker stopped")
}

// IsRunning returns whether the worker is currently scheduled
func (w *ReminderWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// RunOnce sends reminders for deadlines that are exactly DaysAhead days away or due today.
// A daily schedule therefore reminds about each deadline twice rather than on every run.
func (w *ReminderWorker) RunOnce(ctx context.Context) ReminderResult {
	var result ReminderResult
	startTime := time.Now()

	due := w.dueForReminder(w.scheduler.Within(w.daysAhead))
	result.Deadlines = len(due)
	if len(due) == 0 {
		w.logger.Debug().Msg("No deadlines within reminder window")
		return result
	}

	users, err := w.userRepo.ListOnboarded(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list users for reminders")
		result.Errors++
		return result
	}
	result.Users = len(users)

	for _, user := range users {
		if ctx.Err() != nil {
			w.logger.Info().Msg("Context cancelled, stopping reminders")
			return result
		}
		for _, upcoming := range due {
			if IsSocialContribution(upcoming.Event) && !user.PaysESV {
				continue
			}
			w.publisher.Publish(user.ID, websocket.DeadlineReminder(upcoming.Event.ID, upcoming.Event.Date, newReminderPayload(upcoming)))
			result.Published++

			if w.sender == nil || user.Email == "" {
				continue
			}
			if err := w.sender.SendDeadlineReminder(ctx, user, upcoming); err != nil {
				w.logger.Error().Err(err).Int32("user_id", user.ID).Str("event_id", upcoming.Event.ID).Msg("Failed to email reminder")
				result.Errors++
				continue
			}
			result.Emailed++
		}
	}

	w.logger.Info().
		Int("deadlines", result.Deadlines).
		Int("users", result.Users).
		Int("published", result.Published).
		Int("emailed", result.Emailed).
		Int("errors", result.Errors).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed reminder run")
	return result
}

func (w *ReminderWorker) dueForReminder(within []domain.UpcomingEvent) []domain.UpcomingEvent {
	due := make([]domain.UpcomingEvent, 0, len(within))
	for _, upcoming := range within {
		if upcoming.DaysLeft == w.daysAhead || upcoming.DaysLeft == 0 {
			due = append(due, upcoming)
		}
	}
	return due
}

// ReminderPayload is the websocket payload of a deadline reminder
type ReminderPayload struct {
	EventID  string `json:"eventId"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
	DaysLeft int    `json:"daysLeft"`
}

func newReminderPayload(u domain.UpcomingEvent) ReminderPayload {
	return ReminderPayload{
		EventID:  u.Event.ID,
		Title:    u.Event.Title,
		Date:     u.Event.Date.Format("2006-01-02"),
		Kind:     string(u.Event.Kind),
		DaysLeft: u.DaysLeft,
	}
}

package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/fopilot/fopilot-backend/internal/config"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

// Sender handles sending deadline reminders via SMTP
type Sender struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
	send   func(e *email.Email) error
}

var _ domain.ReminderSender = (*Sender)(nil)

// NewSender creates a new email sender
func NewSender(cfg config.SMTPConfig, logger zerolog.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger.With().Str("component", "email").Logger(),
	}
	s.send = s.sendSMTP
	return s
}

// SendDeadlineReminder emails the user about an approaching tax deadline
func (s *Sender) SendDeadlineReminder(ctx context.Context, user *domain.User, upcoming domain.UpcomingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user.Email == "" {
		return fmt.Errorf("user %d has no email", user.ID)
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = []string{user.Email}
	e.Subject = fmt.Sprintf("Нагадування: %s", upcoming.Event.Title)
	e.Text = []byte(reminderBody(user, upcoming))

	if err := s.send(e); err != nil {
		s.logger.Error().Err(err).Int32("user_id", user.ID).Str("event_id", upcoming.Event.ID).Msg("Failed to send reminder email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Int32("user_id", user.ID).Str("event_id", upcoming.Event.ID).Msg("Reminder email sent")
	return nil
}

func (s *Sender) sendSMTP(e *email.Email) error {
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	return e.Send(s.cfg.Addr(), auth)
}

func reminderBody(user *domain.User, upcoming domain.UpcomingEvent) string {
	var b strings.Builder
	greeting := strings.TrimSpace(user.FirstName)
	if greeting == "" {
		b.WriteString("Вітаємо!\n\n")
	} else {
		fmt.Fprintf(&b, "Вітаємо, %s!\n\n", greeting)
	}

	fmt.Fprintf(&b, "%s: %s.\n", upcoming.Event.Title, upcoming.Event.Date.Format("02.01.2006"))
	if upcoming.Event.Description != "" {
		fmt.Fprintf(&b, "%s.\n", upcoming.Event.Description)
	}
	switch upcoming.DaysLeft {
	case 0:
		b.WriteString("Термін спливає сьогодні.\n")
	case 1:
		b.WriteString("Залишився 1 день.\n")
	default:
		fmt.Fprintf(&b, "Залишилось днів: %d.\n", upcoming.DaysLeft)
	}

	b.WriteString("\nЗ повагою,\nFOPilot")
	return b.String()
}

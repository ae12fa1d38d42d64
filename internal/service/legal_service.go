package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// LegalService serves the monthly digest of legislative changes relevant to FOPs
type LegalService struct {
	legalRepo domain.LegalUpdateRepository
	scheduler *DeadlineScheduler
}

// NewLegalService creates a new LegalService
func NewLegalService(legalRepo domain.LegalUpdateRepository, scheduler *DeadlineScheduler) *LegalService {
	return &LegalService{legalRepo: legalRepo, scheduler: scheduler}
}

// MonthlyDigest returns the updates of a month, most important first and newest first within a level.
// A nil year or month means the current one in the scheduler's time zone.
func (s *LegalService) MonthlyDigest(ctx context.Context, year, month *int) (*domain.LegalDigest, error) {
	today := s.scheduler.Today()
	y, m := today.Year(), int(today.Month())
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	if !ValidYear(y) || m < 1 || m > 12 {
		return nil, domain.ErrInvalidPeriod
	}

	items, err := s.legalRepo.ListByMonth(ctx, y, m)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Importance.Rank(), items[j].Importance.Rank()
		if ri != rj {
			return ri > rj
		}
		return items[i].Date.After(items[j].Date)
	})

	return &domain.LegalDigest{Year: y, Month: m, Items: items}, nil
}

// Import stores curated updates, replacing items with the same ID
func (s *LegalService) Import(ctx context.Context, updates []*domain.LegalUpdate) (int, error) {
	for i, u := range updates {
		if !u.Importance.IsValid() {
			return i, fmt.Errorf("legal update %s: %w", u.ID, domain.ErrInvalidImportance)
		}
		if u.ID == "" || u.Title == "" || u.URL == "" || u.Date.IsZero() {
			return i, fmt.Errorf("legal update %q: %w", u.ID, domain.ErrLegalUpdateInvalid)
		}
		if err := s.legalRepo.Upsert(ctx, u); err != nil {
			return i, fmt.Errorf("legal update %s: %w", u.ID, err)
		}
	}
	log.Info().Int("count", len(updates)).Msg("Imported legal digest")
	return len(updates), nil
}

package domain

import (
	"context"
	"time"
)

// Importance ranks how strongly a legislative change affects a FOP
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// IsValid reports whether i is one of the known levels
func (i Importance) IsValid() bool {
	return i == ImportanceHigh || i == ImportanceMedium || i == ImportanceLow
}

// Rank orders importance levels, higher is more important
func (i Importance) Rank() int {
	switch i {
	case ImportanceHigh:
		return 3
	case ImportanceMedium:
		return 2
	case ImportanceLow:
		return 1
	}
	return 0
}

// LegalUpdate is one curated item of the monthly legislation digest
type LegalUpdate struct {
	ID         string
	Date       time.Time
	Title      string
	Topic      *string
	Importance Importance
	Summary    string
	Source     string
	URL        string
}

// LegalDigest lists the legal updates published in one month
type LegalDigest struct {
	Year  int
	Month int
	Items []*LegalUpdate
}

type LegalUpdateRepository interface {
	ListByMonth(ctx context.Context, year, month int) ([]*LegalUpdate, error)
	Upsert(ctx context.Context, update *LegalUpdate) error
}

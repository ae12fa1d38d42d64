package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultRatesTTL is how long fetched rates are served without asking the bank again
	DefaultRatesTTL = time.Hour

	// DefaultRatesRetryBackoff is how long a failed fetch keeps callers off the bank
	DefaultRatesRetryBackoff = 30 * time.Second
)

// CurrencyService serves NBU exchange rates from an in-memory cache
type CurrencyService struct {
	provider domain.ExchangeRateProvider
	ttl      time.Duration
	backoff  time.Duration
	now      func() time.Time
	fetches  singleflight.Group

	mu       sync.Mutex
	cached   *domain.ExchangeRates
	cachedAt time.Time
	retryAt  time.Time
	lastErr  error
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(provider domain.ExchangeRateProvider, ttl time.Duration) *CurrencyService {
	if ttl <= 0 {
		ttl = DefaultRatesTTL
	}
	return &CurrencyService{
		provider: provider,
		ttl:      ttl,
		backoff:  DefaultRatesRetryBackoff,
		now:      time.Now,
	}
}

// GetRates returns cached rates while fresh. When the bank is unreachable the last
// known rates are returned marked stale; without any it fails with ErrRatesUnavailable.
// After a failed fetch the bank is not asked again until the retry backoff passes.
// Concurrent misses share one upstream request and the cache lock is never held across it.
func (s *CurrencyService) GetRates(ctx context.Context) (*domain.ExchangeRates, error) {
	if rates, hit, err := s.fromCache(); hit {
		return rates, err
	}

	v, err, _ := s.fetches.Do("rates", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	rates := v.(*domain.ExchangeRates)
	return copyRates(rates, rates.Stale), nil
}

// fromCache answers from memory when the cache is fresh or a retry is not yet due
func (s *CurrencyService) fromCache() (*domain.ExchangeRates, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != nil && now.Sub(s.cachedAt) < s.ttl {
		return copyRates(s.cached, false), true, nil
	}
	if now.Before(s.retryAt) {
		if s.cached != nil {
			return copyRates(s.cached, true), true, nil
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrRatesUnavailable, s.lastErr)
	}
	return nil, false, nil
}

func (s *CurrencyService) refresh(ctx context.Context) (*domain.ExchangeRates, error) {
	rates, err := s.provider.FetchRates(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.retryAt = s.now().Add(s.backoff)
		s.lastErr = err
		if s.cached != nil {
			log.Warn().Err(err).Time("cached_at", s.cachedAt).Time("retry_at", s.retryAt).Msg("Serving stale exchange rates")
			return copyRates(s.cached, true), nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRatesUnavailable, err)
	}

	s.cached = rates
	s.cachedAt = s.now()
	s.retryAt = time.Time{}
	s.lastErr = nil
	return copyRates(rates, false), nil
}

// Convert converts amount of a foreign currency to UAH at the official rate
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from domain.Currency) (*domain.Conversion, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	rates, err := s.GetRates(ctx)
	if err != nil {
		return nil, err
	}
	rate, ok := rates.Rate(from)
	if !ok {
		return nil, domain.ErrUnknownCurrency
	}
	return &domain.Conversion{
		Amount: amount,
		From:   from,
		Rate:   rate,
		UAH:    amount.Mul(rate).Round(2),
		Date:   rates.Date,
	}, nil
}

func copyRates(r *domain.ExchangeRates, stale bool) *domain.ExchangeRates {
	out := *r
	out.Rates = make(map[domain.Currency]decimal.Decimal, len(r.Rates))
	for k, v := range r.Rates {
		out.Rates[k] = v
	}
	out.Stale = stale
	return &out
}

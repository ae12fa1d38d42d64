package nbu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/fopilot/fopilot-backend/internal/config"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const exchangeDateLayout = "02.01.2006"

// ErrNoRates is returned when the feed does not contain every required currency
var ErrNoRates = errors.New("nbu: required rates missing from response")

// required are the currencies the app converts from
var required = []domain.Currency{domain.CurrencyUSD, domain.CurrencyEUR}

// Client reads official exchange rates from the National Bank of Ukraine
type Client struct {
	url    string
	client *http.Client
	logger zerolog.Logger
	now    func() time.Time
}

var _ domain.ExchangeRateProvider = (*Client)(nil)

// NewClient initializes a new NBU client
func NewClient(cfg config.NBUConfig, logger zerolog.Logger) *Client {
	return &Client{
		url: cfg.URL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With().Str("component", "nbu").Logger(),
		now:    time.Now,
	}
}

// FetchRates downloads and parses the current exchange feed
func (c *Client) FetchRates(ctx context.Context) (*domain.ExchangeRates, error) {
	body, err := c.sendRequest(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := parseExchange(body)
	if err != nil {
		return nil, err
	}
	rates.FetchedAt = c.now().UTC()

	c.logger.Debug().
		Str("usd", rates.Rates[domain.CurrencyUSD].String()).
		Str("eur", rates.Rates[domain.CurrencyEUR].String()).
		Time("date", rates.Date).
		Msg("Fetched NBU rates")
	return rates, nil
}

func (c *Client) sendRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("nbu: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nbu: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nbu: unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("nbu: failed to read response: %w", err)
	}
	return body, nil
}

// parseExchange reads <exchange><currency><rate/><cc/><exchangedate/></currency>...</exchange>
func parseExchange(raw []byte) (*domain.ExchangeRates, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("nbu: failed to parse XML: %w", err)
	}

	rates := &domain.ExchangeRates{Rates: make(map[domain.Currency]decimal.Decimal)}
	for _, el := range doc.FindElements("//exchange/currency") {
		code, err := domain.ParseCurrency(childText(el, "cc"))
		if err != nil || code == domain.CurrencyUAH {
			continue
		}
		rate, err := decimal.NewFromString(childText(el, "rate"))
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("nbu: invalid rate for %s", code)
		}
		rates.Rates[code] = rate

		if rates.Date.IsZero() {
			if d, err := time.Parse(exchangeDateLayout, childText(el, "exchangedate")); err == nil {
				rates.Date = d
			}
		}
	}

	for _, c := range required {
		if _, ok := rates.Rates[c]; !ok {
			return nil, ErrNoRates
		}
	}
	return rates, nil
}

func childText(el *etree.Element, tag string) string {
	child := el.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

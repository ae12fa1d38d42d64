package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// DecimalInput is a request amount sent either as a JSON number or as a decimal string.
// It keeps the literal so a malformed value reaches the handler as a field error instead of failing Bind.
type DecimalInput string

// UnmarshalJSON implements json.Unmarshaler
func (d *DecimalInput) UnmarshalJSON(data []byte) error {
	switch {
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = DecimalInput(s)
	case string(data) == "null":
		*d = ""
	default:
		*d = DecimalInput(data)
	}
	return nil
}

// Decimal parses the literal
func (d DecimalInput) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(string(d)))
}

// optionalIntParam parses an integer query parameter; absent or empty yields nil
func optionalIntParam(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// parseIDParam parses a positive int32 path parameter
func parseIDParam(c echo.Context, name string) (int32, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int32(id), true
}

// parseOptionalDate parses a YYYY-MM-DD field; nil or empty yields nil
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// periodParams reads the optional year and quarter query parameters
func periodParams(c echo.Context) (year, quarter *int, verr *ValidationError) {
	year, err := optionalIntParam(c, "year")
	if err != nil {
		return nil, nil, &ValidationError{Field: "year", Message: "Must be a valid integer"}
	}
	quarter, err = optionalIntParam(c, "quarter")
	if err != nil {
		return nil, nil, &ValidationError{Field: "quarter", Message: "Must be a valid integer"}
	}
	return year, quarter, nil
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/fopilot/fopilot-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLegalHandler() (*LegalHandler, *testutil.MockLegalUpdateRepository) {
	repo := testutil.NewMockLegalUpdateRepository()
	topic := "ЄСВ"
	repo.Updates["esv-min-2025"] = &domain.LegalUpdate{
		ID:         "esv-min-2025",
		Date:       time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
		Title:      "Мінімальний ЄСВ",
		Topic:      &topic,
		Importance: domain.ImportanceHigh,
		Summary:    "1760 грн на місяць",
		Source:     "Мінфін",
		URL:        "https://mof.gov.ua/esv-2025",
	}
	repo.Updates["form-2025"] = &domain.LegalUpdate{
		ID:         "form-2025",
		Date:       time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC),
		Title:      "Нова форма декларації",
		Importance: domain.ImportanceLow,
		Source:     "ДПС",
		URL:        "https://tax.gov.ua/form",
	}
	return NewLegalHandler(service.NewLegalService(repo, newTestScheduler())), repo
}

func TestMonthlyDigest(t *testing.T) {
	handler, _ := setupLegalHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/legal/monthly-digest?year=2025&month=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, 1)

	require.NoError(t, handler.MonthlyDigest(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response MonthlyDigestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2025, response.Year)
	assert.Equal(t, 5, response.Month)
	assert.Equal(t, 2, response.Count)
	require.Len(t, response.Items, 2)
	assert.Equal(t, "esv-min-2025", response.Items[0].ID)
	assert.Equal(t, "high", response.Items[0].Importance)
	assert.Equal(t, "2025-05-02", response.Items[0].Date)
	assert.Equal(t, "low", response.Items[1].Importance)
	assert.Nil(t, response.Items[1].Topic)
}

func TestMonthlyDigest_DefaultsAndEmptyMonth(t *testing.T) {
	handler, _ := setupLegalHandler()
	e := echo.New()

	// testNow is in May 2025
	req := httptest.NewRequest(http.MethodGet, "/api/v1/legal/monthly-digest", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, handler.MonthlyDigest(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/legal/monthly-digest?year=2025&month=6", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	require.NoError(t, handler.MonthlyDigest(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"year":2025,"month":6,"count":0,"items":[]}`, rec.Body.String())
}

func TestMonthlyDigest_InvalidParams(t *testing.T) {
	handler, _ := setupLegalHandler()

	for _, query := range []string{"?year=abc", "?month=x", "?year=2025&month=13", "?year=1999&month=1"} {
		t.Run(query, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/legal/monthly-digest"+query, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			require.NoError(t, handler.MonthlyDigest(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

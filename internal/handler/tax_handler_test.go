package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/config"
	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/service"
	"github.com/fopilot/fopilot-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taxFixture struct {
	handler    *TaxHandler
	userRepo   *testutil.MockUserRepository
	incomeRepo *testutil.MockIncomeRepository
	user       *domain.User
}

func setupTaxHandler() taxFixture {
	userRepo := testutil.NewMockUserRepository()
	incomeRepo := testutil.NewMockIncomeRepository()
	user := addTestUser(userRepo)
	calculator := service.NewObligationCalculator(config.DefaultTaxRates())
	taxService := service.NewTaxService(userRepo, incomeRepo, calculator, newTestScheduler())
	return taxFixture{
		handler:    NewTaxHandler(taxService),
		userRepo:   userRepo,
		incomeRepo: incomeRepo,
		user:       user,
	}
}

func TestGetQuarter_DefaultsToCurrentQuarter(t *testing.T) {
	e := echo.New()
	f := setupTaxHandler()
	f.incomeRepo.AddIncome(&domain.Income{UserID: f.user.ID, Amount: decimal.RequireFromString("60000"), Date: time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)})
	f.incomeRepo.AddIncome(&domain.Income{UserID: f.user.ID, Amount: decimal.RequireFromString("40000"), Date: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})
	// Belongs to Q3, must not be counted
	f.incomeRepo.AddIncome(&domain.Income{UserID: f.user.ID, Amount: decimal.RequireFromString("7777"), Date: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxes/quarter", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, f.user.ID)

	require.NoError(t, f.handler.GetQuarter(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response QuarterTaxResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2025, response.Year)
	assert.Equal(t, 2, response.Quarter)
	assert.Equal(t, "100000.00", response.TotalIncome)
	assert.Equal(t, "5000.00", response.SingleTax)
	assert.Equal(t, "5280.00", response.ESV)
	assert.Equal(t, "10280.00", response.Total)
	assert.Equal(t, "5", response.TaxRate)
	assert.Equal(t, int64(1), f.user.Calculations)
}

func TestGetQuarter_InvalidQuarter(t *testing.T) {
	e := echo.New()
	f := setupTaxHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/taxes/quarter?year=2025&quarter=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, f.user.ID)

	require.NoError(t, f.handler.GetQuarter(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, int64(0), f.user.Calculations)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTax    string
		wantESV    string
		wantTotal  string
		wantField  string
	}{
		{
			name:       "group 3 defaults",
			body:       `{"totalIncome":"100000"}`,
			wantStatus: http.StatusOK,
			wantTax:    "5000.00",
			wantESV:    "5280.00",
			wantTotal:  "10280.00",
		},
		{
			name:       "group 2 fixed tax",
			body:       `{"totalIncome":100000,"group":2,"year":2025}`,
			wantStatus: http.StatusOK,
			wantTax:    "4800.00",
			wantESV:    "5280.00",
			wantTotal:  "10080.00",
		},
		{
			name:       "without ESV",
			body:       `{"totalIncome":"0.01","paysESV":false}`,
			wantStatus: http.StatusOK,
			wantTax:    "0.00",
			wantESV:    "0.00",
			wantTotal:  "0.00",
		},
		{
			name:       "unsupported group",
			body:       `{"totalIncome":"100","group":1}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "taxGroup",
		},
		{
			name:       "negative income",
			body:       `{"totalIncome":"-1"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "totalIncome",
		},
		{
			name:       "income is not a number",
			body:       `{"totalIncome":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "totalIncome",
		},
		{
			name:       "missing income",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "totalIncome",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			f := setupTaxHandler()

			req := newJSONRequest(http.MethodPost, "/api/v1/taxes/calculate", tt.body)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			setupAuthContext(c, f.user.ID)

			require.NoError(t, f.handler.Calculate(c))
			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus != http.StatusOK {
				var problem ProblemDetails
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
				require.Len(t, problem.Errors, 1)
				assert.Equal(t, tt.wantField, problem.Errors[0].Field)
				return
			}

			var response ObligationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.wantTax, response.SingleTax)
			assert.Equal(t, tt.wantESV, response.ESV)
			assert.Equal(t, tt.wantTotal, response.Total)
		})
	}
}

func TestDeclarationPrefill(t *testing.T) {
	e := echo.New()
	f := setupTaxHandler()
	taxID := "1234567890"
	f.user.TaxID = &taxID
	f.incomeRepo.AddIncome(&domain.Income{UserID: f.user.ID, Amount: decimal.RequireFromString("12345.67"), Date: time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/forms/declaration/3-group/prefill?year=2025&quarter=1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, f.user.ID)

	require.NoError(t, f.handler.DeclarationPrefill(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response DeclarationPrefillResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "Петренко Іван", response.FullName)
	assert.Equal(t, "1234567890", response.TaxID)
	assert.Equal(t, "I квартал 2025 року", response.PeriodText)
	assert.Equal(t, "12345.67", response.TotalIncome)
	assert.Equal(t, "617.28", response.SingleTax)
	assert.Equal(t, "5280.00", response.ESV)
	assert.Equal(t, "5897.28", response.Total)
}

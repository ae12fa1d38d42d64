package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/fopilot/fopilot-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIncomeService() (*IncomeService, *testutil.MockIncomeRepository, *testutil.MockEventPublisher) {
	repo := testutil.NewMockIncomeRepository()
	publisher := testutil.NewMockEventPublisher()
	service := NewIncomeService(repo, publisher, time.UTC)
	service.now = func() time.Time { return time.Date(2025, 5, 14, 23, 30, 0, 0, time.UTC) }
	return service, repo, publisher
}

func TestCreateIncome_Success(t *testing.T) {
	service, repo, publisher := setupIncomeService()

	d := date("2025-04-02")
	income, err := service.CreateIncome(context.Background(), 1, CreateIncomeInput{
		Amount:      dec("1500.555"),
		Description: "  Invoice #12 ",
		Date:        &d,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), income.UserID)
	assert.Equal(t, "1500.56", income.Amount.StringFixed(2))
	assert.Equal(t, "Invoice #12", income.Description)
	assert.True(t, income.Date.Equal(d))
	assert.Len(t, repo.Incomes, 1)
	assert.Equal(t, []string{"income.created"}, publisher.Types())
	assert.Equal(t, int32(1), publisher.Events[0].UserID)
}

func TestCreateIncome_DefaultsToToday(t *testing.T) {
	service, _, _ := setupIncomeService()
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Skip("tzdata not available")
	}
	service.loc = kyiv

	income, err := service.CreateIncome(context.Background(), 1, CreateIncomeInput{Amount: dec("10")})
	require.NoError(t, err)
	// 23:30 UTC on May 14 is already May 15 in Kyiv
	assert.True(t, income.Date.Equal(date("2025-05-15")), "got %s", income.Date)
}

func TestCreateIncome_Validation(t *testing.T) {
	service, repo, publisher := setupIncomeService()

	_, err := service.CreateIncome(context.Background(), 1, CreateIncomeInput{Amount: dec("0")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = service.CreateIncome(context.Background(), 1, CreateIncomeInput{Amount: dec("-5")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = service.CreateIncome(context.Background(), 1, CreateIncomeInput{
		Amount:      dec("5"),
		Description: strings.Repeat("a", domain.MaxDescriptionLength+1),
	})
	assert.ErrorIs(t, err, domain.ErrDescriptionTooLong)

	assert.Empty(t, repo.Incomes)
	assert.Empty(t, publisher.Events)
}

func TestListIncome_Filters(t *testing.T) {
	service, repo, _ := setupIncomeService()
	repo.AddIncome(&domain.Income{UserID: 1, Amount: dec("100"), Date: date("2025-01-15")})
	repo.AddIncome(&domain.Income{UserID: 1, Amount: dec("200"), Date: date("2025-03-31")})
	repo.AddIncome(&domain.Income{UserID: 1, Amount: dec("300"), Date: date("2025-04-01")})
	repo.AddIncome(&domain.Income{UserID: 1, Amount: dec("400"), Date: date("2024-12-31")})
	repo.AddIncome(&domain.Income{UserID: 2, Amount: dec("500"), Date: date("2025-02-01")})

	all, err := service.ListIncome(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].Date.Equal(date("2025-04-01")), "newest first")

	year, quarter := 2025, 1
	q1, err := service.ListIncome(context.Background(), 1, &year, &quarter)
	require.NoError(t, err)
	assert.Len(t, q1, 2)

	whole, err := service.ListIncome(context.Background(), 1, &year, nil)
	require.NoError(t, err)
	assert.Len(t, whole, 3)

	_, err = service.ListIncome(context.Background(), 1, nil, &quarter)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	bad := 5
	_, err = service.ListIncome(context.Background(), 1, &year, &bad)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestDeleteIncome(t *testing.T) {
	service, repo, publisher := setupIncomeService()
	repo.AddIncome(&domain.Income{ID: 3, UserID: 1, Amount: dec("100"), Date: date("2025-01-15")})

	err := service.DeleteIncome(context.Background(), 2, 3)
	assert.ErrorIs(t, err, domain.ErrIncomeNotFound, "other users cannot delete")

	require.NoError(t, service.DeleteIncome(context.Background(), 1, 3))
	assert.Empty(t, repo.Incomes)
	assert.Equal(t, []string{"income.deleted"}, publisher.Types())

	err = service.DeleteIncome(context.Background(), 1, 3)
	assert.ErrorIs(t, err, domain.ErrIncomeNotFound)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTaxRates(t *testing.T) {
	rates := DefaultTaxRates()

	assert.True(t, rates.ESVRate.Equal(decimal.RequireFromString("0.22")))
	assert.True(t, rates.MinimumWageFor(2025).Equal(decimal.NewFromInt(8000)))

	rule, ok := rates.Rule(domain.TaxGroup3)
	require.True(t, ok)
	assert.True(t, rule.IncomeRate.Equal(decimal.RequireFromString("0.05")))
	assert.False(t, rule.IsFixed())

	rule, ok = rates.Rule(domain.TaxGroup2)
	require.True(t, ok)
	assert.True(t, rule.IsFixed())
}

func TestParseTaxRates_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "esv_rate: [\n"},
		{"bad esv rate", "esv_rate: \"abc\"\nminimum_wage: {2025: \"8000\"}\ngroups: {3: {income_rate: \"0.05\"}}"},
		{"esv rate above one", "esv_rate: \"22\"\nminimum_wage: {2025: \"8000\"}\ngroups: {3: {income_rate: \"0.05\"}}"},
		{"no wages", "esv_rate: \"0.22\"\ngroups: {3: {income_rate: \"0.05\"}}"},
		{"negative wage", "esv_rate: \"0.22\"\nminimum_wage: {2025: \"-1\"}\ngroups: {3: {income_rate: \"0.05\"}}"},
		{"unknown group", "esv_rate: \"0.22\"\nminimum_wage: {2025: \"8000\"}\ngroups: {1: {income_rate: \"0.05\"}, 3: {income_rate: \"0.05\"}}"},
		{"group 3 missing", "esv_rate: \"0.22\"\nminimum_wage: {2025: \"8000\"}\ngroups: {2: {minimum_wage_share: \"0.2\"}}"},
		{"both rules", "esv_rate: \"0.22\"\nminimum_wage: {2025: \"8000\"}\ngroups: {3: {income_rate: \"0.05\", minimum_wage_share: \"0.2\"}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTaxRates([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadTaxRates_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	content := "esv_rate: \"0.22\"\nminimum_wage:\n  2030: \"10000\"\ngroups:\n  3:\n    income_rate: \"0.03\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	rates, err := LoadTaxRates(path)
	require.NoError(t, err)
	assert.True(t, rates.MinimumWageFor(2030).Equal(decimal.NewFromInt(10000)))
	assert.True(t, rates.RateFor(domain.TaxGroup3).Equal(decimal.NewFromInt(3)))
}

func TestLoadTaxRates_MissingFile(t *testing.T) {
	_, err := LoadTaxRates(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/fopilot/fopilot-backend/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed tax_rates.yaml
var defaultTaxRates []byte

type taxRatesFile struct {
	ESVRate     string                `yaml:"esv_rate"`
	MinimumWage map[int]string        `yaml:"minimum_wage"`
	Groups      map[int]groupRuleFile `yaml:"groups"`
}

type groupRuleFile struct {
	IncomeRate       string `yaml:"income_rate"`
	MinimumWageShare string `yaml:"minimum_wage_share"`
}

// LoadTaxRates reads the tax table from filename, or the built-in table when filename is empty
func LoadTaxRates(filename string) (*domain.TaxRates, error) {
	data := defaultTaxRates
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read tax rates %s: %w", filename, err)
		}
	}
	return ParseTaxRates(data)
}

// DefaultTaxRates returns the built-in tax table
func DefaultTaxRates() *domain.TaxRates {
	rates, err := ParseTaxRates(defaultTaxRates)
	if err != nil {
		panic(fmt.Sprintf("built-in tax rates are invalid: %v", err))
	}
	return rates
}

// ParseTaxRates decodes and validates a YAML tax table
func ParseTaxRates(data []byte) (*domain.TaxRates, error) {
	var raw taxRatesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tax rates YAML: %w", err)
	}

	esvRate, err := parseRate("esv_rate", raw.ESVRate)
	if err != nil {
		return nil, err
	}

	if len(raw.MinimumWage) == 0 {
		return nil, fmt.Errorf("tax rates: minimum_wage must list at least one year")
	}
	wages := make(map[int]decimal.Decimal, len(raw.MinimumWage))
	for year, value := range raw.MinimumWage {
		wage, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("tax rates: minimum_wage %d: %w", year, err)
		}
		if !wage.IsPositive() {
			return nil, fmt.Errorf("tax rates: minimum_wage %d must be positive", year)
		}
		wages[year] = wage
	}

	groups := make(map[domain.TaxGroup]domain.GroupRule, len(raw.Groups))
	for g, rule := range raw.Groups {
		group := domain.TaxGroup(g)
		if !group.IsValid() {
			return nil, fmt.Errorf("tax rates: unsupported group %d", g)
		}
		parsed, err := parseGroupRule(rule)
		if err != nil {
			return nil, fmt.Errorf("tax rates: group %d: %w", g, err)
		}
		groups[group] = parsed
	}
	if _, ok := groups[domain.DefaultTaxGroup]; !ok {
		return nil, fmt.Errorf("tax rates: group %d is required", domain.DefaultTaxGroup)
	}

	return &domain.TaxRates{
		ESVRate:     esvRate,
		MinimumWage: wages,
		Groups:      groups,
	}, nil
}

func parseGroupRule(rule groupRuleFile) (domain.GroupRule, error) {
	var parsed domain.GroupRule
	if rule.IncomeRate != "" {
		rate, err := parseRate("income_rate", rule.IncomeRate)
		if err != nil {
			return parsed, err
		}
		parsed.IncomeRate = rate
	}
	if rule.MinimumWageShare != "" {
		share, err := parseRate("minimum_wage_share", rule.MinimumWageShare)
		if err != nil {
			return parsed, err
		}
		parsed.MinimumWageShare = share
	}
	if parsed.IncomeRate.IsZero() == parsed.MinimumWageShare.IsZero() {
		return parsed, fmt.Errorf("exactly one of income_rate and minimum_wage_share must be set")
	}
	return parsed, nil
}

func parseRate(field, value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax rates: %s: %w", field, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("tax rates: %s must be between 0 and 1", field)
	}
	return rate, nil
}

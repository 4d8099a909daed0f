package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHorizonYears(t *testing.T) {
	cfg := &Configuration{StartYear: 2024, EndYear: 2030}
	assert.Equal(t, 7, cfg.HorizonYears())

	single := &Configuration{StartYear: 2024, EndYear: 2024}
	assert.Equal(t, 1, single.HorizonYears())
}

func TestAllowanceFor(t *testing.T) {
	tc := &TaxConfig{
		AllowanceDefault: decimal.NewFromInt(1000),
		AllowancePerYear: map[int]decimal.Decimal{
			2025: decimal.NewFromInt(2000),
		},
	}
	assert.True(t, tc.AllowanceFor(2024).Equal(decimal.NewFromInt(1000)))
	assert.True(t, tc.AllowanceFor(2025).Equal(decimal.NewFromInt(2000)), "per-year override wins")
	assert.True(t, tc.AllowanceFor(2026).Equal(decimal.NewFromInt(1000)))
}

package output

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

func TestFormatEUR(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		expected string
	}{
		{"Millions", decimal.NewFromFloat(1234567.89), "1.234.567,89 €"},
		{"Thousands", decimal.NewFromInt(50000), "50.000,00 €"},
		{"Hundreds need no separator", decimal.NewFromFloat(999.5), "999,50 €"},
		{"Zero", decimal.Zero, "0,00 €"},
		{"Negative", decimal.NewFromFloat(-1234.56), "-1.234,56 €"},
		{"Rounded to cents", decimal.NewFromFloat(12.345), "12,35 €"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatEUR(tt.value))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "5,00 %", FormatPercent(decimal.NewFromFloat(0.05)))
	assert.Equal(t, "26,38 %", FormatPercent(decimal.NewFromFloat(0.26375)))
	assert.Equal(t, "-2,50 %", FormatPercent(decimal.NewFromFloat(-0.025)))
	assert.Equal(t, "0,00 %", FormatPercent(decimal.Zero))
}

func TestFormatDeviation(t *testing.T) {
	assert.Equal(t, "+10,00 %", FormatDeviation(decimal.NewFromInt(110), decimal.NewFromInt(100)))
	assert.Equal(t, "-25,00 %", FormatDeviation(decimal.NewFromInt(75), decimal.NewFromInt(100)))
	assert.Equal(t, "0,00 %", FormatDeviation(decimal.NewFromInt(100), decimal.NewFromInt(100)))
	assert.Equal(t, "-", FormatDeviation(decimal.NewFromInt(50), decimal.Zero),
		"a zero baseline leaves the deviation undefined")
}

func comparisonFixture() *domain.Comparison {
	return &domain.Comparison{
		Name: "Basis vs. optimistisch",
		Scenarios: []domain.Scenario{
			{ID: "base", Name: "Basis (5%)"},
			{ID: "optimistic", Name: "Optimistisch (7%)"},
		},
		Results: []domain.ScenarioResult{
			{
				ScenarioID: "base",
				Summary: domain.Summary{
					EndCapitalNominal: decimal.NewFromInt(400000),
					TotalTaxes:        decimal.NewFromInt(12000),
					DurationYears:     20,
				},
			},
			{
				ScenarioID: "optimistic",
				Summary: domain.Summary{
					EndCapitalNominal: decimal.NewFromInt(500000),
					TotalTaxes:        decimal.NewFromInt(15000),
					DurationYears:     20,
				},
			},
		},
		Stats: &domain.Statistics{
			BestScenarioID:  "optimistic",
			WorstScenarioID: "base",
			BestEndCapital:  decimal.NewFromInt(500000),
			WorstEndCapital: decimal.NewFromInt(400000),
			P25:             decimal.NewFromInt(400000),
			P50:             decimal.NewFromInt(400000),
			P75:             decimal.NewFromInt(500000),
			Range:           decimal.NewFromInt(100000),
		},
	}
}

func TestRenderComparisonTable(t *testing.T) {
	out := RenderComparisonTable(comparisonFixture())

	assert.Contains(t, out, "Vergleich: Basis vs. optimistisch")
	assert.Contains(t, out, "Szenario")
	assert.Contains(t, out, "Basis (5%)")
	assert.Contains(t, out, "Optimistisch (7%)")
	assert.Contains(t, out, "400.000,00 €")
	assert.Contains(t, out, "500.000,00 €")
	assert.Contains(t, out, "+25,00 %", "the second scenario deviates from the first")
	assert.Contains(t, out, "Spannweite: 100.000,00 €")
}

func TestRenderComparisonTableMarksExhaustion(t *testing.T) {
	comp := comparisonFixture()
	comp.Results[0].Summary.Exhausted = true
	comp.Results[0].Summary.DurationYears = 14

	out := RenderComparisonTable(comp)
	assert.Contains(t, out, "14 J. !")
}

func TestRenderProjection(t *testing.T) {
	res := &domain.ScenarioResult{
		ScenarioID: "base",
		Years: []domain.YearResult{
			{
				Year:          2024,
				Phase:         domain.PhaseSavings,
				StartCapital:  decimal.NewFromInt(50000),
				Contributions: decimal.NewFromInt(24000),
				Return:        decimal.NewFromInt(3700),
				EndCapital:    decimal.NewFromInt(77700),
			},
		},
	}

	out := RenderProjection(res)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Jahr")
	assert.Contains(t, lines[0], "Endkapital")
	assert.Contains(t, lines[1], "2024")
	assert.Contains(t, lines[1], "77.700,00 €")
}

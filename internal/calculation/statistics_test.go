package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

func TestDeviation(t *testing.T) {
	tests := []struct {
		name     string
		value    decimal.Decimal
		baseline decimal.Decimal
		expected decimal.Decimal
		defined  bool
	}{
		{"Above baseline", decimal.NewFromInt(110), decimal.NewFromInt(100), decimal.NewFromFloat(0.1), true},
		{"Below baseline", decimal.NewFromInt(75), decimal.NewFromInt(100), decimal.NewFromFloat(-0.25), true},
		{"Equal to baseline", decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.Zero, true},
		{"Zero baseline is undefined", decimal.NewFromInt(50), decimal.Zero, decimal.Zero, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Deviation(tt.value, tt.baseline)
			assert.Equal(t, tt.defined, ok)
			assert.True(t, d.Equal(tt.expected), "got %s, want %s", d, tt.expected)
		})
	}
}

func TestAnnualizedReturn(t *testing.T) {
	t.Run("Doubling over ten years", func(t *testing.T) {
		r, ok := AnnualizedReturn(decimal.NewFromInt(200000), decimal.NewFromInt(100000), 10)
		assert.True(t, ok)
		f, _ := r.Float64()
		assert.InDelta(t, 0.0718, f, 0.0005)
	})

	t.Run("Zero basis is undefined", func(t *testing.T) {
		_, ok := AnnualizedReturn(decimal.NewFromInt(100), decimal.Zero, 10)
		assert.False(t, ok)
	})

	t.Run("Zero years is undefined", func(t *testing.T) {
		_, ok := AnnualizedReturn(decimal.NewFromInt(100), decimal.NewFromInt(100), 0)
		assert.False(t, ok)
	})

	t.Run("Negative end capital is undefined", func(t *testing.T) {
		_, ok := AnnualizedReturn(decimal.NewFromInt(-1), decimal.NewFromInt(100), 5)
		assert.False(t, ok)
	})
}

func TestPercentileLower(t *testing.T) {
	sorted := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(20),
		decimal.NewFromInt(30),
		decimal.NewFromInt(40),
		decimal.NewFromInt(50),
	}

	tests := []struct {
		q        float64
		expected int64
	}{
		{0.0, 10},
		{0.25, 20},
		{0.50, 30},
		{0.75, 40},
		{1.0, 50},
	}
	for _, tt := range tests {
		got := percentileLower(sorted, tt.q)
		assert.True(t, got.Equal(decimal.NewFromInt(tt.expected)), "q=%v: got %s", tt.q, got)
	}

	// Lower method at n=4: floor(0.5*3) = index 1.
	four := sorted[:4]
	assert.True(t, percentileLower(four, 0.5).Equal(decimal.NewFromInt(20)))

	assert.True(t, percentileLower(nil, 0.5).IsZero())
}

func TestPopulationStdDev(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromInt(2),
		decimal.NewFromInt(4),
		decimal.NewFromInt(4),
		decimal.NewFromInt(4),
		decimal.NewFromInt(5),
		decimal.NewFromInt(5),
		decimal.NewFromInt(7),
		decimal.NewFromInt(9),
	}
	mean := decimal.NewFromInt(5)
	sd := populationStdDev(values, mean)
	assert.True(t, sd.Equal(decimal.NewFromInt(2)), "got %s", sd)
}

func scenarioResult(id string, endCapital int64) domain.ScenarioResult {
	return domain.ScenarioResult{
		ScenarioID: id,
		Summary:    domain.Summary{EndCapitalNominal: decimal.NewFromInt(endCapital)},
	}
}

func TestComputeStatistics(t *testing.T) {
	results := []domain.ScenarioResult{
		scenarioResult("mid", 300000),
		scenarioResult("low", 100000),
		scenarioResult("high", 500000),
	}

	stats := ComputeStatistics(results)
	assert.NotNil(t, stats)
	assert.Equal(t, "high", stats.BestScenarioID)
	assert.Equal(t, "low", stats.WorstScenarioID)
	assert.True(t, stats.Range.Equal(decimal.NewFromInt(400000)))
	assert.True(t, stats.Mean.Equal(decimal.NewFromInt(300000)))

	// Ordering across the distribution.
	assert.True(t, stats.WorstEndCapital.LessThanOrEqual(stats.P25))
	assert.True(t, stats.P25.LessThanOrEqual(stats.P50))
	assert.True(t, stats.P50.LessThanOrEqual(stats.P75))
	assert.True(t, stats.P75.LessThanOrEqual(stats.BestEndCapital))
}

func TestComputeStatisticsNeedsTwoResults(t *testing.T) {
	assert.Nil(t, ComputeStatistics(nil))
	assert.Nil(t, ComputeStatistics([]domain.ScenarioResult{scenarioResult("only", 100000)}))
}

// TestComputeStatisticsTieBreak tests that ties go to the scenario listed
// first
func TestComputeStatisticsTieBreak(t *testing.T) {
	results := []domain.ScenarioResult{
		scenarioResult("a", 250000),
		scenarioResult("b", 250000),
		scenarioResult("c", 250000),
	}

	stats := ComputeStatistics(results)
	assert.NotNil(t, stats)
	assert.Equal(t, "a", stats.BestScenarioID)
	assert.Equal(t, "a", stats.WorstScenarioID)
	assert.True(t, stats.Range.IsZero())
	assert.True(t, stats.StdDev.IsZero())
}

package calculation

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// Deviation returns the relative deviation of value from baseline. The
// second return is false when the baseline is zero; the deviation is then
// undefined, never infinity or NaN.
func Deviation(value, baseline decimal.Decimal) (decimal.Decimal, bool) {
	if baseline.IsZero() {
		return decimal.Zero, false
	}
	return value.Sub(baseline).Div(baseline), true
}

// AnnualizedReturn derives the geometric annual growth rate of the end
// capital over the contributed basis. It is undefined (second return false)
// for a zero basis or a zero-year duration.
func AnnualizedReturn(endCapital, basis decimal.Decimal, years int) (decimal.Decimal, bool) {
	if basis.LessThanOrEqual(decimal.Zero) || years <= 0 || endCapital.LessThan(decimal.Zero) {
		return decimal.Zero, false
	}
	endF, _ := endCapital.Float64()
	basisF, _ := basis.Float64()
	if basisF == 0 {
		return decimal.Zero, false
	}
	r := math.Pow(endF/basisF, 1.0/float64(years)) - 1
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(r), true
}

// percentileLower picks sorted[floor(q*(n-1))]. The lower method is exact at
// small N and is the documented policy for comparison statistics.
func percentileLower(sorted []decimal.Decimal, q float64) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}
	idx := int(math.Floor(q * float64(len(sorted)-1)))
	return sorted[idx]
}

// populationStdDev computes the population (not sample) standard deviation.
func populationStdDev(values []decimal.Decimal, mean decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	sumSq := decimal.Zero
	for _, v := range values {
		d := v.Sub(mean)
		sumSq = sumSq.Add(d.Mul(d))
	}
	varianceF, _ := sumSq.Div(decimal.NewFromInt(int64(len(values)))).Float64()
	return decimal.NewFromFloat(math.Sqrt(varianceF))
}

// ComputeStatistics aggregates cross-scenario statistics over nominal end
// capitals. It returns nil for fewer than two results. Ties for best and
// worst go to the scenario encountered first in input order.
func ComputeStatistics(results []domain.ScenarioResult) *domain.Statistics {
	if len(results) < 2 {
		return nil
	}

	stats := &domain.Statistics{
		BestScenarioID:  results[0].ScenarioID,
		WorstScenarioID: results[0].ScenarioID,
		BestEndCapital:  results[0].EndCapital(),
		WorstEndCapital: results[0].EndCapital(),
	}

	values := make([]decimal.Decimal, len(results))
	sum := decimal.Zero
	for i, r := range results {
		v := r.EndCapital()
		values[i] = v
		sum = sum.Add(v)
		if v.GreaterThan(stats.BestEndCapital) {
			stats.BestEndCapital = v
			stats.BestScenarioID = r.ScenarioID
		}
		if v.LessThan(stats.WorstEndCapital) {
			stats.WorstEndCapital = v
			stats.WorstScenarioID = r.ScenarioID
		}
	}

	sorted := make([]decimal.Decimal, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	stats.P25 = percentileLower(sorted, 0.25)
	stats.P50 = percentileLower(sorted, 0.50)
	stats.P75 = percentileLower(sorted, 0.75)
	stats.Mean = sum.Div(decimal.NewFromInt(int64(len(values))))
	stats.StdDev = populationStdDev(values, stats.Mean)
	stats.Range = stats.BestEndCapital.Sub(stats.WorstEndCapital)
	return stats
}

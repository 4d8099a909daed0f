package calculation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// ComparisonEngine runs scenarios independently and aggregates cross-scenario
// statistics. Scenarios never share mutable state; each run builds its own
// simulator, so the fan-out is safe to parallelize.
type ComparisonEngine struct {
	Logger Logger

	// Workers bounds the parallel fan-out in RunComparison. Zero or one
	// keeps the sequential reference semantics.
	Workers int
}

// NewComparisonEngine creates an engine with sequential execution and a
// no-op logger.
func NewComparisonEngine() *ComparisonEngine {
	return &ComparisonEngine{Logger: NopLogger{}}
}

// SetLogger sets the engine logger. A nil logger restores the no-op default.
func (ce *ComparisonEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// RunScenario simulates a single scenario end to end and derives its summary.
func (ce *ComparisonEngine) RunScenario(sc domain.Scenario) (*domain.ScenarioResult, error) {
	sim, err := NewSimulator(&sc.Config, ce.Logger)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
	}
	years, err := sim.Run()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.ID, err)
	}
	return &domain.ScenarioResult{
		ScenarioID: sc.ID,
		Years:      years,
		Summary:    Summarize(years, &sc.Config),
	}, nil
}

// RunComparison discards any previous results, re-runs every scenario and
// recomputes statistics when at least two results exist. The context is
// checked between whole scenarios only; a running scenario is never
// interrupted mid-year.
func (ce *ComparisonEngine) RunComparison(ctx context.Context, comp *domain.Comparison) error {
	comp.Results = nil
	comp.Stats = nil

	results := make([]domain.ScenarioResult, len(comp.Scenarios))
	if ce.Workers > 1 {
		if err := ce.runParallel(ctx, comp.Scenarios, results); err != nil {
			return err
		}
	} else {
		for i, sc := range comp.Scenarios {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := ce.RunScenario(sc)
			if err != nil {
				return err
			}
			results[i] = *res
		}
	}

	comp.Results = results
	comp.Stats = ComputeStatistics(results)
	comp.UpdatedAt = time.Now().UTC()
	return nil
}

// runParallel fans scenarios out over a bounded worker pool. Results land in
// their input slot, so ordering and tie-breaking match sequential runs.
func (ce *ComparisonEngine) runParallel(ctx context.Context, scenarios []domain.Scenario, results []domain.ScenarioResult) error {
	var wg sync.WaitGroup
	sem := make(chan struct{}, ce.Workers)
	errs := make([]error, len(scenarios))

	for i, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			break
		}
		wg.Add(1)
		go func(i int, sc domain.Scenario) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := ce.RunScenario(sc)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = *res
		}(i, sc)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Summarize reduces a projection to its headline metrics.
func Summarize(years []domain.YearResult, cfg *domain.Configuration) domain.Summary {
	s := domain.Summary{DurationYears: len(years)}
	if len(years) == 0 {
		return s
	}

	basis := cfg.InitialCapital
	for _, y := range years {
		s.TotalContributions = s.TotalContributions.Add(y.Contributions)
		s.TotalReturns = s.TotalReturns.Add(y.Return)
		s.TotalTaxes = s.TotalTaxes.Add(y.TaxPaid)
	}
	basis = basis.Add(s.TotalContributions)

	last := years[len(years)-1]
	s.EndCapitalNominal = last.EndCapital
	s.Exhausted = last.Exhausted
	s.EndCapitalReal = deflate(last.EndCapital, cfg.Inflation, len(years))
	s.AnnualizedReturn, s.AnnualizedReturnDefined = AnnualizedReturn(last.EndCapital, basis, len(years))
	return s
}

// deflate discounts a nominal amount by the inflation assumption over the
// given number of years.
func deflate(nominal, inflation decimal.Decimal, years int) decimal.Decimal {
	if inflation.IsZero() || years <= 0 {
		return nominal
	}
	factor := decimal.NewFromInt(1).Add(inflation).Pow(decimal.NewFromInt(int64(years)))
	if factor.IsZero() {
		return nominal
	}
	return nominal.Div(factor)
}

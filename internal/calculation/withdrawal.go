package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
	kdec "github.com/zinsplan/kapitalsim/pkg/decimal"
)

// WithdrawalContext carries the per-year inputs a strategy may consult.
type WithdrawalContext struct {
	YearIndex          int // 0-based year within the withdrawal phase
	Age                int
	TrailingReturn     decimal.Decimal // prior year's portfolio return rate
	Inflation          decimal.Decimal
	AllowanceRemaining decimal.Decimal
	Tax                TaxParams
	State              YearState
}

// WithdrawalStrategy computes the gross withdrawal for one year. The driver
// clamps the result to the available capital and flags exhaustion; strategies
// only size the payout.
type WithdrawalStrategy interface {
	CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal
	Name() string
}

// NewWithdrawalStrategy resolves a strategy id and its parameter record into
// a strategy instance. Unknown ids and missing parameter records are
// configuration errors; there is no silent fallback.
func NewWithdrawalStrategy(wc *domain.WithdrawalConfig, initialCapital decimal.Decimal) (WithdrawalStrategy, error) {
	if wc == nil {
		return nil, fmt.Errorf("withdrawal configuration is required")
	}
	switch wc.Strategy {
	case domain.StrategyFixedPercentage:
		if wc.FixedPercentage == nil {
			return nil, fmt.Errorf("strategy %q requires fixed_percentage parameters", wc.Strategy)
		}
		return &FixedPercentageStrategy{
			Params:         *wc.FixedPercentage,
			InitialCapital: initialCapital,
		}, nil
	case domain.StrategyFixedMonthly:
		if wc.FixedMonthly == nil {
			return nil, fmt.Errorf("strategy %q requires fixed_monthly parameters", wc.Strategy)
		}
		return &FixedMonthlyStrategy{Params: *wc.FixedMonthly}, nil
	case domain.StrategyGuardrails:
		if wc.Guardrails == nil {
			return nil, fmt.Errorf("strategy %q requires guardrails parameters", wc.Strategy)
		}
		return &GuardrailsStrategy{
			Params:         *wc.Guardrails,
			InitialCapital: initialCapital,
		}, nil
	case domain.StrategyBucket:
		if wc.Bucket == nil {
			return nil, fmt.Errorf("strategy %q requires bucket parameters", wc.Strategy)
		}
		cash := wc.Bucket.InitialCash
		if cash.GreaterThan(initialCapital) {
			cash = initialCapital
		}
		return &BucketStrategy{Params: *wc.Bucket, Cash: cash}, nil
	case domain.StrategyRMD:
		if wc.RMD == nil {
			return nil, fmt.Errorf("strategy %q requires rmd parameters", wc.Strategy)
		}
		var table *LifeTable
		if wc.RMD.CustomDivisor != nil {
			table = customDivisorTable(*wc.RMD.CustomDivisor)
		} else {
			var err error
			table, err = LookupLifeTable(wc.RMD.Table)
			if err != nil {
				return nil, err
			}
		}
		return &RMDStrategy{Params: *wc.RMD, Table: table}, nil
	case domain.StrategyCapitalPreservation:
		if wc.CapitalPreservation == nil {
			return nil, fmt.Errorf("strategy %q requires capital_preservation parameters", wc.Strategy)
		}
		return &CapitalPreservationStrategy{Params: *wc.CapitalPreservation}, nil
	case domain.StrategyTaxOptimized:
		if wc.TaxOptimized == nil {
			return nil, fmt.Errorf("strategy %q requires tax_optimized parameters", wc.Strategy)
		}
		return &TaxOptimizedStrategy{Params: *wc.TaxOptimized}, nil
	default:
		return nil, fmt.Errorf("unknown withdrawal strategy %q", wc.Strategy)
	}
}

// clampWithdrawal caps a computed withdrawal to the available capital and
// reports whether the portfolio is exhausted by it.
func clampWithdrawal(amount, available decimal.Decimal) (decimal.Decimal, bool) {
	if amount.LessThan(decimal.Zero) {
		amount = decimal.Zero
	}
	if amount.GreaterThanOrEqual(available) {
		return available, true
	}
	return amount, false
}

// FixedPercentageStrategy withdraws a fixed share of the capital entering the
// phase, optionally indexed to inflation each year.
type FixedPercentageStrategy struct {
	Params         domain.FixedPercentageParams
	InitialCapital decimal.Decimal
}

func (s *FixedPercentageStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	w := s.InitialCapital.Mul(s.Params.Rate)
	if s.Params.InflationAdjust && ctx.YearIndex > 0 {
		factor := decimal.NewFromInt(1).Add(ctx.Inflation).Pow(decimal.NewFromInt(int64(ctx.YearIndex)))
		w = w.Mul(factor)
	}
	return w
}

func (s *FixedPercentageStrategy) Name() string { return string(domain.StrategyFixedPercentage) }

// FixedMonthlyStrategy withdraws a constant monthly amount, optionally
// indexed to inflation.
type FixedMonthlyStrategy struct {
	Params domain.FixedMonthlyParams
}

func (s *FixedMonthlyStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	w := kdec.NewMoneyFromDecimal(s.Params.Monthly).Annual().Decimal
	if s.Params.InflationAdjust && ctx.YearIndex > 0 {
		factor := decimal.NewFromInt(1).Add(ctx.Inflation).Pow(decimal.NewFromInt(int64(ctx.YearIndex)))
		w = w.Mul(factor)
	}
	return w
}

func (s *FixedMonthlyStrategy) Name() string { return string(domain.StrategyFixedMonthly) }

// GuardrailsStrategy carries the prior year's payout forward and adjusts it
// in at most one direction per year, depending on where the trailing return
// sits relative to the thresholds.
type GuardrailsStrategy struct {
	Params         domain.GuardrailsParams
	InitialCapital decimal.Decimal
	current        decimal.Decimal
	started        bool
}

func (s *GuardrailsStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	if !s.started {
		s.current = s.InitialCapital.Mul(s.Params.BaseRate)
		s.started = true
		return s.current
	}
	one := decimal.NewFromInt(1)
	if ctx.TrailingReturn.GreaterThan(s.Params.UpperThreshold) {
		s.current = s.current.Mul(one.Add(s.Params.Adjustment))
	} else if ctx.TrailingReturn.LessThan(s.Params.LowerThreshold) {
		s.current = s.current.Mul(one.Sub(s.Params.Adjustment))
	}
	return s.current
}

func (s *GuardrailsStrategy) Name() string { return string(domain.StrategyGuardrails) }

// BucketStrategy keeps a cash cushion inside the portfolio. The payout rate
// applies to the combined value; the cushion is drained first and refilled
// from the growth bucket once it falls below the threshold. The split is
// internal bookkeeping; the driver only sees the combined capital.
type BucketStrategy struct {
	Params domain.BucketParams
	Cash   decimal.Decimal
}

func (s *BucketStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	combined := ctx.State.Capital
	if s.Cash.GreaterThan(combined) {
		s.Cash = combined
	}
	w := combined.Mul(s.Params.BaseRate)

	// Drain cash first.
	if w.LessThanOrEqual(s.Cash) {
		s.Cash = s.Cash.Sub(w)
	} else {
		s.Cash = decimal.Zero
	}

	// Refill from the growth bucket when the cushion runs low.
	remaining := combined.Sub(w)
	if remaining.LessThan(decimal.Zero) {
		remaining = decimal.Zero
	}
	if s.Cash.LessThan(s.Params.RefillThreshold) {
		growthBucket := remaining.Sub(s.Cash)
		if growthBucket.GreaterThan(decimal.Zero) {
			s.Cash = s.Cash.Add(growthBucket.Mul(s.Params.RefillPercent))
		}
	}
	return w
}

func (s *BucketStrategy) Name() string { return string(domain.StrategyBucket) }

// RMDStrategy divides the current portfolio by the remaining life expectancy
// for the year's age. The divisor is floored at one inside the table.
type RMDStrategy struct {
	Params domain.RMDParams
	Table  *LifeTable
}

func (s *RMDStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	return ctx.State.Capital.Div(s.Table.Divisor(ctx.Age))
}

func (s *RMDStrategy) Name() string { return string(domain.StrategyRMD) }

// CapitalPreservationStrategy withdraws only the real return, so the
// inflation-adjusted capital is preserved.
type CapitalPreservationStrategy struct {
	Params domain.CapitalPreservationParams
}

func (s *CapitalPreservationStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	realRate := s.Params.ExpectedReturn.Sub(ctx.Inflation)
	if realRate.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return ctx.State.Capital.Mul(realRate)
}

func (s *CapitalPreservationStrategy) Name() string {
	return string(domain.StrategyCapitalPreservation)
}

// taxOptimizedMaxIterations bounds the bisection search.
const taxOptimizedMaxIterations = 32

// TaxOptimizedStrategy searches for the withdrawal whose realized taxable
// gain hits the configured share of the year's remaining allowance, subject
// to an effective tax rate cap. This is the only strategy without a closed
// form; the search is bounded and falls back to the base rate.
type TaxOptimizedStrategy struct {
	Params domain.TaxOptimizedParams
}

func (s *TaxOptimizedStrategy) CalculateWithdrawal(ctx WithdrawalContext) decimal.Decimal {
	capital := ctx.State.Capital
	fallback := capital.Mul(s.Params.BaseRate)
	if capital.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	gainRatio := capital.Sub(ctx.State.CostBasis).Div(capital)
	if gainRatio.LessThanOrEqual(decimal.Zero) {
		// No embedded gains, nothing to optimize against.
		return fallback
	}

	target := ctx.AllowanceRemaining.Mul(s.Params.AllowanceTarget)
	tolerance := decimal.NewFromFloat(0.01)

	taxableFor := func(w decimal.Decimal) decimal.Decimal {
		gain := w.Mul(gainRatio)
		credit := decimal.Min(gain, ctx.State.VorabBase)
		return TaxablePortion(gain.Sub(credit), ctx.Tax.Quota)
	}

	lo := decimal.Zero
	hi := capital
	w := fallback
	converged := false
	for i := 0; i < taxOptimizedMaxIterations; i++ {
		mid := lo.Add(hi).Div(decimal.NewFromInt(2))
		diff := taxableFor(mid).Sub(target)
		if diff.Abs().LessThanOrEqual(tolerance) {
			w = mid
			converged = true
			break
		}
		if diff.GreaterThan(decimal.Zero) {
			hi = mid
		} else {
			lo = mid
		}
	}
	if !converged {
		// Whole-portfolio sale may still undershoot the target; take the
		// closest bound instead of oscillating forever.
		if taxableFor(capital).LessThan(target) {
			w = capital
		} else {
			return fallback
		}
	}

	if s.Params.EffectiveRateLimit.GreaterThan(decimal.Zero) && w.GreaterThan(decimal.Zero) {
		gain := w.Mul(gainRatio)
		credit := decimal.Min(gain, ctx.State.VorabBase)
		tax, _ := taxOnGain(gain.Sub(credit), ctx.AllowanceRemaining, ctx.Tax)
		if tax.Div(w).GreaterThan(s.Params.EffectiveRateLimit) {
			return fallback
		}
	}
	return w
}

func (s *TaxOptimizedStrategy) Name() string { return string(domain.StrategyTaxOptimized) }

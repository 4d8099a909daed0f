package calculation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
	kdec "github.com/zinsplan/kapitalsim/pkg/decimal"
)

// YearState is the value threaded from one simulated year to the next. Each
// step consumes a state and produces a new one; nothing is mutated in place.
type YearState struct {
	Capital decimal.Decimal

	// CostBasis tracks contributed principal so realized gains on
	// withdrawal can be separated from returned capital.
	CostBasis decimal.Decimal

	// VorabBase is the accumulated Vorabpauschale base not yet credited
	// against realized gains.
	VorabBase decimal.Decimal
}

// contributionsForYear sums every active contribution plan for a calendar
// year. Years without matching plans contribute zero; that is not an error.
func contributionsForYear(plans []domain.ContributionPlan, year int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plans {
		if year < p.StartYear {
			continue
		}
		if p.EndYear != 0 && year > p.EndYear {
			continue
		}
		if p.Cadence == domain.GranularityMonthly {
			total = total.Add(kdec.NewMoneyFromDecimal(p.Amount).Annual().Decimal)
		} else {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// monthlyRate converts an annual rate into its compounding-equivalent
// monthly rate.
func monthlyRate(annual decimal.Decimal) decimal.Decimal {
	f, _ := annual.Float64()
	return decimal.NewFromFloat(math.Pow(1+f, 1.0/12.0) - 1)
}

// savingsStep advances one savings-phase year: contributions land, the
// portfolio grows, and the Vorabpauschale is assessed on the year's start
// capital capped at actual growth.
func savingsStep(state YearState, year int, ps *phaseSettings) (YearState, domain.YearResult) {
	startCapital := state.Capital
	annualContribution := contributionsForYear(ps.contributions, year)
	rate := ps.returns.AnnualRate(year)

	var grown decimal.Decimal
	if ps.granularity == domain.GranularityMonthly {
		grown = growMonthly(startCapital, annualContribution, rate, ps.contributions, year)
	} else {
		grown = startCapital.Add(annualContribution).Mul(decimal.NewFromInt(1).Add(rate))
	}
	growth := grown.Sub(startCapital).Sub(annualContribution)

	rec := domain.YearResult{
		Year:          year,
		Phase:         domain.PhaseSavings,
		StartCapital:  startCapital,
		Contributions: annualContribution,
		Return:        growth,
	}

	next := YearState{
		Capital:   grown,
		CostBasis: state.CostBasis.Add(annualContribution),
		VorabBase: state.VorabBase,
	}

	if ps.taxCfg.VorabpauschaleEnabled {
		allowance := ps.taxCfg.AllowanceFor(year)
		vp := Vorabpauschale(startCapital, ps.taxCfg.Basiszins, growth, allowance, ps.tax)
		rec.Vorabpauschale = vp.DeemedBase
		rec.TaxableGain = TaxablePortion(vp.DeemedBase, ps.tax.Quota)
		rec.TaxPaid = vp.TaxDue
		rec.AllowanceUsed = vp.AllowanceUsed
		next.VorabBase = next.VorabBase.Add(vp.DeemedBase)
		if ps.taxCfg.TaxReducesCapital {
			next.Capital = next.Capital.Sub(vp.TaxDue)
		}
	}

	rec.VorabpauschaleAccumulated = next.VorabBase
	rec.EndCapital = next.Capital
	return next, rec
}

// growMonthly compounds one calendar year month by month. Monthly plans pay
// in every month; yearly plans pay in January.
func growMonthly(startCapital, annualContribution decimal.Decimal, annualRate decimal.Decimal, plans []domain.ContributionPlan, year int) decimal.Decimal {
	mr := decimal.NewFromInt(1).Add(monthlyRate(annualRate))

	monthly := decimal.Zero
	yearly := decimal.Zero
	for _, p := range plans {
		if year < p.StartYear {
			continue
		}
		if p.EndYear != 0 && year > p.EndYear {
			continue
		}
		if p.Cadence == domain.GranularityMonthly {
			monthly = monthly.Add(p.Amount)
		} else {
			yearly = yearly.Add(p.Amount)
		}
	}

	capital := startCapital.Add(yearly)
	for m := 0; m < 12; m++ {
		capital = capital.Add(monthly).Mul(mr)
	}
	return capital
}

package calculation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
	"github.com/zinsplan/kapitalsim/pkg/dateutil"
)

// phaseSettings is a segment resolved against the top-level configuration:
// every inheritable field filled in and the return provider constructed.
type phaseSettings struct {
	name          string
	kind          domain.PhaseKind
	startYear     int
	endYear       int
	granularity   domain.Granularity
	returns       ReturnProvider
	tax           TaxParams
	taxCfg        *domain.TaxConfig
	inflation     decimal.Decimal
	contributions []domain.ContributionPlan
	withdrawal    *domain.WithdrawalConfig
}

// Simulator drives an ordered list of phases over the configured horizon.
// All configuration problems surface in NewSimulator; Run only ever stops
// early for portfolio exhaustion, which is a terminal state, not an error.
type Simulator struct {
	cfg    *domain.Configuration
	phases []*phaseSettings
	logger Logger
}

// NewSimulator resolves and validates the phase list. Violating
// configurations are rejected here, before any year is simulated.
func NewSimulator(cfg *domain.Configuration, logger Logger) (*Simulator, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	if cfg.EndYear < cfg.StartYear {
		return nil, fmt.Errorf("end year %d precedes start year %d", cfg.EndYear, cfg.StartYear)
	}

	phases, err := resolvePhases(cfg)
	if err != nil {
		return nil, err
	}
	if err := checkPhaseBounds(cfg, phases); err != nil {
		return nil, err
	}
	return &Simulator{cfg: cfg, phases: phases, logger: logger}, nil
}

// resolvePhases turns the segment list into fully resolved settings. An
// empty segment list synthesizes a single phase covering the whole horizon.
func resolvePhases(cfg *domain.Configuration) ([]*phaseSettings, error) {
	segments := cfg.Segments
	if len(segments) == 0 {
		kind := domain.PhaseSavings
		if cfg.Withdrawal != nil {
			kind = domain.PhaseWithdrawal
		}
		segments = []domain.Segment{{
			Name:      "default",
			Kind:      kind,
			StartYear: cfg.StartYear,
			EndYear:   cfg.EndYear,
		}}
	}

	phases := make([]*phaseSettings, 0, len(segments))
	for i, seg := range segments {
		ps, err := resolveSegment(cfg, i, seg)
		if err != nil {
			return nil, err
		}
		phases = append(phases, ps)
	}
	return phases, nil
}

func resolveSegment(cfg *domain.Configuration, idx int, seg domain.Segment) (*phaseSettings, error) {
	if seg.Kind != domain.PhaseSavings && seg.Kind != domain.PhaseWithdrawal {
		return nil, fmt.Errorf("segment %d (%s): unknown phase kind %q", idx, seg.Name, seg.Kind)
	}
	if seg.EndYear < seg.StartYear {
		return nil, fmt.Errorf("segment %d (%s): end year %d precedes start year %d", idx, seg.Name, seg.EndYear, seg.StartYear)
	}

	returnCfg := cfg.Returns
	if seg.Returns != nil {
		returnCfg = *seg.Returns
	}
	provider, err := NewReturnProvider(returnCfg)
	if err != nil {
		return nil, fmt.Errorf("segment %d (%s): %w", idx, seg.Name, err)
	}

	taxCfg := &cfg.Tax
	if seg.Tax != nil {
		taxCfg = seg.Tax
	}

	inflation := cfg.Inflation
	if seg.Inflation != nil {
		inflation = *seg.Inflation
	}

	ps := &phaseSettings{
		name:          seg.Name,
		kind:          seg.Kind,
		startYear:     seg.StartYear,
		endYear:       seg.EndYear,
		granularity:   cfg.Granularity,
		returns:       provider,
		tax:           taxParamsFrom(taxCfg),
		taxCfg:        taxCfg,
		inflation:     inflation,
		contributions: cfg.Contributions,
	}

	// Without an explicit quota or asset-class preset, a multi-asset blend
	// derives its exemption quota from the allocation weights.
	if ps.tax.Quota.IsZero() && taxCfg.AssetClass == "" && returnCfg.Mode == domain.ReturnModeMultiAsset {
		ps.tax.Quota = BlendedExemptionQuota(returnCfg.Assets)
	}

	if seg.Kind == domain.PhaseWithdrawal {
		wc := seg.Withdrawal
		if wc == nil {
			wc = cfg.Withdrawal
		}
		if wc == nil {
			return nil, fmt.Errorf("segment %d (%s): withdrawal phase without a withdrawal configuration", idx, seg.Name)
		}
		// Construct once against a placeholder balance to surface unknown
		// strategies and missing parameter records at setup time.
		if _, err := NewWithdrawalStrategy(wc, decimal.NewFromInt(1)); err != nil {
			return nil, fmt.Errorf("segment %d (%s): %w", idx, seg.Name, err)
		}
		ps.withdrawal = wc
	}
	return ps, nil
}

// checkPhaseBounds enforces that phases partition the horizon exactly:
// contiguous, non-overlapping, no gaps.
func checkPhaseBounds(cfg *domain.Configuration, phases []*phaseSettings) error {
	if phases[0].startYear != cfg.StartYear {
		return fmt.Errorf("first segment starts at %d, horizon starts at %d", phases[0].startYear, cfg.StartYear)
	}
	for i := 1; i < len(phases); i++ {
		prev, cur := phases[i-1], phases[i]
		if cur.startYear != prev.endYear+1 {
			return fmt.Errorf("segment %q starts at %d, expected %d (segments must be contiguous and non-overlapping)",
				cur.name, cur.startYear, prev.endYear+1)
		}
	}
	last := phases[len(phases)-1]
	if last.endYear != cfg.EndYear {
		return fmt.Errorf("last segment ends at %d, horizon ends at %d", last.endYear, cfg.EndYear)
	}
	return nil
}

// Run simulates every phase year by year, threading the state forward.
// It stops early when a withdrawal exhausts the portfolio; the returned
// records then cover exactly the years until exhaustion.
func (s *Simulator) Run() ([]domain.YearResult, error) {
	state := YearState{
		Capital:   s.cfg.InitialCapital,
		CostBasis: s.cfg.InitialCapital,
	}
	records := make([]domain.YearResult, 0, s.cfg.HorizonYears())
	trailing := decimal.Zero

	for _, ps := range s.phases {
		var strategy WithdrawalStrategy
		if ps.kind == domain.PhaseWithdrawal {
			var err error
			strategy, err = NewWithdrawalStrategy(ps.withdrawal, state.Capital)
			if err != nil {
				return nil, err
			}
		}

		for year := ps.startYear; year <= ps.endYear; year++ {
			var rec domain.YearResult
			if ps.kind == domain.PhaseSavings {
				state, rec = savingsStep(state, year, ps)
			} else {
				yearIndex := year - ps.startYear
				age := s.ageInYear(ps, year, yearIndex)
				state, rec = withdrawalStep(state, year, yearIndex, age, trailing, ps, strategy)
			}
			records = append(records, rec)
			trailing = yearRate(rec)

			if rec.Exhausted {
				s.logger.Infof("portfolio exhausted in %d after %d simulated years", year, len(records))
				return records, nil
			}
		}
	}
	return records, nil
}

// ageInYear derives the age used by age-based strategies, preferring the
// configured birth year over the strategy's own start age.
func (s *Simulator) ageInYear(ps *phaseSettings, year, yearIndex int) int {
	if s.cfg.BirthYear > 0 {
		return dateutil.AgeInYear(s.cfg.BirthYear, year)
	}
	if ps.withdrawal != nil && ps.withdrawal.RMD != nil {
		return ps.withdrawal.RMD.StartAge + yearIndex
	}
	return 0
}

// yearRate recovers the realized annual return rate from a record so the
// next year's strategies can see the trailing return.
func yearRate(rec domain.YearResult) decimal.Decimal {
	base := rec.StartCapital.Add(rec.Contributions)
	if base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return rec.Return.Div(base)
}

// withdrawalStep advances one withdrawal-phase year: growth, Vorabpauschale,
// the strategy's payout clamped to the available capital, and realized-gain
// taxation with the accumulated Vorabpauschale base credited exactly once.
func withdrawalStep(state YearState, year, yearIndex, age int, trailing decimal.Decimal, ps *phaseSettings, strategy WithdrawalStrategy) (YearState, domain.YearResult) {
	startCapital := state.Capital
	rate := ps.returns.AnnualRate(year)
	growth := startCapital.Mul(rate)
	afterGrowth := startCapital.Add(growth)

	allowanceRemaining := ps.taxCfg.AllowanceFor(year)
	taxes := decimal.Zero
	allowanceUsed := decimal.Zero
	taxableGain := decimal.Zero
	vorabBase := state.VorabBase
	deemed := decimal.Zero

	if ps.taxCfg.VorabpauschaleEnabled {
		vp := Vorabpauschale(startCapital, ps.taxCfg.Basiszins, growth, allowanceRemaining, ps.tax)
		deemed = vp.DeemedBase
		taxableGain = taxableGain.Add(TaxablePortion(vp.DeemedBase, ps.tax.Quota))
		taxes = taxes.Add(vp.TaxDue)
		allowanceUsed = allowanceUsed.Add(vp.AllowanceUsed)
		allowanceRemaining = allowanceRemaining.Sub(vp.AllowanceUsed)
		vorabBase = vorabBase.Add(vp.DeemedBase)
	}

	wCtx := WithdrawalContext{
		YearIndex:          yearIndex,
		Age:                age,
		TrailingReturn:     trailing,
		Inflation:          ps.inflation,
		AllowanceRemaining: allowanceRemaining,
		Tax:                ps.tax,
		State: YearState{
			Capital:   afterGrowth,
			CostBasis: state.CostBasis,
			VorabBase: vorabBase,
		},
	}
	requested := strategy.CalculateWithdrawal(wCtx)
	withdrawal, exhausted := clampWithdrawal(requested, afterGrowth)

	// Realized gain share of the withdrawal, with the accumulated
	// Vorabpauschale base credited before taxation.
	costBasis := state.CostBasis
	if afterGrowth.GreaterThan(decimal.Zero) && withdrawal.GreaterThan(decimal.Zero) {
		embedded := afterGrowth.Sub(costBasis)
		if embedded.GreaterThan(decimal.Zero) {
			gain := withdrawal.Mul(embedded.Div(afterGrowth))
			credit := decimal.Min(gain, vorabBase)
			vorabBase = vorabBase.Sub(credit)
			gainTax, used := taxOnGain(gain.Sub(credit), allowanceRemaining, ps.tax)
			taxableGain = taxableGain.Add(TaxablePortion(gain.Sub(credit), ps.tax.Quota))
			taxes = taxes.Add(gainTax)
			allowanceUsed = allowanceUsed.Add(used)
		}
		costBasis = costBasis.Sub(withdrawal.Mul(costBasis.Div(afterGrowth)))
		if costBasis.LessThan(decimal.Zero) {
			costBasis = decimal.Zero
		}
	}

	endCapital := afterGrowth.Sub(withdrawal).Sub(taxes)
	if endCapital.LessThanOrEqual(decimal.Zero) {
		endCapital = decimal.Zero
		exhausted = true
	}

	next := YearState{
		Capital:   endCapital,
		CostBasis: costBasis,
		VorabBase: vorabBase,
	}
	rec := domain.YearResult{
		Year:                      year,
		Phase:                     domain.PhaseWithdrawal,
		StartCapital:              startCapital,
		Return:                    growth,
		Withdrawal:                withdrawal,
		TaxableGain:               taxableGain,
		TaxPaid:                   taxes,
		AllowanceUsed:             allowanceUsed,
		Vorabpauschale:            deemed,
		VorabpauschaleAccumulated: vorabBase,
		EndCapital:                endCapital,
		Exhausted:                 exhausted,
	}
	return next, rec
}

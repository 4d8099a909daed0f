package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// InputParser handles parsing and validation of input configuration files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadConfiguration loads a single simulation configuration from a YAML file.
func (ip *InputParser) LoadConfiguration(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var cfg domain.Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadComparison loads a multi-scenario comparison from a YAML file.
func (ip *InputParser) LoadComparison(filename string) (*domain.Comparison, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var comp domain.Comparison
	if err := yaml.Unmarshal(data, &comp); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(comp.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios provided")
	}
	seen := make(map[string]bool, len(comp.Scenarios))
	for i := range comp.Scenarios {
		sc := &comp.Scenarios[i]
		if sc.ID == "" {
			return nil, fmt.Errorf("scenario %d: id is required", i)
		}
		if seen[sc.ID] {
			return nil, fmt.Errorf("scenario %d: duplicate id %q", i, sc.ID)
		}
		seen[sc.ID] = true
		if err := ip.ValidateConfiguration(&sc.Config); err != nil {
			return nil, fmt.Errorf("scenario %q validation failed: %w", sc.ID, err)
		}
	}
	return &comp, nil
}

// ValidateConfiguration rejects invalid configurations before any simulation
// step runs. Everything here is a setup-time error, never a mid-run surprise.
func (ip *InputParser) ValidateConfiguration(cfg *domain.Configuration) error {
	if cfg.EndYear < cfg.StartYear {
		return fmt.Errorf("end year %d precedes start year %d", cfg.EndYear, cfg.StartYear)
	}
	if cfg.InitialCapital.LessThan(decimal.Zero) {
		return fmt.Errorf("initial capital cannot be negative")
	}
	if cfg.Granularity != "" && cfg.Granularity != domain.GranularityYearly && cfg.Granularity != domain.GranularityMonthly {
		return fmt.Errorf("granularity must be %q or %q", domain.GranularityYearly, domain.GranularityMonthly)
	}

	if err := ip.validateReturns(&cfg.Returns); err != nil {
		return err
	}
	if err := ip.validateTax(&cfg.Tax); err != nil {
		return err
	}
	for i, plan := range cfg.Contributions {
		if err := ip.validateContribution(i, &plan); err != nil {
			return err
		}
	}
	if cfg.Withdrawal != nil {
		if err := ip.validateWithdrawal(cfg.Withdrawal); err != nil {
			return err
		}
	}
	if err := ip.validateSegments(cfg); err != nil {
		return err
	}
	return nil
}

func (ip *InputParser) validateReturns(rc *domain.ReturnConfig) error {
	switch rc.Mode {
	case "", domain.ReturnModeFixed:
		if rc.AnnualRate.LessThan(decimal.NewFromInt(-1)) {
			return fmt.Errorf("annual return cannot be below -100%%")
		}
	case domain.ReturnModeRandom:
		if rc.StdDev.LessThan(decimal.Zero) {
			return fmt.Errorf("random return std_dev cannot be negative")
		}
	case domain.ReturnModeVariable:
		if len(rc.PerYear) == 0 {
			return fmt.Errorf("variable return mode requires a per_year map")
		}
	case domain.ReturnModeMultiAsset:
		if len(rc.Assets) == 0 {
			return fmt.Errorf("multiasset return mode requires at least one asset")
		}
		weightSum := decimal.Zero
		for i, a := range rc.Assets {
			if a.Weight.LessThan(decimal.Zero) {
				return fmt.Errorf("asset %d: weight cannot be negative", i)
			}
			weightSum = weightSum.Add(a.Weight)
		}
		if !weightSum.Equal(decimal.NewFromInt(1)) {
			return fmt.Errorf("asset weights must sum to 1, got %s", weightSum)
		}
	default:
		return fmt.Errorf("unknown return mode %q", rc.Mode)
	}
	return nil
}

func (ip *InputParser) validateTax(tc *domain.TaxConfig) error {
	if tc.CapitalGainsRate.LessThan(decimal.Zero) || tc.CapitalGainsRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("capital gains rate must be in [0, 1)")
	}
	one := decimal.NewFromInt(1)
	if tc.PartialExemptionQuota.LessThan(decimal.Zero) || tc.PartialExemptionQuota.GreaterThan(one) {
		return fmt.Errorf("partial exemption quota must be in [0, 1], got %s", tc.PartialExemptionQuota)
	}
	if tc.AllowanceDefault.LessThan(decimal.Zero) {
		return fmt.Errorf("default allowance cannot be negative")
	}
	for year, a := range tc.AllowancePerYear {
		if a.LessThan(decimal.Zero) {
			return fmt.Errorf("allowance for year %d cannot be negative", year)
		}
	}
	if tc.FavorableAssessment {
		if tc.PersonalRate.LessThan(decimal.Zero) || tc.PersonalRate.GreaterThanOrEqual(one) {
			return fmt.Errorf("personal tax rate must be in [0, 1) when favorable assessment is enabled")
		}
	}
	if tc.VorabpauschaleEnabled && tc.Basiszins.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("vorabpauschale requires a positive basiszins")
	}
	return nil
}

func (ip *InputParser) validateContribution(i int, plan *domain.ContributionPlan) error {
	if plan.Amount.LessThan(decimal.Zero) {
		return fmt.Errorf("contribution %d: amount cannot be negative", i)
	}
	if plan.StartYear == 0 {
		return fmt.Errorf("contribution %d: start year is required", i)
	}
	if plan.EndYear != 0 && plan.EndYear < plan.StartYear {
		return fmt.Errorf("contribution %d: end year %d precedes start year %d", i, plan.EndYear, plan.StartYear)
	}
	if plan.Cadence != "" && plan.Cadence != domain.GranularityYearly && plan.Cadence != domain.GranularityMonthly {
		return fmt.Errorf("contribution %d: cadence must be %q or %q", i, domain.GranularityYearly, domain.GranularityMonthly)
	}
	return nil
}

func (ip *InputParser) validateWithdrawal(wc *domain.WithdrawalConfig) error {
	switch wc.Strategy {
	case domain.StrategyFixedPercentage:
		if wc.FixedPercentage == nil {
			return fmt.Errorf("strategy %q requires fixed_percentage parameters", wc.Strategy)
		}
		if wc.FixedPercentage.Rate.LessThanOrEqual(decimal.Zero) || wc.FixedPercentage.Rate.GreaterThan(decimal.NewFromFloat(0.5)) {
			return fmt.Errorf("fixed percentage rate must be in (0, 0.5]")
		}
	case domain.StrategyFixedMonthly:
		if wc.FixedMonthly == nil {
			return fmt.Errorf("strategy %q requires fixed_monthly parameters", wc.Strategy)
		}
		if wc.FixedMonthly.Monthly.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("fixed monthly amount must be positive")
		}
	case domain.StrategyGuardrails:
		if wc.Guardrails == nil {
			return fmt.Errorf("strategy %q requires guardrails parameters", wc.Strategy)
		}
		g := wc.Guardrails
		if g.BaseRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("guardrails base rate must be positive")
		}
		if g.UpperThreshold.LessThanOrEqual(g.LowerThreshold) {
			return fmt.Errorf("guardrails upper threshold must exceed the lower threshold")
		}
		if g.Adjustment.LessThanOrEqual(decimal.Zero) || g.Adjustment.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("guardrails adjustment must be in (0, 1)")
		}
	case domain.StrategyBucket:
		if wc.Bucket == nil {
			return fmt.Errorf("strategy %q requires bucket parameters", wc.Strategy)
		}
		b := wc.Bucket
		if b.BaseRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("bucket base rate must be positive")
		}
		if b.InitialCash.LessThan(decimal.Zero) || b.RefillThreshold.LessThan(decimal.Zero) {
			return fmt.Errorf("bucket cash amounts cannot be negative")
		}
		if b.RefillPercent.LessThan(decimal.Zero) || b.RefillPercent.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("bucket refill percent must be in [0, 1]")
		}
	case domain.StrategyRMD:
		if wc.RMD == nil {
			return fmt.Errorf("strategy %q requires rmd parameters", wc.Strategy)
		}
		if wc.RMD.CustomDivisor != nil && wc.RMD.CustomDivisor.LessThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("rmd custom divisor must be at least 1")
		}
	case domain.StrategyCapitalPreservation:
		if wc.CapitalPreservation == nil {
			return fmt.Errorf("strategy %q requires capital_preservation parameters", wc.Strategy)
		}
	case domain.StrategyTaxOptimized:
		if wc.TaxOptimized == nil {
			return fmt.Errorf("strategy %q requires tax_optimized parameters", wc.Strategy)
		}
		to := wc.TaxOptimized
		if to.BaseRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("tax optimized base rate must be positive")
		}
		if to.AllowanceTarget.LessThanOrEqual(decimal.Zero) || to.AllowanceTarget.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("tax optimized allowance target must be in (0, 1]")
		}
	default:
		return fmt.Errorf("unknown withdrawal strategy %q", wc.Strategy)
	}
	return nil
}

// validateSegments enforces that segments partition the horizon exactly.
func (ip *InputParser) validateSegments(cfg *domain.Configuration) error {
	if len(cfg.Segments) == 0 {
		return nil
	}
	if cfg.Segments[0].StartYear != cfg.StartYear {
		return fmt.Errorf("first segment starts at %d, horizon starts at %d", cfg.Segments[0].StartYear, cfg.StartYear)
	}
	for i, seg := range cfg.Segments {
		if seg.Kind != domain.PhaseSavings && seg.Kind != domain.PhaseWithdrawal {
			return fmt.Errorf("segment %d (%s): unknown phase kind %q", i, seg.Name, seg.Kind)
		}
		if seg.EndYear < seg.StartYear {
			return fmt.Errorf("segment %d (%s): end year %d precedes start year %d", i, seg.Name, seg.EndYear, seg.StartYear)
		}
		if i > 0 && seg.StartYear != cfg.Segments[i-1].EndYear+1 {
			return fmt.Errorf("segment %d (%s): starts at %d, expected %d (no gaps or overlaps)",
				i, seg.Name, seg.StartYear, cfg.Segments[i-1].EndYear+1)
		}
		if seg.Returns != nil {
			if err := ip.validateReturns(seg.Returns); err != nil {
				return fmt.Errorf("segment %d (%s): %w", i, seg.Name, err)
			}
		}
		if seg.Tax != nil {
			if err := ip.validateTax(seg.Tax); err != nil {
				return fmt.Errorf("segment %d (%s): %w", i, seg.Name, err)
			}
		}
		if seg.Kind == domain.PhaseWithdrawal {
			wc := seg.Withdrawal
			if wc == nil {
				wc = cfg.Withdrawal
			}
			if wc == nil {
				return fmt.Errorf("segment %d (%s): withdrawal phase requires a withdrawal configuration", i, seg.Name)
			}
			if err := ip.validateWithdrawal(wc); err != nil {
				return fmt.Errorf("segment %d (%s): %w", i, seg.Name, err)
			}
		}
	}
	last := cfg.Segments[len(cfg.Segments)-1]
	if last.EndYear != cfg.EndYear {
		return fmt.Errorf("last segment ends at %d, horizon ends at %d", last.EndYear, cfg.EndYear)
	}
	return nil
}

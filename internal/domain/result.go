package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// YearResult is the immutable record emitted for one simulated year.
type YearResult struct {
	Year          int             `json:"year"`
	Phase         PhaseKind       `json:"phase"`
	StartCapital  decimal.Decimal `json:"start_capital"`
	Contributions decimal.Decimal `json:"contributions"`
	Return        decimal.Decimal `json:"return"`
	Withdrawal    decimal.Decimal `json:"withdrawal"`
	TaxableGain   decimal.Decimal `json:"taxable_gain"` // after partial exemption, before allowance
	TaxPaid       decimal.Decimal `json:"tax_paid"`
	AllowanceUsed decimal.Decimal `json:"allowance_used"`

	// Vorabpauschale is the deemed-distribution base assessed this year;
	// VorabpauschaleAccumulated is the running total not yet credited
	// against realized gains.
	Vorabpauschale            decimal.Decimal `json:"vorabpauschale"`
	VorabpauschaleAccumulated decimal.Decimal `json:"vorabpauschale_accumulated"`

	EndCapital decimal.Decimal `json:"end_capital"`
	Exhausted  bool            `json:"exhausted"`
}

// Summary aggregates a full projection into headline metrics.
type Summary struct {
	EndCapitalNominal  decimal.Decimal `json:"end_capital_nominal"`
	EndCapitalReal     decimal.Decimal `json:"end_capital_real"`
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalReturns       decimal.Decimal `json:"total_returns"`
	TotalTaxes         decimal.Decimal `json:"total_taxes"`

	// AnnualizedReturn is only meaningful when AnnualizedReturnDefined is
	// true; a zero contribution basis leaves it undefined rather than NaN.
	AnnualizedReturn        decimal.Decimal `json:"annualized_return"`
	AnnualizedReturnDefined bool            `json:"annualized_return_defined"`

	DurationYears int  `json:"duration_years"`
	Exhausted     bool `json:"exhausted"`
}

// Scenario is one comparison unit: a named configuration. Color is cosmetic
// and passed through untouched for the caller's charting layer.
type Scenario struct {
	ID     string        `yaml:"id" json:"id"`
	Name   string        `yaml:"name" json:"name"`
	Color  string        `yaml:"color" json:"color"`
	Config Configuration `yaml:"config" json:"config"`
}

// ScenarioResult is the full outcome of simulating one scenario.
type ScenarioResult struct {
	ScenarioID string       `json:"scenario_id"`
	Years      []YearResult `json:"years"`
	Summary    Summary      `json:"summary"`
}

// Statistics holds cross-scenario aggregates, computed only when at least two
// scenario results exist. Ties for best/worst go to the scenario encountered
// first in input order.
type Statistics struct {
	BestScenarioID  string          `json:"best_scenario_id"`
	WorstScenarioID string          `json:"worst_scenario_id"`
	BestEndCapital  decimal.Decimal `json:"best_end_capital"`
	WorstEndCapital decimal.Decimal `json:"worst_end_capital"`
	P25             decimal.Decimal `json:"p25"`
	P50             decimal.Decimal `json:"p50"`
	P75             decimal.Decimal `json:"p75"`
	Mean            decimal.Decimal `json:"mean"`
	StdDev          decimal.Decimal `json:"std_dev"` // population standard deviation
	Range           decimal.Decimal `json:"range"`
}

// Comparison bundles scenarios with their (re)computed results. Results and
// Stats are discarded and rebuilt on every run, never patched incrementally.
type Comparison struct {
	ID        string           `yaml:"id" json:"id"`
	Name      string           `yaml:"name" json:"name"`
	CreatedAt time.Time        `yaml:"created_at" json:"created_at"`
	UpdatedAt time.Time        `yaml:"updated_at" json:"updated_at"`
	Scenarios []Scenario       `yaml:"scenarios" json:"scenarios"`
	Results   []ScenarioResult `yaml:"-" json:"results,omitempty"`
	Stats     *Statistics      `yaml:"-" json:"stats,omitempty"`
}

// EndCapital returns the nominal ending capital of the projection.
func (sr *ScenarioResult) EndCapital() decimal.Decimal {
	return sr.Summary.EndCapitalNominal
}

// LastYear returns the final per-year record, or nil for an empty projection.
func (sr *ScenarioResult) LastYear() *YearResult {
	if len(sr.Years) == 0 {
		return nil
	}
	return &sr.Years[len(sr.Years)-1]
}

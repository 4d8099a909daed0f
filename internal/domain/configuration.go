package domain

import (
	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/pkg/dateutil"
)

// ReturnMode selects how annual portfolio returns are produced.
type ReturnMode string

const (
	ReturnModeFixed      ReturnMode = "fixed"
	ReturnModeRandom     ReturnMode = "random"
	ReturnModeVariable   ReturnMode = "variable"
	ReturnModeMultiAsset ReturnMode = "multiasset"
)

// AssetClass identifies the fund category for partial exemption (Teilfreistellung)
// purposes under the German investment tax act.
type AssetClass string

const (
	AssetClassEquityFund            AssetClass = "equity_fund"
	AssetClassMixedFund             AssetClass = "mixed_fund"
	AssetClassRealEstateFund        AssetClass = "real_estate_fund"
	AssetClassForeignRealEstateFund AssetClass = "foreign_real_estate_fund"
	AssetClassOther                 AssetClass = "other"
)

// Granularity controls whether a simulated year compounds once or month by month.
type Granularity string

const (
	GranularityYearly  Granularity = "yearly"
	GranularityMonthly Granularity = "monthly"
)

// AssetWeight is one component of a multi-asset return blend.
type AssetWeight struct {
	Class      AssetClass      `yaml:"class"`
	Weight     decimal.Decimal `yaml:"weight"`
	AnnualRate decimal.Decimal `yaml:"annual_rate"`
}

// ReturnConfig describes the return assumption for a phase. Exactly the fields
// belonging to the selected mode are consulted; validation rejects configs
// whose mode-specific fields are missing.
type ReturnConfig struct {
	Mode       ReturnMode              `yaml:"mode"`
	AnnualRate decimal.Decimal         `yaml:"annual_rate"` // fixed
	Mean       decimal.Decimal         `yaml:"mean"`        // random
	StdDev     decimal.Decimal         `yaml:"std_dev"`     // random
	Seed       int64                   `yaml:"seed"`        // random, 0 = non-deterministic
	PerYear    map[int]decimal.Decimal `yaml:"per_year"`    // variable
	Assets     []AssetWeight           `yaml:"assets"`      // multiasset
}

// ContributionPlan is one savings instruction: a recurring amount between
// StartYear and EndYear (inclusive; EndYear 0 means open-ended).
type ContributionPlan struct {
	Name      string          `yaml:"name"`
	Amount    decimal.Decimal `yaml:"amount"`
	Cadence   Granularity     `yaml:"cadence"` // monthly amounts are per month
	StartYear int             `yaml:"start_year"`
	EndYear   int             `yaml:"end_year"`
}

// TaxConfig carries the German capital gains tax approximation parameters.
type TaxConfig struct {
	CapitalGainsRate      decimal.Decimal `yaml:"capital_gains_rate"`      // flat rate incl. solidarity surcharge, e.g. 0.26375
	PartialExemptionQuota decimal.Decimal `yaml:"partial_exemption_quota"` // Teilfreistellung, [0,1]
	AssetClass            AssetClass      `yaml:"asset_class"`             // optional preset for the quota
	AllowancePerYear      map[int]decimal.Decimal `yaml:"allowance_per_year"` // Freibetrag overrides
	AllowanceDefault      decimal.Decimal `yaml:"allowance_default"`       // Freibetrag for years without an override
	FavorableAssessment   bool            `yaml:"favorable_assessment"`    // Günstigerprüfung
	PersonalRate          decimal.Decimal `yaml:"personal_rate"`           // personal income tax rate for Günstigerprüfung
	Basiszins             decimal.Decimal `yaml:"basiszins"`               // statutory base rate for Vorabpauschale
	VorabpauschaleEnabled bool            `yaml:"vorabpauschale_enabled"`
	TaxReducesCapital     bool            `yaml:"tax_reduces_capital"` // deduct savings-phase tax from capital vs. track as payable
}

// AllowanceFor returns the tax-free allowance configured for a year.
func (tc *TaxConfig) AllowanceFor(year int) decimal.Decimal {
	if v, ok := tc.AllowancePerYear[year]; ok {
		return v
	}
	return tc.AllowanceDefault
}

// StrategyID identifies a withdrawal strategy. The set is closed; unknown ids
// are rejected at configuration time.
type StrategyID string

const (
	StrategyFixedPercentage     StrategyID = "fixed_percentage"
	StrategyFixedMonthly        StrategyID = "fixed_monthly"
	StrategyGuardrails          StrategyID = "guardrails"
	StrategyBucket              StrategyID = "bucket"
	StrategyRMD                 StrategyID = "rmd"
	StrategyCapitalPreservation StrategyID = "capital_preservation"
	StrategyTaxOptimized        StrategyID = "tax_optimized"
)

// KnownStrategies lists every supported strategy id.
func KnownStrategies() []StrategyID {
	return []StrategyID{
		StrategyFixedPercentage,
		StrategyFixedMonthly,
		StrategyGuardrails,
		StrategyBucket,
		StrategyRMD,
		StrategyCapitalPreservation,
		StrategyTaxOptimized,
	}
}

// FixedPercentageParams configures the classic percentage-of-initial-capital rule.
type FixedPercentageParams struct {
	Rate            decimal.Decimal `yaml:"rate"` // e.g. 0.04 for the 4% rule
	InflationAdjust bool            `yaml:"inflation_adjust"`
}

// FixedMonthlyParams configures a constant monthly payout.
type FixedMonthlyParams struct {
	Monthly         decimal.Decimal `yaml:"monthly"`
	InflationAdjust bool            `yaml:"inflation_adjust"`
}

// GuardrailsParams configures the dynamic guardrails strategy. The thresholds
// are compared against the portfolio's trailing annual return.
type GuardrailsParams struct {
	BaseRate       decimal.Decimal `yaml:"base_rate"`
	UpperThreshold decimal.Decimal `yaml:"upper_threshold"` // trailing return above this raises the payout
	LowerThreshold decimal.Decimal `yaml:"lower_threshold"` // trailing return below this cuts the payout
	Adjustment     decimal.Decimal `yaml:"adjustment"`      // relative step, e.g. 0.05
}

// BucketParams configures the two-bucket cash cushion strategy.
type BucketParams struct {
	BaseRate        decimal.Decimal `yaml:"base_rate"`
	InitialCash     decimal.Decimal `yaml:"initial_cash"`
	RefillThreshold decimal.Decimal `yaml:"refill_threshold"` // refill when cash drops below this
	RefillPercent   decimal.Decimal `yaml:"refill_percent"`   // share of the growth bucket moved on refill
}

// RMDParams configures required-minimum-distribution style withdrawals.
type RMDParams struct {
	StartAge      int              `yaml:"start_age"`
	Table         string           `yaml:"table"`          // life table name, empty = standard table
	CustomDivisor *decimal.Decimal `yaml:"custom_divisor"` // overrides the table when set
}

// CapitalPreservationParams targets keeping inflation-adjusted capital intact.
type CapitalPreservationParams struct {
	ExpectedReturn decimal.Decimal `yaml:"expected_return"` // nominal return assumption
}

// TaxOptimizedParams configures the allowance-utilization search.
type TaxOptimizedParams struct {
	BaseRate           decimal.Decimal `yaml:"base_rate"`           // fallback withdrawal rate
	AllowanceTarget    decimal.Decimal `yaml:"allowance_target"`    // desired allowance utilization, (0,1]
	EffectiveRateLimit decimal.Decimal `yaml:"effective_rate_limit"` // cap on tax paid / withdrawal
}

// WithdrawalConfig groups the strategy selection with its per-strategy
// parameter record. Only the record matching Strategy may be set.
type WithdrawalConfig struct {
	Strategy            StrategyID                 `yaml:"strategy"`
	FixedPercentage     *FixedPercentageParams     `yaml:"fixed_percentage"`
	FixedMonthly        *FixedMonthlyParams        `yaml:"fixed_monthly"`
	Guardrails          *GuardrailsParams          `yaml:"guardrails"`
	Bucket              *BucketParams              `yaml:"bucket"`
	RMD                 *RMDParams                 `yaml:"rmd"`
	CapitalPreservation *CapitalPreservationParams `yaml:"capital_preservation"`
	TaxOptimized        *TaxOptimizedParams        `yaml:"tax_optimized"`
}

// PhaseKind distinguishes savings segments from withdrawal segments.
type PhaseKind string

const (
	PhaseSavings    PhaseKind = "savings"
	PhaseWithdrawal PhaseKind = "withdrawal"
)

// Segment is a contiguous sub-range of the horizon with its own strategy and
// assumptions. Segments must partition the horizon without gaps or overlaps.
type Segment struct {
	Name       string            `yaml:"name"`
	Kind       PhaseKind         `yaml:"kind"`
	StartYear  int               `yaml:"start_year"`
	EndYear    int               `yaml:"end_year"`
	Returns    *ReturnConfig     `yaml:"returns"`    // nil = inherit top-level
	Tax        *TaxConfig        `yaml:"tax"`        // nil = inherit top-level
	Inflation  *decimal.Decimal  `yaml:"inflation"`  // nil = inherit top-level
	Withdrawal *WithdrawalConfig `yaml:"withdrawal"` // required for withdrawal segments
}

// Configuration is the immutable input to a simulation run.
type Configuration struct {
	StartYear      int              `yaml:"start_year"`
	EndYear        int              `yaml:"end_year"`
	Granularity    Granularity      `yaml:"granularity"`
	InitialCapital decimal.Decimal  `yaml:"initial_capital"`
	BirthYear      int              `yaml:"birth_year"` // used for age-based strategies
	Inflation      decimal.Decimal  `yaml:"inflation"`
	Returns        ReturnConfig     `yaml:"returns"`
	Tax            TaxConfig        `yaml:"tax"`
	Contributions  []ContributionPlan `yaml:"contributions"`
	Withdrawal     *WithdrawalConfig  `yaml:"withdrawal"`
	Segments       []Segment          `yaml:"segments"`
}

// HorizonYears returns the number of simulated years in the configured range.
func (c *Configuration) HorizonYears() int {
	return dateutil.YearsInclusive(c.StartYear, c.EndYear)
}

package config

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// CreateExampleConfiguration builds a complete two-phase configuration:
// a savings phase with monthly contributions followed by a withdrawal phase
// on the 4% rule, using current German tax parameters.
func CreateExampleConfiguration() *domain.Configuration {
	return &domain.Configuration{
		StartYear:      2024,
		EndYear:        2060,
		Granularity:    domain.GranularityYearly,
		InitialCapital: decimal.NewFromInt(50000),
		BirthYear:      1984,
		Inflation:      decimal.NewFromFloat(0.02),
		Returns: domain.ReturnConfig{
			Mode:       domain.ReturnModeFixed,
			AnnualRate: decimal.NewFromFloat(0.05),
		},
		Tax: domain.TaxConfig{
			CapitalGainsRate:      decimal.NewFromFloat(0.26375),
			AssetClass:            domain.AssetClassEquityFund,
			AllowanceDefault:      decimal.NewFromInt(2000),
			Basiszins:             decimal.NewFromFloat(0.0255),
			VorabpauschaleEnabled: true,
			TaxReducesCapital:     true,
		},
		Contributions: []domain.ContributionPlan{
			{
				Name:      "monthly savings plan",
				Amount:    decimal.NewFromInt(2000),
				Cadence:   domain.GranularityMonthly,
				StartYear: 2024,
				EndYear:   2040,
			},
		},
		Segments: []domain.Segment{
			{
				Name:      "accumulation",
				Kind:      domain.PhaseSavings,
				StartYear: 2024,
				EndYear:   2040,
			},
			{
				Name:      "payout",
				Kind:      domain.PhaseWithdrawal,
				StartYear: 2041,
				EndYear:   2060,
				Withdrawal: &domain.WithdrawalConfig{
					Strategy: domain.StrategyFixedPercentage,
					FixedPercentage: &domain.FixedPercentageParams{
						Rate:            decimal.NewFromFloat(0.04),
						InflationAdjust: true,
					},
				},
			},
		},
	}
}

// CreateExampleComparison builds a two-scenario comparison differing only in
// the return assumption.
func CreateExampleComparison() *domain.Comparison {
	base := CreateExampleConfiguration()
	optimistic := CreateExampleConfiguration()
	optimistic.Returns.AnnualRate = decimal.NewFromFloat(0.07)

	now := time.Now().UTC()
	return &domain.Comparison{
		ID:        "example",
		Name:      "Basis vs. optimistisch",
		CreatedAt: now,
		UpdatedAt: now,
		Scenarios: []domain.Scenario{
			{ID: "base", Name: "Basis (5%)", Color: "#1f77b4", Config: *base},
			{ID: "optimistic", Name: "Optimistisch (7%)", Color: "#2ca02c", Config: *optimistic},
		},
	}
}

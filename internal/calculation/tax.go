package calculation

import (
	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// vorabpauschaleBaseFactor is the statutory 70% factor applied to the
// Basiszins when deriving the deemed-distribution base (§ 18 InvStG).
var vorabpauschaleBaseFactor = decimal.NewFromFloat(0.7)

// PartialExemptionQuotaFor returns the Teilfreistellung quota for a fund
// class per § 20 InvStG. Unknown classes map to zero exemption.
func PartialExemptionQuotaFor(class domain.AssetClass) decimal.Decimal {
	switch class {
	case domain.AssetClassEquityFund:
		return decimal.NewFromFloat(0.30)
	case domain.AssetClassMixedFund:
		return decimal.NewFromFloat(0.15)
	case domain.AssetClassRealEstateFund:
		return decimal.NewFromFloat(0.60)
	case domain.AssetClassForeignRealEstateFund:
		return decimal.NewFromFloat(0.80)
	default:
		return decimal.Zero
	}
}

// TaxablePortion applies the partial exemption quota to a gross gain.
// The quota is validated at the configuration boundary; the primitive
// trusts its input.
func TaxablePortion(grossGain, quota decimal.Decimal) decimal.Decimal {
	return grossGain.Mul(decimal.NewFromInt(1).Sub(quota))
}

// ApplyAllowance consumes the remaining Freibetrag before taxing the rest at
// the given rate. It returns the tax due and the allowance actually consumed.
func ApplyAllowance(taxable, allowanceRemaining, rate decimal.Decimal) (taxDue, allowanceUsed decimal.Decimal) {
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero
	}
	allowanceUsed = decimal.Min(taxable, allowanceRemaining)
	taxDue = taxable.Sub(allowanceUsed).Mul(rate)
	return taxDue, allowanceUsed
}

// FavorableAssessment selects the lower of the flat tax and the personal-rate
// tax when the Günstigerprüfung is enabled; otherwise the flat tax stands.
func FavorableAssessment(flatTax, personalRateTax decimal.Decimal, enabled bool) decimal.Decimal {
	if enabled && personalRateTax.LessThan(flatTax) {
		return personalRateTax
	}
	return flatTax
}

// BlendedExemptionQuota weights the per-class Teilfreistellung quotas by
// allocation, for portfolios configured as a multi-asset return blend.
func BlendedExemptionQuota(assets []domain.AssetWeight) decimal.Decimal {
	q := decimal.Zero
	for _, a := range assets {
		q = q.Add(a.Weight.Mul(PartialExemptionQuotaFor(a.Class)))
	}
	return q
}

// TaxParams bundles the per-phase tax settings the primitives need.
type TaxParams struct {
	Rate                decimal.Decimal
	Quota               decimal.Decimal
	FavorableAssessment bool
	PersonalRate        decimal.Decimal
}

// taxParamsFrom resolves a TaxConfig into the flat parameter set, preferring
// an explicit quota over the asset-class preset.
func taxParamsFrom(tc *domain.TaxConfig) TaxParams {
	quota := tc.PartialExemptionQuota
	if quota.IsZero() && tc.AssetClass != "" {
		quota = PartialExemptionQuotaFor(tc.AssetClass)
	}
	return TaxParams{
		Rate:                tc.CapitalGainsRate,
		Quota:               quota,
		FavorableAssessment: tc.FavorableAssessment,
		PersonalRate:        tc.PersonalRate,
	}
}

// taxOnGain runs a gain through the partial exemption, allowance and
// favorable assessment pipeline.
func taxOnGain(gain, allowanceRemaining decimal.Decimal, p TaxParams) (taxDue, allowanceUsed decimal.Decimal) {
	taxable := TaxablePortion(gain, p.Quota)
	flatTax, used := ApplyAllowance(taxable, allowanceRemaining, p.Rate)
	personalTax, _ := ApplyAllowance(taxable, allowanceRemaining, p.PersonalRate)
	return FavorableAssessment(flatTax, personalTax, p.FavorableAssessment), used
}

// VorabpauschaleResult reports one year's pre-liquidation tax assessment.
type VorabpauschaleResult struct {
	DeemedBase    decimal.Decimal // added to the carried accumulator
	TaxDue        decimal.Decimal
	AllowanceUsed decimal.Decimal
}

// Vorabpauschale computes the deemed-distribution tax for one year: the
// statutory base (start capital x Basiszins x 70%) capped at the actual
// growth, taxed through the standard pipeline. The returned DeemedBase feeds
// the accumulator that later offsets realized-gain tax; it must be credited
// exactly once.
func Vorabpauschale(startCapital, basiszins, actualGrowth, allowanceRemaining decimal.Decimal, p TaxParams) VorabpauschaleResult {
	if startCapital.LessThanOrEqual(decimal.Zero) || basiszins.LessThanOrEqual(decimal.Zero) {
		return VorabpauschaleResult{}
	}
	base := startCapital.Mul(basiszins).Mul(vorabpauschaleBaseFactor)
	if actualGrowth.LessThan(base) {
		base = actualGrowth
	}
	if base.LessThanOrEqual(decimal.Zero) {
		return VorabpauschaleResult{}
	}
	tax, used := taxOnGain(base, allowanceRemaining, p)
	return VorabpauschaleResult{DeemedBase: base, TaxDue: tax, AllowanceUsed: used}
}

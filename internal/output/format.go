package output

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/calculation"
	"github.com/zinsplan/kapitalsim/internal/domain"
	kdec "github.com/zinsplan/kapitalsim/pkg/decimal"
)

// FormatEUR renders an amount in the German convention: thousands separated
// by dots, cents by a comma, trailing euro sign (1.234.567,89 €).
func FormatEUR(d decimal.Decimal) string {
	m := kdec.NewMoneyFromDecimal(d).Round()
	s := m.Decimal.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s,%s €", sign, b.String(), fracPart)
}

// FormatPercent renders a rate as a percentage with two decimals and a
// German decimal comma.
func FormatPercent(rate decimal.Decimal) string {
	s := rate.Mul(decimal.NewFromInt(100)).StringFixed(2)
	return strings.Replace(s, ".", ",", 1) + " %"
}

// FormatDeviation renders a baseline deviation, or "-" when the deviation is
// undefined (zero baseline).
func FormatDeviation(value, baseline decimal.Decimal) string {
	dev, ok := calculation.Deviation(value, baseline)
	if !ok {
		return "-"
	}
	prefix := ""
	if dev.GreaterThan(decimal.Zero) {
		prefix = "+"
	}
	return prefix + FormatPercent(dev)
}

// RenderComparisonTable renders a plain-text summary table for a computed
// comparison. The first scenario serves as the deviation baseline.
func RenderComparisonTable(comp *domain.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vergleich: %s\n\n", comp.Name)
	fmt.Fprintf(&b, "%-24s %20s %20s %14s %10s\n", "Szenario", "Endkapital", "Steuern", "Abweichung", "Dauer")

	var baseline decimal.Decimal
	for i, res := range comp.Results {
		if i == 0 {
			baseline = res.Summary.EndCapitalNominal
		}
		name := res.ScenarioID
		for _, sc := range comp.Scenarios {
			if sc.ID == res.ScenarioID {
				name = sc.Name
				break
			}
		}
		deviation := "-"
		if i > 0 {
			deviation = FormatDeviation(res.Summary.EndCapitalNominal, baseline)
		}
		duration := fmt.Sprintf("%d J.", res.Summary.DurationYears)
		if res.Summary.Exhausted {
			duration += " !"
		}
		fmt.Fprintf(&b, "%-24s %20s %20s %14s %10s\n",
			name,
			FormatEUR(res.Summary.EndCapitalNominal),
			FormatEUR(res.Summary.TotalTaxes),
			deviation,
			duration,
		)
	}

	if comp.Stats != nil {
		s := comp.Stats
		fmt.Fprintf(&b, "\nStatistik über %d Szenarien\n", len(comp.Results))
		fmt.Fprintf(&b, "  Bestes:    %s (%s)\n", s.BestScenarioID, FormatEUR(s.BestEndCapital))
		fmt.Fprintf(&b, "  Schlechtestes: %s (%s)\n", s.WorstScenarioID, FormatEUR(s.WorstEndCapital))
		fmt.Fprintf(&b, "  Median:    %s\n", FormatEUR(s.P50))
		fmt.Fprintf(&b, "  P25/P75:   %s / %s\n", FormatEUR(s.P25), FormatEUR(s.P75))
		fmt.Fprintf(&b, "  Spannweite: %s\n", FormatEUR(s.Range))
	}
	return b.String()
}

// RenderProjection renders the per-year records of a single scenario result.
func RenderProjection(res *domain.ScenarioResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6s %18s %14s %14s %12s %12s %18s\n",
		"Jahr", "Startkapital", "Einzahlung", "Rendite", "Steuern", "Entnahme", "Endkapital")
	for _, y := range res.Years {
		fmt.Fprintf(&b, "%6d %18s %14s %14s %12s %12s %18s\n",
			y.Year,
			FormatEUR(y.StartCapital),
			FormatEUR(y.Contributions),
			FormatEUR(y.Return),
			FormatEUR(y.TaxPaid),
			FormatEUR(y.Withdrawal),
			FormatEUR(y.EndCapital),
		)
	}
	return b.String()
}

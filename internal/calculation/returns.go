package calculation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/zinsplan/kapitalsim/internal/domain"
)

// ReturnProvider yields the annual portfolio return rate for a given calendar
// year. Providers are resolved once at setup; unknown modes never reach the
// simulation loop.
type ReturnProvider interface {
	AnnualRate(year int) decimal.Decimal
}

// NewReturnProvider builds the provider for a return configuration. An
// unknown mode or a mode with missing parameters is a configuration error.
func NewReturnProvider(rc domain.ReturnConfig) (ReturnProvider, error) {
	switch rc.Mode {
	case domain.ReturnModeFixed, "":
		return fixedReturns{rate: rc.AnnualRate}, nil
	case domain.ReturnModeVariable:
		if len(rc.PerYear) == 0 {
			return nil, fmt.Errorf("variable return mode requires a per_year map")
		}
		return variableReturns{perYear: rc.PerYear}, nil
	case domain.ReturnModeRandom:
		if rc.StdDev.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("random return mode requires a non-negative std_dev")
		}
		seed := rc.Seed
		if seed == 0 {
			seed = rand.Int63()
		}
		return &randomReturns{
			rng:    rand.New(rand.NewSource(seed)),
			mean:   rc.Mean,
			stdDev: rc.StdDev,
		}, nil
	case domain.ReturnModeMultiAsset:
		if len(rc.Assets) == 0 {
			return nil, fmt.Errorf("multiasset return mode requires at least one asset")
		}
		return multiAssetReturns{assets: rc.Assets}, nil
	default:
		return nil, fmt.Errorf("unknown return mode %q", rc.Mode)
	}
}

type fixedReturns struct {
	rate decimal.Decimal
}

func (f fixedReturns) AnnualRate(year int) decimal.Decimal {
	return f.rate
}

// variableReturns looks up a per-year rate; years without an entry earn zero.
type variableReturns struct {
	perYear map[int]decimal.Decimal
}

func (v variableReturns) AnnualRate(year int) decimal.Decimal {
	if r, ok := v.perYear[year]; ok {
		return r
	}
	return decimal.Zero
}

// randomReturns draws one normally distributed rate per year from a seeded
// source, so a fixed seed reproduces the full trajectory.
type randomReturns struct {
	rng    *rand.Rand
	mean   decimal.Decimal
	stdDev decimal.Decimal
}

func (r *randomReturns) AnnualRate(year int) decimal.Decimal {
	z := boxMuller(r.rng.Float64(), r.rng.Float64())
	return r.mean.Add(decimal.NewFromFloat(z).Mul(r.stdDev))
}

// boxMuller converts two uniform draws into a standard normal draw.
func boxMuller(u1, u2 float64) float64 {
	if u1 <= 0 {
		u1 = math.SmallestNonzeroFloat64
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// multiAssetReturns blends per-class rates weighted by allocation.
type multiAssetReturns struct {
	assets []domain.AssetWeight
}

func (m multiAssetReturns) AnnualRate(year int) decimal.Decimal {
	blended := decimal.Zero
	for _, a := range m.assets {
		blended = blended.Add(a.Weight.Mul(a.AnnualRate))
	}
	return blended
}

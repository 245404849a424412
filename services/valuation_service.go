package services

import (
	"math"
	"strings"

	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"
)

/*
Fair value estimation blends up to five independent methods, evaluated in a
fixed order. Each method contributes only when its inputs are present and
positive; the final estimate is the unweighted mean of whatever fired. The
sector-multiple fallback runs only when nothing else produced a value, and
if even that has no EPS to work with the estimate falls back to the current
price (zero upside) rather than erroring.
*/

const (
	maxForwardPE = 30
	maxGrowthPE  = 40
)

// EstimateFairValue returns the blended fair value and the labelled
// per-method components that contributed to it.
func EstimateFairValue(m *types.Metrics) types.FairValueEstimate {
	components := []types.FairValueComponent{}

	target := helpers.Deref(m.TargetMeanPrice)
	if target > 0 {
		components = append(components, types.FairValueComponent{Label: "Analyst target", Value: target})
	}

	eps := helpers.Deref(m.TrailingEPS)
	forwardPE := helpers.Deref(m.ForwardPE)
	if forwardPE > 0 && eps > 0 {
		fair := eps * math.Min(forwardPE*1.2, maxForwardPE)
		components = append(components, types.FairValueComponent{Label: "Forward P/E model", Value: fair})
	}

	if m.EarningsGrowth != nil && eps > 0 {
		growthPct := helpers.Pct(m.EarningsGrowth)
		if growthPct > 0 {
			growthPE := math.Min(growthPct, maxGrowthPE)
			components = append(components, types.FairValueComponent{Label: "PEG model", Value: eps * growthPE})
		}
	}

	trailingPE := helpers.Deref(m.TrailingPE)
	if trailingPE > 0 && m.Price > 0 {
		if trailingPE < 25 {
			components = append(components, types.FairValueComponent{Label: "Trailing P/E", Value: m.Price * 1.1})
		} else {
			components = append(components, types.FairValueComponent{Label: "Trailing P/E", Value: m.Price * 0.95})
		}
	}

	// Sector multiple, only when nothing above fired.
	if len(components) == 0 && eps > 0 {
		components = append(components, types.FairValueComponent{Label: "Sector multiple", Value: eps * sectorMultiple(m.Sector)})
	}

	if len(components) == 0 {
		return types.FairValueEstimate{Value: m.Price, Components: components}
	}

	sum := 0.0
	for _, c := range components {
		sum += c.Value
	}
	return types.FairValueEstimate{Value: sum / float64(len(components)), Components: components}
}

func sectorMultiple(sector string) float64 {
	s := helpers.NormalizeString(sector)
	switch {
	case strings.Contains(s, "technology"):
		return 25
	case strings.Contains(s, "consumer"):
		return 20
	default:
		return 18
	}
}

// Upside is the percent gap between fair value and price; zero when the
// price is unusable.
func Upside(fairValue, price float64) float64 {
	if price <= 0 {
		return 0
	}
	return (fairValue - price) / price * 100
}

/*
StickerPrice implements Phil Town's Rule #1 valuation:

	future_eps  = eps × (1+g)^10
	future_pe   = min(2 × g × 100, 50)
	sticker     = future_eps × future_pe / 1.15^10
	mos         = sticker / 2

The growth rate comes from the first positive signal of analyst earnings
growth, the forward/trailing EPS delta, or revenue growth, capped at 30%.
Returns nil when trailing EPS is not positive or no growth signal exists;
callers treat that as "margin of safety unavailable", not an error.
*/
func CalculateStickerPrice(m *types.Metrics, price float64) *types.StickerPrice {
	eps := helpers.Deref(m.TrailingEPS)
	if eps <= 0 {
		return nil
	}

	growth := resolveGrowthRate(m, eps)
	if growth <= 0 {
		return nil
	}
	growth = math.Min(growth, 0.30)

	futureEPS := eps * math.Pow(1+growth, 10)
	futurePE := math.Min(2*growth*100, 50)
	futurePrice := futureEPS * futurePE
	sticker := futurePrice / math.Pow(1.15, 10)
	mos := sticker / 2

	verdict := "OVERPRICED"
	if price <= mos {
		verdict = "ON SALE"
	} else if price <= sticker {
		verdict = "FAIR VALUE"
	}

	return &types.StickerPrice{
		EPS:         eps,
		GrowthRate:  helpers.Round1(growth * 100),
		FutureEPS:   helpers.Round2(futureEPS),
		FuturePE:    futurePE,
		FuturePrice: helpers.Round2(futurePrice),
		Sticker:     helpers.Round2(sticker),
		MOSPrice:    helpers.Round2(mos),
		Verdict:     verdict,
	}
}

// resolveGrowthRate returns a fractional growth rate (0.20 for 20%) from
// the first positive source, or 0.
func resolveGrowthRate(m *types.Metrics, eps float64) float64 {
	if m.EarningsGrowth != nil {
		if pct := helpers.Pct(m.EarningsGrowth); pct > 0 {
			return pct / 100
		}
	}
	if fwd := helpers.Deref(m.ForwardEPS); fwd > eps {
		return (fwd - eps) / eps
	}
	if m.RevenueGrowth != nil {
		if pct := helpers.Pct(m.RevenueGrowth); pct > 0 {
			return pct / 100
		}
	}
	return 0
}

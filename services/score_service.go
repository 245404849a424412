package services

import (
	"fmt"
	"math"

	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"
)

// ScorerProfile selects which scoring rubric Score applies. Every profile
// totals 100 possible points and clamps the aggregate to [0,100].
type ScorerProfile string

const (
	ProfileStandard     ScorerProfile = "standard"
	ProfileProportional ScorerProfile = "proportional"
	ProfileValue        ScorerProfile = "value"
	ProfileGrowth       ScorerProfile = "growth"
	ProfileQuality      ScorerProfile = "quality"
	ProfileDividend     ScorerProfile = "dividend"
)

// Score runs the selected rubric against normalized metrics. Missing
// fields never fail a request: each criterion simply scores zero (or its
// fallback) and says so in its checklist entry. Unknown profile names fall
// back to the proportional rubric.
func Score(m *types.Metrics, fairValue float64, profile ScorerProfile) types.ScoreResult {
	var result types.ScoreResult
	switch profile {
	case ProfileStandard:
		result = scoreStandard(m, fairValue)
	case ProfileValue:
		result = scoreValue(m)
	case ProfileGrowth:
		result = scoreGrowth(m)
	case ProfileQuality:
		result = scoreQuality(m)
	case ProfileDividend:
		result = scoreDividend(m)
	default:
		result = scoreProportional(m, fairValue)
	}

	total := 0
	for _, c := range result.Checks {
		total += c.Points
	}
	result.Score = int(helpers.Clamp(0, 100, float64(total)))
	return result
}

func check(status types.CheckStatus, points, max int, format string, args ...interface{}) types.Check {
	return types.Check{
		Status:    status,
		Text:      fmt.Sprintf(format, args...),
		Points:    points,
		MaxPoints: max,
	}
}

// scoreStandard is the cliff-edge rubric: each criterion pays out fully at
// a hard threshold, partially at a softer one, otherwise nothing.
// ROA 15, ROE 15, cash-vs-debt 15, valuation upside 20, margin 10,
// P/S 10, FCF 15 for a total of 100.
func scoreStandard(m *types.Metrics, fairValue float64) types.ScoreResult {
	checks := []types.Check{}

	roa := helpers.Pct(m.ROA)
	switch {
	case roa > 10:
		checks = append(checks, check(types.CheckPass, 15, 15, "ROA (%.1f%%) > 10%%", roa))
	case roa > 5:
		checks = append(checks, check(types.CheckWarn, 7, 15, "ROA (%.1f%%) moderate", roa))
	default:
		checks = append(checks, check(types.CheckFail, 0, 15, "ROA (%.1f%%) < 10%%", roa))
	}

	roe := helpers.Pct(m.ROE)
	switch {
	case roe > 10:
		checks = append(checks, check(types.CheckPass, 15, 15, "ROE (%.1f%%) > 10%%", roe))
	case roe > 5:
		checks = append(checks, check(types.CheckWarn, 7, 15, "ROE (%.1f%%) moderate", roe))
	default:
		checks = append(checks, check(types.CheckFail, 0, 15, "ROE (%.1f%%) < 10%%", roe))
	}

	cash := helpers.Deref(m.Cash)
	debt := helpers.Deref(m.Debt)
	switch {
	case cash > 0 && cash >= debt:
		checks = append(checks, check(types.CheckPass, 15, 15, "Cash ($%s) covers debt", helpers.FormatNumber(cash)))
	case debt > 0:
		checks = append(checks, check(types.CheckFail, 0, 15, "Debt ($%s) exceeds cash", helpers.FormatNumber(debt)))
	default:
		checks = append(checks, check(types.CheckWarn, 0, 15, "Cash/Debt data unavailable"))
	}

	if m.Price > 0 && fairValue > 0 {
		upside := Upside(fairValue, m.Price)
		switch {
		case upside > 30:
			checks = append(checks, check(types.CheckPass, 20, 20, "%.0f%% undervalued", upside))
		case upside > 10:
			checks = append(checks, check(types.CheckWarn, 10, 20, "%.0f%% below fair value", upside))
		case upside > 0:
			checks = append(checks, check(types.CheckWarn, 5, 20, "Near fair value"))
		default:
			checks = append(checks, check(types.CheckFail, 0, 20, "Overvalued by %.0f%%", math.Abs(upside)))
		}
	}

	margin := helpers.Pct(m.ProfitMargin)
	switch {
	case margin > 15:
		checks = append(checks, check(types.CheckPass, 10, 10, "Strong margin (%.1f%%)", margin))
	case margin > 5:
		checks = append(checks, check(types.CheckWarn, 5, 10, "Margin (%.1f%%)", margin))
	case margin > 0:
		checks = append(checks, check(types.CheckWarn, 0, 10, "Low margin (%.1f%%)", margin))
	default:
		checks = append(checks, check(types.CheckFail, 0, 10, "Negative/no margin data"))
	}

	ps := helpers.Deref(m.PSRatio)
	if ps > 0 && ps < 2 {
		checks = append(checks, check(types.CheckPass, 10, 10, "P/S (%.2fx) attractive", ps))
	} else if ps > 0 {
		checks = append(checks, check(types.CheckWarn, 0, 10, "P/S (%.2fx) high", ps))
	}

	fcf := helpers.Deref(m.FCF)
	if fcf > 0 {
		checks = append(checks, check(types.CheckPass, 15, 15, "Positive FCF ($%s)", helpers.FormatNumber(fcf)))
	} else {
		checks = append(checks, check(types.CheckFail, 0, 15, "Negative/no FCF data"))
	}

	return types.ScoreResult{Checks: checks}
}

// scoreProportional uses the same criteria and point budget as the
// standard rubric but interpolates linearly instead of paying out at
// cliffs, so a 9.8% ROA is worth nearly as much as a 10.2% one.
func scoreProportional(m *types.Metrics, fairValue float64) types.ScoreResult {
	checks := []types.Check{}

	roa := helpers.Pct(m.ROA)
	roaPts := helpers.Clamp(0, 15, (roa+5)*15/20)
	checks = append(checks, check(statusFor(roa, 10, 5), round(roaPts), 15, "ROA %.1f%%", roa))

	roe := helpers.Pct(m.ROE)
	roePts := helpers.Clamp(0, 15, (roe+5)*15/20)
	checks = append(checks, check(statusFor(roe, 10, 5), round(roePts), 15, "ROE %.1f%%", roe))

	cash := helpers.Deref(m.Cash)
	debt := helpers.Deref(m.Debt)
	var cashPts float64
	switch {
	case debt > 0:
		cashPts = helpers.Clamp(0, 15, cash/debt*7.5)
	case cash > 0:
		cashPts = 15
	}
	cashStatus := types.CheckFail
	if cash > 0 && cash >= debt {
		cashStatus = types.CheckPass
	} else if debt > 0 && cash >= debt/2 {
		cashStatus = types.CheckWarn
	}
	checks = append(checks, check(cashStatus, round(cashPts), 15, "Cash $%s vs debt $%s",
		helpers.FormatNumber(cash), helpers.FormatNumber(debt)))

	if m.Price > 0 && fairValue > 0 {
		upside := Upside(fairValue, m.Price)
		upsidePts := helpers.Clamp(0, 20, upside*20/30)
		checks = append(checks, check(statusFor(upside, 10, 0), round(upsidePts), 20, "%.0f%% vs fair value", upside))
	}

	margin := helpers.Pct(m.ProfitMargin)
	marginPts := helpers.Clamp(0, 10, margin*10/15)
	checks = append(checks, check(statusFor(margin, 15, 5), round(marginPts), 10, "Profit margin %.1f%%", margin))

	ps := helpers.Deref(m.PSRatio)
	if ps > 0 {
		psPts := helpers.Clamp(0, 10, (5-ps)*2.5)
		psStatus := types.CheckFail
		if ps < 2 {
			psStatus = types.CheckPass
		} else if ps < 5 {
			psStatus = types.CheckWarn
		}
		checks = append(checks, check(psStatus, round(psPts), 10, "P/S %.2fx", ps))
	}

	fcf := helpers.Deref(m.FCF)
	var fcfPts float64
	fcfStatus := types.CheckFail
	if m.MarketCap > 0 {
		fcfYield := fcf / m.MarketCap * 100
		fcfPts = helpers.Clamp(0, 15, fcfYield*1.5)
		if fcf > 0 {
			fcfStatus = types.CheckPass
		}
		checks = append(checks, check(fcfStatus, round(fcfPts), 15, "FCF yield %.1f%%", fcfYield))
	} else if fcf > 0 {
		// Market cap unknown: positive FCF still deserves credit.
		checks = append(checks, check(types.CheckWarn, 10, 15, "Positive FCF ($%s), yield unknown", helpers.FormatNumber(fcf)))
	} else {
		checks = append(checks, check(types.CheckFail, 0, 15, "Negative/no FCF data"))
	}

	return types.ScoreResult{Checks: checks}
}

// scoreValue screens for classically cheap stocks.
// P/E 30, P/B 20, dividend yield 15, debt/equity 20, FCF yield 15.
func scoreValue(m *types.Metrics) types.ScoreResult {
	checks := []types.Check{}

	pe := helpers.Deref(m.TrailingPE)
	var pePts int
	switch {
	case pe > 0 && pe < 10:
		pePts = 30
	case pe > 0 && pe < 15:
		pePts = 22
	case pe > 0 && pe < 20:
		pePts = 15
	case pe > 0 && pe < 25:
		pePts = 8
	}
	checks = append(checks, check(statusForPoints(pePts, 22, 8), pePts, 30, "P/E %.1fx", pe))

	pb := helpers.Deref(m.PBRatio)
	var pbPts int
	switch {
	case pb > 0 && pb < 1:
		pbPts = 20
	case pb > 0 && pb < 2:
		pbPts = 14
	case pb > 0 && pb < 3:
		pbPts = 8
	}
	checks = append(checks, check(statusForPoints(pbPts, 14, 8), pbPts, 20, "P/B %.1fx", pb))

	yield := helpers.Pct(m.DividendYield)
	var yieldPts int
	switch {
	case yield >= 4:
		yieldPts = 15
	case yield >= 2.5:
		yieldPts = 11
	case yield >= 1:
		yieldPts = 6
	}
	checks = append(checks, check(statusForPoints(yieldPts, 11, 6), yieldPts, 15, "Dividend yield %.2f%%", yield))

	debt := helpers.Deref(m.Debt)
	equity := helpers.Deref(m.BookValuePerShare) * helpers.Deref(m.SharesOutstanding)
	var dePts int
	deText := "Debt/equity unavailable"
	if equity > 0 {
		de := debt / equity
		switch {
		case de < 0.3:
			dePts = 20
		case de < 0.6:
			dePts = 14
		case de < 1:
			dePts = 8
		}
		deText = fmt.Sprintf("Debt/equity %.2f", de)
	}
	checks = append(checks, check(statusForPoints(dePts, 14, 8), dePts, 20, "%s", deText))

	checks = append(checks, fcfYieldCheck(m, 15, 8, 5, 2))

	return types.ScoreResult{Checks: checks}
}

// scoreGrowth rewards expansion and momentum.
// Revenue growth 25, earnings growth 25, ROE 20, margin 15, momentum 15.
func scoreGrowth(m *types.Metrics) types.ScoreResult {
	checks := []types.Check{}

	rg := helpers.Pct(m.RevenueGrowth)
	checks = append(checks, tieredCheck(rg, 25, 20, 10, 5, "Revenue growth %.1f%%"))

	eg := helpers.Pct(m.EarningsGrowth)
	checks = append(checks, tieredCheck(eg, 25, 20, 10, 5, "Earnings growth %.1f%%"))

	roe := helpers.Pct(m.ROE)
	var roePts int
	switch {
	case roe >= 20:
		roePts = 20
	case roe >= 15:
		roePts = 14
	case roe >= 10:
		roePts = 8
	}
	checks = append(checks, check(statusForPoints(roePts, 14, 8), roePts, 20, "ROE %.1f%%", roe))

	margin := helpers.Pct(m.ProfitMargin)
	var marginPts int
	switch {
	case margin >= 15:
		marginPts = 15
	case margin >= 8:
		marginPts = 10
	case margin > 0:
		marginPts = 5
	}
	checks = append(checks, check(statusForPoints(marginPts, 10, 5), marginPts, 15, "Profit margin %.1f%%", margin))

	// Momentum from the stock's position in its 52-week range.
	var momPts int
	momText := "52-week range unavailable"
	if m.Week52High > m.Week52Low && m.Price > 0 {
		pos := (m.Price - m.Week52Low) / (m.Week52High - m.Week52Low)
		switch {
		case pos >= 0.8:
			momPts = 15
		case pos >= 0.6:
			momPts = 10
		case pos >= 0.4:
			momPts = 5
		}
		momText = fmt.Sprintf("At %.0f%% of 52-week range", pos*100)
	}
	checks = append(checks, check(statusForPoints(momPts, 10, 5), momPts, 15, "%s", momText))

	return types.ScoreResult{Checks: checks}
}

// scoreQuality looks for durable, efficient businesses.
// ROE-as-ROIC-proxy 25, ROA 20, gross margin 20, profit margin 20,
// FCF yield 15.
func scoreQuality(m *types.Metrics) types.ScoreResult {
	checks := []types.Check{}

	roe := helpers.Pct(m.ROE)
	var roePts int
	switch {
	case roe >= 20:
		roePts = 25
	case roe >= 15:
		roePts = 18
	case roe >= 10:
		roePts = 10
	}
	checks = append(checks, check(statusForPoints(roePts, 18, 10), roePts, 25, "ROE %.1f%% (ROIC proxy)", roe))

	roa := helpers.Pct(m.ROA)
	var roaPts int
	switch {
	case roa >= 10:
		roaPts = 20
	case roa >= 5:
		roaPts = 12
	}
	checks = append(checks, check(statusForPoints(roaPts, 12, 12), roaPts, 20, "ROA %.1f%%", roa))

	gross := helpers.Pct(m.GrossMargin)
	var grossPts int
	switch {
	case gross >= 50:
		grossPts = 20
	case gross >= 35:
		grossPts = 14
	case gross >= 20:
		grossPts = 8
	}
	checks = append(checks, check(statusForPoints(grossPts, 14, 8), grossPts, 20, "Gross margin %.1f%%", gross))

	margin := helpers.Pct(m.ProfitMargin)
	var marginPts int
	switch {
	case margin >= 15:
		marginPts = 20
	case margin >= 8:
		marginPts = 12
	case margin > 0:
		marginPts = 6
	}
	checks = append(checks, check(statusForPoints(marginPts, 12, 6), marginPts, 20, "Profit margin %.1f%%", margin))

	checks = append(checks, fcfYieldCheck(m, 15, 8, 5, 2))

	return types.ScoreResult{Checks: checks}
}

// scoreDividend screens income stocks.
// Yield 30, payout sweet spot 25, FCF coverage 15, leverage 15, margin 15.
func scoreDividend(m *types.Metrics) types.ScoreResult {
	checks := []types.Check{}

	yield := helpers.Pct(m.DividendYield)
	var yieldPts int
	switch {
	case yield >= 5:
		yieldPts = 30
	case yield >= 3:
		yieldPts = 22
	case yield >= 1.5:
		yieldPts = 12
	}
	checks = append(checks, check(statusForPoints(yieldPts, 22, 12), yieldPts, 30, "Dividend yield %.2f%%", yield))

	// Payout ratio from dividend rate over EPS; the 30-60% band is the
	// sweet spot (sustainable but shareholder-friendly).
	var payoutPts int
	payoutText := "Payout ratio unavailable"
	eps := helpers.Deref(m.TrailingEPS)
	if yield > 0 && eps > 0 && m.Price > 0 {
		payout := (yield / 100 * m.Price) / eps * 100
		switch {
		case payout >= 30 && payout <= 60:
			payoutPts = 25
		case payout > 60 && payout <= 80:
			payoutPts = 12
		case payout > 0 && payout < 30:
			payoutPts = 10
		}
		payoutText = fmt.Sprintf("Payout ratio %.0f%%", payout)
	}
	checks = append(checks, check(statusForPoints(payoutPts, 12, 10), payoutPts, 25, "%s", payoutText))

	// FCF coverage of the dividend.
	var coverPts int
	coverText := "FCF coverage unavailable"
	fcf := helpers.Deref(m.FCF)
	if yield > 0 && m.MarketCap > 0 && fcf > 0 {
		dividendsPaid := yield / 100 * m.MarketCap
		if dividendsPaid > 0 {
			coverage := fcf / dividendsPaid
			switch {
			case coverage >= 2:
				coverPts = 15
			case coverage >= 1:
				coverPts = 10
			default:
				coverPts = 5
			}
			coverText = fmt.Sprintf("FCF covers dividend %.1fx", coverage)
		}
	}
	checks = append(checks, check(statusForPoints(coverPts, 10, 5), coverPts, 15, "%s", coverText))

	cash := helpers.Deref(m.Cash)
	debt := helpers.Deref(m.Debt)
	var levPts int
	switch {
	case cash > 0 && cash >= debt:
		levPts = 15
	case debt > 0 && cash >= debt/2:
		levPts = 8
	}
	checks = append(checks, check(statusForPoints(levPts, 8, 8), levPts, 15, "Cash $%s vs debt $%s",
		helpers.FormatNumber(cash), helpers.FormatNumber(debt)))

	margin := helpers.Pct(m.ProfitMargin)
	var marginPts int
	switch {
	case margin >= 10:
		marginPts = 15
	case margin >= 5:
		marginPts = 9
	case margin > 0:
		marginPts = 4
	}
	checks = append(checks, check(statusForPoints(marginPts, 9, 4), marginPts, 15, "Profit margin %.1f%%", margin))

	return types.ScoreResult{Checks: checks}
}

func fcfYieldCheck(m *types.Metrics, max int, hi, mid, lo float64) types.Check {
	fcf := helpers.Deref(m.FCF)
	if m.MarketCap <= 0 {
		if fcf > 0 {
			return check(types.CheckWarn, max*2/3, max, "Positive FCF ($%s), yield unknown", helpers.FormatNumber(fcf))
		}
		return check(types.CheckFail, 0, max, "FCF yield unavailable")
	}
	fcfYield := fcf / m.MarketCap * 100
	var pts int
	switch {
	case fcfYield >= hi:
		pts = max
	case fcfYield >= mid:
		pts = max * 2 / 3
	case fcfYield >= lo:
		pts = max * 2 / 5
	}
	return check(statusForPoints(pts, max*2/3, 1), pts, max, "FCF yield %.1f%%", fcfYield)
}

func tieredCheck(value float64, max, hiPts, midPts, loPts int, format string) types.Check {
	var pts int
	switch {
	case value >= 20:
		pts = max
	case value >= 10:
		pts = hiPts
	case value >= 5:
		pts = midPts
	case value > 0:
		pts = loPts
	}
	return check(statusForPoints(pts, midPts, loPts), pts, max, format, value)
}

func statusFor(value, passAt, warnAt float64) types.CheckStatus {
	if value > passAt {
		return types.CheckPass
	}
	if value > warnAt {
		return types.CheckWarn
	}
	return types.CheckFail
}

func statusForPoints(points, passAt, warnAt int) types.CheckStatus {
	if points >= passAt && points > 0 {
		return types.CheckPass
	}
	if points >= warnAt && points > 0 {
		return types.CheckWarn
	}
	return types.CheckFail
}

func round(v float64) int {
	return int(math.Round(v))
}

// GetRecommendation maps (score, upside) to a discrete signal. The table
// is evaluated top-down and total: every input lands on exactly one row.
func GetRecommendation(score int, upside float64) types.Recommendation {
	switch {
	case score >= 70 && upside > 30:
		return types.Recommendation{Signal: "STRONG BUY", Color: "#00d374", Reason: "High score with significant undervaluation"}
	case score >= 60 && upside > 15:
		return types.Recommendation{Signal: "BUY", Color: "#00d374", Reason: "Good fundamentals and undervalued"}
	case score >= 50 && upside > 0:
		return types.Recommendation{Signal: "HOLD", Color: "#ffb800", Reason: "Decent fundamentals, fair price"}
	case score >= 40:
		return types.Recommendation{Signal: "WATCH", Color: "#ffb800", Reason: "Some concerns, monitor closely"}
	default:
		return types.Recommendation{Signal: "AVOID", Color: "#ff5252", Reason: "Does not meet investment criteria"}
	}
}

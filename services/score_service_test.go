package services

import (
	"testing"

	"stockanalyzer/types"
)

func fv(v float64) *float64 { return &v }

func strongMetrics() *types.Metrics {
	return &types.Metrics{
		Symbol:       "TEST",
		Price:        100,
		MarketCap:    50e9,
		ROA:          fv(0.18),
		ROE:          fv(0.25),
		ProfitMargin: fv(0.22),
		Cash:         fv(30e9),
		Debt:         fv(10e9),
		FCF:          fv(5e9),
		PSRatio:      fv(1.5),
	}
}

func TestScoreStandard_StrongCompany(t *testing.T) {
	m := strongMetrics()
	result := Score(m, 150, ProfileStandard)
	if result.Score != 100 {
		t.Errorf("expected perfect score 100, got %d", result.Score)
	}
	for _, c := range result.Checks {
		if c.Status != types.CheckPass {
			t.Errorf("expected all checks to pass, got %q for %q", c.Status, c.Text)
		}
	}
}

func TestScoreStandard_WeakCompany(t *testing.T) {
	m := &types.Metrics{
		Symbol:       "WEAK",
		Price:        50,
		ROA:          fv(-0.02),
		ROE:          fv(-0.05),
		ProfitMargin: fv(-0.10),
		Cash:         fv(1e9),
		Debt:         fv(20e9),
		FCF:          fv(-2e9),
		PSRatio:      fv(8),
	}
	result := Score(m, 30, ProfileStandard)
	if result.Score != 0 {
		t.Errorf("expected floor score 0, got %d", result.Score)
	}
}

func TestScoreStandard_ModerateBands(t *testing.T) {
	m := &types.Metrics{
		Symbol:       "MID",
		Price:        100,
		ROA:          fv(0.07),
		ROE:          fv(0.08),
		ProfitMargin: fv(0.10),
	}
	result := Score(m, 120, ProfileStandard)
	// ROA warn 7 + ROE warn 7 + cash/debt warn 0 + upside 20% warn 10 +
	// margin warn 5 + no P/S check + FCF fail 0 = 29.
	if result.Score != 29 {
		t.Errorf("expected 29, got %d", result.Score)
	}
}

func TestScore_ClampedToHundred(t *testing.T) {
	for _, profile := range []ScorerProfile{
		ProfileStandard, ProfileProportional, ProfileValue,
		ProfileGrowth, ProfileQuality, ProfileDividend,
	} {
		result := Score(strongMetrics(), 200, profile)
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("profile %s: score %d out of [0,100]", profile, result.Score)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	m := strongMetrics()
	first := Score(m, 130, ProfileProportional)
	second := Score(m, 130, ProfileProportional)
	if first.Score != second.Score {
		t.Errorf("same input gave %d then %d", first.Score, second.Score)
	}
	if len(first.Checks) != len(second.Checks) {
		t.Errorf("check count changed between runs: %d vs %d", len(first.Checks), len(second.Checks))
	}
}

func TestScore_MissingDataNeverPanics(t *testing.T) {
	empty := &types.Metrics{Symbol: "NIL", Price: 10}
	for _, profile := range []ScorerProfile{
		ProfileStandard, ProfileProportional, ProfileValue,
		ProfileGrowth, ProfileQuality, ProfileDividend,
	} {
		result := Score(empty, 0, profile)
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("profile %s: score %d out of range on empty metrics", profile, result.Score)
		}
	}
}

func TestScore_UnknownProfileFallsBackToProportional(t *testing.T) {
	m := strongMetrics()
	got := Score(m, 130, ScorerProfile("bogus"))
	want := Score(m, 130, ProfileProportional)
	if got.Score != want.Score {
		t.Errorf("unknown profile scored %d, proportional scored %d", got.Score, want.Score)
	}
}

func TestScoreProportional_PartialCredit(t *testing.T) {
	// Just under the standard rubric's ROA cliff: the proportional rubric
	// should still pay close to the full 15 points.
	m := &types.Metrics{Symbol: "NEAR", Price: 100, ROA: fv(0.098)}
	result := Score(m, 0, ProfileProportional)
	var roaPts int
	for _, c := range result.Checks {
		if c.MaxPoints == 15 && c.Points > 0 {
			roaPts = c.Points
			break
		}
	}
	if roaPts < 10 || roaPts > 15 {
		t.Errorf("expected near-full ROA credit for 9.8%%, got %d", roaPts)
	}
}

func TestGetRecommendation_Table(t *testing.T) {
	cases := []struct {
		score  int
		upside float64
		signal string
		color  string
	}{
		{75, 35, "STRONG BUY", "#00d374"},
		{70, 31, "STRONG BUY", "#00d374"},
		{65, 20, "BUY", "#00d374"},
		{70, 20, "BUY", "#00d374"},
		{55, 5, "HOLD", "#ffb800"},
		{55, -5, "WATCH", "#ffb800"},
		{45, 50, "WATCH", "#ffb800"},
		{40, 0, "WATCH", "#ffb800"},
		{39, 50, "AVOID", "#ff5252"},
		{20, -10, "AVOID", "#ff5252"},
		{0, 0, "AVOID", "#ff5252"},
	}
	for _, c := range cases {
		rec := GetRecommendation(c.score, c.upside)
		if rec.Signal != c.signal {
			t.Errorf("score=%d upside=%.0f: expected %q, got %q", c.score, c.upside, c.signal, rec.Signal)
		}
		if rec.Color != c.color {
			t.Errorf("score=%d upside=%.0f: expected color %q, got %q", c.score, c.upside, c.color, rec.Color)
		}
		if rec.Reason == "" {
			t.Errorf("score=%d upside=%.0f: empty reason", c.score, c.upside)
		}
	}
}

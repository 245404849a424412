package services

import (
	"math"
	"testing"

	"stockanalyzer/types"
)

func TestEstimateFairValue_FallsBackToPrice(t *testing.T) {
	m := &types.Metrics{Symbol: "BARE", Price: 100}
	est := EstimateFairValue(m)
	if est.Value != 100 {
		t.Errorf("expected fallback to market price 100, got %.2f", est.Value)
	}
	if len(est.Components) != 0 {
		t.Errorf("expected no components, got %d", len(est.Components))
	}
}

func TestEstimateFairValue_AnalystTargetOnly(t *testing.T) {
	m := &types.Metrics{Symbol: "TGT", Price: 100, TargetMeanPrice: fv(130)}
	est := EstimateFairValue(m)
	if est.Value != 130 {
		t.Errorf("expected 130 from lone analyst target, got %.2f", est.Value)
	}
	if len(est.Components) != 1 || est.Components[0].Label != "Analyst target" {
		t.Errorf("unexpected components: %+v", est.Components)
	}
}

func TestEstimateFairValue_AveragesMethods(t *testing.T) {
	m := &types.Metrics{
		Symbol:          "AVG",
		Price:           100,
		TargetMeanPrice: fv(120),
		TrailingEPS:     fv(6),
		ForwardPE:       fv(20),
	}
	est := EstimateFairValue(m)
	// Analyst 120; forward model 6 * min(20*1.2, 30) = 6*24 = 144.
	want := (120.0 + 144.0) / 2
	if math.Abs(est.Value-want) > 0.01 {
		t.Errorf("expected %.2f, got %.2f", want, est.Value)
	}
	if len(est.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(est.Components))
	}
}

func TestEstimateFairValue_ForwardPECapped(t *testing.T) {
	m := &types.Metrics{
		Symbol:      "CAP",
		Price:       100,
		TrailingEPS: fv(4),
		ForwardPE:   fv(35),
	}
	est := EstimateFairValue(m)
	// 35 * 1.2 = 42 caps at 30, so 4 * 30 = 120.
	if math.Abs(est.Value-120) > 0.01 {
		t.Errorf("expected capped forward model 120, got %.2f", est.Value)
	}
}

func TestEstimateFairValue_TrailingPEDirection(t *testing.T) {
	cheap := &types.Metrics{Symbol: "CHEAP", Price: 100, TrailingPE: fv(12)}
	if est := EstimateFairValue(cheap); math.Abs(est.Value-110) > 0.01 {
		t.Errorf("PE 12 should mark up 10%%, got %.2f", est.Value)
	}
	rich := &types.Metrics{Symbol: "RICH", Price: 100, TrailingPE: fv(40)}
	if est := EstimateFairValue(rich); math.Abs(est.Value-95) > 0.01 {
		t.Errorf("PE 40 should mark down 5%%, got %.2f", est.Value)
	}
}

func TestUpside(t *testing.T) {
	if got := Upside(130, 100); math.Abs(got-30) > 0.01 {
		t.Errorf("expected 30%% upside, got %.2f", got)
	}
	if got := Upside(80, 100); math.Abs(got+20) > 0.01 {
		t.Errorf("expected -20%% upside, got %.2f", got)
	}
	if got := Upside(130, 0); got != 0 {
		t.Errorf("zero price must give zero upside, got %.2f", got)
	}
}

func TestCalculateStickerPrice_Reference(t *testing.T) {
	m := &types.Metrics{
		Symbol:         "RULE1",
		TrailingEPS:    fv(5),
		EarningsGrowth: fv(0.20),
	}
	sp := CalculateStickerPrice(m, 50)
	if sp == nil {
		t.Fatal("expected sticker price, got nil")
	}
	if sp.GrowthRate != 20 {
		t.Errorf("growth rate reports in percent: expected 20, got %.1f", sp.GrowthRate)
	}
	if math.Abs(sp.FutureEPS-30.96) > 0.01 {
		t.Errorf("future EPS: expected ~30.96, got %.2f", sp.FutureEPS)
	}
	if sp.FuturePE != 40 {
		t.Errorf("future PE: expected 40, got %.2f", sp.FuturePE)
	}
	if math.Abs(sp.Sticker-306.1) > 0.5 {
		t.Errorf("sticker: expected ~306.1, got %.2f", sp.Sticker)
	}
	if math.Abs(sp.MOSPrice-153.05) > 0.25 {
		t.Errorf("MOS price: expected ~153.05, got %.2f", sp.MOSPrice)
	}
	if sp.Verdict != "ON SALE" {
		t.Errorf("expected ON SALE at price 50, got %q", sp.Verdict)
	}
}

func TestCalculateStickerPrice_GrowthCapped(t *testing.T) {
	m := &types.Metrics{
		Symbol:         "HOT",
		TrailingEPS:    fv(2),
		EarningsGrowth: fv(0.60),
	}
	sp := CalculateStickerPrice(m, 100)
	if sp == nil {
		t.Fatal("expected sticker price, got nil")
	}
	if math.Abs(sp.GrowthRate-30) > 0.001 {
		t.Errorf("growth should cap at 30%%, got %.1f", sp.GrowthRate)
	}
	if sp.FuturePE != 50 {
		t.Errorf("future PE should cap at 50, got %.2f", sp.FuturePE)
	}
}

func TestCalculateStickerPrice_NoEarnings(t *testing.T) {
	m := &types.Metrics{Symbol: "LOSS", TrailingEPS: fv(-1.5)}
	if sp := CalculateStickerPrice(m, 20); sp != nil {
		t.Errorf("negative EPS must not produce a sticker price, got %+v", sp)
	}
	if sp := CalculateStickerPrice(&types.Metrics{Symbol: "EMPTY"}, 20); sp != nil {
		t.Errorf("missing EPS must not produce a sticker price, got %+v", sp)
	}
}

func TestCalculateStickerPrice_GrowthFromForwardEPS(t *testing.T) {
	m := &types.Metrics{
		Symbol:      "FWD",
		TrailingEPS: fv(4),
		ForwardEPS:  fv(4.6),
	}
	sp := CalculateStickerPrice(m, 80)
	if sp == nil {
		t.Fatal("expected sticker price, got nil")
	}
	if math.Abs(sp.GrowthRate-15) > 0.001 {
		t.Errorf("expected implied growth 15%%, got %.1f", sp.GrowthRate)
	}
}

package services

import (
	"math/rand"
	"testing"
	"time"

	"stockanalyzer/types"
)

func sampleWatchlist() []types.WatchlistItem {
	now := time.Now()
	return []types.WatchlistItem{
		{Symbol: "AAPL", Sector: "Technology", Score: 72, PriceAtSave: 180, AddedAt: now},
		{Symbol: "MSFT", Sector: "Technology", Score: 80, PriceAtSave: 410, AddedAt: now},
		{Symbol: "JNJ", Sector: "Healthcare", Score: 55, PriceAtSave: 150, AddedAt: now},
	}
}

func TestBuildProfile(t *testing.T) {
	profile := BuildProfile(sampleWatchlist())
	if profile == nil {
		t.Fatal("expected profile, got nil")
	}
	if profile.Count != 3 {
		t.Errorf("expected count 3, got %d", profile.Count)
	}
	if profile.TopSectors[0] != "Technology" {
		t.Errorf("expected Technology as top sector, got %q", profile.TopSectors[0])
	}
	if got := profile.SectorWeights["Technology"]; got < 0.66 || got > 0.67 {
		t.Errorf("expected Technology weight ~2/3, got %.3f", got)
	}
	if profile.MinScore != 55 || profile.MaxScore != 80 {
		t.Errorf("score band: expected [55,80], got [%.0f,%.0f]", profile.MinScore, profile.MaxScore)
	}
	if !profile.SavedSymbols["AAPL"] {
		t.Errorf("saved symbols must include AAPL")
	}
}

func TestBuildProfile_Empty(t *testing.T) {
	if profile := BuildProfile(nil); profile != nil {
		t.Errorf("empty watchlist must give nil profile, got %+v", profile)
	}
}

func TestPickCandidates_QuotasAndExclusion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	svc := &recommendService{rng: rng, sectorQuota: 12, otherQuota: 8}
	profile := BuildProfile(sampleWatchlist())

	candidates := svc.pickCandidates(profile)
	if len(candidates) != 20 {
		t.Fatalf("expected 12+8 candidates, got %d", len(candidates))
	}

	sectorMatched := 0
	for _, c := range candidates {
		if profile.SavedSymbols[c.symbol] {
			t.Errorf("saved symbol %s must not be a candidate", c.symbol)
		}
		for _, ts := range profile.TopSectors {
			if sectorsMatch(ts, c.sector) {
				sectorMatched++
				break
			}
		}
	}
	if sectorMatched != 12 {
		t.Errorf("expected 12 sector-matched candidates, got %d", sectorMatched)
	}
}

func TestPickCandidates_DeterministicWithSeed(t *testing.T) {
	profile := BuildProfile(sampleWatchlist())
	first := (&recommendService{rng: rand.New(rand.NewSource(42)), sectorQuota: 12, otherQuota: 8}).pickCandidates(profile)
	second := (&recommendService{rng: rand.New(rand.NewSource(42)), sectorQuota: 12, otherQuota: 8}).pickCandidates(profile)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed diverged at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestAffinityScore_CapAndComponents(t *testing.T) {
	profile := BuildProfile(sampleWatchlist())

	// Perfect fit: top sector, mid-band quality, typical price.
	fit := affinityScore(profile, "Technology", 67, 240)
	if fit > 40 {
		t.Errorf("affinity must cap at 40, got %.1f", fit)
	}
	if fit <= 0 {
		t.Errorf("expected positive affinity for a close fit, got %.1f", fit)
	}

	// Far-off candidate still earns less than the close fit.
	far := affinityScore(profile, "Energy", 5, 5000)
	if far >= fit {
		t.Errorf("distant candidate (%.1f) should rank below close fit (%.1f)", far, fit)
	}
}

func TestQualityScore_StrongCandidate(t *testing.T) {
	m := &types.Metrics{
		Symbol:            "MOAT",
		Price:             100,
		NetIncome:         fv(20e9),
		BookValuePerShare: fv(25),
		SharesOutstanding: fv(4e9),
		Cash:              fv(50e9),
		Debt:              fv(30e9),
		ROE:               fv(0.30),
		RevenueGrowth:     fv(0.18),
		EarningsGrowth:    fv(0.20),
		FCF:               fv(15e9),
		TotalRevenue:      fv(80e9),
		TrailingEPS:       fv(6),
	}
	result := qualityScore(m, 100)

	// ROIC = 20e9 / (100e9 + 30e9 - 50e9) = 25%.
	if result.roic == nil || *result.roic != 25 {
		t.Fatalf("expected ROIC 25, got %v", result.roic)
	}
	if !result.hasMoat {
		t.Errorf("ROIC 25 and ROE 30 must register a moat")
	}
	// 20 (ROIC) + 15 (ROE) + 15 (revenue) + 15 (EPS) + 10 (FCF, 18.75%
	// margin) + 20 (price below MOS) + 5 (fortress) = 100.
	if result.score != 100 {
		t.Errorf("expected quality score 100, got %d", result.score)
	}
}

func TestQualityScore_NoData(t *testing.T) {
	result := qualityScore(&types.Metrics{Symbol: "EMPTY", Price: 10}, 10)
	if result.score != 0 {
		t.Errorf("expected 0 for empty metrics, got %d", result.score)
	}
	if result.hasMoat {
		t.Errorf("empty metrics cannot have a moat")
	}
}

func TestSectorsMatch(t *testing.T) {
	if !sectorsMatch("Technology", "technology") {
		t.Errorf("case-insensitive match failed")
	}
	if !sectorsMatch("Consumer", "Consumer Cyclical") {
		t.Errorf("substring match failed")
	}
	if sectorsMatch("Energy", "Healthcare") {
		t.Errorf("unrelated sectors must not match")
	}
	if sectorsMatch("", "Technology") {
		t.Errorf("empty sector must not match")
	}
}

package services

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"

	"go.uber.org/zap"
)

// discoverPools spread picks across market segments so the discover feed
// never shows three tickers from the same corner of the market.
var discoverPools = map[string][]string{
	"large_cap_tech":   {"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "TSLA", "AVGO", "ORCL", "CRM", "ADBE", "AMD", "INTC", "CSCO", "QCOM", "TXN", "IBM", "NOW", "UBER", "SHOP"},
	"finance":          {"JPM", "V", "MA", "BAC", "WFC", "GS", "MS", "SCHW", "BLK", "AXP", "C", "USB", "PNC", "COF", "PYPL", "SQ", "COIN", "HOOD", "SOFI", "ALLY"},
	"healthcare":       {"UNH", "JNJ", "LLY", "PFE", "ABBV", "MRK", "TMO", "ABT", "DHR", "BMY", "AMGN", "GILD", "MRNA", "REGN", "ISRG", "DXCM", "VEEV", "ZBH", "HCA", "CVS"},
	"consumer":         {"WMT", "COST", "HD", "MCD", "SBUX", "NKE", "TGT", "LOW", "TJX", "LULU", "CMG", "DPZ", "YUM", "ROST", "DG", "DLTR", "KR", "EL", "DECK", "CROX"},
	"energy_materials": {"XOM", "CVX", "COP", "SLB", "EOG", "PSX", "VLO", "OXY", "LIN", "APD", "ECL", "NEM", "FCX", "FSLR", "ENPH", "NEE", "DUK", "SO", "D", "AEP"},
	"industrial":       {"CAT", "DE", "HON", "GE", "RTX", "LMT", "BA", "UPS", "FDX", "UNP", "WM", "ETN", "ITW", "EMR", "GD", "NOC", "MMM", "JCI", "ROK", "FAST"},
	"media_telecom":    {"DIS", "NFLX", "CMCSA", "T", "VZ", "TMUS", "SPOT", "ROKU", "WBD", "PARA", "LYV", "RBLX", "EA", "TTWO", "MTCH", "SNAP", "PINS", "ZM", "DKNG", "CHTR"},
	"small_mid_cap":    {"PLTR", "SNOW", "CRWD", "DDOG", "NET", "ZS", "MDB", "HUBS", "BILL", "PCTY", "PAYC", "FIVE", "TOST", "CAVA", "BROS", "SHAK", "WING", "DUOL", "MNDY", "GTLB"},
	"reits_dividend":   {"O", "AMT", "PLD", "SPG", "EQIX", "PSA", "DLR", "VICI", "WELL", "AVB", "KO", "PEP", "PG", "CL", "CLX", "GIS", "K", "SJM", "MO", "PM"},
	"international":    {"TSM", "BABA", "NVO", "ASML", "TM", "SONY", "SAP", "MELI", "SE", "NU", "GLOB", "WIX", "GRAB", "CPNG", "JD", "PDD", "BIDU", "NIO", "LI", "XPEV"},
}

type DiscoverServiceI interface {
	Discover(ctx context.Context) []types.DiscoverPick
}

type discoverService struct {
	client *http_client.Client

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDiscoverService takes its randomness as a parameter so tests can seed
// it deterministically.
func NewDiscoverService(client *http_client.Client, rng *rand.Rand) DiscoverServiceI {
	return &discoverService{client: client, rng: rng}
}

// Discover picks one stock from each of three random pools and quick-scores
// them. A pick with no data is dropped, not retried.
func (ds *discoverService) Discover(ctx context.Context) []types.DiscoverPick {
	pools := make([]string, 0, len(discoverPools))
	for name := range discoverPools {
		pools = append(pools, name)
	}
	sort.Strings(pools)

	// rand.Rand is not safe for concurrent handlers.
	ds.mu.Lock()
	ds.rng.Shuffle(len(pools), func(i, j int) { pools[i], pools[j] = pools[j], pools[i] })
	if len(pools) > 3 {
		pools = pools[:3]
	}
	picked := make(map[string]string, len(pools))
	for _, pool := range pools {
		candidates := discoverPools[pool]
		picked[pool] = candidates[ds.rng.Intn(len(candidates))]
	}
	ds.mu.Unlock()

	picks := []types.DiscoverPick{}
	for _, pool := range pools {
		symbol := picked[pool]

		m, err := ds.client.QuoteSummary(ctx, symbol)
		if err != nil || m.Price == 0 {
			zap.L().Error("Error scanning discover pick", zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		score, upside := quickScore(m)
		sector := m.Sector
		if sector == "" {
			sector = poolLabel(pool)
		}

		picks = append(picks, types.DiscoverPick{
			Symbol:        m.Symbol,
			Name:          m.Name,
			Price:         helpers.Round2(m.Price),
			Score:         score,
			Upside:        helpers.Round1(upside),
			Sector:        sector,
			Industry:      m.Industry,
			MarketCap:     m.MarketCap,
			PERatio:       m.TrailingPE,
			ROA:           helpers.NormalizePercent(m.ROA, helpers.PreserveNull),
			ROE:           helpers.NormalizePercent(m.ROE, helpers.PreserveNull),
			DividendYield: helpers.NormalizePercent(m.DividendYield, helpers.PreserveNull),
		})
	}
	return picks
}

func poolLabel(pool string) string {
	words := strings.Split(pool, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// quickScore is the checklist rubric without the full fair-value model:
// upside comes straight from the analyst target when there is one.
func quickScore(m *types.Metrics) (int, float64) {
	score := 0

	roa := helpers.Pct(m.ROA)
	if roa > 10 {
		score += 15
	} else if roa > 5 {
		score += 7
	}

	roe := helpers.Pct(m.ROE)
	if roe > 10 {
		score += 15
	} else if roe > 5 {
		score += 7
	}

	cash := helpers.Deref(m.Cash)
	debt := helpers.Deref(m.Debt)
	if cash > 0 && cash >= debt {
		score += 15
	}
	if helpers.Deref(m.FCF) > 0 {
		score += 15
	}

	margin := helpers.Pct(m.ProfitMargin)
	if margin > 15 {
		score += 10
	} else if margin > 5 {
		score += 5
	}

	ps := helpers.Deref(m.PSRatio)
	if ps > 0 && ps < 2 {
		score += 10
	}

	upside := 0.0
	target := helpers.Deref(m.TargetMeanPrice)
	if target > 0 && m.Price > 0 {
		upside = (target - m.Price) / m.Price * 100
		if upside > 30 {
			score += 20
		} else if upside > 10 {
			score += 10
		} else if upside > 0 {
			score += 5
		}
	}

	if score > 100 {
		score = 100
	}
	return score, upside
}

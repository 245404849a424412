package services

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"

	"go.uber.org/zap"
)

// recommendPools is the candidate universe, keyed by real sector names so
// watchlist sectors can be matched by substring.
var recommendPools = map[string][]string{
	"Technology":         {"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA", "META", "AVGO", "ORCL", "CRM", "ADBE", "AMD", "CSCO", "QCOM", "TXN", "NOW", "UBER", "SHOP", "CRWD", "DDOG", "NET", "HUBS", "INTU", "SNPS", "CDNS", "KLAC", "LRCX", "AMAT", "MRVL", "PANW", "FTNT"},
	"Financial Services": {"JPM", "V", "MA", "BAC", "GS", "MS", "SCHW", "BLK", "AXP", "PNC", "COF", "PYPL", "MCO", "SPGI", "ICE", "CME", "MSCI", "FIS", "AJG", "MMC"},
	"Healthcare":         {"UNH", "JNJ", "LLY", "ABBV", "MRK", "TMO", "ABT", "DHR", "AMGN", "REGN", "ISRG", "DXCM", "VEEV", "HCA", "SYK", "EW", "IDXX", "WST", "ZTS", "A"},
	"Consumer Cyclical":  {"HD", "MCD", "SBUX", "NKE", "TJX", "LULU", "CMG", "ROST", "ORLY", "AZO", "TSCO", "POOL", "DECK", "BKNG", "LOW", "DPZ", "YUM", "CPRT", "ULTA", "RH"},
	"Consumer Defensive": {"COST", "WMT", "PG", "KO", "PEP", "CL", "MNST", "SJM", "HSY", "CHD", "CLX", "KMB", "GIS", "K", "MDLZ", "EL", "STZ", "BF-B", "KR", "WBA"},
	"Industrials":        {"CAT", "DE", "HON", "GE", "RTX", "UNP", "WM", "ETN", "ITW", "EMR", "ROK", "FAST", "SHW", "ECL", "CTAS", "ODFL", "VRSK", "GWW", "ROP", "TT"},
	"Communication":      {"DIS", "NFLX", "CMCSA", "TMUS", "EA", "TTWO", "GOOGL", "META", "SPOT", "LYV", "RBLX", "CHTR", "OMC", "IPG", "WPP", "ZM", "MTCH", "DKNG", "PARA", "WBD"},
	"Real Estate":        {"AMT", "PLD", "CCI", "EQIX", "PSA", "DLR", "O", "WELL", "SPG", "VICI"},
	"Energy":             {"XOM", "CVX", "COP", "SLB", "EOG", "LIN", "APD", "FSLR", "NEE", "OKE"},
}

type candidate struct {
	symbol string
	sector string
}

// allCandidates flattens the pools in deterministic sector order so the
// only randomness in candidate selection comes from the injected rand.
var allCandidates = func() []candidate {
	sectors := make([]string, 0, len(recommendPools))
	for s := range recommendPools {
		sectors = append(sectors, s)
	}
	sort.Strings(sectors)

	out := []candidate{}
	for _, s := range sectors {
		for _, t := range recommendPools[s] {
			out = append(out, candidate{symbol: t, sector: s})
		}
	}
	return out
}()

// minQualityScore filters out candidates with no quality merit before
// affinity ranking even sees them.
const minQualityScore = 25

type RecommendServiceI interface {
	Recommend(ctx context.Context, watchlist []types.WatchlistItem) ([]types.RecommendationPick, *types.WatchlistProfile, int)
}

type recommendService struct {
	client      *http_client.Client
	sectorQuota int
	otherQuota  int

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRecommendService(client *http_client.Client, rng *rand.Rand) RecommendServiceI {
	return &recommendService{client: client, rng: rng, sectorQuota: 12, otherQuota: 8}
}

// BuildProfile condenses a watchlist into the preference profile used for
// affinity scoring: sector weights, score band and price tier.
func BuildProfile(watchlist []types.WatchlistItem) *types.WatchlistProfile {
	if len(watchlist) == 0 {
		return nil
	}

	sectors := map[string]int{}
	scores := []float64{}
	prices := []float64{}
	saved := map[string]bool{}

	for _, item := range watchlist {
		if item.Sector != "" {
			sectors[item.Sector]++
		}
		if item.Score != 0 {
			scores = append(scores, float64(item.Score))
		}
		if item.PriceAtSave > 0 {
			prices = append(prices, item.PriceAtSave)
		}
		saved[item.Symbol] = true
	}

	profile := &types.WatchlistProfile{
		Sectors:      sectors,
		Count:        len(watchlist),
		SavedSymbols: saved,
		AvgScore:     50,
		MaxScore:     100,
		AvgPrice:     200,
		MaxPrice:     1000,
	}

	if len(scores) > 0 {
		sum, lo, hi := 0.0, scores[0], scores[0]
		for _, s := range scores {
			sum += s
			lo = math.Min(lo, s)
			hi = math.Max(hi, s)
		}
		profile.AvgScore = sum / float64(len(scores))
		profile.MinScore = lo
		profile.MaxScore = hi
	}
	if len(prices) > 0 {
		sum, lo, hi := 0.0, prices[0], prices[0]
		for _, p := range prices {
			sum += p
			lo = math.Min(lo, p)
			hi = math.Max(hi, p)
		}
		profile.AvgPrice = sum / float64(len(prices))
		profile.MinPrice = lo
		profile.MaxPrice = hi
	}

	total := 0
	for _, c := range sectors {
		total += c
	}
	profile.SectorWeights = map[string]float64{}
	if total > 0 {
		for s, c := range sectors {
			profile.SectorWeights[s] = float64(c) / float64(total)
		}
	}

	type sectorCount struct {
		name  string
		count int
	}
	ranked := make([]sectorCount, 0, len(sectors))
	for s, c := range sectors {
		ranked = append(ranked, sectorCount{s, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	for i, sc := range ranked {
		if i == 3 {
			break
		}
		profile.TopSectors = append(profile.TopSectors, sc.name)
	}

	return profile
}

func sectorsMatch(a, b string) bool {
	a, b = helpers.NormalizeString(a), helpers.NormalizeString(b)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// pickCandidates favors the user's top sectors but keeps a slice of the
// rest of the market in the mix. Already-saved symbols are excluded.
func (rs *recommendService) pickCandidates(profile *types.WatchlistProfile) []candidate {
	sectorMatches := []candidate{}
	others := []candidate{}

	for _, c := range allCandidates {
		if profile.SavedSymbols[c.symbol] {
			continue
		}
		matched := false
		for _, ts := range profile.TopSectors {
			if sectorsMatch(ts, c.sector) {
				matched = true
				break
			}
		}
		if matched {
			sectorMatches = append(sectorMatches, c)
		} else {
			others = append(others, c)
		}
	}

	// rand.Rand is not safe for concurrent handlers.
	rs.mu.Lock()
	rs.rng.Shuffle(len(sectorMatches), func(i, j int) {
		sectorMatches[i], sectorMatches[j] = sectorMatches[j], sectorMatches[i]
	})
	rs.rng.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})
	rs.mu.Unlock()

	if len(sectorMatches) > rs.sectorQuota {
		sectorMatches = sectorMatches[:rs.sectorQuota]
	}
	if len(others) > rs.otherQuota {
		others = others[:rs.otherQuota]
	}
	return append(sectorMatches, others...)
}

type qualityResult struct {
	score         int
	roic          *float64
	roe           *float64
	revenueGrowth *float64
	epsGrowth     *float64
	hasMoat       bool
	sticker       *types.StickerPrice
}

// calculateROIC derives return on invested capital from net income over
// equity plus debt minus cash. Nil when the inputs don't exist or the
// denominator is non-positive.
func calculateROIC(m *types.Metrics) *float64 {
	netIncome := helpers.Deref(m.NetIncome)
	if netIncome == 0 {
		return nil
	}
	equity := helpers.Deref(m.BookValuePerShare) * helpers.Deref(m.SharesOutstanding)
	invested := equity + helpers.Deref(m.Debt) - helpers.Deref(m.Cash)
	if invested <= 0 {
		return nil
	}
	roic := netIncome / invested * 100
	return &roic
}

// qualityScore rates a candidate 0-100 on Rule #1 principles: return on
// invested capital, moat, growth, free cash flow, margin of safety and a
// low-debt balance sheet.
func qualityScore(m *types.Metrics, price float64) qualityResult {
	var result qualityResult
	score := 0

	roic := calculateROIC(m)
	result.roic = roic
	if roic != nil {
		switch {
		case *roic >= 15:
			score += 20
		case *roic >= 10:
			score += 14
		case *roic >= 5:
			score += 6
		}
	}

	roe := helpers.NormalizePercent(m.ROE, helpers.PreserveNull)
	result.roe = roe
	if roe != nil {
		switch {
		case *roe >= 20:
			score += 15
		case *roe >= 15:
			score += 12
		case *roe >= 10:
			score += 6
		}
	}

	rg := helpers.NormalizePercent(m.RevenueGrowth, helpers.PreserveNull)
	result.revenueGrowth = rg
	if rg != nil {
		switch {
		case *rg >= 15:
			score += 15
		case *rg >= 10:
			score += 12
		case *rg >= 5:
			score += 6
		}
	}

	eg := helpers.NormalizePercent(m.EarningsGrowth, helpers.PreserveNull)
	result.epsGrowth = eg
	if eg != nil {
		switch {
		case *eg >= 15:
			score += 15
		case *eg >= 10:
			score += 12
		case *eg >= 5:
			score += 6
		}
	}

	fcf := helpers.Deref(m.FCF)
	revenue := helpers.Deref(m.TotalRevenue)
	if fcf > 0 {
		score += 5
		if revenue > 0 {
			fcfMargin := fcf / revenue * 100
			if fcfMargin >= 15 {
				score += 5
			} else if fcfMargin >= 10 {
				score += 3
			}
		}
	}

	sticker := CalculateStickerPrice(m, price)
	result.sticker = sticker
	if sticker != nil {
		switch {
		case price <= sticker.MOSPrice:
			score += 20
		case price <= sticker.Sticker*0.75:
			score += 14
		case price <= sticker.Sticker:
			score += 7
		}
	}

	cash := helpers.Deref(m.Cash)
	debt := helpers.Deref(m.Debt)
	if cash > 0 && (debt == 0 || cash >= debt*0.5) {
		score += 5
	}

	if score > 100 {
		score = 100
	}
	result.score = score
	result.hasMoat = roic != nil && *roic >= 10 && roe != nil && *roe >= 15
	return result
}

// affinityScore measures how well a candidate fits the watchlist profile,
// capped at 40: sector weight (15), score band closeness (10), price tier
// (10) and a small diversification nudge (5).
func affinityScore(profile *types.WatchlistProfile, sector string, quality int, price float64) float64 {
	affinity := 0.0

	bestMatch := 0.0
	for userSector, weight := range profile.SectorWeights {
		if sectorsMatch(userSector, sector) {
			bestMatch = math.Max(bestMatch, weight)
		}
	}
	affinity += bestMatch * 15

	scoreMid := (profile.MinScore + profile.MaxScore) / 2
	scoreRange := math.Max(profile.MaxScore-profile.MinScore, 20)
	scoreDist := math.Abs(float64(quality) - scoreMid)
	if scoreDist <= scoreRange/2 {
		affinity += 10
	} else if scoreDist <= scoreRange {
		affinity += 5
	}

	priceRange := math.Max(profile.MaxPrice-profile.MinPrice, 50)
	priceDist := math.Abs(price - profile.AvgPrice)
	switch {
	case priceDist <= priceRange*0.5:
		affinity += 10
	case priceDist <= priceRange:
		affinity += 5
	case priceDist <= priceRange*2:
		affinity += 2
	}

	if _, known := profile.Sectors[sector]; !known && len(profile.Sectors) < 3 {
		affinity += 5
	}

	return math.Min(affinity, 40)
}

// Recommend picks the top personalized suggestions: quality weighs 60%,
// watchlist affinity 40%. The second return is the profile the ranking was
// based on, the third how many candidates were analyzed.
func (rs *recommendService) Recommend(ctx context.Context, watchlist []types.WatchlistItem) ([]types.RecommendationPick, *types.WatchlistProfile, int) {
	profile := BuildProfile(watchlist)
	if profile == nil {
		return nil, nil, 0
	}
	candidates := rs.pickCandidates(profile)

	type rankedPick struct {
		pick   types.RecommendationPick
		final  int
		upside float64
	}
	ranked := []rankedPick{}

	for _, c := range candidates {
		m, err := rs.client.QuoteSummary(ctx, c.symbol)
		if err != nil || m.Price == 0 {
			zap.L().Error("Recommend candidate failed", zap.String("symbol", c.symbol), zap.Error(err))
			continue
		}

		quality := qualityScore(m, m.Price)
		if quality.score < minQualityScore {
			continue
		}

		sector := m.Sector
		if sector == "" {
			sector = c.sector
		}

		affinity := affinityScore(profile, sector, quality.score, m.Price)
		final := int(float64(quality.score)*0.6 + affinity*0.4)

		upside := 0.0
		var mosPrice *float64
		if quality.sticker != nil {
			upside = Upside(quality.sticker.Sticker, m.Price)
			mosPrice = helpers.Float(quality.sticker.MOSPrice)
		}

		ranked = append(ranked, rankedPick{
			pick: types.RecommendationPick{
				Symbol:        m.Symbol,
				Name:          m.Name,
				Sector:        sector,
				Price:         helpers.Round2(m.Price),
				Score:         quality.score,
				Upside:        helpers.Round1(upside),
				ROIC:          quality.roic,
				ROE:           quality.roe,
				RevenueGrowth: quality.revenueGrowth,
				EPSGrowth:     quality.epsGrowth,
				HasMoat:       quality.hasMoat,
				MOSPrice:      mosPrice,
				MarketCap:     m.MarketCap,
			},
			final:  final,
			upside: upside,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].final != ranked[j].final {
			return ranked[i].final > ranked[j].final
		}
		if ranked[i].pick.Score != ranked[j].pick.Score {
			return ranked[i].pick.Score > ranked[j].pick.Score
		}
		return ranked[i].upside > ranked[j].upside
	})

	picks := []types.RecommendationPick{}
	for i, r := range ranked {
		if i == 6 {
			break
		}
		picks = append(picks, r.pick)
	}
	return picks, profile, len(candidates)
}

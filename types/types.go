package types

import "time"

// Metrics is the raw per-ticker field set gathered from whichever provider
// responded. Pointer fields distinguish "not reported" from a real zero;
// ratio-like fields keep whatever scale the provider used until they pass
// through helpers.NormalizePercent.
type Metrics struct {
	Symbol   string
	Name     string
	Sector   string
	Industry string

	Price         float64
	ChangePercent float64
	MarketCap     float64
	Volume        float64
	Week52High    float64
	Week52Low     float64

	ROA           *float64
	ROE           *float64
	ProfitMargin  *float64
	GrossMargin   *float64
	Cash          *float64
	Debt          *float64
	FCF           *float64
	TotalRevenue  *float64
	NetIncome     *float64
	DividendYield *float64

	PSRatio           *float64
	PBRatio           *float64
	TrailingPE        *float64
	ForwardPE         *float64
	TrailingEPS       *float64
	ForwardEPS        *float64
	BookValuePerShare *float64
	SharesOutstanding *float64

	TargetMeanPrice *float64
	EarningsGrowth  *float64
	RevenueGrowth   *float64
}

type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckWarn CheckStatus = "warn"
	CheckFail CheckStatus = "fail"
)

// Check is one scored criterion in the investment checklist.
type Check struct {
	Status    CheckStatus `json:"status"`
	Text      string      `json:"text"`
	Points    int         `json:"points"`
	MaxPoints int         `json:"max_points"`
}

type ScoreResult struct {
	Score  int     `json:"score"`
	Checks []Check `json:"checklist"`
}

type FairValueComponent struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type FairValueEstimate struct {
	Value      float64              `json:"value"`
	Components []FairValueComponent `json:"components"`
}

// StickerPrice is the Rule #1 ten-year projection. GrowthRate is a percent
// already capped at 30.
type StickerPrice struct {
	EPS         float64 `json:"eps"`
	GrowthRate  float64 `json:"growth_rate"`
	FutureEPS   float64 `json:"future_eps"`
	FuturePE    float64 `json:"future_pe"`
	FuturePrice float64 `json:"future_price"`
	Sticker     float64 `json:"sticker_price"`
	MOSPrice    float64 `json:"mos_price"`
	Verdict     string  `json:"verdict"`
}

type Recommendation struct {
	Signal string `json:"signal"`
	Color  string `json:"color"`
	Reason string `json:"reason"`
}

// Quote is the display slice of a ticker's data.
type Quote struct {
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change,omitempty"`
	ChangePercent float64 `json:"change_percent"`
	Volume        float64 `json:"volume,omitempty"`
	MarketCap     float64 `json:"market_cap"`
	Week52High    float64 `json:"week_52_high"`
	Week52Low     float64 `json:"week_52_low"`
	Sector        string  `json:"sector,omitempty"`
	Industry      string  `json:"industry,omitempty"`
	Source        string  `json:"source,omitempty"`
}

// Fundamentals mirrors Metrics for rendering. Nil marshals to null so the
// UI can show N/A instead of a fake zero.
type Fundamentals struct {
	PERatio      *float64 `json:"pe_ratio"`
	PSRatio      *float64 `json:"ps_ratio"`
	PBRatio      *float64 `json:"pb_ratio"`
	EPS          *float64 `json:"eps"`
	ROA          *float64 `json:"roa"`
	ROE          *float64 `json:"roe"`
	ProfitMargin *float64 `json:"profit_margin"`
	GrossMargin  *float64 `json:"gross_margin"`
	Cash         *float64 `json:"cash"`
	Debt         *float64 `json:"debt"`
	FCF          *float64 `json:"fcf"`
}

type Analysis struct {
	Symbol              string               `json:"symbol"`
	Timestamp           time.Time            `json:"timestamp"`
	Quote               Quote                `json:"quote"`
	Fundamentals        Fundamentals         `json:"fundamentals"`
	FairValue           float64              `json:"fair_value"`
	FairValueComponents []FairValueComponent `json:"fair_value_components"`
	UpsidePercent       float64              `json:"upside_percent"`
	InvestmentScore     int                  `json:"investment_score"`
	Checklist           []Check              `json:"checklist"`
	StickerPrice        *StickerPrice        `json:"sticker_price,omitempty"`
	Recommendation      Recommendation       `json:"recommendation"`
	Source              string               `json:"source"`
}

// ScanResult is one row of a batch scan, sorted by score then upside.
type ScanResult struct {
	Symbol         string         `json:"symbol"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Score          int            `json:"score"`
	Upside         float64        `json:"upside"`
	Recommendation Recommendation `json:"recommendation"`
	ROA            *float64       `json:"roa"`
	ROE            *float64       `json:"roe"`
}

type WatchlistItem struct {
	Symbol      string    `bson:"symbol" json:"symbol"`
	Name        string    `bson:"name" json:"name"`
	Sector      string    `bson:"sector" json:"sector"`
	Industry    string    `bson:"industry" json:"industry"`
	Score       int       `bson:"score" json:"score"`
	PriceAtSave float64   `bson:"price_at_save" json:"price_at_save"`
	AddedAt     time.Time `bson:"added_at" json:"added_at"`
}

// WatchlistProfile is rebuilt from the saved items on every recommendation
// request, never persisted.
type WatchlistProfile struct {
	Sectors       map[string]int
	SectorWeights map[string]float64
	TopSectors    []string
	AvgScore      float64
	MinScore      float64
	MaxScore      float64
	AvgPrice      float64
	MinPrice      float64
	MaxPrice      float64
	Count         int
	SavedSymbols  map[string]bool
}

type SearchResult struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Type     string `json:"type"`
}

type PerformanceResult struct {
	Symbol       string              `json:"symbol"`
	CurrentPrice float64             `json:"current_price"`
	Timeframes   map[string]*float64 `json:"timeframes"`
	Week52High   float64             `json:"week_52_high"`
	Week52Low    float64             `json:"week_52_low"`
	OffHighPct   float64             `json:"off_high_pct"`
}

// DiscoverPick is one randomly-surfaced ticker with a quick score.
type DiscoverPick struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Score         int      `json:"score"`
	Upside        float64  `json:"upside"`
	Sector        string   `json:"sector"`
	Industry      string   `json:"industry"`
	MarketCap     float64  `json:"market_cap"`
	PERatio       *float64 `json:"pe_ratio"`
	ROA           *float64 `json:"roa"`
	ROE           *float64 `json:"roe"`
	DividendYield *float64 `json:"dividend_yield"`
}

// RecommendationPick is one personalized suggestion ranked by quality and
// watchlist affinity.
type RecommendationPick struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Sector        string   `json:"sector"`
	Price         float64  `json:"price"`
	Score         int      `json:"score"`
	Upside        float64  `json:"upside"`
	ROIC          *float64 `json:"roic"`
	ROE           *float64 `json:"roe"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	EPSGrowth     *float64 `json:"eps_growth"`
	HasMoat       bool     `json:"has_moat"`
	MOSPrice      *float64 `json:"mos_price"`
	MarketCap     float64  `json:"market_cap"`
}

// AnalyzerEvent is the payload published to Kafka/RabbitMQ after a scan
// or analysis completes.
type AnalyzerEvent struct {
	Symbol    string    `json:"symbol"`
	Score     int       `json:"score"`
	Upside    float64   `json:"upside"`
	Signal    string    `json:"signal"`
	Timestamp time.Time `json:"timestamp"`
}

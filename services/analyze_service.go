package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"

	"go.uber.org/zap"
)

// ErrNoPrice means no provider returned a usable price for the symbol.
// Handlers turn it into the "Could not find data" response.
var ErrNoPrice = errors.New("no price data available")

type AnalyzeServiceI interface {
	FetchMetrics(ctx context.Context, symbol string) (*types.Metrics, string, error)
	Analyze(ctx context.Context, symbol string, profile ScorerProfile) (*types.Analysis, error)
}

type analyzeService struct {
	client *http_client.Client
}

func NewAnalyzeService(client *http_client.Client) AnalyzeServiceI {
	return &analyzeService{client: client}
}

// FetchMetrics tries the structured quoteSummary API first and falls back
// to scraping the Yahoo pages. The second return value names the source
// that produced a usable price.
func (as *analyzeService) FetchMetrics(ctx context.Context, symbol string) (*types.Metrics, string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	m, err := as.client.QuoteSummary(ctx, symbol)
	if err == nil && m.Price > 0 {
		return m, "Yahoo Finance", nil
	}
	if err != nil {
		zap.L().Warn("Quote summary failed, falling back to scraper",
			zap.String("symbol", symbol), zap.Error(err))
	}

	m = as.client.ScrapeYahoo(ctx, symbol)
	if m.Price > 0 {
		return m, "Yahoo Finance (scraped)", nil
	}
	return nil, "", ErrNoPrice
}

// Analyze runs the full pipeline for one ticker: fetch, fair value,
// checklist score, Rule #1 sticker price and the final signal.
func (as *analyzeService) Analyze(ctx context.Context, symbol string, profile ScorerProfile) (*types.Analysis, error) {
	m, source, err := as.FetchMetrics(ctx, symbol)
	if err != nil {
		return nil, err
	}

	fairValue := EstimateFairValue(m)
	scored := Score(m, fairValue.Value, profile)
	upside := Upside(fairValue.Value, m.Price)
	recommendation := GetRecommendation(scored.Score, upside)
	sticker := CalculateStickerPrice(m, m.Price)

	analysis := &types.Analysis{
		Symbol:    m.Symbol,
		Timestamp: time.Now().UTC(),
		Quote: types.Quote{
			Name:          m.Name,
			Price:         helpers.Round2(m.Price),
			ChangePercent: helpers.Round2(m.ChangePercent),
			MarketCap:     m.MarketCap,
			Volume:        m.Volume,
			Week52High:    m.Week52High,
			Week52Low:     m.Week52Low,
			Sector:        m.Sector,
			Industry:      m.Industry,
			Source:        source,
		},
		Fundamentals:        buildFundamentals(m),
		FairValue:           helpers.Round2(fairValue.Value),
		FairValueComponents: fairValue.Components,
		UpsidePercent:       helpers.Round1(upside),
		InvestmentScore:     scored.Score,
		Checklist:           scored.Checks,
		StickerPrice:        sticker,
		Recommendation:      recommendation,
		Source:              source,
	}
	return analysis, nil
}

// buildFundamentals renders the metric block for the UI. Ratio-like
// fields are normalized to percent display scale, preserving nil so
// missing data shows as N/A rather than 0.
func buildFundamentals(m *types.Metrics) types.Fundamentals {
	return types.Fundamentals{
		PERatio:      m.TrailingPE,
		PSRatio:      m.PSRatio,
		PBRatio:      m.PBRatio,
		EPS:          m.TrailingEPS,
		ROA:          helpers.NormalizePercent(m.ROA, helpers.PreserveNull),
		ROE:          helpers.NormalizePercent(m.ROE, helpers.PreserveNull),
		ProfitMargin: helpers.NormalizePercent(m.ProfitMargin, helpers.PreserveNull),
		GrossMargin:  helpers.NormalizePercent(m.GrossMargin, helpers.PreserveNull),
		Cash:         m.Cash,
		Debt:         m.Debt,
		FCF:          m.FCF,
	}
}

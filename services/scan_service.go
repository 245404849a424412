package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"

	"go.uber.org/zap"
)

// maxScanSymbols caps one batch so a single request cannot fan out into
// hundreds of upstream fetches.
const maxScanSymbols = 30

// EventPublisher is anything that can receive an analyzer event. Both the
// Kafka producer and the RabbitMQ publisher satisfy it.
type EventPublisher interface {
	SendMessage(event types.AnalyzerEvent)
}

type ScanServiceI interface {
	Scan(ctx context.Context, symbols []string, profile ScorerProfile) []types.ScanResult
}

type scanService struct {
	analyzer   AnalyzeServiceI
	publishers []EventPublisher
}

func NewScanService(analyzer AnalyzeServiceI, publishers ...EventPublisher) ScanServiceI {
	return &scanService{analyzer: analyzer, publishers: publishers}
}

// Scan analyzes a batch of tickers and ranks them by score, then upside.
// One symbol failing is logged and skipped; the rest of the batch still
// returns.
func (ss *scanService) Scan(ctx context.Context, symbols []string, profile ScorerProfile) []types.ScanResult {
	if len(symbols) > maxScanSymbols {
		symbols = symbols[:maxScanSymbols]
	}

	results := []types.ScanResult{}
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}

		analysis, err := ss.analyzer.Analyze(ctx, symbol, profile)
		if err != nil {
			zap.L().Error("Error scanning symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		results = append(results, types.ScanResult{
			Symbol:         analysis.Symbol,
			Name:           analysis.Quote.Name,
			Price:          analysis.Quote.Price,
			Score:          analysis.InvestmentScore,
			Upside:         analysis.UpsidePercent,
			Recommendation: analysis.Recommendation,
			ROA:            analysis.Fundamentals.ROA,
			ROE:            analysis.Fundamentals.ROE,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Upside > results[j].Upside
	})

	now := time.Now().UTC()
	for _, r := range results {
		event := types.AnalyzerEvent{
			Symbol:    r.Symbol,
			Score:     r.Score,
			Upside:    helpers.Round1(r.Upside),
			Signal:    r.Recommendation.Signal,
			Timestamp: now,
		}
		for _, p := range ss.publishers {
			p.SendMessage(event)
		}
	}

	return results
}

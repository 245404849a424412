package services

import (
	"context"
	"strings"
	"time"

	mongo_client "stockanalyzer/clients/mongo"
	"stockanalyzer/types"

	"go.uber.org/zap"
)

type WatchlistServiceI interface {
	List(ctx context.Context) ([]types.WatchlistItem, error)
	Add(ctx context.Context, item types.WatchlistItem) error
	Remove(ctx context.Context, symbol string) (int64, error)
	RefreshScores(ctx context.Context)
}

type watchlistService struct {
	store    *mongo_client.WatchlistStore
	analyzer AnalyzeServiceI
}

func NewWatchlistService(store *mongo_client.WatchlistStore, analyzer AnalyzeServiceI) WatchlistServiceI {
	return &watchlistService{store: store, analyzer: analyzer}
}

func (ws *watchlistService) List(ctx context.Context) ([]types.WatchlistItem, error) {
	return ws.store.List(ctx)
}

func (ws *watchlistService) Add(ctx context.Context, item types.WatchlistItem) error {
	item.Symbol = strings.ToUpper(strings.TrimSpace(item.Symbol))
	if item.Name == "" {
		item.Name = item.Symbol
	}
	item.AddedAt = time.Now().UTC()
	return ws.store.Add(ctx, item)
}

func (ws *watchlistService) Remove(ctx context.Context, symbol string) (int64, error) {
	return ws.store.Remove(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

// RefreshScores walks the saved watchlist and re-scores every symbol so
// stored scores drift with the market instead of freezing at save time.
// Runs from the background ticker in main.
func (ws *watchlistService) RefreshScores(ctx context.Context) {
	items, err := ws.store.List(ctx)
	if err != nil {
		zap.L().Error("Error while fetching watchlist for refresh", zap.Error(err))
		return
	}

	for _, item := range items {
		analysis, err := ws.analyzer.Analyze(ctx, item.Symbol, ProfileStandard)
		if err != nil {
			zap.L().Error("Error re-scoring watchlist symbol", zap.String("symbol", item.Symbol), zap.Error(err))
			continue
		}
		if analysis.InvestmentScore == item.Score {
			continue
		}
		if err := ws.store.UpdateScore(ctx, item.Symbol, analysis.InvestmentScore); err != nil {
			zap.L().Error("Error while updating watchlist score", zap.String("symbol", item.Symbol), zap.Error(err))
			continue
		}
		zap.L().Info("Updated score for stock",
			zap.String("symbol", item.Symbol),
			zap.Int("score", analysis.InvestmentScore))
	}
}

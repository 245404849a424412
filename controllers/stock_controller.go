package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redis_client "stockanalyzer/clients/redis"
	"stockanalyzer/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StockControllerI interface {
	Analyze(ctx *gin.Context)
	Quote(ctx *gin.Context)
	Scan(ctx *gin.Context)
	Discover(ctx *gin.Context)
	Performance(ctx *gin.Context)
	Search(ctx *gin.Context)
	Tickers(ctx *gin.Context)
}

type stockController struct {
	analyzer    services.AnalyzeServiceI
	quotes      services.QuoteServiceI
	scanner     services.ScanServiceI
	discovery   services.DiscoverServiceI
	performance services.PerformanceServiceI
	search      services.SearchServiceI
	tickers     services.TickerServiceI
	cache       *redis_client.Cache
}

func NewStockController(
	analyzer services.AnalyzeServiceI,
	quotes services.QuoteServiceI,
	scanner services.ScanServiceI,
	discovery services.DiscoverServiceI,
	performance services.PerformanceServiceI,
	search services.SearchServiceI,
	tickers services.TickerServiceI,
	cache *redis_client.Cache,
) StockControllerI {
	return &stockController{
		analyzer:    analyzer,
		quotes:      quotes,
		scanner:     scanner,
		discovery:   discovery,
		performance: performance,
		search:      search,
		tickers:     tickers,
		cache:       cache,
	}
}

// serveCached writes the cached payload for key when present; otherwise it
// runs build and caches whatever it returns for ttl. Errors from build are
// never cached.
func (s *stockController) serveCached(ctx *gin.Context, key string, ttl time.Duration, build func() (interface{}, error)) {
	if payload, ok := s.cache.Get(ctx, key); ok {
		ctx.Data(200, "application/json", payload)
		return
	}

	body, err := build()
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	payload, err := json.Marshal(body)
	if err != nil {
		zap.L().Error("Error marshalling response", zap.String("key", key), zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Error building response"})
		return
	}
	s.cache.Set(ctx, key, payload, ttl)
	ctx.Data(200, "application/json", payload)
}

func (s *stockController) writeError(ctx *gin.Context, err error) {
	symbol := strings.ToUpper(ctx.Param("symbol"))
	switch {
	case errors.Is(err, services.ErrNoPrice):
		ctx.JSON(404, gin.H{
			"error":  fmt.Sprintf("Could not find data for %s", symbol),
			"symbol": symbol,
		})
	case errors.Is(err, services.ErrInvalidSymbol):
		ctx.JSON(400, gin.H{"error": "Invalid symbol"})
	default:
		zap.L().Error("Request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
		ctx.JSON(500, gin.H{"error": "Internal error fetching data"})
	}
}

func (s *stockController) Analyze(ctx *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(ctx.Param("symbol")))
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol required"})
		return
	}
	profile := services.ScorerProfile(ctx.DefaultQuery("profile", string(services.ProfileStandard)))

	key := fmt.Sprintf("analyze:%s:%s", symbol, profile)
	s.serveCached(ctx, key, 5*time.Minute, func() (interface{}, error) {
		return s.analyzer.Analyze(ctx, symbol, profile)
	})
}

func (s *stockController) Quote(ctx *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(ctx.Param("symbol")))
	if symbol == "" {
		ctx.JSON(400, gin.H{"error": "Symbol required"})
		return
	}

	s.serveCached(ctx, "quote:"+symbol, time.Minute, func() (interface{}, error) {
		quote, err := s.quotes.Quote(ctx, symbol)
		if err != nil {
			return nil, err
		}
		return gin.H{"symbol": symbol, "quote": quote, "source": quote.Source}, nil
	})
}

// defaultScanSymbols is scanned when the request names no tickers.
var defaultScanSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA",
	"JPM", "V", "WMT", "CRCT", "ETSY", "PINS", "DIS", "NFLX",
}

func (s *stockController) Scan(ctx *gin.Context) {
	symbols := defaultScanSymbols
	if raw := strings.TrimSpace(ctx.Query("symbols")); raw != "" {
		symbols = strings.Split(raw, ",")
	}
	profile := services.ScorerProfile(ctx.DefaultQuery("profile", string(services.ProfileStandard)))

	results := s.scanner.Scan(ctx, symbols, profile)
	ctx.JSON(200, gin.H{
		"opportunities": results,
		"scanned":       len(symbols),
		"timestamp":     time.Now().UTC(),
	})
}

func (s *stockController) Discover(ctx *gin.Context) {
	picks := s.discovery.Discover(ctx)
	ctx.JSON(200, gin.H{
		"picks":     picks,
		"timestamp": time.Now().UTC(),
	})
}

func (s *stockController) Performance(ctx *gin.Context) {
	symbol := ctx.Param("symbol")
	result, err := s.performance.Performance(ctx, symbol)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	ctx.JSON(200, result)
}

func (s *stockController) Search(ctx *gin.Context) {
	query := strings.TrimSpace(ctx.Param("query"))
	if query == "" {
		ctx.JSON(400, gin.H{"error": "Query required"})
		return
	}
	results := s.search.Search(ctx, query)
	ctx.JSON(200, gin.H{
		"query":   query,
		"results": results,
	})
}

func (s *stockController) Tickers(ctx *gin.Context) {
	s.serveCached(ctx, "tickers:all", time.Hour, func() (interface{}, error) {
		tickers, err := s.tickers.AllTickers(ctx)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"tickers": tickers,
			"count":   len(tickers),
			"source":  "github/rreichel3/US-Stock-Symbols",
		}, nil
	})
}

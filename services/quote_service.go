package services

import (
	"context"
	"strings"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"

	"go.uber.org/zap"
)

type QuoteServiceI interface {
	Quote(ctx context.Context, symbol string) (*types.Quote, error)
}

type quoteService struct {
	client *http_client.Client
}

func NewQuoteService(client *http_client.Client) QuoteServiceI {
	return &quoteService{client: client}
}

// Quote walks the provider ladder: Tradier, then FMP, then the Yahoo
// scraper. Each rung returning nothing (no key, no data) drops to the
// next; only a total miss is an error.
func (qs *quoteService) Quote(ctx context.Context, symbol string) (*types.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	quote, err := qs.client.TradierQuote(ctx, symbol)
	if err != nil {
		zap.L().Warn("Tradier quote failed", zap.String("symbol", symbol), zap.Error(err))
	}
	if quote != nil {
		return quote, nil
	}

	quote, err = qs.client.FMPQuote(ctx, symbol)
	if err != nil {
		zap.L().Warn("FMP quote failed", zap.String("symbol", symbol), zap.Error(err))
	}
	if quote != nil {
		return quote, nil
	}

	m := qs.client.ScrapeYahoo(ctx, symbol)
	if m.Price > 0 {
		return &types.Quote{
			Name:          m.Name,
			Price:         m.Price,
			ChangePercent: m.ChangePercent,
			Volume:        m.Volume,
			MarketCap:     m.MarketCap,
			Week52High:    m.Week52High,
			Week52Low:     m.Week52Low,
			Source:        "scrape",
		}, nil
	}

	return nil, ErrNoPrice
}

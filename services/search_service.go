package services

import (
	"context"
	"strings"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"

	"go.uber.org/zap"
)

// usExchanges are the exchange codes kept by the search filter; anything
// else is a foreign listing the rest of the pipeline cannot analyze.
var usExchanges = map[string]bool{
	"NMS": true, "NYQ": true, "NGM": true, "NCM": true, "ASE": true,
	"PCX": true, "BTS": true, "NAS": true, "NYSE": true, "NASDAQ": true,
	"AMEX": true, "ARCA": true, "BATS": true,
}

const maxSearchResults = 8

type SearchServiceI interface {
	Search(ctx context.Context, query string) []types.SearchResult
}

type searchService struct {
	client *http_client.Client
}

func NewSearchService(client *http_client.Client) SearchServiceI {
	return &searchService{client: client}
}

// Search finds US-listed equities and ETFs for a name or partial ticker.
// When the provider search comes up empty the query is tried directly as
// a ticker.
func (ss *searchService) Search(ctx context.Context, query string) []types.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	raw, err := ss.client.Search(ctx, query, 15)
	if err != nil {
		zap.L().Error("Symbol search failed", zap.String("query", query), zap.Error(err))
	}

	results := filterUSListings(raw)
	if len(results) == 0 {
		results = ss.validateAsTicker(ctx, query)
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results
}

func filterUSListings(raw []types.SearchResult) []types.SearchResult {
	results := []types.SearchResult{}
	for _, r := range raw {
		if r.Type != "EQUITY" && r.Type != "ETF" {
			continue
		}
		if r.Exchange != "" && !usExchanges[r.Exchange] {
			continue
		}
		// Dotted symbols are foreign listings (e.g. 398.F).
		if strings.Contains(r.Symbol, ".") {
			continue
		}
		results = append(results, r)
	}
	return results
}

func (ss *searchService) validateAsTicker(ctx context.Context, query string) []types.SearchResult {
	m, err := ss.client.QuoteSummary(ctx, strings.ToUpper(query))
	if err != nil || m.Price == 0 {
		return nil
	}
	return []types.SearchResult{{
		Symbol: m.Symbol,
		Name:   m.Name,
		Type:   "EQUITY",
	}}
}

package http_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"stockanalyzer/config"
	"stockanalyzer/types"

	"go.uber.org/zap"
)

// Client talks to every upstream data provider. All credentials and base
// URLs come from the config so nothing below main reads the environment.
type Client struct {
	cfg  config.Providers
	http *http.Client
}

func NewClient(cfg config.Providers) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) getJSON(ctx context.Context, rawURL string, headers map[string]string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		zap.L().Error("Failed to unmarshal provider response", zap.String("url", rawURL), zap.Error(err))
		return err
	}
	return nil
}

type tradierQuoteResponse struct {
	Quotes struct {
		Quote tradierQuote `json:"quote"`
	} `json:"quotes"`
}

type tradierQuote struct {
	Description      string  `json:"description"`
	Last             float64 `json:"last"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"change_percentage"`
	Volume           float64 `json:"volume"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	Open             float64 `json:"open"`
	PrevClose        float64 `json:"prevclose"`
	Week52High       float64 `json:"week_52_high"`
	Week52Low        float64 `json:"week_52_low"`
}

// TradierQuote fetches a delayed market quote from the Tradier sandbox.
// Returns nil without error when no API key is configured so callers can
// fall through the provider ladder.
func (c *Client) TradierQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	if c.cfg.TradierAPIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("symbols", symbol)
	endpoint := c.cfg.TradierBaseURL + "/markets/quotes?" + params.Encode()
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.TradierAPIKey,
		"Accept":        "application/json",
	}

	var parsed tradierQuoteResponse
	if err := c.getJSON(ctx, endpoint, headers, &parsed); err != nil {
		return nil, err
	}

	q := parsed.Quotes.Quote
	if q.Last == 0 {
		return nil, nil
	}
	name := q.Description
	if name == "" {
		name = symbol
	}
	return &types.Quote{
		Name:          name,
		Price:         q.Last,
		Change:        q.Change,
		ChangePercent: q.ChangePercentage,
		Volume:        q.Volume,
		Week52High:    q.Week52High,
		Week52Low:     q.Week52Low,
		Source:        "tradier",
	}, nil
}

type fmpQuote struct {
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	Volume            float64 `json:"volume"`
	YearHigh          float64 `json:"yearHigh"`
	YearLow           float64 `json:"yearLow"`
	MarketCap         float64 `json:"marketCap"`
	PE                float64 `json:"pe"`
	EPS               float64 `json:"eps"`
}

// FMPQuote fetches a quote from Financial Modeling Prep, the second rung
// of the quote ladder.
func (c *Client) FMPQuote(ctx context.Context, symbol string) (*types.Quote, error) {
	if c.cfg.FMPAPIKey == "" {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/quote/%s?apikey=%s", c.cfg.FMPBaseURL, url.PathEscape(symbol), url.QueryEscape(c.cfg.FMPAPIKey))
	var parsed []fmpQuote
	if err := c.getJSON(ctx, endpoint, nil, &parsed); err != nil {
		return nil, err
	}
	if len(parsed) == 0 || parsed[0].Price == 0 {
		return nil, nil
	}

	q := parsed[0]
	name := q.Name
	if name == "" {
		name = symbol
	}
	return &types.Quote{
		Name:          name,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangesPercentage,
		Volume:        q.Volume,
		MarketCap:     q.MarketCap,
		Week52High:    q.YearHigh,
		Week52Low:     q.YearLow,
		Source:        "fmp",
	}, nil
}

// ExchangeTickers pulls the maintained symbol list for one exchange from
// the rreichel3/US-Stock-Symbols GitHub mirror.
func (c *Client) ExchangeTickers(ctx context.Context, exchange string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/%s/%s_tickers.json", c.cfg.TickersBaseURL, exchange, exchange)
	var tickers []string
	if err := c.getJSON(ctx, endpoint, nil, &tickers); err != nil {
		return nil, err
	}
	return tickers, nil
}

// AllTickers merges and dedupes the NASDAQ, NYSE and AMEX lists. A single
// failed exchange is logged and skipped, not fatal.
func (c *Client) AllTickers(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, exchange := range []string{"nasdaq", "nyse", "amex"} {
		tickers, err := c.ExchangeTickers(ctx, exchange)
		if err != nil {
			zap.L().Error("Failed to fetch exchange tickers", zap.String("exchange", exchange), zap.Error(err))
			continue
		}
		for _, t := range tickers {
			seen[t] = true
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no ticker list available from any exchange")
	}

	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

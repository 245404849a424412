package http_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Yahoo blocks default Go user agents, so every page fetch pretends to be
// a desktop browser.
const browserUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var titleNameRe = regexp.MustCompile(`^(.+?)\s*\(`)

func (c *Client) yahooPage(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch the URL: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to retrieve the content, status code: %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// percentCell parses a scraped table cell, storing percent-labeled values
// as fractions so downstream normalization rescales them exactly once.
func percentCell(text string) *float64 {
	v := helpers.ParseNumber(text)
	if strings.Contains(text, "%") {
		v = v / 100
	}
	return &v
}

func numberCell(text string) *float64 {
	v := helpers.ParseNumber(text)
	return &v
}

// ScrapeYahoo builds a Metrics from the Yahoo Finance quote and
// key-statistics pages. Each page failing individually is logged and
// tolerated; the caller decides whether the result is usable by checking
// Price.
func (c *Client) ScrapeYahoo(ctx context.Context, symbol string) *types.Metrics {
	symbol = strings.ToUpper(symbol)
	m := &types.Metrics{Symbol: symbol, Name: symbol}

	doc, err := c.yahooPage(ctx, c.cfg.YahooBaseURL+"/quote/"+url.PathEscape(symbol))
	if err != nil {
		zap.L().Error("Yahoo quote page failed", zap.String("symbol", symbol), zap.Error(err))
	} else {
		c.parseQuotePage(doc, m)
	}

	doc, err = c.yahooPage(ctx, c.cfg.YahooBaseURL+"/quote/"+url.PathEscape(symbol)+"/key-statistics")
	if err != nil {
		zap.L().Error("Yahoo statistics page failed", zap.String("symbol", symbol), zap.Error(err))
	} else {
		c.parseStatisticsPage(doc, m)
	}

	return m
}

func (c *Client) parseQuotePage(doc *goquery.Document, m *types.Metrics) {
	if title := doc.Find("title").First().Text(); title != "" {
		if match := titleNameRe.FindStringSubmatch(title); match != nil {
			m.Name = strings.TrimSpace(match[1])
		}
	}

	doc.Find(`fin-streamer[data-field="regularMarketPrice"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-value"); ok {
			m.Price = helpers.ParseNumber(v)
		} else {
			m.Price = helpers.ParseNumber(s.Text())
		}
		return false
	})

	doc.Find(`fin-streamer[data-field="regularMarketChangePercent"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-value"); ok {
			m.ChangePercent = helpers.ParseNumber(v)
		} else {
			m.ChangePercent = helpers.ParseNumber(s.Text())
		}
		return false
	})

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())

		switch {
		case strings.Contains(label, "market cap"):
			m.MarketCap = helpers.ParseNumber(value)
		case strings.Contains(label, "pe ratio"):
			m.TrailingPE = numberCell(value)
		case strings.Contains(label, "52 week"):
			parts := strings.Split(strings.ReplaceAll(value, " ", ""), "-")
			if len(parts) == 2 {
				m.Week52Low = helpers.ParseNumber(parts[0])
				m.Week52High = helpers.ParseNumber(parts[1])
			}
		case strings.HasPrefix(label, "eps"):
			m.TrailingEPS = numberCell(value)
		case strings.Contains(label, "volume") && !strings.Contains(label, "avg"):
			m.Volume = helpers.ParseNumber(value)
		}
	})
}

func (c *Client) parseStatisticsPage(doc *goquery.Document, m *types.Metrics) {
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		value := strings.TrimSpace(cells.Eq(1).Text())

		switch {
		case strings.Contains(label, "return on assets"):
			m.ROA = percentCell(value)
		case strings.Contains(label, "return on equity"):
			m.ROE = percentCell(value)
		case strings.Contains(label, "profit margin") &&
			!strings.Contains(label, "operating") && !strings.Contains(label, "gross"):
			m.ProfitMargin = percentCell(value)
		case strings.Contains(label, "gross margin") || strings.Contains(label, "gross profit"):
			m.GrossMargin = percentCell(value)
		case strings.Contains(label, "total cash") && !strings.Contains(label, "per share"):
			m.Cash = numberCell(value)
		case strings.Contains(label, "total debt"):
			m.Debt = numberCell(value)
		case strings.Contains(label, "price/sales"):
			m.PSRatio = numberCell(value)
		case strings.Contains(label, "price/book"):
			m.PBRatio = numberCell(value)
		case strings.Contains(label, "levered free cash"):
			m.FCF = numberCell(value)
		case strings.Contains(label, "forward p/e"):
			m.ForwardPE = numberCell(value)
		case strings.Contains(label, "book value per share"):
			m.BookValuePerShare = numberCell(value)
		case strings.Contains(label, "shares outstanding"):
			m.SharesOutstanding = numberCell(value)
		case strings.Contains(label, "forward annual dividend yield"):
			m.DividendYield = percentCell(value)
		}
	})
}

type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price *struct {
				LongName                   string     `json:"longName"`
				ShortName                  string     `json:"shortName"`
				RegularMarketPrice         yahooValue `json:"regularMarketPrice"`
				RegularMarketChangePercent yahooValue `json:"regularMarketChangePercent"`
				MarketCap                  yahooValue `json:"marketCap"`
			} `json:"price"`
			SummaryProfile *struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"summaryProfile"`
			SummaryDetail *struct {
				TrailingPE       yahooValue `json:"trailingPE"`
				PriceToSales     yahooValue `json:"priceToSalesTrailing12Months"`
				DividendYield    yahooValue `json:"dividendYield"`
				FiftyTwoWeekHigh yahooValue `json:"fiftyTwoWeekHigh"`
				FiftyTwoWeekLow  yahooValue `json:"fiftyTwoWeekLow"`
				Volume           yahooValue `json:"volume"`
			} `json:"summaryDetail"`
			FinancialData *struct {
				TotalCash       yahooValue `json:"totalCash"`
				TotalDebt       yahooValue `json:"totalDebt"`
				TotalRevenue    yahooValue `json:"totalRevenue"`
				FreeCashflow    yahooValue `json:"freeCashflow"`
				TargetMeanPrice yahooValue `json:"targetMeanPrice"`
				ReturnOnAssets  yahooValue `json:"returnOnAssets"`
				ReturnOnEquity  yahooValue `json:"returnOnEquity"`
				ProfitMargins   yahooValue `json:"profitMargins"`
				GrossMargins    yahooValue `json:"grossMargins"`
				RevenueGrowth   yahooValue `json:"revenueGrowth"`
				EarningsGrowth  yahooValue `json:"earningsGrowth"`
			} `json:"financialData"`
			DefaultKeyStatistics *struct {
				TrailingEps             yahooValue `json:"trailingEps"`
				ForwardEps              yahooValue `json:"forwardEps"`
				ForwardPE               yahooValue `json:"forwardPE"`
				PriceToBook             yahooValue `json:"priceToBook"`
				BookValue               yahooValue `json:"bookValue"`
				SharesOutstanding       yahooValue `json:"sharesOutstanding"`
				NetIncomeToCommon       yahooValue `json:"netIncomeToCommon"`
				QuarterlyEarningsGrowth yahooValue `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
		} `json:"result"`
	} `json:"quoteSummary"`
}

// QuoteSummary fetches the structured Yahoo quoteSummary modules. The raw
// values keep the provider's own scale (ratios as fractions); scoring and
// valuation normalize them later.
func (c *Client) QuoteSummary(ctx context.Context, symbol string) (*types.Metrics, error) {
	symbol = strings.ToUpper(symbol)
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,summaryProfile,summaryDetail,financialData,defaultKeyStatistics",
		c.cfg.YahooQueryURL, url.PathEscape(symbol))

	var parsed quoteSummaryResponse
	if err := c.getJSON(ctx, endpoint, map[string]string{"User-Agent": browserUA}, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary for %s", symbol)
	}

	r := parsed.QuoteSummary.Result[0]
	m := &types.Metrics{Symbol: symbol, Name: symbol}

	if r.Price != nil {
		if r.Price.LongName != "" {
			m.Name = r.Price.LongName
		} else if r.Price.ShortName != "" {
			m.Name = r.Price.ShortName
		}
		m.Price = helpers.Deref(r.Price.RegularMarketPrice.Raw)
		m.ChangePercent = helpers.Deref(r.Price.RegularMarketChangePercent.Raw) * 100
		m.MarketCap = helpers.Deref(r.Price.MarketCap.Raw)
	}
	if r.SummaryProfile != nil {
		m.Sector = r.SummaryProfile.Sector
		m.Industry = r.SummaryProfile.Industry
	}
	if r.SummaryDetail != nil {
		m.TrailingPE = r.SummaryDetail.TrailingPE.Raw
		m.PSRatio = r.SummaryDetail.PriceToSales.Raw
		m.DividendYield = r.SummaryDetail.DividendYield.Raw
		m.Week52High = helpers.Deref(r.SummaryDetail.FiftyTwoWeekHigh.Raw)
		m.Week52Low = helpers.Deref(r.SummaryDetail.FiftyTwoWeekLow.Raw)
		m.Volume = helpers.Deref(r.SummaryDetail.Volume.Raw)
	}
	if r.FinancialData != nil {
		m.Cash = r.FinancialData.TotalCash.Raw
		m.Debt = r.FinancialData.TotalDebt.Raw
		m.TotalRevenue = r.FinancialData.TotalRevenue.Raw
		m.FCF = r.FinancialData.FreeCashflow.Raw
		m.TargetMeanPrice = r.FinancialData.TargetMeanPrice.Raw
		m.ROA = r.FinancialData.ReturnOnAssets.Raw
		m.ROE = r.FinancialData.ReturnOnEquity.Raw
		m.ProfitMargin = r.FinancialData.ProfitMargins.Raw
		m.GrossMargin = r.FinancialData.GrossMargins.Raw
		m.RevenueGrowth = r.FinancialData.RevenueGrowth.Raw
		m.EarningsGrowth = r.FinancialData.EarningsGrowth.Raw
	}
	if r.DefaultKeyStatistics != nil {
		m.TrailingEPS = r.DefaultKeyStatistics.TrailingEps.Raw
		m.ForwardEPS = r.DefaultKeyStatistics.ForwardEps.Raw
		m.ForwardPE = r.DefaultKeyStatistics.ForwardPE.Raw
		if m.PBRatio == nil {
			m.PBRatio = r.DefaultKeyStatistics.PriceToBook.Raw
		}
		m.BookValuePerShare = r.DefaultKeyStatistics.BookValue.Raw
		m.SharesOutstanding = r.DefaultKeyStatistics.SharesOutstanding.Raw
		m.NetIncome = r.DefaultKeyStatistics.NetIncomeToCommon.Raw
		// The annual figure is preferred; the quarterly YoY number only
		// fills in when financialData carries no growth at all.
		if m.EarningsGrowth == nil {
			m.EarningsGrowth = r.DefaultKeyStatistics.QuarterlyEarningsGrowth.Raw
		}
	}

	return m, nil
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
	} `json:"quotes"`
}

// Search queries Yahoo's symbol search endpoint. Filtering down to US
// equities happens in the service layer.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", fmt.Sprintf("%d", maxResults))
	params.Set("newsCount", "0")
	endpoint := c.cfg.YahooQueryURL + "/v1/finance/search?" + params.Encode()

	var parsed yahooSearchResponse
	if err := c.getJSON(ctx, endpoint, map[string]string{"User-Agent": browserUA}, &parsed); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(parsed.Quotes))
	for _, q := range parsed.Quotes {
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		if name == "" {
			name = q.Symbol
		}
		results = append(results, types.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Exchange: q.Exchange,
			Type:     q.QuoteType,
		})
	}
	return results, nil
}

// ChartPoint is one daily close in a price history series.
type ChartPoint struct {
	Time  time.Time
	Close float64
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// Chart fetches daily closes for the given range (e.g. "2y"). Null closes
// from halted days are dropped.
func (c *Client) Chart(ctx context.Context, symbol, rng string) ([]ChartPoint, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1d")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.cfg.YahooQueryURL, url.PathEscape(strings.ToUpper(symbol)), params.Encode())

	var parsed yahooChartResponse
	if err := c.getJSON(ctx, endpoint, map[string]string{"User-Agent": browserUA}, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Chart.Result) == 0 || len(parsed.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	r := parsed.Chart.Result[0]
	closes := r.Indicators.Quote[0].Close
	points := make([]ChartPoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, ChartPoint{Time: time.Unix(ts, 0).UTC(), Close: *closes[i]})
	}
	if len(points) < 2 {
		return nil, fmt.Errorf("insufficient chart data for %s", symbol)
	}
	return points, nil
}

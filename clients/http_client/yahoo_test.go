package http_client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockanalyzer/config"
)

func summaryServer(t *testing.T, keyStats, financial string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"quoteSummary":{"result":[{
			"price":{"longName":"Test Corp","regularMarketPrice":{"raw":100}},
			"financialData":%s,
			"defaultKeyStatistics":%s
		}]}}`, financial, keyStats)
	}))
}

func summaryClient(serverURL string) *Client {
	return NewClient(config.Providers{
		YahooQueryURL: serverURL,
		Timeout:       5 * time.Second,
	})
}

func TestQuoteSummary_AnnualGrowthPreferred(t *testing.T) {
	srv := summaryServer(t,
		`{"earningsQuarterlyGrowth":{"raw":0.50}}`,
		`{"earningsGrowth":{"raw":0.12}}`)
	defer srv.Close()

	m, err := summaryClient(srv.URL).QuoteSummary(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("QuoteSummary returned error: %v", err)
	}
	if m.EarningsGrowth == nil || *m.EarningsGrowth != 0.12 {
		t.Errorf("earnings growth = %v, want the annual 0.12", m.EarningsGrowth)
	}
}

func TestQuoteSummary_QuarterlyGrowthFallback(t *testing.T) {
	srv := summaryServer(t,
		`{"earningsQuarterlyGrowth":{"raw":0.08}}`,
		`{"totalCash":{"raw":1000000}}`)
	defer srv.Close()

	m, err := summaryClient(srv.URL).QuoteSummary(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("QuoteSummary returned error: %v", err)
	}
	if m.EarningsGrowth == nil || *m.EarningsGrowth != 0.08 {
		t.Errorf("earnings growth = %v, want the quarterly fallback 0.08", m.EarningsGrowth)
	}
	if m.Name != "Test Corp" || m.Price != 100 {
		t.Errorf("unexpected quote fields: name %q price %v", m.Name, m.Price)
	}
}

package services

import (
	"context"
	"testing"

	"stockanalyzer/types"
)

type fakeAnalyzer struct {
	analyses map[string]*types.Analysis
	calls    int
}

func (f *fakeAnalyzer) FetchMetrics(_ context.Context, symbol string) (*types.Metrics, string, error) {
	return nil, "", ErrNoPrice
}

func (f *fakeAnalyzer) Analyze(_ context.Context, symbol string, _ ScorerProfile) (*types.Analysis, error) {
	f.calls++
	a, ok := f.analyses[symbol]
	if !ok {
		return nil, ErrNoPrice
	}
	return a, nil
}

type capturePublisher struct {
	events []types.AnalyzerEvent
}

func (c *capturePublisher) SendMessage(event types.AnalyzerEvent) {
	c.events = append(c.events, event)
}

func scanAnalysis(symbol string, score int, upside float64) *types.Analysis {
	return &types.Analysis{
		Symbol:          symbol,
		Quote:           types.Quote{Name: symbol + " Inc", Price: 100},
		InvestmentScore: score,
		UpsidePercent:   upside,
		Recommendation:  GetRecommendation(score, upside),
	}
}

func TestScan_SortsAndIsolatesFailures(t *testing.T) {
	analyzer := &fakeAnalyzer{analyses: map[string]*types.Analysis{
		"AAPL": scanAnalysis("AAPL", 70, 12),
		"MSFT": scanAnalysis("MSFT", 85, 5),
		"WMT":  scanAnalysis("WMT", 70, 25),
		"KO":   scanAnalysis("KO", 40, 2),
	}}
	publisher := &capturePublisher{}
	svc := NewScanService(analyzer, publisher)

	// BOGUS has no data and must not sink the batch.
	results := svc.Scan(context.Background(), []string{"aapl", "BOGUS", "MSFT", "WMT", "KO"}, ProfileStandard)

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	wantOrder := []string{"MSFT", "WMT", "AAPL", "KO"}
	for i, want := range wantOrder {
		if results[i].Symbol != want {
			t.Errorf("position %d: expected %s, got %s", i, want, results[i].Symbol)
		}
	}
	if len(publisher.events) != 4 {
		t.Errorf("expected 4 published events, got %d", len(publisher.events))
	}
	if publisher.events[0].Signal == "" {
		t.Errorf("published event missing signal")
	}
}

func TestScan_CapsBatchSize(t *testing.T) {
	analyzer := &fakeAnalyzer{analyses: map[string]*types.Analysis{}}
	symbols := make([]string, 50)
	for i := range symbols {
		symbols[i] = "SYM"
	}
	svc := NewScanService(analyzer)
	svc.Scan(context.Background(), symbols, ProfileStandard)
	if analyzer.calls != maxScanSymbols {
		t.Errorf("expected %d analyzer calls, got %d", maxScanSymbols, analyzer.calls)
	}
}

func TestScan_EmptyInput(t *testing.T) {
	svc := NewScanService(&fakeAnalyzer{analyses: map[string]*types.Analysis{}})
	results := svc.Scan(context.Background(), nil, ProfileStandard)
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stockanalyzer/clients/http_client"
)

type fakeCharts struct {
	points []http_client.ChartPoint
	err    error
}

func (f *fakeCharts) Chart(ctx context.Context, symbol, rng string) ([]http_client.ChartPoint, error) {
	return f.points, f.err
}

// dailySeries builds one close per calendar day ending at end, with closes
// chosen by fn.
func dailySeries(end time.Time, days int, fn func(t time.Time) float64) []http_client.ChartPoint {
	points := make([]http_client.ChartPoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		t := end.AddDate(0, 0, -i)
		points = append(points, http_client.ChartPoint{Time: t, Close: fn(t)})
	}
	return points
}

func TestPerformance_TimeframesAndBand(t *testing.T) {
	end := time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC)
	cutoff := end.AddDate(-1, 0, 0)

	// Flat at 100 for the trailing year with a jump to 110 on the last
	// day; ancient closes at 500 must stay out of the 52-week band.
	points := dailySeries(end, 500, func(pt time.Time) float64 {
		switch {
		case pt.Before(cutoff):
			return 500
		case pt.Equal(end):
			return 110
		default:
			return 100
		}
	})

	svc := NewPerformanceService(&fakeCharts{points: points})
	result, err := svc.Performance(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("Performance returned error: %v", err)
	}

	if result.Symbol != "AAPL" {
		t.Errorf("symbol not uppercased: %q", result.Symbol)
	}
	if result.CurrentPrice != 110 {
		t.Errorf("current price = %v, want 110", result.CurrentPrice)
	}
	for _, tf := range []string{"1D", "1W", "1M", "3M", "6M", "1Y"} {
		change := result.Timeframes[tf]
		if change == nil {
			t.Fatalf("%s change is nil, want 10.00", tf)
		}
		if *change != 10 {
			t.Errorf("%s change = %v, want 10", tf, *change)
		}
	}
	if result.Week52High != 110 || result.Week52Low != 100 {
		t.Errorf("52-week band = [%v, %v], want [100, 110]", result.Week52Low, result.Week52High)
	}
	if result.OffHighPct != 0 {
		t.Errorf("off-high = %v, want 0", result.OffHighPct)
	}
}

func TestPerformance_ShortHistoryYieldsNulls(t *testing.T) {
	end := time.Date(2025, 6, 16, 21, 0, 0, 0, time.UTC)
	points := dailySeries(end, 30, func(time.Time) float64 { return 100 })

	svc := NewPerformanceService(&fakeCharts{points: points})
	result, err := svc.Performance(context.Background(), "NEWIPO")
	if err != nil {
		t.Fatalf("Performance returned error: %v", err)
	}

	if result.Timeframes["1W"] == nil {
		t.Error("1W should be available with 30 days of history")
	}
	for _, tf := range []string{"1M", "3M", "6M", "1Y"} {
		if result.Timeframes[tf] != nil {
			t.Errorf("%s = %v, want nil with only 30 days of history", tf, *result.Timeframes[tf])
		}
	}
}

func TestPerformance_InvalidSymbol(t *testing.T) {
	svc := NewPerformanceService(&fakeCharts{})
	for _, symbol := range []string{"", "   ", "WAYTOOLONGSYMBOL"} {
		if _, err := svc.Performance(context.Background(), symbol); !errors.Is(err, ErrInvalidSymbol) {
			t.Errorf("Performance(%q) error = %v, want ErrInvalidSymbol", symbol, err)
		}
	}
}

func TestPerformance_ChartErrorPropagates(t *testing.T) {
	chartErr := errors.New("upstream unavailable")
	svc := NewPerformanceService(&fakeCharts{err: chartErr})
	if _, err := svc.Performance(context.Background(), "AAPL"); !errors.Is(err, chartErr) {
		t.Errorf("error = %v, want the chart error", err)
	}
}

func TestMonthsAgo_PinsDay(t *testing.T) {
	jan31 := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	got := monthsAgo(jan31, 11)
	want := time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("monthsAgo(Jan 31, 11) = %v, want %v", got, want)
	}

	across := monthsAgo(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), 3)
	if across.Year() != 2024 || across.Month() != time.November {
		t.Errorf("monthsAgo(Feb 2025, 3) = %v, want Nov 2024", across)
	}
}

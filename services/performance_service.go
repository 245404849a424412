package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"stockanalyzer/clients/http_client"
	"stockanalyzer/types"
	"stockanalyzer/utils/helpers"
)

// ErrInvalidSymbol guards the performance endpoint against junk paths.
var ErrInvalidSymbol = errors.New("invalid symbol")

// ChartProvider is the slice of the HTTP client the performance service
// needs, split out so tests can feed synthetic price series.
type ChartProvider interface {
	Chart(ctx context.Context, symbol, rng string) ([]http_client.ChartPoint, error)
}

type PerformanceServiceI interface {
	Performance(ctx context.Context, symbol string) (*types.PerformanceResult, error)
}

type performanceService struct {
	charts ChartProvider
}

func NewPerformanceService(charts ChartProvider) PerformanceServiceI {
	return &performanceService{charts: charts}
}

// Performance derives trailing returns for the standard timeframes from
// daily closes. Timeframes with not enough history come back nil and
// render as null, never as a fake 0%.
func (ps *performanceService) Performance(ctx context.Context, symbol string) (*types.PerformanceResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 10 {
		return nil, ErrInvalidSymbol
	}

	points, err := ps.charts.Chart(ctx, symbol, "2y")
	if err != nil {
		return nil, err
	}

	last := points[len(points)-1]
	current := last.Close

	high, low := points[0].Close, points[0].Close
	// The 52-week band only looks at the trailing year of the series.
	yearAgo := last.Time.AddDate(-1, 0, 0)
	first := true
	for _, p := range points {
		if p.Time.Before(yearAgo) {
			continue
		}
		if first {
			high, low = p.Close, p.Close
			first = false
			continue
		}
		if p.Close > high {
			high = p.Close
		}
		if p.Close < low {
			low = p.Close
		}
	}

	changeSince := func(target time.Time) *float64 {
		// Walk back to the closest trading day at or before the target.
		for i := len(points) - 1; i >= 0; i-- {
			if points[i].Time.After(target) {
				continue
			}
			if points[i].Close <= 0 {
				return nil
			}
			change := helpers.Round2((current - points[i].Close) / points[i].Close * 100)
			return &change
		}
		return nil
	}

	var change1D *float64
	if len(points) >= 2 {
		prev := points[len(points)-2].Close
		if prev > 0 {
			v := helpers.Round2((current - prev) / prev * 100)
			change1D = &v
		}
	}

	result := &types.PerformanceResult{
		Symbol:       symbol,
		CurrentPrice: helpers.Round2(current),
		Timeframes: map[string]*float64{
			"1D": change1D,
			"1W": changeSince(last.Time.AddDate(0, 0, -7)),
			"1M": changeSince(monthsAgo(last.Time, 1)),
			"3M": changeSince(monthsAgo(last.Time, 3)),
			"6M": changeSince(monthsAgo(last.Time, 6)),
			"1Y": changeSince(monthsAgo(last.Time, 12)),
		},
		Week52High: helpers.Round2(high),
		Week52Low:  helpers.Round2(low),
	}
	if high > 0 {
		result.OffHighPct = helpers.Round1((current - high) / high * 100)
	}
	return result, nil
}

// monthsAgo steps back whole months, pinning the day to at most 28 so the
// result exists in every month.
func monthsAgo(t time.Time, months int) time.Time {
	year, month := t.Year(), int(t.Month())-months
	for month <= 0 {
		month += 12
		year--
	}
	day := t.Day()
	if day > 28 {
		day = 28
	}
	return time.Date(year, time.Month(month), day, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

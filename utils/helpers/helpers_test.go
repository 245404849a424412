package helpers

import (
	"testing"
)

func TestNormalizePercent_Fraction(t *testing.T) {
	v := 0.10
	result := NormalizePercent(&v, ZeroFill)
	if *result != 10.0 {
		t.Errorf("Expected 10.0, got %v", *result)
	}
}

func TestNormalizePercent_AlreadyPercent(t *testing.T) {
	v := 24.4
	result := NormalizePercent(&v, ZeroFill)
	if *result != 24.4 {
		t.Errorf("Expected 24.4, got %v", *result)
	}
}

func TestNormalizePercent_Boundary(t *testing.T) {
	// Exactly 10.0 passes through unchanged; only values strictly inside
	// (-10, 10) are rescaled.
	v := 10.0
	result := NormalizePercent(&v, ZeroFill)
	if *result != 10.0 {
		t.Errorf("Expected 10.0 at the boundary, got %v", *result)
	}
}

func TestNormalizePercent_NegativeFraction(t *testing.T) {
	v := -0.05
	result := NormalizePercent(&v, ZeroFill)
	if *result != -5.0 {
		t.Errorf("Expected -5.0, got %v", *result)
	}
}

func TestNormalizePercent_NilZeroFill(t *testing.T) {
	result := NormalizePercent(nil, ZeroFill)
	if result == nil || *result != 0 {
		t.Errorf("Expected 0, got %v", result)
	}
}

func TestNormalizePercent_NilPreserveNull(t *testing.T) {
	result := NormalizePercent(nil, PreserveNull)
	if result != nil {
		t.Errorf("Expected nil, got %v", *result)
	}
}

func TestParseNumber_Suffixes(t *testing.T) {
	cases := map[string]float64{
		"2.5T":     2.5e12,
		"1.5B":     1.5e9,
		"350M":     350e6,
		"12K":      12000,
		"1,234.56": 1234.56,
		"$45.20":   45.2,
		"(3.2)":    -3.2,
		"15.2%":    15.2,
		"N/A":      0,
		"--":       0,
		"":         0,
		"abc":      0,
	}
	for input, expected := range cases {
		result := ParseNumber(input)
		if result != expected {
			t.Errorf("ParseNumber(%q): expected %v, got %v", input, expected, result)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := map[float64]string{
		2.5e12: "2.5T",
		1.5e9:  "1.5B",
		350e6:  "350M",
		12000:  "12K",
		512:    "512",
	}
	for input, expected := range cases {
		result := FormatNumber(input)
		if result != expected {
			t.Errorf("FormatNumber(%v): expected %q, got %q", input, expected, result)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(0, 15, 20) != 15 {
		t.Errorf("Expected clamp to upper bound")
	}
	if Clamp(0, 15, -3) != 0 {
		t.Errorf("Expected clamp to lower bound")
	}
	if Clamp(0, 15, 7.5) != 7.5 {
		t.Errorf("Expected pass-through inside bounds")
	}
}

func TestNormalizeString(t *testing.T) {
	input := "  Consumer Cyclical  "
	expected := "consumer cyclical"
	result := NormalizeString(input)
	if result != expected {
		t.Errorf("Expected %q, got %q", expected, result)
	}
}

func TestMatchHeader(t *testing.T) {
	patterns := []string{`^symbol$`, `^ticker(\s*symbol)?$`}

	for _, cell := range []string{"Symbol", "  TICKER  ", "Ticker Symbol", "ticker"} {
		if !MatchHeader(cell, patterns) {
			t.Errorf("MatchHeader(%q) = false, want true", cell)
		}
	}
	for _, cell := range []string{"Company Symbol", "Name", "tickers", ""} {
		if MatchHeader(cell, patterns) {
			t.Errorf("MatchHeader(%q) = true, want false", cell)
		}
	}
}

func TestTickerRe(t *testing.T) {
	for _, symbol := range []string{"A", "AAPL", "BRK.B", "BF-B", "GOOGL"} {
		if !TickerRe.MatchString(symbol) {
			t.Errorf("TickerRe rejected %q", symbol)
		}
	}
	for _, symbol := range []string{"", "aapl", "TOOLONGG", "123", "BRK.BB", "Apple Inc"} {
		if TickerRe.MatchString(symbol) {
			t.Errorf("TickerRe accepted %q", symbol)
		}
	}
}

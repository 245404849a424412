package helpers

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MissingPolicy controls what NormalizePercent does with a nil input:
// scoring call sites default missing data to zero, display call sites keep
// nil so the UI renders N/A instead of 0%.
type MissingPolicy int

const (
	ZeroFill MissingPolicy = iota
	PreserveNull
)

// NormalizePercent converts a ratio-like value to a percentage. Providers
// are inconsistent: some report 0.15, some report 15.0 for the same 15%.
// Values with abs >= 10 are assumed to already be percentages and pass
// through unchanged (so 10.0 stays 10.0); values strictly inside (-10, 10)
// are fractional ratios and are multiplied by 100. The cutoff cannot tell
// a true 1100% ratio from an 11% percentage, a known limitation carried
// for compatibility.
func NormalizePercent(value *float64, policy MissingPolicy) *float64 {
	if value == nil {
		if policy == PreserveNull {
			return nil
		}
		zero := 0.0
		return &zero
	}
	v := *value
	if math.Abs(v) >= 10 {
		return &v
	}
	v = v * 100
	return &v
}

// Pct is the scoring-path shorthand: missing becomes 0.
func Pct(value *float64) float64 {
	return *NormalizePercent(value, ZeroFill)
}

// Deref returns a pointer's value or 0.
func Deref(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

// Float returns a pointer to v, for building Metrics literals.
func Float(v float64) *float64 {
	return &v
}

// Clamp bounds v to [lo, hi].
func Clamp(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParseNumber parses the numbers finance pages print: commas, dollar
// signs, percent signs, parenthesized negatives and T/B/M/K suffixes.
// Unparseable input becomes 0, matching how the providers report "N/A".
func ParseNumber(text string) float64 {
	if text == "" || text == "N/A" || text == "--" || text == "∞" {
		return 0
	}
	cleaned := strings.NewReplacer(",", "", "$", "", "%", "", "(", "-", ")", "").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(cleaned, "T"):
		multiplier = 1e12
		cleaned = strings.TrimSuffix(cleaned, "T")
	case strings.HasSuffix(cleaned, "B"):
		multiplier = 1e9
		cleaned = strings.TrimSuffix(cleaned, "B")
	case strings.HasSuffix(cleaned, "M"):
		multiplier = 1e6
		cleaned = strings.TrimSuffix(cleaned, "M")
	case strings.HasSuffix(cleaned, "K"):
		multiplier = 1e3
		cleaned = strings.TrimSuffix(cleaned, "K")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		zap.L().Debug("Error parsing number", zap.String("text", text), zap.Error(err))
		return 0
	}
	return f * multiplier
}

// FormatNumber renders large values with a T/B/M/K suffix for checklist
// texts.
func FormatNumber(n float64) string {
	abs := math.Abs(n)
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.1fT", n/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", n/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.0fM", n/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.0fK", n/1e3)
	default:
		return fmt.Sprintf("%.0f", n)
	}
}

// Round2 keeps two decimals for prices and rates in responses.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 keeps one decimal, used for percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NormalizeString lowercases and trims for case-insensitive matching.
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// MatchHeader reports whether a spreadsheet header cell matches any of the
// given patterns, ignoring case and surrounding space.
func MatchHeader(cell string, patterns []string) bool {
	normalized := NormalizeString(cell)
	for _, pattern := range patterns {
		matched, err := regexp.MatchString(pattern, normalized)
		if err != nil {
			zap.L().Debug("Invalid header pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// TickerRe matches plausible US ticker symbols in spreadsheet cells.
var TickerRe = regexp.MustCompile(`^[A-Z]{1,5}(?:[.-][A-Z])?$`)

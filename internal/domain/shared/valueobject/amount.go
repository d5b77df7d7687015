package valueobject

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount normalizes a textual amount into a decimal with fixed
// two-decimal precision. Upstream data mixes locale conventions, so both
// "1.234,56" and "1,234.56" (and plain "1234.56" / "1234,56") are accepted.
// Anything unparseable or non-finite becomes zero.
func ParseAmount(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The rightmost separator is the decimal mark, the other one groups
		// thousands.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// A single comma is a decimal mark; repeated commas are grouping.
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	}

	// Reject non-finite textual forms before handing to decimal.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

// SanitizeAmount clamps a decimal to fixed two-decimal precision.
// It is the single normalization point for amounts already typed as decimals.
func SanitizeAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain dot decimal", "1234.56", "1234.56"},
		{"plain comma decimal", "1234,56", "1234.56"},
		{"dot grouping comma decimal", "1.234,56", "1234.56"},
		{"comma grouping dot decimal", "1,234.56", "1234.56"},
		{"integer", "500", "500"},
		{"surrounding spaces", "  42,10  ", "42.1"},
		{"many decimals rounded", "10.005", "10.01"},
		{"repeated commas treated as grouping", "1,234,567", "1234567"},
		{"negative comma decimal", "-12,50", "-12.5"},
		{"empty", "", "0"},
		{"garbage", "abc", "0"},
		{"nan", "NaN", "0"},
		{"positive infinity", "Inf", "0"},
		{"negative infinity", "-Inf", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.raw)
			want, err := decimal.NewFromString(tt.want)
			assert.NoError(t, err)
			assert.True(t, got.Equal(want), "ParseAmount(%q) = %s, want %s", tt.raw, got, want)
		})
	}
}

func TestSanitizeAmount(t *testing.T) {
	d := decimal.RequireFromString("99.999")
	assert.Equal(t, "100", SanitizeAmount(d).String())

	d = decimal.RequireFromString("10.004")
	assert.Equal(t, "10", SanitizeAmount(d).StringFixed(0))
	assert.Equal(t, "10.00", SanitizeAmount(d).StringFixed(2))
}

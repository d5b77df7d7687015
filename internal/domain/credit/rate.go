package credit

import (
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// NormalizeRate reconciles the two interchangeable rate representations found
// upstream: "0.60" and "60" both mean sixty percent. Values in (0,1] are read
// as fractions and scaled to percent; larger positive values pass through;
// zero or negative input falls back.
func NormalizeRate(raw, fallback decimal.Decimal) decimal.Decimal {
	if raw.LessThanOrEqual(decimal.Zero) {
		return fallback
	}
	if raw.LessThanOrEqual(one) {
		return raw.Mul(decimal.NewFromInt(100))
	}
	return raw
}

// MinimumTermRate prorates the base rate over the credit's term, never below
// the base itself: rate = max(base, base * installments / nominalPeriods).
// The base rate is defined for one nominal period (4 weeks, 2 biweeks or
// 1 month), so longer terms scale linearly while shorter terms still pay the
// full base.
func MinimumTermRate(base decimal.Decimal, installments int, unit PeriodUnit) decimal.Decimal {
	nominal := decimal.NewFromInt(int64(unit.NominalPeriods()))
	prorated := base.Mul(decimal.NewFromInt(int64(installments))).Div(nominal)
	if prorated.LessThan(base) {
		return base
	}
	return prorated
}

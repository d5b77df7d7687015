package credit

import (
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RefinanceOption selects the rate applied to a refinanced credit.
type RefinanceOption string

const (
	RefinanceTierReduced RefinanceOption = "TIER_REDUCED" // fixed discounted tier
	RefinanceTierMinimum RefinanceOption = "TIER_MINIMUM" // fixed minimum tier
	RefinanceManual      RefinanceOption = "MANUAL"       // privileged free-form rate
)

// IsValid checks if the refinance option is valid
func (o RefinanceOption) IsValid() bool {
	switch o {
	case RefinanceTierReduced, RefinanceTierMinimum, RefinanceManual:
		return true
	}
	return false
}

// RefinanceTerms are the new-credit terms requested for a refinancing.
type RefinanceTerms struct {
	Option           RefinanceOption
	ManualRate       decimal.Decimal // percent per month; MANUAL option only
	InstallmentCount int
	Period           PeriodUnit
}

// ResolveRefinanceRate converts the chosen option into the total interest
// percentage of the new credit: the monthly tier (or manual) rate is scaled
// to one period of the new schedule, then multiplied by the installment
// count. Interest is simple, never compounding.
func ResolveRefinanceRate(terms RefinanceTerms, cfg Config, identity shared.Identity) (decimal.Decimal, error) {
	if !terms.Option.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_REFINANCE_OPTION", "Unknown refinancing option")
	}
	if !terms.Period.IsValid() {
		return decimal.Zero, shared.NewDomainError("INVALID_PERIOD", "Unknown period unit")
	}
	if terms.InstallmentCount < 1 {
		return decimal.Zero, shared.NewDomainError("INVALID_INSTALLMENT_COUNT", "Installment count must be at least 1")
	}

	var monthly decimal.Decimal
	switch terms.Option {
	case RefinanceTierReduced:
		monthly = cfg.TierReduced
	case RefinanceTierMinimum:
		monthly = cfg.TierMinimum
	case RefinanceManual:
		if !identity.Privileged {
			return decimal.Zero, shared.NewDomainError("FORBIDDEN", "Manual refinancing rate requires a privileged actor")
		}
		monthly = NormalizeRate(terms.ManualRate, cfg.TierMinimum)
	}

	perPeriod := monthly.
		Mul(decimal.NewFromInt(int64(terms.Period.Days()))).
		Div(decimal.NewFromInt(30))
	return perPeriod.Mul(decimal.NewFromInt(int64(terms.InstallmentCount))), nil
}

// ScheduledExposure is the base amount carried into a refinancing for a fixed
// or progressive credit: outstanding balance plus the mora pending on its
// collectable installments. Accrual must be refreshed first.
func ScheduledExposure(c *Credit, installments []Installment) decimal.Decimal {
	exposure := c.Balance
	for idx := range installments {
		if installments[idx].Status.Collectable() {
			exposure = exposure.Add(installments[idx].Mora)
		}
	}
	return exposure.Round(2)
}

// OpenExposure is the base amount for an open credit: the exact payoff today.
func OpenExposure(state CycleState) decimal.Decimal {
	return state.TotalDue().Round(2)
}

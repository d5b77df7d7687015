package credit

import (
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountBase selects what a settlement discount is computed against.
type DiscountBase string

const (
	DiscountBaseMora  DiscountBase = "MORA"  // default: discount eats into late fees only
	DiscountBaseTotal DiscountBase = "TOTAL" // discount allocated mora, then interest, then principal
)

// IsValid checks if the discount base is valid
func (b DiscountBase) IsValid() bool {
	return b == DiscountBaseMora || b == DiscountBaseTotal
}

// InstallmentPayoff is one installment's contribution to an early payoff.
type InstallmentPayoff struct {
	Index     int // position into the installments slice handed to the planner
	Principal decimal.Decimal
	Mora      decimal.Decimal
}

// Payoff is the full early-payoff computation for a credit as of today.
// Interest is nonzero only for open-modality credits, where it comes from the
// cycle read model.
type Payoff struct {
	Items     []InstallmentPayoff
	Principal decimal.Decimal
	Interest  decimal.Decimal
	Mora      decimal.Decimal
}

// Total returns the payoff total before any discount.
func (p Payoff) Total() decimal.Decimal {
	return p.Principal.Add(p.Interest).Add(p.Mora)
}

// IsSettled reports whether nothing is pending.
func (p Payoff) IsSettled() bool {
	return !p.Total().IsPositive()
}

// ComputeScheduledPayoff derives the payoff of a fixed or progressive credit
// from its installments. Accrual must have been refreshed first so that mora
// is never stale.
func ComputeScheduledPayoff(installments []Installment) Payoff {
	payoff := Payoff{Principal: decimal.Zero, Interest: decimal.Zero, Mora: decimal.Zero}
	for idx := range installments {
		inst := &installments[idx]
		if !inst.Status.Collectable() {
			continue
		}
		item := InstallmentPayoff{
			Index:     idx,
			Principal: inst.Pending(),
			Mora:      inst.Mora,
		}
		if !item.Principal.IsPositive() && !item.Mora.IsPositive() {
			continue
		}
		payoff.Items = append(payoff.Items, item)
		payoff.Principal = payoff.Principal.Add(item.Principal)
		payoff.Mora = payoff.Mora.Add(item.Mora)
	}
	return payoff
}

// ComputeOpenPayoff derives the payoff of an open credit from its cycle
// state. The single revolving installment is item zero.
func ComputeOpenPayoff(state CycleState) Payoff {
	payoff := Payoff{
		Principal: state.Principal,
		Interest:  state.InterestPending,
		Mora:      state.Mora,
	}
	if payoff.Total().IsPositive() {
		payoff.Items = []InstallmentPayoff{{Index: 0, Principal: state.Principal, Mora: state.Mora}}
	}
	return payoff
}

// SettlementPlan is the fully allocated outcome of an early payoff: how much
// cash is collected, how much of each component is discounted, and the
// per-installment principal discount to record on close.
type SettlementPlan struct {
	Payoff                Payoff
	DiscountTotal         decimal.Decimal
	DiscountMora          decimal.Decimal
	DiscountInterest      decimal.Decimal
	DiscountPrincipal     decimal.Decimal
	PrincipalPaid         decimal.Decimal
	InterestPaid          decimal.Decimal
	MoraPaid              decimal.Decimal
	ItemPrincipalDiscount []decimal.Decimal // indexed like Payoff.Items
}

// AmountDue is the cash the borrower hands over.
func (sp SettlementPlan) AmountDue() decimal.Decimal {
	return sp.PrincipalPaid.Add(sp.InterestPaid).Add(sp.MoraPaid)
}

// PlanSettlement allocates an optional discount over a payoff.
//
// With base MORA the discount applies only against pending mora,
// proportionally to each installment's mora share. With base TOTAL the
// discount amount is taken from the payoff total and allocated sequentially
// mora, then interest, then principal, each capped at its own pending amount:
// the allocation can never turn a component negative.
func PlanSettlement(payoff Payoff, discountPct decimal.Decimal, base DiscountBase) (SettlementPlan, error) {
	if discountPct.IsNegative() || discountPct.GreaterThan(decimal.NewFromInt(100)) {
		return SettlementPlan{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount percentage must be between 0 and 100")
	}
	if base == "" {
		base = DiscountBaseMora
	}
	if !base.IsValid() {
		return SettlementPlan{}, shared.NewDomainError("INVALID_DISCOUNT", "Unknown discount base")
	}

	plan := SettlementPlan{
		Payoff:                payoff,
		DiscountTotal:         decimal.Zero,
		DiscountMora:          decimal.Zero,
		DiscountInterest:      decimal.Zero,
		DiscountPrincipal:     decimal.Zero,
		ItemPrincipalDiscount: make([]decimal.Decimal, len(payoff.Items)),
	}
	for i := range plan.ItemPrincipalDiscount {
		plan.ItemPrincipalDiscount[i] = decimal.Zero
	}

	hundred := decimal.NewFromInt(100)
	switch base {
	case DiscountBaseMora:
		plan.DiscountMora = payoff.Mora.Mul(discountPct).Div(hundred).Round(2)
	case DiscountBaseTotal:
		requested := payoff.Total().Mul(discountPct).Div(hundred).Round(2)

		plan.DiscountMora = decimal.Min(requested, payoff.Mora)
		remaining := requested.Sub(plan.DiscountMora)

		plan.DiscountInterest = decimal.Min(remaining, payoff.Interest)
		remaining = remaining.Sub(plan.DiscountInterest)

		plan.DiscountPrincipal = decimal.Min(remaining, payoff.Principal)
	}

	plan.DiscountTotal = plan.DiscountMora.Add(plan.DiscountInterest).Add(plan.DiscountPrincipal)
	plan.PrincipalPaid = payoff.Principal.Sub(plan.DiscountPrincipal)
	plan.InterestPaid = payoff.Interest.Sub(plan.DiscountInterest)
	plan.MoraPaid = payoff.Mora.Sub(plan.DiscountMora)

	// Spread the principal discount across installments in ascending order so
	// rounding lands deterministically.
	remaining := plan.DiscountPrincipal
	for i, item := range payoff.Items {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, item.Principal)
		plan.ItemPrincipalDiscount[i] = take
		remaining = remaining.Sub(take)
	}

	return plan, nil
}

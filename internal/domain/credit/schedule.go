package credit

import (
	"fmt"
	"time"

	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GenerateSchedule builds the full installment plan for a credit. The caller
// replaces any existing installments with the result; partial regeneration is
// never done.
//
// For fixed and progressive modalities the per-installment rounding remainder
// is assigned to the last installment so the schedule sums to the total
// payable exactly, to the cent. Installments are returned in ascending
// sequence order.
func GenerateSchedule(c *Credit) ([]Installment, error) {
	switch c.Modality {
	case ModalityFixed:
		return fixedSchedule(c), nil
	case ModalityProgressive:
		return progressiveSchedule(c), nil
	case ModalityOpen:
		return openSchedule(c), nil
	default:
		return nil, ErrUnknownModality(c.Modality)
	}
}

func fixedSchedule(c *Credit) []Installment {
	n := c.InstallmentCount
	per := c.Total.Div(decimal.NewFromInt(int64(n))).Round(2)

	installments := make([]Installment, 0, n)
	accumulated := decimal.Zero
	for k := 1; k <= n; k++ {
		amount := per
		if k == n {
			amount = c.Total.Sub(accumulated)
		}
		installments = append(installments, NewInstallment(c.ID, k, amount, dueDate(c, k)))
		accumulated = accumulated.Add(amount)
	}
	return installments
}

func progressiveSchedule(c *Credit) []Installment {
	n := c.InstallmentCount
	// Triangular weighting: installment k carries k parts of N(N+1)/2.
	denominator := decimal.NewFromInt(int64(n * (n + 1) / 2))

	installments := make([]Installment, 0, n)
	accumulated := decimal.Zero
	for k := 1; k <= n; k++ {
		var amount decimal.Decimal
		if k == n {
			amount = c.Total.Sub(accumulated)
		} else {
			amount = c.Total.Mul(decimal.NewFromInt(int64(k))).Div(denominator).Round(2)
		}
		installments = append(installments, NewInstallment(c.ID, k, amount, dueDate(c, k)))
		accumulated = accumulated.Add(amount)
	}
	return installments
}

func openSchedule(c *Credit) []Installment {
	// One revolving installment holding the outstanding principal. The due
	// date is a sentinel; cycle due dates are derived from the commitment
	// date by the accrual engine.
	return []Installment{NewInstallment(c.ID, 1, c.Balance, OpenDueDate)}
}

func dueDate(c *Credit, k int) time.Time {
	return c.CommittedAt.AddDate(0, 0, k*c.Period.Days())
}

// ErrUnknownModality builds the validation error for an unsupported modality.
func ErrUnknownModality(m Modality) error {
	return shared.NewDomainError("INVALID_MODALITY", fmt.Sprintf("Unknown modality %q", m))
}

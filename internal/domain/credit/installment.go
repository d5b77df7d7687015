package credit

import (
	"time"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents the status of an installment
type InstallmentStatus string

const (
	InstallmentStatusPending    InstallmentStatus = "PENDING"
	InstallmentStatusPartial    InstallmentStatus = "PARTIAL"    // Some payment applied, not closed
	InstallmentStatusPaid       InstallmentStatus = "PAID"       // Closed by collection
	InstallmentStatusOverdue    InstallmentStatus = "OVERDUE"    // Past due, accruing mora
	InstallmentStatusRefinanced InstallmentStatus = "REFINANCED" // Closed by refinancing, payment history preserved
	InstallmentStatusVoid       InstallmentStatus = "VOID"       // Annulled with its credit
)

// IsValid checks if the status is a valid InstallmentStatus
func (s InstallmentStatus) IsValid() bool {
	switch s {
	case InstallmentStatusPending, InstallmentStatusPartial, InstallmentStatusPaid,
		InstallmentStatusOverdue, InstallmentStatusRefinanced, InstallmentStatusVoid:
		return true
	}
	return false
}

// String returns the string representation of InstallmentStatus
func (s InstallmentStatus) String() string {
	return string(s)
}

// IsTerminal returns true once the installment no longer collects
func (s InstallmentStatus) IsTerminal() bool {
	return s == InstallmentStatusPaid || s == InstallmentStatusRefinanced || s == InstallmentStatusVoid
}

// Collectable returns true while the installment still participates in
// accrual and settlement
func (s InstallmentStatus) Collectable() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusPartial || s == InstallmentStatusOverdue
}

// Installment is one scheduled collection of a credit. Open-modality credits
// carry exactly one installment that is refreshed in place each cycle.
type Installment struct {
	shared.BaseEntity
	CreditID        uuid.UUID
	Number          int // 1-based position in the schedule
	Amount          decimal.Decimal
	DueDate         time.Time
	Status          InstallmentStatus
	Paid            decimal.Decimal // accumulated collections
	Discount        decimal.Decimal // accumulated discounts
	Mora            decimal.Decimal // late fee accrued as of the last refresh
	PaymentMethodID *uuid.UUID
}

// NewInstallment creates a pending installment for a credit
func NewInstallment(creditID uuid.UUID, number int, amount decimal.Decimal, dueDate time.Time) Installment {
	return Installment{
		BaseEntity: shared.NewBaseEntity(),
		CreditID:   creditID,
		Number:     number,
		Amount:     amount,
		DueDate:    shared.DateOnly(dueDate),
		Status:     InstallmentStatusPending,
		Paid:       decimal.Zero,
		Discount:   decimal.Zero,
		Mora:       decimal.Zero,
	}
}

// Pending returns the principal still owed on this installment:
// scheduled amount minus collections and discounts, never negative.
func (i *Installment) Pending() decimal.Decimal {
	p := i.Amount.Sub(i.Paid).Sub(i.Discount)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Close settles the installment, recording the collected and discounted
// amounts and zeroing any remaining mora. The accumulated-paid plus
// accumulated-discount never exceeds the scheduled amount.
func (i *Installment) Close(paid, discount decimal.Decimal, methodID *uuid.UUID) error {
	if i.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Installment is already closed")
	}
	i.Paid = i.Paid.Add(paid)
	i.Discount = i.Discount.Add(discount)
	if i.Paid.Add(i.Discount).GreaterThan(i.Amount) {
		// Clamp collection to the scheduled amount; overshoot is mora or
		// interest and is accounted on the payment, not here.
		i.Paid = i.Amount.Sub(i.Discount)
	}
	i.Mora = decimal.Zero
	i.Status = InstallmentStatusPaid
	i.PaymentMethodID = methodID
	i.UpdatedAt = time.Now()
	return nil
}

// MarkRefinanced closes the installment as refinanced, preserving its payment
// history instead of deleting the row.
func (i *Installment) MarkRefinanced() {
	i.Status = InstallmentStatusRefinanced
	i.Mora = decimal.Zero
	i.UpdatedAt = time.Now()
}

// HasPayments reports whether any amount was ever collected against this
// installment.
func (i *Installment) HasPayments() bool {
	return i.Paid.IsPositive()
}

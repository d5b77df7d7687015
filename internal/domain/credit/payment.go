package credit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Payment is one monetary event against a credit. A settlement synthesizes
// exactly one aggregate payment spanning every installment it closes.
type Payment struct {
	shared.BaseEntity
	CreditID        uuid.UUID
	InstallmentID   *uuid.UUID // nil for aggregate settlement payments
	Amount          decimal.Decimal
	PaidAt          time.Time
	PaymentMethodID uuid.UUID
	Note            string
}

// NewPayment creates a payment record. A zero amount is valid: a fully
// discounted settlement still records its aggregate payment.
func NewPayment(creditID uuid.UUID, installmentID *uuid.UUID, amount decimal.Decimal, paidAt time.Time, methodID uuid.UUID, note string) (*Payment, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if methodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}
	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		CreditID:        creditID,
		InstallmentID:   installmentID,
		Amount:          amount.Round(2),
		PaidAt:          shared.DateOnly(paidAt),
		PaymentMethodID: methodID,
		Note:            note,
	}, nil
}

// Receipt is the printable snapshot emitted 1:1 with a payment. It freezes
// the figures of the settlement event: balances around it, the collected
// components and the discount granted.
type Receipt struct {
	shared.BaseEntity
	Number             int64 // sequential, human-visible
	PaymentID          uuid.UUID
	CreditID           uuid.UUID
	BalanceBefore      decimal.Decimal
	BalanceAfter       decimal.Decimal
	PrincipalCollected decimal.Decimal
	InterestCollected  decimal.Decimal
	MoraCollected      decimal.Decimal
	DiscountApplied    decimal.Decimal
	IssuedAt           time.Time
}

// NewReceipt creates a receipt for a payment
func NewReceipt(number int64, payment *Payment, balanceBefore, balanceAfter, principal, interest, mora, discount decimal.Decimal) *Receipt {
	return &Receipt{
		BaseEntity:         shared.NewBaseEntity(),
		Number:             number,
		PaymentID:          payment.ID,
		CreditID:           payment.CreditID,
		BalanceBefore:      balanceBefore.Round(2),
		BalanceAfter:       balanceAfter.Round(2),
		PrincipalCollected: principal.Round(2),
		InterestCollected:  interest.Round(2),
		MoraCollected:      mora.Round(2),
		DiscountApplied:    discount.Round(2),
		IssuedAt:           time.Now(),
	}
}

// DisplayNumber formats the sequential receipt number for printing.
func (r *Receipt) DisplayNumber() string {
	return fmt.Sprintf("REC-%06d", r.Number)
}

// TotalCollected returns the sum of the three collected components.
func (r *Receipt) TotalCollected() decimal.Decimal {
	return r.PrincipalCollected.Add(r.InterestCollected).Add(r.MoraCollected)
}

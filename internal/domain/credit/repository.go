package credit

import (
	"context"

	"github.com/google/uuid"
)

// CreditRepository persists Credit aggregates
type CreditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Credit, error)
	// FindByIDForUpdate loads the credit under a pessimistic row lock for the
	// duration of the surrounding unit of work. Settlement and refinancing
	// must hold it so two concurrent operations cannot double-spend the same
	// balance.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Credit, error)
	FindByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]Credit, error)
	// FindActiveIDs lists the ids of every credit still collecting. Feeds the
	// nightly accrual sweep.
	FindActiveIDs(ctx context.Context) ([]uuid.UUID, error)
	Create(ctx context.Context, c *Credit) error
	Save(ctx context.Context, c *Credit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstallmentRepository persists the installments of a credit. All reads
// return installments in ascending sequence order so mutations apply
// deterministically.
type InstallmentRepository interface {
	FindByCredit(ctx context.Context, creditID uuid.UUID) ([]Installment, error)
	// ReplaceForCredit deletes the credit's installments and inserts the new
	// schedule in one pass.
	ReplaceForCredit(ctx context.Context, creditID uuid.UUID, installments []Installment) error
	// Upsert inserts the installment or updates it if the row already exists.
	// The single consolidation point for recreate-if-missing behavior.
	Upsert(ctx context.Context, inst *Installment) error
	SaveAll(ctx context.Context, installments []Installment) error
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	DeleteByCredit(ctx context.Context, creditID uuid.UUID) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	Create(ctx context.Context, p *Payment) error
	FindByCredit(ctx context.Context, creditID uuid.UUID) ([]Payment, error)
	// HasPayments reports whether the credit has any recorded payment. Gates
	// deletion and voiding.
	HasPayments(ctx context.Context, creditID uuid.UUID) (bool, error)
}

// ReceiptRepository persists receipts and owns the sequential numbering
type ReceiptRepository interface {
	Create(ctx context.Context, r *Receipt) error
	FindByPayment(ctx context.Context, paymentID uuid.UUID) (*Receipt, error)
	// NextNumber returns the next sequential receipt number. Called inside
	// the settlement unit of work.
	NextNumber(ctx context.Context) (int64, error)
}

// BorrowerDirectory is the read-only lookup into the client directory.
type BorrowerDirectory interface {
	DisplayName(ctx context.Context, borrowerID uuid.UUID) (string, error)
}

// MethodCatalog is the read-only payment-method catalog.
type MethodCatalog interface {
	Label(ctx context.Context, methodID uuid.UUID) (string, error)
	Exists(ctx context.Context, methodID uuid.UUID) (bool, error)
}

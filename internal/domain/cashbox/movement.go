package cashbox

import (
	"time"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MovementType represents the direction or nature of a cash movement
type MovementType string

const (
	MovementInflow     MovementType = "INFLOW"
	MovementOutflow    MovementType = "OUTFLOW"
	MovementAdjustment MovementType = "ADJUSTMENT"
	MovementOpening    MovementType = "OPENING"
	MovementClosing    MovementType = "CLOSING"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementInflow, MovementOutflow, MovementAdjustment, MovementOpening, MovementClosing:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// SourceKey identifies the business record a movement mirrors. The ledger
// holds at most one movement per (type, source type, source id), which is
// what makes synchronization idempotent under retries.
type SourceKey struct {
	Type       MovementType
	SourceType string
	SourceID   uuid.UUID
}

// Well-known source entity types feeding the ledger.
const (
	SourceCredit      = "credit"
	SourceReceipt     = "receipt"
	SourcePurchase    = "purchase"
	SourceExpense     = "expense"
	SourceSale        = "sale"
	SourceSaleCapital = "sale_capital" // mirrored capital outflow of a financed sale
)

// CashMovement is one append-mostly row of the shared cash ledger. Date is
// the business day the movement belongs to; Time keeps the exact instant it
// was recorded.
type CashMovement struct {
	shared.BaseEntity
	Date            time.Time
	Time            time.Time
	Type            MovementType
	Amount          decimal.Decimal
	PaymentMethodID *uuid.UUID
	Concept         string
	SourceType      *string
	SourceID        *uuid.UUID
	OperatorID      *uuid.UUID
}

// NewCashMovement creates a movement tied to a source business record.
func NewCashMovement(key SourceKey, amount decimal.Decimal, date time.Time, concept string, methodID, operatorID *uuid.UUID) (*CashMovement, error) {
	if !key.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVEMENT_TYPE", "Unknown cash movement type")
	}
	if key.SourceType == "" || key.SourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source type and source id are required")
	}
	sourceType := key.SourceType
	sourceID := key.SourceID
	return &CashMovement{
		BaseEntity:      shared.NewBaseEntity(),
		Date:            shared.DateOnly(date),
		Time:            date,
		Type:            key.Type,
		Amount:          amount.Round(2),
		PaymentMethodID: methodID,
		Concept:         concept,
		SourceType:      &sourceType,
		SourceID:        &sourceID,
		OperatorID:      operatorID,
	}, nil
}

// Key returns the movement's idempotency key, or false when the movement is
// not tied to a source record.
func (m *CashMovement) Key() (SourceKey, bool) {
	if m.SourceType == nil || m.SourceID == nil {
		return SourceKey{}, false
	}
	return SourceKey{Type: m.Type, SourceType: *m.SourceType, SourceID: *m.SourceID}, true
}

// Update refreshes the mutable figures of a movement from its source record.
func (m *CashMovement) Update(amount decimal.Decimal, date time.Time, concept string, methodID *uuid.UUID) {
	m.Amount = amount.Round(2)
	m.Date = shared.DateOnly(date)
	m.Time = date
	m.Concept = concept
	m.PaymentMethodID = methodID
	m.UpdatedAt = time.Now()
}

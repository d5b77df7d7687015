package credit

import (
	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event names raised by the Credit aggregate
const (
	EventCreditCreated    = "credit.created"
	EventCreditSettled    = "credit.settled"
	EventCreditRefinanced = "credit.refinanced"
	EventCreditVoided     = "credit.voided"
)

// CreditCreatedEvent is raised when a credit is originated
type CreditCreatedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID
	Principal  decimal.Decimal
	Modality   Modality
}

// NewCreditCreatedEvent creates a CreditCreatedEvent
func NewCreditCreatedEvent(c *Credit) CreditCreatedEvent {
	return CreditCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCreditCreated, c.ID),
		BorrowerID:      c.BorrowerID,
		Principal:       c.Principal,
		Modality:        c.Modality,
	}
}

// CreditSettledEvent is raised when a credit is fully paid off
type CreditSettledEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID
}

// NewCreditSettledEvent creates a CreditSettledEvent
func NewCreditSettledEvent(c *Credit) CreditSettledEvent {
	return CreditSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCreditSettled, c.ID),
		BorrowerID:      c.BorrowerID,
	}
}

// CreditRefinancedEvent is raised when a credit's exposure moves to a new credit
type CreditRefinancedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID
}

// NewCreditRefinancedEvent creates a CreditRefinancedEvent
func NewCreditRefinancedEvent(c *Credit) CreditRefinancedEvent {
	return CreditRefinancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCreditRefinanced, c.ID),
		BorrowerID:      c.BorrowerID,
	}
}

// CreditVoidedEvent is raised when a credit is annulled
type CreditVoidedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID
}

// NewCreditVoidedEvent creates a CreditVoidedEvent
func NewCreditVoidedEvent(c *Credit) CreditVoidedEvent {
	return CreditVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventCreditVoided, c.ID),
		BorrowerID:      c.BorrowerID,
	}
}

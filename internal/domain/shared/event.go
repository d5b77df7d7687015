package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is raised by aggregates when something business-relevant happens
type DomainEvent interface {
	EventName() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// BaseDomainEvent provides common fields for domain events
type BaseDomainEvent struct {
	Name         string
	AggregateRef uuid.UUID
	Timestamp    time.Time
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(name string, aggregateID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		Name:         name,
		AggregateRef: aggregateID,
		Timestamp:    time.Now(),
	}
}

// EventName returns the event name
func (e BaseDomainEvent) EventName() string {
	return e.Name
}

// AggregateID returns the ID of the aggregate that raised the event
func (e BaseDomainEvent) AggregateID() uuid.UUID {
	return e.AggregateRef
}

// OccurredAt returns when the event occurred
func (e BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

package cashbox

import (
	"context"

	"github.com/google/uuid"
)

// CashMovementRepository persists cash movements. Lookups by source key are
// the backbone of idempotent synchronization: the ledger never holds two
// rows for the same key.
type CashMovementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CashMovement, error)
	// FindByKey returns the movement matching the source key, or
	// shared.ErrNotFound.
	FindByKey(ctx context.Context, key SourceKey) (*CashMovement, error)
	FindBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]CashMovement, error)
	Create(ctx context.Context, m *CashMovement) error
	Save(ctx context.Context, m *CashMovement) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteBySource removes every movement mirroring the source record,
	// optionally narrowed to one movement type.
	DeleteBySource(ctx context.Context, sourceType string, sourceID uuid.UUID, movementType *MovementType) error
}

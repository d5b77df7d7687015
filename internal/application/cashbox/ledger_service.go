package cashbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerService synchronizes business records into the cash ledger. Every
// movement is keyed by (type, source type, source id), so registering the
// same source twice leaves the existing row untouched instead of
// duplicating it.
type LedgerService struct {
	movementRepo cashbox.CashMovementRepository
	uow          shared.UnitOfWork
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(movementRepo cashbox.CashMovementRepository, uow shared.UnitOfWork) *LedgerService {
	return &LedgerService{
		movementRepo: movementRepo,
		uow:          uow,
	}
}

// MovementInput carries the figures of one source record to mirror. Amount is
// textual and locale-tolerant; it is normalized through ParseAmount.
type MovementInput struct {
	SourceType      string
	SourceID        uuid.UUID
	Amount          string
	Date            time.Time
	Concept         string
	PaymentMethodID *uuid.UUID
	OperatorID      *uuid.UUID
}

// SyncInput extends MovementInput for sources that may be financed. A
// financed source keeps its primary movement but additionally mirrors the
// capital that left the drawer as a secondary outflow.
type SyncInput struct {
	MovementInput
	Financed      bool
	CapitalAmount string // capital portion mirrored when financed
}

// RegisterInflow records cash entering the drawer for a source record.
// Calling it again for the same source returns the existing row unchanged.
func (s *LedgerService) RegisterInflow(ctx context.Context, in MovementInput) (*cashbox.CashMovement, error) {
	return s.register(ctx, cashbox.MovementInflow, in)
}

// RegisterOutflow records cash leaving the drawer for a source record.
func (s *LedgerService) RegisterOutflow(ctx context.Context, in MovementInput) (*cashbox.CashMovement, error) {
	return s.register(ctx, cashbox.MovementOutflow, in)
}

func (s *LedgerService) register(ctx context.Context, movementType cashbox.MovementType, in MovementInput) (*cashbox.CashMovement, error) {
	key := cashbox.SourceKey{Type: movementType, SourceType: in.SourceType, SourceID: in.SourceID}

	existing, err := s.movementRepo.FindByKey(ctx, key)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	return s.create(ctx, key, in)
}

// upsert refreshes the matching row in place, creating it when absent. Only
// source-driven updates go through here; plain registration never rewrites.
func (s *LedgerService) upsert(ctx context.Context, movementType cashbox.MovementType, in MovementInput) (*cashbox.CashMovement, error) {
	key := cashbox.SourceKey{Type: movementType, SourceType: in.SourceType, SourceID: in.SourceID}

	existing, err := s.movementRepo.FindByKey(ctx, key)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		existing.Update(valueobject.ParseAmount(in.Amount), in.Date, in.Concept, in.PaymentMethodID)
		if err := s.movementRepo.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	return s.create(ctx, key, in)
}

func (s *LedgerService) create(ctx context.Context, key cashbox.SourceKey, in MovementInput) (*cashbox.CashMovement, error) {
	movement, err := cashbox.NewCashMovement(key, valueobject.ParseAmount(in.Amount), in.Date, in.Concept, in.PaymentMethodID, in.OperatorID)
	if err != nil {
		return nil, err
	}
	if err := s.movementRepo.Create(ctx, movement); err != nil {
		return nil, err
	}
	return movement, nil
}

// UpdateFromSource refreshes the primary movement of a source record and
// reconciles its financed mirror in one transaction. When the source is
// financed, a capital outflow keyed under the sale-capital source type is
// created or updated alongside; when the financing flag clears, the mirror
// is removed.
func (s *LedgerService) UpdateFromSource(ctx context.Context, movementType cashbox.MovementType, in SyncInput) (*cashbox.CashMovement, error) {
	var movement *cashbox.CashMovement
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		movement, err = s.upsert(ctx, movementType, in.MovementInput)
		if err != nil {
			return err
		}

		if in.Financed {
			mirror := MovementInput{
				SourceType:      cashbox.SourceSaleCapital,
				SourceID:        in.SourceID,
				Amount:          in.CapitalAmount,
				Date:            in.Date,
				Concept:         in.Concept,
				PaymentMethodID: in.PaymentMethodID,
				OperatorID:      in.OperatorID,
			}
			_, err = s.upsert(ctx, cashbox.MovementOutflow, mirror)
			return err
		}

		outflow := cashbox.MovementOutflow
		return s.movementRepo.DeleteBySource(ctx, cashbox.SourceSaleCapital, in.SourceID, &outflow)
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// DeleteFromSource removes every ledger row mirroring a source record,
// including any financed capital mirror. Safe to call when nothing matches.
func (s *LedgerService) DeleteFromSource(ctx context.Context, sourceType string, sourceID uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.movementRepo.DeleteBySource(ctx, sourceType, sourceID, nil); err != nil {
			return err
		}
		if sourceType == cashbox.SourceSale {
			return s.movementRepo.DeleteBySource(ctx, cashbox.SourceSaleCapital, sourceID, nil)
		}
		return nil
	})
}

// BalanceFor sums the movements of one source record, inflows positive and
// outflows negative. Adjustments keep their signed amount.
func (s *LedgerService) BalanceFor(ctx context.Context, sourceType string, sourceID uuid.UUID) (decimal.Decimal, error) {
	movements, err := s.movementRepo.FindBySource(ctx, sourceType, sourceID)
	if err != nil {
		return decimal.Zero, err
	}
	balance := decimal.Zero
	for i := range movements {
		switch movements[i].Type {
		case cashbox.MovementOutflow:
			balance = balance.Sub(movements[i].Amount)
		default:
			balance = balance.Add(movements[i].Amount)
		}
	}
	return balance, nil
}

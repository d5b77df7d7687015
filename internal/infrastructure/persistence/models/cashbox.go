package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/shared"
)

// CashMovementModel is the persistence model for ledger movements. The
// partial unique index over (type, source_type, source_id) is what makes
// source-keyed synchronization idempotent at the storage level; manual
// movements carry NULL source columns and stay outside the index.
type CashMovementModel struct {
	BaseModel
	Date            time.Time            `gorm:"not null;index"`
	Time            time.Time            `gorm:"not null"`
	Type            cashbox.MovementType `gorm:"type:varchar(20);not null;index;uniqueIndex:idx_movements_source_key,priority:1,where:source_type IS NOT NULL"`
	Amount          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentMethodID *uuid.UUID           `gorm:"type:uuid"`
	Concept         string               `gorm:"type:varchar(300);not null"`
	SourceType      *string              `gorm:"type:varchar(50);uniqueIndex:idx_movements_source_key,priority:2,where:source_type IS NOT NULL"`
	SourceID        *uuid.UUID           `gorm:"type:uuid;uniqueIndex:idx_movements_source_key,priority:3,where:source_type IS NOT NULL"`
	OperatorID      *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CashMovementModel) TableName() string {
	return "cash_movements"
}

// ToDomain converts the persistence model to a domain CashMovement.
func (m *CashMovementModel) ToDomain() *cashbox.CashMovement {
	return &cashbox.CashMovement{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Date:            m.Date,
		Time:            m.Time,
		Type:            m.Type,
		Amount:          m.Amount,
		PaymentMethodID: m.PaymentMethodID,
		Concept:         m.Concept,
		SourceType:      m.SourceType,
		SourceID:        m.SourceID,
		OperatorID:      m.OperatorID,
	}
}

// FromDomain populates the persistence model from a domain CashMovement.
func (m *CashMovementModel) FromDomain(mv *cashbox.CashMovement) {
	m.FromDomainBaseEntity(mv.BaseEntity)
	m.Date = mv.Date
	m.Time = mv.Time
	m.Type = mv.Type
	m.Amount = mv.Amount
	m.PaymentMethodID = mv.PaymentMethodID
	m.Concept = mv.Concept
	m.SourceType = mv.SourceType
	m.SourceID = mv.SourceID
	m.OperatorID = mv.OperatorID
}

// CashMovementModelFromDomain creates a new persistence model from a domain CashMovement.
func CashMovementModelFromDomain(mv *cashbox.CashMovement) *CashMovementModel {
	m := &CashMovementModel{}
	m.FromDomain(mv)
	return m
}

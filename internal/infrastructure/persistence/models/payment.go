package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
)

// PaymentModel is the persistence model for collected payments.
type PaymentModel struct {
	BaseModel
	CreditID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InstallmentID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAt          time.Time       `gorm:"not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Note            string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *credit.Payment {
	return &credit.Payment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CreditID:        m.CreditID,
		InstallmentID:   m.InstallmentID,
		Amount:          m.Amount,
		PaidAt:          m.PaidAt,
		PaymentMethodID: m.PaymentMethodID,
		Note:            m.Note,
	}
}

// FromDomain populates the persistence model from a domain Payment.
func (m *PaymentModel) FromDomain(p *credit.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.CreditID = p.CreditID
	m.InstallmentID = p.InstallmentID
	m.Amount = p.Amount
	m.PaidAt = p.PaidAt
	m.PaymentMethodID = p.PaymentMethodID
	m.Note = p.Note
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *credit.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// ReceiptModel is the persistence model for payment receipts.
type ReceiptModel struct {
	BaseModel
	Number             int64           `gorm:"not null;uniqueIndex"`
	PaymentID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CreditID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	BalanceBefore      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PrincipalCollected decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InterestCollected  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MoraCollected      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountApplied    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IssuedAt           time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt.
func (m *ReceiptModel) ToDomain() *credit.Receipt {
	return &credit.Receipt{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Number:             m.Number,
		PaymentID:          m.PaymentID,
		CreditID:           m.CreditID,
		BalanceBefore:      m.BalanceBefore,
		BalanceAfter:       m.BalanceAfter,
		PrincipalCollected: m.PrincipalCollected,
		InterestCollected:  m.InterestCollected,
		MoraCollected:      m.MoraCollected,
		DiscountApplied:    m.DiscountApplied,
		IssuedAt:           m.IssuedAt,
	}
}

// FromDomain populates the persistence model from a domain Receipt.
func (m *ReceiptModel) FromDomain(r *credit.Receipt) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Number = r.Number
	m.PaymentID = r.PaymentID
	m.CreditID = r.CreditID
	m.BalanceBefore = r.BalanceBefore
	m.BalanceAfter = r.BalanceAfter
	m.PrincipalCollected = r.PrincipalCollected
	m.InterestCollected = r.InterestCollected
	m.MoraCollected = r.MoraCollected
	m.DiscountApplied = r.DiscountApplied
	m.IssuedAt = r.IssuedAt
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *credit.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
)

// CreditModel is the persistence model for the Credit aggregate root.
type CreditModel struct {
	AggregateModel
	BorrowerID       uuid.UUID           `gorm:"type:uuid;not null;index"`
	CollectorID      uuid.UUID           `gorm:"type:uuid;index"`
	Principal        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Rate             decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Modality         credit.Modality     `gorm:"type:varchar(20);not null;index"`
	Period           credit.PeriodUnit   `gorm:"type:varchar(20);not null"`
	InstallmentCount int                 `gorm:"not null"`
	Total            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Balance          decimal.Decimal     `gorm:"type:decimal(18,4);not null;index"`
	AccruedInterest  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	CycleNumber      int                 `gorm:"not null;default:0"`
	CycleCollected   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status           credit.CreditStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	GrantedAt        time.Time           `gorm:"not null"`
	AcceptedAt       *time.Time
	CommittedAt      time.Time  `gorm:"not null;index"`
	OriginID         *uuid.UUID `gorm:"type:uuid;index"`
	FromFinancedSale bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (CreditModel) TableName() string {
	return "credits"
}

// ToDomain converts the persistence model to a domain Credit aggregate.
func (m *CreditModel) ToDomain() *credit.Credit {
	c := &credit.Credit{
		BorrowerID:       m.BorrowerID,
		CollectorID:      m.CollectorID,
		Principal:        m.Principal,
		Rate:             m.Rate,
		Modality:         m.Modality,
		Period:           m.Period,
		InstallmentCount: m.InstallmentCount,
		Total:            m.Total,
		Balance:          m.Balance,
		AccruedInterest:  m.AccruedInterest,
		CycleNumber:      m.CycleNumber,
		CycleCollected:   m.CycleCollected,
		Status:           m.Status,
		GrantedAt:        m.GrantedAt,
		AcceptedAt:       m.AcceptedAt,
		CommittedAt:      m.CommittedAt,
		OriginID:         m.OriginID,
		FromFinancedSale: m.FromFinancedSale,
	}
	m.PopulateAggregateRoot(&c.BaseAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Credit aggregate.
func (m *CreditModel) FromDomain(c *credit.Credit) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.BorrowerID = c.BorrowerID
	m.CollectorID = c.CollectorID
	m.Principal = c.Principal
	m.Rate = c.Rate
	m.Modality = c.Modality
	m.Period = c.Period
	m.InstallmentCount = c.InstallmentCount
	m.Total = c.Total
	m.Balance = c.Balance
	m.AccruedInterest = c.AccruedInterest
	m.CycleNumber = c.CycleNumber
	m.CycleCollected = c.CycleCollected
	m.Status = c.Status
	m.GrantedAt = c.GrantedAt
	m.AcceptedAt = c.AcceptedAt
	m.CommittedAt = c.CommittedAt
	m.OriginID = c.OriginID
	m.FromFinancedSale = c.FromFinancedSale
}

// CreditModelFromDomain creates a new persistence model from a domain Credit.
func CreditModelFromDomain(c *credit.Credit) *CreditModel {
	m := &CreditModel{}
	m.FromDomain(c)
	return m
}

// InstallmentModel is the persistence model for schedule installments.
type InstallmentModel struct {
	BaseModel
	CreditID        uuid.UUID                `gorm:"type:uuid;not null;index:idx_installments_credit_number,priority:1"`
	Number          int                      `gorm:"not null;index:idx_installments_credit_number,priority:2"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	DueDate         time.Time                `gorm:"not null;index"`
	Status          credit.InstallmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Paid            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Mora            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethodID *uuid.UUID               `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() credit.Installment {
	return credit.Installment{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		CreditID:        m.CreditID,
		Number:          m.Number,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		Status:          m.Status,
		Paid:            m.Paid,
		Discount:        m.Discount,
		Mora:            m.Mora,
		PaymentMethodID: m.PaymentMethodID,
	}
}

// FromDomain populates the persistence model from a domain Installment.
func (m *InstallmentModel) FromDomain(i *credit.Installment) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.CreditID = i.CreditID
	m.Number = i.Number
	m.Amount = i.Amount
	m.DueDate = i.DueDate
	m.Status = i.Status
	m.Paid = i.Paid
	m.Discount = i.Discount
	m.Mora = i.Mora
	m.PaymentMethodID = i.PaymentMethodID
}

// InstallmentModelFromDomain creates a new persistence model from a domain Installment.
func InstallmentModelFromDomain(i *credit.Installment) *InstallmentModel {
	m := &InstallmentModel{}
	m.FromDomain(i)
	return m
}

package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment record
func (r *GormPaymentRepository) Create(ctx context.Context, p *credit.Payment) error {
	model := models.PaymentModelFromDomain(p)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Create(model).Error
}

// FindByCredit returns the credit's payments, oldest first
func (r *GormPaymentRepository) FindByCredit(ctx context.Context, creditID uuid.UUID) ([]credit.Payment, error) {
	var paymentModels []models.PaymentModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("paid_at ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]credit.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// HasPayments reports whether the credit has any recorded payment
func (r *GormPaymentRepository) HasPayments(ctx context.Context, creditID uuid.UUID) (bool, error) {
	var count int64
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("credit_id = ?", creditID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ credit.PaymentRepository = (*GormPaymentRepository)(nil)

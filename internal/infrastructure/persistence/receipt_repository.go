package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/infrastructure/persistence/models"
)

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Create inserts a receipt
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *credit.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Create(model).Error
}

// FindByPayment finds the receipt issued for a payment
func (r *GormReceiptRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) (*credit.Receipt, error) {
	var model models.ReceiptModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).First(&model, "payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// NextNumber returns the next sequential receipt number. Callers run it
// inside the settlement unit of work; the unique index on the number column
// turns a lost race into an insert failure instead of a duplicate receipt.
func (r *GormReceiptRepository) NextNumber(ctx context.Context) (int64, error) {
	var max int64
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&models.ReceiptModel{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max + 1, nil
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ credit.ReceiptRepository = (*GormReceiptRepository)(nil)

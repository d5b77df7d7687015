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

// GormBorrowerDirectory implements BorrowerDirectory over the borrowers table
type GormBorrowerDirectory struct {
	db *gorm.DB
}

// NewGormBorrowerDirectory creates a new GormBorrowerDirectory
func NewGormBorrowerDirectory(db *gorm.DB) *GormBorrowerDirectory {
	return &GormBorrowerDirectory{db: db}
}

// DisplayName returns the borrower's display name
func (r *GormBorrowerDirectory) DisplayName(ctx context.Context, borrowerID uuid.UUID) (string, error) {
	var model models.BorrowerModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Select("id", "name").
		First(&model, "id = ?", borrowerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return model.Name, nil
}

// GormMethodCatalog implements MethodCatalog over the payment_methods table
type GormMethodCatalog struct {
	db *gorm.DB
}

// NewGormMethodCatalog creates a new GormMethodCatalog
func NewGormMethodCatalog(db *gorm.DB) *GormMethodCatalog {
	return &GormMethodCatalog{db: db}
}

// Label returns the payment method's display label
func (r *GormMethodCatalog) Label(ctx context.Context, methodID uuid.UUID) (string, error) {
	var model models.PaymentMethodModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Select("id", "label").
		First(&model, "id = ?", methodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return model.Label, nil
}

// Exists reports whether the payment method is active
func (r *GormMethodCatalog) Exists(ctx context.Context, methodID uuid.UUID) (bool, error) {
	var count int64
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&models.PaymentMethodModel{}).
		Where("id = ? AND active = ?", methodID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Ensure the directory implementations satisfy the domain lookups
var (
	_ credit.BorrowerDirectory = (*GormBorrowerDirectory)(nil)
	_ credit.MethodCatalog     = (*GormMethodCatalog)(nil)
)

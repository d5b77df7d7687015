package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/infrastructure/persistence/models"
)

// GormInstallmentRepository implements InstallmentRepository using GORM
type GormInstallmentRepository struct {
	db *gorm.DB
}

// NewGormInstallmentRepository creates a new GormInstallmentRepository
func NewGormInstallmentRepository(db *gorm.DB) *GormInstallmentRepository {
	return &GormInstallmentRepository{db: db}
}

// FindByCredit returns the credit's installments in ascending sequence order
func (r *GormInstallmentRepository) FindByCredit(ctx context.Context, creditID uuid.UUID) ([]credit.Installment, error) {
	var installmentModels []models.InstallmentModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("number ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}

	installments := make([]credit.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = model.ToDomain()
	}
	return installments, nil
}

// ReplaceForCredit deletes the credit's installments and inserts the new
// schedule. Meant to run inside a unit of work so a failed insert cannot
// leave the credit without a schedule.
func (r *GormInstallmentRepository) ReplaceForCredit(ctx context.Context, creditID uuid.UUID, installments []credit.Installment) error {
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Delete(&models.InstallmentModel{}, "credit_id = ?", creditID).Error; err != nil {
		return err
	}
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(&installments[i])
	}
	return db.WithContext(ctx).Create(installmentModels).Error
}

// Upsert inserts the installment or overwrites the existing row
func (r *GormInstallmentRepository) Upsert(ctx context.Context, inst *credit.Installment) error {
	model := models.InstallmentModelFromDomain(inst)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveAll creates or updates multiple installments
func (r *GormInstallmentRepository) SaveAll(ctx context.Context, installments []credit.Installment) error {
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(&installments[i])
	}
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Save(installmentModels).Error
}

// DeleteByIDs removes the given installments
func (r *GormInstallmentRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Delete(&models.InstallmentModel{}, "id IN ?", ids).Error
}

// DeleteByCredit removes every installment of a credit
func (r *GormInstallmentRepository) DeleteByCredit(ctx context.Context, creditID uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Delete(&models.InstallmentModel{}, "credit_id = ?", creditID).Error
}

// Ensure GormInstallmentRepository implements InstallmentRepository
var _ credit.InstallmentRepository = (*GormInstallmentRepository)(nil)

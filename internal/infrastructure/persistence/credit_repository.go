package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/infrastructure/persistence/models"
)

// GormCreditRepository implements CreditRepository using GORM
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// FindByID finds a credit by its ID
func (r *GormCreditRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.Credit, error) {
	var model models.CreditModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads the credit under a pessimistic row lock. Must run
// inside a unit of work so the lock lives until commit.
func (r *GormCreditRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*credit.Credit, error) {
	var model models.CreditModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBorrower finds all credits of a borrower, newest first
func (r *GormCreditRepository) FindByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]credit.Credit, error) {
	var creditModels []models.CreditModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("granted_at DESC, created_at DESC").
		Find(&creditModels).Error; err != nil {
		return nil, err
	}

	credits := make([]credit.Credit, len(creditModels))
	for i, model := range creditModels {
		credits[i] = *model.ToDomain()
	}
	return credits, nil
}

// FindActiveIDs lists the ids of credits still collecting
func (r *GormCreditRepository) FindActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Model(&models.CreditModel{}).
		Where("status IN ?", []string{
			credit.CreditStatusPending.String(),
			credit.CreditStatusOverdue.String(),
		}).
		Order("granted_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts a new credit
func (r *GormCreditRepository) Create(ctx context.Context, c *credit.Credit) error {
	model := models.CreditModelFromDomain(c)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Create(model).Error
}

// Save persists the credit's current state. Concurrent settlement and
// refinancing serialize on the row lock taken by FindByIDForUpdate, so Save
// itself carries no version predicate.
func (r *GormCreditRepository) Save(ctx context.Context, c *credit.Credit) error {
	model := models.CreditModelFromDomain(c)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Save(model).Error
}

// Delete removes a credit row
func (r *GormCreditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).Delete(&models.CreditModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCreditRepository implements CreditRepository
var _ credit.CreditRepository = (*GormCreditRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/infrastructure/persistence/models"
)

// GormCashMovementRepository implements CashMovementRepository using GORM
type GormCashMovementRepository struct {
	db *gorm.DB
}

// NewGormCashMovementRepository creates a new GormCashMovementRepository
func NewGormCashMovementRepository(db *gorm.DB) *GormCashMovementRepository {
	return &GormCashMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormCashMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*cashbox.CashMovement, error) {
	var model models.CashMovementModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByKey returns the movement matching the source key, or shared.ErrNotFound
func (r *GormCashMovementRepository) FindByKey(ctx context.Context, key cashbox.SourceKey) (*cashbox.CashMovement, error) {
	var model models.CashMovementModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("type = ? AND source_type = ? AND source_id = ?", key.Type, key.SourceType, key.SourceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource returns every movement mirroring a source record
func (r *GormCashMovementRepository) FindBySource(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]cashbox.CashMovement, error) {
	var movementModels []models.CashMovementModel
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID).
		Order("date ASC, created_at ASC").
		Find(&movementModels).Error; err != nil {
		return nil, err
	}

	movements := make([]cashbox.CashMovement, len(movementModels))
	for i, model := range movementModels {
		movements[i] = *model.ToDomain()
	}
	return movements, nil
}

// Create inserts a movement. The partial unique index on the source key
// backstops find-or-create races: a duplicate insert surfaces as
// shared.ErrAlreadyExists.
func (r *GormCashMovementRepository) Create(ctx context.Context, m *cashbox.CashMovement) error {
	model := models.CashMovementModelFromDomain(m)
	db := dbFromContext(ctx, r.db)
	if err := db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Save updates a movement
func (r *GormCashMovementRepository) Save(ctx context.Context, m *cashbox.CashMovement) error {
	model := models.CashMovementModelFromDomain(m)
	db := dbFromContext(ctx, r.db)
	return db.WithContext(ctx).Save(model).Error
}

// Delete removes a movement
func (r *GormCashMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbFromContext(ctx, r.db)
	result := db.WithContext(ctx).Delete(&models.CashMovementModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteBySource removes every movement mirroring the source record,
// optionally narrowed to one movement type. Deleting a source that left no
// movements is not an error.
func (r *GormCashMovementRepository) DeleteBySource(ctx context.Context, sourceType string, sourceID uuid.UUID, movementType *cashbox.MovementType) error {
	db := dbFromContext(ctx, r.db)
	query := db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", sourceType, sourceID)
	if movementType != nil {
		query = query.Where("type = ?", *movementType)
	}
	return query.Delete(&models.CashMovementModel{}).Error
}

// Ensure GormCashMovementRepository implements CashMovementRepository
var _ cashbox.CashMovementRepository = (*GormCashMovementRepository)(nil)

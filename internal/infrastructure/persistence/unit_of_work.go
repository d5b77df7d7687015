package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/lending/backend/internal/domain/shared"
)

type txKey struct{}

// withTx returns a context carrying the transaction handle.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// dbFromContext resolves the handle repositories should use: the transaction
// carried by the context when inside a unit of work, the base connection
// otherwise.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// GormUnitOfWork implements shared.UnitOfWork over a GORM connection.
// Repositories constructed from the same connection pick the transaction up
// through the context, so one Execute call spans every repository touched
// inside fn. Nested Execute calls join the transaction already in flight
// rather than opening a second one.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work bound to the given connection
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a single database transaction
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

var _ shared.UnitOfWork = (*GormUnitOfWork)(nil)

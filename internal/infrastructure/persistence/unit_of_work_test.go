package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGormUnitOfWork_Execute(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		uow := NewGormUnitOfWork(gormDB)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "cash_movements" WHERE source_type = \$1 AND source_id = \$2`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewGormCashMovementRepository(gormDB)
		err := uow.Execute(context.Background(), func(ctx context.Context) error {
			return repo.DeleteBySource(ctx, "sale", uuid.New(), nil)
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		uow := NewGormUnitOfWork(gormDB)

		mock.ExpectBegin()
		mock.ExpectRollback()

		wantErr := errors.New("schedule write failed")
		err := uow.Execute(context.Background(), func(ctx context.Context) error {
			return wantErr
		})

		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested execute joins the outer transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		uow := NewGormUnitOfWork(gormDB)

		// A single begin/commit pair even though Execute nests.
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "cash_movements"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		repo := NewGormCashMovementRepository(gormDB)
		err := uow.Execute(context.Background(), func(outer context.Context) error {
			return uow.Execute(outer, func(inner context.Context) error {
				return repo.DeleteBySource(inner, "sale", uuid.New(), nil)
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package cashbox

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCashMovement(t *testing.T) {
	sourceID := uuid.New()
	when := time.Date(2026, 3, 12, 14, 30, 0, 0, time.UTC)

	t.Run("builds a movement keyed to its source", func(t *testing.T) {
		m, err := NewCashMovement(
			SourceKey{Type: MovementInflow, SourceType: SourceReceipt, SourceID: sourceID},
			decimal.NewFromFloat(150.456), when, "Collection receipt", nil, nil,
		)
		require.NoError(t, err)

		assert.Equal(t, "150.46", m.Amount.StringFixed(2))
		assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), m.Date)
		assert.Equal(t, when, m.Time, "the business day is truncated but the instant is kept")

		key, ok := m.Key()
		require.True(t, ok)
		assert.Equal(t, SourceKey{Type: MovementInflow, SourceType: SourceReceipt, SourceID: sourceID}, key)
	})

	t.Run("rejects an unknown movement type", func(t *testing.T) {
		_, err := NewCashMovement(
			SourceKey{Type: "SIDEWAYS", SourceType: SourceCredit, SourceID: sourceID},
			decimal.NewFromInt(10), when, "", nil, nil,
		)
		assert.Error(t, err)
	})

	t.Run("rejects a missing source", func(t *testing.T) {
		_, err := NewCashMovement(
			SourceKey{Type: MovementOutflow, SourceType: "", SourceID: sourceID},
			decimal.NewFromInt(10), when, "", nil, nil,
		)
		assert.Error(t, err)

		_, err = NewCashMovement(
			SourceKey{Type: MovementOutflow, SourceType: SourceCredit, SourceID: uuid.Nil},
			decimal.NewFromInt(10), when, "", nil, nil,
		)
		assert.Error(t, err)
	})
}

func TestCashMovement_Key(t *testing.T) {
	m := &CashMovement{Type: MovementAdjustment}
	_, ok := m.Key()
	assert.False(t, ok, "manual movements carry no idempotency key")
}

func TestCashMovement_Update(t *testing.T) {
	sourceID := uuid.New()
	m, err := NewCashMovement(
		SourceKey{Type: MovementOutflow, SourceType: SourceCredit, SourceID: sourceID},
		decimal.NewFromInt(900), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), "Disbursement", nil, nil,
	)
	require.NoError(t, err)

	methodID := uuid.New()
	m.Update(decimal.NewFromFloat(1200.005), time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC), "Disbursement adjusted", &methodID)

	assert.Equal(t, "1200.01", m.Amount.StringFixed(2))
	assert.Equal(t, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), m.Date)
	assert.Equal(t, time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC), m.Time)
	assert.Equal(t, "Disbursement adjusted", m.Concept)
	require.NotNil(t, m.PaymentMethodID)
	assert.Equal(t, methodID, *m.PaymentMethodID)

	key, ok := m.Key()
	require.True(t, ok)
	assert.Equal(t, MovementOutflow, key.Type)
}

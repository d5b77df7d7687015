package credit

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withStatuses(t *testing.T, statuses ...InstallmentStatus) (*Credit, []Installment) {
	t.Helper()
	c := newTestCredit(t, ModalityFixed, 1000, len(statuses), PeriodMonthly)
	installments, err := GenerateSchedule(c)
	require.NoError(t, err)
	for i, s := range statuses {
		installments[i].Status = s
	}
	return c, installments
}

func TestRecomputeStatus(t *testing.T) {
	t.Run("all paid yields paid", func(t *testing.T) {
		c, installments := withStatuses(t, InstallmentStatusPaid, InstallmentStatusPaid)
		assert.Equal(t, CreditStatusPaid, RecomputeStatus(c, installments))
	})

	t.Run("all unpaid overdue yields overdue", func(t *testing.T) {
		c, installments := withStatuses(t, InstallmentStatusPaid, InstallmentStatusOverdue, InstallmentStatusOverdue)
		assert.Equal(t, CreditStatusOverdue, RecomputeStatus(c, installments))
	})

	t.Run("mixed pending yields pending", func(t *testing.T) {
		c, installments := withStatuses(t, InstallmentStatusOverdue, InstallmentStatusPending)
		assert.Equal(t, CreditStatusPending, RecomputeStatus(c, installments))

		c, installments = withStatuses(t, InstallmentStatusPartial, InstallmentStatusOverdue)
		assert.Equal(t, CreditStatusPending, RecomputeStatus(c, installments))
	})

	t.Run("refinanced installments count as closed", func(t *testing.T) {
		c, installments := withStatuses(t, InstallmentStatusRefinanced, InstallmentStatusPaid)
		assert.Equal(t, CreditStatusPaid, RecomputeStatus(c, installments))
	})

	t.Run("refinanced credit is never recomputed", func(t *testing.T) {
		c, installments := withStatuses(t, InstallmentStatusPending)
		require.NoError(t, c.MarkRefinanced())
		assert.Equal(t, CreditStatusRefinanced, RecomputeStatus(c, installments))
	})

	t.Run("open credits keep their status", func(t *testing.T) {
		c := newTestCredit(t, ModalityOpen, 1000, 1, PeriodMonthly)
		installments, err := GenerateSchedule(c)
		require.NoError(t, err)
		installments[0].Status = InstallmentStatusOverdue
		assert.Equal(t, CreditStatusPending, RecomputeStatus(c, installments))
	})

	t.Run("no installments keeps current status", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 1000, 2, PeriodMonthly)
		assert.Equal(t, CreditStatusPending, RecomputeStatus(c, nil))
	})
}

func TestCreditTransitions(t *testing.T) {
	t.Run("settle zeroes balance and folds residual mora", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 1000, 2, PeriodMonthly)
		require.NoError(t, c.MarkPaid(decimal.NewFromInt(25)))

		assert.Equal(t, CreditStatusPaid, c.Status)
		assert.True(t, c.Balance.IsZero())
		assert.Equal(t, "25", c.AccruedInterest.String())
	})

	t.Run("terminal statuses refuse further transitions", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 1000, 2, PeriodMonthly)
		require.NoError(t, c.MarkRefinanced())

		assert.Error(t, c.MarkRefinanced())
		assert.Error(t, c.MarkPaid(decimal.Zero))
		assert.Error(t, c.Void())
		assert.Equal(t, CreditStatusRefinanced, c.Status)
	})

	t.Run("voiding a paid credit is a conflict", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 1000, 2, PeriodMonthly)
		require.NoError(t, c.MarkPaid(decimal.Zero))
		assert.Error(t, c.Void())
	})

	t.Run("set status never resurrects a terminal credit", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 1000, 2, PeriodMonthly)
		require.NoError(t, c.Void())
		c.SetStatus(CreditStatusPending)
		assert.Equal(t, CreditStatusVoided, c.Status)
	})

	t.Run("reduce balance clamps at zero", func(t *testing.T) {
		c := newTestCredit(t, ModalityFixed, 100, 1, PeriodMonthly)
		c.ReduceBalance(c.Balance.Add(decimal.NewFromInt(50)))
		assert.True(t, c.Balance.IsZero())
	})
}

func TestNewCreditValidation(t *testing.T) {
	params := NewCreditParams{
		Principal:        decimal.NewFromInt(1000),
		Modality:         ModalityFixed,
		Period:           PeriodMonthly,
		InstallmentCount: 3,
	}

	_, err := NewCredit(params, DefaultConfig())
	assert.Error(t, err, "missing borrower")

	bad := params
	bad.BorrowerID = uuid.New()
	bad.Principal = decimal.Zero
	_, err = NewCredit(bad, DefaultConfig())
	assert.Error(t, err, "non-positive principal")

	bad = params
	bad.BorrowerID = uuid.New()
	bad.Modality = "BOGUS"
	_, err = NewCredit(bad, DefaultConfig())
	assert.Error(t, err, "unknown modality")
}

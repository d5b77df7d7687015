package credit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appcashbox "github.com/lending/backend/internal/application/cashbox"
	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type settlementFixture struct {
	creditRepo      *MockCreditRepository
	installmentRepo *MockInstallmentRepository
	paymentRepo     *MockPaymentRepository
	receiptRepo     *MockReceiptRepository
	methods         *MockMethodCatalog
	ledger          *MockCashLedger
	service         *SettlementService
}

func newSettlementFixture(today time.Time) *settlementFixture {
	f := &settlementFixture{
		creditRepo:      new(MockCreditRepository),
		installmentRepo: new(MockInstallmentRepository),
		paymentRepo:     new(MockPaymentRepository),
		receiptRepo:     new(MockReceiptRepository),
		methods:         new(MockMethodCatalog),
		ledger:          new(MockCashLedger),
	}
	f.service = NewSettlementService(
		f.creditRepo, f.installmentRepo, f.paymentRepo, f.receiptRepo,
		f.methods, f.ledger,
		credit.DefaultConfig(), shared.FixedClock{Date: today}, passthroughUnitOfWork{},
	)
	return f
}

var teller = shared.Identity{UserID: uuid.New(), Username: "teller", Privileged: false}
var supervisor = shared.Identity{UserID: uuid.New(), Username: "supervisor", Privileged: true}

func TestSettlementService_Settle(t *testing.T) {
	ctx := context.Background()
	committed := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	methodID := uuid.New()

	t.Run("collects, closes installments and emits payment, receipt and inflow", func(t *testing.T) {
		c := fixedCredit(t, 1000, 2, committed)
		installments, err := credit.GenerateSchedule(c)
		require.NoError(t, err)

		c.ClearDomainEvents()

		f := newSettlementFixture(committed)
		publisher := &recordingPublisher{}
		f.service.SetEventPublisher(publisher)
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.installmentRepo.On("FindByCredit", ctx, c.ID).Return(installments, nil)

		var payment *credit.Payment
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*credit.Payment")).
			Run(func(args mock.Arguments) { payment = args.Get(1).(*credit.Payment) }).Return(nil)
		f.receiptRepo.On("NextNumber", ctx).Return(int64(7), nil)

		var receipt *credit.Receipt
		f.receiptRepo.On("Create", ctx, mock.AnythingOfType("*credit.Receipt")).
			Run(func(args mock.Arguments) { receipt = args.Get(1).(*credit.Receipt) }).Return(nil)
		f.ledger.On("RegisterInflow", ctx, mock.MatchedBy(func(in appcashbox.MovementInput) bool {
			return in.SourceType == cashbox.SourceReceipt && in.Amount == "2200"
		})).Return(&cashbox.CashMovement{}, nil)
		f.installmentRepo.On("SaveAll", ctx, mock.AnythingOfType("[]credit.Installment")).Return(nil)
		f.creditRepo.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Settle(ctx, teller, c.ID, SettleRequest{PaymentMethodID: methodID})
		require.NoError(t, err)

		assert.Equal(t, "PAID", resp.Status)
		assert.False(t, resp.AlreadySettled)
		assert.Equal(t, "2200.00", resp.AmountCollected.StringFixed(2))
		assert.True(t, c.Balance.IsZero())
		for i := range installments {
			assert.Equal(t, credit.InstallmentStatusPaid, installments[i].Status)
		}

		require.NotNil(t, payment)
		assert.Nil(t, payment.InstallmentID, "settlement payment spans the whole credit")
		assert.Equal(t, "2200.00", payment.Amount.StringFixed(2))

		require.NotNil(t, receipt)
		assert.Equal(t, "REC-000007", receipt.DisplayNumber())
		assert.Equal(t, "2200.00", receipt.BalanceBefore.StringFixed(2))
		assert.True(t, receipt.BalanceAfter.IsZero())
		assert.Equal(t, "2200.00", receipt.PrincipalCollected.StringFixed(2))

		require.Len(t, publisher.events, 1)
		assert.Equal(t, credit.EventCreditSettled, publisher.events[0].EventName())
		f.ledger.AssertExpectations(t)
	})

	t.Run("already paid credit is a no-op", func(t *testing.T) {
		c := fixedCredit(t, 1000, 2, committed)
		require.NoError(t, c.MarkPaid(decimal.Zero))

		f := newSettlementFixture(committed)
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)

		resp, err := f.service.Settle(ctx, teller, c.ID, SettleRequest{PaymentMethodID: methodID})
		require.NoError(t, err)

		assert.True(t, resp.AlreadySettled)
		assert.True(t, resp.AmountCollected.IsZero())
		f.paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.receiptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.creditRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("discount by unprivileged actor is forbidden before any read", func(t *testing.T) {
		f := newSettlementFixture(committed)

		_, err := f.service.Settle(ctx, teller, uuid.New(), SettleRequest{
			PaymentMethodID: methodID,
			DiscountPct:     decimal.NewFromInt(10),
		})
		require.Error(t, err)
		assert.True(t, shared.IsForbidden(err))
		f.creditRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("missing payment method rejects", func(t *testing.T) {
		f := newSettlementFixture(committed)
		_, err := f.service.Settle(ctx, teller, uuid.New(), SettleRequest{})
		assert.Error(t, err)
	})

	t.Run("unknown payment method rejects", func(t *testing.T) {
		f := newSettlementFixture(committed)
		f.methods.On("Exists", ctx, methodID).Return(false, nil)
		_, err := f.service.Settle(ctx, teller, uuid.New(), SettleRequest{PaymentMethodID: methodID})
		assert.Error(t, err)
	})

	t.Run("refinanced credit is a conflict", func(t *testing.T) {
		c := fixedCredit(t, 1000, 2, committed)
		require.NoError(t, c.MarkRefinanced())

		f := newSettlementFixture(committed)
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)

		_, err := f.service.Settle(ctx, teller, c.ID, SettleRequest{PaymentMethodID: methodID})
		require.Error(t, err)
		assert.True(t, shared.IsConflict(err))
	})

	t.Run("total-base discount folds residual mora into the credit", func(t *testing.T) {
		c := fixedCredit(t, 1000, 2, committed)
		installments, err := credit.GenerateSchedule(c)
		require.NoError(t, err)

		// Twenty days past the second due date: both installments late.
		f := newSettlementFixture(committed.AddDate(0, 2, 20))
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.installmentRepo.On("FindByCredit", ctx, c.ID).Return(installments, nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*credit.Payment")).Return(nil)
		f.receiptRepo.On("NextNumber", ctx).Return(int64(8), nil)
		f.receiptRepo.On("Create", ctx, mock.AnythingOfType("*credit.Receipt")).Return(nil)
		f.ledger.On("RegisterInflow", ctx, mock.Anything).Return(&cashbox.CashMovement{}, nil)
		f.installmentRepo.On("SaveAll", ctx, mock.AnythingOfType("[]credit.Installment")).Return(nil)
		f.creditRepo.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Settle(ctx, supervisor, c.ID, SettleRequest{
			PaymentMethodID: methodID,
			DiscountPct:     decimal.NewFromInt(10),
			DiscountBase:    "TOTAL",
		})
		require.NoError(t, err)

		assert.True(t, resp.DiscountApplied.IsPositive())
		assert.True(t, resp.AmountCollected.IsPositive())
		assert.True(t, c.Balance.IsZero())
		// Discounted mora lands in the accrued interest bookkeeping.
		assert.True(t, c.AccruedInterest.IsPositive())
	})

	t.Run("full discount settles without moving cash", func(t *testing.T) {
		c := fixedCredit(t, 900, 2, committed)
		installments, err := credit.GenerateSchedule(c)
		require.NoError(t, err)

		// Well past both due dates so mora is part of the forgiven payoff.
		f := newSettlementFixture(committed.AddDate(0, 2, 20))
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.installmentRepo.On("FindByCredit", ctx, c.ID).Return(installments, nil)

		var payment *credit.Payment
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*credit.Payment")).
			Run(func(args mock.Arguments) { payment = args.Get(1).(*credit.Payment) }).Return(nil)
		f.receiptRepo.On("NextNumber", ctx).Return(int64(10), nil)

		var receipt *credit.Receipt
		f.receiptRepo.On("Create", ctx, mock.AnythingOfType("*credit.Receipt")).
			Run(func(args mock.Arguments) { receipt = args.Get(1).(*credit.Receipt) }).Return(nil)
		f.installmentRepo.On("SaveAll", ctx, mock.AnythingOfType("[]credit.Installment")).Return(nil)
		f.creditRepo.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Settle(ctx, supervisor, c.ID, SettleRequest{
			PaymentMethodID: methodID,
			DiscountPct:     decimal.NewFromInt(100),
			DiscountBase:    "TOTAL",
		})
		require.NoError(t, err)

		assert.Equal(t, "PAID", resp.Status)
		assert.True(t, resp.AmountCollected.IsZero())
		assert.True(t, resp.DiscountApplied.IsPositive())
		assert.True(t, c.Balance.IsZero())
		for i := range installments {
			assert.Equal(t, credit.InstallmentStatusPaid, installments[i].Status)
		}

		require.NotNil(t, payment)
		assert.True(t, payment.Amount.IsZero())
		require.NotNil(t, receipt)
		assert.True(t, receipt.DiscountApplied.Equal(resp.DiscountApplied))
		f.ledger.AssertNotCalled(t, "RegisterInflow", mock.Anything, mock.Anything)
	})

	t.Run("open credit past the cap can still pay off", func(t *testing.T) {
		c := openCredit(t, 1000, committed)
		installments, err := credit.GenerateSchedule(c)
		require.NoError(t, err)

		// Four whole months out: cycle 4 exceeds the cap of 3.
		f := newSettlementFixture(committed.AddDate(0, 4, 0))
		f.methods.On("Exists", ctx, methodID).Return(true, nil)
		f.creditRepo.On("FindByIDForUpdate", ctx, c.ID).Return(c, nil)
		f.installmentRepo.On("FindByCredit", ctx, c.ID).Return(installments, nil)
		f.paymentRepo.On("Create", ctx, mock.AnythingOfType("*credit.Payment")).Return(nil)
		f.receiptRepo.On("NextNumber", ctx).Return(int64(9), nil)

		var receipt *credit.Receipt
		f.receiptRepo.On("Create", ctx, mock.AnythingOfType("*credit.Receipt")).
			Run(func(args mock.Arguments) { receipt = args.Get(1).(*credit.Receipt) }).Return(nil)
		f.ledger.On("RegisterInflow", ctx, mock.Anything).Return(&cashbox.CashMovement{}, nil)
		f.installmentRepo.On("SaveAll", ctx, mock.AnythingOfType("[]credit.Installment")).Return(nil)
		f.creditRepo.On("Save", ctx, c).Return(nil)

		resp, err := f.service.Settle(ctx, teller, c.ID, SettleRequest{PaymentMethodID: methodID})
		require.NoError(t, err)

		assert.Equal(t, "PAID", resp.Status)
		require.NotNil(t, receipt)
		// Two closed cycles of 600 carried plus the active cycle's 600.
		assert.Equal(t, "1800.00", receipt.InterestCollected.StringFixed(2))
		assert.Equal(t, "1000.00", receipt.PrincipalCollected.StringFixed(2))
		assert.True(t, receipt.MoraCollected.IsPositive())
		// The interest taken at payoff lands in the cycle tally.
		assert.Equal(t, "1800.00", c.CycleCollected.StringFixed(2))
	})
}

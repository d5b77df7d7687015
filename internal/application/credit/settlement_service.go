package credit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appcashbox "github.com/lending/backend/internal/application/cashbox"
	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementService collects the early payoff of a credit: one aggregate
// payment closing every pending installment, one printable receipt and one
// ledger inflow, all inside a single transaction holding the credit row lock.
type SettlementService struct {
	creditRepo      credit.CreditRepository
	installmentRepo credit.InstallmentRepository
	paymentRepo     credit.PaymentRepository
	receiptRepo     credit.ReceiptRepository
	methods         credit.MethodCatalog
	ledger          CashLedger
	cfg             credit.Config
	clock           shared.Clock
	uow             shared.UnitOfWork
	events          EventPublisher
}

// SetEventPublisher attaches an event publisher for lifecycle events.
func (s *SettlementService) SetEventPublisher(publisher EventPublisher) {
	s.events = publisher
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	creditRepo credit.CreditRepository,
	installmentRepo credit.InstallmentRepository,
	paymentRepo credit.PaymentRepository,
	receiptRepo credit.ReceiptRepository,
	methods credit.MethodCatalog,
	ledger CashLedger,
	cfg credit.Config,
	clock shared.Clock,
	uow shared.UnitOfWork,
) *SettlementService {
	return &SettlementService{
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		receiptRepo:     receiptRepo,
		methods:         methods,
		ledger:          ledger,
		cfg:             cfg,
		clock:           clock,
		uow:             uow,
	}
}

// SettleRequest represents a request to settle a credit early
type SettleRequest struct {
	PaymentMethodID uuid.UUID       `json:"payment_method_id" binding:"required"`
	DiscountPct     decimal.Decimal `json:"discount_pct"`
	DiscountBase    string          `json:"discount_base"` // MORA (default) or TOTAL
	Note            string          `json:"note"`
}

// ReceiptResponse represents a settlement receipt in API responses
type ReceiptResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Number             string          `json:"number"`
	PaymentID          uuid.UUID       `json:"payment_id"`
	CreditID           uuid.UUID       `json:"credit_id"`
	BalanceBefore      decimal.Decimal `json:"balance_before"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	PrincipalCollected decimal.Decimal `json:"principal_collected"`
	InterestCollected  decimal.Decimal `json:"interest_collected"`
	MoraCollected      decimal.Decimal `json:"mora_collected"`
	DiscountApplied    decimal.Decimal `json:"discount_applied"`
}

// SettleResponse represents the outcome of a settlement
type SettleResponse struct {
	CreditID        uuid.UUID        `json:"credit_id"`
	Status          string           `json:"status"`
	AlreadySettled  bool             `json:"already_settled"`
	AmountCollected decimal.Decimal  `json:"amount_collected"`
	DiscountApplied decimal.Decimal  `json:"discount_applied"`
	Receipt         *ReceiptResponse `json:"receipt,omitempty"`
}

// Settle pays off a credit early. The discount, when requested, requires a
// privileged actor and is allocated per the chosen base before anything is
// written. Settling an already-paid credit is a no-op.
func (s *SettlementService) Settle(ctx context.Context, identity shared.Identity, creditID uuid.UUID, req SettleRequest) (*SettleResponse, error) {
	if req.PaymentMethodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}
	if req.DiscountPct.IsPositive() && !identity.Privileged {
		return nil, shared.ErrForbidden
	}
	exists, err := s.methods.Exists(ctx, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	var result *SettleResponse
	var c *credit.Credit
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		c, err = s.creditRepo.FindByIDForUpdate(ctx, creditID)
		if err != nil {
			return err
		}
		if c.Status == credit.CreditStatusPaid {
			result = &SettleResponse{
				CreditID:        c.ID,
				Status:          c.Status.String(),
				AlreadySettled:  true,
				AmountCollected: decimal.Zero,
				DiscountApplied: decimal.Zero,
			}
			return nil
		}
		if c.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle credit in %s status", c.Status))
		}

		installments, err := s.installmentRepo.FindByCredit(ctx, c.ID)
		if err != nil {
			return err
		}

		accrual := credit.NewAccrual(s.cfg, s.clock)
		var payoff credit.Payoff
		if c.IsOpen() {
			// Settlement resolves over-cap credits, so the cap never blocks it.
			state, err := accrual.SyncCycleClamped(c)
			if err != nil {
				return err
			}
			if len(installments) > 0 {
				accrual.RefreshOpenInstallment(c, &installments[0], state)
			}
			payoff = credit.ComputeOpenPayoff(state)
		} else {
			accrual.RefreshInstallments(installments)
			payoff = credit.ComputeScheduledPayoff(installments)
		}

		if payoff.IsSettled() {
			// Nothing pending: close the credit without synthesizing a payment.
			if err := c.MarkPaid(decimal.Zero); err != nil {
				return err
			}
			if err := s.installmentRepo.SaveAll(ctx, installments); err != nil {
				return err
			}
			if err := s.creditRepo.Save(ctx, c); err != nil {
				return err
			}
			result = &SettleResponse{
				CreditID:        c.ID,
				Status:          c.Status.String(),
				AmountCollected: decimal.Zero,
				DiscountApplied: decimal.Zero,
			}
			return nil
		}

		plan, err := credit.PlanSettlement(payoff, req.DiscountPct, credit.DiscountBase(req.DiscountBase))
		if err != nil {
			return err
		}

		balanceBefore := c.Balance
		methodID := req.PaymentMethodID

		for i, item := range plan.Payoff.Items {
			inst := &installments[item.Index]
			discount := plan.ItemPrincipalDiscount[i]
			if err := inst.Close(item.Principal.Sub(discount), discount, &methodID); err != nil {
				return err
			}
		}

		if c.IsOpen() {
			c.CollectCycleInterest(plan.InterestPaid)
		}
		if err := c.MarkPaid(plan.DiscountMora); err != nil {
			return err
		}

		payment, err := credit.NewPayment(c.ID, nil, plan.AmountDue(), s.clock.Today(), methodID, req.Note)
		if err != nil {
			return err
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		number, err := s.receiptRepo.NextNumber(ctx)
		if err != nil {
			return err
		}
		receipt := credit.NewReceipt(number, payment, balanceBefore, decimal.Zero,
			plan.PrincipalPaid, plan.InterestPaid, plan.MoraPaid, plan.DiscountTotal)
		if err := s.receiptRepo.Create(ctx, receipt); err != nil {
			return err
		}

		// A fully discounted settlement moves no cash, so the drawer
		// stays out of it.
		if plan.AmountDue().IsPositive() {
			if _, err := s.ledger.RegisterInflow(ctx, appcashbox.MovementInput{
				SourceType:      cashbox.SourceReceipt,
				SourceID:        receipt.ID,
				Amount:          plan.AmountDue().String(),
				Date:            s.clock.Today(),
				Concept:         fmt.Sprintf("Settlement %s", receipt.DisplayNumber()),
				PaymentMethodID: &methodID,
				OperatorID:      operatorRef(identity),
			}); err != nil {
				return err
			}
		}

		if err := s.installmentRepo.SaveAll(ctx, installments); err != nil {
			return err
		}
		if err := s.creditRepo.Save(ctx, c); err != nil {
			return err
		}

		result = &SettleResponse{
			CreditID:        c.ID,
			Status:          c.Status.String(),
			AmountCollected: plan.AmountDue(),
			DiscountApplied: plan.DiscountTotal,
			Receipt: &ReceiptResponse{
				ID:                 receipt.ID,
				Number:             receipt.DisplayNumber(),
				PaymentID:          receipt.PaymentID,
				CreditID:           receipt.CreditID,
				BalanceBefore:      receipt.BalanceBefore,
				BalanceAfter:       receipt.BalanceAfter,
				PrincipalCollected: receipt.PrincipalCollected,
				InterestCollected:  receipt.InterestCollected,
				MoraCollected:      receipt.MoraCollected,
				DiscountApplied:    receipt.DiscountApplied,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, c)
	return result, nil
}

// operatorRef converts an identity into a nullable operator reference for
// ledger rows. Anonymous identities leave it unset.
func operatorRef(identity shared.Identity) *uuid.UUID {
	if identity.UserID == uuid.Nil {
		return nil
	}
	id := identity.UserID
	return &id
}

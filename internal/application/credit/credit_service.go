package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
	appcashbox "github.com/lending/backend/internal/application/cashbox"
	"github.com/lending/backend/internal/domain/cashbox"
	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CashLedger is the slice of the ledger service the credit module drives.
type CashLedger interface {
	RegisterInflow(ctx context.Context, in appcashbox.MovementInput) (*cashbox.CashMovement, error)
	RegisterOutflow(ctx context.Context, in appcashbox.MovementInput) (*cashbox.CashMovement, error)
	UpdateFromSource(ctx context.Context, movementType cashbox.MovementType, in appcashbox.SyncInput) (*cashbox.CashMovement, error)
	DeleteFromSource(ctx context.Context, sourceType string, sourceID uuid.UUID) error
}

// EventPublisher dispatches domain events raised by aggregates once the
// transaction they belong to has committed.
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent)
}

// publishEvents drains the aggregate's pending events into the publisher.
// Publishing is optional; without a publisher the events are discarded.
func publishEvents(ctx context.Context, publisher EventPublisher, c *credit.Credit) {
	if publisher == nil {
		c.ClearDomainEvents()
		return
	}
	publisher.Publish(ctx, c.GetDomainEvents()...)
	c.ClearDomainEvents()
}

// CreditService provides application-level credit lifecycle operations
type CreditService struct {
	creditRepo      credit.CreditRepository
	installmentRepo credit.InstallmentRepository
	paymentRepo     credit.PaymentRepository
	borrowers       credit.BorrowerDirectory
	methods         credit.MethodCatalog
	ledger          CashLedger
	cfg             credit.Config
	clock           shared.Clock
	uow             shared.UnitOfWork
	events          EventPublisher
}

// SetEventPublisher attaches an event publisher for lifecycle events.
func (s *CreditService) SetEventPublisher(publisher EventPublisher) {
	s.events = publisher
}

// NewCreditService creates a new CreditService
func NewCreditService(
	creditRepo credit.CreditRepository,
	installmentRepo credit.InstallmentRepository,
	paymentRepo credit.PaymentRepository,
	borrowers credit.BorrowerDirectory,
	methods credit.MethodCatalog,
	ledger CashLedger,
	cfg credit.Config,
	clock shared.Clock,
	uow shared.UnitOfWork,
) *CreditService {
	return &CreditService{
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		paymentRepo:     paymentRepo,
		borrowers:       borrowers,
		methods:         methods,
		ledger:          ledger,
		cfg:             cfg,
		clock:           clock,
		uow:             uow,
	}
}

// CreateCreditRequest represents a request to originate a credit. Monetary
// fields are textual and pass through the locale-tolerant amount parser.
type CreateCreditRequest struct {
	BorrowerID       uuid.UUID  `json:"borrower_id" binding:"required"`
	CollectorID      uuid.UUID  `json:"collector_id"`
	Principal        string     `json:"principal" binding:"required"`
	Rate             string     `json:"rate"`
	Modality         string     `json:"modality" binding:"required"`
	Period           string     `json:"period" binding:"required"`
	InstallmentCount int        `json:"installment_count"`
	GrantedAt        time.Time  `json:"granted_at"`
	CommittedAt      time.Time  `json:"committed_at" binding:"required"`
	FromFinancedSale bool       `json:"from_financed_sale"`
	OriginID         *uuid.UUID `json:"-"` // set by refinancing, never from the request body
	OperatorID       *uuid.UUID `json:"-"` // set from JWT context
}

// UpdateCreditRequest represents a request to update a credit. Term fields
// are optional; changing any of them reprices the credit and regenerates its
// schedule, which is only allowed while no payment has been collected.
type UpdateCreditRequest struct {
	CollectorID      *uuid.UUID `json:"collector_id"`
	Principal        *string    `json:"principal"`
	Rate             *string    `json:"rate"`
	Modality         *string    `json:"modality"`
	Period           *string    `json:"period"`
	InstallmentCount *int       `json:"installment_count"`
	CommittedAt      *time.Time `json:"committed_at"`
	OperatorID       *uuid.UUID `json:"-"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        int             `json:"number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
	Status        string          `json:"status"`
	Paid          decimal.Decimal `json:"paid"`
	Discount      decimal.Decimal `json:"discount"`
	Mora          decimal.Decimal `json:"mora"`
	Pending       decimal.Decimal `json:"pending"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
}

// CycleResponse is the open-modality cycle read model in API responses
type CycleResponse struct {
	Cycle            int             `json:"cycle"`
	DueDate          time.Time       `json:"due_date"`
	CycleInterest    decimal.Decimal `json:"cycle_interest"`
	InterestPending  decimal.Decimal `json:"interest_pending"`
	Mora             decimal.Decimal `json:"mora"`
	DaysLate         int             `json:"days_late"`
	UpcomingDueDates []time.Time     `json:"upcoming_due_dates"`
}

// CreditResponse represents a credit in API responses
type CreditResponse struct {
	ID               uuid.UUID       `json:"id"`
	BorrowerID       uuid.UUID       `json:"borrower_id"`
	BorrowerName     string          `json:"borrower_name,omitempty"`
	CollectorID      uuid.UUID       `json:"collector_id"`
	Principal        decimal.Decimal `json:"principal"`
	Rate             decimal.Decimal `json:"rate"`
	Modality         string          `json:"modality"`
	Period           string          `json:"period"`
	InstallmentCount int             `json:"installment_count"`
	Total            decimal.Decimal `json:"total"`
	Balance          decimal.Decimal `json:"balance"`
	Status           string          `json:"status"`
	GrantedAt        time.Time       `json:"granted_at"`
	CommittedAt      time.Time       `json:"committed_at"`
	OriginID         *uuid.UUID      `json:"origin_id,omitempty"`
	FromFinancedSale bool            `json:"from_financed_sale"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// CreditDetailResponse is the full snapshot returned by GetCredit: the credit
// with accrual brought up to today, its installments, the open-modality cycle
// state when applicable, and the total due as of today.
type CreditDetailResponse struct {
	CreditResponse
	Installments []InstallmentResponse `json:"installments"`
	Cycle        *CycleResponse        `json:"cycle,omitempty"`
	TotalDue     decimal.Decimal       `json:"total_due"`
}

// CreateCredit originates a credit, generates its schedule and registers the
// disbursement outflow, all in one transaction. A credit born from a financed
// sale moves no cash, so it skips the disbursement movement.
func (s *CreditService) CreateCredit(ctx context.Context, req CreateCreditRequest) (*CreditResponse, error) {
	c, err := credit.NewCredit(credit.NewCreditParams{
		BorrowerID:       req.BorrowerID,
		CollectorID:      req.CollectorID,
		Principal:        valueobject.ParseAmount(req.Principal),
		Rate:             valueobject.ParseAmount(req.Rate),
		Modality:         credit.Modality(req.Modality),
		Period:           credit.PeriodUnit(req.Period),
		InstallmentCount: req.InstallmentCount,
		GrantedAt:        req.GrantedAt,
		CommittedAt:      req.CommittedAt,
		OriginID:         req.OriginID,
		FromFinancedSale: req.FromFinancedSale,
	}, s.cfg)
	if err != nil {
		return nil, err
	}

	installments, err := credit.GenerateSchedule(c)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.creditRepo.Create(ctx, c); err != nil {
			return err
		}
		if err := s.installmentRepo.SaveAll(ctx, installments); err != nil {
			return err
		}
		if c.FromFinancedSale {
			return nil
		}
		_, err := s.ledger.RegisterOutflow(ctx, appcashbox.MovementInput{
			SourceType: cashbox.SourceCredit,
			SourceID:   c.ID,
			Amount:     c.Principal.String(),
			Date:       c.GrantedAt,
			Concept:    "Credit disbursement",
			OperatorID: req.OperatorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.events, c)
	return s.toCreditResponse(ctx, c), nil
}

// GetCredit returns the credit with accrual synchronized to today. Accrual is
// lazy: the refreshed mora, cycle ledger and recomputed status are persisted
// as part of the read.
func (s *CreditService) GetCredit(ctx context.Context, id uuid.UUID) (*CreditDetailResponse, error) {
	var detail *CreditDetailResponse
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		c, err := s.creditRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		installments, err := s.installmentRepo.FindByCredit(ctx, c.ID)
		if err != nil {
			return err
		}

		accrual := credit.NewAccrual(s.cfg, s.clock)
		var cycle *CycleResponse
		totalDue := decimal.Zero

		if c.IsOpen() {
			state, err := accrual.SyncCycle(c)
			if err != nil {
				return err
			}
			if len(installments) > 0 {
				accrual.RefreshOpenInstallment(c, &installments[0], state)
			}
			cycle = &CycleResponse{
				Cycle:            state.Cycle,
				DueDate:          state.DueDate,
				CycleInterest:    state.CycleInterest,
				InterestPending:  state.InterestPending,
				Mora:             state.Mora,
				DaysLate:         state.DaysLate,
				UpcomingDueDates: state.UpcomingDueDates,
			}
			totalDue = state.TotalDue()
		} else if !c.IsTerminal() {
			accrual.RefreshInstallments(installments)
			c.SetStatus(credit.RecomputeStatus(c, installments))
			for idx := range installments {
				if installments[idx].Status.Collectable() {
					totalDue = totalDue.Add(installments[idx].Pending()).Add(installments[idx].Mora)
				}
			}
		}

		if err := s.installmentRepo.SaveAll(ctx, installments); err != nil {
			return err
		}
		if err := s.creditRepo.Save(ctx, c); err != nil {
			return err
		}

		detail = &CreditDetailResponse{
			CreditResponse: *s.toCreditResponse(ctx, c),
			Installments:   s.toInstallmentResponses(ctx, installments),
			Cycle:          cycle,
			TotalDue:       totalDue.Round(2),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// RefreshAccrual brings one credit's mora and status up to today. The nightly
// sweep calls it per credit; the assembled read model is discarded.
func (s *CreditService) RefreshAccrual(ctx context.Context, id uuid.UUID) error {
	_, err := s.GetCredit(ctx, id)
	return err
}

// ListByBorrower returns the credits of one borrower, newest first.
func (s *CreditService) ListByBorrower(ctx context.Context, borrowerID uuid.UUID) ([]CreditResponse, error) {
	credits, err := s.creditRepo.FindByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	responses := make([]CreditResponse, len(credits))
	for i := range credits {
		responses[i] = *s.toCreditResponse(ctx, &credits[i])
	}
	return responses, nil
}

// UpdateCredit applies changes to a live credit. Collector reassignment is
// always allowed; term changes reprice the credit, regenerate the schedule
// and refresh the disbursement movement, and are rejected once any payment
// has been collected.
func (s *CreditService) UpdateCredit(ctx context.Context, id uuid.UUID, req UpdateCreditRequest) (*CreditResponse, error) {
	var c *credit.Credit
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.creditRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", "Cannot update a settled, refinanced or voided credit")
		}

		if req.CollectorID != nil {
			c.CollectorID = *req.CollectorID
		}

		if !changesTerms(req) {
			return s.creditRepo.Save(ctx, c)
		}

		hasPayments, err := s.paymentRepo.HasPayments(ctx, c.ID)
		if err != nil {
			return err
		}
		if hasPayments {
			return shared.ErrHasPayments
		}

		if err := s.reprice(c, req); err != nil {
			return err
		}
		installments, err := credit.GenerateSchedule(c)
		if err != nil {
			return err
		}
		if err := s.installmentRepo.ReplaceForCredit(ctx, c.ID, installments); err != nil {
			return err
		}
		if err := s.creditRepo.Save(ctx, c); err != nil {
			return err
		}

		if c.FromFinancedSale {
			return nil
		}
		_, err = s.ledger.UpdateFromSource(ctx, cashbox.MovementOutflow, appcashbox.SyncInput{
			MovementInput: appcashbox.MovementInput{
				SourceType: cashbox.SourceCredit,
				SourceID:   c.ID,
				Amount:     c.Principal.String(),
				Date:       c.GrantedAt,
				Concept:    "Credit disbursement",
				OperatorID: req.OperatorID,
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.toCreditResponse(ctx, c), nil
}

func changesTerms(req UpdateCreditRequest) bool {
	return req.Principal != nil || req.Rate != nil || req.Modality != nil ||
		req.Period != nil || req.InstallmentCount != nil || req.CommittedAt != nil
}

// reprice rebuilds the credit's terms in place, keeping its identity and
// lineage. Validation mirrors origination.
func (s *CreditService) reprice(c *credit.Credit, req UpdateCreditRequest) error {
	params := credit.NewCreditParams{
		BorrowerID:       c.BorrowerID,
		CollectorID:      c.CollectorID,
		Principal:        c.Principal,
		Rate:             c.Rate,
		Modality:         c.Modality,
		Period:           c.Period,
		InstallmentCount: c.InstallmentCount,
		GrantedAt:        c.GrantedAt,
		CommittedAt:      c.CommittedAt,
		OriginID:         c.OriginID,
		FromFinancedSale: c.FromFinancedSale,
	}
	if req.Principal != nil {
		params.Principal = valueobject.ParseAmount(*req.Principal)
	}
	if req.Rate != nil {
		params.Rate = valueobject.ParseAmount(*req.Rate)
	}
	if req.Modality != nil {
		params.Modality = credit.Modality(*req.Modality)
	}
	if req.Period != nil {
		params.Period = credit.PeriodUnit(*req.Period)
	}
	if req.InstallmentCount != nil {
		params.InstallmentCount = *req.InstallmentCount
	}
	if req.CommittedAt != nil {
		params.CommittedAt = *req.CommittedAt
	}

	repriced, err := credit.NewCredit(params, s.cfg)
	if err != nil {
		return err
	}

	c.Principal = repriced.Principal
	c.Rate = repriced.Rate
	c.Modality = repriced.Modality
	c.Period = repriced.Period
	c.InstallmentCount = repriced.InstallmentCount
	c.Total = repriced.Total
	c.Balance = repriced.Balance
	c.CommittedAt = repriced.CommittedAt
	c.AccruedInterest = decimal.Zero
	c.CycleNumber = 1
	c.CycleCollected = decimal.Zero
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// VoidCredit annuls a credit that never collected a payment and returns the
// voided snapshot. Its installments are voided with it and the disbursement
// movement leaves the ledger.
func (s *CreditService) VoidCredit(ctx context.Context, id uuid.UUID) (*CreditResponse, error) {
	var c *credit.Credit
	err := s.uow.Execute(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.creditRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		hasPayments, err := s.paymentRepo.HasPayments(ctx, c.ID)
		if err != nil {
			return err
		}
		if hasPayments {
			return shared.ErrHasPayments
		}
		if err := c.Void(); err != nil {
			return err
		}

		installments, err := s.installmentRepo.FindByCredit(ctx, c.ID)
		if err != nil {
			return err
		}
		for idx := range installments {
			installments[idx].Status = credit.InstallmentStatusVoid
			installments[idx].UpdatedAt = time.Now()
		}
		if err := s.installmentRepo.SaveAll(ctx, installments); err != nil {
			return err
		}
		if err := s.creditRepo.Save(ctx, c); err != nil {
			return err
		}
		return s.ledger.DeleteFromSource(ctx, cashbox.SourceCredit, c.ID)
	})
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, c)
	return s.toCreditResponse(ctx, c), nil
}

// DeleteCredit removes a credit with no payment history, cascading its
// installments and ledger movements.
func (s *CreditService) DeleteCredit(ctx context.Context, id uuid.UUID) error {
	return s.uow.Execute(ctx, func(ctx context.Context) error {
		c, err := s.creditRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		hasPayments, err := s.paymentRepo.HasPayments(ctx, c.ID)
		if err != nil {
			return err
		}
		if hasPayments {
			return shared.ErrHasPayments
		}
		if err := s.installmentRepo.DeleteByCredit(ctx, c.ID); err != nil {
			return err
		}
		if err := s.ledger.DeleteFromSource(ctx, cashbox.SourceCredit, c.ID); err != nil {
			return err
		}
		return s.creditRepo.Delete(ctx, c.ID)
	})
}

// ===================== Helper Functions =====================

func (s *CreditService) toCreditResponse(ctx context.Context, c *credit.Credit) *CreditResponse {
	resp := &CreditResponse{
		ID:               c.ID,
		BorrowerID:       c.BorrowerID,
		CollectorID:      c.CollectorID,
		Principal:        c.Principal,
		Rate:             c.Rate,
		Modality:         c.Modality.String(),
		Period:           string(c.Period),
		InstallmentCount: c.InstallmentCount,
		Total:            c.Total,
		Balance:          c.Balance,
		Status:           c.Status.String(),
		GrantedAt:        c.GrantedAt,
		CommittedAt:      c.CommittedAt,
		OriginID:         c.OriginID,
		FromFinancedSale: c.FromFinancedSale,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
	// Directory lookups are best-effort decoration; a missing name never
	// fails the operation.
	if name, err := s.borrowers.DisplayName(ctx, c.BorrowerID); err == nil {
		resp.BorrowerName = name
	}
	return resp
}

func (s *CreditService) toInstallmentResponses(ctx context.Context, installments []credit.Installment) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(installments))
	for i := range installments {
		inst := &installments[i]
		responses[i] = InstallmentResponse{
			ID:       inst.ID,
			Number:   inst.Number,
			Amount:   inst.Amount,
			DueDate:  inst.DueDate,
			Status:   inst.Status.String(),
			Paid:     inst.Paid,
			Discount: inst.Discount,
			Mora:     inst.Mora,
			Pending:  inst.Pending(),
		}
		if inst.PaymentMethodID != nil {
			if label, err := s.methods.Label(ctx, *inst.PaymentMethodID); err == nil {
				responses[i].PaymentMethod = &label
			}
		}
	}
	return responses
}

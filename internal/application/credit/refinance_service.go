package credit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/lending/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RefinanceService rolls the full exposure of a live credit into a new fixed
// credit. The original becomes terminal, its payment history survives, and no
// cash moves: refinancing is a paper operation.
type RefinanceService struct {
	creditRepo      credit.CreditRepository
	installmentRepo credit.InstallmentRepository
	cfg             credit.Config
	clock           shared.Clock
	uow             shared.UnitOfWork
	events          EventPublisher
}

// SetEventPublisher attaches an event publisher for lifecycle events.
func (s *RefinanceService) SetEventPublisher(publisher EventPublisher) {
	s.events = publisher
}

// NewRefinanceService creates a new RefinanceService
func NewRefinanceService(
	creditRepo credit.CreditRepository,
	installmentRepo credit.InstallmentRepository,
	cfg credit.Config,
	clock shared.Clock,
	uow shared.UnitOfWork,
) *RefinanceService {
	return &RefinanceService{
		creditRepo:      creditRepo,
		installmentRepo: installmentRepo,
		cfg:             cfg,
		clock:           clock,
		uow:             uow,
	}
}

// RefinanceRequest represents a request to refinance a credit
type RefinanceRequest struct {
	Option           string     `json:"option" binding:"required"` // TIER_REDUCED, TIER_MINIMUM or MANUAL
	ManualRate       string     `json:"manual_rate"`
	InstallmentCount int        `json:"installment_count" binding:"required"`
	Period           string     `json:"period" binding:"required"`
	CollectorID      *uuid.UUID `json:"collector_id"`
}

// RefinanceResponse represents the outcome of a refinancing
type RefinanceResponse struct {
	OriginalID uuid.UUID       `json:"original_id"`
	Exposure   decimal.Decimal `json:"exposure"`
	Rate       decimal.Decimal `json:"rate"`
	NewCredit  CreditResponse  `json:"new_credit"`
}

// Refinance replaces a live credit with a new fixed credit whose principal is
// the original's full exposure as of today. Unpaid installments that never
// collected anything are deleted; partially paid ones close as refinanced so
// their history stays. The new schedule starts today.
func (s *RefinanceService) Refinance(ctx context.Context, identity shared.Identity, creditID uuid.UUID, req RefinanceRequest) (*RefinanceResponse, error) {
	terms := credit.RefinanceTerms{
		Option:           credit.RefinanceOption(req.Option),
		ManualRate:       valueobject.ParseAmount(req.ManualRate),
		InstallmentCount: req.InstallmentCount,
		Period:           credit.PeriodUnit(req.Period),
	}
	rate, err := credit.ResolveRefinanceRate(terms, s.cfg, identity)
	if err != nil {
		return nil, err
	}

	var result *RefinanceResponse
	var original, replacement *credit.Credit
	err = s.uow.Execute(ctx, func(ctx context.Context) error {
		original, err = s.creditRepo.FindByIDForUpdate(ctx, creditID)
		if err != nil {
			return err
		}
		if original.IsTerminal() {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refinance credit in %s status", original.Status))
		}

		installments, err := s.installmentRepo.FindByCredit(ctx, original.ID)
		if err != nil {
			return err
		}

		accrual := credit.NewAccrual(s.cfg, s.clock)
		var exposure decimal.Decimal
		if original.IsOpen() {
			// Refinancing resolves over-cap credits, so the cap never blocks it.
			state, err := accrual.SyncCycleClamped(original)
			if err != nil {
				return err
			}
			exposure = credit.OpenExposure(state)
		} else {
			accrual.RefreshInstallments(installments)
			exposure = credit.ScheduledExposure(original, installments)
		}
		if !exposure.IsPositive() {
			return shared.NewDomainError("INVALID_STATE", "Credit has no exposure left to refinance")
		}

		collectorID := original.CollectorID
		if req.CollectorID != nil {
			collectorID = *req.CollectorID
		}
		today := s.clock.Today()
		originID := original.ID
		replacement, err = credit.NewCredit(credit.NewCreditParams{
			BorrowerID:       original.BorrowerID,
			CollectorID:      collectorID,
			Principal:        exposure,
			Rate:             rate,
			Modality:         credit.ModalityFixed,
			Period:           terms.Period,
			InstallmentCount: terms.InstallmentCount,
			GrantedAt:        today,
			CommittedAt:      today,
			OriginID:         &originID,
		}, s.cfg)
		if err != nil {
			return err
		}
		schedule, err := credit.GenerateSchedule(replacement)
		if err != nil {
			return err
		}

		// Untouched installments leave; anything with collections closes as
		// refinanced so the payment trail survives.
		var deleteIDs []uuid.UUID
		var survivors []credit.Installment
		for idx := range installments {
			inst := installments[idx]
			if inst.Status.Collectable() && !inst.HasPayments() {
				deleteIDs = append(deleteIDs, inst.ID)
				continue
			}
			if inst.Status.Collectable() {
				inst.MarkRefinanced()
			}
			survivors = append(survivors, inst)
		}
		if len(deleteIDs) > 0 {
			if err := s.installmentRepo.DeleteByIDs(ctx, deleteIDs); err != nil {
				return err
			}
		}
		if len(survivors) > 0 {
			if err := s.installmentRepo.SaveAll(ctx, survivors); err != nil {
				return err
			}
		}

		if err := original.MarkRefinanced(); err != nil {
			return err
		}
		if err := s.creditRepo.Save(ctx, original); err != nil {
			return err
		}
		if err := s.creditRepo.Create(ctx, replacement); err != nil {
			return err
		}
		if err := s.installmentRepo.SaveAll(ctx, schedule); err != nil {
			return err
		}

		result = &RefinanceResponse{
			OriginalID: original.ID,
			Exposure:   exposure,
			Rate:       replacement.Rate,
			NewCredit: CreditResponse{
				ID:               replacement.ID,
				BorrowerID:       replacement.BorrowerID,
				CollectorID:      replacement.CollectorID,
				Principal:        replacement.Principal,
				Rate:             replacement.Rate,
				Modality:         replacement.Modality.String(),
				Period:           string(replacement.Period),
				InstallmentCount: replacement.InstallmentCount,
				Total:            replacement.Total,
				Balance:          replacement.Balance,
				Status:           replacement.Status.String(),
				GrantedAt:        replacement.GrantedAt,
				CommittedAt:      replacement.CommittedAt,
				OriginID:         replacement.OriginID,
				CreatedAt:        replacement.CreatedAt,
				UpdatedAt:        replacement.UpdatedAt,
				Version:          replacement.Version,
			},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, original)
	publishEvents(ctx, s.events, replacement)
	return result, nil
}

package credit

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Modality represents the loan structure of a credit
type Modality string

const (
	ModalityFixed       Modality = "FIXED"       // Equal installments
	ModalityProgressive Modality = "PROGRESSIVE" // Increasing installments
	ModalityOpen        Modality = "OPEN"        // Revolving-style single installment
)

// IsValid checks if the modality is valid
func (m Modality) IsValid() bool {
	switch m {
	case ModalityFixed, ModalityProgressive, ModalityOpen:
		return true
	}
	return false
}

// String returns the string representation of Modality
func (m Modality) String() string {
	return string(m)
}

// PeriodUnit represents the collection cadence of a scheduled credit
type PeriodUnit string

const (
	PeriodWeekly   PeriodUnit = "WEEKLY"
	PeriodBiweekly PeriodUnit = "BIWEEKLY"
	PeriodMonthly  PeriodUnit = "MONTHLY"
)

// IsValid checks if the period unit is valid
func (p PeriodUnit) IsValid() bool {
	switch p {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly:
		return true
	}
	return false
}

// Days returns the length of one period in days
func (p PeriodUnit) Days() int {
	switch p {
	case PeriodWeekly:
		return 7
	case PeriodBiweekly:
		return 15
	default:
		return 30
	}
}

// NominalPeriods returns how many periods make up one nominal rate period.
// The base rate is defined for one nominal period: 4 weeks, 2 biweeks or
// 1 month.
func (p PeriodUnit) NominalPeriods() int {
	switch p {
	case PeriodWeekly:
		return 4
	case PeriodBiweekly:
		return 2
	default:
		return 1
	}
}

// CreditStatus represents the status of a credit
type CreditStatus string

const (
	CreditStatusPending    CreditStatus = "PENDING"    // Collection in progress
	CreditStatusPaid       CreditStatus = "PAID"       // Fully collected
	CreditStatusOverdue    CreditStatus = "OVERDUE"    // Every unpaid installment is late
	CreditStatusRefinanced CreditStatus = "REFINANCED" // Replaced by a new credit
	CreditStatusVoided     CreditStatus = "VOIDED"     // Annulled before collection
)

// IsValid checks if the status is a valid CreditStatus
func (s CreditStatus) IsValid() bool {
	switch s {
	case CreditStatusPending, CreditStatusPaid, CreditStatusOverdue,
		CreditStatusRefinanced, CreditStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of CreditStatus
func (s CreditStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the credit is in a terminal state.
// Refinanced and voided are irreversible; paid closes collection.
func (s CreditStatus) IsTerminal() bool {
	return s == CreditStatusPaid || s == CreditStatusRefinanced || s == CreditStatusVoided
}

// OpenDueDate is the sentinel due date carried by the single installment of an
// open-modality credit. It never participates in scheduling.
var OpenDueDate = time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)

// Config carries the immutable business parameters of the engine. It is
// injected at construction and never read from process-wide state.
type Config struct {
	BaseRate      decimal.Decimal // minimum percent per nominal period
	DailyMoraRate decimal.Decimal // late-fee fraction per day of delinquency
	CycleCap      int             // maximum consecutive open-modality cycles
	TierReduced   decimal.Decimal // refinancing tier, percent per month
	TierMinimum   decimal.Decimal // refinancing tier, percent per month
}

// DefaultConfig returns the production business parameters.
func DefaultConfig() Config {
	return Config{
		BaseRate:      decimal.NewFromInt(60),
		DailyMoraRate: decimal.NewFromFloat(0.025),
		CycleCap:      3,
		TierReduced:   decimal.NewFromInt(40),
		TierMinimum:   decimal.NewFromInt(20),
	}
}

// Credit is the aggregate root of the lending engine. It owns the terms of a
// loan, its outstanding exposure, and its lifecycle status; installments are
// child entities mutated only through the engine's operations.
type Credit struct {
	shared.BaseAggregateRoot
	BorrowerID       uuid.UUID
	CollectorID      uuid.UUID
	Principal        decimal.Decimal
	Rate             decimal.Decimal // percent; per term for scheduled, per cycle for open
	Modality         Modality
	Period           PeriodUnit
	InstallmentCount int
	Total            decimal.Decimal // total payable at origination
	Balance          decimal.Decimal // outstanding amount still owed
	AccruedInterest  decimal.Decimal // open modality: unpaid interest carried across cycles
	CycleNumber      int             // open modality: last synchronized cycle
	CycleCollected   decimal.Decimal // open modality: interest collected within the active cycle
	Status           CreditStatus
	GrantedAt        time.Time  // origination date
	AcceptedAt       *time.Time // borrower acceptance date
	CommittedAt      time.Time  // commitment date anchoring the schedule
	OriginID         *uuid.UUID // previous credit in a refinancing chain
	FromFinancedSale bool       // originated by a financed sale, not a cash disbursement
}

// NewCreditParams holds the input for credit origination.
type NewCreditParams struct {
	BorrowerID       uuid.UUID
	CollectorID      uuid.UUID
	Principal        decimal.Decimal
	Rate             decimal.Decimal // raw; fraction and percent forms both accepted
	Modality         Modality
	Period           PeriodUnit
	InstallmentCount int
	GrantedAt        time.Time
	AcceptedAt       *time.Time
	CommittedAt      time.Time
	OriginID         *uuid.UUID
	FromFinancedSale bool
}

// NewCredit originates a credit: validates terms, resolves the effective rate
// and prices the total payable. Installments are generated separately by
// GenerateSchedule.
func NewCredit(p NewCreditParams, cfg Config) (*Credit, error) {
	if p.BorrowerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BORROWER", "Borrower is required")
	}
	if p.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Principal must be positive")
	}
	if !p.Modality.IsValid() {
		return nil, shared.NewDomainError("INVALID_MODALITY", fmt.Sprintf("Unknown modality %q", p.Modality))
	}
	if !p.Period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Unknown period unit %q", p.Period))
	}
	if p.CommittedAt.IsZero() {
		return nil, shared.NewDomainError("INVALID_COMMITMENT_DATE", "Commitment date is required")
	}

	count := p.InstallmentCount
	if p.Modality == ModalityOpen {
		// An open credit carries exactly one revolving installment.
		count = 1
	} else if count < 1 {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT_COUNT", "Installment count must be at least 1")
	}

	principal := p.Principal.Round(2)
	rate := resolveRate(p, count, cfg)

	c := &Credit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BorrowerID:        p.BorrowerID,
		CollectorID:       p.CollectorID,
		Principal:         principal,
		Rate:              rate,
		Modality:          p.Modality,
		Period:            p.Period,
		InstallmentCount:  count,
		AccruedInterest:   decimal.Zero,
		CycleNumber:       1,
		CycleCollected:    decimal.Zero,
		Status:            CreditStatusPending,
		GrantedAt:         shared.DateOnly(p.GrantedAt),
		AcceptedAt:        p.AcceptedAt,
		CommittedAt:       shared.DateOnly(p.CommittedAt),
		OriginID:          p.OriginID,
		FromFinancedSale:  p.FromFinancedSale,
	}

	if p.Modality == ModalityOpen {
		// Interest accrues per cycle; the priced total is the principal.
		c.Total = principal
		c.Balance = principal
	} else {
		c.Total = PriceTotal(principal, rate)
		c.Balance = c.Total
	}

	c.AddDomainEvent(NewCreditCreatedEvent(c))

	return c, nil
}

// resolveRate applies the rate policy at origination. Scheduled credits use
// the minimum-base-rate-prorated-by-term rule unless the credit originates
// from a financed sale or a refinancing, both of which supply their own rate.
// Open credits always use the supplied (normalized) cycle rate.
func resolveRate(p NewCreditParams, count int, cfg Config) decimal.Decimal {
	if p.Modality == ModalityOpen || p.FromFinancedSale || p.OriginID != nil {
		return NormalizeRate(p.Rate, cfg.BaseRate)
	}
	return MinimumTermRate(cfg.BaseRate, count, p.Period)
}

// PriceTotal computes the total payable for a flat-rate credit.
func PriceTotal(principal, ratePercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(ratePercent.Div(decimal.NewFromInt(100)))
	return principal.Mul(factor).Round(2)
}

// IsTerminal returns true once the credit reached a terminal status.
func (c *Credit) IsTerminal() bool {
	return c.Status.IsTerminal()
}

// IsOpen returns true for open-modality credits.
func (c *Credit) IsOpen() bool {
	return c.Modality == ModalityOpen
}

// ReduceBalance subtracts a collected amount from the outstanding balance,
// clamping at zero to preserve the non-negative invariant.
func (c *Credit) ReduceBalance(amount decimal.Decimal) {
	c.Balance = c.Balance.Sub(amount)
	if c.Balance.IsNegative() {
		c.Balance = decimal.Zero
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// MarkPaid closes the credit after full collection. Residual mora that was
// not collected is folded into the accrued-interest bookkeeping field.
func (c *Credit) MarkPaid(residualMora decimal.Decimal) error {
	if c.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot settle credit in %s status", c.Status))
	}
	c.Status = CreditStatusPaid
	c.Balance = decimal.Zero
	if residualMora.IsPositive() {
		c.AccruedInterest = c.AccruedInterest.Add(residualMora)
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditSettledEvent(c))
	return nil
}

// MarkRefinanced moves the credit to its terminal refinanced status once its
// exposure has been carried over to a new credit.
func (c *Credit) MarkRefinanced() error {
	if c.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refinance credit in %s status", c.Status))
	}
	c.Status = CreditStatusRefinanced
	c.Balance = decimal.Zero
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditRefinancedEvent(c))
	return nil
}

// Void annuls a credit that never collected a payment.
func (c *Credit) Void() error {
	if c.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void credit in %s status", c.Status))
	}
	c.Status = CreditStatusVoided
	c.Balance = decimal.Zero
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditVoidedEvent(c))
	return nil
}

// SetStatus applies a recomputed status. Refinanced and voided are
// irreversible and only reached through their explicit transitions.
func (c *Credit) SetStatus(status CreditStatus) {
	if c.Status == status || c.Status == CreditStatusRefinanced || c.Status == CreditStatusVoided {
		return
	}
	if status == CreditStatusRefinanced || status == CreditStatusVoided {
		return
	}
	if status == CreditStatusPaid {
		c.Balance = decimal.Zero
	}
	c.Status = status
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// CollectCycleInterest records interest collected inside the active cycle.
// The running total is the authoritative ledger used to net partial payments
// against the theoretical cycle interest.
func (c *Credit) CollectCycleInterest(amount decimal.Decimal) {
	if amount.IsPositive() {
		c.CycleCollected = c.CycleCollected.Add(amount)
	}
}

// AdvanceCycle rolls the credit into a new cycle. Interest left unpaid from
// the closed cycles is carried in AccruedInterest and the per-cycle collected
// counter restarts.
func (c *Credit) AdvanceCycle(cycle int, carriedInterest decimal.Decimal) {
	c.CycleNumber = cycle
	c.CycleCollected = decimal.Zero
	if carriedInterest.IsPositive() {
		c.AccruedInterest = c.AccruedInterest.Add(carriedInterest)
	}
	c.UpdatedAt = time.Now()
}

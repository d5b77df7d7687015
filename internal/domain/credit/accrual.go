package credit

import (
	"fmt"
	"time"

	"github.com/lending/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Accrual computes late fees and open-modality cycle interest as of the
// business "today". It runs lazily on read and immediately before settlement
// or refinancing; there is no scheduler. Every computation is an idempotent
// recompute, safe to repeat.
type Accrual struct {
	cfg   Config
	clock shared.Clock
}

// NewAccrual creates an accrual engine with the given business parameters.
func NewAccrual(cfg Config, clock shared.Clock) Accrual {
	return Accrual{cfg: cfg, clock: clock}
}

// Config returns the engine's immutable business parameters.
func (a Accrual) Config() Config {
	return a.cfg
}

// Today returns the business date the engine accrues against.
func (a Accrual) Today() time.Time {
	return a.clock.Today()
}

// RefreshInstallments recomputes overdue state and mora for the installments
// of a fixed or progressive credit. Installments strictly past due accrue
// mora on the full scheduled amount per whole day late; installments due
// today or later have their mora reset to zero.
func (a Accrual) RefreshInstallments(installments []Installment) {
	today := a.clock.Today()
	for idx := range installments {
		inst := &installments[idx]
		if !inst.Status.Collectable() {
			continue
		}
		daysLate := shared.DaysBetween(inst.DueDate, today)
		if daysLate > 0 {
			inst.Mora = inst.Amount.
				Mul(a.cfg.DailyMoraRate).
				Mul(decimal.NewFromInt(int64(daysLate))).
				Round(2)
			inst.Status = InstallmentStatusOverdue
		} else {
			inst.Mora = decimal.Zero
			if inst.Status == InstallmentStatusOverdue {
				inst.Status = InstallmentStatusPending
			}
		}
		if inst.Paid.IsPositive() && inst.Status == InstallmentStatusPending {
			inst.Status = InstallmentStatusPartial
		}
	}
}

// CycleState is the authoritative read model for an open-modality credit as
// of today. Interest already collected inside the active cycle is netted
// against the theoretical cycle interest so partial payments are never
// charged twice.
type CycleState struct {
	Cycle            int
	DueDate          time.Time
	Principal        decimal.Decimal
	CycleInterest    decimal.Decimal // theoretical interest of the active cycle
	InterestPending  decimal.Decimal // carried unpaid interest plus active-cycle net
	Mora             decimal.Decimal
	DaysLate         int
	UpcomingDueDates []time.Time
}

// TotalDue returns principal plus pending interest plus mora.
func (s CycleState) TotalDue() decimal.Decimal {
	return s.Principal.Add(s.InterestPending).Add(s.Mora)
}

// SyncCycle advances the credit's cycle ledger to today and returns the
// resulting state. Cycles are one calendar month each, numbered from 1 at the
// commitment date; interest left unpaid when a cycle closes is carried in the
// credit's accrued-interest field and the per-cycle collected counter
// restarts.
//
// Exceeding the cycle cap with a nonzero balance is a lifecycle conflict: the
// credit must be paid off or refinanced.
func (a Accrual) SyncCycle(c *Credit) (CycleState, error) {
	return a.syncCycle(c, true)
}

// SyncCycleClamped advances the ledger like SyncCycle but clamps the cycle at
// the cap instead of failing. Settlement and refinancing resolve an over-cap
// credit and still need its payoff figures.
func (a Accrual) SyncCycleClamped(c *Credit) (CycleState, error) {
	return a.syncCycle(c, false)
}

func (a Accrual) syncCycle(c *Credit, enforceCap bool) (CycleState, error) {
	if !c.IsOpen() {
		return CycleState{}, shared.NewDomainError("INVALID_MODALITY", "Cycle accrual applies to open credits only")
	}

	today := a.clock.Today()
	cycle := shared.MonthsBetween(c.CommittedAt, today) + 1

	if cycle > a.cfg.CycleCap {
		if enforceCap && c.Balance.IsPositive() {
			return CycleState{}, shared.NewDomainError("CYCLE_CAP_EXCEEDED",
				fmt.Sprintf("Credit exceeded %d cycles with outstanding balance; payoff or refinancing required", a.cfg.CycleCap))
		}
		cycle = a.cfg.CycleCap
	}

	cycleInterest := c.Balance.Mul(c.Rate).Div(decimal.NewFromInt(100)).Round(2)

	if cycle > c.CycleNumber {
		// Interest of the cycles that closed since the last sync, net of what
		// the active-cycle ledger already collected.
		closed := decimal.NewFromInt(int64(cycle - c.CycleNumber))
		carried := cycleInterest.Mul(closed).Sub(c.CycleCollected)
		if carried.IsNegative() {
			carried = decimal.Zero
		}
		c.AdvanceCycle(cycle, carried)
	}

	dueDate := c.CommittedAt.AddDate(0, cycle-1, 0)
	daysLate := shared.DaysBetween(dueDate, today)
	if daysLate < 0 {
		daysLate = 0
	}

	// No mora accrues on the commitment day itself; from the following day
	// the penalty runs on the cycle interest, not on principal.
	mora := a.cfg.DailyMoraRate.
		Mul(cycleInterest).
		Mul(decimal.NewFromInt(int64(daysLate))).
		Round(2)

	netActive := cycleInterest.Sub(c.CycleCollected)
	if netActive.IsNegative() {
		netActive = decimal.Zero
	}
	interestPending := c.AccruedInterest.Add(netActive).Round(2)

	upcoming := make([]time.Time, 0, 3)
	for i := 0; i < 3; i++ {
		upcoming = append(upcoming, c.CommittedAt.AddDate(0, cycle-1+i, 0))
	}

	return CycleState{
		Cycle:            cycle,
		DueDate:          dueDate,
		Principal:        c.Balance,
		CycleInterest:    cycleInterest,
		InterestPending:  interestPending,
		Mora:             mora,
		DaysLate:         daysLate,
		UpcomingDueDates: upcoming,
	}, nil
}

// RefreshOpenInstallment updates the single revolving installment of an open
// credit in place from the current cycle state. The row is refreshed, never
// replaced.
func (a Accrual) RefreshOpenInstallment(c *Credit, inst *Installment, state CycleState) {
	if inst.Status.IsTerminal() {
		return
	}
	inst.Amount = c.Balance
	inst.Mora = state.Mora
	switch {
	case state.DaysLate > 0:
		inst.Status = InstallmentStatusOverdue
	case inst.Paid.IsPositive():
		inst.Status = InstallmentStatusPartial
	default:
		inst.Status = InstallmentStatusPending
	}
	inst.UpdatedAt = time.Now()
}

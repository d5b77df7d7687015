package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/lending/backend/internal/domain/credit"
	"github.com/lending/backend/internal/domain/shared"
)

// CreditAuditHandler writes an audit log line for every credit
// lifecycle transition.
type CreditAuditHandler struct {
	logger *zap.Logger
}

func NewCreditAuditHandler(logger *zap.Logger) *CreditAuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditAuditHandler{logger: logger}
}

func (h *CreditAuditHandler) EventNames() []string {
	return []string{
		credit.EventCreditCreated,
		credit.EventCreditSettled,
		credit.EventCreditRefinanced,
		credit.EventCreditVoided,
	}
}

func (h *CreditAuditHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.logger.Info("credit lifecycle event",
		zap.String("event", evt.EventName()),
		zap.String("credit_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
	)
	return nil
}

package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/lending/backend/internal/domain/shared"
)

// Handler consumes domain events published on the bus.
type Handler interface {
	// EventNames returns the event names this handler subscribes to.
	EventNames() []string
	Handle(ctx context.Context, event shared.DomainEvent) error
}

// InMemoryBus dispatches domain events synchronously to subscribed
// handlers within the same process. A failing handler is logged and
// does not stop delivery to the remaining handlers.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers the handler for every event name it declares.
func (b *InMemoryBus) Subscribe(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range handler.EventNames() {
		b.handlers[name] = append(b.handlers[name], handler)
	}
}

// Publish delivers each event to its subscribers in registration order.
func (b *InMemoryBus) Publish(ctx context.Context, events ...shared.DomainEvent) {
	for _, evt := range events {
		b.mu.RLock()
		subscribers := b.handlers[evt.EventName()]
		b.mu.RUnlock()

		for _, handler := range subscribers {
			if err := handler.Handle(ctx, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event", evt.EventName()),
					zap.String("aggregate_id", evt.AggregateID().String()),
					zap.Error(err),
				)
			}
		}
	}
}

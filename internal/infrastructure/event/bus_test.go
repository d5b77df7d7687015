package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/lending/backend/internal/domain/shared"
)

type recordingHandler struct {
	names    []string
	received []shared.DomainEvent
	err      error
}

func (h *recordingHandler) EventNames() []string { return h.names }

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.received = append(h.received, evt)
	return h.err
}

func TestInMemoryBus_Publish_DeliversToSubscriber(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	handler := &recordingHandler{names: []string{"credit.created"}}
	bus.Subscribe(handler)

	evt := shared.NewBaseDomainEvent("credit.created", uuid.New())
	bus.Publish(context.Background(), evt)

	assert.Len(t, handler.received, 1)
	assert.Equal(t, "credit.created", handler.received[0].EventName())
}

func TestInMemoryBus_Publish_SkipsUnsubscribedNames(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	handler := &recordingHandler{names: []string{"credit.settled"}}
	bus.Subscribe(handler)

	bus.Publish(context.Background(), shared.NewBaseDomainEvent("credit.created", uuid.New()))

	assert.Empty(t, handler.received)
}

func TestInMemoryBus_Publish_ContinuesAfterHandlerError(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	failing := &recordingHandler{names: []string{"credit.voided"}, err: errors.New("boom")}
	second := &recordingHandler{names: []string{"credit.voided"}}
	bus.Subscribe(failing)
	bus.Subscribe(second)

	bus.Publish(context.Background(), shared.NewBaseDomainEvent("credit.voided", uuid.New()))

	assert.Len(t, failing.received, 1)
	assert.Len(t, second.received, 1)
}

func TestInMemoryBus_Publish_MultipleEvents(t *testing.T) {
	bus := NewInMemoryBus(zap.NewNop())
	handler := &recordingHandler{names: []string{"credit.created", "credit.refinanced"}}
	bus.Subscribe(handler)

	bus.Publish(context.Background(),
		shared.NewBaseDomainEvent("credit.created", uuid.New()),
		shared.NewBaseDomainEvent("credit.refinanced", uuid.New()),
	)

	assert.Len(t, handler.received, 2)
}

func TestCreditAuditHandler_SubscribesToLifecycleEvents(t *testing.T) {
	handler := NewCreditAuditHandler(zap.NewNop())

	assert.ElementsMatch(t, []string{
		"credit.created",
		"credit.settled",
		"credit.refinanced",
		"credit.voided",
	}, handler.EventNames())

	err := handler.Handle(context.Background(), shared.NewBaseDomainEvent("credit.settled", uuid.New()))
	assert.NoError(t, err)
}

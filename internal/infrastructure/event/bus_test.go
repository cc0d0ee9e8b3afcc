package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	err        error
	panics     bool
	mu         sync.Mutex
	handled    []shared.DomainEvent
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	typed := &testHandler{eventTypes: []string{"A"}}
	wildcard := &testHandler{}
	other := &testHandler{eventTypes: []string{"B"}}
	bus.Subscribe(typed)
	bus.Subscribe(wildcard)
	bus.Subscribe(other)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("A")))

	assert.Equal(t, 2, typed.count())
	assert.Equal(t, 2, wildcard.count())
	assert.Equal(t, 0, other.count())
}

func TestInMemoryEventBus_SubscribeOverridesDeclaredTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(h, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailingHandlersAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &testHandler{eventTypes: []string{"A"}, err: errors.New("handler error")}
	panicking := &testHandler{eventTypes: []string{"A"}, panics: true}
	healthy := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(h)

	_ = bus.Publish(context.Background(), newTestEvent("A"))
	bus.Unsubscribe(h)
	_ = bus.Publish(context.Background(), newTestEvent("A"))

	assert.Equal(t, 1, h.count())
	assert.Empty(t, bus.registry.HandlersFor("A"))
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Stop(ctx))
}

func TestLogHandler_WritesBillingEvents(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewLogHandler(zap.New(core)))

	inv := &invoicing.Invoice{PropertyID: uuid.New(), Number: "FAC-2025-A-001-1", Total: decimal.NewFromInt(27500)}
	require.NoError(t, bus.Publish(context.Background(),
		invoicing.NewInvoiceIssuedEvent(inv),
		newTestEvent("Unrelated"),
	))

	entries := logs.FilterMessage("Billing event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, invoicing.EventTypeInvoiceIssued, fields["event_type"])
	assert.Equal(t, "FAC-2025-A-001-1", fields["invoice_number"])
	assert.Equal(t, "27500", fields["total"])
}

package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/shared"
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
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, e)
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.eventTypes }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T, opts ...BusOption) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop(), opts...)
	require.NoError(t, bus.Start(context.Background()))
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t)
	created := &recordingHandler{eventTypes: []string{"InvoiceCreated"}}
	all := &recordingHandler{}
	bus.Subscribe(created)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(), newTestEvent("InvoiceCreated"), newTestEvent("InvoiceOverdue"))

	require.NoError(t, err)
	assert.Equal(t, 1, created.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{eventTypes: []string{"InvoiceCreated"}}
	bus.Subscribe(h, "InvoiceOverdue")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
	assert.Equal(t, 0, h.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceOverdue")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_HandlerFailureDoesNotStopDelivery(t *testing.T) {
	var failures []string
	bus := startedBus(t, WithHandlerErrorFunc(func(eventType string, err error) {
		failures = append(failures, eventType+": "+err.Error())
	}))
	failing := &recordingHandler{err: errors.New("boom")}
	panicking := &recordingHandler{panicWith: "nil map"}
	healthy := &recordingHandler{}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newTestEvent("AssetStatusChanged"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, []string{
		"AssetStatusChanged: boom",
		"AssetStatusChanged: handler panicked: nil map",
	}, failures)
}

func TestInMemoryEventBus_DropsWhileStopped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	h := &recordingHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
	assert.Equal(t, 0, h.count())
	assert.Equal(t, 1, logs.FilterMessage("event bus is stopped, dropping events").Len())

	require.NoError(t, bus.Start(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
	assert.Equal(t, 1, h.count())

	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InvoiceCreated")))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := startedBus(t)
	h := &recordingHandler{}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent("InvoicePaymentRecorded"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, h.count())
}

package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/indentflow/backend/internal/domain/shared"
	"github.com/indentflow/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockEventHandler struct {
	mock.Mock
}

func (m *MockEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventHandler) EventTypes() []string {
	return m.Called().Get(0).([]string)
}

type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	return m.Called().Error(0)
}

type receiptRecordedEvent struct {
	shared.BaseDomainEvent
	ReceiptNo string
}

func newReceiptRecordedEvent() *receiptRecordedEvent {
	return &receiptRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			"inventory.receipt_recorded", "GoodsReceipt", uuid.New(), uuid.New(),
		),
		ReceiptNo: "GRN-2026-0042",
	}
}

// newIdempotencyEnv wires a mock handler to an in-memory store, cleaning
// the store up when the test ends.
func newIdempotencyEnv(t *testing.T, opts ...IdempotentHandlerOption) (*MockEventHandler, *IdempotentHandler) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { store.Close() })
	inner := new(MockEventHandler)
	return inner, NewIdempotentHandler(inner, store, zap.NewNop(), opts...)
}

func TestIdempotentHandler_FirstDeliveryReachesInnerHandler(t *testing.T) {
	inner, handler := newIdempotencyEnv(t)
	event := newReceiptRecordedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil)

	require.NoError(t, handler.Handle(context.Background(), event))

	inner.AssertExpectations(t)
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(0), stats.EventsDuplicate)
}

func TestIdempotentHandler_RedeliveryIsSuppressed(t *testing.T) {
	inner, handler := newIdempotencyEnv(t)
	event := newReceiptRecordedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(2), stats.EventsDuplicate)
}

func TestIdempotentHandler_InnerFailurePropagates(t *testing.T) {
	inner, handler := newIdempotencyEnv(t)
	event := newReceiptRecordedEvent()
	wantErr := errors.New("stock adjustment failed")
	inner.On("Handle", mock.Anything, event).Return(wantErr)

	err := handler.Handle(context.Background(), event)
	require.ErrorIs(t, err, wantErr)

	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(0), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsFailed)
}

func TestIdempotentHandler_StoreFailureStillDelivers(t *testing.T) {
	store := new(MockIdempotencyStore)
	inner := new(MockEventHandler)
	event := newReceiptRecordedEvent()

	store.On("MarkProcessed", mock.Anything, event.EventID().String(), mock.Anything).
		Return(false, errors.New("redis unreachable"))
	inner.On("Handle", mock.Anything, event).Return(nil)

	handler := NewIdempotentHandler(inner, store, zap.NewNop())
	require.NoError(t, handler.Handle(context.Background(), event))

	store.AssertExpectations(t)
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_DisabledBypassesStore(t *testing.T) {
	config := shared.DefaultIdempotencyConfig()
	config.Enabled = false
	inner, handler := newIdempotencyEnv(t, WithIdempotencyConfig(config))

	event := newReceiptRecordedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Times(3)

	for i := 0; i < 3; i++ {
		require.NoError(t, handler.Handle(context.Background(), event))
	}

	inner.AssertExpectations(t)
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(0), stats.EventsProcessed)
	assert.Equal(t, int64(0), stats.EventsDuplicate)
}

func TestIdempotentHandler_EventTypesDelegate(t *testing.T) {
	inner, handler := newIdempotencyEnv(t)
	inner.On("EventTypes").Return([]string{"inventory.receipt_recorded", "inventory.issue_recorded"})

	assert.Equal(t, []string{"inventory.receipt_recorded", "inventory.issue_recorded"}, handler.EventTypes())
	inner.AssertExpectations(t)
}

func TestIdempotentHandler_SharedMetricsAggregate(t *testing.T) {
	counters := &IdempotencyMetrics{}
	inner1, handler1 := newIdempotencyEnv(t, WithIdempotencyMetrics(counters))
	inner2, handler2 := newIdempotencyEnv(t, WithIdempotencyMetrics(counters))

	event1 := newReceiptRecordedEvent()
	event2 := newReceiptRecordedEvent()
	inner1.On("Handle", mock.Anything, event1).Return(nil)
	inner2.On("Handle", mock.Anything, event2).Return(nil)

	require.NoError(t, handler1.Handle(context.Background(), event1))
	require.NoError(t, handler2.Handle(context.Background(), event2))

	assert.Equal(t, int64(2), counters.Stats().EventsProcessed)
}

func TestIdempotentHandler_ConcurrentRedelivery(t *testing.T) {
	inner, handler := newIdempotencyEnv(t)
	event := newReceiptRecordedEvent()
	inner.On("Handle", mock.Anything, event).Return(nil).Once()

	const deliveries = 50
	errCh := make(chan error, deliveries)
	for i := 0; i < deliveries; i++ {
		go func() { errCh <- handler.Handle(context.Background(), event) }()
	}
	for i := 0; i < deliveries; i++ {
		assert.NoError(t, <-errCh)
	}

	inner.AssertExpectations(t)
	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(deliveries-1), stats.EventsDuplicate)
}

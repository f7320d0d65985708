package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadEntry() *OutboxEntry {
	return &OutboxEntry{
		ID:          uuid.New(),
		TenantID:    uuid.New(),
		EventID:     uuid.New(),
		EventType:   "indent.submitted",
		AggregateID: uuid.New(),
		Status:      OutboxStatusDead,
		RetryCount:  5,
		MaxRetries:  5,
		LastError:   "broker unreachable",
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now().Add(-time.Minute),
	}
}

var nonDeadStatuses = []OutboxStatus{
	OutboxStatusPending,
	OutboxStatusProcessing,
	OutboxStatusSent,
	OutboxStatusFailed,
}

func TestOutboxEntry_ResetForRetry(t *testing.T) {
	t.Run("requeues a dead entry with a fresh budget", func(t *testing.T) {
		entry := deadEntry()

		require.NoError(t, entry.ResetForRetry())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Equal(t, 0, entry.RetryCount)
		assert.Empty(t, entry.LastError)
		assert.Nil(t, entry.NextRetryAt)
		assert.True(t, entry.UpdatedAt.After(time.Now().Add(-time.Second)))
	})

	t.Run("rejects entries that are not dead", func(t *testing.T) {
		for _, status := range nonDeadStatuses {
			entry := &OutboxEntry{ID: uuid.New(), Status: status}

			err := entry.ResetForRetry()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "can only retry dead letter entries")
		}
	})
}

func TestOutboxEntry_IsDead(t *testing.T) {
	assert.True(t, (&OutboxEntry{Status: OutboxStatusDead}).IsDead())

	for _, status := range nonDeadStatuses {
		assert.False(t, (&OutboxEntry{Status: status}).IsDead(), "status %s", status)
	}
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("moves to dead once retries are exhausted", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusProcessing,
			RetryCount: 4,
			MaxRetries: 5,
		}

		entry.MarkFailed("final error")

		assert.Equal(t, OutboxStatusDead, entry.Status)
		assert.Equal(t, 5, entry.RetryCount)
		assert.Equal(t, "final error", entry.LastError)
		assert.True(t, entry.IsDead())
	})

	t.Run("backs off exponentially between attempts", func(t *testing.T) {
		entry := &OutboxEntry{
			ID:         uuid.New(),
			Status:     OutboxStatusProcessing,
			MaxRetries: 5,
		}

		// Each failure doubles the delay before the next attempt.
		windows := []struct {
			low, high time.Duration
		}{
			{0, 2 * time.Second},
			{time.Second, 3 * time.Second},
			{3 * time.Second, 5 * time.Second},
		}

		for i, window := range windows {
			entry.Status = OutboxStatusProcessing
			entry.MarkFailed("delivery timed out")

			assert.Equal(t, OutboxStatusFailed, entry.Status)
			assert.Equal(t, i+1, entry.RetryCount)
			require.NotNil(t, entry.NextRetryAt)
			backoff := time.Until(*entry.NextRetryAt)
			assert.True(t, backoff > window.low && backoff <= window.high,
				"attempt %d: backoff %s outside (%s, %s]", i+1, backoff, window.low, window.high)
		}
	})
}

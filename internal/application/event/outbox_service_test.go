package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/indentflow/backend/internal/domain/shared"
)

// stubOutboxRepo keeps entries in a map, enough to drive the service.
type stubOutboxRepo struct {
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newStubOutboxRepo() *stubOutboxRepo {
	return &stubOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *stubOutboxRepo) add(entries ...*shared.OutboxEntry) {
	for _, e := range entries {
		r.entries[e.ID] = e
	}
}

func (r *stubOutboxRepo) Save(ctx context.Context, entries ...*shared.OutboxEntry) error {
	r.add(entries...)
	return nil
}

func (r *stubOutboxRepo) FindPending(ctx context.Context, limit int) ([]*shared.OutboxEntry, error) {
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *stubOutboxRepo) FindRetryable(ctx context.Context, before time.Time, limit int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *stubOutboxRepo) FindDead(ctx context.Context, page, pageSize int) ([]*shared.OutboxEntry, int64, error) {
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	total := int64(len(dead))

	start := (page - 1) * pageSize
	if start >= len(dead) {
		return nil, total, nil
	}
	end := min(start+pageSize, len(dead))
	return dead[start:end], total, nil
}

func (r *stubOutboxRepo) FindByID(ctx context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	return r.entries[id], nil
}

func (r *stubOutboxRepo) MarkProcessing(ctx context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *stubOutboxRepo) Update(ctx context.Context, entry *shared.OutboxEntry) error {
	r.entries[entry.ID] = entry
	return nil
}

func (r *stubOutboxRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (r *stubOutboxRepo) CountByStatus(ctx context.Context) (map[shared.OutboxStatus]int64, error) {
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func newOutboxServiceUnderTest() (*OutboxService, *stubOutboxRepo) {
	repo := newStubOutboxRepo()
	return NewOutboxService(repo, zap.NewNop()), repo
}

// deadDeliveryEntry is an indent.approved delivery that exhausted its
// retries.
func deadDeliveryEntry() *shared.OutboxEntry {
	now := time.Now()
	return &shared.OutboxEntry{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		EventID:       uuid.New(),
		EventType:     "indent.approved",
		AggregateID:   uuid.New(),
		AggregateType: "Indent",
		Status:        shared.OutboxStatusDead,
		RetryCount:    5,
		MaxRetries:    5,
		LastError:     "event bus unreachable",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestOutboxService_GetDeadLetterEntries(t *testing.T) {
	service, repo := newOutboxServiceUnderTest()

	for i := 0; i < 5; i++ {
		repo.add(deadDeliveryEntry())
	}
	repo.add(&shared.OutboxEntry{ID: uuid.New(), Status: shared.OutboxStatusPending})

	result, err := service.GetDeadLetterEntries(context.Background(), OutboxFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.Total)
	assert.Len(t, result.Entries, 5)

	for _, entry := range result.Entries {
		assert.Equal(t, "DEAD", entry.Status)
	}
}

func TestOutboxService_RetryDeadEntry(t *testing.T) {
	service, repo := newOutboxServiceUnderTest()

	dead := deadDeliveryEntry()
	repo.add(dead)

	result, err := service.RetryDeadEntry(context.Background(), dead.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", result.Status)
	assert.Equal(t, 0, result.RetryCount)
	assert.Empty(t, result.LastError)
}

func TestOutboxService_RetryDeadEntry_NotFound(t *testing.T) {
	service, _ := newOutboxServiceUnderTest()

	_, err := service.RetryDeadEntry(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestOutboxService_RetryDeadEntry_NotDead(t *testing.T) {
	service, repo := newOutboxServiceUnderTest()

	pending := &shared.OutboxEntry{ID: uuid.New(), Status: shared.OutboxStatusPending}
	repo.add(pending)

	// only dead entries may be reset
	_, err := service.RetryDeadEntry(context.Background(), pending.ID)
	assert.Error(t, err)
}

func TestOutboxService_GetStats(t *testing.T) {
	service, repo := newOutboxServiceUnderTest()

	for _, status := range []shared.OutboxStatus{
		shared.OutboxStatusPending,
		shared.OutboxStatusPending,
		shared.OutboxStatusProcessing,
		shared.OutboxStatusSent,
		shared.OutboxStatusSent,
		shared.OutboxStatusSent,
		shared.OutboxStatusFailed,
		shared.OutboxStatusDead,
	} {
		repo.add(&shared.OutboxEntry{ID: uuid.New(), Status: status})
	}

	stats, err := service.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Processing)
	assert.Equal(t, int64(3), stats.Sent)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(1), stats.Dead)
	assert.Equal(t, int64(8), stats.Total)
}

func TestOutboxService_RetryAllDeadEntries(t *testing.T) {
	service, repo := newOutboxServiceUnderTest()

	for i := 0; i < 3; i++ {
		repo.add(deadDeliveryEntry())
	}
	pending := &shared.OutboxEntry{ID: uuid.New(), Status: shared.OutboxStatusPending}
	repo.add(pending)

	count, err := service.RetryAllDeadEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	for _, entry := range repo.entries {
		assert.Equal(t, shared.OutboxStatusPending, entry.Status)
		if entry.ID != pending.ID {
			assert.Equal(t, 0, entry.RetryCount)
		}
	}
}

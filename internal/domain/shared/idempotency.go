package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers which event IDs have been handled so a
// redelivered event is processed exactly once.
type IdempotencyStore interface {
	// MarkProcessed claims the event ID for ttl. True means this call
	// claimed it; false means it was already handled.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether the event ID holds a live claim.
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources.
	Close() error
}

// IdempotencyConfig tunes dedup behavior for event consumers.
type IdempotencyConfig struct {
	// TTL bounds how long an event ID is remembered. After it lapses the
	// same ID would be processed again.
	TTL time.Duration

	// Enabled turns dedup off entirely when false.
	Enabled bool
}

// DefaultIdempotencyConfig remembers events for a day.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

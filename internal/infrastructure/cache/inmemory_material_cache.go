package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appinventory "github.com/indentflow/backend/internal/application/inventory"
	"github.com/indentflow/backend/internal/domain/inventory"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
)

// InMemoryMaterialCache implements MaterialCache using in-memory storage.
// Suitable for single-instance deployments and as a fallback when Redis
// is unavailable.
type InMemoryMaterialCache struct {
	materials sync.Map // map[string]*materialEntry
	ttl       time.Duration
	logger    *zap.Logger
	stopCh    chan struct{} // Channel to stop the cleanup goroutine
	stopped   int32         // Atomic flag to track if cache is stopped

	// Stats for monitoring
	hits   int64
	misses int64
}

// materialEntry wraps a cached material with expiration time
type materialEntry struct {
	value     *inventory.Material
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *materialEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryMaterialCacheOption is a functional option for configuring the cache
type InMemoryMaterialCacheOption func(*InMemoryMaterialCache)

// WithInMemoryMaterialTTL sets the entry TTL
func WithInMemoryMaterialTTL(ttl time.Duration) InMemoryMaterialCacheOption {
	return func(c *InMemoryMaterialCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryMaterialLogger sets the logger for the cache
func WithInMemoryMaterialLogger(logger *zap.Logger) InMemoryMaterialCacheOption {
	return func(c *InMemoryMaterialCache) {
		c.logger = logger
	}
}

// NewInMemoryMaterialCache creates a new in-memory material cache
func NewInMemoryMaterialCache(opts ...InMemoryMaterialCacheOption) *InMemoryMaterialCache {
	cache := &InMemoryMaterialCache{
		ttl:    defaultMaterialTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	// Start background cleanup goroutine
	go cache.cleanupExpired()

	return cache
}

// cacheKey generates the cache key for a material
func (c *InMemoryMaterialCache) cacheKey(tenantID, materialID uuid.UUID) string {
	return tenantID.String() + ":" + materialID.String()
}

// Get retrieves a material from cache
func (c *InMemoryMaterialCache) Get(ctx context.Context, tenantID, materialID uuid.UUID) (*inventory.Material, bool) {
	cacheKey := c.cacheKey(tenantID, materialID)

	if value, ok := c.materials.Load(cacheKey); ok {
		entry := value.(*materialEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("Cache hit for material", zap.String("material_id", materialID.String()))
			return entry.value, true
		}
		// Expired, remove from cache
		c.materials.Delete(cacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("Cache miss for material", zap.String("material_id", materialID.String()))
	return nil, false
}

// Set stores a material in cache
func (c *InMemoryMaterialCache) Set(ctx context.Context, material *inventory.Material) {
	if material == nil {
		return
	}

	cacheKey := c.cacheKey(material.TenantID, material.ID)
	entry := &materialEntry{
		value:     material,
		expiresAt: time.Now().Add(c.ttl),
	}

	c.materials.Store(cacheKey, entry)
	c.logger.Debug("Cached material",
		zap.String("material_id", material.ID.String()),
		zap.Duration("ttl", c.ttl))
}

// Invalidate removes a material from cache
func (c *InMemoryMaterialCache) Invalidate(ctx context.Context, tenantID, materialID uuid.UUID) {
	c.materials.Delete(c.cacheKey(tenantID, materialID))
	c.logger.Debug("Deleted material from cache", zap.String("material_id", materialID.String()))
}

// Close releases any resources held by the cache
func (c *InMemoryMaterialCache) Close() error {
	// Only close once
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryMaterialCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryMaterialCache) Count() int {
	count := 0
	c.materials.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryMaterialCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in cache cleanup",
							zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

// doCleanup removes expired entries
func (c *InMemoryMaterialCache) doCleanup() {
	var removed int

	c.materials.Range(func(key, value any) bool {
		entry := value.(*materialEntry)
		if entry.isExpired() {
			c.materials.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired material cache entries",
			zap.Int("removed", removed))
	}
}

// Ensure InMemoryMaterialCache implements MaterialCache
var _ appinventory.MaterialCache = (*InMemoryMaterialCache)(nil)

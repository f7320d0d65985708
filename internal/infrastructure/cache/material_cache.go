package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appinventory "github.com/indentflow/backend/internal/application/inventory"
	"github.com/indentflow/backend/internal/domain/inventory"
)

const defaultMaterialTTL = 10 * time.Minute

// RedisMaterialCache implements MaterialCache using Redis
type RedisMaterialCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisMaterialCacheOption is a functional option for configuring the cache
type RedisMaterialCacheOption func(*RedisMaterialCache)

// WithMaterialCacheTTL sets the entry TTL
func WithMaterialCacheTTL(ttl time.Duration) RedisMaterialCacheOption {
	return func(c *RedisMaterialCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaterialCacheLogger sets the logger for the cache
func WithMaterialCacheLogger(logger *zap.Logger) RedisMaterialCacheOption {
	return func(c *RedisMaterialCache) {
		c.logger = logger
	}
}

// NewRedisMaterialCache creates a new Redis-based material cache
func NewRedisMaterialCache(cfg RedisConfig, opts ...RedisMaterialCacheOption) (*RedisMaterialCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisMaterialCache{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		ttl:        defaultMaterialTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisMaterialCacheWithClient creates a cache with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisMaterialCacheWithClient(client *redis.Client, opts ...RedisMaterialCacheOption) *RedisMaterialCache {
	cache := &RedisMaterialCache{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		ttl:        defaultMaterialTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// materialCacheKey generates the cache key for a material
func (c *RedisMaterialCache) materialCacheKey(tenantID, materialID uuid.UUID) string {
	return fmt.Sprintf("material:%s:%s", tenantID.String(), materialID.String())
}

// Get retrieves a material from cache
func (c *RedisMaterialCache) Get(ctx context.Context, tenantID, materialID uuid.UUID) (*inventory.Material, bool) {
	cacheKey := c.materialCacheKey(tenantID, materialID)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		// Cache miss
		c.logger.Debug("Cache miss for material", zap.String("material_id", materialID.String()))
		return nil, false
	}
	if err != nil {
		c.logger.Error("Failed to get material from cache",
			zap.String("material_id", materialID.String()),
			zap.Error(err))
		return nil, false
	}

	var material inventory.Material
	if err := json.Unmarshal(data, &material); err != nil {
		c.logger.Error("Failed to unmarshal cached material",
			zap.String("material_id", materialID.String()),
			zap.Error(err))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
		return nil, false
	}

	c.logger.Debug("Cache hit for material", zap.String("material_id", materialID.String()))
	return &material, true
}

// Set stores a material in cache
func (c *RedisMaterialCache) Set(ctx context.Context, material *inventory.Material) {
	if material == nil {
		return
	}

	cacheKey := c.materialCacheKey(material.TenantID, material.ID)

	data, err := json.Marshal(material)
	if err != nil {
		c.logger.Error("Failed to marshal material",
			zap.String("material_id", material.ID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, cacheKey, data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to set material in cache",
			zap.String("material_id", material.ID.String()),
			zap.Error(err))
		return
	}

	c.logger.Debug("Cached material",
		zap.String("material_id", material.ID.String()),
		zap.Duration("ttl", c.ttl))
}

// Invalidate removes a material from cache
func (c *RedisMaterialCache) Invalidate(ctx context.Context, tenantID, materialID uuid.UUID) {
	cacheKey := c.materialCacheKey(tenantID, materialID)

	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Error("Failed to delete material from cache",
			zap.String("material_id", materialID.String()),
			zap.Error(err))
		return
	}

	c.logger.Debug("Deleted material from cache", zap.String("material_id", materialID.String()))
}

// Close releases any resources held by the cache
func (c *RedisMaterialCache) Close() error {
	// Only close client if we own it
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisMaterialCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisMaterialCache implements MaterialCache
var _ appinventory.MaterialCache = (*RedisMaterialCache)(nil)

package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is an in-memory fixed-window limiter. Each key gets a token
// bucket that refills when its window elapses.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	tokens    int
	windowEnd time.Time
}

// NewRateLimiter allows up to limit requests per key per window. A
// background sweep drops buckets idle for two windows.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, b := range rl.buckets {
			if now.Sub(b.windowEnd) > rl.window {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow consumes one token for key, returning false when the window's
// budget is spent.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, ok := rl.buckets[key]
	if !ok || !now.Before(b.windowEnd) {
		rl.buckets[key] = &bucket{tokens: rl.limit - 1, windowEnd: now.Add(rl.window)}
		return true
	}
	if b.tokens > 0 {
		b.tokens--
		return true
	}
	return false
}

// Remaining reports how many requests key has left in the current window.
func (rl *RateLimiter) Remaining(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || !time.Now().Before(b.windowEnd) {
		return rl.limit
	}
	return b.tokens
}

// throttle is the shared middleware body. retryAfter controls whether a
// Retry-After header accompanies the rejection.
func throttle(limiter *RateLimiter, keyFunc func(*gin.Context) string, code, message string, retryAfter bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			if retryAfter {
				c.Header("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error": gin.H{
					"code":    code,
					"message": message,
				},
			})
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

// RateLimit throttles by client IP, further partitioned by the
// X-Tenant-ID header so tenants do not consume each other's budget
// behind a shared proxy.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return throttle(limiter, func(c *gin.Context) string {
		key := c.ClientIP()
		if tenantID := c.GetHeader("X-Tenant-ID"); tenantID != "" {
			key = tenantID + ":" + key
		}
		return key
	}, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", false)
}

// AuthRateLimit is the stricter limiter for login and refresh. Keys are
// prefixed so auth attempts are counted separately from general API
// traffic on the same IP.
func AuthRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return throttle(limiter, func(c *gin.Context) string {
		return "auth:" + c.ClientIP()
	}, "AUTH_RATE_LIMIT_EXCEEDED", "Too many authentication attempts. Please try again later.", true)
}

// RateLimitByKey throttles with a caller-supplied key extractor, for
// routes that need per-user or per-machine budgets instead of per-IP.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return throttle(limiter, keyFunc, "RATE_LIMIT_EXCEEDED", "Too many requests. Please try again later.", false)
}

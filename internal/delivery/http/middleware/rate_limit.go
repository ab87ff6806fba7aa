package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"contact-backend/internal/delivery/http/response"
	"contact-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// WindowCounter counts hits for a key within a fixed window. The redis client
// implements it; a nil counter selects the in-memory store.
type WindowCounter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis
	KeyPrefix string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
}

// ContactRateLimitConfig limits contact submissions per client IP. Callers
// skip the limiter entirely when perMinute is not positive.
func ContactRateLimitConfig(perMinute int) RateLimitConfig {
	return RateLimitConfig{
		Limit:      perMinute,
		Window:     time.Minute,
		KeyPrefix:  "rl:contact:",
		FailClosed: false,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// rateLimitEntry tracks request count for a key (in-memory fallback)
type rateLimitEntry struct {
	count   int
	resetAt time.Time
	mu      sync.Mutex
}

type memoryCounter struct {
	entries     sync.Map
	cleanupOnce sync.Once
}

func (m *memoryCounter) IncrWindow(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	m.cleanupOnce.Do(func() { go m.cleanup(window) })

	now := time.Now()
	entryI, _ := m.entries.LoadOrStore(key, &rateLimitEntry{resetAt: now.Add(window)})
	entry := entryI.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.resetAt) {
		entry.count = 0
		entry.resetAt = now.Add(window)
	}
	entry.count++

	return entry.count, entry.resetAt, nil
}

func (m *memoryCounter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every * 5)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		m.entries.Range(func(key, value interface{}) bool {
			entry := value.(*rateLimitEntry)
			entry.mu.Lock()
			if now.After(entry.resetAt) {
				m.entries.Delete(key)
			}
			entry.mu.Unlock()
			return true
		})
	}
}

// RateLimitMiddleware creates a rate limiting middleware with the given config.
// Redis errors fall back to the in-memory store unless FailClosed is set.
func RateLimitMiddleware(config RateLimitConfig, counter WindowCounter, secLog *security.SecurityLogger) gin.HandlerFunc {
	fallback := &memoryCounter{}
	if counter == nil {
		counter = fallback
	}
	if secLog == nil {
		secLog = security.Nop()
	}

	return func(c *gin.Context) {
		fullKey := config.KeyPrefix + config.KeyFunc(c)

		count, resetAt, err := counter.IncrWindow(c.Request.Context(), fullKey, config.Window)
		if err != nil {
			if config.FailClosed {
				response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable. Please try again.", "")
				c.Abort()
				return
			}
			count, resetAt, _ = fallback.IncrWindow(c.Request.Context(), fullKey, config.Window)
		}

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			secLog.LogRateLimitTriggered(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(RequestIDKey), c.FullPath())

			response.Error(c, http.StatusTooManyRequests, "Too many requests. Please try again later.", "")
			c.Abort()
			return
		}

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		c.Next()
	}
}

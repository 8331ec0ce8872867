package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cyphera/cyphera-xdk/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	limiterIdleTimeout     = 10 * time.Minute
)

// RateLimiter limits requests per client IP
type RateLimiter struct {
	limiters sync.Map // client id -> *limiterEntry
	rate     rate.Limit
	burst    int

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64 // unix nanoseconds
}

// NewRateLimiter creates a new rate limiter with the specified rate and
// burst, and starts a goroutine that drops idle clients until Stop.
func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:            rate.Limit(requestsPerSecond),
		burst:           burst,
		cleanupInterval: defaultCleanupInterval,
		stop:            make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.limiters.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		if now.Sub(time.Unix(0, entry.lastAccess.Load())) > limiterIdleTimeout {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now().UnixNano()
	if val, ok := rl.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.lastAccess.Store(now)
		return entry.limiter
	}

	entry := &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
	entry.lastAccess.Store(now)

	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

func getClientIdentifier(c *gin.Context) string {
	if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
		return fmt.Sprintf("ip:%s", forwardedFor)
	}

	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = "unknown"
	}
	return fmt.Sprintf("ip:%s", clientIP)
}

// Middleware returns a Gin middleware handler for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	limit := strconv.FormatFloat(float64(rl.rate), 'f', -1, 64)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		clientID := getClientIdentifier(c)
		limiter := rl.getLimiter(clientID)
		reset := strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10)

		if !limiter.Allow() {
			logger.FromContext(c.Request.Context()).Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)

			c.Header("X-RateLimit-Limit", limit)
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", reset)
			c.Header("Retry-After", "1")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": 1,
			})
			return
		}

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", reset)

		c.Next()
	}
}

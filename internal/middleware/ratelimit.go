package middleware

import (
	"net/http"
	"time"

	"github.com/Saurav036/nexus/internal/logger"
	"github.com/Saurav036/nexus/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP. Idle buckets are
// evicted after idle.
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

func NewRateLimiter(perSecond float64, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		limiters: cache.New(idle, 2*idle),
	}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Get(ip); ok {
		lim := v.(*rate.Limiter)
		l.limiters.SetDefault(ip, lim)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	// Add loses to a concurrent insert; use whichever won
	if err := l.limiters.Add(ip, lim, cache.DefaultExpiration); err != nil {
		if v, ok := l.limiters.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *RateLimiter) Allow(ip string) bool {
	return l.limiter(ip).Allow()
}

// Middleware answers 429 once a client exceeds its bucket.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			metrics.RecordError("rate_limit", "throttled")
			logger.Warn("rate limit exceeded", map[string]any{
				"ip":   ip,
				"path": c.Request.URL.Path,
			})
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

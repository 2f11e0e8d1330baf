package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one limiter per client IP.
type RateLimiter struct {
	interval time.Duration
	burst    int
	logger   *zap.Logger

	mu       sync.Mutex
	visitors map[string]*visitor
}

// NewRateLimiter allows perMinute requests per client IP with the given burst.
func NewRateLimiter(perMinute, burst int, logger *zap.Logger) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		interval: time.Minute / time.Duration(perMinute),
		burst:    burst,
		logger:   logger,
		visitors: make(map[string]*visitor),
	}
}

func (l *RateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(l.interval), l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Evict drops limiters idle long enough to have refilled their whole burst,
// so a returning client sees the same allowance either way.
func (l *RateLimiter) Evict(now time.Time) int {
	idle := time.Duration(l.burst) * l.interval

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for ip, v := range l.visitors {
		if now.Sub(v.lastSeen) >= idle {
			delete(l.visitors, ip)
			n++
		}
	}
	return n
}

func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.allow(ip, time.Now()) {
			l.logger.Warn("rate limit exceeded", zap.String("ip", ip))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded, try again later"})
			return
		}
		c.Next()
	}
}

func RateLimit(perMinute, burst int, logger *zap.Logger) gin.HandlerFunc {
	return NewRateLimiter(perMinute, burst, logger).Handler()
}

package middleware

import (
	"context"
	"sync"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/social-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key is allowed. An error means the
// backend could not answer; the returned bool still says what to do.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// MemoryLimiter is a token bucket per key, kept in an LRU so idle clients age out.
type MemoryLimiter struct {
	mu       sync.Mutex
	visitors *lru.Cache[string, *visitor]
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryLimiter(rps, burst, cacheSize int, ttl time.Duration) *MemoryLimiter {
	if cacheSize <= 0 {
		cacheSize = 10_000
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	visitors, _ := lru.New[string, *visitor](cacheSize)
	return &MemoryLimiter{
		visitors: visitors,
		limit:    rate.Limit(rps),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	v, ok := m.visitors.Get(key)
	// простаивавший дольше ttl клиент начинает с полного бакета
	if !ok || now.Sub(v.last) > m.ttl {
		v = &visitor{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.visitors.Add(key, v)
	}
	v.last = now
	return v.limiter.AllowN(now, 1), nil
}

// Run periodically drops idle visitors until ctx is done.
func (m *MemoryLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.evictIdle()
		}
	}
}

func (m *MemoryLimiter) evictIdle() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, key := range m.visitors.Keys() {
		if v, ok := m.visitors.Peek(key); ok && now.Sub(v.last) > m.ttl {
			m.visitors.Remove(key)
		}
	}
}

// RateLimitPerIP rejects clients over the limit with ErrRateLimited.
func RateLimitPerIP(l Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		ok, err := l.Allow(c.Request.Context(), ip)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
		}
		if !ok {
			_ = c.Error(customErrors.ErrRateLimited)
			c.Abort()
			return
		}
		c.Next()
	}
}

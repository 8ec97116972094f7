package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "ratelimit:"

// RateLimitStore counts requests per key in fixed windows shared by every replica.
type RateLimitStore struct {
	client *redis.Client
	limit  int64
	window time.Duration
	log    *zap.Logger
}

func NewRateLimitStore(client *redis.Client, limit int, window time.Duration, log *zap.Logger) *RateLimitStore {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimitStore{client: client, limit: int64(limit), window: window, log: log}
}

// Allow reports whether key still fits in the current window. Redis failures let the
// request through and are returned so the caller can log them.
func (s *RateLimitStore) Allow(ctx context.Context, key string) (bool, error) {
	k := keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	ttl := pipe.TTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	count := incr.Val()

	// счётчик без TTL (новое окно или прошлый EXPIRE не прошёл) получает срок жизни здесь
	if ttl.Val() < 0 {
		if err := s.client.Expire(ctx, k, s.window).Err(); err != nil {
			s.log.Warn("ratelimit: expire failed", zap.String("key", k), zap.Error(err))
		}
	}
	return count <= s.limit, nil
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

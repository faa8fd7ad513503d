package config

import (
	"context"
	"fmt"
	"os"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisLock() *redislock.Client {
	return locker
}

// ConnectRedis sets the global Redis client and lock client. An empty address
// leaves both nil; callers treat that as "locking disabled".
func ConnectRedis(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intFromEnv("REDIS_DB", 0),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect redis %s: %w", addr, err)
	}
	rdb = client
	locker = redislock.New(rdb)
	return nil
}

func CloseRedis() {
	if rdb != nil {
		_ = rdb.Close()
	}
}

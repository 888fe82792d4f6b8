package redisStore

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var (
	once   sync.Once
	client *redis.Client
	log    = logger_i.NewLogger("redisStore")
)

// GetClient returns the shared Redis client, or nil when REDIS_ADDR is
// unset or the server is unreachable. Callers fall back to file storage on
// nil.
func GetClient() *redis.Client {
	once.Do(func() {
		addr := os.Getenv(config.RedisAddrEnv)
		if addr == "" {
			return
		}

		c := redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   config.RedisRunStoreDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Ping(ctx).Err(); err != nil {
			log.Warn("redis unreachable, run records fall back to file storage", "addr", addr, "error", err)
			_ = c.Close()
			return
		}
		client = c
	})
	return client
}

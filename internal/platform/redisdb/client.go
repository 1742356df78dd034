package redisdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Dyslex1k/SceneSearch/internal/platform/envutil"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
)

// NewFromEnv dials the Redis instance that backs the search index.
// Returns (nil, nil) when REDIS_ADDR is unset so the service can boot with
// search disabled and report degraded writes instead of refusing to start.
func NewFromEnv(log *logger.Logger) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("redisdb: logger required")
	}

	addr := strings.TrimSpace(envutil.Str("REDIS_ADDR", ""))
	if addr == "" {
		return nil, nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.Str("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redisdb: ping: %w", err)
	}

	log.With("client", "RedisDB").Info("Connected to Redis", "addr", addr)
	return rdb, nil
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/redact"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "taskdesk:"

// NewClient builds a client from cfg and pings it once. An unreachable
// server is logged, not returned: both the cache and the limiter fail
// open, so the process can start and recover when Redis comes back.
func NewClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %s", redact.Error(err))
	}
	opts.DialTimeout = cfg.DialTimeout()
	opts.ReadTimeout = cfg.OpTimeout()
	opts.WriteTimeout = cfg.OpTimeout()
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout())
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not reachable at startup; continuing without it",
			slog.String("error", redact.Error(err)))
	} else {
		logger.Info("redis connection established", slog.Int("db", opts.DB))
	}
	return client, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/taskdesk/taskdesk-api/internal/cache"
	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/domain"
	"github.com/taskdesk/taskdesk-api/internal/pipeline"
	platformredis "github.com/taskdesk/taskdesk-api/internal/platform/redis"
	"github.com/taskdesk/taskdesk-api/internal/ratelimit"
	"github.com/taskdesk/taskdesk-api/internal/redact"
	"github.com/taskdesk/taskdesk-api/internal/service/auth"
	"github.com/taskdesk/taskdesk-api/internal/validation"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	storage  *storage
	redis    *goredis.Client
	cache    cache.Gateway
	limiter  ratelimit.Limiter
	pipeline *pipeline.Pipeline

	stopSweeper context.CancelFunc
	cleanupOnce sync.Once
}

// newApplication creates a new application instance with all dependencies initialized.
// Anything opened before a failure is released before returning.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *application, err error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &application{config: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.cleanup()
		}
	}()

	statuses, err := domain.NewStatusSet(cfg.Tasks.Statuses...)
	if err != nil {
		return nil, fmt.Errorf("invalid task statuses: %w", err)
	}
	if cfg.Database.Driver == config.DriverPostgres &&
		!slices.Equal(statuses.Strings(), domain.DefaultStatusSet().Strings()) {
		logger.Warn("custom task statuses need a matching CHECK constraint on tasks.status",
			slog.Any("statuses", statuses.Strings()))
	}

	app.storage, err = setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up storage: %w", err)
	}

	if cfg.UsesRedis() {
		app.redis, err = platformredis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up redis: %w", err)
		}
	}

	app.cache = app.setupCache()
	app.limiter, err = app.setupLimiter()
	if err != nil {
		return nil, fmt.Errorf("failed to set up rate limiter: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	hasher := auth.NewBcrypt(cfg.Auth.BcryptCost)
	authenticator, err := auth.NewAuthenticator(app.storage.users, jwtService, hasher, hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize authenticator: %w", err)
	}

	app.pipeline, err = pipeline.New(pipeline.Deps{
		Validator: validation.New(statuses),
		Auth:      authenticator,
		Tasks:     app.storage.tasks,
		Cache:     app.cache,
		Limiter:   app.limiter,
		Logger:    logger,
	}, pipeline.Config{
		CacheTTL:         cfg.Cache.TTL(),
		RateLimitMessage: cfg.RateLimit.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request pipeline: %w", err)
	}

	logger.Info("Application initialized successfully",
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("cache_driver", cfg.Cache.Driver),
		slog.String("rate_limit_driver", cfg.RateLimit.Driver))
	return app, nil
}

// setupCache returns the configured cache gateway. The in-memory cache gets
// a sweeper that drops expired listings once per TTL.
func (app *application) setupCache() cache.Gateway {
	switch app.config.Cache.Driver {
	case config.BackendRedis:
		return platformredis.NewCache(app.redis)

	case config.BackendMemory:
		mem := cache.NewMemory()
		ctx, cancel := context.WithCancel(context.Background())
		app.stopSweeper = cancel
		go sweep(ctx, mem, app.config.Cache.TTL(), app.logger)
		return mem

	default:
		return cache.Noop{}
	}
}

func (app *application) setupLimiter() (ratelimit.Limiter, error) {
	policy := ratelimit.Policy{
		Limit:  app.config.RateLimit.Requests,
		Window: app.config.RateLimit.Window(),
	}
	if app.config.RateLimit.Driver == config.BackendRedis {
		return platformredis.NewFixedWindowLimiter(app.redis, policy)
	}
	return ratelimit.NewFixedWindow(policy)
}

func sweep(ctx context.Context, mem *cache.Memory, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := mem.Sweep(); n > 0 {
				logger.Debug("expired cache entries removed", slog.Int("count", n))
			}
		}
	}
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns the process exit code.
func (app *application) Run(ctx context.Context) int {
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup handles graceful shutdown of application resources. It is safe
// to call more than once and on a partially initialized application.
func (app *application) cleanup() {
	app.cleanupOnce.Do(app.release)
}

func (app *application) release() {
	if app.stopSweeper != nil {
		app.stopSweeper()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis client", slog.String("error", redact.Error(err)))
		}
	}

	if app.storage != nil && app.storage.close != nil {
		if err := app.storage.close(); err != nil {
			app.logger.Error("Error closing storage", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("Application shutdown completed")
}

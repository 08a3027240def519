package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/platform/filestore"
	"github.com/taskdesk/taskdesk-api/internal/platform/postgres"
	"github.com/taskdesk/taskdesk-api/internal/platform/sqlite"
	"github.com/taskdesk/taskdesk-api/internal/store"
)

// storage is the persistence backend selected by configuration.
type storage struct {
	tasks  store.TaskStore
	users  store.UserStore
	health store.HealthChecker
	close  func() error
}

// setupAppDatabase opens the configured backend. Postgres schemas are
// migrated before the stores are returned.
func setupAppDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	dbCfg := cfg.Database

	switch dbCfg.Driver {
	case config.DriverFile:
		tasks, err := filestore.NewTaskStore(dbCfg.StoragePath(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open task file: %w", err)
		}
		users, err := filestore.NewUserStore(dbCfg.UserStoragePath(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open user file: %w", err)
		}
		logger.Info("using file storage",
			slog.String("tasks_path", dbCfg.StoragePath()),
			slog.String("users_path", dbCfg.UserStoragePath()))
		return &storage{tasks: tasks, users: users, health: tasks, close: func() error { return nil }}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, dbCfg.StoragePath(), logger)
		if err != nil {
			return nil, err
		}
		tasks := sqlite.NewTaskStore(db, dbCfg.QueryTimeout(), logger)
		users := sqlite.NewUserStore(db, dbCfg.QueryTimeout(), logger)
		logger.Info("using sqlite storage", slog.String("path", dbCfg.StoragePath()))
		return &storage{tasks: tasks, users: users, health: tasks, close: func() error { return sqlite.Close(db) }}, nil

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		tasks := postgres.NewPostgresTaskStore(db, dbCfg.QueryTimeout(), logger)
		users := postgres.NewPostgresUserStore(db, dbCfg.QueryTimeout(), logger)
		return &storage{tasks: tasks, users: users, health: tasks, close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
}

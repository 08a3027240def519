// Package main implements the entry point for the Taskdesk API server,
// a JSON task tracker with token-protected writes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/taskdesk/taskdesk-api/internal/config"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
	"github.com/taskdesk/taskdesk-api/internal/redact"
)

func main() {
	os.Exit(run())
}

// run loads configuration, builds the application and serves until
// shutdown. It returns the process exit code.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %s\n", redact.Error(err))
		return 1
	}

	log, closeLog, err := logger.Setup(cfg.Server)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logger: %v\n", err)
		return 1
	}
	defer func() { _ = closeLog() }()

	log.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize application", slog.String("error", redact.Error(err)))
		return 1
	}

	return app.Run(ctx)
}

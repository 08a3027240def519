package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/taskdesk/taskdesk-api/internal/redact"
)

// idleTimeout bounds keep-alive connections.
const idleTimeout = 60 * time.Second

// newHTTPServer builds the server with the configured timeouts.
func (app *application) newHTTPServer(handler http.Handler) *http.Server {
	cfg := app.config.Server
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		ReadTimeout:       time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       idleTimeout,
	}
}

// startHTTPServer serves until SIGINT or SIGTERM, then drains in-flight
// requests and releases application resources. It returns the process
// exit code.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) int {
	server := app.newHTTPServer(router)

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		app.logger.Error("Failed to listen", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		app.cleanup()
		return 1
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", slog.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, app.config.Server.ShutdownTimeout(),
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				app.logger.Info("Shutting down server...")
				defer app.cleanup()
				return server.Shutdown(ctx)
			},
		})

	select {
	case code := <-wait:
		app.logger.Info("Server shutdown completed", slog.Int("exit_code", code))
		return code
	case err := <-serveErr:
		app.logger.Error("Server failed", slog.String("error", redact.Error(err)))
		app.cleanup()
		return 1
	}
}

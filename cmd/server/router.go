package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskdesk/taskdesk-api/internal/api"
	apiMiddleware "github.com/taskdesk/taskdesk-api/internal/api/middleware"
	"github.com/taskdesk/taskdesk-api/internal/platform/logger"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.contextLogger)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.pipeline)
	authHandler := api.NewAuthHandler(app.pipeline)
	healthHandler := api.NewHealthHandler(app.storage.health, app.cache)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Get("/{id}", taskHandler.GetTask)
		r.Patch("/{id}", taskHandler.UpdateTask)
		r.Delete("/{id}", taskHandler.DeleteTask)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Get("/health", healthHandler.Health)
	r.Get("/docs/openapi.json", api.OpenAPI)

	return r
}

// contextLogger makes the application logger the base of every request
// logger.
func (app *application) contextLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), app.logger)))
	})
}

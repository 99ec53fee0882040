package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/workstreamhq/recur-api/internal/api"
	apiMiddleware "github.com/workstreamhq/recur-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes. Returns the configured router.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(
		apiMiddleware.NewTraceMiddleware(app.logger),
	) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	taskHandler := api.NewTaskHandler(app.taskService, app.recurrenceService, app.logger)
	recurrenceHandler := api.NewRecurrenceHandler(app.logger)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Rule inspection endpoints (public, stateless)
		r.Get("/recurrence/validate", recurrenceHandler.ValidateRule)
		r.Get("/recurrence/describe", recurrenceHandler.DescribeRule)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Get("/tasks/{id}/occurrences", taskHandler.ListOccurrences)
			r.Post("/tasks/{id}/instances", taskHandler.MaterializeInstances)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}

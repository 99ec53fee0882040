package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/config"
	"github.com/workstreamhq/recur-api/internal/events"
	"github.com/workstreamhq/recur-api/internal/job"
	"github.com/workstreamhq/recur-api/internal/platform/postgres"
	"github.com/workstreamhq/recur-api/internal/service"
	"github.com/workstreamhq/recur-api/internal/service/auth"
	"github.com/workstreamhq/recur-api/internal/store"
)

// MaterializeEventHandler reacts to materialize-request events by expanding
// the named definition's upcoming instances.
type MaterializeEventHandler struct {
	recurrenceService service.RecurrenceService
	maxInstances      int
	logger            *slog.Logger
}

// HandleEvent processes events by materializing instances for the definition
// named in the payload.
func (h *MaterializeEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskEvent,
) error {
	if event.Type != events.TaskEventTypeMaterializeRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.MaterializeRequestedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		h.logger.Error("invalid task ID in event",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("invalid task ID: %w", err)
	}

	created, err := h.recurrenceService.MaterializeInstances(ctx, taskID, h.maxInstances)
	if err != nil {
		h.logger.Error("failed to materialize instances for event",
			"error", err,
			"task_id", taskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to materialize instances: %w", err)
	}

	h.logger.Info("materialized instances for new definition",
		"task_id", taskID,
		"created", created,
		"event_id", event.ID)
	return nil
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	taskStore store.TaskStore

	// Service interfaces
	jwtService        auth.JWTService
	taskService       service.TaskService
	recurrenceService service.RecurrenceService

	// Event system
	eventEmitter events.EventEmitter

	// Background processing
	sweeper *job.Sweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize stores
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Initialize event emitter
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	// Initialize services
	app.taskService, err = service.NewTaskService(app.taskStore, app.eventEmitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.recurrenceService, err = service.NewRecurrenceService(app.taskStore, db, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurrence service: %w", err)
	}

	// Creating a recurring definition triggers immediate materialization of
	// its upcoming instances via the event system.
	emitter.RegisterHandler(&MaterializeEventHandler{
		recurrenceService: app.recurrenceService,
		maxInstances:      cfg.Recurrence.MaxInstancesPerRun,
		logger:            logger.With("component", "materialize_event_handler"),
	})

	// Initialize the materialization sweeper
	app.sweeper, err = job.NewSweeper(app.taskStore, app.recurrenceService, job.SweeperConfig{
		CronSpec:            cfg.Job.MaterializeCron,
		BatchSize:           cfg.Job.BatchSize,
		MaxInstancesPerTask: cfg.Recurrence.MaxInstancesPerRun,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create materialization sweeper: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the background sweeper and the HTTP server, handling lifecycle
// and cleanup. It returns an error if the server fails to start or
// encounters problems.
func (app *application) Run(ctx context.Context) error {
	if err := app.sweeper.Start(); err != nil {
		return fmt.Errorf("failed to start materialization sweeper: %w", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}

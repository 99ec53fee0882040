package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/events"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/recurrence"
	"github.com/workstreamhq/recur-api/internal/store"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask validates and saves a new task. A task carrying a recurrence
	// rule has the rule validated against its due date before persisting;
	// an invalid rule yields ErrInvalidRecurrenceRule.
	CreateTask(ctx context.Context, task *domain.Task) error

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore    store.TaskStore
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}

	if eventEmitter == nil {
		return nil, domain.NewValidationError("eventEmitter", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore:    taskStore,
		eventEmitter: eventEmitter,
		logger:       logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if task == nil {
		return NewTaskServiceError("create_task", "task cannot be nil", domain.ErrValidation)
	}

	if task.RecurringRule != nil && *task.RecurringRule != "" {
		anchor := time.Now().UTC()
		if task.DueDate != nil {
			anchor = *task.DueDate
		}
		if !recurrence.ValidateRule(*task.RecurringRule, anchor) {
			log.Warn("rejected task with invalid recurrence rule",
				slog.String("task_id", task.ID.String()))
			return NewTaskServiceError(
				"create_task",
				"recurrence rule failed validation",
				ErrInvalidRecurrenceRule,
			)
		}
	}

	if err := task.Validate(); err != nil {
		return err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.Bool("recurring", task.IsRecurring()))

	// Recurring definitions get their upcoming instances materialized right
	// away. Emission failures are logged, not returned: the task itself was
	// saved and the sweeper will catch up on the next run.
	if task.IsRecurring() {
		event, err := events.NewTaskEvent(
			events.TaskEventTypeMaterializeRequested,
			events.MaterializeRequestedPayload{TaskID: task.ID.String()},
		)
		if err != nil {
			log.Error("failed to build materialize event",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
			return nil
		}
		if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
			log.Warn("materialize event handling failed",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()))
		}
	}
	return nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound)
		}
		log.Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}

	return task, nil
}

package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/recurrence"
	"github.com/workstreamhq/recur-api/internal/store"
)

// DefaultMaterializeLimit caps how many instances a single materialization
// creates when the caller does not supply a limit.
const DefaultMaterializeLimit = 100

// RecurrenceService expands recurring task definitions: into a pure
// occurrence preview, or into persisted task instances.
type RecurrenceService interface {
	// GenerateOccurrences expands the task's recurrence rule into occurrence
	// dates within [windowStart, windowEnd] without persisting anything.
	// A zero windowStart defaults to the current time. A task with no rule
	// yields an empty list.
	GenerateOccurrences(
		ctx context.Context,
		taskID uuid.UUID,
		windowStart time.Time,
		windowEnd *time.Time,
	) ([]recurrence.Occurrence, error)

	// MaterializeInstances creates task instances for occurrences of the
	// parent's rule that do not already exist, up to maxInstances
	// (DefaultMaterializeLimit when <= 0). Returns the number of instances
	// actually created. A missing or non-recurring parent yields (0, nil).
	MaterializeInstances(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error)
}

// recurrenceServiceImpl implements the RecurrenceService interface.
type recurrenceServiceImpl struct {
	taskStore store.TaskStore
	db        *sql.DB
	logger    *slog.Logger

	// runInTx is store.RunInTransaction, swappable in tests.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// NewRecurrenceService creates a new RecurrenceService.
// It returns an error if any of the required dependencies are nil.
func NewRecurrenceService(
	taskStore store.TaskStore,
	db *sql.DB,
	logger *slog.Logger,
) (RecurrenceService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &recurrenceServiceImpl{
		taskStore: taskStore,
		db:        db,
		logger:    logger.With(slog.String("component", "recurrence_service")),
		runInTx:   store.RunInTransaction,
	}, nil
}

// GenerateOccurrences implements RecurrenceService.GenerateOccurrences
func (s *recurrenceServiceImpl) GenerateOccurrences(
	ctx context.Context,
	taskID uuid.UUID,
	windowStart time.Time,
	windowEnd *time.Time,
) ([]recurrence.Occurrence, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewTaskServiceError(
				"generate_occurrences",
				"task not found",
				store.ErrTaskNotFound,
			)
		}
		log.Error("failed to load task for occurrence generation",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewTaskServiceError(
			"generate_occurrences",
			"failed to load task",
			err,
		)
	}

	if windowStart.IsZero() {
		windowStart = time.Now().UTC()
	}

	occurrences, err := recurrence.Occurrences(ctx, definitionFromTask(task), windowStart, windowEnd)
	if err != nil {
		return nil, NewTaskServiceError(
			"generate_occurrences",
			"failed to expand recurrence rule",
			err,
		)
	}

	return occurrences, nil
}

// MaterializeInstances implements RecurrenceService.MaterializeInstances
//
// The existing-instance snapshot, the occurrence diff, and the insert all run
// inside one transaction. The partial unique index on (parent, due date)
// backstops the remaining race with a concurrent materializer: colliding rows
// are skipped by the store rather than surfaced as errors.
func (s *recurrenceServiceImpl) MaterializeInstances(
	ctx context.Context,
	parentID uuid.UUID,
	maxInstances int,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if maxInstances <= 0 {
		maxInstances = DefaultMaterializeLimit
	}

	var created int
	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.taskStore.WithTx(tx)

		parent, err := txStore.GetByID(ctx, parentID)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("materialization skipped: parent not found",
					slog.String("parent_id", parentID.String()))
				return nil
			}
			return NewTaskServiceError("materialize_instances", "failed to load parent", err)
		}

		if !parent.IsRecurring() {
			log.Debug("materialization skipped: parent is not recurring",
				slog.String("parent_id", parentID.String()))
			return nil
		}

		// Expansion starts at the parent's anchor so occurrences that were
		// never materialized are still produced; the dedup set below keeps
		// re-runs idempotent.
		windowStart := time.Now().UTC()
		if parent.DueDate != nil {
			windowStart = *parent.DueDate
		}

		occurrences, err := recurrence.Occurrences(ctx, definitionFromTask(parent), windowStart, nil)
		if err != nil {
			return NewTaskServiceError(
				"materialize_instances",
				"failed to expand recurrence rule",
				err,
			)
		}

		existing, err := txStore.ListInstances(ctx, parentID)
		if err != nil {
			return NewTaskServiceError(
				"materialize_instances",
				"failed to list existing instances",
				err,
			)
		}

		// The snapshot includes trashed instances: their dates still occupy
		// the unique index, so they must dedup here rather than consume cap
		// slots on rows the insert would silently drop. Trashing an instance
		// also means re-materialization must not resurrect it.
		existingDue := make(map[int64]struct{}, len(existing))
		for _, instance := range existing {
			if instance.DueDate != nil {
				existingDue[instance.DueDate.UTC().Unix()] = struct{}{}
			}
		}

		instances := make([]*domain.Task, 0, maxInstances)
		for _, occ := range occurrences {
			if _, exists := existingDue[occ.Due.UTC().Unix()]; exists {
				continue
			}
			instance, err := domain.NewTaskInstance(parent, occ.Due, occ.Start)
			if err != nil {
				return NewTaskServiceError(
					"materialize_instances",
					"failed to build instance",
					err,
				)
			}
			instances = append(instances, instance)
			if len(instances) >= maxInstances {
				break
			}
		}

		if len(instances) == 0 {
			return nil
		}

		created, err = txStore.CreateInstances(ctx, instances)
		if err != nil {
			return NewTaskServiceError(
				"materialize_instances",
				"failed to save instances",
				err,
			)
		}

		return nil
	})

	if err != nil {
		log.Error("materialization failed",
			slog.String("error", err.Error()),
			slog.String("parent_id", parentID.String()))
		return 0, err
	}

	log.Info("materialized task instances",
		slog.String("parent_id", parentID.String()),
		slog.Int("created", created))
	return created, nil
}

// definitionFromTask projects a stored task onto the generator's input.
func definitionFromTask(task *domain.Task) recurrence.Definition {
	def := recurrence.Definition{
		ID:            task.ID,
		AnchorStart:   task.StartDate,
		RecurrenceEnd: task.RecurrenceEnd,
	}
	if task.RecurringRule != nil {
		def.Rule = *task.RecurringRule
	}
	if task.DueDate != nil {
		def.AnchorDue = *task.DueDate
	}
	return def
}

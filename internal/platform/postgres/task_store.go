package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/store"
)

// taskColumns is the canonical column list scanned by scanTask.
const taskColumns = `id, dashboard_id, business_id, creator_id, parent_task_id,
	title, description, status, priority, due_date, start_date,
	recurring_rule, recurrence_end, category, tags, time_estimate_minutes,
	trashed, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
// It returns a new store bound to the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	tags, err := marshalTags(task.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode task tags: %w", err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.DashboardID,
		task.BusinessID,
		task.CreatorID,
		task.ParentTaskID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.StartDate,
		task.RecurringRule,
		task.RecurrenceEnd,
		task.Category,
		tags,
		task.TimeEstimate,
		task.Trashed,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.Bool("recurring", task.IsRecurring()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task by its unique ID.
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return task, nil
}

// CreateInstances implements store.TaskStore.CreateInstances
// It bulk-inserts materialized instances in a single statement. Rows that
// collide with the (parent_task_id, due_date) unique index are skipped via
// ON CONFLICT DO NOTHING, so a concurrent materialization of the same parent
// degrades to creating fewer rows instead of duplicates. The returned count
// reflects rows actually inserted.
func (s *PostgresTaskStore) CreateInstances(
	ctx context.Context,
	instances []*domain.Task,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(instances) == 0 {
		return 0, nil
	}

	const cols = 17
	placeholders := make([]string, 0, len(instances))
	args := make([]any, 0, len(instances)*cols)
	for i, instance := range instances {
		if err := instance.Validate(); err != nil {
			return 0, fmt.Errorf("%w: instance %s: %v", store.ErrInvalidEntity, instance.ID, err)
		}

		tags, err := marshalTags(instance.Tags)
		if err != nil {
			return 0, fmt.Errorf("failed to encode instance tags: %w", err)
		}

		base := i * cols
		row := make([]string, cols)
		for j := range row {
			row[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(row, ", ")+")")

		args = append(args,
			instance.ID,
			instance.DashboardID,
			instance.BusinessID,
			instance.CreatorID,
			instance.ParentTaskID,
			instance.Title,
			instance.Description,
			instance.Status,
			instance.Priority,
			instance.DueDate,
			instance.StartDate,
			instance.Category,
			tags,
			instance.TimeEstimate,
			instance.Trashed,
			instance.CreatedAt,
			instance.UpdatedAt,
		)
	}

	// The conflict target must match the partial unique index predicate.
	query := `
		INSERT INTO tasks (id, dashboard_id, business_id, creator_id, parent_task_id,
			title, description, status, priority, due_date, start_date,
			category, tags, time_estimate_minutes, trashed, created_at, updated_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (parent_task_id, due_date)
			WHERE parent_task_id IS NOT NULL AND due_date IS NOT NULL
			DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to bulk-insert task instances",
			slog.String("error", err.Error()),
			slog.Int("instance_count", len(instances)))
		return 0, MapError(err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if int(created) < len(instances) {
		log.Debug("skipped duplicate task instances during bulk insert",
			slog.Int("requested", len(instances)),
			slog.Int64("created", created))
	}

	return int(created), nil
}

// ListInstances implements store.TaskStore.ListInstances
// It retrieves all instances of the given parent, trashed included, ordered
// by due date. Trashed rows stay in the result because the unique index on
// (parent_task_id, due_date) still covers them: materialization must treat a
// trashed date as taken, not as an open slot it would fail to fill.
func (s *PostgresTaskStore) ListInstances(
	ctx context.Context,
	parentID uuid.UUID,
) ([]*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE parent_task_id = $1
		ORDER BY due_date ASC
	`
	return s.queryTasks(ctx, query, parentID)
}

// ListRecurringDefinitions implements store.TaskStore.ListRecurringDefinitions
// It retrieves non-trashed tasks whose recurrence is still active at the
// given time, for the background materialization sweep.
func (s *PostgresTaskStore) ListRecurringDefinitions(
	ctx context.Context,
	activeAt time.Time,
	limit int,
) ([]*domain.Task, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE recurring_rule IS NOT NULL
		  AND recurring_rule <> ''
		  AND trashed = FALSE
		  AND (recurrence_end IS NULL OR recurrence_end > $1)
		ORDER BY created_at ASC
		LIMIT $2
	`
	return s.queryTasks(ctx, query, activeAt, limit)
}

// queryTasks runs a query returning task rows and scans them all.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning task rows", slog.String("error", err.Error()))
		return nil, err
	}

	return tasks, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one task row into a domain.Task, converting nullable
// columns into pointer fields.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task          domain.Task
		parentTaskID  uuid.NullUUID
		description   sql.NullString
		status        string
		priority      string
		dueDate       sql.NullTime
		startDate     sql.NullTime
		recurringRule sql.NullString
		recurrenceEnd sql.NullTime
		category      sql.NullString
		tags          []byte
		timeEstimate  sql.NullInt64
	)

	err := row.Scan(
		&task.ID,
		&task.DashboardID,
		&task.BusinessID,
		&task.CreatorID,
		&parentTaskID,
		&task.Title,
		&description,
		&status,
		&priority,
		&dueDate,
		&startDate,
		&recurringRule,
		&recurrenceEnd,
		&category,
		&tags,
		&timeEstimate,
		&task.Trashed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.Description = description.String
	if parentTaskID.Valid {
		id := parentTaskID.UUID
		task.ParentTaskID = &id
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if startDate.Valid {
		t := startDate.Time
		task.StartDate = &t
	}
	if recurringRule.Valid && recurringRule.String != "" {
		r := recurringRule.String
		task.RecurringRule = &r
	}
	if recurrenceEnd.Valid {
		t := recurrenceEnd.Time
		task.RecurrenceEnd = &t
	}
	if category.Valid {
		c := category.String
		task.Category = &c
	}
	if timeEstimate.Valid {
		e := int(timeEstimate.Int64)
		task.TimeEstimate = &e
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &task.Tags); err != nil {
			return nil, fmt.Errorf("failed to decode task tags: %w", err)
		}
	}

	return &task, nil
}

// marshalTags encodes the tag list as JSONB. A nil slice is stored as an
// empty array so scans round-trip cleanly.
func marshalTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store. The task must be valid according
	// to domain validation rules.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// CreateInstances bulk-inserts materialized instances and returns the
	// number of rows actually created. Rows colliding with an existing
	// (parent, due date) pair are silently skipped: the partial unique index
	// on instances converts a concurrent duplicate-generation race into a
	// no-op rather than a duplicate.
	//
	// Run this within a transaction together with ListInstances (via
	// store.RunInTransaction and WithTx) so the dedup snapshot and the
	// insert see a consistent view.
	CreateInstances(ctx context.Context, instances []*domain.Task) (int, error)

	// ListInstances retrieves all instances of the given parent, ordered by
	// due date. Trashed instances are included: their due dates still occupy
	// the (parent, due date) unique index, so the materializer's dedup
	// snapshot has to account for them.
	ListInstances(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// ListRecurringDefinitions retrieves non-trashed tasks that carry a
	// recurrence rule which is still active at the given time (no recurrence
	// end, or an end in the future). Used by the background sweep.
	ListRecurringDefinitions(ctx context.Context, activeAt time.Time, limit int) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller
	// (typically a service via store.RunInTransaction).
	WithTx(tx *sql.Tx) TaskStore
}

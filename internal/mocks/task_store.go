package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// CreateFn allows test cases to mock the Create behavior
	CreateFn func(ctx context.Context, task *domain.Task) error

	// GetByIDFn allows test cases to mock the GetByID behavior
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// CreateInstancesFn allows test cases to mock the CreateInstances behavior
	CreateInstancesFn func(ctx context.Context, instances []*domain.Task) (int, error)

	// ListInstancesFn allows test cases to mock the ListInstances behavior
	ListInstancesFn func(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error)

	// ListRecurringDefinitionsFn allows test cases to mock the ListRecurringDefinitions behavior
	ListRecurringDefinitionsFn func(ctx context.Context, activeAt time.Time, limit int) ([]*domain.Task, error)

	// Default values used when functions aren't explicitly defined
	Task    *domain.Task
	Tasks   []*domain.Task
	Created int
	Err     error
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the store.TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	return m.Err
}

// GetByID implements the store.TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return m.Task, m.Err
}

// CreateInstances implements the store.TaskStore interface
func (m *MockTaskStore) CreateInstances(
	ctx context.Context,
	instances []*domain.Task,
) (int, error) {
	if m.CreateInstancesFn != nil {
		return m.CreateInstancesFn(ctx, instances)
	}
	return m.Created, m.Err
}

// ListInstances implements the store.TaskStore interface
func (m *MockTaskStore) ListInstances(
	ctx context.Context,
	parentID uuid.UUID,
) ([]*domain.Task, error) {
	if m.ListInstancesFn != nil {
		return m.ListInstancesFn(ctx, parentID)
	}
	return m.Tasks, m.Err
}

// ListRecurringDefinitions implements the store.TaskStore interface
func (m *MockTaskStore) ListRecurringDefinitions(
	ctx context.Context,
	activeAt time.Time,
	limit int,
) ([]*domain.Task, error) {
	if m.ListRecurringDefinitionsFn != nil {
		return m.ListRecurringDefinitionsFn(ctx, activeAt, limit)
	}
	return m.Tasks, m.Err
}

// WithTx implements the store.TaskStore interface. The mock has no real
// transaction to bind, so it returns itself.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/recurrence"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	// CreateTaskFn allows test cases to mock the CreateTask behavior
	CreateTaskFn func(ctx context.Context, task *domain.Task) error

	// GetTaskFn allows test cases to mock the GetTask behavior
	GetTaskFn func(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)

	// Default values used when functions aren't explicitly defined
	Task *domain.Task
	Err  error
}

// CreateTask implements the service.TaskService interface
func (m *MockTaskService) CreateTask(ctx context.Context, task *domain.Task) error {
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, task)
	}
	return m.Err
}

// GetTask implements the service.TaskService interface
func (m *MockTaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, taskID)
	}
	return m.Task, m.Err
}

// MockRecurrenceService implements service.RecurrenceService for testing
type MockRecurrenceService struct {
	// GenerateOccurrencesFn allows test cases to mock the GenerateOccurrences behavior
	GenerateOccurrencesFn func(
		ctx context.Context,
		taskID uuid.UUID,
		windowStart time.Time,
		windowEnd *time.Time,
	) ([]recurrence.Occurrence, error)

	// MaterializeInstancesFn allows test cases to mock the MaterializeInstances behavior
	MaterializeInstancesFn func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error)

	// Default values used when functions aren't explicitly defined
	Occurrences []recurrence.Occurrence
	Created     int
	Err         error
}

// GenerateOccurrences implements the service.RecurrenceService interface
func (m *MockRecurrenceService) GenerateOccurrences(
	ctx context.Context,
	taskID uuid.UUID,
	windowStart time.Time,
	windowEnd *time.Time,
) ([]recurrence.Occurrence, error) {
	if m.GenerateOccurrencesFn != nil {
		return m.GenerateOccurrencesFn(ctx, taskID, windowStart, windowEnd)
	}
	return m.Occurrences, m.Err
}

// MaterializeInstances implements the service.RecurrenceService interface
func (m *MockRecurrenceService) MaterializeInstances(
	ctx context.Context,
	parentID uuid.UUID,
	maxInstances int,
) (int, error) {
	if m.MaterializeInstancesFn != nil {
		return m.MaterializeInstancesFn(ctx, parentID, maxInstances)
	}
	return m.Created, m.Err
}

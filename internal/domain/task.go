package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task-specific validation errors
var (
	// ErrTaskIDEmpty is returned when a task ID is empty or nil.
	ErrTaskIDEmpty = errors.New("task ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskDashboardIDEmpty is returned when a task's dashboard ID is empty or nil.
	ErrTaskDashboardIDEmpty = errors.New("task dashboard ID cannot be empty")

	// ErrTaskBusinessIDEmpty is returned when a task's business ID is empty or nil.
	ErrTaskBusinessIDEmpty = errors.New("task business ID cannot be empty")

	// ErrTaskCreatorIDEmpty is returned when a task's creator ID is empty or nil.
	ErrTaskCreatorIDEmpty = errors.New("task creator ID cannot be empty")

	// ErrTaskStatusInvalid is returned when a task status is not one of the
	// recognized values.
	ErrTaskStatusInvalid = errors.New("invalid task status")

	// ErrTaskPriorityInvalid is returned when a task priority is not one of the
	// recognized values.
	ErrTaskPriorityInvalid = errors.New("invalid task priority")

	// ErrTaskDatesInverted is returned when a task's start date is after its due date.
	ErrTaskDatesInverted = errors.New("task start date cannot be after due date")

	// ErrTaskInstanceDueDateMissing is returned when an instance is created
	// without a due date. Instances always carry the concrete occurrence date.
	ErrTaskInstanceDueDateMissing = errors.New("task instance requires a due date")
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusNotStarted TaskStatus = "not_started"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValid reports whether the status is one of the recognized values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority represents the urgency level of a task.
type TaskPriority string

// Possible task priority values.
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// IsValid reports whether the priority is one of the recognized values.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// Task represents a schedulable unit of work on a dashboard. A task with a
// non-empty RecurringRule acts as a recurring definition: concrete instances
// are materialized from it and point back via ParentTaskID. A task with a
// ParentTaskID set is such an instance and behaves like any other task after
// creation.
type Task struct {
	ID            uuid.UUID    `json:"id"`
	DashboardID   uuid.UUID    `json:"dashboard_id"`
	BusinessID    uuid.UUID    `json:"business_id"`
	CreatorID     uuid.UUID    `json:"creator_id"`
	ParentTaskID  *uuid.UUID   `json:"parent_task_id,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        TaskStatus   `json:"status"`
	Priority      TaskPriority `json:"priority"`
	DueDate       *time.Time   `json:"due_date,omitempty"`
	StartDate     *time.Time   `json:"start_date,omitempty"`
	RecurringRule *string      `json:"recurring_rule,omitempty"`
	RecurrenceEnd *time.Time   `json:"recurrence_end,omitempty"`
	Category      *string      `json:"category,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	TimeEstimate  *int         `json:"time_estimate,omitempty"`
	Trashed       bool         `json:"trashed"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with the given ownership and title, generating a
// fresh ID and timestamps. The task starts as not_started with medium priority;
// optional fields are set by the caller afterwards. Returns an error if
// validation fails.
func NewTask(dashboardID, businessID, creatorID uuid.UUID, title string) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		DashboardID: dashboardID,
		BusinessID:  businessID,
		CreatorID:   creatorID,
		Title:       title,
		Status:      TaskStatusNotStarted,
		Priority:    TaskPriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// NewTaskInstance creates a concrete instance of a recurring parent task for
// the given occurrence dates. Descriptive fields are copied from the parent;
// the recurrence rule itself is not, so an instance never generates further
// instances. Status is always not_started regardless of the parent's state.
func NewTaskInstance(parent *Task, due time.Time, start *time.Time) (*Task, error) {
	if parent == nil {
		return nil, NewValidationError("parent", "cannot be nil", ErrValidation)
	}
	if due.IsZero() {
		return nil, ErrTaskInstanceDueDateMissing
	}

	now := time.Now().UTC()
	parentID := parent.ID
	instance := &Task{
		ID:           uuid.New(),
		DashboardID:  parent.DashboardID,
		BusinessID:   parent.BusinessID,
		CreatorID:    parent.CreatorID,
		ParentTaskID: &parentID,
		Title:        parent.Title,
		Description:  parent.Description,
		Status:       TaskStatusNotStarted,
		Priority:     parent.Priority,
		DueDate:      &due,
		StartDate:    start,
		Category:     parent.Category,
		Tags:         append([]string(nil), parent.Tags...),
		TimeEstimate: parent.TimeEstimate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := instance.Validate(); err != nil {
		return nil, err
	}

	return instance, nil
}

// IsRecurring reports whether the task carries a non-empty recurrence rule.
// A task without a rule never generates instances.
func (t *Task) IsRecurring() bool {
	return t.RecurringRule != nil && *t.RecurringRule != ""
}

// Duration returns the fixed offset between the task's start and due dates,
// and whether both dates are present. The offset is preserved on generated
// instances so each occurrence keeps the definition's duration.
func (t *Task) Duration() (time.Duration, bool) {
	if t.StartDate == nil || t.DueDate == nil {
		return 0, false
	}
	return t.DueDate.Sub(*t.StartDate), true
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.DashboardID == uuid.Nil {
		return ErrTaskDashboardIDEmpty
	}

	if t.BusinessID == uuid.Nil {
		return ErrTaskBusinessIDEmpty
	}

	if t.CreatorID == uuid.Nil {
		return ErrTaskCreatorIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if !t.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrTaskStatusInvalid, t.Status)
	}

	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrTaskPriorityInvalid, t.Priority)
	}

	if t.StartDate != nil && t.DueDate != nil && t.StartDate.After(*t.DueDate) {
		return ErrTaskDatesInverted
	}

	return nil
}

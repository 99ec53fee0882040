package api

import (
	"time"
)

// Common request/response structures

// CreateTaskRequest defines the payload for the task creation endpoint.
// The creator is taken from the authenticated user, never from the payload.
type CreateTaskRequest struct {
	DashboardID string  `json:"dashboard_id" validate:"required,uuid"`
	BusinessID  string  `json:"business_id"  validate:"required,uuid"`
	Title       string  `json:"title"        validate:"required,max=500"`
	Description string  `json:"description"  validate:"max=5000"`
	Priority    string  `json:"priority"     validate:"omitempty,oneof=low medium high urgent"`
	Category    *string `json:"category"`
	Tags        []string `json:"tags"`

	DueDate   *time.Time `json:"due_date"`
	StartDate *time.Time `json:"start_date"`

	// RecurringRule is an iCalendar-style recurrence rule. When present it is
	// validated before the task is saved.
	RecurringRule *string    `json:"recurring_rule"`
	RecurrenceEnd *time.Time `json:"recurrence_end"`

	TimeEstimateMinutes *int `json:"time_estimate_minutes" validate:"omitempty,min=1"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID           string     `json:"id"`
	DashboardID  string     `json:"dashboard_id"`
	BusinessID   string     `json:"business_id"`
	CreatorID    string     `json:"creator_id"`
	ParentTaskID *string    `json:"parent_task_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`

	RecurringRule *string    `json:"recurring_rule,omitempty"`
	RecurrenceEnd *time.Time `json:"recurrence_end,omitempty"`

	// RecurrenceText is the human-readable rendering of the recurrence rule,
	// present only for recurring tasks.
	RecurrenceText string `json:"recurrence_text,omitempty"`

	Category            *string   `json:"category,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	TimeEstimateMinutes *int      `json:"time_estimate_minutes,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// OccurrenceResponse represents one expanded occurrence of a recurrence rule.
type OccurrenceResponse struct {
	Due   time.Time  `json:"due"`
	Start *time.Time `json:"start,omitempty"`
}

// OccurrencesResponse defines the response for the occurrence preview endpoint.
type OccurrencesResponse struct {
	TaskID      string               `json:"task_id"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// MaterializeRequest defines the payload for the instance materialization endpoint.
type MaterializeRequest struct {
	// MaxInstances caps how many instances this call may create.
	// Zero falls back to the server default.
	MaxInstances int `json:"max_instances" validate:"omitempty,min=1,max=1000"`
}

// MaterializeResponse defines the response for the instance materialization endpoint.
type MaterializeResponse struct {
	ParentID string `json:"parent_id"`
	Created  int    `json:"created"`
}

// ValidateRuleResponse defines the response for the rule validation endpoint.
type ValidateRuleResponse struct {
	Rule  string `json:"rule"`
	Valid bool   `json:"valid"`
}

// DescribeRuleResponse defines the response for the rule description endpoint.
type DescribeRuleResponse struct {
	Rule        string `json:"rule"`
	Description string `json:"description"`
}

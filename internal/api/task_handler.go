// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/workstreamhq/recur-api/internal/api/shared"
	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/platform/logger"
	"github.com/workstreamhq/recur-api/internal/recurrence"
	"github.com/workstreamhq/recur-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService       service.TaskService
	recurrenceService service.RecurrenceService
	logger            *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(
	taskService service.TaskService,
	recurrenceService service.RecurrenceService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService:       taskService,
		recurrenceService: recurrenceService,
		logger:            logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests
// It creates a task for the authenticated user, validating any recurrence
// rule before persisting.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to decode create task request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// UUID format is enforced by request validation above.
	dashboardID := uuid.MustParse(req.DashboardID)
	businessID := uuid.MustParse(req.BusinessID)

	task, err := domain.NewTask(dashboardID, businessID, userID, req.Title)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	task.Description = req.Description
	if req.Priority != "" {
		task.Priority = domain.TaskPriority(req.Priority)
	}
	task.DueDate = req.DueDate
	task.StartDate = req.StartDate
	task.RecurringRule = req.RecurringRule
	task.RecurrenceEnd = req.RecurrenceEnd
	task.Category = req.Category
	task.Tags = req.Tags
	task.TimeEstimate = req.TimeEstimateMinutes

	if err := h.taskService.CreateTask(r.Context(), task); err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", userID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		log.Warn("invalid task ID in path", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListOccurrences handles GET /tasks/{id}/occurrences requests
// It previews the task's recurrence expansion within the window given by the
// optional RFC 3339 "start" and "end" query parameters, without persisting
// anything.
func (h *TaskHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	windowStart, err := parseTimeParam(r, "start")
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid start parameter, expected RFC 3339")
		return
	}

	var windowEnd *time.Time
	if end, err := parseTimeParam(r, "end"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid end parameter, expected RFC 3339")
		return
	} else if !end.IsZero() {
		windowEnd = &end
	}

	occurrences, err := h.recurrenceService.GenerateOccurrences(r.Context(), taskID, windowStart, windowEnd)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate occurrences")
		return
	}

	response := OccurrencesResponse{
		TaskID:      taskID.String(),
		Occurrences: make([]OccurrenceResponse, 0, len(occurrences)),
	}
	for _, occ := range occurrences {
		response.Occurrences = append(response.Occurrences, OccurrenceResponse{
			Due:   occ.Due,
			Start: occ.Start,
		})
	}

	log.Debug("generated occurrence preview",
		slog.String("task_id", taskID.String()),
		slog.Int("count", len(occurrences)))
	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// MaterializeInstances handles POST /tasks/{id}/instances requests
// It creates task instances for not-yet-materialized occurrences of the
// parent's recurrence rule. The body is optional; an absent or empty body
// uses the server's default instance cap.
func (h *TaskHandler) MaterializeInstances(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	parentID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req MaterializeRequest
	if err := shared.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("failed to decode materialize request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	created, err := h.recurrenceService.MaterializeInstances(r.Context(), parentID, req.MaxInstances)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to materialize instances")
		return
	}

	log.Info("materialized instances via API",
		slog.String("parent_id", parentID.String()),
		slog.Int("created", created))
	shared.RespondWithJSON(w, r, http.StatusCreated, MaterializeResponse{
		ParentID: parentID.String(),
		Created:  created,
	})
}

// parseTimeParam reads an optional RFC 3339 query parameter. An absent
// parameter yields the zero time.
func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// taskToResponse transforms a domain task into its API representation.
// Recurring tasks additionally carry the human-readable rule text.
func taskToResponse(task *domain.Task) TaskResponse {
	response := TaskResponse{
		ID:                  task.ID.String(),
		DashboardID:         task.DashboardID.String(),
		BusinessID:          task.BusinessID.String(),
		CreatorID:           task.CreatorID.String(),
		Title:               task.Title,
		Description:         task.Description,
		Status:              string(task.Status),
		Priority:            string(task.Priority),
		DueDate:             task.DueDate,
		StartDate:           task.StartDate,
		RecurringRule:       task.RecurringRule,
		RecurrenceEnd:       task.RecurrenceEnd,
		Category:            task.Category,
		Tags:                task.Tags,
		TimeEstimateMinutes: task.TimeEstimate,
		CreatedAt:           task.CreatedAt,
		UpdatedAt:           task.UpdatedAt,
	}

	if task.ParentTaskID != nil {
		parentID := task.ParentTaskID.String()
		response.ParentTaskID = &parentID
	}

	if task.IsRecurring() {
		anchor := time.Time{}
		if task.DueDate != nil {
			anchor = *task.DueDate
		}
		response.RecurrenceText = recurrence.DescribeRule(*task.RecurringRule, anchor)
	}

	return response
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/service"
	"github.com/workstreamhq/recur-api/internal/service/auth"
	"github.com/workstreamhq/recur-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"duplicate instance", store.ErrDuplicateInstance, http.StatusConflict},
		{"invalid rule", service.ErrInvalidRecurrenceRule, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"validation failure", domain.ErrValidation, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestMapErrorToStatusCodeWrapped(t *testing.T) {
	// Wrapping through service error types must not change the mapping.
	err := service.NewTaskServiceError("get_task", "task not found", store.ErrTaskNotFound)
	assert.Equal(t, http.StatusNotFound, MapErrorToStatusCode(err))

	err = service.NewTaskServiceError(
		"create_task",
		"rule rejected",
		service.ErrInvalidRecurrenceRule,
	)
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"invalid rule", service.ErrInvalidRecurrenceRule, "Invalid recurrence rule"},
		{"duplicate instance", store.ErrDuplicateInstance, "An instance with this due date already exists"},
		{
			name: "internal detail never leaks",
			err:  fmt.Errorf("pq: duplicate key value violates unique constraint at postgres://user:pw@host"),
			want: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Run("domain validation error", func(t *testing.T) {
		err := domain.NewValidationError("title", "cannot be empty", domain.ErrValidation)
		assert.Equal(t, "Invalid title: cannot be empty", SanitizeValidationError(err))
	})

	t.Run("validator package error", func(t *testing.T) {
		err := errors.New(
			"Key: 'CreateTaskRequest.Title' Error:Field validation for 'Title' failed on the 'required' tag",
		)
		assert.Equal(t, "Invalid Title: required field", SanitizeValidationError(err))
	})

	t.Run("unrecognized error falls back", func(t *testing.T) {
		assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
	})
}

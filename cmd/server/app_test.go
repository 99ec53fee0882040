package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstreamhq/recur-api/internal/events"
	"github.com/workstreamhq/recur-api/internal/mocks"
)

func TestMaterializeEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("materializes for valid event", func(t *testing.T) {
		taskID := uuid.New()
		var gotID uuid.UUID
		var gotMax int
		handler := &MaterializeEventHandler{
			recurrenceService: &mocks.MockRecurrenceService{
				MaterializeInstancesFn: func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error) {
					gotID = parentID
					gotMax = maxInstances
					return 4, nil
				},
			},
			maxInstances: 50,
			logger:       slog.Default(),
		}

		event, err := events.NewTaskEvent(
			events.TaskEventTypeMaterializeRequested,
			events.MaterializeRequestedPayload{TaskID: taskID.String()},
		)
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(ctx, event))
		assert.Equal(t, taskID, gotID)
		assert.Equal(t, 50, gotMax)
	})

	t.Run("ignores other event types", func(t *testing.T) {
		called := false
		handler := &MaterializeEventHandler{
			recurrenceService: &mocks.MockRecurrenceService{
				MaterializeInstancesFn: func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error) {
					called = true
					return 0, nil
				},
			},
			logger: slog.Default(),
		}

		event, err := events.NewTaskEvent("task.renamed", map[string]string{})
		require.NoError(t, err)

		require.NoError(t, handler.HandleEvent(ctx, event))
		assert.False(t, called)
	})

	t.Run("rejects malformed task ID", func(t *testing.T) {
		handler := &MaterializeEventHandler{
			recurrenceService: &mocks.MockRecurrenceService{},
			logger:            slog.Default(),
		}

		event, err := events.NewTaskEvent(
			events.TaskEventTypeMaterializeRequested,
			events.MaterializeRequestedPayload{TaskID: "not-a-uuid"},
		)
		require.NoError(t, err)

		assert.Error(t, handler.HandleEvent(ctx, event))
	})

	t.Run("propagates materialization failure", func(t *testing.T) {
		handler := &MaterializeEventHandler{
			recurrenceService: &mocks.MockRecurrenceService{Err: assert.AnError},
			logger:            slog.Default(),
		}

		event, err := events.NewTaskEvent(
			events.TaskEventTypeMaterializeRequested,
			events.MaterializeRequestedPayload{TaskID: uuid.New().String()},
		)
		require.NoError(t, err)

		assert.Error(t, handler.HandleEvent(ctx, event))
	})
}

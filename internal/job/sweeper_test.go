package job

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstreamhq/recur-api/internal/domain"
	"github.com/workstreamhq/recur-api/internal/mocks"
)

func newSweepDefinition(t *testing.T) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(uuid.New(), uuid.New(), uuid.New(), "Weekly review")
	require.NoError(t, err)

	rule := "FREQ=WEEKLY;BYDAY=MO"
	due := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	task.RecurringRule = &rule
	task.DueDate = &due
	return task
}

func TestNewSweeper(t *testing.T) {
	t.Run("requires dependencies", func(t *testing.T) {
		_, err := NewSweeper(nil, &mocks.MockRecurrenceService{}, SweeperConfig{}, slog.Default())
		assert.Error(t, err)

		_, err = NewSweeper(&mocks.MockTaskStore{}, nil, SweeperConfig{}, slog.Default())
		assert.Error(t, err)

		_, err = NewSweeper(&mocks.MockTaskStore{}, &mocks.MockRecurrenceService{}, SweeperConfig{}, nil)
		assert.Error(t, err)
	})

	t.Run("applies default batch size", func(t *testing.T) {
		sweeper, err := NewSweeper(
			&mocks.MockTaskStore{},
			&mocks.MockRecurrenceService{},
			SweeperConfig{},
			slog.Default(),
		)
		require.NoError(t, err)
		assert.Equal(t, DefaultSweeperConfig().BatchSize, sweeper.config.BatchSize)
	})
}

func TestSweep(t *testing.T) {
	t.Run("materializes every listed definition", func(t *testing.T) {
		defA := newSweepDefinition(t)
		defB := newSweepDefinition(t)

		var materialized []uuid.UUID
		taskStore := &mocks.MockTaskStore{Tasks: []*domain.Task{defA, defB}}
		recurrenceService := &mocks.MockRecurrenceService{
			MaterializeInstancesFn: func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error) {
				materialized = append(materialized, parentID)
				return 3, nil
			},
		}

		sweeper, err := NewSweeper(taskStore, recurrenceService, SweeperConfig{BatchSize: 10}, slog.Default())
		require.NoError(t, err)

		created, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 6, created)
		assert.Equal(t, []uuid.UUID{defA.ID, defB.ID}, materialized)
	})

	t.Run("passes configured per-task cap", func(t *testing.T) {
		var gotMax int
		taskStore := &mocks.MockTaskStore{Tasks: []*domain.Task{newSweepDefinition(t)}}
		recurrenceService := &mocks.MockRecurrenceService{
			MaterializeInstancesFn: func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error) {
				gotMax = maxInstances
				return 0, nil
			},
		}

		sweeper, err := NewSweeper(
			taskStore,
			recurrenceService,
			SweeperConfig{MaxInstancesPerTask: 25},
			slog.Default(),
		)
		require.NoError(t, err)

		_, err = sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 25, gotMax)
	})

	t.Run("one failing definition does not abort the batch", func(t *testing.T) {
		defA := newSweepDefinition(t)
		defB := newSweepDefinition(t)
		defC := newSweepDefinition(t)

		taskStore := &mocks.MockTaskStore{Tasks: []*domain.Task{defA, defB, defC}}
		recurrenceService := &mocks.MockRecurrenceService{
			MaterializeInstancesFn: func(ctx context.Context, parentID uuid.UUID, maxInstances int) (int, error) {
				if parentID == defB.ID {
					return 0, errors.New("deadlock detected")
				}
				return 2, nil
			},
		}

		sweeper, err := NewSweeper(taskStore, recurrenceService, SweeperConfig{}, slog.Default())
		require.NoError(t, err)

		created, err := sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, created)
	})

	t.Run("listing failure aborts the sweep", func(t *testing.T) {
		taskStore := &mocks.MockTaskStore{Err: errors.New("connection refused")}

		sweeper, err := NewSweeper(taskStore, &mocks.MockRecurrenceService{}, SweeperConfig{}, slog.Default())
		require.NoError(t, err)

		created, err := sweeper.Sweep(context.Background())
		assert.Error(t, err)
		assert.Zero(t, created)
	})
}

func TestSweeperLifecycle(t *testing.T) {
	t.Run("empty cron spec disables the sweep", func(t *testing.T) {
		sweeper, err := NewSweeper(
			&mocks.MockTaskStore{},
			&mocks.MockRecurrenceService{},
			SweeperConfig{CronSpec: ""},
			slog.Default(),
		)
		require.NoError(t, err)

		require.NoError(t, sweeper.Start())
		assert.Nil(t, sweeper.cron)
		sweeper.Stop()
	})

	t.Run("invalid cron spec rejected", func(t *testing.T) {
		sweeper, err := NewSweeper(
			&mocks.MockTaskStore{},
			&mocks.MockRecurrenceService{},
			SweeperConfig{CronSpec: "not a cron spec"},
			slog.Default(),
		)
		require.NoError(t, err)

		assert.Error(t, sweeper.Start())
	})

	t.Run("starts and stops cleanly", func(t *testing.T) {
		sweeper, err := NewSweeper(
			&mocks.MockTaskStore{},
			&mocks.MockRecurrenceService{},
			SweeperConfig{CronSpec: "0 * * * *"},
			slog.Default(),
		)
		require.NoError(t, err)

		require.NoError(t, sweeper.Start())
		sweeper.Stop()
	})
}

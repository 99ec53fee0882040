// Package job contains background processes that run alongside the HTTP
// server. Its only resident today is the materialization sweeper, which
// keeps recurring task definitions topped up with concrete instances.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/workstreamhq/recur-api/internal/service"
	"github.com/workstreamhq/recur-api/internal/store"
)

// SweeperConfig holds configuration for the materialization sweeper
type SweeperConfig struct {
	// CronSpec is a standard five-field cron expression controlling when
	// sweeps run. An empty spec disables the sweeper entirely.
	CronSpec string

	// BatchSize caps how many recurring definitions a single sweep
	// processes. Zero falls back to the default.
	BatchSize int

	// MaxInstancesPerTask caps how many instances may be materialized for
	// one definition per sweep. Zero falls back to the service default.
	MaxInstancesPerTask int
}

// DefaultSweeperConfig returns a SweeperConfig with reasonable defaults
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		CronSpec:  "0 * * * *",
		BatchSize: 100,
	}
}

// Sweeper periodically materializes upcoming instances for every active
// recurring definition. It exists so instances appear on schedule even when
// nobody calls the materialization endpoint for a given task.
type Sweeper struct {
	taskStore         store.TaskStore
	recurrenceService service.RecurrenceService
	cron              *cron.Cron
	config            SweeperConfig
	logger            *slog.Logger
	now               func() time.Time
}

// NewSweeper creates a new Sweeper
func NewSweeper(
	taskStore store.TaskStore,
	recurrenceService service.RecurrenceService,
	config SweeperConfig,
	logger *slog.Logger,
) (*Sweeper, error) {
	if taskStore == nil {
		return nil, fmt.Errorf("task store cannot be nil")
	}
	if recurrenceService == nil {
		return nil, fmt.Errorf("recurrence service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSweeperConfig().BatchSize
	}

	return &Sweeper{
		taskStore:         taskStore,
		recurrenceService: recurrenceService,
		config:            config,
		logger:            logger.With(slog.String("component", "materialize_sweeper")),
		now:               time.Now,
	}, nil
}

// Start schedules the recurring sweep. It is a no-op when no cron expression
// is configured.
func (s *Sweeper) Start() error {
	if s.config.CronSpec == "" {
		s.logger.Info("materialization sweep disabled, no cron expression configured")
		return nil
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.config.CronSpec, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.logger.Error("materialization sweep failed", slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep cron expression %q: %w", s.config.CronSpec, err)
	}

	s.cron.Start()
	s.logger.Info("materialization sweep scheduled",
		slog.String("cron", s.config.CronSpec),
		slog.Int("batch_size", s.config.BatchSize))

	return nil
}

// Stop halts the schedule and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.logger.Info("materialization sweep stopped")
}

// Sweep runs one pass: it lists active recurring definitions and
// materializes due instances for each. A failure on one definition is
// logged and skipped so the rest of the batch still runs. The returned
// count is the total number of instances created across the batch.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	started := s.now()

	definitions, err := s.taskStore.ListRecurringDefinitions(ctx, started, s.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list recurring definitions: %w", err)
	}

	created := 0
	failed := 0
	for _, definition := range definitions {
		count, err := s.recurrenceService.MaterializeInstances(
			ctx,
			definition.ID,
			s.config.MaxInstancesPerTask,
		)
		if err != nil {
			failed++
			s.logger.Error("failed to materialize instances for definition",
				slog.String("task_id", definition.ID.String()),
				slog.Any("error", err))
			continue
		}
		created += count
	}

	s.logger.Info("materialization sweep completed",
		slog.Int("definitions", len(definitions)),
		slog.Int("created", created),
		slog.Int("failed", failed),
		slog.Duration("elapsed", s.now().Sub(started)))

	return created, nil
}

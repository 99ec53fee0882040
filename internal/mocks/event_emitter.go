package mocks

import (
	"context"

	"github.com/workstreamhq/recur-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter for testing
type MockEventEmitter struct {
	// EmitEventFn allows test cases to mock the EmitEvent behavior
	EmitEventFn func(ctx context.Context, event *events.TaskEvent) error

	// Emitted records every event passed to EmitEvent
	Emitted []*events.TaskEvent

	// Err is returned when EmitEventFn isn't defined
	Err error
}

var _ events.EventEmitter = (*MockEventEmitter)(nil)

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskEvent) error {
	m.Emitted = append(m.Emitted, event)
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}
	return m.Err
}

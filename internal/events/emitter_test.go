package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockEventHandler records the events it receives.
type MockEventHandler struct {
	HandledCount int
	LastEvent    *TaskRequestEvent
	HandlerError error
}

func (m *MockEventHandler) HandleEvent(_ context.Context, event *TaskRequestEvent) error {
	m.HandledCount++
	m.LastEvent = event
	return m.HandlerError
}

func newTestEvent(t *testing.T, eventType string) *TaskRequestEvent {
	t.Helper()
	event, err := NewTaskRequestEvent("task-1", eventType, map[string]string{"key": "value"})
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)

		err := emitter.EmitEvent(context.Background(), newTestEvent(t, "test-event"))

		assert.ErrorIs(t, err, ErrNoHandlers)
	})

	t.Run("emit invalid event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		emitter.RegisterHandler(&MockEventHandler{})

		err := emitter.EmitEvent(context.Background(), &TaskRequestEvent{Type: "test-event"})

		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handler1 := &MockEventHandler{}
		handler2 := &MockEventHandler{}
		emitter.RegisterHandler(handler1)
		emitter.RegisterHandler(handler2, "test-event")

		event := newTestEvent(t, "test-event")
		err := emitter.EmitEvent(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, 1, handler1.HandledCount)
		assert.Equal(t, 1, handler2.HandledCount)
		assert.Same(t, event, handler1.LastEvent)
		assert.Same(t, event, handler2.LastEvent)
	})

	t.Run("handlers are selected by type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		generation := &MockEventHandler{}
		other := &MockEventHandler{}
		emitter.RegisterHandler(generation, "hairstyle_generation")
		emitter.RegisterHandler(other, "other")

		err := emitter.EmitEvent(context.Background(), newTestEvent(t, "hairstyle_generation"))

		require.NoError(t, err)
		assert.Equal(t, 1, generation.HandledCount)
		assert.Equal(t, 0, other.HandledCount)

		err = emitter.EmitEvent(context.Background(), newTestEvent(t, "unknown"))
		assert.ErrorIs(t, err, ErrNoHandlers)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		handlerErr := errors.New("handler error")
		successHandler := &MockEventHandler{}
		failingHandler := &MockEventHandler{HandlerError: handlerErr}
		emitter.RegisterHandler(failingHandler)
		emitter.RegisterHandler(successHandler)

		err := emitter.EmitEvent(context.Background(), newTestEvent(t, "test-event"))

		assert.ErrorIs(t, err, handlerErr)
		assert.Equal(t, 1, successHandler.HandledCount, "later handlers still receive the event")
		assert.Equal(t, 1, failingHandler.HandledCount)
	})
}

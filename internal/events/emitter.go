package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type registration struct {
	handler EventHandler
	types   map[string]struct{}
}

func (r registration) accepts(eventType string) bool {
	if len(r.types) == 0 {
		return true
	}
	_, ok := r.types[eventType]
	return ok
}

// InMemoryEventEmitter dispatches events synchronously to handlers registered
// in the same process.
type InMemoryEventEmitter struct {
	registrations []registration
	mu            sync.RWMutex
	logger        *slog.Logger
}

// NewInMemoryEventEmitter creates a new instance of InMemoryEventEmitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a handler for the given event types. A handler
// registered without types receives every event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, eventTypes ...string) {
	reg := registration{handler: handler, types: make(map[string]struct{}, len(eventTypes))}
	for _, t := range eventTypes {
		reg.types[t] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.registrations = append(e.registrations, reg)
	e.logger.Debug("registered new event handler",
		"event_types", eventTypes,
		"handler_count", len(e.registrations))
}

// EmitEvent publishes the event to every handler of its type.
// If any handler returns an error, the event will still be sent to all other handlers,
// and the first error encountered will be returned. An event nobody handles
// yields ErrNoHandlers, since its task would otherwise never run.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	e.mu.RLock()
	handlers := make([]EventHandler, 0, len(e.registrations))
	for _, reg := range e.registrations {
		if reg.accepts(event.Type) {
			handlers = append(handlers, reg.handler)
		}
	}
	e.mu.RUnlock()

	log := e.logger.With(
		"event_id", event.ID,
		"event_type", event.Type,
		"task_id", event.TaskID)

	if len(handlers) == 0 {
		log.WarnContext(ctx, "no handlers registered for event")
		return fmt.Errorf("%w: %s", ErrNoHandlers, event.Type)
	}

	log.DebugContext(ctx, "emitting event", "handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			log.ErrorContext(ctx, "handler failed to process event",
				"error", err,
				"handler_index", i)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNoHandlers is returned when an event type has no registered handler.
	ErrNoHandlers = errors.New("no handler registered for event type")

	// ErrInvalidEvent is returned when an event lacks its task reference.
	ErrInvalidEvent = errors.New("invalid task request event")
)

// TaskRequestEvent asks for the background execution of an existing task.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// TaskID references the registry record the work belongs to
	TaskID string `json:"task_id"`

	// Type indicates the task type, and selects the handler
	Type string `json:"type"`

	// Payload contains the task-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Validate checks that the event references a task and a type.
func (e *TaskRequestEvent) Validate() error {
	if e == nil || e.TaskID == "" || e.Type == "" {
		return ErrInvalidEvent
	}
	return nil
}

// NewTaskRequestEvent creates an event for the given task. The payload is
// marshaled to JSON; a json.RawMessage is kept as is.
func NewTaskRequestEvent(taskID, taskType string, payload any) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	event := &TaskRequestEvent{
		ID:        uuid.New(),
		TaskID:    taskID,
		Type:      taskType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event *TaskRequestEvent) error

// HandleEvent implements EventHandler.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to the handlers of its type.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}

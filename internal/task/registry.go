package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/styleai-api/internal/domain"
)

// maxIDAttempts bounds the retries on an identifier collision.
const maxIDAttempts = 3

// Registry is the request-facing side of the task store: it creates records
// with fresh identifiers and reports their status.
type Registry struct {
	store  Store
	newID  func() string
	logger *slog.Logger
}

// NewRegistry creates a Registry over the given store.
func NewRegistry(store Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  store,
		newID:  func() string { return uuid.NewString() },
		logger: logger.With("component", "task_registry"),
	}
}

// Create inserts a pending task with zero progress under a new UUID.
// Identifiers are never reused: a collision is retried with another id.
func (r *Registry) Create(ctx context.Context, taskType string, payload any) (*domain.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		t, err := domain.NewTask(r.newID(), taskType, raw)
		if err != nil {
			return nil, err
		}

		err = r.store.Create(ctx, t)
		if err == nil {
			r.logger.DebugContext(ctx, "task created", "task_id", t.ID, "task_type", taskType)
			return t, nil
		}
		if !errors.Is(err, ErrDuplicateTask) {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}

		r.logger.WarnContext(ctx, "task id collision, retrying",
			"task_id", t.ID,
			"attempt", attempt)
	}

	return nil, fmt.Errorf("failed to create task: %w after %d attempts", ErrDuplicateTask, maxIDAttempts)
}

// Get returns the task record, or a not_found record for unknown ids.
func (r *Registry) Get(ctx context.Context, id string) (*domain.Task, error) {
	t, err := r.store.Get(ctx, id)
	if errors.Is(err, ErrTaskNotFound) {
		return domain.NotFoundTask(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// Fail marks a task failed with reason. A task that already finished is
// left as it is.
func (r *Registry) Fail(ctx context.Context, id, reason string) error {
	_, err := r.store.Update(ctx, id, domain.FailedUpdate(reason))
	if errors.Is(err, domain.ErrInvalidTransition) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark task %s failed: %w", id, err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/events"
	"github.com/phrazzld/styleai-api/internal/task"
)

// TaskRegistry creates and reports task records.
type TaskRegistry interface {
	Create(ctx context.Context, taskType string, payload any) (*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	Fail(ctx context.Context, id, reason string) error
}

// TaskCleaner evicts finished tasks.
type TaskCleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// GenerationService provides hairstyle generation tasks
type GenerationService interface {
	// CreateGenerationTask stores a pending task and requests its execution
	CreateGenerationTask(ctx context.Context, req task.GenerationPayload) (*domain.Task, error)

	// GetTask returns the task, or a not_found record for unknown ids
	GetTask(ctx context.Context, id string) (*domain.Task, error)

	// Cleanup deletes finished tasks older than the retention period
	Cleanup(ctx context.Context) (int, error)
}

type generationServiceImpl struct {
	registry TaskRegistry
	emitter  events.EventEmitter
	cleaner  TaskCleaner
	logger   *slog.Logger
}

// NewGenerationService creates a GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	registry TaskRegistry,
	emitter events.EventEmitter,
	cleaner TaskCleaner,
	logger *slog.Logger,
) (GenerationService, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	if cleaner == nil {
		return nil, errors.New("cleaner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		registry: registry,
		emitter:  emitter,
		cleaner:  cleaner,
		logger:   logger.With("component", "generation_service"),
	}, nil
}

// CreateGenerationTask creates a pending task and emits the event that
// schedules it. A full queue is reported as ErrServiceBusy; the task has
// then already been marked failed.
func (s *generationServiceImpl) CreateGenerationTask(
	ctx context.Context,
	req task.GenerationPayload,
) (*domain.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	t, err := s.registry.Create(ctx, task.TaskTypeHairstyleGeneration, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create task", "error", err)
		return nil, fmt.Errorf("failed to create generation task: %w", err)
	}

	event, err := events.NewTaskRequestEvent(t.ID, t.Type, t.Payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		if errors.Is(err, task.ErrQueueFull) || errors.Is(err, task.ErrQueueClosed) {
			s.logger.WarnContext(ctx, "generation task rejected, queue full", "task_id", t.ID)
			return nil, fmt.Errorf("%w: %w", ErrServiceBusy, err)
		}

		s.logger.ErrorContext(ctx, "failed to schedule generation task",
			"task_id", t.ID,
			"error", err)
		if failErr := s.registry.Fail(ctx, t.ID, "task could not be scheduled"); failErr != nil {
			s.logger.ErrorContext(ctx, "failed to mark unscheduled task failed",
				"task_id", t.ID,
				"error", failErr)
		}
		return nil, fmt.Errorf("failed to schedule generation task: %w", err)
	}

	s.logger.InfoContext(ctx, "generation task created",
		"task_id", t.ID,
		"hairstyle_id", req.HairstyleID)
	return t, nil
}

// GetTask implements GenerationService.
func (s *generationServiceImpl) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: task id is required", ErrInvalidRequest)
	}
	return s.registry.Get(ctx, id)
}

// Cleanup implements GenerationService.
func (s *generationServiceImpl) Cleanup(ctx context.Context) (int, error) {
	deleted, err := s.cleaner.Cleanup(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "cleanup failed", "error", err)
		return 0, err
	}
	s.logger.InfoContext(ctx, "cleanup finished", "deleted", deleted)
	return deleted, nil
}

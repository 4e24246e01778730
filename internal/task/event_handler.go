package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/events"
)

// TaskSubmitter turns a stored task into a queued job.
type TaskSubmitter interface {
	SubmitTask(ctx context.Context, t *domain.Task) error
}

// TaskEventHandler implements events.EventHandler by submitting the task
// referenced by each event to a runner.
type TaskEventHandler struct {
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewTaskEventHandler creates a handler submitting to the given runner.
func NewTaskEventHandler(submitter TaskSubmitter, logger *slog.Logger) *TaskEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskEventHandler{
		submitter: submitter,
		logger:    logger.With("component", "task_event_handler"),
	}
}

// HandleEvent submits the event's task. Queue errors are returned so the
// publisher can report them to the caller.
func (h *TaskEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if err := event.Validate(); err != nil {
		h.logger.ErrorContext(ctx, "rejecting invalid task event", "error", err)
		return err
	}

	log := h.logger.With(
		"task_id", event.TaskID,
		"task_type", event.Type,
		"event_id", event.ID)

	t := &domain.Task{
		ID:      event.TaskID,
		Type:    event.Type,
		Payload: event.Payload,
		Status:  domain.TaskStatusPending,
	}

	log.DebugContext(ctx, "submitting task to runner")
	if err := h.submitter.SubmitTask(ctx, t); err != nil {
		log.ErrorContext(ctx, "failed to submit task", "error", err)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.InfoContext(ctx, "task submitted")
	return nil
}

// Ensure TaskEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskEventHandler)(nil)

package task

import (
	"context"
	"errors"
	"time"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// Task type constants
const (
	// TaskTypeHairstyleGeneration renders a hairstyle onto a user's photo
	TaskTypeHairstyleGeneration = "hairstyle_generation"
)

// Common errors returned by the task package
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrDuplicateTask   = errors.New("task already exists")
	ErrUnknownTaskType = errors.New("unknown task type")
	ErrInvalidPayload  = errors.New("invalid task payload")
	ErrJobTimeout      = errors.New("task timed out")
	ErrJobPanicked     = errors.New("task panicked")
	ErrJobInterrupted  = errors.New("task interrupted")
	ErrResultNotStored = errors.New("task results could not be stored")
)

// ProgressFunc records a progress checkpoint for the running task.
type ProgressFunc func(ctx context.Context, progress int)

// Job is the executable side of a task record.
type Job interface {
	// ID returns the identifier of the task record the job belongs to
	ID() string

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as JSON
	Payload() []byte

	// Execute runs the job. The runner has already marked the task as
	// processing; the returned results complete it, an error fails it.
	Execute(ctx context.Context, progress ProgressFunc) ([]domain.GeneratedImage, error)
}

// JobFactory rebuilds a Job from its task record. Factories are used both
// for new submissions and for tasks recovered after a restart.
type JobFactory interface {
	CreateJob(t *domain.Task) (Job, error)
}

// JobFactoryFunc adapts a function to the JobFactory interface.
type JobFactoryFunc func(t *domain.Task) (Job, error)

// CreateJob implements JobFactory.
func (f JobFactoryFunc) CreateJob(t *domain.Task) (Job, error) {
	return f(t)
}

// TaskQueueReader provides read-only access to the job channel
// allowing workers to consume jobs without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming jobs
	GetChannel() <-chan Job
}

// TaskQueueWriter provides write access to the job queue
type TaskQueueWriter interface {
	// Enqueue adds a job to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(job Job) error

	// Close closes the queue, preventing further submission
	Close()
}

// Store persists task records. Implementations must be safe for concurrent
// use and must return copies, never shared records.
type Store interface {
	// Create inserts a new record. It returns ErrDuplicateTask when the
	// identifier is already taken.
	Create(ctx context.Context, t *domain.Task) error

	// Get returns the record or ErrTaskNotFound.
	Get(ctx context.Context, id string) (*domain.Task, error)

	// Update merges the update into the record following the lifecycle
	// rules of domain.Task.Apply and returns the updated record. It returns
	// ErrTaskNotFound for unknown ids and domain.ErrInvalidTransition when
	// the update would reverse the status.
	Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error)

	// ListUnfinished returns pending and processing records, oldest first.
	ListUnfinished(ctx context.Context) ([]*domain.Task, error)

	// DeleteFinishedBefore removes completed and failed records last updated
	// before cutoff and returns how many were removed.
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

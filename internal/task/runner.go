package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/redact"
)

// Failure messages recorded on tasks the runner gives up on.
const (
	msgQueueFull          = "server is busy, please try again later"
	msgInterruptedRestart = "interrupted by restart"
	msgInterruptedStop    = "interrupted by shutdown"
	msgUnknownType        = "unsupported task type"
	msgResultNotStored    = "generated results could not be saved"
)

// maxErrorLength bounds the error text stored on a failed task.
const maxErrorLength = 500

// storeTimeout bounds the status writes that follow a finished job.
const storeTimeout = 5 * time.Second

// ErrorHandler is called when a job fails.
type ErrorHandler func(job Job, err error)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// JobTimeout bounds a single job execution
	JobTimeout time.Duration

	// Retention is how long finished tasks are kept. Zero keeps them forever.
	Retention time.Duration

	// SweepInterval defines how often finished tasks are evicted.
	// If zero, defaults to 5 minutes
	SweepInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:   2,
		QueueSize:     100,
		JobTimeout:    2 * time.Minute,
		SweepInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing
type TaskRunner struct {
	store  Store
	queue  *TaskQueue
	pool   *WorkerPool
	config TaskRunnerConfig
	logger *slog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	factories  map[string]JobFactory
	errHandler ErrorHandler

	sweepCtx    context.Context
	sweepCancel context.CancelFunc
	sweepWG     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store Store, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "task_runner")

	defaults := DefaultTaskRunnerConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = defaults.SweepInterval
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:       store,
		queue:       NewTaskQueue(config.QueueSize, logger),
		config:      config,
		logger:      logger,
		now:         time.Now,
		factories:   make(map[string]JobFactory),
		sweepCtx:    sweepCtx,
		sweepCancel: sweepCancel,
	}
	r.errHandler = func(job Job, err error) {
		logger.Error("task execution failed",
			"task_id", job.ID(),
			"task_type", job.Type(),
			"error", redact.Error(err))
	}
	r.pool = NewWorkerPool(r.queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, r.processJob, logger)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler ErrorHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errHandler = handler
}

// RegisterFactory binds a task type to the factory that builds its jobs.
func (r *TaskRunner) RegisterFactory(taskType string, factory JobFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[taskType] = factory
}

// Submit adds a job to the queue. When the job cannot be queued its task
// is marked failed and the queue error is returned.
func (r *TaskRunner) Submit(ctx context.Context, job Job) error {
	err := r.queue.Enqueue(job)
	if err == nil {
		return nil
	}

	r.logger.WarnContext(ctx, "failed to enqueue task",
		"task_id", job.ID(),
		"task_type", job.Type(),
		"error", err)
	r.fail(ctx, job.ID(), msgQueueFull)
	return err
}

// SubmitTask builds the job for a stored task and submits it.
func (r *TaskRunner) SubmitTask(ctx context.Context, t *domain.Task) error {
	job, err := r.buildJob(t)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to build job for task",
			"task_id", t.ID,
			"task_type", t.Type,
			"error", err)
		r.fail(ctx, t.ID, failureMessage(err))
		return err
	}
	return r.Submit(ctx, job)
}

func (r *TaskRunner) buildJob(t *domain.Task) (Job, error) {
	r.mu.RLock()
	factory, ok := r.factories[t.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTaskType, t.Type)
	}
	return factory.CreateJob(t)
}

// Start recovers unfinished tasks, then starts the workers and, when a
// retention is configured, the sweeper.
func (r *TaskRunner) Start(ctx context.Context) error {
	var err error
	r.startOnce.Do(func() {
		if err = r.Recover(ctx); err != nil {
			err = fmt.Errorf("failed to recover tasks: %w", err)
			return
		}

		r.pool.Start()

		if r.config.Retention > 0 {
			r.sweepWG.Add(1)
			go r.retentionSweeper()
		}
	})
	return err
}

// Stop cancels running jobs and waits for workers and the sweeper.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.sweepCancel()
		r.pool.Stop()
		r.sweepWG.Wait()
		r.queue.Close()
	})
}

// Recover requeues pending tasks left in the store by a previous process.
// Tasks that were processing cannot go back to pending, so they fail.
func (r *TaskRunner) Recover(ctx context.Context) error {
	tasks, err := r.store.ListUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("failed to list unfinished tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil
	}

	var pending, interrupted int
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskStatusPending:
			pending++
			if err := r.SubmitTask(ctx, t); err != nil {
				r.logger.ErrorContext(ctx, "failed to requeue pending task",
					"task_id", t.ID,
					"task_type", t.Type,
					"error", err)
			}
		case domain.TaskStatusProcessing:
			interrupted++
			r.fail(ctx, t.ID, msgInterruptedRestart)
		}
	}

	r.logger.InfoContext(ctx, "recovered unfinished tasks",
		"pending_count", pending,
		"interrupted_count", interrupted)
	return nil
}

// Cleanup deletes finished tasks older than the retention and returns how
// many were removed. With no retention configured nothing is eligible.
func (r *TaskRunner) Cleanup(ctx context.Context) (int, error) {
	if r.config.Retention <= 0 {
		return 0, nil
	}

	cutoff := r.now().Add(-r.config.Retention)
	deleted, err := r.store.DeleteFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished tasks: %w", err)
	}
	if deleted > 0 {
		r.logger.InfoContext(ctx, "evicted finished tasks",
			"deleted", deleted,
			"cutoff", cutoff)
	}
	return deleted, nil
}

// processJob handles execution of a single job
func (r *TaskRunner) processJob(ctx context.Context, job Job, workerID int) {
	logger := r.logger.With(
		"task_id", job.ID(),
		"task_type", job.Type(),
		"worker_id", workerID,
	)

	started := domain.StatusUpdate(domain.TaskStatusProcessing, domain.ProgressStarted)
	if _, err := r.store.Update(ctx, job.ID(), started); err != nil {
		logger.Error("failed to update task status to processing", "error", err)
		return
	}

	logger.Info("processing task")

	jobCtx, cancel := context.WithTimeout(ctx, r.config.JobTimeout)
	defer cancel()

	progress := func(pctx context.Context, p int) {
		if _, err := r.store.Update(pctx, job.ID(), domain.ProgressUpdate(p)); err != nil {
			logger.Warn("failed to record task progress", "progress", p, "error", err)
		}
	}

	results, err := r.execute(jobCtx, job, progress)
	if err == nil && jobCtx.Err() != nil {
		err = jobCtx.Err()
	}

	// The job context may be done; the final write must still happen.
	storeCtx, storeCancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer storeCancel()

	if err != nil {
		err = r.classify(ctx, err)
		logger.Error("task failed", "error", redact.Error(err))
		r.finishFailed(storeCtx, job, err, logger)
		return
	}

	if _, err := r.store.Update(storeCtx, job.ID(), domain.CompletedUpdate(results)); err != nil {
		// A task must still reach a terminal status when its results cannot
		// be stored.
		logger.Error("failed to update task status to completed", "error", err)
		r.finishFailed(storeCtx, job, fmt.Errorf("%w: %w", ErrResultNotStored, err), logger)
		return
	}
	logger.Info("task completed successfully", "result_count", len(results))
}

// finishFailed records err on the task and reports it to the error handler.
func (r *TaskRunner) finishFailed(ctx context.Context, job Job, err error, logger *slog.Logger) {
	if _, updateErr := r.store.Update(ctx, job.ID(), domain.FailedUpdate(failureMessage(err))); updateErr != nil {
		logger.Error("failed to update task status to failed", "error", updateErr)
	}

	r.mu.RLock()
	handler := r.errHandler
	r.mu.RUnlock()
	if handler != nil {
		handler(job, err)
	}
}

// execute runs the job, turning a panic into an error.
func (r *TaskRunner) execute(ctx context.Context, job Job, progress ProgressFunc) (results []domain.GeneratedImage, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			results = nil
			err = fmt.Errorf("%w: %v", ErrJobPanicked, rec)
		}
	}()
	return job.Execute(ctx, progress)
}

// classify maps context errors to the runner's own sentinels.
func (r *TaskRunner) classify(poolCtx context.Context, err error) error {
	switch {
	case poolCtx.Err() != nil:
		return fmt.Errorf("%w: %s", ErrJobInterrupted, msgInterruptedStop)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w after %s", ErrJobTimeout, r.config.JobTimeout)
	default:
		return err
	}
}

func (r *TaskRunner) fail(ctx context.Context, id, message string) {
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	if _, err := r.store.Update(storeCtx, id, domain.FailedUpdate(message)); err != nil {
		r.logger.ErrorContext(ctx, "failed to mark task as failed",
			"task_id", id,
			"error", err)
	}
}

// retentionSweeper periodically evicts finished tasks.
func (r *TaskRunner) retentionSweeper() {
	defer r.sweepWG.Done()

	ticker := time.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.sweepCtx.Done():
			return
		case <-ticker.C:
			if _, err := r.Cleanup(r.sweepCtx); err != nil {
				r.logger.Error("retention sweep failed", "error", err)
			}
		}
	}
}

// failureMessage turns an error into the text stored on a failed task.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrQueueClosed):
		return msgQueueFull
	case errors.Is(err, ErrUnknownTaskType):
		return msgUnknownType
	case errors.Is(err, ErrResultNotStored):
		return msgResultNotStored
	}
	return redact.Truncate(err.Error(), maxErrorLength)
}

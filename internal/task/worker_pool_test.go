package task

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkerPool(t *testing.T) {
	t.Parallel()

	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)
	noop := func(context.Context, Job, int) {}

	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 5}, noop, logger)
	assert.Equal(t, 5, pool.workerCount)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 0}, noop, logger)
	assert.Equal(t, 1, pool.workerCount)

	pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: -5}, noop, logger)
	assert.Equal(t, 1, pool.workerCount)

	assert.Equal(t, 2, DefaultWorkerPoolConfig().WorkerCount)
}

func TestWorkerPool_ProcessesJobs(t *testing.T) {
	t.Parallel()

	logger := setupTestLogger()
	queue := NewTaskQueue(10, logger)

	var processed atomic.Int32
	var wg sync.WaitGroup
	wg.Add(5)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 3}, func(ctx context.Context, job Job, workerID int) {
		defer wg.Done()
		processed.Add(1)
	}, logger)

	pool.Start()
	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Enqueue(NewMockJob("job")))
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int32(5), processed.Load())
}

func TestWorkerPool_StopCancelsRunningJobs(t *testing.T) {
	t.Parallel()

	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	started := make(chan struct{})
	var cancelled atomic.Bool
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 1}, func(ctx context.Context, job Job, workerID int) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	}, logger)

	pool.Start()
	require.NoError(t, queue.Enqueue(NewMockJob("long")))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("job was not started")
	}

	pool.Stop()
	assert.True(t, cancelled.Load(), "running job should observe cancellation")
}

func TestWorkerPool_StopsWhenQueueClosed(t *testing.T) {
	t.Parallel()

	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: 2}, func(context.Context, Job, int) {}, logger)

	pool.Start()
	queue.Close()

	done := make(chan struct{})
	go func() {
		pool.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not exit after the queue closed")
	}
	pool.Stop()
}

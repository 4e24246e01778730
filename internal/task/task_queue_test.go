package task

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueue_Enqueue(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(2, setupTestLogger())

	require.NoError(t, queue.Enqueue(NewMockJob("a")))
	require.NoError(t, queue.Enqueue(NewMockJob("b")))
	assert.Equal(t, 2, queue.Len())

	err := queue.Enqueue(NewMockJob("c"))
	assert.ErrorIs(t, err, ErrQueueFull)

	job := <-queue.GetChannel()
	assert.Equal(t, "a", job.ID(), "jobs are delivered in order")
}

func TestTaskQueue_Close(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(1, setupTestLogger())
	queue.Close()
	queue.Close()

	err := queue.Enqueue(NewMockJob("a"))
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, ok := <-queue.GetChannel()
	assert.False(t, ok, "channel should be closed")
}

func TestTaskQueue_InvalidSize(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(0, setupTestLogger())

	assert.NoError(t, queue.Enqueue(NewMockJob("a")))
	assert.ErrorIs(t, queue.Enqueue(NewMockJob("b")), ErrQueueFull)
}

func TestTaskQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	t.Parallel()

	queue := NewTaskQueue(50, setupTestLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = queue.Enqueue(NewMockJob("job"))
		}()
	}
	queue.Close()
	wg.Wait()

	for range queue.GetChannel() {
	}
}

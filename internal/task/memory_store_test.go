package task_test

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/phrazzld/styleai-api/internal/task/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) task.Store {
		return task.NewMemoryStore()
	})
}

func TestMemoryStore_ConcurrentUpdates(t *testing.T) {
	t.Parallel()

	store := task.NewMemoryStore()
	rec := storetest.NewTask(t)
	require.NoError(t, store.Create(context.Background(), rec))
	_, err := store.Update(context.Background(), rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, 10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 10; p <= 90; p++ {
		wg.Add(1)
		go func(progress int) {
			defer wg.Done()
			_, _ = store.Update(context.Background(), rec.ID, domain.ProgressUpdate(progress))
		}(p)
	}
	wg.Wait()

	got, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Progress, "the highest progress wins regardless of order")
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	t.Parallel()

	store := task.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Create(ctx, storetest.NewTask(t)), context.Canceled)
	_, err := store.Get(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

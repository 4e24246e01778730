package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/platform/postgres"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/phrazzld/styleai-api/internal/task/storetest"
	"github.com/phrazzld/styleai-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Subtests share one table, so they run sequentially.
func TestTaskStore(t *testing.T) {
	pool := testdb.Pool(t)

	storetest.Run(t, func(t *testing.T) task.Store {
		testdb.Truncate(t, pool, "tasks")
		return postgres.NewTaskStore(pool)
	})
}

func TestTaskStore_ConcurrentUpdates(t *testing.T) {
	pool := testdb.Pool(t)
	testdb.Truncate(t, pool, "tasks")
	store := postgres.NewTaskStore(pool)
	ctx := context.Background()

	rec := storetest.NewTask(t)
	require.NoError(t, store.Create(ctx, rec))
	_, err := store.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, 10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 10; p <= 90; p += 10 {
		wg.Add(1)
		go func(progress int) {
			defer wg.Done()
			_, err := store.Update(ctx, rec.ID, domain.ProgressUpdate(progress))
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Progress)
}

func TestMigrate_Idempotent(t *testing.T) {
	pool := testdb.Pool(t)

	// Pool already migrated once; a second run must be a no-op.
	require.NoError(t, postgres.Migrate(context.Background(), pool, testLogger()))
}

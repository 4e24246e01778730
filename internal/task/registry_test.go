package task

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Create(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	registry := NewRegistry(store, setupTestLogger())

	rec, err := registry.Create(context.Background(), TaskTypeHairstyleGeneration,
		GenerationPayload{OriginalImageURL: "https://example.com/face.jpg", HairstyleID: "1"})

	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, domain.TaskStatusPending, rec.Status)
	assert.Equal(t, 0, rec.Progress)
	assert.JSONEq(t, `{"original_image_url":"https://example.com/face.jpg","hairstyle_id":"1"}`, string(rec.Payload))

	stored, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestRegistry_UniqueIDs(t *testing.T) {
	t.Parallel()

	registry := NewRegistry(NewMemoryStore(), setupTestLogger())
	seen := make(map[string]struct{})

	for i := 0; i < 200; i++ {
		rec, err := registry.Create(context.Background(), TaskTypeHairstyleGeneration, map[string]int{"n": i})
		require.NoError(t, err)
		_, dup := seen[rec.ID]
		require.False(t, dup, "id %s reused", rec.ID)
		seen[rec.ID] = struct{}{}
	}
}

func TestRegistry_RetriesOnCollision(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	registry := NewRegistry(store, setupTestLogger())
	ids := []string{"taken", "taken", "fresh"}
	registry.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	existing, err := domain.NewTask("taken", TaskTypeHairstyleGeneration, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), existing))

	rec, err := registry.Create(context.Background(), TaskTypeHairstyleGeneration, struct{}{})

	require.NoError(t, err)
	assert.Equal(t, "fresh", rec.ID)
}

func TestRegistry_GivesUpAfterRepeatedCollisions(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	registry := NewRegistry(store, setupTestLogger())
	registry.newID = func() string { return "taken" }
	existing, err := domain.NewTask("taken", TaskTypeHairstyleGeneration, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), existing))

	_, err = registry.Create(context.Background(), TaskTypeHairstyleGeneration, struct{}{})

	assert.ErrorIs(t, err, ErrDuplicateTask)
}

func TestRegistry_CreateErrors(t *testing.T) {
	t.Parallel()

	t.Run("unmarshalable payload", func(t *testing.T) {
		registry := NewRegistry(NewMemoryStore(), setupTestLogger())

		_, err := registry.Create(context.Background(), TaskTypeHairstyleGeneration, make(chan int))

		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("store failure", func(t *testing.T) {
		store := NewMockStore()
		storeErr := errors.New("connection reset")
		store.CreateFn = func(context.Context, *domain.Task) error { return storeErr }
		registry := NewRegistry(store, setupTestLogger())

		_, err := registry.Create(context.Background(), TaskTypeHairstyleGeneration, struct{}{})

		assert.ErrorIs(t, err, storeErr)
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	registry := NewRegistry(store, setupTestLogger())
	rec := seedTask(t, store)

	got, err := registry.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, got.Status)

	missing, err := registry.Get(context.Background(), "does-not-exist")
	require.NoError(t, err, "unknown ids are not errors")
	assert.Equal(t, "does-not-exist", missing.ID)
	assert.Equal(t, domain.TaskStatusNotFound, missing.Status)
	assert.Equal(t, 0, missing.Progress)
}

func TestRegistry_GetStoreError(t *testing.T) {
	t.Parallel()

	store := NewMockStore()
	store.GetFn = func(context.Context, string) (*domain.Task, error) {
		return nil, errors.New("timeout")
	}
	registry := NewRegistry(store, setupTestLogger())

	_, err := registry.Get(context.Background(), "x")

	assert.ErrorContains(t, err, "failed to get task")
}

func TestRegistry_Fail(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	registry := NewRegistry(store, setupTestLogger())
	ctx := context.Background()

	rec, err := registry.Create(ctx, TaskTypeHairstyleGeneration, map[string]string{"k": "v"})
	require.NoError(t, err)

	require.NoError(t, registry.Fail(ctx, rec.ID, "no handler"))

	got, err := registry.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, got.Status)
	assert.Equal(t, "no handler", got.Error)

	// Already terminal: nothing changes and no error.
	require.NoError(t, registry.Fail(ctx, rec.ID, "second reason"))
	got, err = registry.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "no handler", got.Error)

	err = registry.Fail(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

// Package storetest provides a conformance suite that every task.Store
// implementation runs from its own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) task.Store

// Run exercises the task.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("create and get", func(t *testing.T) { testCreateGet(t, newStore(t)) })
	t.Run("duplicate id", func(t *testing.T) { testDuplicate(t, newStore(t)) })
	t.Run("get missing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("lifecycle", func(t *testing.T) { testLifecycle(t, newStore(t)) })
	t.Run("progress never decreases", func(t *testing.T) { testProgressMonotonic(t, newStore(t)) })
	t.Run("failed task", func(t *testing.T) { testFailed(t, newStore(t)) })
	t.Run("terminal tasks are immutable", func(t *testing.T) { testTerminalImmutable(t, newStore(t)) })
	t.Run("update missing", func(t *testing.T) { testUpdateMissing(t, newStore(t)) })
	t.Run("list unfinished", func(t *testing.T) { testListUnfinished(t, newStore(t)) })
	t.Run("delete finished before", func(t *testing.T) { testDeleteFinished(t, newStore(t)) })
}

// NewTask builds a pending generation task with a fresh id.
func NewTask(t *testing.T) *domain.Task {
	t.Helper()
	rec, err := domain.NewTask(uuid.NewString(), task.TaskTypeHairstyleGeneration,
		[]byte(`{"original_image_url":"https://example.com/face.jpg","hairstyle_id":"1"}`))
	require.NoError(t, err)
	return rec
}

func create(t *testing.T, s task.Store) *domain.Task {
	t.Helper()
	rec := NewTask(t)
	require.NoError(t, s.Create(context.Background(), rec))
	return rec
}

func testCreateGet(t *testing.T, s task.Store) {
	ctx := context.Background()
	rec := create(t, s)

	got, err := s.Get(ctx, rec.ID)

	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, domain.TaskStatusPending, got.Status)
	assert.Equal(t, 0, got.Progress)
	assert.Equal(t, task.TaskTypeHairstyleGeneration, got.Type)
	assert.JSONEq(t, string(rec.Payload), string(got.Payload))
	assert.Nil(t, got.Results)
	assert.Empty(t, got.Error)

	got.Status = domain.TaskStatusFailed
	again, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusPending, again.Status, "returned records must be copies")
}

func testDuplicate(t *testing.T, s task.Store) {
	rec := create(t, s)

	err := s.Create(context.Background(), rec)

	assert.ErrorIs(t, err, task.ErrDuplicateTask)
}

func testGetMissing(t *testing.T, s task.Store) {
	_, err := s.Get(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func testLifecycle(t *testing.T, s task.Store) {
	ctx := context.Background()
	rec := create(t, s)

	got, err := s.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, domain.ProgressStarted))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
	assert.Equal(t, domain.ProgressStarted, got.Progress)

	_, err = s.Update(ctx, rec.ID, domain.ProgressUpdate(domain.ProgressGenerated))
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusPending, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	results := []domain.GeneratedImage{{ImageURL: "https://example.com/out.jpg", HairstyleID: "1", HairstyleName: "French waves", Provider: "mock"}}
	got, err = s.Update(ctx, rec.ID, domain.CompletedUpdate(results))
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)

	stored, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, stored.Status)
	assert.Equal(t, domain.ProgressDone, stored.Progress)
	assert.Equal(t, results, stored.Results)
	assert.Empty(t, stored.Error)
}

func testProgressMonotonic(t *testing.T, s task.Store) {
	ctx := context.Background()
	rec := create(t, s)

	_, err := s.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, 60))
	require.NoError(t, err)

	got, err := s.Update(ctx, rec.ID, domain.ProgressUpdate(30))
	require.NoError(t, err)
	assert.Equal(t, 60, got.Progress)

	got, err = s.Update(ctx, rec.ID, domain.ProgressUpdate(250))
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress, "progress is clamped")
}

func testFailed(t *testing.T, s task.Store) {
	ctx := context.Background()
	rec := create(t, s)

	_, err := s.Update(ctx, rec.ID, domain.FailedUpdate("vendor unavailable"))
	require.NoError(t, err)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailed, got.Status)
	assert.Equal(t, "vendor unavailable", got.Error)
	assert.Nil(t, got.Results)
}

func testTerminalImmutable(t *testing.T, s task.Store) {
	ctx := context.Background()
	rec := create(t, s)
	_, err := s.Update(ctx, rec.ID, domain.CompletedUpdate(nil))
	require.NoError(t, err)

	_, err = s.Update(ctx, rec.ID, domain.FailedUpdate("late failure"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = s.Update(ctx, rec.ID, domain.ProgressUpdate(50))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.NotNil(t, got.Results, "completed tasks always carry a result list")
}

func testUpdateMissing(t *testing.T, s task.Store) {
	_, err := s.Update(context.Background(), uuid.NewString(), domain.ProgressUpdate(10))

	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func testListUnfinished(t *testing.T, s task.Store) {
	ctx := context.Background()
	pending := create(t, s)
	processing := create(t, s)
	done := create(t, s)

	_, err := s.Update(ctx, processing.ID, domain.StatusUpdate(domain.TaskStatusProcessing, 10))
	require.NoError(t, err)
	_, err = s.Update(ctx, done.ID, domain.CompletedUpdate(nil))
	require.NoError(t, err)

	tasks, err := s.ListUnfinished(ctx)

	require.NoError(t, err)
	ids := make(map[string]domain.TaskStatus, len(tasks))
	for _, rec := range tasks {
		ids[rec.ID] = rec.Status
	}
	assert.Equal(t, domain.TaskStatusPending, ids[pending.ID])
	assert.Equal(t, domain.TaskStatusProcessing, ids[processing.ID])
	assert.NotContains(t, ids, done.ID)
	for _, rec := range tasks {
		assert.NotEmpty(t, rec.Payload, "recovery needs the stored payload")
	}
}

func testDeleteFinished(t *testing.T, s task.Store) {
	ctx := context.Background()
	unfinished := create(t, s)
	completed := create(t, s)
	failed := create(t, s)

	_, err := s.Update(ctx, completed.ID, domain.CompletedUpdate(nil))
	require.NoError(t, err)
	_, err = s.Update(ctx, failed.ID, domain.FailedUpdate("boom"))
	require.NoError(t, err)

	deleted, err := s.DeleteFinishedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, deleted, "recently finished tasks are kept")

	deleted, err = s.DeleteFinishedBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	_, err = s.Get(ctx, completed.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	_, err = s.Get(ctx, failed.ID)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
	_, err = s.Get(ctx, unfinished.ID)
	assert.NoError(t, err, "unfinished tasks are never evicted")
}

package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTask(t *testing.T) *Task {
	t.Helper()
	task, err := NewTask("task-1", "hairstyle_generation", json.RawMessage(`{"hairstyle_id":"1"}`))
	require.NoError(t, err)
	return task
}

func TestNewTask(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, 0, task.Progress)
	assert.Nil(t, task.Results)
	assert.Empty(t, task.Error)
	assert.False(t, task.CreatedAt.IsZero())

	_, err := NewTask("", "hairstyle_generation", nil)
	assert.ErrorIs(t, err, ErrEmptyTaskID)
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskStatusPending, TaskStatusPending, true},
		{TaskStatusPending, TaskStatusProcessing, true},
		{TaskStatusPending, TaskStatusFailed, true},
		{TaskStatusPending, TaskStatusCompleted, true},
		{TaskStatusProcessing, TaskStatusProcessing, true},
		{TaskStatusProcessing, TaskStatusCompleted, true},
		{TaskStatusProcessing, TaskStatusFailed, true},
		{TaskStatusProcessing, TaskStatusPending, false},
		{TaskStatusCompleted, TaskStatusFailed, false},
		{TaskStatusCompleted, TaskStatusCompleted, false},
		{TaskStatusFailed, TaskStatusProcessing, false},
		{TaskStatusPending, TaskStatusNotFound, false},
		{TaskStatus("bogus"), TaskStatusProcessing, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestApply_ForwardLifecycle(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	now := time.Now()

	require.NoError(t, task.Apply(StatusUpdate(TaskStatusProcessing, ProgressStarted), now))
	assert.Equal(t, TaskStatusProcessing, task.Status)
	assert.Equal(t, ProgressStarted, task.Progress)

	require.NoError(t, task.Apply(ProgressUpdate(ProgressGenerated), now))
	assert.Equal(t, ProgressGenerated, task.Progress)

	results := []GeneratedImage{{ImageURL: "https://example.com/a.png", HairstyleID: "1"}}
	require.NoError(t, task.Apply(CompletedUpdate(results), now))
	assert.Equal(t, TaskStatusCompleted, task.Status)
	assert.Equal(t, ProgressDone, task.Progress)
	assert.Equal(t, results, task.Results)
	assert.Empty(t, task.Error)
}

func TestApply_ProgressNeverDecreases(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	now := time.Now()

	require.NoError(t, task.Apply(StatusUpdate(TaskStatusProcessing, ProgressGenerated), now))
	require.NoError(t, task.Apply(ProgressUpdate(ProgressResolved), now))
	assert.Equal(t, ProgressGenerated, task.Progress, "lower progress must be ignored")

	require.NoError(t, task.Apply(ProgressUpdate(250), now))
	assert.Equal(t, ProgressDone, task.Progress, "progress is clamped to 100")
}

func TestApply_RejectsReversal(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	now := time.Now()

	require.NoError(t, task.Apply(StatusUpdate(TaskStatusProcessing, ProgressStarted), now))
	err := task.Apply(StatusUpdate(TaskStatusPending, 0), now)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, TaskStatusProcessing, task.Status)

	require.NoError(t, task.Apply(FailedUpdate("vendor timeout"), now))
	err = task.Apply(CompletedUpdate(nil), now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = task.Apply(ProgressUpdate(ProgressDone), now)
	assert.ErrorIs(t, err, ErrInvalidTransition, "finished tasks accept no updates")
	assert.Equal(t, TaskStatusFailed, task.Status)
	assert.Equal(t, "vendor timeout", task.Error)
}

func TestApply_TerminalPayloadsAreExclusive(t *testing.T) {
	t.Parallel()

	completed := newTestTask(t)
	require.NoError(t, completed.Apply(CompletedUpdate(nil), time.Now()))
	assert.NotNil(t, completed.Results, "completed tasks always carry results")
	assert.Empty(t, completed.Error)

	failed := newTestTask(t)
	require.NoError(t, failed.Apply(FailedUpdate(""), time.Now()))
	assert.Nil(t, failed.Results)
	assert.Equal(t, DefaultFailureMessage, failed.Error)
}

func TestApply_InvalidStatus(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	status := TaskStatusNotFound
	err := task.Apply(TaskUpdate{Status: &status}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestClone(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	require.NoError(t, task.Apply(CompletedUpdate([]GeneratedImage{{ImageURL: "a"}}), time.Now()))

	c := task.Clone()
	c.Results[0].ImageURL = "changed"
	c.Payload[0] = 'x'

	assert.Equal(t, "a", task.Results[0].ImageURL)
	assert.Equal(t, byte('{'), task.Payload[0])
	assert.Nil(t, (*Task)(nil).Clone())
}

func TestClone_KeepsEmptyResults(t *testing.T) {
	t.Parallel()

	task := newTestTask(t)
	require.NoError(t, task.Apply(CompletedUpdate(nil), time.Now()))

	c := task.Clone()

	require.NotNil(t, c.Results)
	assert.Empty(t, c.Results)
	assert.Equal(t, TaskStatusCompleted, c.Status)
}

func TestNotFoundTask(t *testing.T) {
	t.Parallel()

	task := NotFoundTask("does-not-exist")
	assert.Equal(t, "does-not-exist", task.ID)
	assert.Equal(t, TaskStatusNotFound, task.Status)
	assert.Equal(t, 0, task.Progress)
}

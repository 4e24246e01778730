package task

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// seedTask stores a pending task and returns it.
func seedTask(t *testing.T, store Store) *domain.Task {
	t.Helper()
	rec, err := domain.NewTask(uuid.NewString(), TaskTypeHairstyleGeneration,
		[]byte(`{"original_image_url":"https://example.com/face.jpg","hairstyle_id":"1"}`))
	require.NoError(t, err)
	require.NoError(t, store.Create(context.Background(), rec))
	return rec
}

// waitForTerminal polls the store until the task reaches a terminal status.
func waitForTerminal(t *testing.T, store Store, id string) *domain.Task {
	t.Helper()
	var rec *domain.Task
	require.Eventually(t, func() bool {
		got, err := store.Get(context.Background(), id)
		if err != nil {
			return false
		}
		rec = got
		return got.Status.IsTerminal()
	}, 2*time.Second, 5*time.Millisecond, "task %s did not finish", id)
	return rec
}

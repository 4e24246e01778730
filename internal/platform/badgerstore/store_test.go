package badgerstore

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/phrazzld/styleai-api/internal/task/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openInMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true, Logger: testLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) task.Store {
		return openInMemory(t)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Path: dir, Logger: testLogger()})
	require.NoError(t, err)
	rec := storetest.NewTask(t)
	require.NoError(t, s.Create(ctx, rec))
	_, err = s.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, domain.ProgressStarted))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(Options{Path: dir, Logger: testLogger()})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
	assert.Equal(t, domain.ProgressStarted, got.Progress)
	assert.JSONEq(t, string(rec.Payload), string(got.Payload))

	unfinished, err := reopened.ListUnfinished(ctx)
	require.NoError(t, err)
	require.Len(t, unfinished, 1)
	assert.Equal(t, rec.ID, unfinished[0].ID)
}

func TestStore_ConcurrentProgress(t *testing.T) {
	t.Parallel()

	s := openInMemory(t)
	ctx := context.Background()
	rec := storetest.NewTask(t)
	require.NoError(t, s.Create(ctx, rec))
	_, err := s.Update(ctx, rec.ID, domain.StatusUpdate(domain.TaskStatusProcessing, 10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for p := 10; p <= 90; p += 10 {
		wg.Add(1)
		go func(progress int) {
			defer wg.Done()
			_, _ = s.Update(ctx, rec.ID, domain.ProgressUpdate(progress))
		}(p)
	}
	wg.Wait()

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Progress)
}

func TestStore_Closed(t *testing.T) {
	t.Parallel()

	s, err := Open(Options{InMemory: true, Logger: testLogger()})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	_, err = s.Get(context.Background(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestStore_CancelledContext(t *testing.T) {
	t.Parallel()

	s := openInMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Create(ctx, storetest.NewTask(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(Options{Logger: testLogger()})
	assert.Error(t, err)
}

func TestStore_OnDisk(t *testing.T) {
	t.Parallel()

	storetest.Run(t, func(t *testing.T) task.Store {
		s, err := Open(Options{Path: t.TempDir(), Logger: testLogger()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestStore_LargeRecords(t *testing.T) {
	t.Parallel()

	s, err := Open(Options{Path: t.TempDir(), Logger: testLogger()})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ctx := context.Background()

	inline := "data:image/png;base64," + strings.Repeat("A", 3<<20)
	payload, err := json.Marshal(map[string]string{"original_image_url": inline})
	require.NoError(t, err)
	rec, err := domain.NewTask(uuid.NewString(), task.TaskTypeHairstyleGeneration, payload)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, rec))

	results := []domain.GeneratedImage{{ImageURL: inline, HairstyleID: "1", Provider: "gemini"}}
	_, err = s.Update(ctx, rec.ID, domain.CompletedUpdate(results))
	require.NoError(t, err)

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	require.Len(t, got.Results, 1)
	assert.Len(t, got.Results[0].ImageURL, len(inline))
	assert.Len(t, got.Payload, len(payload))
}

package errreport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport keeps events in memory instead of sending them.
type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captureTransport) Configure(sentry.ClientOptions) {}

func (c *captureTransport) SendEvent(event *sentry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureTransport) Flush(time.Duration) bool { return true }

func (c *captureTransport) FlushWithContext(context.Context) bool { return true }

func (c *captureTransport) Close() {}

func (c *captureTransport) captured() []*sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*sentry.Event(nil), c.events...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestReporter(t *testing.T) (Reporter, *captureTransport) {
	t.Helper()
	transport := &captureTransport{}
	r, err := New(Options{
		DSN:         "https://public@sentry.example.com/1",
		Environment: "test",
		Transport:   transport,
	}, testLogger())
	require.NoError(t, err)
	return r, transport
}

func TestNew_WithoutDSN(t *testing.T) {
	t.Parallel()

	r, err := New(Options{}, testLogger())

	require.NoError(t, err)
	assert.IsType(t, Nop{}, r)
	r.Capture(context.Background(), errors.New("ignored"), nil)
	assert.True(t, r.Flush(time.Second))
}

func TestNew_InvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := New(Options{DSN: "not a dsn"}, testLogger())

	assert.Error(t, err)
}

func TestSentryReporter_Capture(t *testing.T) {
	t.Parallel()

	r, transport := newTestReporter(t)
	ctx := WithTraceID(context.Background(), "trace-123")

	r.Capture(ctx, errors.New("upload failed for user@example.com"), map[string]string{"task_id": "t-1"})

	events := transport.captured()
	require.Len(t, events, 1)
	assert.Equal(t, "t-1", events[0].Tags["task_id"])
	assert.Equal(t, "trace-123", events[0].Tags["trace_id"])
	assert.Equal(t, "styleai-api", events[0].Tags["module"])
	require.NotEmpty(t, events[0].Exception)
	assert.Contains(t, events[0].Exception[0].Value, "[REDACTED_EMAIL]")
	assert.NotContains(t, events[0].Exception[0].Value, "user@example.com")
}

func TestSentryReporter_IgnoresNil(t *testing.T) {
	t.Parallel()

	r, transport := newTestReporter(t)

	r.Capture(context.Background(), nil, nil)

	assert.Empty(t, transport.captured())
}

func TestTaskErrorHandler(t *testing.T) {
	t.Parallel()

	r, transport := newTestReporter(t)
	handler := TaskErrorHandler(r, testLogger())

	handler(task.NewMockJob("task-9"), errors.New("vendor timeout"))

	events := transport.captured()
	require.Len(t, events, 1)
	assert.Equal(t, "task-9", events[0].Tags["task_id"])
	assert.Equal(t, task.TaskTypeHairstyleGeneration, events[0].Tags["task_type"])
}

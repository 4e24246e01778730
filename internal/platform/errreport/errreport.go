// Package errreport forwards failures to Sentry when a DSN is configured and
// does nothing otherwise.
package errreport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/phrazzld/styleai-api/internal/redact"
	"github.com/phrazzld/styleai-api/internal/task"
)

// Reporter captures errors for later inspection.
type Reporter interface {
	Capture(ctx context.Context, err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// Options configures the Sentry reporter.
type Options struct {
	DSN         string
	Environment string
	Release     string
	// Transport replaces the HTTP transport; used by tests.
	Transport sentry.Transport
}

// SentryReporter sends captured errors to Sentry through its own hub.
type SentryReporter struct {
	hub    *sentry.Hub
	logger *slog.Logger
}

// New returns a SentryReporter when opts.DSN is set and a no-op reporter
// otherwise.
func New(opts Options, logger *slog.Logger) (Reporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DSN == "" {
		return Nop{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		AttachStacktrace: true,
		Transport:        opts.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("module", "styleai-api")
	})

	logger.Info("sentry error reporting enabled", "environment", opts.Environment)
	return &SentryReporter{hub: hub, logger: logger.With("component", "errreport")}, nil
}

// Capture implements Reporter. The message is redacted before it leaves the
// process.
func (r *SentryReporter) Capture(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}

	r.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if id := ctx.Value(traceIDKey{}); id != nil {
			scope.SetTag("trace_id", fmt.Sprint(id))
		}
		r.hub.CaptureException(errors.New(redact.Error(err)))
	})
}

// Flush implements Reporter.
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// Nop discards everything.
type Nop struct{}

// Capture implements Reporter.
func (Nop) Capture(context.Context, error, map[string]string) {}

// Flush implements Reporter.
func (Nop) Flush(time.Duration) bool { return true }

type traceIDKey struct{}

// WithTraceID attaches a trace id that captured events are tagged with.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TaskErrorHandler adapts a Reporter into a task.ErrorHandler that also logs
// the failure.
func TaskErrorHandler(reporter Reporter, logger *slog.Logger) task.ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(job task.Job, err error) {
		logger.Error("task execution failed",
			"task_id", job.ID(),
			"task_type", job.Type(),
			"error", redact.Error(err))
		reporter.Capture(context.Background(), err, map[string]string{
			"task_id":   job.ID(),
			"task_type": job.Type(),
		})
	}
}

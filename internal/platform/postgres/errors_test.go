package postgres_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/styleai-api/internal/platform/postgres"
	"github.com/phrazzld/styleai-api/internal/task"
	"github.com/stretchr/testify/assert"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: task.ErrTaskNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("query: %w", pgx.ErrNoRows), want: task.ErrTaskNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, want: task.ErrDuplicateTask},
		{name: "check violation", err: &pgconn.PgError{Code: "23514", ConstraintName: "tasks_progress_check"}, want: postgres.ErrInvalidRecord},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, postgres.MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, postgres.MapError(nil))

	other := errors.New("connection reset")
	assert.Equal(t, other, postgres.MapError(other))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, postgres.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, postgres.IsUniqueViolation(errors.New("plain")))
}

// Package testdb provides utilities specifically for database testing.
// Tests that need PostgreSQL call Pool, which skips the test unless
// DATABASE_URL is set.
package testdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/styleai-api/internal/platform/postgres"
	"github.com/stretchr/testify/require"
)

// TestTimeout defines a default timeout for test database operations.
const TestTimeout = 10 * time.Second

// IsIntegrationTestEnvironment returns true if the DATABASE_URL environment
// variable is set, indicating that integration tests can be run.
func IsIntegrationTestEnvironment() bool {
	return DatabaseURL() != ""
}

// DatabaseURL returns the database URL for tests. It checks DATABASE_URL and
// STYLEAI_TEST_DB_URL in that order.
func DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return os.Getenv("STYLEAI_TEST_DB_URL")
}

// Pool connects to the test database, applies migrations and closes the
// pool when the test ends. The test is skipped without a database.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if !IsIntegrationTestEnvironment() {
		t.Skip("DATABASE_URL or STYLEAI_TEST_DB_URL not set - skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool, err := postgres.Connect(ctx, DatabaseURL(), logger)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, logger), "Failed to run migrations")
	return pool
}

// Truncate empties the given tables.
func Truncate(t *testing.T, pool *pgxpool.Pool, tables ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	for _, table := range tables {
		_, err := pool.Exec(ctx, "TRUNCATE TABLE "+table)
		require.NoError(t, err, "Failed to truncate %s", table)
	}
}

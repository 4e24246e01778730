package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/platform/logger"
	"github.com/phrazzld/styleai-api/internal/task"
)

const taskColumns = `id, type, payload, status, progress, results,
	COALESCE(error_message, ''), COALESCE(message, ''), created_at, updated_at`

// TaskStore implements task.Store using PostgreSQL.
type TaskStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ task.Store = (*TaskStore)(nil)

// NewTaskStore creates a new TaskStore
func NewTaskStore(pool *pgxpool.Pool) *TaskStore {
	return &TaskStore{pool: pool, now: time.Now}
}

// Create implements task.Store.
func (s *TaskStore) Create(ctx context.Context, t *domain.Task) error {
	if t == nil || t.ID == "" {
		return domain.ErrEmptyTaskID
	}
	log := logger.FromContext(ctx)

	results, err := encodeResults(t.Results)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tasks (id, type, payload, status, progress, results, error_message, message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9, $10)`,
		t.ID, t.Type, nullableJSON(t.Payload), string(t.Status), t.Progress, results,
		t.Error, t.Message, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		if !IsUniqueViolation(err) {
			log.Error("failed to save task",
				"task_id", t.ID,
				"task_type", t.Type,
				"error", err)
		}
		return MapError(err)
	}
	return nil
}

// Get implements task.Store.
func (s *TaskStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, MapError(err)
	}
	return t, nil
}

// Update implements task.Store. The row is locked for the read-modify-write
// so concurrent updates apply one after another.
func (s *TaskStore) Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	var out *domain.Task
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id)
		current, err := scanTask(row)
		if err != nil {
			return MapError(err)
		}

		if err := current.Apply(update, s.now()); err != nil {
			return err
		}

		results, err := encodeResults(current.Results)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE tasks
			SET status = $2, progress = $3, results = $4,
				error_message = NULLIF($5, ''), message = NULLIF($6, ''), updated_at = $7
			WHERE id = $1`,
			id, string(current.Status), current.Progress, results,
			current.Error, current.Message, current.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", MapError(err))
		}
		out = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnfinished implements task.Store.
func (s *TaskStore) ListUnfinished(ctx context.Context) ([]*domain.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE status IN ('pending', 'processing')
		ORDER BY created_at ASC`)
	if err != nil {
		logger.FromContext(ctx).Error("failed to query unfinished tasks", "error", err)
		return nil, fmt.Errorf("failed to query unfinished tasks: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return out, nil
}

// DeleteFinishedBefore implements task.Store.
func (s *TaskStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tasks
		WHERE status IN ('completed', 'failed') AND updated_at < $1`,
		cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete finished tasks: %w", err)
	}

	deleted := int(tag.RowsAffected())
	if deleted > 0 {
		logger.FromContext(ctx).Info("deleted finished tasks",
			"count", deleted,
			"cutoff", cutoff)
	}
	return deleted, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t       domain.Task
		status  string
		payload []byte
		results []byte
	)
	err := row.Scan(&t.ID, &t.Type, &payload, &status, &t.Progress, &results,
		&t.Error, &t.Message, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Status = domain.TaskStatus(status)
	if payload != nil {
		t.Payload = json.RawMessage(payload)
	}
	if results != nil {
		if err := json.Unmarshal(results, &t.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results of task %s: %w", t.ID, err)
		}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

// encodeResults keeps the difference between no results (NULL) and an
// empty list.
func encodeResults(results []domain.GeneratedImage) ([]byte, error) {
	if results == nil {
		return nil, nil
	}
	data, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("failed to encode results: %w", err)
	}
	return data, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// Ping reports whether the database is reachable.
func (s *TaskStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

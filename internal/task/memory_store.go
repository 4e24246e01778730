package task

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MemoryStore keeps task records in process memory. Records are lost on
// restart, so there is nothing to recover.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]*domain.Task),
		now:   time.Now,
	}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, t *domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t == nil || t.ID == "" {
		return domain.ErrEmptyTaskID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return ErrDuplicateTask
	}
	s.tasks[t.ID] = t.Clone()
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return t.Clone(), nil
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}

	next := current.Clone()
	if err := next.Apply(update, s.now()); err != nil {
		return nil, err
	}
	s.tasks[id] = next
	return next.Clone(), nil
}

// ListUnfinished implements Store.
func (s *MemoryStore) ListUnfinished(ctx context.Context) ([]*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if !t.Status.IsTerminal() {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteFinishedBefore implements Store.
func (s *MemoryStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, t := range s.tasks {
		if t.Status.IsTerminal() && t.UpdatedAt.Before(cutoff) {
			delete(s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

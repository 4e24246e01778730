package task

import (
	"context"
	"time"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MockStore wraps a MemoryStore and lets tests override individual
// operations. Nil function fields fall through to the memory store.
type MockStore struct {
	*MemoryStore

	CreateFn         func(ctx context.Context, t *domain.Task) error
	GetFn            func(ctx context.Context, id string) (*domain.Task, error)
	UpdateFn         func(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error)
	ListUnfinishedFn func(ctx context.Context) ([]*domain.Task, error)
	DeleteFn         func(ctx context.Context, cutoff time.Time) (int, error)
}

// NewMockStore creates a MockStore backed by an empty MemoryStore.
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore()}
}

// Create implements Store.
func (s *MockStore) Create(ctx context.Context, t *domain.Task) error {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, t)
	}
	return s.MemoryStore.Create(ctx, t)
}

// Get implements Store.
func (s *MockStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return s.MemoryStore.Get(ctx, id)
}

// Update implements Store.
func (s *MockStore) Update(ctx context.Context, id string, update domain.TaskUpdate) (*domain.Task, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, update)
	}
	return s.MemoryStore.Update(ctx, id, update)
}

// ListUnfinished implements Store.
func (s *MockStore) ListUnfinished(ctx context.Context) ([]*domain.Task, error) {
	if s.ListUnfinishedFn != nil {
		return s.ListUnfinishedFn(ctx)
	}
	return s.MemoryStore.ListUnfinished(ctx)
}

// DeleteFinishedBefore implements Store.
func (s *MockStore) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, cutoff)
	}
	return s.MemoryStore.DeleteFinishedBefore(ctx, cutoff)
}

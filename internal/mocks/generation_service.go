package mocks

import (
	"context"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/service"
	"github.com/phrazzld/styleai-api/internal/task"
)

// MockGenerationService implements service.GenerationService for testing
type MockGenerationService struct {
	// Custom behavior functions
	CreateGenerationTaskFn func(ctx context.Context, req task.GenerationPayload) (*domain.Task, error)
	GetTaskFn              func(ctx context.Context, id string) (*domain.Task, error)
	CleanupFn              func(ctx context.Context) (int, error)

	// Default return values
	Task         *domain.Task
	Deleted      int
	DefaultError error
}

// Ensure MockGenerationService implements service.GenerationService
var _ service.GenerationService = (*MockGenerationService)(nil)

// CreateGenerationTask implements the GenerationService.CreateGenerationTask method
func (m *MockGenerationService) CreateGenerationTask(
	ctx context.Context,
	req task.GenerationPayload,
) (*domain.Task, error) {
	if m.CreateGenerationTaskFn != nil {
		return m.CreateGenerationTaskFn(ctx, req)
	}
	return m.Task, m.DefaultError
}

// GetTask implements the GenerationService.GetTask method
func (m *MockGenerationService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, id)
	}
	if m.Task == nil && m.DefaultError == nil {
		return domain.NotFoundTask(id), nil
	}
	return m.Task, m.DefaultError
}

// Cleanup implements the GenerationService.Cleanup method
func (m *MockGenerationService) Cleanup(ctx context.Context) (int, error) {
	if m.CleanupFn != nil {
		return m.CleanupFn(ctx)
	}
	return m.Deleted, m.DefaultError
}

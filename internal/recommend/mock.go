package recommend

import (
	"context"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MockProvider serves the static catalog.
type MockProvider struct{}

// NewMockProvider creates a MockProvider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name implements Provider.
func (m *MockProvider) Name() string {
	return "mock"
}

// Recommend implements Provider. Preferences are ignored.
func (m *MockProvider) Recommend(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = req.Normalized()
	return &Result{
		Recommendations: domain.MockHairstyles(req.Count),
		Provider:        m.Name(),
	}, nil
}

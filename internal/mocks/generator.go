package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/styleai-api/internal/generation"
)

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, req generation.Request) ([]generation.Image, error)

	// NameValue is returned by Name; "mock-generator" when empty
	NameValue string

	// Default response values
	Images []generation.Image
	Err    error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Requests contains all requests passed to Generate calls
		Requests []generation.Request
	}
}

// Ensure MockGenerator implements generation.Generator
var _ generation.Generator = (*MockGenerator)(nil)

// Name implements the generation.Generator interface
func (m *MockGenerator) Name() string {
	if m.NameValue == "" {
		return "mock-generator"
	}
	return m.NameValue
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, req generation.Request) ([]generation.Image, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Requests = append(m.GenerateCalls.Requests, req)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return m.Images, m.Err
}

// Calls returns how many times Generate was called.
func (m *MockGenerator) Calls() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// NewMockGeneratorWithImages creates a MockGenerator that returns the given images
func NewMockGeneratorWithImages(images ...generation.Image) *MockGenerator {
	return &MockGenerator{Images: images}
}

// NewMockGeneratorWithURL creates a MockGenerator that returns one hosted image
func NewMockGeneratorWithURL(url string) *MockGenerator {
	return &MockGenerator{Images: []generation.Image{{URL: url, Provider: "mock-generator"}}}
}

// MockGeneratorThatFails creates a MockGenerator that simulates a generation failure
func MockGeneratorThatFails() *MockGenerator {
	return &MockGenerator{Err: generation.ErrGenerationFailed}
}

// MockGeneratorWithContentBlocked creates a MockGenerator that simulates content being blocked
func MockGeneratorWithContentBlocked() *MockGenerator {
	return &MockGenerator{Err: generation.ErrContentBlocked}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Requests = nil
}

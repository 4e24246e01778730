package generation

import (
	"context"
	"strings"

	"github.com/phrazzld/styleai-api/internal/domain"
)

// MockGenerator returns an existing picture instead of calling a vendor.
// It prefers the reference image, then the catalog image of the hairstyle,
// then the user's own photo when that is a URL.
type MockGenerator struct{}

// NewMockGenerator creates a MockGenerator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Name implements Generator.
func (m *MockGenerator) Name() string {
	return "mock"
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) ([]Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	url := req.ReferenceImage
	if url == "" {
		if h, err := domain.FindHairstyle(req.HairstyleID); err == nil {
			url = h.Image
		}
	}
	if url == "" && isHTTPURL(req.FaceImage) {
		url = req.FaceImage
	}
	if url == "" {
		return nil, ErrNoImages
	}

	return []Image{{URL: url, Provider: m.Name()}}, nil
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

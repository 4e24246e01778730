package mocks

import (
	"context"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/recommend"
)

// MockRecommender stands in for the recommendation service in handler tests
type MockRecommender struct {
	RecommendFn func(ctx context.Context, imageURL string, prefs domain.Preferences, locale string) (*recommend.Result, error)

	// Default return values
	Result *recommend.Result
	Err    error

	// LastLocale records the locale of the most recent call
	LastLocale string
}

// Recommend mirrors service.RecommendationService.Recommend
func (m *MockRecommender) Recommend(
	ctx context.Context,
	imageURL string,
	prefs domain.Preferences,
	locale string,
) (*recommend.Result, error) {
	m.LastLocale = locale
	if m.RecommendFn != nil {
		return m.RecommendFn(ctx, imageURL, prefs, locale)
	}
	return m.Result, m.Err
}

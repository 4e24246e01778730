package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/styleai-api/internal/domain"
	"github.com/phrazzld/styleai-api/internal/recommend"
)

// RecommendationService produces hairstyle recommendations for a photo.
type RecommendationService struct {
	provider recommend.Provider
	count    int
	logger   *slog.Logger
}

// NewRecommendationService creates a RecommendationService returning count
// recommendations per request.
func NewRecommendationService(provider recommend.Provider, count int, logger *slog.Logger) *RecommendationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationService{
		provider: provider,
		count:    count,
		logger:   logger.With("component", "recommendation_service"),
	}
}

// Recommend returns recommendations in the given locale. Vendor failures
// fall back to the mock catalog inside the provider chain.
func (s *RecommendationService) Recommend(
	ctx context.Context,
	imageURL string,
	prefs domain.Preferences,
	locale string,
) (*recommend.Result, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, fmt.Errorf("%w: image_url is required", ErrInvalidRequest)
	}

	res, err := s.provider.Recommend(ctx, recommend.Request{
		ImageURL:    imageURL,
		Preferences: prefs,
		Count:       s.count,
		Locale:      locale,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to recommend hairstyles: %w", err)
	}

	s.logger.InfoContext(ctx, "recommendations produced",
		"provider", res.Provider,
		"count", len(res.Recommendations))
	return res, nil
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"github.com/phrazzld/styleai-api/internal/recommend"
	"google.golang.org/genai"
)

// Recommender implements recommend.Provider with a Gemini text model.
type Recommender struct {
	call     *caller
	resolver *imagesrc.Resolver
	model    string
	logger   *slog.Logger
}

var _ recommend.Provider = (*Recommender)(nil)

// NewRecommender creates a Recommender over api.
func NewRecommender(
	api ContentGenerator,
	resolver *imagesrc.Resolver,
	model string,
	retry RetryPolicy,
	logger *slog.Logger,
) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = imagesrc.NewResolver()
	}
	logger = logger.With("component", "gemini_recommender")
	return &Recommender{
		call:     newCaller(api, retry, logger),
		resolver: resolver,
		model:    model,
		logger:   logger,
	}
}

// Name implements recommend.Provider.
func (r *Recommender) Name() string {
	return "gemini"
}

// Recommend implements recommend.Provider.
func (r *Recommender) Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error) {
	req = req.Normalized()

	img, err := r.resolver.Resolve(ctx, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo: %w", err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: recommend.BuildPrompt(req)},
			imagePart(img),
		},
	}}
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.7),
		ResponseMIMEType: "application/json",
	}

	parts, err := r.call.generate(ctx, r.model, contents, cfg)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return nil, fmt.Errorf("%w: %w", recommend.ErrContentBlocked, err)
		}
		return nil, err
	}

	res, err := recommend.ParseResponse(textOf(parts), req.Count)
	if err != nil {
		return nil, err
	}
	res.Provider = r.Name()

	r.logger.InfoContext(ctx, "gemini recommendations parsed",
		"count", len(res.Recommendations))
	return res, nil
}

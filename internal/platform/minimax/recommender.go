package minimax

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"github.com/phrazzld/styleai-api/internal/recommend"
)

// Recommender implements recommend.Provider over the chat-completion API.
type Recommender struct {
	client   *Client
	resolver *imagesrc.Resolver
	logger   *slog.Logger
}

var _ recommend.Provider = (*Recommender)(nil)

// NewRecommender creates a Recommender.
func NewRecommender(client *Client, resolver *imagesrc.Resolver, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = imagesrc.NewResolver()
	}
	return &Recommender{
		client:   client,
		resolver: resolver,
		logger:   logger.With("component", "minimax_recommender"),
	}
}

// Name implements recommend.Provider.
func (r *Recommender) Name() string {
	return "minimax"
}

// Recommend implements recommend.Provider.
func (r *Recommender) Recommend(ctx context.Context, req recommend.Request) (*recommend.Result, error) {
	req = req.Normalized()

	photo, err := imageReference(ctx, r.resolver, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to load photo: %w", err)
	}

	text, err := r.client.ChatCompletion(ctx, []Message{{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: recommend.BuildPrompt(req)},
			{Type: "image_url", ImageURL: &ImageURL{URL: photo}},
		},
	}}, 0.7)
	if err != nil {
		return nil, err
	}

	res, err := recommend.ParseResponse(text, req.Count)
	if err != nil {
		return nil, err
	}
	res.Provider = r.Name()

	r.logger.InfoContext(ctx, "minimax recommendations parsed",
		"count", len(res.Recommendations))
	return res, nil
}

// imageReference returns a reference MiniMax accepts: http(s) URLs pass
// through, anything else becomes a validated data URL.
func imageReference(ctx context.Context, resolver *imagesrc.Resolver, ref string) (string, error) {
	if imagesrc.Classify(ref) == imagesrc.KindHTTP {
		return ref, nil
	}
	img, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return img.DataURL(), nil
}

package minimax

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/styleai-api/internal/generation"
	"github.com/phrazzld/styleai-api/internal/imagesrc"
)

// ImageGenerator implements generation.Generator with the image-01 model and
// a character subject reference taken from the face photo.
type ImageGenerator struct {
	client   *Client
	resolver *imagesrc.Resolver
	logger   *slog.Logger
}

var _ generation.Generator = (*ImageGenerator)(nil)

// NewImageGenerator creates an ImageGenerator.
func NewImageGenerator(client *Client, resolver *imagesrc.Resolver, logger *slog.Logger) *ImageGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = imagesrc.NewResolver()
	}
	return &ImageGenerator{
		client:   client,
		resolver: resolver,
		logger:   logger.With("component", "minimax_image_generator"),
	}
}

// Name implements generation.Generator.
func (g *ImageGenerator) Name() string {
	return "minimax"
}

// Generate implements generation.Generator.
func (g *ImageGenerator) Generate(ctx context.Context, req generation.Request) ([]generation.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	face, err := imageReference(ctx, g.resolver, req.FaceImage)
	if err != nil {
		return nil, fmt.Errorf("failed to load face image: %w", err)
	}

	urls, err := g.client.GenerateImages(ctx, ImageRequest{
		Prompt: generation.Prompt(req) + " Avoid: " + generation.NegativePrompt + ".",
		N:      1,
		SubjectReference: []SubjectReference{{
			Type:      "character",
			ImageFile: face,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	images := make([]generation.Image, 0, len(urls))
	for _, u := range urls {
		images = append(images, generation.Image{URL: u, Provider: g.Name()})
	}

	g.logger.InfoContext(ctx, "minimax images generated", "count", len(images))
	return images, nil
}

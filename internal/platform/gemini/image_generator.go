package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/styleai-api/internal/generation"
	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"google.golang.org/genai"
)

// ImageGenerator implements generation.Generator with an image-capable
// Gemini model.
type ImageGenerator struct {
	call     *caller
	resolver *imagesrc.Resolver
	model    string
	logger   *slog.Logger
}

var _ generation.Generator = (*ImageGenerator)(nil)

// NewImageGenerator creates an ImageGenerator over api.
func NewImageGenerator(
	api ContentGenerator,
	resolver *imagesrc.Resolver,
	model string,
	retry RetryPolicy,
	logger *slog.Logger,
) *ImageGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = imagesrc.NewResolver()
	}
	logger = logger.With("component", "gemini_image_generator")
	return &ImageGenerator{
		call:     newCaller(api, retry, logger),
		resolver: resolver,
		model:    model,
		logger:   logger,
	}
}

// Name implements generation.Generator.
func (g *ImageGenerator) Name() string {
	return "gemini"
}

// Generate implements generation.Generator.
func (g *ImageGenerator) Generate(ctx context.Context, req generation.Request) ([]generation.Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	face, err := g.resolver.Resolve(ctx, req.FaceImage)
	if err != nil {
		return nil, fmt.Errorf("failed to load face image: %w", err)
	}

	parts := []*genai.Part{{Text: generation.Prompt(req)}, imagePart(face)}
	if req.ReferenceImage != "" {
		ref, err := g.resolver.Resolve(ctx, req.ReferenceImage)
		if err != nil {
			// The prompt alone still describes the hairstyle.
			g.logger.WarnContext(ctx, "skipping unreadable reference image", "error", err)
		} else {
			parts = append(parts, imagePart(ref))
		}
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	out, err := g.call.generate(ctx, g.model, contents, cfg)
	if err != nil {
		if errors.Is(err, ErrBlocked) {
			return nil, fmt.Errorf("%w: %w", generation.ErrContentBlocked, err)
		}
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	var images []generation.Image
	for _, p := range out {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		if !strings.HasPrefix(p.InlineData.MIMEType, "image/") {
			continue
		}
		images = append(images, generation.Image{
			Data:     p.InlineData.Data,
			MIMEType: p.InlineData.MIMEType,
			Provider: g.Name(),
		})
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: answer held only text", generation.ErrNoImages)
	}

	g.logger.InfoContext(ctx, "gemini images generated", "count", len(images))
	return images, nil
}

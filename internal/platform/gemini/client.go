package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/phrazzld/styleai-api/internal/config"
	"github.com/phrazzld/styleai-api/internal/imagesrc"
	"google.golang.org/genai"
)

// ContentGenerator is the subset of the genai models service used here.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// RetryPolicy controls how transient API failures are retried.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultRetryPolicy returns two retries starting at one second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Second}
}

// caller wraps a ContentGenerator with retries and response checks.
type caller struct {
	api    ContentGenerator
	retry  RetryPolicy
	logger *slog.Logger
	rng    *rand.Rand
}

func newCaller(api ContentGenerator, retry RetryPolicy, logger *slog.Logger) *caller {
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.BaseDelay <= 0 {
		retry.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	return &caller{
		api:    api,
		retry:  retry,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// generate calls the model and returns the parts of the first candidate.
func (c *caller) generate(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) ([]*genai.Part, error) {
	for attempt := 0; ; attempt++ {
		c.logger.DebugContext(ctx, "making gemini API call",
			"model", model,
			"attempt", attempt+1,
			"max_attempts", c.retry.MaxRetries+1)

		resp, err := c.api.GenerateContent(ctx, model, contents, cfg)
		if err == nil {
			return extractParts(resp)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.WarnContext(ctx, "gemini API call failed",
			"model", model,
			"attempt", attempt+1,
			"error", err)

		if attempt >= c.retry.MaxRetries {
			return nil, fmt.Errorf("%w: %w", ErrTransientFailure, err)
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(c.retry.BaseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + c.rng.Float64()*0.5))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func extractParts(resp *genai.GenerateContentResponse) ([]*genai.Part, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", ErrEmptyResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("%w: prompt blocked (%s)", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, fmt.Errorf("%w: no candidates", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: answer blocked by safety filters", ErrBlocked)
	}
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty candidate", ErrEmptyResponse)
	}
	return candidate.Content.Parts, nil
}

func textOf(parts []*genai.Part) string {
	var text string
	for _, p := range parts {
		if p != nil {
			text += p.Text
		}
	}
	return text
}

func imagePart(img *imagesrc.Image) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MIMEType}}
}

// Client bundles both adapters over one genai client.
type Client struct {
	Recommender    *Recommender
	ImageGenerator *ImageGenerator
}

// New creates the genai client and both adapters from configuration.
func New(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig, resolver *imagesrc.Resolver) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.InfoContext(ctx, "gemini client initialized",
		"model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel)

	return &Client{
		Recommender:    NewRecommender(client.Models, resolver, cfg.GeminiModel, DefaultRetryPolicy(), logger),
		ImageGenerator: NewImageGenerator(client.Models, resolver, cfg.GeminiImageModel, DefaultRetryPolicy(), logger),
	}, nil
}

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries generators in order and returns the first non-empty result.
type Chain struct {
	generators []Generator
	logger     *slog.Logger
}

// NewChain creates a Chain over the given generators.
// At least one generator is required.
func NewChain(logger *slog.Logger, generators ...Generator) (*Chain, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("%w: at least one generator is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		generators: generators,
		logger:     logger.With("component", "generator_chain"),
	}, nil
}

// Name implements Generator.
func (c *Chain) Name() string {
	return "chain"
}

// Generate implements Generator. Errors of individual generators are joined
// into the returned error when every generator fails.
func (c *Chain) Generate(ctx context.Context, req Request) ([]Image, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var errs []error
	for _, g := range c.generators {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		images, err := g.Generate(ctx, req)
		if err == nil && len(images) == 0 {
			err = ErrNoImages
		}
		if err != nil {
			c.logger.WarnContext(ctx, "image generator failed, trying next",
				"generator", g.Name(),
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", g.Name(), err))
			continue
		}

		for i := range images {
			if images[i].Provider == "" {
				images[i].Provider = g.Name()
			}
		}
		return images, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrAllGeneratorsFailed, errors.Join(errs...))
}

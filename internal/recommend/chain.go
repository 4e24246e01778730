package recommend

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries providers in order and always ends with the mock provider.
type Chain struct {
	providers []Provider
	fallback  Provider
	logger    *slog.Logger
}

// NewChain creates a Chain over the configured vendor providers. The mock
// provider is appended implicitly.
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{
		providers: providers,
		fallback:  NewMockProvider(),
		logger:    logger.With("component", "recommend_chain"),
	}
}

// Name implements Provider.
func (c *Chain) Name() string {
	return "chain"
}

// Providers returns the names of the providers in the order they are tried.
func (c *Chain) Providers() []string {
	names := make([]string, 0, len(c.providers)+1)
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return append(names, c.fallback.Name())
}

// Recommend implements Provider. Vendor failures are logged and skipped; the
// only error returned is a cancelled context.
func (c *Chain) Recommend(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalized()

	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.Recommend(ctx, req)
		if err == nil && (res == nil || len(res.Recommendations) == 0) {
			err = ErrNoRecommendations
		}
		if err != nil {
			c.logger.WarnContext(ctx, "recommendation provider failed, trying next",
				"provider", p.Name(),
				"error", err)
			continue
		}

		if len(res.Recommendations) > req.Count {
			res.Recommendations = res.Recommendations[:req.Count]
		}
		if res.Provider == "" {
			res.Provider = p.Name()
		}
		return res, nil
	}

	res, err := c.fallback.Recommend(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fallback provider failed: %w", err)
	}
	return res, nil
}

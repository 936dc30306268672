package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Provider with a shared request-rate ceiling so
// the five concurrent stage calls of one invocation (and concurrent
// invocations in a batch) cannot stampede the underlying API.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited creates a rate-limited wrapper around a provider
func NewRateLimited(inner Provider, requestsPerSecond float64, burst int) *RateLimited {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	if burst <= 0 {
		burst = 5
	}

	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the wrapped provider's name
func (p *RateLimited) Name() string {
	return p.inner.Name()
}

// Complete waits for rate limit clearance, then delegates.
// Cancellation while waiting returns the context error without
// consuming a token.
func (p *RateLimited) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Complete(ctx, req)
}

// IsAvailable delegates to the wrapped provider (not rate limited)
func (p *RateLimited) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/service"
)

// RateLimitedSource wraps a Source with rate limiting
type RateLimitedSource struct {
	source  service.Source
	limiter *rate.Limiter
}

// NewRateLimitedSource creates a new rate limited source.
// rps is the maximum builds per second allowed (can be fractional)
// burst is the maximum burst size allowed
func NewRateLimitedSource(source service.Source, rps float64, burst int) *RateLimitedSource {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Build waits for the limiter and forwards to the underlying source
func (r *RateLimitedSource) Build(ctx context.Context) (*field.Field, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.Build(ctx)
}

// Name returns the source name
func (r *RateLimitedSource) Name() string {
	return r.source.Name()
}

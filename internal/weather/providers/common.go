package providers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-field/internal/field"
	"github.com/i474232898/weather-field/internal/service"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff retries three times starting at 500ms.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errInvalidConfig = errors.New("invalid backoff configuration")
	errNoField       = errors.New("source returned no field")
)

// ResilientSource retries a source with exponential backoff behind a circuit
// breaker. Domain errors are not retried: a malformed input stays malformed.
type ResilientSource struct {
	source  service.Source
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewResilientSource wraps source with retries and a circuit breaker.
func NewResilientSource(source service.Source, backoff BackoffConfig) *ResilientSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        source.Name(),
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
	})

	return &ResilientSource{
		source:  source,
		backoff: backoff,
		circuit: cb,
	}
}

func (r *ResilientSource) Name() string {
	return r.source.Name()
}

// Build executes the wrapped build with retries, exponential backoff,
// and a circuit breaker.
func (r *ResilientSource) Build(ctx context.Context) (*field.Field, error) {
	if r.backoff.MaxRetries < 0 || r.backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := r.circuit.Execute(func() (interface{}, error) {
			f, buildErr := r.source.Build(ctx)
			if buildErr != nil {
				return nil, buildErr
			}
			if f == nil {
				return nil, errNoField
			}
			return f, nil
		})

		if err == nil {
			f, ok := result.(*field.Field)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return f, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if isPermanent(err) {
			return nil, err
		}

		lastErr = err
		if attempt >= r.backoff.MaxRetries {
			return nil, lastErr
		}

		// Backoff with exponential delay.
		delay := r.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > r.backoff.MaxInterval && r.backoff.MaxInterval > 0 {
			delay = r.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

func isPermanent(err error) bool {
	return errors.Is(err, field.ErrInvalidDomain) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

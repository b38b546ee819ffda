package app

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/neomorfeo/listiq/internal/domain"
)

// RetryConfig controls the retry executor. Delay for attempt n is
// BaseDelay * Multiplier^(n-1), capped at MaxDelay.
type RetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	Multiplier     float64
	MaxDelay       time.Duration
	RetryableTypes []domain.ErrorType
}

// DefaultRetryConfig matches the documented defaults: 3 attempts, 1s base,
// doubling, 10s cap, retrying only infrastructure failures.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		MaxDelay:    10 * time.Second,
		RetryableTypes: []domain.ErrorType{
			domain.ErrDatabase,
			domain.ErrNetwork,
			domain.ErrExternalService,
		},
	}
}

func (c RetryConfig) isRetryableType(t domain.ErrorType) bool {
	for _, rt := range c.RetryableTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// backoff builds the go-retry backoff for this config. A custom BackoffFunc
// rather than retry.NewExponential because Multiplier is configurable.
func (c RetryConfig) backoff() retry.Backoff {
	delay := c.BaseDelay
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		d := delay
		delay = time.Duration(float64(delay) * c.Multiplier)
		if d > c.MaxDelay {
			d = c.MaxDelay
		}
		return d, false
	})

	// MaxAttempts <= 0 would underflow the uint64 retry budget; the floor
	// is a single attempt.
	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return retry.WithMaxRetries(uint64(attempts-1), b)
}

// WithRetry executes op, classifying each failure and retrying only errors
// whose class is both marked retryable and in the configured retryable set.
// Sleeping between attempts is cooperative: go-retry waits on the context,
// so cancellation interrupts the backoff. The last classified error
// surfaces when attempts run out.
func WithRetry(ctx context.Context, cfg RetryConfig, op func(context.Context) error) error {
	err := retry.Do(ctx, cfg.backoff(), func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			classified := domain.Classify(err)
			if classified.Retryable && cfg.isRetryableType(classified.Type) {
				return retry.RetryableError(classified)
			}
			return classified
		}
		return nil
	})
	if err != nil {
		return domain.Classify(err)
	}
	return nil
}

package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy retries an operation with exponential backoff and jitter.
// Only errors the policy classifies as retryable are retried; everything
// else is returned immediately.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt; it doubles per
	// attempt up to MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff between attempts.
	MaxDelay time.Duration

	// IsRetryable classifies errors. When nil, only ErrTransientFailure
	// is retried.
	IsRetryable func(error) bool
}

// DefaultRetryPolicy matches the provider defaults: three attempts with
// a 2s base delay capped at 10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// Execute runs op until it succeeds, a non-retryable error occurs, the
// attempts are exhausted, or the context is cancelled.
func (p RetryPolicy) Execute(ctx context.Context, log *slog.Logger, op func(ctx context.Context) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	isRetryable := p.IsRetryable
	if isRetryable == nil {
		isRetryable = func(err error) bool { return errors.Is(err, ErrTransientFailure) }
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			log.WarnContext(ctx, "non-retryable error, giving up",
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()))
			return lastErr
		}

		if attempt == maxAttempts {
			break
		}

		// delay = baseDelay * 2^(attempt-1), capped, with jitter in
		// [0.5, 1.0) to spread out concurrent retries.
		backoff := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1))
		if p.MaxDelay > 0 && backoff > float64(p.MaxDelay) {
			backoff = float64(p.MaxDelay)
		}
		delay := time.Duration(backoff * (0.5 + rng.Float64()*0.5))

		log.InfoContext(ctx, "retrying after delay",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", lastErr.Error()))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrTransientFailure, ctx.Err())
		}
	}

	return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
		ErrTransientFailure, maxAttempts, lastErr)
}

package llmstream

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures retry behavior with exponential backoff.
type RetryPolicy struct {
	MaxRetries        int     // retry attempts, not counting the initial call
	BaseDelay         float64 // initial delay in seconds
	MaxDelay          float64 // cap on the delay between retries, in seconds
	BackoffMultiplier float64
	Jitter            bool
	OnRetry           func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns the default policy: two retries, one second
// base delay, doubling with jitter, capped at one minute.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        2,
		BaseDelay:         1.0,
		MaxDelay:          60.0,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Delay calculates the delay for attempt n (0-indexed).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := math.Min(p.BaseDelay*math.Pow(p.BackoffMultiplier, float64(attempt)), p.MaxDelay)
	if p.Jitter {
		delay = delay * (0.5 + rand.Float64()) // +/- 50%
	}
	return time.Duration(delay * float64(time.Second))
}

// RetryMiddleware wraps provider calls with the given policy. Only errors
// reported retryable by IsRetryable are retried; a Retry-After hint on a
// rate-limit response overrides the computed backoff unless it exceeds
// MaxDelay, in which case the error is surfaced immediately.
func RetryMiddleware(policy RetryPolicy) Middleware {
	return func(ctx context.Context, req Request, onChunk ChunkHandler, next CompleteFunc) (*Result, error) {
		result, err := next(ctx, req, onChunk)
		if err == nil {
			return result, nil
		}

		for attempt := 0; attempt < policy.MaxRetries; attempt++ {
			if !IsRetryable(err) {
				return nil, err
			}

			delay := policy.Delay(attempt)
			var te *TransportError
			if errors.As(err, &te) && te.RetryAfter != nil {
				hinted := time.Duration(*te.RetryAfter * float64(time.Second))
				if hinted > time.Duration(policy.MaxDelay*float64(time.Second)) {
					return nil, err
				}
				delay = hinted
			}

			if policy.OnRetry != nil {
				policy.OnRetry(err, attempt+1, delay)
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}

			result, err = next(ctx, req, onChunk)
			if err == nil {
				return result, nil
			}
		}
		return nil, err
	}
}

package httputil

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/circuitdraw/pkg/errors"
)

// MaxRetryAfter caps how long a Retry-After hint can stall a retry.
const MaxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure (network error, 5xx, 429) that
// [Retry] should attempt again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times. Only errors wrapped in
// [RetryableError] are retried; anything else is returned at once.
//
// The wait starts at delay and doubles after every failure. A rate limit
// carrying a Retry-After hint waits at least that long, up to
// [MaxRetryAfter]. Cancelling ctx stops the wait with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitFor(lastErr, delay)):
		}
		delay *= 2
	}
	return lastErr
}

// waitFor returns the backoff for err: delay, or the server's Retry-After
// when that is longer.
func waitFor(err error, delay time.Duration) time.Duration {
	var rl *errors.RateLimitedError
	if !stderrors.As(err, &rl) || rl.RetryAfter <= 0 {
		return delay
	}
	hint := min(time.Duration(rl.RetryAfter)*time.Second, MaxRetryAfter)
	return max(delay, hint)
}

func isRetryable(err error) bool {
	return stderrors.As(err, new(*RetryableError))
}

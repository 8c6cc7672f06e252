package beeper

import (
	"context"
	"errors"
	"time"
)

// BackoffFunc returns how long to wait before retry number attempt (1-based)
type BackoffFunc func(attempt int) time.Duration

// LinearBackoff waits step × attempt: 1s, 2s, 3s... for the default step.
func LinearBackoff(step time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		return step * time.Duration(attempt)
	}
}

// ExponentialBackoff doubles base on every attempt, capped at maxDelay.
func ExponentialBackoff(base, maxDelay time.Duration) BackoffFunc {
	return func(attempt int) time.Duration {
		delay := base
		for i := 1; i < attempt && delay < maxDelay; i++ {
			delay *= 2
		}
		return min(delay, maxDelay)
	}
}

// defaultBackoff keeps the 1000ms × attempt growth existing clients expect.
var defaultBackoff = LinearBackoff(time.Second)

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// withRetry runs exchange until it succeeds, fails with a non-retryable
// error, or maxRetries additional attempts have been spent.
func (c *Client) withRetry(ctx context.Context, method, path string, exchange func() error) error {
	remaining := c.cfg.MaxRetries
	attempt := 0

	for {
		err := exchange()
		if err == nil {
			return nil
		}
		if remaining <= 0 || !IsRetryable(err) {
			return err
		}

		attempt++
		delay := c.backoff(attempt)
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Int("attempt", attempt).
			Int("remaining", remaining).
			Dur("backoff", delay).
			Msg("Retrying Beeper API request")

		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			// The last server error stays reachable through errors.Is/As.
			return transportError("retry aborted", errors.Join(sleepErr, err))
		}
		remaining--
	}
}

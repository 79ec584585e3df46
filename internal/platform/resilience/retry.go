package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// Retry runs fn until it succeeds, returns an error retryable rejects, or the
// attempts run out. Delays double per attempt with up to 50% jitter.
func Retry(ctx context.Context, cfg RetryConfig, retryable func(error) bool, fn func(ctx context.Context) error) error {
	cfg = cfg.Normalize()

	var err error
	delay := cfg.BaseDelay
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || retryable == nil || !retryable(err) || attempt >= cfg.MaxAttempts {
			return err
		}

		wait := delay/2 + time.Duration(rand.Int64N(int64(delay/2)+1))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		delay *= 2
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}

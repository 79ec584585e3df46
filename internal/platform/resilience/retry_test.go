package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBusy = errors.New("busy")

func TestRetry_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 4, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond},
		func(err error) bool { return errors.Is(err, errBusy) },
		func(context.Context) error {
			calls++
			if calls < 3 {
				return errBusy
			}
			return nil
		})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	t.Parallel()

	permanent := errors.New("permanent")
	calls := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 5, BaseDelay: time.Millisecond},
		func(err error) bool { return errors.Is(err, errBusy) },
		func(context.Context) error {
			calls++
			return permanent
		})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Fatalf("expected single permanent failure, got err=%v calls=%d", err, calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Retry(context.Background(), RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		func(error) bool { return true },
		func(context.Context) error {
			calls++
			return errBusy
		})
	if !errors.Is(err, errBusy) || calls != 3 {
		t.Fatalf("expected 3 attempts ending in errBusy, got err=%v calls=%d", err, calls)
	}
}

func TestRetry_HonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, RetryConfig{MaxAttempts: 3, BaseDelay: time.Second},
		func(error) bool { return true },
		func(context.Context) error { return errBusy })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

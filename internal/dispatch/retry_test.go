package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"
)

func recordingSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetrySucceedsAfterRateLimits(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, Sleep: recordingSleep(&delays)}

	calls := 0
	result, err := Retry(context.Background(), pol, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("gemini status 429: rate limit exceeded")
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Retry error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want ok", result)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(delays) != 2 || delays[0] != want[0] || delays[1] != want[1] {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
}

func TestRetryFatalErrorStopsImmediately(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, Sleep: recordingSleep(&delays)}

	boom := errors.New("invalid api key")
	calls := 0
	_, err := Retry(context.Background(), pol, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if len(delays) != 0 {
		t.Fatalf("unexpected backoff sleeps: %v", delays)
	}
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	var delays []time.Duration
	pol := RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond, Sleep: recordingSleep(&delays)}

	calls := 0
	_, err := Retry(context.Background(), pol, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("resource_exhausted")
	})
	if err == nil || err.Error() != "resource_exhausted" {
		t.Fatalf("err = %v, want last rate-limit error", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Retry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("quota")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}

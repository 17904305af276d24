package dispatch

import (
	"context"
	"time"
)

// RetryPolicy controls the in-place retry of a single call. It knows nothing
// about keys or models; it only re-runs the exact same operation.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, first call included.
	MaxAttempts int
	// BaseDelay is the pause before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration
	// Classify decides whether a failure is worth retrying. Nil means the
	// shared rate-limit predicate.
	Classify func(error) Class
	// Sleep is swapped out by tests. Nil means a context-aware timer sleep.
	Sleep func(context.Context, time.Duration) error
}

func (p RetryPolicy) classify(err error) Class {
	if p.Classify != nil {
		return p.Classify(err)
	}
	return Classify(err)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	return sleepCtx(ctx, d)
}

// Retry runs op until it succeeds, fails fatally, or attempts run out.
// Retryable failures back off BaseDelay * 2^attempt before the next try;
// fatal failures surface immediately without consuming remaining attempts.
// The last attempt's error is returned after exhaustion.
func Retry[T any](ctx context.Context, pol RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := pol.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if pol.classify(err) == Fatal {
			return zero, err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}
		delay := pol.BaseDelay << uint(attempt)
		if err := pol.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// sleepCtx pauses for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

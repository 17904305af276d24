package dispatch

import (
	"context"
	"fmt"
	"time"
)

// Default tuning for a single dispatch. The inner retry is deliberately
// small: the model fallback loop is the larger-grain recovery, so the inner
// layer only absorbs a single transient blip per (key, model) pair.
const (
	DefaultModelCooldown = 60 * time.Second
	DefaultMaxAttempts   = 2
	DefaultBaseDelay     = 500 * time.Millisecond
)

// Dispatcher routes one logical unit of work to an eligible (key, model)
// pair. Rate-limited pairs cool the model down and fall back to the next
// candidate; fatal errors stop the dispatch immediately.
type Dispatcher struct {
	Keys   *KeyPool
	Models *Fallback
	Notify Notifier

	// ModelCooldown is how long a rate-limited model is blacklisted. Zero
	// means DefaultModelCooldown.
	ModelCooldown time.Duration
	// Retry is the inner per-call policy. Zero attempts mean the defaults.
	Retry RetryPolicy
	// Now is swapped out by tests. Nil means time.Now.
	Now func() time.Time
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dispatcher) notify(severity Severity, message string) {
	if d.Notify != nil {
		d.Notify.Notify(severity, message)
	}
}

func (d *Dispatcher) cooldown() time.Duration {
	if d.ModelCooldown > 0 {
		return d.ModelCooldown
	}
	return DefaultModelCooldown
}

func (d *Dispatcher) retryPolicy() RetryPolicy {
	pol := d.Retry
	if pol.MaxAttempts <= 0 {
		pol.MaxAttempts = DefaultMaxAttempts
	}
	if pol.BaseDelay <= 0 {
		pol.BaseDelay = DefaultBaseDelay
	}
	return pol
}

// Do executes one dispatch. The build callback turns a chosen (key, model)
// pair into the actual backend call; it is not invoked at all when no key or
// no model is eligible.
//
// Models are tried in priority order, each with the next eligible key from
// the pool. A rate-limit exhaustion blacklists the model (not the key) for
// the cooldown window: the account, not the particular call path, is what
// the backend throttles per model. Fatal errors surface immediately.
func Do[T any](ctx context.Context, d *Dispatcher, build func(key, model string) func(context.Context) (T, error)) (T, error) {
	var zero T
	now := d.now()

	if len(d.Keys.ListEligible(now)) == 0 {
		return zero, ErrNoKeyAvailable
	}
	models := d.Models.ListEligible(now)
	if len(models) == 0 {
		return zero, ErrNoModelAvailable
	}

	var lastErr error
	for _, model := range models {
		key, ok := d.Keys.Next(d.now())
		if !ok {
			break
		}
		result, err := Retry(ctx, d.retryPolicy(), build(key, model))
		if err == nil {
			return result, nil
		}
		if Classify(err) == Fatal {
			return zero, err
		}
		lastErr = err
		d.Models.MarkFailed(model, d.cooldown(), d.now())
		d.notify(SeverityInfo, fmt.Sprintf("model %s rate limited, cooling down and trying the next model", model))
	}
	return zero, &ExhaustedError{Last: lastErr}
}

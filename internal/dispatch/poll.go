package dispatch

import (
	"context"
	"time"
)

// Await polls a long-running operation handle until done reports completion,
// replacing the handle with fetch's result on every tick. There is no
// wall-clock ceiling here; cancelling ctx is the only way to bound the wait.
// Transport failures from fetch are terminal and end the wait.
func Await[H any](ctx context.Context, handle H, fetch func(context.Context, H) (H, error), done func(H) bool, interval time.Duration) (H, error) {
	var zero H
	for !done(handle) {
		if err := sleepCtx(ctx, interval); err != nil {
			return zero, err
		}
		next, err := fetch(ctx, handle)
		if err != nil {
			return zero, err
		}
		handle = next
	}
	return handle, nil
}

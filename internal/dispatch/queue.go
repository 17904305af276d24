package dispatch

import (
	"context"
	"fmt"
)

// QueueResult aggregates the outcome of one batch run.
type QueueResult[T any] struct {
	// Succeeded holds the results of successful jobs, in submission order.
	Succeeded []T
	// Failed counts jobs whose perJob call returned an error.
	Failed int
	// Errors records each failed job's error keyed by its queue index.
	Errors map[int]error
}

// RunQueue processes jobs strictly in order, one at a time, so the shared
// rate limits stay honest and the progress counter means something. A failed
// job is recorded and the queue moves on; RunQueue itself never fails.
func RunQueue[J, T any](ctx context.Context, notify Notifier, jobs []J, perJob func(context.Context, J) (T, error)) QueueResult[T] {
	if notify == nil {
		notify = NopNotifier{}
	}
	res := QueueResult[T]{Errors: make(map[int]error)}
	total := len(jobs)
	for i, job := range jobs {
		notify.Notify(SeverityInfo, fmt.Sprintf("processing %d of %d", i+1, total))
		result, err := perJob(ctx, job)
		if err != nil {
			res.Failed++
			res.Errors[i] = err
			notify.Notify(SeverityError, fmt.Sprintf("item %d of %d failed: %v", i+1, total, err))
			continue
		}
		res.Succeeded = append(res.Succeeded, result)
	}
	summary := fmt.Sprintf("finished: %d succeeded, %d failed", len(res.Succeeded), res.Failed)
	if res.Failed > 0 {
		notify.Notify(SeverityError, summary)
	} else {
		notify.Notify(SeveritySuccess, summary)
	}
	return res
}

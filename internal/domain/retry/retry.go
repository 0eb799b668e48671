package retry

import (
	"context"
	"time"
)

// Do invokes fn up to maxTries times, sleeping per the policy between
// transient failures. It returns nil on the first success, the error
// immediately when it is not transient, and the last error once the try
// budget is exhausted. Context cancellation aborts the wait and returns the
// context error joined with nothing further.
//
// This is the inner, call-level retry: it runs synchronously within a single
// job execution attempt and never touches the job's persisted attempt counter.
func Do(ctx context.Context, policy Policy, maxTries int, fn func(context.Context) error) error {
	if maxTries < 1 {
		maxTries = 1
	}

	var lastErr error
	for try := 1; try <= maxTries; try++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !Transient(lastErr) {
			return lastErr
		}
		if try == maxTries {
			break
		}

		timer := time.NewTimer(policy.Delay(try))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

package data

import (
	"context"
	"fmt"
)

// ResetActiveToPending moves every active job back to pending with its start
// time cleared, and returns the number of jobs reset.
//
// Any job still active at process start was orphaned by an unclean shutdown
// of a prior instance; in a single-process deployment there is no way to tell
// "still running elsewhere" from "orphaned", so all active jobs are treated
// as orphaned and made claimable again. This trades possible duplicate side
// effects for zero lost work. Intended to run exactly once, before the poller
// starts claiming.
func (r *JobRepo) ResetActiveToPending(ctx context.Context) (int64, error) {
	now := r.timeProvider.Now().UTC()

	res, err := r.DB.ExecContext(ctx, `
		UPDATE review_jobs
		SET status = 'pending',
		    started_at = NULL,
		    updated_at = $1
		WHERE status = 'active'
	`, now)
	if err != nil {
		return 0, fmt.Errorf("reset active jobs: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset active rows affected: %w", err)
	}

	if rowsAffected > 0 && r.logger != nil {
		r.logger.WarnContext(ctx, "reset orphaned active jobs to pending",
			"count", rowsAffected,
		)
	}

	return rowsAffected, nil
}

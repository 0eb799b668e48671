// Package service provides the business logic layer for the diffscope review queue.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/model"
)

// DefaultDedupWindow is how long after a successful completion a duplicate
// submission for the same unit of work is suppressed.
const DefaultDedupWindow = 5 * time.Minute

// QueueServiceOptions groups dependencies for QueueService.
type QueueServiceOptions struct {
	Repo               core.ReviewJobRepository // Required: job repository
	DedupWindow        time.Duration            // Optional: defaults to DefaultDedupWindow
	DefaultMaxAttempts int                      // Optional: attempt ceiling stamped on new jobs; defaults to model.DefaultMaxAttempts
	Logger             *slog.Logger             // Optional: structured logger
	Now                func() time.Time         // Optional: clock override for tests
}

// QueueService accepts review submissions, collapses duplicates for the same
// logical unit of work, and exposes aggregate status for health reporting.
type QueueService struct {
	repo        core.ReviewJobRepository
	dedupWindow time.Duration
	maxAttempts int
	logger      *slog.Logger
	now         func() time.Time
}

// NewQueueService constructs a new QueueService.
func NewQueueService(opts QueueServiceOptions) (*QueueService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ReviewJobRepository is required")
	}

	window := opts.DedupWindow
	if window <= 0 {
		window = DefaultDedupWindow
	}

	maxAttempts := opts.DefaultMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = model.DefaultMaxAttempts
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "queue_service")
	}

	return &QueueService{
		repo:        opts.Repo,
		dedupWindow: window,
		maxAttempts: maxAttempts,
		logger:      logger,
		now:         now,
	}, nil
}

// MustNewQueueService constructs a new QueueService and panics on error.
// Use this when the options are known to be valid (e.g., in main).
func MustNewQueueService(opts QueueServiceOptions) *QueueService {
	svc, err := NewQueueService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create QueueService: %v", err))
	}
	return svc
}

// EnqueueResult reports the outcome of a submission.
type EnqueueResult struct {
	Job *model.ReviewJob
	// Deduplicated is true when no new job was created because the same unit
	// of work was already outstanding or completed recently; Job then refers
	// to the existing record.
	Deduplicated bool
}

// Enqueue runs the idempotency guard and inserts a new pending job when the
// submission is not a duplicate:
//
//  1. a pending or active job for the same (installation, repo, PR, revision)
//     tuple suppresses the submission — that work is already outstanding;
//  2. a job for the tuple completed within the dedup window suppresses the
//     submission — repeated trigger events for the same revision arrive in
//     quick succession after success;
//  3. otherwise a fresh pending job is inserted.
//
// The check-then-insert sequence is not atomic; the store's partial unique
// index closes the race, and an insert conflict is reported as a dedup, not
// an error.
func (s *QueueService) Enqueue(
	ctx context.Context,
	req *model.CreateReviewJobRequest,
) (*EnqueueResult, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: create review job request is required", model.ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := core.KeyOf(req)

	outstanding, err := s.repo.FindOutstanding(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check outstanding jobs: %w", err)
	}
	if outstanding != nil {
		s.logDedup(ctx, outstanding, "outstanding")
		return &EnqueueResult{Job: outstanding, Deduplicated: true}, nil
	}

	since := s.now().Add(-s.dedupWindow)
	completed, err := s.repo.FindCompletedSince(ctx, key, since)
	if err != nil {
		return nil, fmt.Errorf("check recent completions: %w", err)
	}
	if completed != nil {
		s.logDedup(ctx, completed, "recently_completed")
		return &EnqueueResult{Job: completed, Deduplicated: true}, nil
	}

	// The attempt ceiling is fixed at enqueue time. Requests that leave it
	// unset get the configured default; the caller's request is not mutated.
	if req.MaxAttempts <= 0 {
		stamped := *req
		stamped.MaxAttempts = s.maxAttempts
		req = &stamped
	}

	job, err := s.repo.Enqueue(ctx, req)
	if errors.Is(err, data.ErrDuplicateJob) {
		// Lost the race to a concurrent submission for the same tuple.
		existing, findErr := s.repo.FindOutstanding(ctx, key)
		if findErr != nil {
			return nil, fmt.Errorf("resolve duplicate job: %w", findErr)
		}
		if existing == nil {
			return nil, fmt.Errorf("resolve duplicate job: %w", err)
		}
		s.logDedup(ctx, existing, "insert_conflict")
		return &EnqueueResult{Job: existing, Deduplicated: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("enqueue review job: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "review job enqueued",
			"job_id", job.ID,
			"installation_id", job.InstallationID,
			"repo", job.Descriptor.RepoFullName,
			"pr_number", job.Descriptor.PRNumber,
			"head_sha", job.Descriptor.HeadSHA,
		)
	}

	return &EnqueueResult{Job: job}, nil
}

// GetByID retrieves a job record.
func (s *QueueService) GetByID(ctx context.Context, id string) (*model.ReviewJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// StatusCounts returns aggregate job counts for health reporting.
func (s *QueueService) StatusCounts(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.repo.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("job status counts: %w", err)
	}
	return stats, nil
}

func (s *QueueService) logDedup(ctx context.Context, job *model.ReviewJob, reason string) {
	if s.logger == nil {
		return
	}
	s.logger.InfoContext(ctx, "duplicate submission suppressed",
		"job_id", job.ID,
		"installation_id", job.InstallationID,
		"repo", job.Descriptor.RepoFullName,
		"pr_number", job.Descriptor.PRNumber,
		"head_sha", job.Descriptor.HeadSHA,
		"reason", reason,
	)
}

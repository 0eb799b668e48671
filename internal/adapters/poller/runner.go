// Package poller runs the claim loop that turns pending review jobs into
// executions, bounded globally and per installation.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/domain/retry"
	obserrors "github.com/diffscope/diffscope/internal/observability/errors"
	"github.com/diffscope/diffscope/internal/observability/metrics"
	"github.com/diffscope/diffscope/internal/observability/notify"
	"github.com/diffscope/diffscope/internal/observability/statsd"
)

// Default ceilings and intervals for the claim loop.
const (
	DefaultInterval       = 1 * time.Second
	DefaultMaxConcurrent  = 3
	DefaultPerTenantLimit = 1
)

// TenantLookup resolves installation configuration at execution time.
type TenantLookup interface {
	Lookup(ctx context.Context, installationID int64) (*model.TenantConfig, error)
}

// Options holds the dependencies for creating a Runner.
type Options struct {
	Jobs     core.ReviewJobRepository // Required
	Tenants  TenantLookup             // Required
	Reviewer core.Reviewer            // Required
	Checks   core.CheckReporter       // Optional: check-run reporting is skipped when nil
	Logger   *slog.Logger             // Optional
	Metrics  statsd.Sink              // Optional: lifecycle metrics are skipped when nil
	Notify   notify.Sink              // Optional: terminal-failure notifications are skipped when nil

	Interval       time.Duration // poll tick; defaults to 1s
	MaxConcurrent  int           // global in-process ceiling; defaults to 3
	PerTenantLimit int           // per-installation ceiling; defaults to 1
	RetryPolicy    retry.Policy  // inner-retry backoff; zero value uses defaults
	RetryTries     int           // inner-retry budget per external call; defaults to 3
}

// Runner claims pending jobs on a fixed tick and dispatches each claimed job
// to the handler boundary. One job is claimed per tick; the tick is short
// relative to job duration, so throughput is bounded by the ceilings, not the
// claim rate.
type Runner struct {
	jobs     core.ReviewJobRepository
	tenants  TenantLookup
	reviewer core.Reviewer
	checks   core.CheckReporter
	logger   *slog.Logger
	metrics  statsd.Sink
	notifier notify.Sink

	interval       time.Duration
	maxConcurrent  int
	perTenantLimit int
	retryPolicy    retry.Policy
	retryTries     int

	inflight *inflightRegistry
}

// NewRunner creates a new poller runner with the given options.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Jobs == nil {
		return nil, errors.New("job repository is required")
	}
	if opts.Tenants == nil {
		return nil, errors.New("tenant lookup is required")
	}
	if opts.Reviewer == nil {
		return nil, errors.New("reviewer is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	perTenant := opts.PerTenantLimit
	if perTenant <= 0 {
		perTenant = DefaultPerTenantLimit
	}
	tries := opts.RetryTries
	if tries <= 0 {
		tries = retry.DefaultMaxTries
	}

	return &Runner{
		jobs:           opts.Jobs,
		tenants:        opts.Tenants,
		reviewer:       opts.Reviewer,
		checks:         opts.Checks,
		logger:         logger.With("component", "poller"),
		metrics:        opts.Metrics,
		notifier:       opts.Notify,
		interval:       interval,
		maxConcurrent:  maxConcurrent,
		perTenantLimit: perTenant,
		retryPolicy:    opts.RetryPolicy,
		retryTries:     tries,
		inflight:       newInflightRegistry(),
	}, nil
}

// Run recovers orphaned jobs, then claims and dispatches work until the
// context is cancelled. On cancellation it stops issuing claims, waits for
// every in-flight job to finish, and returns. There is no drain timeout; an
// operator-imposed kill is the only backstop.
func (r *Runner) Run(ctx context.Context) error {
	reset, err := r.jobs.ResetActiveToPending(ctx)
	if err != nil {
		return fmt.Errorf("recover orphaned jobs: %w", err)
	}
	r.logger.InfoContext(ctx, "starting poller",
		"interval", r.interval,
		"max_concurrent", r.maxConcurrent,
		"per_tenant_limit", r.perTenantLimit,
		"recovered_jobs", reset,
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "poller stopping, draining in-flight jobs",
				"in_flight", r.inflight.Total(),
			)
			r.inflight.Wait()
			r.logger.InfoContext(ctx, "poller drained")
			return nil
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick claims at most one job and hands it to a handler goroutine.
func (r *Runner) tick(ctx context.Context) {
	if r.inflight.Total() >= r.maxConcurrent {
		return
	}

	excluded := r.inflight.AtCapacity(r.perTenantLimit)

	job, err := r.jobs.ClaimOne(ctx, excluded)
	if errors.Is(err, model.ErrNoJobsAvailable) {
		return
	}
	if err != nil {
		// Store unavailability is not a job failure; try again next tick.
		r.logger.WarnContext(ctx, "claim failed, retrying next tick", "error", err)
		return
	}

	r.inflight.Add(job.InstallationID)
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: metrics.TransitionClaim,
		Result:     metrics.ResultSuccess,
	})
	metrics.EmitInflight(r.metrics, r.inflight.Total())

	// Jobs in flight are never cancelled mid-execution; shutdown only stops
	// new claims and waits for the drain.
	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			r.inflight.Done(job.InstallationID)
			metrics.EmitInflight(r.metrics, r.inflight.Total())
		}()
		r.process(jobCtx, job)
	}()
}

// process is the job handler boundary: it resolves tenant configuration,
// maintains the external check run, executes the review with in-place
// retries, and maps the outcome to a store transition. Check-run update
// failures are logged and never mask the outcome already recorded in the
// store.
func (r *Runner) process(ctx context.Context, job *model.ReviewJob) {
	logger := r.logger.With(
		"job_id", job.ID,
		"installation_id", job.InstallationID,
		"repo", job.Descriptor.RepoFullName,
		"pr_number", job.Descriptor.PRNumber,
		"attempt", job.Attempts+1,
	)
	logger.InfoContext(ctx, "processing review job")

	cfg, err := r.tenants.Lookup(ctx, job.InstallationID)
	switch {
	case errors.Is(err, data.ErrTenantNotFound):
		r.failPermanent(ctx, logger, job, nil, "installation is not configured")
		return
	case err != nil:
		// Lookup infrastructure failure: retryable through the outer queue.
		r.failOrRequeue(ctx, logger, job, nil, nil, fmt.Errorf("resolve tenant config: %w", err))
		return
	case !cfg.Enabled:
		r.failPermanent(ctx, logger, job, cfg, "installation is disabled")
		return
	}

	checkID := r.ensureCheckRun(ctx, logger, job, cfg)

	started := time.Now()
	var result *model.ReviewResult
	reviewErr := retry.Do(ctx, r.retryPolicy, r.retryTries, func(ctx context.Context) error {
		res, rerr := r.reviewer.Review(ctx, job.Descriptor, cfg)
		if rerr != nil {
			return rerr
		}
		result = res
		return nil
	})

	if reviewErr != nil {
		r.failOrRequeue(ctx, logger, job, cfg, checkID, reviewErr)
		return
	}

	completed, err := r.jobs.Complete(ctx, job.ID)
	switch {
	case err != nil:
		logger.ErrorContext(ctx, "complete job failed", "error", err)
		metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
			Transition: metrics.TransitionComplete,
			Result:     metrics.ResultError,
			Err:        err,
		})
	case !completed:
		logger.WarnContext(ctx, "complete was a no-op, job no longer active")
		metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
			Transition: metrics.TransitionComplete,
			Result:     metrics.ResultNoop,
		})
	default:
		logger.InfoContext(ctx, "review job completed", "findings", result.FindingCount())
		metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
			Transition: metrics.TransitionComplete,
			Result:     metrics.ResultSuccess,
			Duration:   time.Since(started),
		})
	}

	r.reportCheck(ctx, logger, cfg, job.Descriptor, checkID, core.CheckUpdate{
		Phase:      core.CheckPhaseCompleted,
		Conclusion: core.CheckConclusionSuccess,
		Title:      fmt.Sprintf("Review completed: %d findings", result.FindingCount()),
		Summary:    result.Summary,
	})
}

// ensureCheckRun creates the external status object if the job has no handle
// yet and marks it in progress. Creation is best-effort; the review is the
// primary deliverable and proceeds regardless.
func (r *Runner) ensureCheckRun(
	ctx context.Context,
	logger *slog.Logger,
	job *model.ReviewJob,
	cfg *model.TenantConfig,
) *int64 {
	if r.checks == nil {
		return nil
	}

	checkID := job.CheckRunID
	if checkID == nil {
		id, err := r.checks.Create(ctx, cfg, job.Descriptor)
		if err != nil {
			logger.WarnContext(ctx, "create check run failed", "error", err)
			return nil
		}
		if _, setErr := r.jobs.SetCheckRunID(ctx, job.ID, id); setErr != nil {
			logger.WarnContext(ctx, "persist check run id failed",
				"check_run_id", id,
				"error", setErr,
			)
		}
		checkID = &id
	}

	r.reportCheck(ctx, logger, cfg, job.Descriptor, checkID, core.CheckUpdate{
		Phase: core.CheckPhaseInProgress,
		Title: "Reviewing changes",
	})
	return checkID
}

// failOrRequeue records a full-attempt failure and reflects the resulting
// state on the check run: terminal failures conclude it, requeues return it
// to the queued phase for the next attempt. The tenant config resolved at
// claim time is reused; a second lookup could fail and strand the check run
// in progress.
func (r *Runner) failOrRequeue(
	ctx context.Context,
	logger *slog.Logger,
	job *model.ReviewJob,
	cfg *model.TenantConfig,
	checkID *int64,
	cause error,
) {
	status, err := r.jobs.FailOrRequeue(ctx, job.ID, cause.Error())
	if err != nil {
		logger.ErrorContext(ctx, "fail job error", "error", err, "original_error", cause)
		return
	}

	if status == model.JobStatusFailed {
		logger.WarnContext(ctx, "review job failed permanently", "error", cause)
		metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
			Transition: metrics.TransitionFail,
			Result:     metrics.ResultError,
			Err:        cause,
		})
		r.reportCheck(ctx, logger, cfg, job.Descriptor, checkID, core.CheckUpdate{
			Phase:      core.CheckPhaseCompleted,
			Conclusion: core.CheckConclusionFailure,
			Title:      "Review failed",
			Summary:    cause.Error(),
		})
		r.notifyFailure(ctx, logger, job, job.Attempts+1, cause.Error(), obserrors.Classify(cause))
		return
	}

	logger.WarnContext(ctx, "review attempt failed, job requeued", "error", cause)
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: metrics.TransitionRequeue,
		Result:     metrics.ResultError,
		Err:        cause,
	})
	r.reportCheck(ctx, logger, cfg, job.Descriptor, checkID, core.CheckUpdate{
		Phase:   core.CheckPhaseQueued,
		Title:   "Review queued for retry",
		Summary: cause.Error(),
	})
}

// failPermanent fast-fails a job whose precondition retries cannot fix,
// exhausting its attempt budget in one step.
func (r *Runner) failPermanent(
	ctx context.Context,
	logger *slog.Logger,
	job *model.ReviewJob,
	cfg *model.TenantConfig,
	reason string,
) {
	logger.WarnContext(ctx, "review job failed permanently", "reason", reason)

	if _, err := r.jobs.FailPermanent(ctx, job.ID, reason); err != nil {
		logger.ErrorContext(ctx, "fail job permanently error", "error", err)
	}
	metrics.EmitJobLifecycle(r.metrics, metrics.JobMetric{
		Transition: metrics.TransitionFail,
		Result:     metrics.ResultError,
	})

	r.reportCheck(ctx, logger, cfg, job.Descriptor, job.CheckRunID, core.CheckUpdate{
		Phase:      core.CheckPhaseCompleted,
		Conclusion: core.CheckConclusionFailure,
		Title:      "Review failed",
		Summary:    reason,
	})
	r.notifyFailure(ctx, logger, job, job.MaxAttempts, reason, "precondition")
}

// notifyFailure sends a best-effort terminal-failure notification.
func (r *Runner) notifyFailure(
	ctx context.Context,
	logger *slog.Logger,
	job *model.ReviewJob,
	attempts int,
	cause string,
	class string,
) {
	if r.notifier == nil {
		return
	}
	payload := notify.ReviewFailurePayload{
		JobID:          job.ID,
		InstallationID: job.InstallationID,
		Repo:           job.Descriptor.RepoFullName,
		PRNumber:       job.Descriptor.PRNumber,
		HeadSHA:        job.Descriptor.HeadSHA,
		Attempts:       attempts,
		Error:          cause,
		ErrorClass:     class,
		Severity:       notify.SeverityCritical,
		OccurredAt:     time.Now().UTC(),
	}
	if err := r.notifier.SendReviewFailure(ctx, payload); err != nil {
		logger.WarnContext(ctx, "send failure notification failed", "error", err)
	}
}

// reportCheck pushes a check-run update, swallowing and logging failures.
func (r *Runner) reportCheck(
	ctx context.Context,
	logger *slog.Logger,
	cfg *model.TenantConfig,
	desc model.ReviewDescriptor,
	checkID *int64,
	update core.CheckUpdate,
) {
	if r.checks == nil || checkID == nil || cfg == nil {
		return
	}
	if err := r.checks.Update(ctx, cfg, desc, *checkID, update); err != nil {
		logger.WarnContext(ctx, "update check run failed",
			"check_run_id", *checkID,
			"phase", update.Phase,
			"error", err,
		)
	}
}

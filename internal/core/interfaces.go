// Package core defines the contracts between the service layer, the data
// layer, and the external collaborators of the diffscope review queue.
package core

import (
	"context"
	"time"

	"github.com/diffscope/diffscope/internal/domain/model"
)

// This file contains repository and collaborator interface definitions (ports
// in hexagonal architecture). Service implementations depend on these
// interfaces, not concrete implementations.

// DedupKey identifies one logical unit of review work: a tenant, an external
// resource, and a content revision. Two submissions with the same key are the
// same work.
type DedupKey struct {
	InstallationID int64
	RepoFullName   string
	PRNumber       int
	HeadSHA        string
}

// KeyOf returns the dedup key for a create request.
func KeyOf(req *model.CreateReviewJobRequest) DedupKey {
	return DedupKey{
		InstallationID: req.InstallationID,
		RepoFullName:   req.Descriptor.RepoFullName,
		PRNumber:       req.Descriptor.PRNumber,
		HeadSHA:        req.Descriptor.HeadSHA,
	}
}

// ReviewJobRepository defines the interface for review job data operations.
//
// ClaimOne is the load-bearing mutual-exclusion primitive: implementations
// must guarantee that a row being evaluated by one claimer is invisible to a
// concurrent claimer's selection, so two concurrent calls never return the
// same job.
type ReviewJobRepository interface {
	// Enqueue inserts a new pending job. It performs no duplicate check; that
	// is the queue service's responsibility.
	Enqueue(ctx context.Context, req *model.CreateReviewJobRequest) (*model.ReviewJob, error)

	// ClaimOne atomically selects the oldest pending job with attempts below
	// its ceiling, skipping jobs owned by the excluded installations, marks
	// it active, and stamps the start time. Returns
	// model.ErrNoJobsAvailable when nothing is claimable.
	ClaimOne(ctx context.Context, excludedInstallations []int64) (*model.ReviewJob, error)

	// Complete marks an active job completed. Returns false when the job was
	// not active (no-op).
	Complete(ctx context.Context, id string) (bool, error)

	// FailOrRequeue increments the attempt counter and either requeues the
	// job (status pending, start time cleared) or, when the ceiling is
	// reached, fails it terminally. The error message is recorded either
	// way. Returns the resulting status.
	FailOrRequeue(ctx context.Context, id, errMsg string) (model.JobStatus, error)

	// FailPermanent fails an active job immediately, exhausting its attempt
	// budget. Used for permanent preconditions retries cannot fix.
	FailPermanent(ctx context.Context, id, errMsg string) (bool, error)

	// ResetActiveToPending moves every active job back to pending with start
	// time cleared. Run exactly once at startup, before claiming begins.
	ResetActiveToPending(ctx context.Context) (int64, error)

	// SetCheckRunID records the external status handle, only if none is set
	// yet. Returns false when the handle was already present.
	SetCheckRunID(ctx context.Context, id string, checkRunID int64) (bool, error)

	// GetByID retrieves a job by its id.
	GetByID(ctx context.Context, id string) (*model.ReviewJob, error)

	// FindOutstanding returns a pending or active job matching the key, or
	// nil when none exists.
	FindOutstanding(ctx context.Context, key DedupKey) (*model.ReviewJob, error)

	// FindCompletedSince returns a job matching the key that completed at or
	// after the given instant, or nil when none exists.
	FindCompletedSince(ctx context.Context, key DedupKey, since time.Time) (*model.ReviewJob, error)

	// StatusCounts returns aggregate job counts for health reporting.
	StatusCounts(ctx context.Context) (*model.JobStats, error)
}

// TenantRepository defines lookup of per-installation configuration.
type TenantRepository interface {
	GetByInstallationID(ctx context.Context, installationID int64) (*model.TenantConfig, error)
	Upsert(ctx context.Context, cfg *model.TenantConfig) error
}

// CheckPhase is the lifecycle phase reported to the external status surface.
type CheckPhase string

const (
	// CheckPhaseQueued marks the status object as waiting for a worker.
	CheckPhaseQueued CheckPhase = "queued"
	// CheckPhaseInProgress marks the status object as actively processing.
	CheckPhaseInProgress CheckPhase = "in_progress"
	// CheckPhaseCompleted marks the status object as terminal.
	CheckPhaseCompleted CheckPhase = "completed"
)

// CheckConclusion qualifies a completed phase.
type CheckConclusion string

const (
	// CheckConclusionSuccess reports a successful review.
	CheckConclusionSuccess CheckConclusion = "success"
	// CheckConclusionNeutral reports a review that produced no verdict.
	CheckConclusionNeutral CheckConclusion = "neutral"
	// CheckConclusionFailure reports a failed review.
	CheckConclusionFailure CheckConclusion = "failure"
)

// CheckUpdate carries a status transition for an existing check run.
type CheckUpdate struct {
	Phase      CheckPhase
	Conclusion CheckConclusion // only meaningful when Phase is completed
	Title      string
	Summary    string
}

// CheckReporter is the external resource-status collaborator: it creates and
// updates a status object (a check run) visible to the party that triggered
// the job. All operations are best-effort from the queue's perspective;
// failures are logged by callers and never mask the job outcome.
type CheckReporter interface {
	Create(ctx context.Context, cfg *model.TenantConfig, desc model.ReviewDescriptor) (int64, error)
	Update(
		ctx context.Context,
		cfg *model.TenantConfig,
		desc model.ReviewDescriptor,
		checkRunID int64,
		update CheckUpdate,
	) error
}

// Reviewer is the pluggable work-execution collaborator. Implementations
// fetch the change content, run the review engine, and return a structured
// result. Transient upstream failures should be surfaced as classifiable
// errors (see internal/domain/retry) so the caller's in-place retry applies.
type Reviewer interface {
	Review(
		ctx context.Context,
		desc model.ReviewDescriptor,
		cfg *model.TenantConfig,
	) (*model.ReviewResult, error)
}

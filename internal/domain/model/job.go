// Package model defines the core data types and structures used throughout the diffscope review queue.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current status of a review job.
type JobStatus string

const (
	// JobStatusPending indicates a job is waiting to be claimed.
	JobStatusPending JobStatus = "pending"
	// JobStatusActive indicates a job is owned by a worker right now.
	JobStatusActive JobStatus = "active"
	// JobStatusCompleted indicates a job has finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job has exhausted its attempts or failed permanently.
	JobStatusFailed JobStatus = "failed"
)

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusPending || s == JobStatusActive || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Terminal returns true when no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ErrNoJobsAvailable is returned when no claimable jobs exist.
var ErrNoJobsAvailable = errors.New("no jobs available")

// ErrInvalidRequest tags request validation failures so transport layers can
// separate caller mistakes from infrastructure errors.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultMaxAttempts is the attempt ceiling stamped on a job at enqueue time
// unless the request overrides it.
const DefaultMaxAttempts = 3

// ReviewDescriptor is the immutable work descriptor persisted with a job. It
// carries everything needed to re-derive and re-execute the review from
// scratch; none of its fields mutate after creation.
type ReviewDescriptor struct {
	RepoOwner    string `json:"repo_owner"     db:"repo_owner"`
	RepoName     string `json:"repo_name"      db:"repo_name"`
	RepoFullName string `json:"repo_full_name" db:"repo_full_name"`
	PRNumber     int    `json:"pr_number"      db:"pr_number"`
	PRTitle      string `json:"pr_title"       db:"pr_title"`
	HeadSHA      string `json:"head_sha"       db:"head_sha"`
	BaseBranch   string `json:"base_branch"    db:"base_branch"`
}

// Validate validates the descriptor fields required to identify a review unit.
func (d *ReviewDescriptor) Validate() error {
	if strings.TrimSpace(d.RepoOwner) == "" {
		return fmt.Errorf("%w: repo owner is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(d.RepoName) == "" {
		return fmt.Errorf("%w: repo name is required", ErrInvalidRequest)
	}
	if d.PRNumber <= 0 {
		return fmt.Errorf("%w: pull request number must be positive", ErrInvalidRequest)
	}
	if strings.TrimSpace(d.HeadSHA) == "" {
		return fmt.Errorf("%w: head sha is required", ErrInvalidRequest)
	}
	return nil
}

// Normalize fills derived fields. RepoFullName is derived from owner/name when
// callers leave it empty.
func (d *ReviewDescriptor) Normalize() {
	if d.RepoFullName == "" && d.RepoOwner != "" && d.RepoName != "" {
		d.RepoFullName = d.RepoOwner + "/" + d.RepoName
	}
}

// ReviewJob represents one schedulable unit of review work tied to a tenant
// installation and a specific content revision.
type ReviewJob struct {
	ID             string           `json:"id"                     db:"id"`
	InstallationID int64            `json:"installation_id"        db:"installation_id"`
	Descriptor     ReviewDescriptor `json:"descriptor"`
	Status         JobStatus        `json:"status"                 db:"status"`
	Attempts       int              `json:"attempts"               db:"attempts"`
	MaxAttempts    int              `json:"max_attempts"           db:"max_attempts"`
	LastError      *string          `json:"last_error,omitempty"   db:"last_error"`
	CheckRunID     *int64           `json:"check_run_id,omitempty" db:"check_run_id"`
	CreatedAt      time.Time        `json:"created_at"             db:"created_at"`
	StartedAt      *time.Time       `json:"started_at,omitempty"   db:"started_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
	UpdatedAt      time.Time        `json:"updated_at"             db:"updated_at"`
}

// CreateReviewJobRequest represents a request to enqueue a new review job.
type CreateReviewJobRequest struct {
	InstallationID int64            `json:"installation_id"`
	Descriptor     ReviewDescriptor `json:"descriptor"`
	MaxAttempts    int              `json:"max_attempts,omitempty"`
}

// Validate validates the CreateReviewJobRequest fields.
func (r *CreateReviewJobRequest) Validate() error {
	if r.InstallationID <= 0 {
		return fmt.Errorf("%w: installation id is required", ErrInvalidRequest)
	}
	if r.MaxAttempts < 0 {
		return fmt.Errorf("%w: max attempts must be >= 0", ErrInvalidRequest)
	}
	r.Descriptor.Normalize()
	return r.Descriptor.Validate()
}

// JobStats represents aggregate counts of jobs in each state.
type JobStats struct {
	Pending   int `json:"pending"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// JobStatusResponse represents the status view of a single job returned by the API.
type JobStatusResponse struct {
	ID          string     `json:"id"`
	Status      JobStatus  `json:"status"`
	Attempts    int        `json:"attempts"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastError   *string    `json:"last_error,omitempty"`
}

// StatusView projects the job onto its external status payload.
func (j *ReviewJob) StatusView() JobStatusResponse {
	return JobStatusResponse{
		ID:          j.ID,
		Status:      j.Status,
		Attempts:    j.Attempts,
		CompletedAt: j.CompletedAt,
		LastError:   j.LastError,
	}
}

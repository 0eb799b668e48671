// Package data provides pgx-backed repositories for the diffscope review queue.
package data

import (
	"database/sql"
	"errors"
	"log/slog"
)

var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotActive is returned when a transition requires the job to be active.
	ErrJobNotActive = errors.New("job is not active")
	// ErrDuplicateJob is returned when the dedup index rejects an insert for a
	// unit of work that already has a non-terminal job.
	ErrDuplicateJob = errors.New("a job for this unit of work is already enqueued")
)

// RepoConfig holds configuration options for the job repository.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for review job management.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  installation_id,
  repo_owner,
  repo_name,
  repo_full_name,
  pr_number,
  pr_title,
  head_sha,
  base_branch,
  status,
  attempts,
  max_attempts,
  last_error,
  check_run_id,
  created_at,
  started_at,
  completed_at,
  updated_at
`

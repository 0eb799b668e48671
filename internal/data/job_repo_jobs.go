package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/data/pgxutil"
	"github.com/diffscope/diffscope/internal/domain/model"
)

// SQL used by ClaimOne to atomically claim the oldest eligible pending job.
//
// The FOR UPDATE SKIP LOCKED lock on the CTE row is the load-bearing
// mutual-exclusion primitive: a row being claimed inside one transaction is
// invisible to a concurrent claimer's SELECT, so two concurrent callers can
// never receive the same job. A plain select-then-update sequence would race.
const claimOneSQL = `
  WITH cte AS (
    SELECT id FROM review_jobs
    WHERE status = 'pending'
      AND attempts < max_attempts
      AND NOT (installation_id = ANY($1::bigint[]))
    ORDER BY created_at ASC
    LIMIT 1
    FOR UPDATE SKIP LOCKED
  )
  UPDATE review_jobs j
  SET
    status = 'active',
    started_at = $2,
    updated_at = $2
  FROM cte
  WHERE j.id = cte.id
  RETURNING ` + qualifiedJobColumns

const qualifiedJobColumns = `j.id, j.installation_id, j.repo_owner, j.repo_name, j.repo_full_name,
  j.pr_number, j.pr_title, j.head_sha, j.base_branch, j.status, j.attempts, j.max_attempts,
  j.last_error, j.check_run_id, j.created_at, j.started_at, j.completed_at, j.updated_at`

// Enqueue inserts a new pending job. Duplicate checking belongs to the queue
// service layered above; the partial unique dedup index is the last line of
// defence against the check-then-insert race, surfaced as ErrDuplicateJob.
func (r *JobRepo) Enqueue(
	ctx context.Context,
	req *model.CreateReviewJobRequest,
) (*model.ReviewJob, error) {
	if req == nil {
		return nil, errors.New("create review job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = model.DefaultMaxAttempts
	}

	query := `
      INSERT INTO review_jobs(
        installation_id, repo_owner, repo_name, repo_full_name,
        pr_number, pr_title, head_sha, base_branch, status, max_attempts
      )
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,'pending',$9)
      RETURNING ` + jobColumns

	d := req.Descriptor
	row := r.DB.QueryRowContext(ctx, query,
		req.InstallationID,
		d.RepoOwner,
		d.RepoName,
		d.RepoFullName,
		d.PRNumber,
		d.PRTitle,
		d.HeadSHA,
		d.BaseBranch,
		maxAttempts,
	)

	job, err := scanJobFromRow(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateJob
		}
		return nil, fmt.Errorf("insert review job: %w", err)
	}
	return job, nil
}

// ClaimOne atomically claims the oldest pending job whose attempt budget is
// not exhausted, skipping jobs owned by the excluded installations, and marks
// it active with a fresh start time. Returns model.ErrNoJobsAvailable when
// nothing is claimable.
func (r *JobRepo) ClaimOne(
	ctx context.Context,
	excludedInstallations []int64,
) (*model.ReviewJob, error) {
	if excludedInstallations == nil {
		excludedInstallations = []int64{}
	}

	var job *model.ReviewJob
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{
			Isolation: sql.LevelReadCommitted,
			ReadOnly:  false,
		},
		Fn: func(tx pgx.Tx) error {
			now := r.timeProvider.Now().UTC()

			rows, qerr := tx.Query(ctx, claimOneSQL, excludedInstallations, now)
			if qerr != nil {
				return fmt.Errorf("claim job: %w", qerr)
			}
			defer rows.Close()

			j, cerr := collectJobFromRows(rows)
			if errors.Is(cerr, pgx.ErrNoRows) {
				return model.ErrNoJobsAvailable
			}
			if cerr != nil {
				return fmt.Errorf("claim job: %w", cerr)
			}
			job = j
			return nil
		},
	})
	if err != nil {
		if errors.Is(err, model.ErrNoJobsAvailable) {
			return nil, model.ErrNoJobsAvailable
		}
		return nil, err
	}
	return job, nil
}

// Complete marks an active job as completed successfully.
func (r *JobRepo) Complete(ctx context.Context, id string) (bool, error) {
	now := r.timeProvider.Now().UTC()

	query := `
		UPDATE review_jobs
		SET status = 'completed',
		    completed_at = $2,
		    updated_at = $2,
		    last_error = NULL
		WHERE id = $1 AND status = 'active'
	`

	res, err := r.DB.ExecContext(ctx, query, id, now)
	if err != nil {
		return false, fmt.Errorf("complete job: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("complete rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// FailOrRequeue increments the attempt counter and either requeues the job
// for a fresh claim or, when the ceiling is reached, fails it terminally.
// The error message is recorded in both cases so operators can see why the
// previous attempt failed even while the job is retrying.
func (r *JobRepo) FailOrRequeue(ctx context.Context, id, errMsg string) (model.JobStatus, error) {
	now := r.timeProvider.Now().UTC()

	query := `
      UPDATE review_jobs
      SET
        last_error = $2,
        attempts = attempts + 1,
        status = CASE WHEN attempts + 1 >= max_attempts THEN 'failed' ELSE 'pending' END,
        completed_at = CASE WHEN attempts + 1 >= max_attempts THEN $3::timestamptz ELSE NULL END,
        started_at = CASE WHEN attempts + 1 >= max_attempts THEN started_at ELSE NULL END,
        updated_at = $3
      WHERE id = $1 AND status = 'active'
      RETURNING status
    `

	var status model.JobStatus
	if err := r.DB.QueryRowContext(ctx, query, id, errMsg, now).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrJobNotActive
		}
		return "", fmt.Errorf("fail job: %w", err)
	}
	return status, nil
}

// FailPermanent fails an active job immediately, exhausting its attempt
// budget. Used for permanent preconditions (missing or disabled tenant) that
// retries cannot fix.
func (r *JobRepo) FailPermanent(ctx context.Context, id, errMsg string) (bool, error) {
	now := r.timeProvider.Now().UTC()

	query := `
      UPDATE review_jobs
      SET
        last_error = $2,
        attempts = max_attempts,
        status = 'failed',
        completed_at = $3,
        updated_at = $3
      WHERE id = $1 AND status = 'active'
    `

	res, err := r.DB.ExecContext(ctx, query, id, errMsg, now)
	if err != nil {
		return false, fmt.Errorf("fail job permanently: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("fail permanent rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// SetCheckRunID records the external check-run handle on a job, only when no
// handle has been set yet. Repeated calls are idempotent no-ops.
func (r *JobRepo) SetCheckRunID(ctx context.Context, id string, checkRunID int64) (bool, error) {
	query := `
		UPDATE review_jobs
		SET check_run_id = $2,
		    updated_at = $3
		WHERE id = $1 AND check_run_id IS NULL
	`

	res, err := r.DB.ExecContext(ctx, query, id, checkRunID, r.timeProvider.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("set check run id: %w", err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set check run id rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetByID retrieves a job by its ID.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.ReviewJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM review_jobs
		WHERE id = $1
	`, id)

	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// FindOutstanding returns a pending or active job matching the dedup key, or
// nil when none exists.
func (r *JobRepo) FindOutstanding(ctx context.Context, key core.DedupKey) (*model.ReviewJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM review_jobs
		WHERE installation_id = $1
		  AND repo_full_name = $2
		  AND pr_number = $3
		  AND head_sha = $4
		  AND status IN ('pending', 'active')
		ORDER BY created_at DESC
		LIMIT 1
	`, key.InstallationID, key.RepoFullName, key.PRNumber, key.HeadSHA)

	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find outstanding job: %w", err)
	}
	return job, nil
}

// FindCompletedSince returns a job matching the dedup key that completed at
// or after the given instant, or nil when none exists.
func (r *JobRepo) FindCompletedSince(
	ctx context.Context,
	key core.DedupKey,
	since time.Time,
) (*model.ReviewJob, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM review_jobs
		WHERE installation_id = $1
		  AND repo_full_name = $2
		  AND pr_number = $3
		  AND head_sha = $4
		  AND status = 'completed'
		  AND completed_at >= $5
		ORDER BY completed_at DESC
		LIMIT 1
	`, key.InstallationID, key.RepoFullName, key.PRNumber, key.HeadSHA, since.UTC())

	job, err := scanJobFromRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find completed job: %w", err)
	}
	return job, nil
}

// StatusCounts returns aggregate counts of jobs in each state.
func (r *JobRepo) StatusCounts(ctx context.Context) (*model.JobStats, error) {
	var s model.JobStats
	err := r.DB.QueryRowContext(ctx, `
  SELECT
    count(*) FILTER (WHERE status = 'pending')   AS pending,
    count(*) FILTER (WHERE status = 'active')    AS active,
    count(*) FILTER (WHERE status = 'completed') AS completed,
    count(*) FILTER (WHERE status = 'failed')    AS failed
  FROM review_jobs
  `).Scan(
		&s.Pending,
		&s.Active,
		&s.Completed,
		&s.Failed,
	)
	if err != nil {
		return nil, fmt.Errorf("get job status counts: %w", err)
	}
	return &s, nil
}

// collectJobFromRows collects a single job from pgx rows using pgx v5 helpers.
func collectJobFromRows(rows pgx.Rows) (*model.ReviewJob, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}

	return job, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	lastError              sql.NullString
	checkRunID             sql.NullInt64
	startedAt, completedAt sql.NullTime
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.ReviewJob) error {
	return scanner.Scan(
		&job.ID,
		&job.InstallationID,
		&job.Descriptor.RepoOwner,
		&job.Descriptor.RepoName,
		&job.Descriptor.RepoFullName,
		&job.Descriptor.PRNumber,
		&job.Descriptor.PRTitle,
		&job.Descriptor.HeadSHA,
		&job.Descriptor.BaseBranch,
		&job.Status,
		&job.Attempts,
		&job.MaxAttempts,
		&d.lastError,
		&d.checkRunID,
		&job.CreatedAt,
		&d.startedAt,
		&d.completedAt,
		&job.UpdatedAt,
	)
}

func (d *jobRowData) apply(job *model.ReviewJob) {
	job.LastError = cloneNullableString(d.lastError)
	job.CheckRunID = cloneNullableInt64(d.checkRunID)
	job.StartedAt = cloneNullableTime(d.startedAt)
	job.CompletedAt = cloneNullableTime(d.completedAt)
}

func scanJobFromRow(scanner jobRowScanner) (*model.ReviewJob, error) {
	job := &model.ReviewJob{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}

	data.apply(job)
	return job, nil
}

func cloneNullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func cloneNullableInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

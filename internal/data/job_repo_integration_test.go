package data

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/testutil"
)

// TestJobRepo_Integration_EnqueueAndClaim tests the full flow of enqueueing
// and claiming jobs in arrival order.
func TestJobRepo_Integration_EnqueueAndClaim(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		first, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithPRNumber(1).Build())
		require.NoError(t, err)
		second, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithPRNumber(2).Build())
		require.NoError(t, err)

		claimed1, err := repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, claimed1.ID) // oldest first
		assert.Equal(t, model.JobStatusActive, claimed1.Status)
		require.NotNil(t, claimed1.StartedAt)

		claimed2, err := repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, second.ID, claimed2.ID)

		_, err = repo.ClaimOne(context.Background(), nil)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)
	})
}

// TestJobRepo_Integration_ConcurrentClaims verifies that concurrent claimers
// never receive the same job.
func TestJobRepo_Integration_ConcurrentClaims(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		const jobCount = 10
		for i := 1; i <= jobCount; i++ {
			_, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithPRNumber(i).Build())
			require.NoError(t, err)
		}

		var mu sync.Mutex
		seen := make(map[string]int)

		var wg sync.WaitGroup
		for range jobCount * 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				job, err := repo.ClaimOne(context.Background(), nil)
				if err != nil {
					return
				}
				mu.Lock()
				seen[job.ID]++
				mu.Unlock()
			}()
		}
		wg.Wait()

		assert.Len(t, seen, jobCount)
		for id, count := range seen {
			assert.Equal(t, 1, count, "job %s claimed more than once", id)
		}
	})
}

func TestJobRepo_Integration_ClaimSkipsExcludedInstallations(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		_, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithInstallation(1).WithPRNumber(1).Build())
		require.NoError(t, err)
		other, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithInstallation(2).WithPRNumber(2).Build())
		require.NoError(t, err)

		claimed, err := repo.ClaimOne(context.Background(), []int64{1})
		require.NoError(t, err)
		assert.Equal(t, other.ID, claimed.ID)

		// Only the excluded installation's job remains.
		_, err = repo.ClaimOne(context.Background(), []int64{1})
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		claimed, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claimed.InstallationID)
	})
}

func TestJobRepo_Integration_CompleteLifecycle(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)

		claimed, err := repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		require.Equal(t, job.ID, claimed.ID)

		ok, err := repo.Complete(context.Background(), job.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.Nil(t, got.LastError)

		// Completing again is a no-op.
		ok, err = repo.Complete(context.Background(), job.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestJobRepo_Integration_FailOrRequeueUntilCeiling(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithMaxAttempts(2).Build())
		require.NoError(t, err)

		// First attempt fails and requeues.
		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		status, err := repo.FailOrRequeue(context.Background(), job.ID, "engine timeout")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusPending, status)

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Attempts)
		assert.Nil(t, got.StartedAt)
		require.NotNil(t, got.LastError)
		assert.Equal(t, "engine timeout", *got.LastError)

		// Second attempt hits the ceiling and fails terminally.
		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		status, err = repo.FailOrRequeue(context.Background(), job.ID, "engine timeout again")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFailed, status)

		got, err = repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Attempts)
		require.NotNil(t, got.CompletedAt)

		// A terminal job is not claimable.
		_, err = repo.ClaimOne(context.Background(), nil)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)
	})
}

func TestJobRepo_Integration_FailOrRequeueRequiresActive(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)

		_, err = repo.FailOrRequeue(context.Background(), job.ID, "not claimed")
		require.ErrorIs(t, err, ErrJobNotActive)
	})
}

func TestJobRepo_Integration_FailPermanent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)
		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)

		ok, err := repo.FailPermanent(context.Background(), job.ID, "installation is disabled")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFailed, got.Status)
		assert.Equal(t, got.MaxAttempts, got.Attempts)
	})
}

func TestJobRepo_Integration_ResetActiveToPending(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		for i := 1; i <= 3; i++ {
			_, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithPRNumber(i).Build())
			require.NoError(t, err)
		}
		_, err := repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)

		reset, err := repo.ResetActiveToPending(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), reset)

		stats, err := repo.StatusCounts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Pending)
		assert.Equal(t, 0, stats.Active)
	})
}

func TestJobRepo_Integration_SetCheckRunIDIsSetOnce(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)

		ok, err := repo.SetCheckRunID(context.Background(), job.ID, 777)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.SetCheckRunID(context.Background(), job.ID, 888)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := repo.GetByID(context.Background(), job.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CheckRunID)
		assert.Equal(t, int64(777), *got.CheckRunID)
	})
}

func TestJobRepo_Integration_DedupIndexRejectsDuplicateTuple(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		req := testutil.NewReviewRequest().Build()
		_, err := repo.Enqueue(context.Background(), req)
		require.NoError(t, err)

		_, err = repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.ErrorIs(t, err, ErrDuplicateJob)

		// A different revision of the same PR is new work.
		_, err = repo.Enqueue(
			context.Background(),
			testutil.NewReviewRequest().WithHeadSHA("fedcba9876543210fedcba9876543210fedcba98").Build(),
		)
		require.NoError(t, err)
	})
}

func TestJobRepo_Integration_DedupIndexIgnoresTerminalJobs(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		job, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)
		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		_, err = repo.Complete(context.Background(), job.ID)
		require.NoError(t, err)

		// The completed job does not block a re-submission of the tuple.
		_, err = repo.Enqueue(context.Background(), testutil.NewReviewRequest().Build())
		require.NoError(t, err)
	})
}

func TestJobRepo_Integration_FindOutstandingAndCompletedSince(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		req := testutil.NewReviewRequest().Build()
		key := core.KeyOf(req)

		found, err := repo.FindOutstanding(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, found)

		job, err := repo.Enqueue(context.Background(), req)
		require.NoError(t, err)

		found, err = repo.FindOutstanding(context.Background(), key)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, job.ID, found.ID)

		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		_, err = repo.Complete(context.Background(), job.ID)
		require.NoError(t, err)

		found, err = repo.FindOutstanding(context.Background(), key)
		require.NoError(t, err)
		assert.Nil(t, found)

		completed, err := repo.FindCompletedSince(context.Background(), key, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.NotNil(t, completed)
		assert.Equal(t, job.ID, completed.ID)

		stale, err := repo.FindCompletedSince(context.Background(), key, time.Now().Add(time.Minute))
		require.NoError(t, err)
		assert.Nil(t, stale)
	})
}

func TestJobRepo_Integration_GetByIDNotFound(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestJobRepo_Integration_StatusCounts(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewJobRepo(db, RepoConfig{})

		for i := 1; i <= 3; i++ {
			_, err := repo.Enqueue(context.Background(), testutil.NewReviewRequest().WithPRNumber(i).Build())
			require.NoError(t, err)
		}

		claimed, err := repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)
		_, err = repo.Complete(context.Background(), claimed.ID)
		require.NoError(t, err)

		_, err = repo.ClaimOne(context.Background(), nil)
		require.NoError(t, err)

		stats, err := repo.StatusCounts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Pending)
		assert.Equal(t, 1, stats.Active)
		assert.Equal(t, 1, stats.Completed)
		assert.Equal(t, 0, stats.Failed)
	})
}

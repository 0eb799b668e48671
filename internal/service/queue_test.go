package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/mocks"
	"github.com/diffscope/diffscope/internal/testutil"
)

func newQueueServiceForTest(t *testing.T, repo core.ReviewJobRepository) *QueueService {
	t.Helper()
	svc, err := NewQueueService(QueueServiceOptions{
		Repo:        repo,
		DedupWindow: 5 * time.Minute,
		Now:         testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)
	return svc
}

func TestQueueService_Enqueue_InsertsFreshJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().Build()
	key := core.KeyOf(req)
	inserted := &model.ReviewJob{ID: "job-1", InstallationID: req.InstallationID, Status: model.JobStatusPending}

	repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(nil, nil)
	repo.EXPECT().FindCompletedSince(gomock.Any(), key, testutil.TestTime().Add(-5*time.Minute)).Return(nil, nil)
	repo.EXPECT().Enqueue(gomock.Any(), req).Return(inserted, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Deduplicated)
	assert.Equal(t, "job-1", result.Job.ID)
}

func TestQueueService_Enqueue_DedupsOutstandingJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().Build()
	existing := &model.ReviewJob{ID: "job-existing", Status: model.JobStatusActive}

	repo.EXPECT().FindOutstanding(gomock.Any(), core.KeyOf(req)).Return(existing, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Deduplicated)
	assert.Equal(t, "job-existing", result.Job.ID)
}

func TestQueueService_Enqueue_DedupsRecentCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().Build()
	key := core.KeyOf(req)
	completed := &model.ReviewJob{ID: "job-done", Status: model.JobStatusCompleted}

	repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(nil, nil)
	repo.EXPECT().
		FindCompletedSince(gomock.Any(), key, testutil.TestTime().Add(-5*time.Minute)).
		Return(completed, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Deduplicated)
	assert.Equal(t, "job-done", result.Job.ID)
}

func TestQueueService_Enqueue_StaleCompletionGetsNewJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().Build()
	key := core.KeyOf(req)
	inserted := &model.ReviewJob{ID: "job-2", Status: model.JobStatusPending}

	// A completion outside the window is invisible to the guard; the repo
	// answers nil for the bounded query.
	repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(nil, nil)
	repo.EXPECT().FindCompletedSince(gomock.Any(), key, gomock.Any()).Return(nil, nil)
	repo.EXPECT().Enqueue(gomock.Any(), req).Return(inserted, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Deduplicated)
	assert.Equal(t, "job-2", result.Job.ID)
}

func TestQueueService_Enqueue_DifferentRevisionIsNewWork(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().WithHeadSHA("fedcba9876543210fedcba9876543210fedcba98").Build()
	key := core.KeyOf(req)
	assert.Equal(t, "fedcba9876543210fedcba9876543210fedcba98", key.HeadSHA)

	inserted := &model.ReviewJob{ID: "job-3", Status: model.JobStatusPending}
	repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(nil, nil)
	repo.EXPECT().FindCompletedSince(gomock.Any(), key, gomock.Any()).Return(nil, nil)
	repo.EXPECT().Enqueue(gomock.Any(), req).Return(inserted, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.Deduplicated)
}

func TestQueueService_Enqueue_InsertConflictResolvesToExisting(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().Build()
	key := core.KeyOf(req)
	winner := &model.ReviewJob{ID: "job-winner", Status: model.JobStatusPending}

	gomock.InOrder(
		repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(nil, nil),
		repo.EXPECT().FindCompletedSince(gomock.Any(), key, gomock.Any()).Return(nil, nil),
		repo.EXPECT().Enqueue(gomock.Any(), req).Return(nil, data.ErrDuplicateJob),
		repo.EXPECT().FindOutstanding(gomock.Any(), key).Return(winner, nil),
	)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.Deduplicated)
	assert.Equal(t, "job-winner", result.Job.ID)
}

func TestQueueService_Enqueue_StampsConfiguredMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc, err := NewQueueService(QueueServiceOptions{
		Repo:               repo,
		DefaultMaxAttempts: 5,
		Now:                testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)

	req := testutil.NewReviewRequest().WithMaxAttempts(0).Build()

	repo.EXPECT().FindOutstanding(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().FindCompletedSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, got *model.CreateReviewJobRequest) (*model.ReviewJob, error) {
			assert.Equal(t, 5, got.MaxAttempts)
			return &model.ReviewJob{ID: "job-4", MaxAttempts: got.MaxAttempts}, nil
		})

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Job.MaxAttempts)
	// The caller's request stays untouched.
	assert.Zero(t, req.MaxAttempts)
}

func TestQueueService_Enqueue_ExplicitMaxAttemptsWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc, err := NewQueueService(QueueServiceOptions{
		Repo:               repo,
		DefaultMaxAttempts: 5,
		Now:                testutil.FixedTimeFunc(testutil.TestTime()),
	})
	require.NoError(t, err)

	req := testutil.NewReviewRequest().WithMaxAttempts(7).Build()

	repo.EXPECT().FindOutstanding(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().FindCompletedSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().Enqueue(gomock.Any(), req).Return(&model.ReviewJob{ID: "job-7", MaxAttempts: 7}, nil)

	result, err := svc.Enqueue(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Job.MaxAttempts)
}

func TestQueueService_Enqueue_RejectsInvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockReviewJobRepository(ctrl)
	svc := newQueueServiceForTest(t, repo)

	req := testutil.NewReviewRequest().WithInstallation(0).Build()
	_, err := svc.Enqueue(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installation id is required")
}

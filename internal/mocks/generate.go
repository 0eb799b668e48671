// Package mocks provides mock implementations for testing the diffscope review queue.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository
// and collaborator interfaces. The mocks are generated using go:generate directives and
// provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockRepo := mocks.NewMockReviewJobRepository(ctrl)
//	mockRepo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(job, nil)
package mocks

// Generate mock for ReviewJobRepository interface from internal/core package.
// This creates MockReviewJobRepository with methods for all ReviewJobRepository interface methods:
// Enqueue, ClaimOne, Complete, FailOrRequeue, FailPermanent, ResetActiveToPending,
// SetCheckRunID, GetByID, FindOutstanding, FindCompletedSince, StatusCounts
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=review_job_repository_mock.go github.com/diffscope/diffscope/internal/core ReviewJobRepository

// Generate mock for TenantRepository interface from internal/core package.
// This creates MockTenantRepository with methods for all TenantRepository interface methods:
// GetByInstallationID, Upsert
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=tenant_repository_mock.go github.com/diffscope/diffscope/internal/core TenantRepository

// Generate mock for CheckReporter interface from internal/core package.
// This creates MockCheckReporter with methods for all CheckReporter interface methods:
// Create, Update
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=check_reporter_mock.go github.com/diffscope/diffscope/internal/core CheckReporter

// Generate mock for Reviewer interface from internal/core package.
// This creates MockReviewer with methods for all Reviewer interface methods:
// Review
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=reviewer_mock.go github.com/diffscope/diffscope/internal/core Reviewer

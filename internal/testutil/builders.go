// Package testutil provides testing utilities and helpers for the diffscope review queue.
package testutil

import (
	"fmt"

	"github.com/diffscope/diffscope/internal/domain/model"
)

// ReviewRequestBuilder provides a fluent interface for building CreateReviewJobRequest objects for testing.
type ReviewRequestBuilder struct {
	req *model.CreateReviewJobRequest
}

// NewReviewRequest creates a new ReviewRequestBuilder with sensible defaults.
func NewReviewRequest() *ReviewRequestBuilder {
	return &ReviewRequestBuilder{
		req: &model.CreateReviewJobRequest{
			InstallationID: 1001,
			Descriptor: model.ReviewDescriptor{
				RepoOwner:    "acme",
				RepoName:     "widgets",
				RepoFullName: "acme/widgets",
				PRNumber:     42,
				PRTitle:      "Add widget pipeline",
				HeadSHA:      "0123456789abcdef0123456789abcdef01234567",
				BaseBranch:   "main",
			},
			MaxAttempts: model.DefaultMaxAttempts,
		},
	}
}

// WithInstallation sets the installation ID.
func (b *ReviewRequestBuilder) WithInstallation(id int64) *ReviewRequestBuilder {
	b.req.InstallationID = id
	return b
}

// WithRepo sets the repository owner and name.
func (b *ReviewRequestBuilder) WithRepo(owner, name string) *ReviewRequestBuilder {
	b.req.Descriptor.RepoOwner = owner
	b.req.Descriptor.RepoName = name
	b.req.Descriptor.RepoFullName = fmt.Sprintf("%s/%s", owner, name)
	return b
}

// WithPRNumber sets the pull request number.
func (b *ReviewRequestBuilder) WithPRNumber(n int) *ReviewRequestBuilder {
	b.req.Descriptor.PRNumber = n
	return b
}

// WithHeadSHA sets the head commit.
func (b *ReviewRequestBuilder) WithHeadSHA(sha string) *ReviewRequestBuilder {
	b.req.Descriptor.HeadSHA = sha
	return b
}

// WithMaxAttempts sets the attempt budget.
func (b *ReviewRequestBuilder) WithMaxAttempts(n int) *ReviewRequestBuilder {
	b.req.MaxAttempts = n
	return b
}

// Build returns the constructed request.
func (b *ReviewRequestBuilder) Build() *model.CreateReviewJobRequest {
	req := *b.req
	return &req
}

// NewTenantConfig returns an enabled tenant configuration with defaults for testing.
func NewTenantConfig(installationID int64) *model.TenantConfig {
	return &model.TenantConfig{
		InstallationID: installationID,
		AccountLogin:   "acme",
		Enabled:        true,
		Provider:       model.ProviderAnthropic,
		GitHubToken:    "ghs_test_token",
		EngineToken:    "engine_test_token",
		MaxFindings:    20,
		MaxFiles:       50,
	}
}

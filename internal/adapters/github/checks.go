// Package github reports review progress to GitHub as check runs on the
// pull request head commit.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/domain/retry"
)

const (
	// DefaultBaseURL is the public GitHub REST API endpoint.
	DefaultBaseURL = "https://api.github.com"

	// CheckName is the name shown on the pull request checks tab.
	CheckName = "diffscope-review"

	defaultRequestTimeout = 30 * time.Second
	apiVersion            = "2022-11-28"
	maxErrorBody          = 2048
)

// Config describes how to reach the GitHub REST API.
type Config struct {
	BaseURL string        // Optional: defaults to DefaultBaseURL
	Timeout time.Duration // Optional: per-request timeout
	Logger  *slog.Logger  // Optional
}

// Reporter creates and updates check runs through the GitHub checks API,
// authenticating each request with the installation token from the tenant
// configuration. It is safe for concurrent use.
type Reporter struct {
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
}

var _ core.CheckReporter = (*Reporter)(nil)

// NewReporter creates a new GitHub check-run reporter.
func NewReporter(cfg Config) *Reporter {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &Reporter{
		baseURL: baseURL,
		timeout: timeout,
		logger:  logger.With("component", "github_checks"),
	}
}

type checkRunRequest struct {
	Name       string          `json:"name,omitempty"`
	HeadSHA    string          `json:"head_sha,omitempty"`
	Status     string          `json:"status,omitempty"`
	Conclusion string          `json:"conclusion,omitempty"`
	Output     *checkRunOutput `json:"output,omitempty"`
}

type checkRunOutput struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type checkRunResponse struct {
	ID int64 `json:"id"`
}

// Create opens a queued check run on the descriptor's head commit and
// returns its GitHub identifier.
func (r *Reporter) Create(
	ctx context.Context,
	cfg *model.TenantConfig,
	desc model.ReviewDescriptor,
) (int64, error) {
	payload := checkRunRequest{
		Name:    CheckName,
		HeadSHA: desc.HeadSHA,
		Status:  string(core.CheckPhaseQueued),
	}

	url := fmt.Sprintf("%s/repos/%s/%s/check-runs", r.baseURL, desc.RepoOwner, desc.RepoName)

	var resp checkRunResponse
	if err := r.do(ctx, cfg, http.MethodPost, url, payload, &resp); err != nil {
		return 0, fmt.Errorf("create check run for %s@%s: %w", desc.RepoFullName, desc.HeadSHA, err)
	}
	return resp.ID, nil
}

// Update transitions an existing check run to the given phase, attaching the
// conclusion and output when present.
func (r *Reporter) Update(
	ctx context.Context,
	cfg *model.TenantConfig,
	desc model.ReviewDescriptor,
	checkRunID int64,
	update core.CheckUpdate,
) error {
	payload := checkRunRequest{
		Status:     string(update.Phase),
		Conclusion: string(update.Conclusion),
	}
	if update.Title != "" || update.Summary != "" {
		payload.Output = &checkRunOutput{
			Title:   update.Title,
			Summary: update.Summary,
		}
	}

	url := fmt.Sprintf(
		"%s/repos/%s/%s/check-runs/%d",
		r.baseURL, desc.RepoOwner, desc.RepoName, checkRunID,
	)

	if err := r.do(ctx, cfg, http.MethodPatch, url, payload, nil); err != nil {
		return fmt.Errorf("update check run %d: %w", checkRunID, err)
	}
	return nil
}

// do issues one authenticated request and decodes the response into out when
// non-nil. GitHub failures surface as retry.StatusError so callers can
// classify them.
func (r *Reporter) do(
	ctx context.Context,
	cfg *model.TenantConfig,
	method, url string,
	payload any,
	out any,
) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	client := oauth2.NewClient(reqCtx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.GitHubToken,
	}))

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &retry.StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

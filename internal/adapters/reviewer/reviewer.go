// Package reviewer executes reviews against the LLM review engine over HTTP.
package reviewer

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

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/domain/model"
	"github.com/diffscope/diffscope/internal/domain/retry"
)

const (
	defaultRequestTimeout = 5 * time.Minute
	maxErrorBody          = 2048
)

// Config describes how to reach the review engine.
type Config struct {
	Endpoint string        // Required: engine review URL
	Timeout  time.Duration // Optional: per-request timeout, defaults to 5m
	Logger   *slog.Logger  // Optional
	Client   *http.Client  // Optional: overrides the default client
}

// Client submits review requests to the engine and decodes structured
// results. Engine-side throttling and outages surface as classifiable errors
// so the caller's in-place retry applies. It is safe for concurrent use.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

var _ core.Reviewer = (*Client)(nil)

// NewClient creates a new review engine client.
func NewClient(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("review engine endpoint is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With("component", "reviewer"),
	}, nil
}

type reviewRequest struct {
	InstallationID int64  `json:"installation_id"`
	RepoFullName   string `json:"repo_full_name"`
	PRNumber       int    `json:"pr_number"`
	PRTitle        string `json:"pr_title,omitempty"`
	HeadSHA        string `json:"head_sha"`
	BaseBranch     string `json:"base_branch,omitempty"`
	GitHubToken    string `json:"github_token"`
	Provider       string `json:"provider"`
	MaxFindings    int    `json:"max_findings,omitempty"`
	MaxFiles       int    `json:"max_files,omitempty"`
}

// Review executes one review attempt for the given pull request.
func (c *Client) Review(
	ctx context.Context,
	desc model.ReviewDescriptor,
	cfg *model.TenantConfig,
) (*model.ReviewResult, error) {
	payload := reviewRequest{
		InstallationID: cfg.InstallationID,
		RepoFullName:   desc.RepoFullName,
		PRNumber:       desc.PRNumber,
		PRTitle:        desc.PRTitle,
		HeadSHA:        desc.HeadSHA,
		BaseBranch:     desc.BaseBranch,
		GitHubToken:    cfg.GitHubToken,
		Provider:       string(cfg.Provider),
		MaxFindings:    cfg.MaxFindings,
		MaxFiles:       cfg.MaxFiles,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode review request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build review request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cfg.EngineToken != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.EngineToken)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("review engine request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, retry.ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &retry.StatusError{Code: resp.StatusCode, Body: string(snippet)}
	}

	var result model.ReviewResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode review result: %w", err)
	}

	c.logger.InfoContext(ctx, "review engine call completed",
		"repo", desc.RepoFullName,
		"pr_number", desc.PRNumber,
		"findings", result.FindingCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &result, nil
}

package config

import "time"

// GitHubConfig contains GitHub REST API configuration.
type GitHubConfig struct {
	// BaseURL points at the GitHub API; override for GitHub Enterprise.
	BaseURL string `env:"BASE_URL" envDefault:"https://api.github.com"`

	// Timeout is the per-request timeout for check-run calls.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// ChecksEnabled toggles check-run reporting entirely.
	ChecksEnabled bool `env:"CHECKS_ENABLED" envDefault:"true"`
}

// EngineConfig contains review engine configuration.
type EngineConfig struct {
	// Endpoint is the review engine URL jobs are submitted to.
	Endpoint string `env:"ENDPOINT" envDefault:"http://localhost:9090/v1/review"`

	// Timeout bounds a single review engine call.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5m"`
}

// Sanitize applies guardrails to engine configuration values.
func (e *EngineConfig) Sanitize() {
	if e.Timeout <= 0 {
		e.Timeout = 5 * time.Minute
	}
}

package model

import "time"

// Provider identifies which review-generation backend an installation uses.
type Provider string

const (
	// ProviderOpenAI routes reviews through an OpenAI-compatible engine.
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic routes reviews through an Anthropic-compatible engine.
	ProviderAnthropic Provider = "anthropic"
)

// Valid returns true if the Provider is a known value.
func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

// TenantConfig is the per-installation configuration resolved lazily at job
// execution time. Jobs store the installation id by value; this record is
// looked up fresh (or from cache) per execution so settings changes take
// effect without touching queued jobs.
type TenantConfig struct {
	InstallationID int64     `json:"installation_id" db:"installation_id"`
	AccountLogin   string    `json:"account_login"   db:"account_login"`
	Enabled        bool      `json:"enabled"         db:"enabled"`
	Provider       Provider  `json:"provider"        db:"provider"`
	GitHubToken    string    `json:"github_token"    db:"github_token"`
	EngineToken    string    `json:"engine_token"    db:"engine_token"`
	MaxFindings    int       `json:"max_findings"    db:"max_findings"`
	MaxFiles       int       `json:"max_files"       db:"max_files"`
	CreatedAt      time.Time `json:"created_at"      db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"      db:"updated_at"`
}

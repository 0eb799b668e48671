package config

import "time"

// PollerConfig contains poller, queue, and retry configuration.
type PollerConfig struct {
	// Enabled toggles the poller; disable to run an API-only instance.
	Enabled bool `env:"POLLER_ENABLED" envDefault:"true"`

	// Interval is how often the poller attempts to claim a pending job.
	Interval time.Duration `env:"POLLER_INTERVAL" envDefault:"1s"`

	// MaxConcurrent is the global in-process ceiling on jobs executing at once.
	MaxConcurrent int `env:"POLLER_MAX_CONCURRENT" envDefault:"3"`

	// PerTenantLimit caps concurrent jobs per installation.
	PerTenantLimit int `env:"POLLER_PER_TENANT_LIMIT" envDefault:"1"`

	// MaxAttempts is the default full-attempt budget for a new job.
	MaxAttempts int `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`

	// DedupWindow suppresses re-submission of a tuple that completed this recently.
	DedupWindow time.Duration `env:"QUEUE_DEDUP_WINDOW" envDefault:"5m"`

	// RetryInitialDelay is the first backoff delay for transient call failures.
	RetryInitialDelay time.Duration `env:"RETRY_INITIAL_DELAY" envDefault:"1s"`

	// RetryMaxDelay caps the exponential backoff delay.
	RetryMaxDelay time.Duration `env:"RETRY_MAX_DELAY" envDefault:"10s"`

	// RetryTries is the per-external-call retry budget within one attempt.
	RetryTries int `env:"RETRY_TRIES" envDefault:"3"`
}

// Sanitize applies guardrails to poller configuration values.
func (p *PollerConfig) Sanitize() {
	if p.Interval <= 0 {
		p.Interval = time.Second
	}
	if p.MaxConcurrent < 1 {
		p.MaxConcurrent = 1
	}
	if p.PerTenantLimit < 1 {
		p.PerTenantLimit = 1
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.DedupWindow < 0 {
		p.DedupWindow = 0
	}
	if p.RetryInitialDelay <= 0 {
		p.RetryInitialDelay = time.Second
	}
	if p.RetryMaxDelay < p.RetryInitialDelay {
		p.RetryMaxDelay = p.RetryInitialDelay
	}
	if p.RetryTries < 1 {
		p.RetryTries = 1
	}
}

package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if cfg.IsDev {
		t.Error("expected dev mode to default to false")
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default http addr :8080, got %q", cfg.HTTP.Addr)
	}
	if !cfg.Poller.Enabled {
		t.Error("expected poller to default to enabled")
	}
	if cfg.Poller.Interval != time.Second {
		t.Errorf("expected default poll interval 1s, got %v", cfg.Poller.Interval)
	}
	if cfg.Poller.MaxConcurrent != 3 {
		t.Errorf("expected default max concurrent 3, got %d", cfg.Poller.MaxConcurrent)
	}
	if cfg.Poller.PerTenantLimit != 1 {
		t.Errorf("expected default per-tenant limit 1, got %d", cfg.Poller.PerTenantLimit)
	}
	if cfg.Poller.MaxAttempts != 3 {
		t.Errorf("expected default max attempts 3, got %d", cfg.Poller.MaxAttempts)
	}
	if cfg.Poller.DedupWindow != 5*time.Minute {
		t.Errorf("expected default dedup window 5m, got %v", cfg.Poller.DedupWindow)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("expected default github base url, got %q", cfg.GitHub.BaseURL)
	}
	if !cfg.GitHub.ChecksEnabled {
		t.Error("expected check-run reporting to default to enabled")
	}
	if cfg.Engine.Endpoint == "" {
		t.Error("expected a default engine endpoint")
	}
	if cfg.Engine.Timeout != 5*time.Minute {
		t.Errorf("expected default engine timeout 5m, got %v", cfg.Engine.Timeout)
	}
}

func TestAppConfig_ParseEnv(t *testing.T) {
	t.Setenv("DEV", "true")
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("POLLER_INTERVAL", "250ms")
	t.Setenv("POLLER_MAX_CONCURRENT", "5")
	t.Setenv("QUEUE_MAX_ATTEMPTS", "4")
	t.Setenv("QUEUE_DEDUP_WINDOW", "10m")
	t.Setenv("GITHUB_BASE_URL", "https://github.example.com/api/v3")
	t.Setenv("ENGINE_ENDPOINT", "https://engine.internal/v1/review")
	t.Setenv("ENGINE_TIMEOUT", "2m")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	if !cfg.IsDev {
		t.Error("expected dev mode to be enabled")
	}
	if cfg.Postgres.Host != "pg.internal" {
		t.Errorf("expected db host pg.internal, got %q", cfg.Postgres.Host)
	}
	if cfg.Postgres.Port != 5433 {
		t.Errorf("expected db port 5433, got %d", cfg.Postgres.Port)
	}
	if !cfg.Redis.Enabled {
		t.Error("expected redis to be enabled")
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("expected redis addr redis.internal:6379, got %q", cfg.Redis.Addr)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("expected http addr :9999, got %q", cfg.HTTP.Addr)
	}
	if cfg.Poller.Interval != 250*time.Millisecond {
		t.Errorf("expected poll interval 250ms, got %v", cfg.Poller.Interval)
	}
	if cfg.Poller.MaxConcurrent != 5 {
		t.Errorf("expected max concurrent 5, got %d", cfg.Poller.MaxConcurrent)
	}
	if cfg.Poller.MaxAttempts != 4 {
		t.Errorf("expected max attempts 4, got %d", cfg.Poller.MaxAttempts)
	}
	if cfg.Poller.DedupWindow != 10*time.Minute {
		t.Errorf("expected dedup window 10m, got %v", cfg.Poller.DedupWindow)
	}
	if cfg.GitHub.BaseURL != "https://github.example.com/api/v3" {
		t.Errorf("expected enterprise github base url, got %q", cfg.GitHub.BaseURL)
	}
	if cfg.Engine.Endpoint != "https://engine.internal/v1/review" {
		t.Errorf("expected engine endpoint override, got %q", cfg.Engine.Endpoint)
	}
	if cfg.Engine.Timeout != 2*time.Minute {
		t.Errorf("expected engine timeout 2m, got %v", cfg.Engine.Timeout)
	}
}

func TestPollerConfig_Sanitize(t *testing.T) {
	cfg := PollerConfig{
		Interval:          -1 * time.Second,
		MaxConcurrent:     0,
		PerTenantLimit:    -3,
		MaxAttempts:       0,
		DedupWindow:       -time.Minute,
		RetryInitialDelay: 0,
		RetryMaxDelay:     0,
		RetryTries:        0,
	}

	cfg.Sanitize()

	if cfg.Interval != time.Second {
		t.Errorf("expected interval clamped to 1s, got %v", cfg.Interval)
	}
	if cfg.MaxConcurrent != 1 {
		t.Errorf("expected max concurrent clamped to 1, got %d", cfg.MaxConcurrent)
	}
	if cfg.PerTenantLimit != 1 {
		t.Errorf("expected per-tenant limit clamped to 1, got %d", cfg.PerTenantLimit)
	}
	if cfg.MaxAttempts != 1 {
		t.Errorf("expected max attempts clamped to 1, got %d", cfg.MaxAttempts)
	}
	if cfg.DedupWindow != 0 {
		t.Errorf("expected dedup window clamped to 0, got %v", cfg.DedupWindow)
	}
	if cfg.RetryInitialDelay != time.Second {
		t.Errorf("expected retry initial delay default, got %v", cfg.RetryInitialDelay)
	}
	if cfg.RetryMaxDelay < cfg.RetryInitialDelay {
		t.Errorf("expected retry max delay >= initial delay, got %v", cfg.RetryMaxDelay)
	}
	if cfg.RetryTries != 1 {
		t.Errorf("expected retry tries clamped to 1, got %d", cfg.RetryTries)
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatal("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:8125 ",
		StatsdPrefix:  " diffscope ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatal("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:8125" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.StatsdPrefix != "diffscope" {
		t.Fatalf("expected prefix to be trimmed, got %q", cfg.StatsdPrefix)
	}
}

func TestObservabilityNotificationsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityNotificationsConfig{
		Enabled:    true,
		Timeout:    0,
		RetryLimit: -1,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: " ",
			Channel:    "  ",
			Username:   "",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: " ",
			Source:     "",
			Component:  "",
		},
	}

	cfg.Sanitize()

	if cfg.Timeout <= 0 {
		t.Fatalf("expected timeout to fall back to default, got %v", cfg.Timeout)
	}
	if cfg.RetryLimit < 0 {
		t.Fatalf("expected retry limit to be clamped to >= 0, got %d", cfg.RetryLimit)
	}
	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled without a webhook url")
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled without a routing key")
	}
	if cfg.PagerDuty.Source != "diffscope" {
		t.Fatalf("expected pagerduty source default, got %q", cfg.PagerDuty.Source)
	}
	if cfg.PagerDuty.Component != "diffscope" {
		t.Fatalf("expected pagerduty component default, got %q", cfg.PagerDuty.Component)
	}

	// Disabled top-level should disable child sinks.
	cfg = ObservabilityNotificationsConfig{
		Enabled: false,
		Slack: SlackNotificationConfig{
			Enabled:    true,
			WebhookURL: "https://hooks.slack.com/services/test",
		},
		PagerDuty: PagerDutyNotificationConfig{
			Enabled:    true,
			RoutingKey: "abc",
		},
	}
	cfg.Sanitize()

	if cfg.Slack.Enabled {
		t.Fatal("expected slack to be disabled when top-level notifications disabled")
	}
	if cfg.PagerDuty.Enabled {
		t.Fatal("expected pagerduty to be disabled when top-level notifications disabled")
	}
}

func TestEngineConfig_Sanitize(t *testing.T) {
	cfg := EngineConfig{Timeout: 0}
	cfg.Sanitize()
	if cfg.Timeout != 5*time.Minute {
		t.Errorf("expected engine timeout default 5m, got %v", cfg.Timeout)
	}
}

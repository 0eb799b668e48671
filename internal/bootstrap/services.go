package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/diffscope/diffscope/config"
	"github.com/diffscope/diffscope/internal/adapters/github"
	"github.com/diffscope/diffscope/internal/adapters/poller"
	"github.com/diffscope/diffscope/internal/adapters/reviewer"
	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/retry"
	httpx "github.com/diffscope/diffscope/internal/http"
	"github.com/diffscope/diffscope/internal/observability/notify"
	"github.com/diffscope/diffscope/internal/observability/notify/pagerduty"
	"github.com/diffscope/diffscope/internal/observability/notify/slack"
	"github.com/diffscope/diffscope/internal/observability/statsd"
	"github.com/diffscope/diffscope/internal/service"
)

// ServiceDeps contains the shared dependencies for building services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient // Optional: nil disables the tenant cache
	Logger      *slog.Logger
}

// Services holds the wired application services.
type Services struct {
	Jobs    core.ReviewJobRepository
	Queue   *service.QueueService
	Tenants *service.TenantService
	Poller  *poller.Runner
	Metrics *statsd.Client
}

// NewServices wires repositories, services, and the poller from shared deps.
func NewServices(deps *ServiceDeps) (*Services, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return nil, errors.New("config and database are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	jobRepo := data.NewJobRepo(deps.DB, data.RepoConfig{Logger: logger})
	tenantRepo := data.NewTenantRepo(deps.DB)

	var cache core.CacheRepository
	if deps.RedisClient != nil {
		cache = data.NewRedisCacheRepo(deps.RedisClient)
	}

	queueSvc, err := service.NewQueueService(service.QueueServiceOptions{
		Repo:               jobRepo,
		DedupWindow:        cfg.Poller.DedupWindow,
		DefaultMaxAttempts: cfg.Poller.MaxAttempts,
		Logger:             logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build queue service: %w", err)
	}

	tenantSvc, err := service.NewTenantService(service.TenantServiceOptions{
		Repo:   tenantRepo,
		Cache:  cache,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build tenant service: %w", err)
	}

	metricsClient, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build statsd client: %w", err)
	}

	services := &Services{
		Jobs:    jobRepo,
		Queue:   queueSvc,
		Tenants: tenantSvc,
		Metrics: metricsClient,
	}

	if cfg.Poller.Enabled {
		services.Poller, err = buildPoller(cfg, jobRepo, tenantSvc, metricsClient, logger)
		if err != nil {
			return nil, err
		}
	}

	return services, nil
}

// buildNotifySink assembles the configured failure notification sinks.
func buildNotifySink(cfg *config.ObservabilityNotificationsConfig, logger *slog.Logger) (notify.Sink, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	var sinks notify.MultiSink

	if cfg.Slack.Enabled {
		slackClient, err := slack.NewClient(slack.Config{
			WebhookURL:    cfg.Slack.WebhookURL,
			Channel:       cfg.Slack.Channel,
			Username:      cfg.Slack.Username,
			RepoURLPrefix: cfg.Slack.RepoURLPrefix,
			Timeout:       cfg.Timeout,
			RetryLimit:    cfg.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("build slack sink: %w", err)
		}
		sinks = append(sinks, slackClient)
		logger.Info("slack failure notifications enabled", "channel", cfg.Slack.Channel)
	}

	if cfg.PagerDuty.Enabled {
		pdClient, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDuty.RoutingKey,
			Source:     cfg.PagerDuty.Source,
			Component:  cfg.PagerDuty.Component,
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("build pagerduty sink: %w", err)
		}
		sinks = append(sinks, pdClient)
		logger.Info("pagerduty failure notifications enabled")
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

func buildPoller(
	cfg *config.AppConfig,
	jobs core.ReviewJobRepository,
	tenants *service.TenantService,
	metricsClient *statsd.Client,
	logger *slog.Logger,
) (*poller.Runner, error) {
	engine, err := reviewer.NewClient(reviewer.Config{
		Endpoint: cfg.Engine.Endpoint,
		Timeout:  cfg.Engine.Timeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build reviewer client: %w", err)
	}

	var checks core.CheckReporter
	if cfg.GitHub.ChecksEnabled {
		checks = github.NewReporter(github.Config{
			BaseURL: cfg.GitHub.BaseURL,
			Timeout: cfg.GitHub.Timeout,
			Logger:  logger,
		})
	}

	notifier, err := buildNotifySink(&cfg.Observability.Notifications, logger)
	if err != nil {
		return nil, err
	}

	var sink statsd.Sink
	if metricsClient.Enabled() {
		sink = metricsClient
	}

	runner, err := poller.NewRunner(poller.Options{
		Jobs:           jobs,
		Tenants:        tenants,
		Reviewer:       engine,
		Checks:         checks,
		Logger:         logger,
		Metrics:        sink,
		Notify:         notifier,
		Interval:       cfg.Poller.Interval,
		MaxConcurrent:  cfg.Poller.MaxConcurrent,
		PerTenantLimit: cfg.Poller.PerTenantLimit,
		RetryPolicy: retry.Policy{
			Initial: cfg.Poller.RetryInitialDelay,
			Max:     cfg.Poller.RetryMaxDelay,
		},
		RetryTries: cfg.Poller.RetryTries,
	})
	if err != nil {
		return nil, fmt.Errorf("build poller: %w", err)
	}
	return runner, nil
}

// Run starts the HTTP server and the poller and blocks until a shutdown
// signal arrives or a component fails. On shutdown the HTTP server closes
// first and the poller drains its in-flight jobs before Run returns.
func Run(ctx context.Context, cfg *config.AppConfig, services *Services, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	router := httpx.NewRouter(httpx.RouterServices{
		Queue:     services.Queue,
		StartedAt: time.Now(),
		Logger:    logger,
	})

	addr := cfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(gctx, "starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})

	if services.Poller != nil {
		g.Go(func() error {
			return services.Poller.Run(gctx)
		})
	}

	return g.Wait()
}

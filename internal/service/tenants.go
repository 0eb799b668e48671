package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/diffscope/diffscope/internal/core"
	"github.com/diffscope/diffscope/internal/domain/model"
)

// DefaultTenantCacheTTL bounds how stale a cached tenant configuration may be.
const DefaultTenantCacheTTL = 5 * time.Minute

// TenantServiceOptions groups dependencies for TenantService.
type TenantServiceOptions struct {
	Repo     core.TenantRepository // Required: installation repository
	Cache    core.CacheRepository  // Optional: lookups go to the database when nil
	CacheTTL time.Duration         // Optional: defaults to DefaultTenantCacheTTL
	Logger   *slog.Logger          // Optional: structured logger
}

// TenantService resolves per-installation configuration, with an optional
// Redis-backed cache in front of the database. Jobs resolve configuration at
// execution time, so a short TTL keeps settings changes visible without a
// database round trip per job.
type TenantService struct {
	repo   core.TenantRepository
	cache  core.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewTenantService constructs a new TenantService.
func NewTenantService(opts TenantServiceOptions) (*TenantService, error) {
	if opts.Repo == nil {
		return nil, errors.New("TenantRepository is required")
	}

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultTenantCacheTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "tenant_service")
	}

	return &TenantService{
		repo:   opts.Repo,
		cache:  opts.Cache,
		ttl:    ttl,
		logger: logger,
	}, nil
}

// Lookup resolves the configuration for an installation. Cache failures are
// logged and fall through to the database; only database errors propagate.
func (s *TenantService) Lookup(ctx context.Context, installationID int64) (*model.TenantConfig, error) {
	key := tenantCacheKey(installationID)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			if s.logger != nil {
				s.logger.WarnContext(ctx, "tenant cache read failed",
					"installation_id", installationID,
					"error", err,
				)
			}
		case len(raw) > 0:
			var cfg model.TenantConfig
			if unmarshalErr := json.Unmarshal(raw, &cfg); unmarshalErr == nil {
				return &cfg, nil
			}
			// Unreadable cache entry; fall through and overwrite it below.
		}
	}

	cfg, err := s.repo.GetByInstallationID(ctx, installationID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, marshalErr := json.Marshal(cfg); marshalErr == nil {
			if setErr := s.cache.Set(ctx, key, raw, s.ttl); setErr != nil && s.logger != nil {
				s.logger.WarnContext(ctx, "tenant cache write failed",
					"installation_id", installationID,
					"error", setErr,
				)
			}
		}
	}

	return cfg, nil
}

// Invalidate drops the cached configuration for an installation.
func (s *TenantService) Invalidate(ctx context.Context, installationID int64) error {
	if s.cache == nil {
		return nil
	}
	if _, err := s.cache.Delete(ctx, tenantCacheKey(installationID)); err != nil {
		return fmt.Errorf("invalidate tenant cache: %w", err)
	}
	return nil
}

func tenantCacheKey(installationID int64) string {
	return "tenant:config:" + strconv.FormatInt(installationID, 10)
}

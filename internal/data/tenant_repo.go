package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/diffscope/diffscope/internal/domain/model"
)

// ErrTenantNotFound is returned when no installation matches the given id.
var ErrTenantNotFound = errors.New("tenant installation not found")

// TenantRepo provides database operations for per-installation configuration.
type TenantRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewTenantRepo creates a new TenantRepo with the given database connection.
func NewTenantRepo(db *sql.DB) *TenantRepo {
	return &TenantRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

const tenantColumns = `
  installation_id,
  account_login,
  enabled,
  provider,
  github_token,
  engine_token,
  max_findings,
  max_files,
  created_at,
  updated_at
`

// GetByInstallationID retrieves the configuration for one installation.
func (r *TenantRepo) GetByInstallationID(
	ctx context.Context,
	installationID int64,
) (*model.TenantConfig, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+tenantColumns+`
		FROM installations
		WHERE installation_id = $1
	`, installationID)

	var cfg model.TenantConfig
	err := row.Scan(
		&cfg.InstallationID,
		&cfg.AccountLogin,
		&cfg.Enabled,
		&cfg.Provider,
		&cfg.GitHubToken,
		&cfg.EngineToken,
		&cfg.MaxFindings,
		&cfg.MaxFiles,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get installation: %w", err)
	}
	return &cfg, nil
}

// Upsert creates or updates an installation's configuration.
func (r *TenantRepo) Upsert(ctx context.Context, cfg *model.TenantConfig) error {
	if cfg == nil {
		return errors.New("tenant config is required")
	}
	if cfg.InstallationID <= 0 {
		return errors.New("installation id is required")
	}

	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO installations (
		  installation_id, account_login, enabled, provider,
		  github_token, engine_token, max_findings, max_files, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
		ON CONFLICT (installation_id) DO UPDATE
		SET account_login = EXCLUDED.account_login,
		    enabled = EXCLUDED.enabled,
		    provider = EXCLUDED.provider,
		    github_token = EXCLUDED.github_token,
		    engine_token = EXCLUDED.engine_token,
		    max_findings = EXCLUDED.max_findings,
		    max_files = EXCLUDED.max_files,
		    updated_at = EXCLUDED.updated_at
	`,
		cfg.InstallationID,
		cfg.AccountLogin,
		cfg.Enabled,
		cfg.Provider,
		cfg.GitHubToken,
		cfg.EngineToken,
		cfg.MaxFindings,
		cfg.MaxFiles,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert installation: %w", err)
	}
	return nil
}

// Package devseed populates a development database with installations so a
// locally submitted review job can run end to end without a real GitHub App.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/diffscope/diffscope/internal/data"
	"github.com/diffscope/diffscope/internal/domain/model"
)

// Seed upserts the development installations. It is idempotent and safe to
// run on every dev startup.
func Seed(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if db == nil {
		return errors.New("database is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	repo := data.NewTenantRepo(db)
	installations := []*model.TenantConfig{
		{
			InstallationID: 1001,
			AccountLogin:   "acme",
			Enabled:        true,
			Provider:       "anthropic",
			GitHubToken:    "ghs_dev_token",
			EngineToken:    "engine_dev_token",
			MaxFindings:    20,
			MaxFiles:       50,
		},
		{
			InstallationID: 1002,
			AccountLogin:   "disabled-org",
			Enabled:        false,
			Provider:       "anthropic",
			GitHubToken:    "ghs_dev_token_disabled",
			EngineToken:    "engine_dev_token_disabled",
			MaxFindings:    20,
			MaxFiles:       50,
		},
	}

	for _, cfg := range installations {
		if err := repo.Upsert(ctx, cfg); err != nil {
			return fmt.Errorf("seed installation %d: %w", cfg.InstallationID, err)
		}
		logger.InfoContext(ctx, "seeded dev installation",
			"installation_id", cfg.InstallationID,
			"account", cfg.AccountLogin,
			"enabled", cfg.Enabled,
		)
	}

	return nil
}

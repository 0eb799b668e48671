package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diffscope/diffscope/internal/testutil"
)

func TestTenantRepo_Integration_UpsertAndGet(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTenantRepo(db)

		_, err := repo.GetByInstallationID(context.Background(), 1001)
		require.ErrorIs(t, err, ErrTenantNotFound)

		cfg := testutil.NewTenantConfig(1001)
		require.NoError(t, repo.Upsert(context.Background(), cfg))

		got, err := repo.GetByInstallationID(context.Background(), 1001)
		require.NoError(t, err)
		assert.Equal(t, cfg.InstallationID, got.InstallationID)
		assert.Equal(t, cfg.AccountLogin, got.AccountLogin)
		assert.True(t, got.Enabled)
		assert.Equal(t, cfg.GitHubToken, got.GitHubToken)
		assert.Equal(t, cfg.EngineToken, got.EngineToken)
		assert.Equal(t, cfg.MaxFindings, got.MaxFindings)
		assert.Equal(t, cfg.MaxFiles, got.MaxFiles)
		assert.False(t, got.CreatedAt.IsZero())
	})
}

func TestTenantRepo_Integration_UpsertUpdatesExisting(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTenantRepo(db)

		cfg := testutil.NewTenantConfig(1001)
		require.NoError(t, repo.Upsert(context.Background(), cfg))

		cfg.Enabled = false
		cfg.GitHubToken = "ghs_rotated_token"
		cfg.MaxFindings = 5
		require.NoError(t, repo.Upsert(context.Background(), cfg))

		got, err := repo.GetByInstallationID(context.Background(), 1001)
		require.NoError(t, err)
		assert.False(t, got.Enabled)
		assert.Equal(t, "ghs_rotated_token", got.GitHubToken)
		assert.Equal(t, 5, got.MaxFindings)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))
	})
}

func TestTenantRepo_Integration_UpsertValidation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewTenantRepo(db)

		require.Error(t, repo.Upsert(context.Background(), nil))

		cfg := testutil.NewTenantConfig(0)
		require.Error(t, repo.Upsert(context.Background(), cfg))
	})
}

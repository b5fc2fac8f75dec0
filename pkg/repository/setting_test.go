package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/tradescope/pkg/domain"
)

func TestSettingRepository(t *testing.T) {
	repos, _ := setupTestDB(t)
	ctx := context.Background()

	val, err := repos.Setting.GetSetting(ctx, domain.SettingQuotaToken)
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingQuotaToken, "tok-1"))
	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingQuotaToken, "tok-2"))
	require.NoError(t, repos.Setting.SetSetting(ctx, domain.SettingScrapedEnabled, "false"))

	val, err = repos.Setting.GetSetting(ctx, domain.SettingQuotaToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", val)

	all, err := repos.Setting.ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{domain.SettingQuotaToken: "tok-2", domain.SettingScrapedEnabled: "false"}, all)
}

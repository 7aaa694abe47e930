package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "mysql", cfg.Source.Driver)
	assert.Equal(t, 0, cfg.Source.BatchLimit)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "tlf-archive", cfg.Storage.Bucket)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 30, cfg.Sync.IntervalSeconds)
	assert.Equal(t, "tlf:", cfg.Sync.ChannelPrefix)

	opts, err := cfg.Sync.Options()
	require.NoError(t, err)
	assert.Len(t, opts.ExitPoints, 4)
	assert.Len(t, opts.BufferSlots, 2)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "SOURCE_HOST=tlf-controller\nSOURCE_BATCH_LIMIT=500\nSYNC_INTERVAL_SECONDS=15\nREDIS_ENABLED=true\nDATABASE_DRIVER=sqlite\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"SOURCE_HOST", "SOURCE_BATCH_LIMIT", "SYNC_INTERVAL_SECONDS", "REDIS_ENABLED", "DATABASE_DRIVER"} {
			os.Unsetenv(k)
		}
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "tlf-controller", cfg.Source.Host)
	assert.Equal(t, 500, cfg.Source.BatchLimit)
	assert.Equal(t, 15, cfg.Sync.IntervalSeconds)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

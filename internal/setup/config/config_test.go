package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalyx/deeplweb/internal/setup/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o600))
	return dir
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	assert.Equal(t, config.CurrentVersion, cfg.Version)
	assert.Equal(t, config.DefaultRPCURL, cfg.Provider.RPCURL)
	assert.Equal(t, config.DefaultStateURL, cfg.Provider.StateURL)
	assert.Equal(t, 5*time.Second, cfg.Provider.MinIntervalDuration())
	assert.Equal(t, []string{"EN", "FR"}, cfg.Provider.PreferredLangs)
	assert.Equal(t, "info", cfg.Debug.LogLevel)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFrom(t *testing.T) {
	t.Parallel()

	dir := writeConfig(t, `
version = 1

[debug]
log_level = "debug"

[provider]
min_interval = 7500
preferred_langs = ["DE"]
local_split = true
quality = "fast"

[redis]
enabled = true
port = 6380
`)

	cfg, used, err := config.LoadFrom([]string{filepath.Join(dir, "missing"), dir})
	require.NoError(t, err)

	assert.Equal(t, dir, used)
	assert.Equal(t, "debug", cfg.Debug.LogLevel)
	assert.Equal(t, 7500*time.Millisecond, cfg.Provider.MinIntervalDuration())
	assert.Equal(t, []string{"DE"}, cfg.Provider.PreferredLangs)
	assert.True(t, cfg.Provider.LocalSplit)
	assert.Equal(t, "fast", cfg.Provider.Quality)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6380, cfg.Redis.Port)

	// Unset fields fall back to defaults.
	assert.Equal(t, config.DefaultRPCURL, cfg.Provider.RPCURL)
	assert.Equal(t, "localhost", cfg.Redis.Host)
}

func TestLoadFromErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		expectedErr error
	}{
		{
			name:        "missing version",
			content:     "[debug]\nlog_level = \"warn\"\n",
			expectedErr: config.ErrConfigVersionMissing,
		},
		{
			name:        "version mismatch",
			content:     "version = 99\n",
			expectedErr: config.ErrConfigVersionMismatch,
		},
		{
			name:        "proxy without scheme",
			content:     "version = 1\n[provider]\nproxies = [\"127.0.0.1:8080\"]\n",
			expectedErr: config.ErrInvalidProxy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := config.LoadFrom([]string{writeConfig(t, tt.content)})
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	t.Run("no config file", func(t *testing.T) {
		t.Parallel()

		_, _, err := config.LoadFrom([]string{t.TempDir()})
		require.ErrorIs(t, err, config.ErrConfigFileNotFound)
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	// The file was created with restrictive permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second load reads it back.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_NormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \"0.0.0.0:9000\"\nweek_start: tuesday\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, "sunday", cfg.WeekStart, "unknown week start falls back")
	assert.Equal(t, "linecal.db", cfg.DBPath)
	assert.Equal(t, "Asia/Tokyo", cfg.Timezone)
	assert.Equal(t, 30, cfg.ReconcileMinutes)
	assert.Equal(t, "local", cfg.Profile.UserID)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Listen = "127.0.0.1:9999"
	cfg.Telegram = TelegramConfig{Token: "tok", ChatID: 42}
	cfg.BasicAuth = &BasicAuthConfig{Username: "u", Password: "p"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestWeekStartsOn(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.WeekStartsOn())
	cfg.WeekStart = "monday"
	assert.Equal(t, 1, cfg.WeekStartsOn())
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv("LINECAL_CONFIG", "/tmp/custom.yaml")
	assert.Equal(t, "/tmp/custom.yaml", Path())

	t.Setenv("LINECAL_CONFIG", "")
	assert.Equal(t, DefaultPath, Path())
}

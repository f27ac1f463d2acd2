package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GUARDIA_CONFIG_PATH", "GUARDIA_DB_PATH", "GUARDIA_NATS_URL",
		"GUARDIA_NATS_PREFIX", "GUARDIA_LOG_LEVEL", "GUARDIA_CONFIRM_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "guardia.db", cfg.DB.Path)
	require.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	require.Equal(t, "guardia", cfg.NATS.SubjectPrefix)
	require.Equal(t, "info", cfg.Log.Level)
	require.True(t, cfg.Projects.Enabled)
	require.Equal(t, 15*time.Second, cfg.Projects.ConfirmWindow())
	require.False(t, cfg.Projects.DeleteOnTerminate)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /var/lib/guardia/bot.db
nats:
  url: nats://nats.internal:4222
projects:
  confirm_timeout_seconds: 30
  delete_on_terminate: true
`), 0o600))
	t.Setenv("GUARDIA_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/guardia/bot.db", cfg.DB.Path)
	require.Equal(t, "nats://nats.internal:4222", cfg.NATS.URL)
	require.Equal(t, 30*time.Second, cfg.Projects.ConfirmWindow())
	require.True(t, cfg.Projects.DeleteOnTerminate)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  path: from-file.db\n"), 0o600))
	t.Setenv("GUARDIA_CONFIG_PATH", path)
	t.Setenv("GUARDIA_DB_PATH", "from-env.db")
	t.Setenv("GUARDIA_CONFIRM_TIMEOUT_SECONDS", "45")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env.db", cfg.DB.Path)
	require.Equal(t, 45, cfg.Projects.ConfirmTimeoutSeconds)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("GUARDIA_CONFIRM_TIMEOUT_SECONDS", "0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("GUARDIA_CONFIRM_TIMEOUT_SECONDS", "abc")
	_, err = Load()
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "laptrack.db", cfg.DB.Path)
	require.Equal(t, "laptrack-local", cfg.Local.Dir)
	require.Equal(t, "stdio", cfg.Transport.Mode)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LAPTRACK_SERVER_HOST", "127.0.0.1")
	t.Setenv("LAPTRACK_SERVER_PORT", "9090")
	t.Setenv("LAPTRACK_DB_PATH", "/tmp/test.db")
	t.Setenv("LAPTRACK_LOCAL_DIR", "/tmp/local")
	t.Setenv("LAPTRACK_TRANSPORT", "http")
	t.Setenv("LAPTRACK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", cfg.Server.Host)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "/tmp/test.db", cfg.DB.Path)
	require.Equal(t, "/tmp/local", cfg.Local.Dir)
	require.Equal(t, "http", cfg.Transport.Mode)
	require.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 7070\ndb:\n  path: file.db\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	t.Setenv("LAPTRACK_CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "file.db", cfg.DB.Path)
	require.Equal(t, "0.0.0.0", cfg.Server.Host, "defaults kept for unset fields")
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("LAPTRACK_SERVER_PORT", "not-a-port")
	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidTransport(t *testing.T) {
	t.Setenv("LAPTRACK_TRANSPORT", "carrier-pigeon")
	_, err := Load()
	require.Error(t, err)
}

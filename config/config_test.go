package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/moonsters/evolution-cache/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "evocache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.Equal(t, "evolutionMoonCache", cfg.Storage.Key)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
storage:
  driver: sqlite
  sqlite_path: /tmp/moon.db
pokeapi:
  timeout: 3s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	require.Equal(t, "/tmp/moon.db", cfg.Storage.SQLitePath)
	require.Equal(t, 3*time.Second, cfg.PokeAPI.Timeout)
	// untouched fields keep their defaults
	require.Equal(t, Defaults().PokeAPI.BaseURL, cfg.PokeAPI.BaseURL)
	require.Equal(t, Defaults().Storage.Key, cfg.Storage.Key)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: sqlite\n")
	t.Setenv("EVOCACHE_STORAGE_DRIVER", "redis")
	t.Setenv("EVOCACHE_STORAGE_REDIS_URL", "redis://cache:6379/2")
	t.Setenv("EVOCACHE_POKEAPI_RATE_LIMIT", "0.5")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, storage.DriverRedis, cfg.Storage.Driver)
	require.Equal(t, "redis://cache:6379/2", cfg.StorageSettings().RedisURL)
	require.Equal(t, 0.5, cfg.PokeAPI.RateLimit)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "storage: [not, a, map]"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "storage:\n  driver: floppy\n"))
	require.ErrorContains(t, err, "floppy")

	t.Setenv("EVOCACHE_POKEAPI_TIMEOUT", "soon")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Driver = storage.DriverFile
	cfg.Storage.FileDir = ""
	require.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Storage.Key = ""
	require.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Storage.Driver = storage.DriverNone
	require.NoError(t, cfg.Validate())
}

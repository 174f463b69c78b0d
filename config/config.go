// Package config loads evocache settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/moonsters/evolution-cache/pokeapi"
	"github.com/moonsters/evolution-cache/storage"
	"github.com/moonsters/evolution-cache/types"
)

type Storage struct {
	Driver      string `yaml:"driver" env:"EVOCACHE_STORAGE_DRIVER"`
	Key         string `yaml:"key" env:"EVOCACHE_STORAGE_KEY"`
	FileDir     string `yaml:"file_dir" env:"EVOCACHE_STORAGE_FILE_DIR"`
	SQLitePath  string `yaml:"sqlite_path" env:"EVOCACHE_STORAGE_SQLITE_PATH"`
	RedisURL    string `yaml:"redis_url" env:"EVOCACHE_STORAGE_REDIS_URL"`
	RedisPrefix string `yaml:"redis_prefix" env:"EVOCACHE_STORAGE_REDIS_PREFIX"`
}

type PokeAPI struct {
	BaseURL   string        `yaml:"base_url" env:"EVOCACHE_POKEAPI_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" env:"EVOCACHE_POKEAPI_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" env:"EVOCACHE_POKEAPI_RATE_LIMIT"`
	Burst     int           `yaml:"burst" env:"EVOCACHE_POKEAPI_BURST"`
}

type Config struct {
	LogLevel string  `yaml:"log_level" env:"EVOCACHE_LOG_LEVEL"`
	Storage  Storage `yaml:"storage"`
	PokeAPI  PokeAPI `yaml:"pokeapi"`
}

func Defaults() Config {
	return Config{
		LogLevel: "info",
		Storage: Storage{
			Driver:      storage.DriverFile,
			Key:         types.DefaultStorageKey,
			FileDir:     ".evocache",
			SQLitePath:  "evocache.db",
			RedisURL:    "redis://localhost:6379/0",
			RedisPrefix: "evocache:",
		},
		PokeAPI: PokeAPI{
			BaseURL:   pokeapi.DefaultBaseURL,
			Timeout:   10 * time.Second,
			RateLimit: 5,
			Burst:     5,
		},
	}
}

/*
Load builds a Config.

BEHAVIOR:
- start from Defaults()
- if path is non-empty, the YAML file overrides the fields it sets; a
  missing file is an error
- EVOCACHE_* environment variables override both
- the result is validated
*/
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config from environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage.Driver {
	case storage.DriverNone, storage.DriverMemory:
	case storage.DriverFile:
		if c.Storage.FileDir == "" {
			return errors.New("storage.file_dir is required for the file driver")
		}
	case storage.DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case storage.DriverRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("storage.redis_url is required for the redis driver")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("storage.key must not be empty")
	}
	if c.PokeAPI.BaseURL == "" {
		return errors.New("pokeapi.base_url must not be empty")
	}
	if c.PokeAPI.Timeout <= 0 {
		return errors.Errorf("pokeapi.timeout must be positive, got %s", c.PokeAPI.Timeout)
	}
	return nil
}

func (c Config) StorageSettings() storage.Settings {
	return storage.Settings{
		Driver:      c.Storage.Driver,
		FileDir:     c.Storage.FileDir,
		SQLitePath:  c.Storage.SQLitePath,
		RedisURL:    c.Storage.RedisURL,
		RedisPrefix: c.Storage.RedisPrefix,
	}
}

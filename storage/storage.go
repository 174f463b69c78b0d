// Package storage provides the persistent key-value slots the cache and the
// lists write through to. The shape mirrors browser storage: one string value
// per key, read whole and written whole.
package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Backend is a durable key-value store.
type Backend interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem creates or overwrites the value for key.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error

	// Close releases connections or file handles.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

const probeKey = "__evocache_probe__"

// Settings selects and configures a backend.
type Settings struct {
	Driver      string
	FileDir     string
	SQLitePath  string
	RedisURL    string
	RedisPrefix string
}

/*
Open builds the backend named by s.Driver.

DriverNone returns a nil Backend and no error: the caller runs without
persistence.
*/
func Open(ctx context.Context, s Settings) (Backend, error) {
	switch s.Driver {
	case DriverNone, "":
		return nil, nil
	case DriverMemory:
		return NewMemoryBackend(), nil
	case DriverFile:
		return NewFileBackend(s.FileDir)
	case DriverSQLite:
		return NewSQLiteBackend(ctx, s.SQLitePath)
	case DriverRedis:
		return NewRedisBackendFromURL(ctx, s.RedisURL, s.RedisPrefix)
	default:
		return nil, errors.Errorf("unknown storage driver %q", s.Driver)
	}
}

/*
Probe checks that b can actually store and remove a value.

This is the capability check run once when a cache is constructed: a backend
that fails here is treated as unavailable for the rest of the session.
*/
func Probe(ctx context.Context, b Backend) error {
	if b == nil {
		return errors.New("no backend configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := b.SetItem(ctx, probeKey, "1"); err != nil {
		return errors.Wrap(err, "probe write")
	}
	if err := b.RemoveItem(ctx, probeKey); err != nil {
		return errors.Wrap(err, "probe remove")
	}
	return nil
}

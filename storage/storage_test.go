package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()

	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)

	sb, err := NewSQLiteBackend(ctx, filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sb.Close() })

	mr := miniredis.RunT(t)
	rb := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")
	t.Cleanup(func() { _ = rb.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fb,
		"sqlite": sb,
		"redis":  rb,
	}
}

func TestBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := b.GetItem(ctx, "evolutionMoonCache")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, b.SetItem(ctx, "evolutionMoonCache", `{"timestamp":1}`))
			v, ok, err := b.GetItem(ctx, "evolutionMoonCache")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"timestamp":1}`, v)

			require.NoError(t, b.SetItem(ctx, "evolutionMoonCache", `{"timestamp":2}`))
			v, _, err = b.GetItem(ctx, "evolutionMoonCache")
			require.NoError(t, err)
			require.Equal(t, `{"timestamp":2}`, v)

			require.NoError(t, b.RemoveItem(ctx, "evolutionMoonCache"))
			_, ok, err = b.GetItem(ctx, "evolutionMoonCache")
			require.NoError(t, err)
			require.False(t, ok)

			// removing twice is fine
			require.NoError(t, b.RemoveItem(ctx, "evolutionMoonCache"))
		})
	}
}

func TestProbe(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, Probe(ctx, b))
			_, ok, err := b.GetItem(ctx, probeKey)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
	require.Error(t, Probe(ctx, nil))
}

func TestFileBackendEscapesKeys(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, fb.SetItem(context.Background(), "a/b", "x"))
	_, err = os.Stat(filepath.Join(dir, "a%2Fb.json"))
	require.NoError(t, err)
}

func TestFileBackendUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	err = fb.SetItem(context.Background(), "k", "v")
	require.Error(t, err)
}

func TestRedisBackendPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rb := NewRedisBackend(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "moon:")
	defer func() { _ = rb.Close() }()

	require.NoError(t, rb.SetItem(context.Background(), "k", "v"))
	got, err := mr.Get("moon:k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestRedisBackendFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rb, err := NewRedisBackendFromURL(ctx, "redis://"+mr.Addr(), "")
	require.NoError(t, err)
	require.NoError(t, rb.Close())

	_, err = NewRedisBackendFromURL(ctx, "not a url", "")
	require.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Settings{Driver: DriverNone})
	require.NoError(t, err)
	require.Nil(t, b)

	b, err = Open(ctx, Settings{Driver: DriverMemory})
	require.NoError(t, err)
	require.IsType(t, &MemoryBackend{}, b)

	b, err = Open(ctx, Settings{Driver: DriverFile, FileDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &FileBackend{}, b)

	b, err = Open(ctx, Settings{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteBackend{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, Settings{Driver: DriverFile})
	require.Error(t, err)

	_, err = Open(ctx, Settings{Driver: "localStorage"})
	require.Error(t, err)
}

type failingBackend struct{ MemoryBackend }

func (*failingBackend) SetItem(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func TestProbeFailingBackend(t *testing.T) {
	err := Probe(context.Background(), &failingBackend{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// FileBackend stores each key as its own file under dir.
type FileBackend struct {
	dir string
}

var _ Backend = &FileBackend{}

func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, errors.New("file storage: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "file storage: create %s", dir)
	}
	return &FileBackend{dir: dir}, nil
}

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

func (f *FileBackend) GetItem(_ context.Context, key string) (string, bool, error) {
	b, err := os.ReadFile(f.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "file storage: read %s", key)
	}
	return string(b), true, nil
}

// SetItem writes to a temp file in the same directory and renames it over the
// target, so readers never see a partial value.
func (f *FileBackend) SetItem(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "file storage: temp file for %s", key)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "file storage: write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "file storage: close %s", key)
	}
	if err := os.Rename(tmp.Name(), f.Path(key)); err != nil {
		return errors.Wrapf(err, "file storage: rename %s", key)
	}
	return nil
}

func (f *FileBackend) RemoveItem(_ context.Context, key string) error {
	err := os.Remove(f.Path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "file storage: remove %s", key)
	}
	return nil
}

func (f *FileBackend) Close() error { return nil }

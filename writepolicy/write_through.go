package writepolicy

import (
	"context"

	"github.com/pkg/errors"

	"github.com/moonsters/evolution-cache/storage"
	"github.com/moonsters/evolution-cache/types"
)

/*
WriteThroughPolicy re-serializes the whole snapshot and writes it to the
backend before OnWrite returns.

Cache write → full snapshot encode → storage write (synchronous)
*/
type WriteThroughPolicy struct {
	backend storage.Backend
	key     string
}

func NewWriteThroughPolicy(backend storage.Backend, key string) *WriteThroughPolicy {
	return &WriteThroughPolicy{backend: backend, key: key}
}

func (w *WriteThroughPolicy) OnWrite(ctx context.Context, snap *types.Snapshot) error {
	raw, err := snap.Encode()
	if err != nil {
		return errors.Wrap(types.ErrWriteFailure, err.Error())
	}
	if err := w.backend.SetItem(ctx, w.key, string(raw)); err != nil {
		return errors.Wrap(types.ErrWriteFailure, err.Error())
	}
	return nil
}

// Close has nothing to flush: every write already reached storage.
func (w *WriteThroughPolicy) Close() {}

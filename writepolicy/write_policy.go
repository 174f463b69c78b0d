package writepolicy

import (
	"context"

	"github.com/moonsters/evolution-cache/types"
)

/*
WritePolicy is the contract for getting the in-memory state into storage.
The engine does not care how the snapshot is stored. It hands over the full
snapshot after every mutation and reports a returned error.
*/
type WritePolicy interface {

	// OnWrite is called with the complete snapshot after every Set.
	OnWrite(ctx context.Context, snap *types.Snapshot) error

	// Close is called when the cache is shutting down.
	Close()
}

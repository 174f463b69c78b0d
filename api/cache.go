package api

import (
	"context"

	"github.com/moonsters/evolution-cache/types"
)

/*
Cache defines the PUBLIC API of the evolution cache as the hosting
application sees it. Storage variants, expiry and write-through are hidden
behind it.

Nothing here returns an error. The cache is an optimization in front of a
re-fetchable source, so every failure resolves to "value" or "absent".
*/
type Cache interface {

	/*
		Get retrieves the record for id.

		BEHAVIOR:
		---------
		- Present in memory: returns a copy and true
		- Otherwise: returns the zero record and false
		- Never reads storage, never fetches
	*/
	Get(id int) (types.EvolutionRecord, bool)

	// Has reports whether Get would return true.
	Has(id int) bool

	/*
		Set stores a record and writes the WHOLE cache through to storage
		before returning. Storage failures are logged, not returned.
	*/
	Set(ctx context.Context, id int, record types.EvolutionRecord)

	/*
		Load restores the persisted snapshot, if there is a fresh one.

		WHEN TO CALL:
		-------------
		- Once at startup, before the first Get that should see persisted data
	*/
	Load(ctx context.Context)

	// Close releases resources. Called at shutdown.
	Close()
}

// Lookup is the read-through view: consult the cache, fetch on a miss.
type Lookup interface {
	Resolve(ctx context.Context, id int) (types.EvolutionRecord, error)
}

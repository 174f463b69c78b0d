package types

import "context"

/*
Fetcher is the contract between the cache and the source of truth.

The cache itself never calls it. A Resolver consults the cache first and only
on a miss asks the Fetcher:
 1. Resolver checks memory → id not found
 2. Resolver calls FetchEvolution(id)
 3. Fetcher talks to the evolution API
 4. Resolver stores the result with Set (write-through)
 5. Resolver returns the record
*/
type Fetcher interface {
	FetchEvolution(ctx context.Context, id int) (EvolutionRecord, error)
}

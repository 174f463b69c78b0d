package cache

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/moonsters/evolution-cache/api"
	"github.com/moonsters/evolution-cache/types"
)

var (
	_ api.Cache  = (*EvolutionCache)(nil)
	_ api.Lookup = (*Resolver)(nil)
)

/*
Resolver puts a Fetcher behind an EvolutionCache: hits are served from
memory, misses are fetched once and stored with Set.
*/
type Resolver struct {
	cache   *EvolutionCache
	fetcher types.Fetcher

	// sf collapses concurrent misses for the same id into one fetch.
	sf singleflight.Group
}

func NewResolver(c *EvolutionCache, f types.Fetcher) *Resolver {
	return &Resolver{cache: c, fetcher: f}
}

/*
Resolve returns the record for id, fetching it on a miss.

Unlike the cache, Resolve does return errors: a failed fetch means there is
no record to give back. Failed fetches are not cached.

The shared fetch is detached from any single caller's cancellation. Each
caller waits on its own ctx, so one caller giving up does not fail the
others waiting on the same id.
*/
func (r *Resolver) Resolve(ctx context.Context, id int) (types.EvolutionRecord, error) {
	if rec, ok := r.cache.Get(id); ok {
		return rec, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := r.sf.DoChan(strconv.Itoa(id), func() (any, error) {
		rec, err := r.fetcher.FetchEvolution(shared, id)
		if err != nil {
			return nil, errors.Wrapf(err, "fetch evolution %d", id)
		}
		r.cache.Set(shared, id, rec)
		return rec, nil
	})

	select {
	case <-ctx.Done():
		return types.EvolutionRecord{}, errors.Wrapf(ctx.Err(), "resolve evolution %d", id)
	case res := <-ch:
		if res.Err != nil {
			return types.EvolutionRecord{}, res.Err
		}
		return res.Val.(types.EvolutionRecord).Clone(), nil
	}
}

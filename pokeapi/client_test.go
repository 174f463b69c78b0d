package pokeapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/moonsters/evolution-cache/types"
)

const bulbasaurChain = `{
  "id": 1,
  "chain": {
    "species": {"name": "bulbasaur", "url": "%[1]s/pokemon-species/1/"},
    "evolution_details": [],
    "evolves_to": [{
      "species": {"name": "ivysaur", "url": "%[1]s/pokemon-species/2/"},
      "evolution_details": [{"min_level": 16, "trigger": {"name": "level-up", "url": ""}, "item": null, "time_of_day": ""}],
      "evolves_to": [{
        "species": {"name": "venusaur", "url": "%[1]s/pokemon-species/3/"},
        "evolution_details": [{"min_level": 32, "trigger": {"name": "level-up", "url": ""}}],
        "evolves_to": []
      }]
    }]
  }
}`

const eeveeChain = `{
  "id": 67,
  "chain": {
    "species": {"name": "eevee", "url": "%[1]s/pokemon-species/133/"},
    "evolution_details": [],
    "evolves_to": [
      {
        "species": {"name": "vaporeon", "url": "%[1]s/pokemon-species/134/"},
        "evolution_details": [{"item": {"name": "water-stone"}, "trigger": {"name": "use-item"}}],
        "evolves_to": []
      },
      {
        "species": {"name": "espeon", "url": "%[1]s/pokemon-species/196/"},
        "evolution_details": [{"min_happiness": 160, "time_of_day": "day", "trigger": {"name": "level-up"}}],
        "evolves_to": []
      }
    ]
  }
}`

type fakeAPI struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{}
	mux := http.NewServeMux()
	species := func(chainID int) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			f.hits.Add(1)
			_, _ = fmt.Fprintf(w, `{"id":1,"name":"x","evolution_chain":{"url":"%s/evolution-chain/%d/"}}`, f.server.URL, chainID)
		}
	}
	for _, id := range []int{1, 2, 3} {
		mux.HandleFunc(fmt.Sprintf("/pokemon-species/%d/", id), species(1))
	}
	mux.HandleFunc("/pokemon-species/133/", species(67))
	mux.HandleFunc("/pokemon-species/9000/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":9000,"name":"lonely","evolution_chain":{"url":""}}`))
	})
	mux.HandleFunc("/pokemon-species/500/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})
	mux.HandleFunc("/evolution-chain/1/", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		_, _ = fmt.Fprintf(w, bulbasaurChain, f.server.URL)
	})
	mux.HandleFunc("/evolution-chain/67/", func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		_, _ = fmt.Fprintf(w, eeveeChain, f.server.URL)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestClient(f *fakeAPI) *Client {
	return NewClient(
		WithBaseURL(f.server.URL+"/"),
		WithSpriteURL("img/%d.png"),
		WithRateLimit(0, 0),
		WithLogger(zerolog.Nop()),
	)
}

func TestFetchLinearChain(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(f)

	rec, err := c.FetchEvolution(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, types.EvolutionRecord{
		Chain: []types.Moonster{
			{Name: "bulbasaur", Image: "img/1.png", ID: 1},
			{Name: "ivysaur", Image: "img/2.png", ID: 2},
			{Name: "venusaur", Image: "img/3.png", ID: 3},
		},
		Conditions: []types.Condition{
			{From: "bulbasaur", To: "ivysaur", Trigger: "level-up", Details: "min_level 16"},
			{From: "ivysaur", To: "venusaur", Trigger: "level-up", Details: "min_level 32"},
		},
	}, rec)
}

func TestFetchBranchingChain(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(f)

	rec, err := c.FetchEvolution(context.Background(), 133)
	require.NoError(t, err)
	require.Len(t, rec.Chain, 3)
	require.Equal(t, "eevee", rec.Chain[0].Name)
	require.Equal(t, []types.Condition{
		{From: "eevee", To: "vaporeon", Trigger: "use-item", Details: "item water-stone"},
		{From: "eevee", To: "espeon", Trigger: "level-up", Details: "min_happiness 160, time_of_day day"},
	}, rec.Conditions)
}

func TestResponsesAreCached(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(f)
	ctx := context.Background()

	_, err := c.FetchEvolution(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, f.hits.Load())

	// same family: only the species lookup is new, the chain is cached
	_, err = c.FetchEvolution(ctx, 3)
	require.NoError(t, err)
	require.EqualValues(t, 3, f.hits.Load())

	_, err = c.FetchEvolution(ctx, 1)
	require.NoError(t, err)
	require.EqualValues(t, 3, f.hits.Load())
}

func TestFetchErrors(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(f)
	ctx := context.Background()

	_, err := c.FetchEvolution(ctx, 404)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")

	_, err = c.FetchEvolution(ctx, 9000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no evolution chain")

	_, err = c.FetchEvolution(ctx, 500)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestFetchHonoursContext(t *testing.T) {
	f := newFakeAPI(t)
	c := newTestClient(f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchEvolution(ctx, 1)
	require.Error(t, err)
}

func TestTimeoutAppliesToAnyClient(t *testing.T) {
	custom := &http.Client{}
	c := NewClient(WithTimeout(3*time.Second), WithHTTPClient(custom))
	require.Equal(t, 3*time.Second, c.httpClient.Timeout)
	require.Zero(t, custom.Timeout)

	c = NewClient(WithHTTPClient(nil), WithTimeout(2*time.Second))
	require.NotNil(t, c.httpClient)
	require.Equal(t, 2*time.Second, c.httpClient.Timeout)

	c = NewClient()
	require.Equal(t, 10*time.Second, c.httpClient.Timeout)
}

func TestSpeciesID(t *testing.T) {
	id, err := speciesID("https://pokeapi.co/api/v2/pokemon-species/25/")
	require.NoError(t, err)
	require.Equal(t, 25, id)

	id, err = speciesID("https://pokeapi.co/api/v2/pokemon-species/133")
	require.NoError(t, err)
	require.Equal(t, 133, id)

	_, err = speciesID("https://pokeapi.co/api/v2/pokemon-species/")
	require.Error(t, err)
}

func TestDescribeMultipleMethods(t *testing.T) {
	lvl := 36
	link := chainLink{
		Species: namedResource{Name: "b"},
		EvolutionDetails: []evolutionDetail{
			{Trigger: &namedResource{Name: "level-up"}, MinLevel: &lvl},
			{Trigger: &namedResource{Name: "use-item"}, Item: &namedResource{Name: "moon-stone"}},
			{Trigger: &namedResource{Name: "shed"}},
		},
	}
	c := condition("a", link)
	require.Equal(t, "level-up", c.Trigger)
	require.Equal(t, "min_level 36 or item moon-stone", c.Details)
}

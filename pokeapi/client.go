// Package pokeapi fetches evolution chains from a PokeAPI-compatible
// service and flattens them into evolution records.
package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/moonsters/evolution-cache/types"
)

const (
	DefaultBaseURL   = "https://pokeapi.co/api/v2"
	DefaultSpriteURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png"
)

// Client implements types.Fetcher.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	spriteURL  string
	limiter    *rate.Limiter
	logger     zerolog.Logger

	// responses holds raw bodies by URL. Several species share one chain, so
	// resolving a whole family hits the chain endpoint once.
	responses *gocache.Cache
}

var _ types.Fetcher = &Client{}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default client. nil keeps the default.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds each HTTP request, including reading the body. It applies
// to whichever client ends up in use, without modifying the caller's client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimit caps outgoing requests. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSpriteURL sets the image URL template; it gets the entity id as %d.
func WithSpriteURL(tmpl string) Option {
	return func(c *Client) { c.spriteURL = tmpl }
}

func WithResponseTTL(ttl time.Duration) Option {
	return func(c *Client) { c.responses = gocache.New(ttl, 2*ttl) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		spriteURL:  DefaultSpriteURL,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     log.Logger,
		responses:  gocache.New(10*time.Minute, 20*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if c.timeout > 0 {
		h := *c.httpClient
		h.Timeout = c.timeout
		c.httpClient = &h
	}
	c.logger = c.logger.With().Str("component", "pokeapi").Logger()
	return c
}

/*
FetchEvolution resolves the evolution chain that contains id.

1. GET /pokemon-species/{id}/ for the chain URL
2. GET the chain
3. Flatten it depth first into a record
*/
func (c *Client) FetchEvolution(ctx context.Context, id int) (types.EvolutionRecord, error) {
	var species speciesResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s/pokemon-species/%d/", c.baseURL, id), &species); err != nil {
		return types.EvolutionRecord{}, errors.Wrapf(err, "species %d", id)
	}
	if species.EvolutionChain.URL == "" {
		return types.EvolutionRecord{}, errors.Errorf("species %d has no evolution chain", id)
	}

	var chain chainResponse
	if err := c.getJSON(ctx, species.EvolutionChain.URL, &chain); err != nil {
		return types.EvolutionRecord{}, errors.Wrapf(err, "evolution chain of %d", id)
	}
	return flatten(chain.Chain, c.spriteURL)
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	body, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "decode %s", url)
	}
	return nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if cached, ok := c.responses.Get(url); ok {
		return cached.([]byte), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", url)
	}

	c.logger.Debug().Str("url", url).Dur("took", time.Since(start)).Int("bytes", len(body)).Msg("fetched")
	c.responses.SetDefault(url, body)
	return body, nil
}

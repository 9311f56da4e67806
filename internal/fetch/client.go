// Package fetch executes recipe queries against their remote endpoints,
// optionally through a caching relay, with an optional local response
// cache for repeated dry-runs.
package fetch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"attestry/internal/query"
	"attestry/internal/recipe"
)

// Relay request headers. The relay forwards the request body to the URL
// named by HeaderQueryURL and may serve a cached response for the same
// cache key. The relay is an opaque, possibly-stale cache; no consistency
// is assumed.
const (
	HeaderQueryURL = "X-Query-Url"
	HeaderCacheKey = "X-Cache-Key"
)

// Options configures a Client.
type Options struct {
	// Timeout bounds each individual fetch. Zero means no bound beyond
	// the caller's context.
	Timeout time.Duration
	// RelayURL, when set, routes every fetch through the caching relay
	// instead of calling endpoints directly.
	RelayURL string
	// CacheKey is the relay cache key. When empty a random key is
	// generated per client, so one pipeline run shares one relay entry.
	CacheKey string
	// Cache, when non-nil, serves repeated identical fetches locally.
	Cache *Cache
}

// Client is the query fetch adapter. It receives fully substituted
// variables (no placeholder tokens remain) and is indifferent to what the
// endpoint does beyond returning JSON.
type Client struct {
	httpClient *http.Client
	opts       Options
	cacheKey   string
	log        *zap.Logger
}

// NewClient builds a fetch client.
func NewClient(opts Options, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	key := opts.CacheKey
	if key == "" {
		key = uuid.NewString()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		opts:       opts,
		cacheKey:   key,
		log:        log,
	}
}

type requestBody struct {
	Query     string          `json:"query"`
	Variables query.Variables `json:"variables"`
}

// Fetch executes one query with the given (already substituted) variables
// and returns the raw response JSON. Transport failures and non-2xx
// statuses are *FetchError values, propagated unchanged with no retry.
func (c *Client) Fetch(ctx context.Context, q recipe.Query, vars query.Variables) (json.RawMessage, error) {
	body, err := json.Marshal(requestBody{Query: q.Query, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("serialize query request: %w", err)
	}

	localKey := localCacheKey(q.Endpoint, body)
	if c.opts.Cache != nil {
		if cached, ok := c.opts.Cache.Get(localKey); ok {
			c.log.Debug("query served from local cache", zap.String("endpoint", q.Endpoint))
			return json.RawMessage(cached), nil
		}
	}

	target := q.Endpoint
	if c.opts.RelayURL != "" {
		target = c.opts.RelayURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Endpoint: q.Endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.opts.RelayURL != "" {
		req.Header.Set(HeaderQueryURL, q.Endpoint)
		req.Header.Set(HeaderCacheKey, c.cacheKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Endpoint: q.Endpoint, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Endpoint: q.Endpoint, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Endpoint: q.Endpoint, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Put(localKey, payload); err != nil {
			c.log.Warn("cache write failed", zap.String("endpoint", q.Endpoint), zap.Error(err))
		}
	}
	return json.RawMessage(payload), nil
}

// FetchAll substitutes the user context into every query and fetches them
// concurrently. Results are reassembled in declaration order regardless of
// completion order, since transform scripts index them positionally.
func (c *Client) FetchAll(ctx context.Context, queries []recipe.Query, uctx query.UserContext) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(queries))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		eg.Go(func() error {
			vars := query.Substitute(q.Variables, uctx)
			res, err := c.Fetch(egCtx, q, vars)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func localCacheKey(endpoint string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(endpoint))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pierre-ernst/ghnet/pkg/buildinfo"
	"github.com/pierre-ernst/ghnet/pkg/cache"
	"github.com/pierre-ernst/ghnet/pkg/httputil"
	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// maxBodySize caps how much of a response body is read. Dependents pages
// are ~100KB; anything much larger is not a page we understand.
const maxBodySize = 8 << 20

// Options configures a [Client]. The zero value is usable: it talks to the
// network without pacing, caching or custom headers.
type Options struct {
	HTTPClient *http.Client
	Cache      cache.Cache
	Keyer      cache.Keyer
	TTL        time.Duration
	Headers    map[string]string

	// Attempts and RetryDelay tune [httputil.Retry]. Zero values select
	// 3 attempts and a 1s initial delay.
	Attempts   int
	RetryDelay time.Duration
}

// Client provides shared HTTP functionality for GitHub page and API fetches.
// It handles caching, retry logic, and common request headers.
type Client struct {
	http       *http.Client
	cache      cache.Cache
	keyer      cache.Keyer
	ttl        time.Duration
	headers    map[string]string
	attempts   int
	retryDelay time.Duration
}

// NewClient creates a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		http:       opts.HTTPClient,
		cache:      opts.Cache,
		keyer:      opts.Keyer,
		ttl:        opts.TTL,
		headers:    opts.Headers,
		attempts:   opts.Attempts,
		retryDelay: opts.RetryDelay,
	}
	if c.http == nil {
		c.http = httputil.NewHTTPClient(httputil.NewTransport(0, 0, buildinfo.UserAgent()))
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.attempts <= 0 {
		c.attempts = 3
	}
	if c.retryDelay <= 0 {
		c.retryDelay = time.Second
	}
	return c
}

// Keyer returns the keyer used to build cache keys.
func (c *Client) Keyer() cache.Keyer { return c.keyer }

// HTTPClient returns the underlying HTTP client, so that other API clients
// can share its transport and pacing.
func (c *Client) HTTPClient() *http.Client { return c.http }

// Retry runs fn with the client's retry policy.
func (c *Client) Retry(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, c.attempts, c.retryDelay, fn)
}

// Cached retrieves a JSON value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	hooks := observability.Cache()
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			if json.Unmarshal(data, v) == nil {
				hooks.OnCacheHit(ctx, observability.KeyAPI)
				return nil
			}
		}
	}
	hooks.OnCacheMiss(ctx, observability.KeyAPI)
	if err := c.Retry(ctx, fetch); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, key, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, observability.KeyAPI, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	body, err := c.fetch(ctx, rawURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, rawURL string) (string, error) {
	body, err := c.fetch(ctx, rawURL, nil)
	return string(body), err
}

// GetHTML fetches an HTML page, retrying transient failures, and parses it.
// Raw page bodies are cached under [cache.Keyer.PageKey]; refresh bypasses
// the cached copy. The returned document's Url is set to rawURL so that
// relative links can be resolved against it.
func (c *Client) GetHTML(ctx context.Context, rawURL string, refresh bool) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	key := c.keyer.PageKey(rawURL)
	hooks := observability.Cache()
	var body []byte
	if !refresh {
		if data, ok, _ := c.cache.Get(ctx, key); ok {
			body = data
			hooks.OnCacheHit(ctx, observability.KeyPage)
		}
	}
	if body == nil {
		hooks.OnCacheMiss(ctx, observability.KeyPage)
		err := c.Retry(ctx, func() error {
			var ferr error
			body, ferr = c.fetch(ctx, rawURL, map[string]string{"Accept": "text/html"})
			return ferr
		})
		if err != nil {
			return nil, err
		}
		if c.cache.Set(ctx, key, body, c.ttl) == nil {
			hooks.OnCacheSet(ctx, observability.KeyPage, len(body))
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", rawURL, err)
	}
	doc.Url = u
	return doc, nil
}

func (c *Client) fetch(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, httputil.Retryable(fmt.Errorf("%w: read body: %v", ErrNetwork, err))
	}
	return body, nil
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Request.URL)
	case code == http.StatusTooManyRequests:
		return &httputil.RetryableError{
			Err:   fmt.Errorf("%w: status %d", ErrRateLimited, code),
			After: retryAfter(resp.Header.Get("Retry-After")),
		}
	case code >= 500:
		return httputil.Retryable(fmt.Errorf("%w: status %d", ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

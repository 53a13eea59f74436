package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/pierre-ernst/ghnet/pkg/cache"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// ErrLayout is returned when a page does not look like a dependents page,
// usually because GitHub changed its markup.
var ErrLayout = errors.New("unrecognized dependents page layout")

// PageFetcher loads and parses HTML pages. [integrations.Client] implements it.
type PageFetcher interface {
	GetHTML(ctx context.Context, url string, refresh bool) (*goquery.Document, error)
}

// Resolver looks up owners and repositories. [github.Client] implements it.
type Resolver interface {
	Owner(ctx context.Context, login string, refresh bool) (*github.Owner, error)
	Repository(ctx context.Context, owner, name string, refresh bool) (*github.Repository, error)
}

// Client scrapes dependents pages and resolves their rows.
type Client struct {
	pages       PageFetcher
	repos       Resolver
	logger      *log.Logger
	concurrency int
	refresh     bool

	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithLogger sets the logger used for per-row diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithConcurrency sets how many rows of a page are evaluated at once.
func WithConcurrency(n int) Option {
	return func(c *Client) { c.concurrency = max(n, 1) }
}

// WithRefresh bypasses cached pages and API objects.
func WithRefresh(refresh bool) Option {
	return func(c *Client) { c.refresh = refresh }
}

// WithCache caches dependents counts and complete scans in c, under keys
// built by keyer. Page bodies are cached separately by the PageFetcher.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.keyer = keyer
		if cl.keyer == nil {
			cl.keyer = cache.NewDefaultKeyer()
		}
		cl.ttl = ttl
	}
}

// NewClient creates a Client reading pages through pages and resolving
// repositories through repos.
func NewClient(pages PageFetcher, repos Resolver, opts ...Option) *Client {
	c := &Client{
		pages:       pages,
		repos:       repos,
		logger:      log.New(io.Discard),
		concurrency: 4,
		cache:       cache.NewNullCache(),
		keyer:       cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Owner resolves a login as an organization, falling back to a user.
func (c *Client) Owner(ctx context.Context, login string) (*github.Owner, error) {
	return c.repos.Owner(ctx, login, c.refresh)
}

// Repository resolves owner/name.
func (c *Client) Repository(ctx context.Context, owner, name string) (*github.Repository, error) {
	return c.repos.Repository(ctx, owner, name, c.refresh)
}

// DependentsURL returns the dependents page of repo, optionally narrowed
// to one package.
func DependentsURL(repo *github.Repository, packageID string) string {
	u := repo.HTMLURL
	if u == "" {
		u = "https://github.com/" + repo.String()
	}
	u += "/network/dependents"
	if packageID != "" {
		u += "?package_id=" + integrations.URLEncode(packageID)
	}
	return u
}

// ListPackages returns the packages repo publishes, sorted by name.
// A repository without packages yields an empty slice.
func (c *Client) ListPackages(ctx context.Context, repo *github.Repository) ([]Package, error) {
	doc, err := c.pages.GetHTML(ctx, DependentsURL(repo, ""), c.refresh)
	if err != nil {
		return nil, fmt.Errorf("load dependents page of %s: %w", repo, err)
	}
	pkgs := parsePackages(doc)
	if pkgs == nil {
		pkgs = []Package{}
	}
	return pkgs, nil
}

// DependentsCount returns the number of repositories depending on repo,
// or on one of its packages when packageID is set.
func (c *Client) DependentsCount(ctx context.Context, repo *github.Repository, packageID string) (int64, error) {
	key := c.keyer.CountKey(repo.String(), packageID)
	var n int64
	if c.load(ctx, observability.KeyCount, key, &n) {
		return n, nil
	}
	n, err := c.fetchCount(ctx, repo, packageID)
	if err != nil {
		return 0, err
	}
	c.save(ctx, observability.KeyCount, key, n)
	return n, nil
}

func (c *Client) fetchCount(ctx context.Context, repo *github.Repository, packageID string) (int64, error) {
	doc, err := c.pages.GetHTML(ctx, DependentsURL(repo, packageID), c.refresh)
	if err != nil {
		return 0, fmt.Errorf("load dependents page of %s: %w", repo, err)
	}
	n, ok := parseCount(doc)
	if !ok {
		return 0, fmt.Errorf("%w: %s has no repositories counter", ErrLayout, repo)
	}
	return n, nil
}

// load reads a cached JSON value. Cache errors count as misses.
func (c *Client) load(ctx context.Context, kind, key string, v any) bool {
	if c.refresh {
		return false
	}
	data, ok, err := c.cache.Get(ctx, key)
	if err != nil || !ok || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, kind)
		return false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return true
}

func (c *Client) save(ctx context.Context, kind, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("Cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

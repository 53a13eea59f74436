package cli

import (
	"context"
	"fmt"

	"github.com/pierre-ernst/ghnet/internal/config"
	"github.com/pierre-ernst/ghnet/pkg/buildinfo"
	"github.com/pierre-ernst/ghnet/pkg/cache"
	"github.com/pierre-ernst/ghnet/pkg/httputil"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
	"github.com/pierre-ernst/ghnet/pkg/store/mongo"
)

// newCache opens the configured cache backend. --no-cache always wins.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	cfg := c.config()
	if c.flags.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("No cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// keyer scopes cache entries to the configured token, so that responses
// fetched with a token are never served to anonymous runs.
func (c *CLI) keyer() cache.Keyer {
	token := c.config().GitHub.Token
	if token == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), "user:"+cache.Hash([]byte(token))[:12]+":")
}

// newNetwork builds the dependents client: one paced transport shared by
// page loads and REST lookups, both caching into ch.
func (c *CLI) newNetwork(ch cache.Cache) (*network.Client, error) {
	cfg := c.config()
	keyer := c.keyer()

	transport := httputil.NewTransport(cfg.Scan.Rate, cfg.Scan.Burst, buildinfo.UserAgent())
	base := integrations.NewClient(integrations.Options{
		HTTPClient: httputil.NewHTTPClient(transport),
		Cache:      ch,
		Keyer:      keyer,
		TTL:        cfg.Cache.TTL,
	})

	gh := github.NewClient(base, cfg.GitHub.Token)
	if cfg.GitHub.BaseURL != "" {
		if err := gh.SetBaseURL(cfg.GitHub.BaseURL); err != nil {
			return nil, err
		}
	}

	return network.NewClient(base, gh,
		network.WithLogger(c.Logger),
		network.WithConcurrency(cfg.Scan.Concurrency),
		network.WithRefresh(c.flags.refresh),
		network.WithCache(ch, keyer, cfg.Cache.TTL),
	), nil
}

// newStore opens the configured snapshot store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.config()
	switch cfg.Store.Backend {
	case config.StoreMongo:
		st, err := mongo.New(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		return st, nil
	default:
		st, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		return st, nil
	}
}

// session bundles what the scanning commands need. close releases the
// cache.
type session struct {
	net   *network.Client
	cache cache.Cache
}

func (s *session) close() { _ = s.cache.Close() }

func (c *CLI) openSession(ctx context.Context) (*session, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	n, err := c.newNetwork(ch)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &session{net: n, cache: ch}, nil
}

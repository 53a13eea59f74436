package config

import (
	"fmt"
	"slices"

	"github.com/pierre-ernst/ghnet/pkg/errors"
)

// Validate checks a loaded configuration.
func Validate(cfg *Config) error {
	if !slices.Contains([]string{CacheFile, CacheRedis, CacheNone}, cfg.Cache.Backend) {
		return invalid("cache.backend %q: use file, redis or none", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL < 0 {
		return invalid("cache.ttl must not be negative")
	}
	if cfg.Cache.Backend == CacheRedis && cfg.Redis.Addr == "" {
		return invalid("redis.addr is required with the redis cache")
	}

	if !slices.Contains([]string{StoreFile, StoreMongo}, cfg.Store.Backend) {
		return invalid("store.backend %q: use file or mongo", cfg.Store.Backend)
	}
	if cfg.Store.Backend == StoreMongo && cfg.Mongo.URI == "" {
		return invalid("mongo.uri is required with the mongo store")
	}

	if cfg.Scan.Concurrency <= 0 {
		return invalid("scan.concurrency must be positive, got %d", cfg.Scan.Concurrency)
	}
	if cfg.Scan.Rate <= 0 {
		return invalid("scan.rate must be positive, got %v", cfg.Scan.Rate)
	}
	if cfg.Scan.Burst < 1 {
		return invalid("scan.burst must be at least 1, got %d", cfg.Scan.Burst)
	}
	if cfg.Scan.MaxPages < 0 {
		return invalid("scan.max_pages must not be negative")
	}
	if cfg.GitHub.BaseURL != "" {
		if err := errors.ValidateURL(cfg.GitHub.BaseURL); err != nil {
			return fmt.Errorf("github.base_url: %w", err)
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidInput, format, args...)
}

package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables, e.g. GHNET_CACHE_BACKEND.
const EnvPrefix = "GHNET"

// Dir returns ~/.config/ghnet.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "ghnet"), nil
}

// DefaultPath returns the default config file, ~/.config/ghnet/config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// New returns a viper instance with defaults and environment bindings.
// Callers may bind command-line flags to it before calling [Load].
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The conventional variable works too.
	_ = v.BindEnv("github.token", EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN")
	return v
}

// Load reads configuration with the following precedence (highest first):
//  1. flags bound to v
//  2. environment variables (GHNET_* prefix)
//  3. the config file at path, or ~/.config/ghnet/config.toml when empty
//  4. built-in defaults
//
// A missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			notFound := isConfigNotFoundError(err) || stderrors.Is(err, os.ErrNotExist)
			if explicit || !notFound {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return stderrors.As(err, &notFound)
}

// setDefaults configures default values. Keys match the mapstructure tags.
func setDefaults(v *viper.Viper) {
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")

	v.SetDefault("cache.backend", CacheFile)
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("store.backend", StoreFile)
	v.SetDefault("store.dir", "")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "ghnet")

	v.SetDefault("scan.concurrency", 4)
	v.SetDefault("scan.rate", 2.0)
	v.SetDefault("scan.burst", 4)
	v.SetDefault("scan.max_pages", 0)

	v.SetDefault("server.addr", ":8080")
}

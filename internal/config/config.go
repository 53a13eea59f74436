// Package config loads ghnet settings from defaults, a TOML file,
// GHNET_* environment variables and command-line flags.
package config

import "time"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config is the complete ghnet configuration.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Store  StoreConfig  `mapstructure:"store"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Server ServerConfig `mapstructure:"server"`
}

// GitHubConfig holds GitHub access settings.
type GitHubConfig struct {
	// Token authenticates REST API calls. Falls back to GITHUB_TOKEN.
	Token string `mapstructure:"token"`
	// BaseURL overrides the REST API endpoint, e.g. for GitHub Enterprise.
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig selects where fetched pages and API objects are cached.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig is used when Cache.Backend is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StoreConfig selects where snapshots are saved.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
}

// MongoConfig is used when Store.Backend is "mongo".
type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// ScanConfig tunes dependents scans.
type ScanConfig struct {
	// Concurrency is the number of rows of a page evaluated at once.
	Concurrency int `mapstructure:"concurrency"`
	// Rate is the number of requests per second sent to GitHub.
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
	// MaxPages bounds the pages read per scan; 0 reads all.
	MaxPages int `mapstructure:"max_pages"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

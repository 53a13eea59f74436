// Package cache provides byte-level caching for GitHub pages and API responses.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry under the user cache directory (CLI)
//   - [RedisCache]: shared cache for the API server and multi-host setups
//   - [NullCache]: caching disabled (--no-cache)
//
// Keys are built by a [Keyer] so that every backend sees the same key space.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with a per-entry time-to-live.
//
// Get reports a miss as (nil, false, nil); expired entries are misses.
// A ttl of 0 passed to Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all their entries.
type Clearer interface {
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}

// Keyer generates cache keys for the kinds of data ghnet caches.
type Keyer interface {
	// PageKey identifies a fetched HTML page by its URL.
	PageKey(url string) string
	// APIKey identifies a REST API object, e.g. APIKey("repo", "owner/name").
	APIKey(kind, id string) string
	// CountKey identifies the dependents count of a repository and package.
	CountKey(fullName, packageID string) string
	// ScanKey identifies a full dependents scan with its options.
	ScanKey(fullName string, opts ScanKeyOpts) string
}

// ScanKeyOpts holds the scan parameters that change a scan's result.
type ScanKeyOpts struct {
	PackageID     string `json:"package_id,omitempty"`
	MinDependents int64  `json:"min_dependents"`
	SameLanguage  bool   `json:"same_language"`
	MaxPages      int    `json:"max_pages,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PageKey returns "page:<sha256(url)>".
func (DefaultKeyer) PageKey(url string) string {
	return hashKey("page", url)
}

// APIKey returns "api:<kind>:<id>".
func (DefaultKeyer) APIKey(kind, id string) string {
	return "api:" + kind + ":" + id
}

// CountKey returns "count:<fullName>:<packageID>".
func (DefaultKeyer) CountKey(fullName, packageID string) string {
	return "count:" + fullName + ":" + packageID
}

// ScanKey returns "scan:<sha256(fullName, opts)>".
func (DefaultKeyer) ScanKey(fullName string, opts ScanKeyOpts) string {
	return hashKey("scan", fullName, opts)
}

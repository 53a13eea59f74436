// Package store persists dependents scans as snapshots so that later scans
// of the same repository can be compared.
//
// Two backends are provided:
//   - [FileStore]: JSON files on disk, the CLI default
//   - mongo.Store: MongoDB, for the HTTP service
//
// Snapshots are immutable; saving a scan always creates a new snapshot.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pierre-ernst/ghnet/pkg/network"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a saved scan.
type Snapshot struct {
	ID        string       `json:"id" toml:"id" bson:"_id"`
	CreatedAt time.Time    `json:"created_at" toml:"created_at" bson:"created_at"`
	Scan      network.Scan `json:"scan" toml:"scan" bson:"scan"`
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores scan as a new snapshot.
	Save(ctx context.Context, scan *network.Scan) (*Snapshot, error)

	// Get retrieves a snapshot by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns the snapshots of a repository, newest first. A
	// non-positive limit returns all of them.
	List(ctx context.Context, fullName string, limit int) ([]*Snapshot, error)

	// Latest returns the newest snapshot of a repository scanned with
	// packageID. Returns ErrNotFound if there is none.
	Latest(ctx context.Context, fullName, packageID string) (*Snapshot, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// NewSnapshot wraps scan in a snapshot with a fresh ID.
func NewSnapshot(scan *network.Scan) *Snapshot {
	return &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Scan:      *scan,
	}
}

// ValidID reports whether id looks like a snapshot ID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// sameRepo compares repository full names case-insensitively.
func sameRepo(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Package mongo implements store.Store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// Defaults for [Config].
const (
	DefaultDatabase   = "ghnet"
	DefaultCollection = "snapshots"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// caseInsensitive matches repository names the way GitHub does. Queries
// must use the same collation as the index to use it.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Store keeps snapshots in a MongoDB collection.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB, verifies the connection and ensures the
// collection's indexes exist.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo: uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: client, coll: client.Database(cfg.Database).Collection(cfg.Collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "scan.repository.full_name", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().
			SetName("repo_created").
			SetCollation(caseInsensitive),
	})
	if err != nil {
		return fmt.Errorf("mongo create index: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, scan *network.Scan) (*store.Snapshot, error) {
	snap := store.NewSnapshot(scan)
	// BSON dates keep milliseconds only.
	snap.CreatedAt = snap.CreatedAt.Truncate(time.Millisecond)
	if _, err := s.coll.InsertOne(ctx, snap); err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	return snap, nil
}

func (s *Store) Get(ctx context.Context, id string) (*store.Snapshot, error) {
	var snap store.Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return &snap, nil
}

func (s *Store) List(ctx context.Context, fullName string, limit int) ([]*store.Snapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetCollation(caseInsensitive)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := s.coll.Find(ctx, repoFilter(fullName), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	snaps := []*store.Snapshot{}
	if err := cur.All(ctx, &snaps); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}
	return snaps, nil
}

func (s *Store) Latest(ctx context.Context, fullName, packageID string) (*store.Snapshot, error) {
	filter := repoFilter(fullName)
	if packageID == "" {
		filter["scan.options.package_id"] = bson.M{"$in": bson.A{nil, ""}}
	} else {
		filter["scan.options.package_id"] = packageID
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetCollation(caseInsensitive)

	var snap store.Snapshot
	err := s.coll.FindOne(ctx, filter, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: no snapshot of %s", store.ErrNotFound, fullName)
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return &snap, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func repoFilter(fullName string) bson.M {
	return bson.M{"scan.repository.full_name": fullName}
}

var _ store.Store = (*Store)(nil)

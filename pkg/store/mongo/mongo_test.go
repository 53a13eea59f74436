//go:build integration

package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
	"github.com/pierre-ernst/ghnet/pkg/store"
)

// Run with: GHNET_MONGO_URI=mongodb://localhost:27017 go test -tags integration ./pkg/store/mongo
func testStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("GHNET_MONGO_URI")
	if uri == "" {
		t.Skip("GHNET_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := New(ctx, Config{URI: uri, Database: "ghnet_test", Collection: "snapshots_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	})
	return s
}

func scanOf(fullName, pkg string, deps ...string) *network.Scan {
	repo := github.Repository{FullName: fullName, Language: "Go"}
	scan := &network.Scan{Repository: repo, Options: network.ScanOptions{PackageID: pkg, MinDependents: 1}}
	for _, d := range deps {
		scan.Dependents = append(scan.Dependents, network.Dependent{
			Repository: github.Repository{FullName: d, Language: "Go"},
			Dependents: 3,
		})
	}
	return scan
}

func TestStore_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, scanOf("acme/lib", "", "alice/app"))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := s.Save(ctx, scanOf("acme/lib", "", "alice/app", "bob/tool"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, scanOf("acme/lib", "UGtn", "carol/x")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Scan.Dependents) != 1 || got.Scan.Dependents[0].FullName != "alice/app" {
		t.Errorf("Get() dependents = %+v", got.Scan.Dependents)
	}

	list, err := s.List(ctx, "ACME/lib", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("List() returned %d snapshots, want 3", len(list))
	}

	latest, err := s.Latest(ctx, "acme/lib", "")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest() = %s, want %s", latest.ID, second.ID)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get() after Delete err = %v, want ErrNotFound", err)
	}
}

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/network"
)

func scanOf(fullName, pkg string, deps ...string) *network.Scan {
	scan := &network.Scan{
		Repository: github.Repository{FullName: fullName, Language: "Java"},
		Options:    network.ScanOptions{PackageID: pkg, MinDependents: 1, SameLanguage: true},
		Pages:      1,
	}
	for _, d := range deps {
		scan.Dependents = append(scan.Dependents, network.Dependent{
			Repository: github.Repository{FullName: d, Language: "Java"},
			Dependents: 5,
		})
	}
	return scan
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	first, err := s.Save(ctx, scanOf("FasterXML/jackson-core", "", "alice/app"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !ValidID(first.ID) {
		t.Errorf("Save() id %q is not a uuid", first.ID)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := s.Save(ctx, scanOf("FasterXML/jackson-core", "", "alice/app", "bob/tool"))
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	pkg, err := s.Save(ctx, scanOf("FasterXML/jackson-core", "UGtn", "carol/lib"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx, scanOf("other/repo", "", "dave/svc")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Scan.Repository.FullName != "FasterXML/jackson-core" || len(got.Scan.Dependents) != 1 {
		t.Errorf("Get() = %+v", got.Scan)
	}
	if got.Scan.Dependents[0].FullName != "alice/app" || got.Scan.Dependents[0].Dependents != 5 {
		t.Errorf("dependent = %+v", got.Scan.Dependents[0])
	}

	list, err := s.List(ctx, "fasterxml/Jackson-Core", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("List() returned %d snapshots, want 3", len(list))
	}
	if list[0].ID != pkg.ID || list[2].ID != first.ID {
		t.Errorf("List() not newest first: %s %s %s", list[0].ID, list[1].ID, list[2].ID)
	}

	limited, err := s.List(ctx, "FasterXML/jackson-core", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("List(limit=1) returned %d", len(limited))
	}

	latest, err := s.Latest(ctx, "FasterXML/jackson-core", "")
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.ID {
		t.Errorf("Latest() = %s, want %s", latest.ID, second.ID)
	}
	latestPkg, err := s.Latest(ctx, "FasterXML/jackson-core", "UGtn")
	if err != nil {
		t.Fatal(err)
	}
	if latestPkg.ID != pkg.ID {
		t.Errorf("Latest(pkg) = %s, want %s", latestPkg.ID, pkg.ID)
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, first.ID); err != nil {
		t.Errorf("second Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete err = %v, want ErrNotFound", err)
	}
}

func TestFileStore_NotFound(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := s.Get(ctx, "../../etc/passwd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(bad id) err = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "6f1c2f4e-8d4b-4b8e-9b7a-0c1d2e3f4a5b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
	if _, err := s.Latest(ctx, "nobody/nothing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() err = %v, want ErrNotFound", err)
	}
	list, err := s.List(ctx, "nobody/nothing", 10)
	if err != nil || len(list) != 0 {
		t.Errorf("List() = %v, %v; want empty", list, err)
	}
}

func TestFileStore_SkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := s.Save(ctx, scanOf("acme/lib", "", "alice/app")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	list, err := s.List(ctx, "acme/lib", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("List() = %d snapshots, want 1", len(list))
	}
}

func TestCompare(t *testing.T) {
	older := NewSnapshot(scanOf("acme/lib", "", "alice/app", "bob/tool", "Carol/Lib"))
	newer := NewSnapshot(scanOf("acme/lib", "", "carol/lib", "zed/new", "dave/svc", "alice/app"))

	d := Compare(older, newer)
	if d.From != older.ID || d.To != newer.ID {
		t.Errorf("Compare() ids = %s..%s", d.From, d.To)
	}
	if want := []string{"dave/svc", "zed/new"}; !equal(d.Added, want) {
		t.Errorf("Added = %v, want %v", d.Added, want)
	}
	if want := []string{"bob/tool"}; !equal(d.Removed, want) {
		t.Errorf("Removed = %v, want %v", d.Removed, want)
	}
	if d.Empty() {
		t.Error("Empty() = true")
	}

	same := Compare(older, older)
	if !same.Empty() || same.Added == nil || same.Removed == nil {
		t.Errorf("Compare(x, x) = %+v, want empty non-nil lists", same)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "ghnet")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, "ghnet") {
		t.Errorf("cacheDir() = %q, want it under XDG_CACHE_HOME", dir)
	}
}

func TestCacheClear(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "dependents", "acme/lib", "-f", "json", "-o", filepath.Join(t.TempDir(), "out.json"))

	entries, err := os.ReadDir(filepath.Join(env.cacheHome, "ghnet"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("scan should populate the cache, got %v entries (err %v)", len(entries), err)
	}

	env.run(t, "cache", "clear")
	var files int
	_ = filepath.WalkDir(filepath.Join(env.cacheHome, "ghnet"), func(path string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() && strings.HasSuffix(path, ".json") {
			files++
		}
		return nil
	})
	if files != 0 {
		t.Errorf("%d cache files left after clear", files)
	}
}

package network

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pierre-ernst/ghnet/pkg/cache"
	"github.com/pierre-ernst/ghnet/pkg/integrations"
	"github.com/pierre-ernst/ghnet/pkg/integrations/github"
	"github.com/pierre-ernst/ghnet/pkg/observability"
)

// site serves fake dependents pages keyed by request URI.
type site struct {
	server *httptest.Server
	mu     sync.Mutex
	pages  map[string]string
	hits   map[string]int
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{pages: map[string]string{}, hits: map[string]int{}}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		body, ok := s.pages[r.URL.RequestURI()]
		s.hits[r.URL.RequestURI()]++
		s.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *site) set(uri, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[uri] = body
}

func (s *site) repo(fullName, language string) *github.Repository {
	owner, name, _ := strings.Cut(fullName, "/")
	return &github.Repository{
		Owner:    owner,
		Name:     name,
		FullName: fullName,
		Language: language,
		HTMLURL:  s.server.URL + "/" + fullName,
	}
}

// countOnly registers the dependents page of a repository with n dependents.
func (s *site) countOnly(fullName string, n int) {
	s.set("/"+fullName+"/network/dependents", listPage(n, nil, ""))
}

func listPage(count int, rows []string, next string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="table-list-header-toggle">`)
	fmt.Fprintf(&b, `<a class="btn-link selected" href="#">%s Repositories</a>`, commas(count))
	b.WriteString(`<a class="btn-link" href="#">0 Packages</a></div><div class="Box">`)
	for _, r := range rows {
		owner, name, _ := strings.Cut(r, "/")
		fmt.Fprintf(&b, `<div class="Box-row"><span><a href="/%s">%s</a> / <a href="/%s">%s</a></span></div>`, owner, owner, r, name)
	}
	b.WriteString(`</div><div class="BtnGroup"><button class="btn" disabled>Previous</button>`)
	if next != "" {
		fmt.Fprintf(&b, `<a class="btn" href="%s">Next</a>`, next)
	} else {
		b.WriteString(`<button class="btn" disabled>Next</button>`)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func commas(n int) string {
	s := fmt.Sprint(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// fakeResolver answers repository lookups from a map keyed by lowercase
// full name.
type fakeResolver struct {
	mu    sync.Mutex
	repos map[string]*github.Repository
	errs  map[string]error
	calls int
}

func newFakeResolver(repos ...*github.Repository) *fakeResolver {
	f := &fakeResolver{repos: map[string]*github.Repository{}, errs: map[string]error{}}
	for _, r := range repos {
		f.add(r.FullName, r)
	}
	return f
}

func (f *fakeResolver) add(fullName string, r *github.Repository) {
	f.repos[strings.ToLower(fullName)] = r
}

func (f *fakeResolver) Owner(_ context.Context, login string, _ bool) (*github.Owner, error) {
	return &github.Owner{Login: login, Type: github.OwnerUser}, nil
}

func (f *fakeResolver) Repository(_ context.Context, owner, name string, _ bool) (*github.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := strings.ToLower(owner + "/" + name)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	r, ok := f.repos[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integrations.ErrNotFound, key)
	}
	cp := *r
	return &cp, nil
}

func newTestClient(s *site, r Resolver, opts ...Option) *Client {
	pages := integrations.NewClient(integrations.Options{
		HTTPClient: s.server.Client(),
		Cache:      cache.NewNullCache(),
		Attempts:   1,
		RetryDelay: time.Millisecond,
	})
	return NewClient(pages, r, opts...)
}

func TestDependentsURL(t *testing.T) {
	repo := github.NewRepository("FasterXML", "jackson-core")
	assert.Equal(t, "https://github.com/FasterXML/jackson-core/network/dependents", DependentsURL(repo, ""))
	assert.Equal(t,
		"https://github.com/FasterXML/jackson-core/network/dependents?package_id=UGFja2FnZS0x%3D",
		DependentsURL(repo, "UGFja2FnZS0x="))

	bare := &github.Repository{Owner: "a", Name: "b"}
	assert.Equal(t, "https://github.com/a/b/network/dependents", DependentsURL(bare, ""))
}

func TestClient_ListPackages(t *testing.T) {
	s := newSite(t)
	root := s.repo("FasterXML/jackson-core", "Java")
	body, err := readFixture("packages.html")
	require.NoError(t, err)
	s.set("/FasterXML/jackson-core/network/dependents", body)

	c := newTestClient(s, newFakeResolver(root))
	pkgs, err := c.ListPackages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "com.fasterxml.jackson.core:jackson-core", pkgs[0].Name)

	empty := s.repo("alice/none", "Go")
	s.countOnly("alice/none", 3)
	pkgs, err = c.ListPackages(context.Background(), empty)
	require.NoError(t, err)
	assert.NotNil(t, pkgs)
	assert.Empty(t, pkgs)
}

func TestClient_DependentsCount(t *testing.T) {
	s := newSite(t)
	repo := s.repo("acme/lib", "Go")
	s.countOnly("acme/lib", 1234)
	s.set("/acme/lib/network/dependents?package_id=UGtn", listPage(7, nil, ""))
	body, err := readFixture("unknown_layout.html")
	require.NoError(t, err)
	s.set("/acme/moved/network/dependents", body)

	c := newTestClient(s, newFakeResolver(repo))
	ctx := context.Background()

	n, err := c.DependentsCount(ctx, repo, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1234, n)

	n, err = c.DependentsCount(ctx, repo, "UGtn")
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	_, err = c.DependentsCount(ctx, s.repo("acme/moved", "Go"), "")
	assert.ErrorIs(t, err, ErrLayout)

	_, err = c.DependentsCount(ctx, s.repo("acme/gone", "Go"), "")
	assert.ErrorIs(t, err, integrations.ErrNotFound)
}

func TestClient_ListDependents(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	alice := s.repo("alice/app", "Go")
	bob := s.repo("bob/tool", "Python")
	carol := s.repo("carol/tiny", "Go")
	dave := s.repo("dave/svc", "Go")

	s.set("/acme/lib/network/dependents", listPage(6, []string{
		"alice/app", "bob/tool", "carol/tiny", "ghost/missing", "acme/lib", "ALICE/App",
	}, "/acme/lib/network/dependents?dependents_after=p2"))
	s.set("/acme/lib/network/dependents?dependents_after=p2", listPage(6, []string{
		"dave/svc", "carol/tiny",
	}, ""))
	s.countOnly("alice/app", 10)
	s.countOnly("bob/tool", 50)
	s.countOnly("carol/tiny", 0)
	s.countOnly("dave/svc", 3)

	var progress []PageProgress
	opts := DefaultScanOptions()
	opts.OnPage = func(p PageProgress) { progress = append(progress, p) }

	c := newTestClient(s, newFakeResolver(root, alice, bob, carol, dave), WithConcurrency(3))
	scan, err := c.ListDependents(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice/app", "dave/svc"}, scan.FullNames())
	assert.EqualValues(t, 10, scan.Dependents[0].Dependents)
	assert.EqualValues(t, 3, scan.Dependents[1].Dependents)
	assert.Equal(t, 2, scan.Pages)
	assert.False(t, scan.Truncated)

	reasons := map[string]SkipReason{}
	for _, sk := range scan.Skipped {
		reasons[sk.FullName] = sk.Reason
	}
	assert.Equal(t, map[string]SkipReason{
		"bob/tool":      SkipLanguageMismatch,
		"carol/tiny":    SkipBelowThreshold,
		"ghost/missing": SkipNotFound,
	}, reasons)

	require.Len(t, progress, 2)
	assert.Equal(t, PageProgress{Page: 1, URL: root.HTMLURL + "/network/dependents", Rows: 4, Kept: 1}, progress[0])
	assert.Equal(t, 2, progress[1].Page)
	assert.Equal(t, 1, progress[1].Rows)
	assert.Equal(t, 2, progress[1].Kept)

	// The language filter runs before the count page is fetched.
	s.mu.Lock()
	assert.Zero(t, s.hits["/bob/tool/network/dependents"])
	s.mu.Unlock()
}

func TestClient_ListDependents_AnyLanguage(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"bob/tool", "carol/tiny"}, ""))
	s.countOnly("bob/tool", 50)
	s.countOnly("carol/tiny", 0)

	c := newTestClient(s, newFakeResolver(root, s.repo("bob/tool", "Python"), s.repo("carol/tiny", "Go")))
	scan, err := c.ListDependents(context.Background(), root, ScanOptions{MinDependents: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob/tool", "carol/tiny"}, scan.FullNames())
	assert.Empty(t, scan.Skipped)
}

func TestClient_ListDependents_Package(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents?package_id=UGtnLTE%3D", listPage(1, []string{"alice/app"}, ""))
	s.countOnly("alice/app", 2)

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go")))
	opts := DefaultScanOptions()
	opts.PackageID = "UGtnLTE="
	scan, err := c.ListDependents(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/app"}, scan.FullNames())
	assert.Equal(t, "UGtnLTE=", scan.Options.PackageID)
}

func TestClient_ListDependents_MaxPages(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"alice/app"}, "/acme/lib/network/dependents?dependents_after=p2"))
	s.set("/acme/lib/network/dependents?dependents_after=p2", listPage(2, []string{"dave/svc"}, ""))
	s.countOnly("alice/app", 2)
	s.countOnly("dave/svc", 2)

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go"), s.repo("dave/svc", "Go")))
	opts := DefaultScanOptions()
	opts.MaxPages = 1
	scan, err := c.ListDependents(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, scan.Pages)
	assert.True(t, scan.Truncated)
	assert.Equal(t, []string{"alice/app"}, scan.FullNames())
}

func TestClient_ListDependents_PaginationLoop(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(1, []string{"alice/app"}, "/acme/lib/network/dependents?dependents_after=p2"))
	s.set("/acme/lib/network/dependents?dependents_after=p2", listPage(1, nil, "/acme/lib/network/dependents"))
	s.countOnly("alice/app", 5)

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go")))
	scan, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, scan.Pages)
	assert.Equal(t, []string{"alice/app"}, scan.FullNames())
}

func TestClient_ListDependents_Renamed(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	renamed := s.repo("alice/new-name", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"alice/old-name", "alice/new-name"}, ""))
	s.countOnly("alice/new-name", 4)

	r := newFakeResolver(root, renamed)
	r.add("alice/old-name", renamed)

	c := newTestClient(s, r)
	scan, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice/new-name"}, scan.FullNames())
}

func TestClient_ListDependents_CountFailed(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(1, []string{"alice/app"}, ""))
	body, err := readFixture("unknown_layout.html")
	require.NoError(t, err)
	s.set("/alice/app/network/dependents", body)

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go")))
	scan, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	require.NoError(t, err)
	assert.Empty(t, scan.Dependents)
	require.Len(t, scan.Skipped, 1)
	assert.Equal(t, SkipCountFailed, scan.Skipped[0].Reason)
	assert.NotEmpty(t, scan.Skipped[0].Detail)
}

func TestClient_ListDependents_RateLimited(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"alice/app", "bob/tool"}, ""))

	r := newFakeResolver(root)
	r.errs["alice/app"] = fmt.Errorf("%w: api quota exhausted", integrations.ErrRateLimited)
	r.errs["bob/tool"] = fmt.Errorf("%w: api quota exhausted", integrations.ErrRateLimited)

	c := newTestClient(s, r)
	_, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	assert.ErrorIs(t, err, integrations.ErrRateLimited)
}

func TestClient_ListDependents_FirstPageMissing(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/private", "Go")

	c := newTestClient(s, newFakeResolver(root))
	_, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	assert.ErrorIs(t, err, integrations.ErrNotFound)
}

func TestClient_ListDependents_LaterPageFails(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"alice/app"}, "/acme/lib/network/dependents?dependents_after=gone"))
	s.countOnly("alice/app", 5)

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go")))
	scan, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	assert.ErrorIs(t, err, integrations.ErrNotFound)
	assert.Nil(t, scan)
}

func TestClient_ListDependents_Canceled(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(1, []string{"alice/app"}, ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go")))
	_, err := c.ListDependents(ctx, root, DefaultScanOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_ListDependents_Cached(t *testing.T) {
	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(1, []string{"alice/app"}, ""))
	s.countOnly("alice/app", 9)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	resolver := newFakeResolver(root, s.repo("alice/app", "Go"))

	c := newTestClient(s, resolver, WithCache(fc, nil, time.Hour))
	first, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
	require.NoError(t, err)

	pages := 0
	opts := DefaultScanOptions()
	opts.OnPage = func(PageProgress) { pages++ }
	second, err := c.ListDependents(context.Background(), root, opts)
	require.NoError(t, err)
	assert.Equal(t, first.FullNames(), second.FullNames())
	assert.Zero(t, pages, "cached scans do not report pages")

	s.mu.Lock()
	assert.Equal(t, 1, s.hits["/acme/lib/network/dependents"])
	s.mu.Unlock()

	n, err := c.DependentsCount(context.Background(), s.repo("alice/app", "Go"), "")
	require.NoError(t, err)
	assert.EqualValues(t, 9, n)
	s.mu.Lock()
	assert.Equal(t, 1, s.hits["/alice/app/network/dependents"], "count served from cache")
	s.mu.Unlock()

	other := DefaultScanOptions()
	other.MinDependents = 10
	filtered, err := c.ListDependents(context.Background(), root, other)
	require.NoError(t, err)
	assert.Empty(t, filtered.Dependents, "different options are not served from the first scan")

	fresh := newTestClient(s, resolver, WithCache(fc, nil, time.Hour), WithRefresh(true))
	_, err = fresh.ListDependents(context.Background(), root, DefaultScanOptions())
	require.NoError(t, err)
	s.mu.Lock()
	assert.Equal(t, 3, s.hits["/acme/lib/network/dependents"])
	s.mu.Unlock()
}

type recordingHooks struct {
	observability.NoopScanHooks
	observability.NoopCacheHooks
	mu     sync.Mutex
	starts int
	stats  []observability.ScanStats
	hits   map[string]int
	misses map[string]int
}

func (h *recordingHooks) OnScanStart(context.Context, string, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *recordingHooks) OnScanComplete(_ context.Context, _ string, st observability.ScanStats, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = append(h.stats, st)
}

func (h *recordingHooks) OnCacheHit(_ context.Context, kind string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[kind]++
}

func (h *recordingHooks) OnCacheMiss(_ context.Context, kind string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses[kind]++
}

func TestClient_ListDependents_Hooks(t *testing.T) {
	hooks := &recordingHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetScanHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newSite(t)
	root := s.repo("acme/lib", "Go")
	s.set("/acme/lib/network/dependents", listPage(2, []string{"alice/app", "bob/tool"}, ""))
	s.countOnly("alice/app", 4)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newTestClient(s, newFakeResolver(root, s.repo("alice/app", "Go"), s.repo("bob/tool", "Rust")),
		WithCache(fc, nil, time.Hour))

	for range 2 {
		_, err := c.ListDependents(context.Background(), root, DefaultScanOptions())
		require.NoError(t, err)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, 1, hooks.starts, "second scan is a cache hit")
	require.Len(t, hooks.stats, 1)
	assert.Equal(t, 1, hooks.stats[0].Pages)
	assert.Equal(t, 1, hooks.stats[0].Kept)
	assert.Equal(t, 1, hooks.stats[0].Skipped)
	assert.Equal(t, 1, hooks.hits[observability.KeyScan])
	assert.Equal(t, 1, hooks.misses[observability.KeyScan])
	assert.Equal(t, 1, hooks.misses[observability.KeyCount])
}

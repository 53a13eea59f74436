package network

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T, name, pageURL string) *goquery.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	if pageURL != "" {
		doc.Url, _ = url.Parse(pageURL)
	}
	return doc
}

func htmlDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestParsePackages(t *testing.T) {
	doc := loadFixture(t, "packages.html", "")
	got := parsePackages(doc)

	want := []Package{
		{ID: "UGFja2FnZS0xODM1NDI5OA==", Name: "com.fasterxml.jackson.core:jackson-core"},
		{ID: "UGFja2FnZS00NzE2MDI=", Name: "com.fasterxml.jackson:jackson-base"},
	}
	assert.Equal(t, want, got)
}

func TestParsePackages_None(t *testing.T) {
	doc := loadFixture(t, "dependents_first.html", "")
	assert.Empty(t, parsePackages(doc))
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   int64
		wantOK bool
	}{
		{
			name:   "thousands separators",
			body:   `<div><a class="btn-link">1,234,567 Repositories</a></div>`,
			want:   1234567,
			wantOK: true,
		},
		{
			name:   "zero",
			body:   `<div><a class="btn-link selected">0 Repositories</a></div>`,
			want:   0,
			wantOK: true,
		},
		{
			name:   "unexpected text",
			body:   `<div><a class="btn-link">Repositories</a></div>`,
			want:   0,
			wantOK: true,
		},
		{
			name:   "packages only",
			body:   `<div><a class="btn-link">7 Packages</a></div>`,
			want:   0,
			wantOK: true,
		},
		{
			name:   "not first child",
			body:   `<div><span>x</span><a class="btn-link">5 Repositories</a></div>`,
			wantOK: false,
		},
		{
			name:   "missing",
			body:   `<div><p>nothing here</p></div>`,
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseCount(htmlDoc(t, tt.body))
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCount_Fixture(t *testing.T) {
	n, ok := parseCount(loadFixture(t, "packages.html", ""))
	assert.True(t, ok)
	assert.EqualValues(t, 1234567, n)

	_, ok = parseCount(loadFixture(t, "unknown_layout.html", ""))
	assert.False(t, ok, "unknown layout has no count button")
}

func TestParseDependents(t *testing.T) {
	refs := parseDependents(loadFixture(t, "dependents_first.html", ""))
	want := []string{"alice/service", "acme/platform", "bob/scripts"}
	require.Len(t, refs, len(want))
	for i, w := range want {
		assert.Equal(t, w, refs[i].String(), "row %d", i)
	}

	last := parseDependents(loadFixture(t, "dependents_last.html", ""))
	require.Len(t, last, 1, "rows without owner/name are ignored")
	assert.Equal(t, "carol/tool", last[0].String())
}

func TestRepoRefKey(t *testing.T) {
	a := repoRef{owner: "FasterXML", name: "Jackson-Core"}
	b := repoRef{owner: "fasterxml", name: "jackson-core"}
	assert.Equal(t, a.key(), b.key())
}

func TestNextPage(t *testing.T) {
	const page = "https://github.com/FasterXML/jackson-core/network/dependents"

	assert.Equal(t,
		"https://github.com/FasterXML/jackson-core/network/dependents?dependents_after=MTIzNDU",
		nextPage(loadFixture(t, "dependents_first.html", page)))
	assert.Empty(t, nextPage(loadFixture(t, "dependents_last.html", page)), "last page")
	assert.Empty(t, nextPage(loadFixture(t, "unknown_layout.html", page)), "unknown layout")
}

func TestNextPage_Absolute(t *testing.T) {
	doc := htmlDoc(t, `<div><a class="btn">Previous</a><a class="btn" href="https://example.com/next">Next</a></div>`)
	assert.Equal(t, "https://example.com/next", nextPage(doc))

	rel := htmlDoc(t, `<div><a class="btn">Previous</a><a class="btn" href="/next">Next</a></div>`)
	assert.Empty(t, nextPage(rel), "relative link without page URL")
}

func readFixture(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join("testdata", name))
	return string(b), err
}

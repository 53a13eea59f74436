package network

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors and patterns for the dependents page markup.
const (
	selPackageItem = "a.select-menu-item"
	selCountButton = "a.btn-link:nth-child(1)"
	selDependent   = "div.Box-row > span"
	selNextPage    = "a.btn:nth-child(2)"
)

var (
	countPattern     = regexp.MustCompile(`^\s*([0-9,]+)\s+Repositories\s*$`)
	repoPattern      = regexp.MustCompile(`^\s*(\S+)\s*/\s*(\S+)\s*$`)
	packageIDPattern = regexp.MustCompile(`[^?]+.*\?package_id=([a-zA-Z0-9=]+)`)
)

type repoRef struct {
	owner, name string
}

func (r repoRef) String() string { return r.owner + "/" + r.name }

// key is the case-insensitive identity of a repository on GitHub.
func (r repoRef) key() string { return strings.ToLower(r.String()) }

// parsePackages extracts the package menu. Items whose href carries no
// package_id or whose label is blank are ignored; duplicates are removed.
func parsePackages(doc *goquery.Document) []Package {
	seen := make(map[Package]bool)
	var pkgs []Package
	doc.Find(selPackageItem).Each(func(_ int, s *goquery.Selection) {
		href, err := url.QueryUnescape(s.AttrOr("href", ""))
		if err != nil {
			return
		}
		m := packageIDPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		name := strings.TrimSpace(s.Find("span").First().Text())
		if name == "" {
			return
		}
		p := Package{ID: m[1], Name: name}
		if !seen[p] {
			seen[p] = true
			pkgs = append(pkgs, p)
		}
	})
	SortPackages(pkgs)
	return pkgs
}

// parseCount reads the "N Repositories" button. ok is false when the
// button is missing; a button with unexpected text counts as 0.
func parseCount(doc *goquery.Document) (n int64, ok bool) {
	btn := doc.Find(selCountButton).First()
	if btn.Length() == 0 {
		return 0, false
	}
	m := countPattern.FindStringSubmatch(btn.Text())
	if m == nil {
		return 0, true
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(m[1], ",", ""), 10, 64)
	if err != nil {
		return 0, true
	}
	return n, true
}

// parseDependents extracts "owner / name" rows in page order.
func parseDependents(doc *goquery.Document) []repoRef {
	var refs []repoRef
	doc.Find(selDependent).Each(func(_ int, s *goquery.Selection) {
		if m := repoPattern.FindStringSubmatch(s.Text()); m != nil {
			refs = append(refs, repoRef{owner: m[1], name: m[2]})
		}
	})
	return refs
}

// nextPage returns the absolute URL of the next dependents page, or "".
func nextPage(doc *goquery.Document) string {
	href, ok := doc.Find(selNextPage).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if doc.Url != nil {
		u = doc.Url.ResolveReference(u)
	}
	if !u.IsAbs() {
		return ""
	}
	return u.String()
}

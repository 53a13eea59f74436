package integrations

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrNotFound is returned when a page, owner or repository doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrRateLimited is returned when GitHub answers 429 Too Many Requests.
	ErrRateLimited = errors.New("rate limited")
)

var repoURLReplacer = strings.NewReplacer(
	"git@github.com:", "https://github.com/",
	"git://github.com/", "https://github.com/",
	"http://github.com/", "https://github.com/",
	"http://www.github.com/", "https://github.com/",
	"https://www.github.com/", "https://github.com/",
)

// NormalizeRepoURL converts various repository URL formats to canonical HTTPS form.
// Handles git@, git://, git+ and www. prefixes, and removes .git suffixes and
// trailing slashes. Returns empty string if raw is empty.
func NormalizeRepoURL(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")
	s = repoURLReplacer.Replace(s)
	s = strings.TrimRight(s, "/")
	return strings.TrimSuffix(s, ".git")
}

// URLEncode percent-encodes a string for use in URL query values.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

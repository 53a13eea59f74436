package cache

// ScopedKeyer wraps a Keyer with a prefix.
//
// Authenticated API lookups can see private repositories, so their entries
// are scoped to the token owner and never served to anonymous callers:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "user:"+Hash([]byte(token))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PageKey generates a prefixed page key.
func (k *ScopedKeyer) PageKey(url string) string {
	return k.prefix + k.inner.PageKey(url)
}

// APIKey generates a prefixed API object key.
func (k *ScopedKeyer) APIKey(kind, id string) string {
	return k.prefix + k.inner.APIKey(kind, id)
}

// CountKey generates a prefixed count key.
func (k *ScopedKeyer) CountKey(fullName, packageID string) string {
	return k.prefix + k.inner.CountKey(fullName, packageID)
}

// ScanKey generates a prefixed scan key.
func (k *ScopedKeyer) ScanKey(fullName string, opts ScanKeyOpts) string {
	return k.prefix + k.inner.ScanKey(fullName, opts)
}

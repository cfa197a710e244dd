package cache

// ScopedKeyer prefixes every key of an inner Keyer. Servers use it to keep
// their entries apart when several deployments share one Redis instance:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "flowlayout:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey returns the prefixed layout key.
func (k *ScopedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(docHash, opts)
}

// RenderKey returns the prefixed render key.
func (k *ScopedKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(docHash, opts)
}

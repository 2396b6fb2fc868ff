package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several deployments (or a test run) share one Redis
// database.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// NetlistKey generates a prefixed key for netlist caching.
func (k *ScopedKeyer) NetlistKey(source, request string) string {
	return k.prefix + k.inner.NetlistKey(source, request)
}

// TextKey generates a prefixed key for explanation and firmware caching.
func (k *ScopedKeyer) TextKey(kind, netlistHash, request string) string {
	return k.prefix + k.inner.TextKey(kind, netlistHash, request)
}

// ArtifactKey generates a prefixed key for image caching.
func (k *ScopedKeyer) ArtifactKey(netlistHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(netlistHash, opts)
}

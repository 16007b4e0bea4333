package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving separate
// namespaces on a shared backend such as one Redis instance used by several
// deployments.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "lanegraph:staging:")
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ReportKey generates a prefixed report key.
func (k *ScopedKeyer) ReportKey(descHash string, opts ReportKeyOpts) string {
	return k.prefix + k.inner.ReportKey(descHash, opts)
}

package cache

// ScopedKeyer prefixes every key of an inner Keyer. Sources sharing one
// Redis instance each get their own prefix:
//
//	supa := NewScopedKeyer(nil, "supabase:"+projectRef+":")
//	mongo := NewScopedKeyer(nil, "mongo:"+database+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner. A nil inner means DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) ModulesKey() string { return k.prefix + k.inner.ModulesKey() }

func (k *ScopedKeyer) ProgressKey(userID string) string {
	return k.prefix + k.inner.ProgressKey(userID)
}

func (k *ScopedKeyer) AccessKey(userID, moduleID string) string {
	return k.prefix + k.inner.AccessKey(userID, moduleID)
}

func (k *ScopedKeyer) SubscriptionKey(userID string) string {
	return k.prefix + k.inner.SubscriptionKey(userID)
}

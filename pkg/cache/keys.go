package cache

// Keyer derives cache keys for catalog responses.
type Keyer interface {
	ModulesKey() string
	ProgressKey(userID string) string
	AccessKey(userID, moduleID string) string
	SubscriptionKey(userID string) string
}

// DefaultKeyer produces unscoped keys. Wrap it in a [ScopedKeyer] to
// separate sources that share a backend.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ModulesKey() string { return "modules" }

func (DefaultKeyer) ProgressKey(userID string) string {
	return hashKey("progress", userID)
}

func (DefaultKeyer) AccessKey(userID, moduleID string) string {
	return hashKey("access", userID, moduleID)
}

func (DefaultKeyer) SubscriptionKey(userID string) string {
	return hashKey("subscription", userID)
}

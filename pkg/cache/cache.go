// Package cache stores fetched catalog responses between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per key under the user cache directory
//   - [RedisCache]: a shared Redis instance, used by `moduletree serve`
//   - [NullCache]: never stores anything (`[cache] backend = "none"`)
//
// Keys come from a [Keyer] so that responses from different sources and
// users never collide:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "supabase:")
//	data, ok, err := c.Get(ctx, k.ModulesKey())
//
// Only the module list is shared between users. Progress, access and
// subscription keys always include the user id.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL applies when the configuration leaves the TTL unset.
const DefaultTTL = 10 * time.Minute

// DefaultDir returns $XDG_CACHE_HOME/moduletree, falling back to
// ~/.cache/moduletree.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "moduletree"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "moduletree"), nil
}

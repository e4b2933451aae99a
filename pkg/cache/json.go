package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/moduletree/pkg/observability"
)

// GetJSON decodes the entry for key into v. Undecodable entries are
// deleted and reported as misses. namespace labels the hit/miss hooks.
func GetJSON(ctx context.Context, c Cache, namespace, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		observability.Cache().OnCacheMiss(ctx, namespace)
		return false, nil
	}
	observability.Cache().OnCacheHit(ctx, namespace)
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, namespace, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, namespace, len(data))
	return nil
}

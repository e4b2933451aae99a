package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/moduletree/pkg/cache"
	"github.com/matzehuels/moduletree/pkg/catalog"
	mterrors "github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/integrations"
)

const (
	rpcModuleTree   = "/rest/v1/rpc/get_module_tree"
	rpcModuleAccess = "/rest/v1/rpc/user_has_module_access"
	rpcSubscription = "/rest/v1/rpc/get_user_active_subscription"
	tableProgress   = "/rest/v1/user_progress"

	progressColumns = "module_id,completed_exercises,last_position,completed_at,started_at"
)

// Config configures a Client.
type Config struct {
	// URL is the project URL, e.g. https://abcd.supabase.co.
	URL string
	// APIKey is the project's anon key.
	APIKey string
	// AccessToken is the user's session token. Empty means APIKey.
	AccessToken string
	// Cache stores responses. Nil disables caching.
	Cache cache.Cache
	// TTL is the lifetime of cached responses. Zero means cache.DefaultTTL.
	TTL time.Duration
	// Refresh ignores cached responses but still writes fresh ones.
	Refresh bool
}

// Client is a catalog.Source backed by Supabase. It is safe for concurrent
// use.
type Client struct {
	*integrations.Client
	baseURL string
	keys    cache.Keyer
	refresh bool
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, mterrors.New(mterrors.ErrCodeInvalidConfig, "invalid supabase url %q", cfg.URL)
	}
	if cfg.APIKey == "" {
		return nil, mterrors.New(mterrors.ErrCodeInvalidConfig, "supabase api key is required")
	}
	token := cfg.AccessToken
	if token == "" {
		token = cfg.APIKey
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	headers := map[string]string{
		"apikey":        cfg.APIKey,
		"Authorization": "Bearer " + token,
	}
	return &Client{
		Client:  integrations.NewClient(cfg.Cache, "supabase", ttl, headers),
		baseURL: strings.TrimRight(u.String(), "/"),
		keys:    cache.NewScopedKeyer(nil, "supabase:"+u.Host+":"),
		refresh: cfg.Refresh,
	}, nil
}

// ModuleList calls get_module_tree.
func (c *Client) ModuleList(ctx context.Context) ([]catalog.Module, error) {
	var mods []catalog.Module
	err := c.Cached(ctx, c.keys.ModulesKey(), c.refresh, &mods, func() error {
		mods = nil
		return c.Post(ctx, c.baseURL+rpcModuleTree, struct{}{}, &mods)
	})
	if err != nil {
		return nil, fmt.Errorf("get_module_tree: %w", err)
	}
	return mods, nil
}

// UserProgress reads the user's rows from user_progress.
func (c *Client) UserProgress(ctx context.Context, userID string) ([]catalog.Progress, error) {
	if err := mterrors.ValidateUserID(userID); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("select", progressColumns)
	q.Set("user_id", "eq."+userID)

	var rows []progressRow
	err := c.Cached(ctx, c.keys.ProgressKey(userID), c.refresh, &rows, func() error {
		rows = nil
		return c.Get(ctx, c.baseURL+tableProgress+"?"+q.Encode(), &rows)
	})
	if err != nil {
		return nil, fmt.Errorf("user_progress: %w", err)
	}

	out := make([]catalog.Progress, 0, len(rows))
	for _, r := range rows {
		p, err := r.progress()
		if err != nil {
			return nil, fmt.Errorf("user_progress %s: %w", r.ModuleID, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// CheckModuleAccess calls user_has_module_access. A null answer is a denial.
func (c *Client) CheckModuleAccess(ctx context.Context, userID, moduleID string) (bool, error) {
	var granted *bool
	body := map[string]string{"user_uuid": userID, "module_uuid": moduleID}
	err := c.Cached(ctx, c.keys.AccessKey(userID, moduleID), c.refresh, &granted, func() error {
		granted = nil
		return c.Post(ctx, c.baseURL+rpcModuleAccess, body, &granted)
	})
	if err != nil {
		return false, fmt.Errorf("user_has_module_access %s: %w", moduleID, err)
	}
	return granted != nil && *granted, nil
}

// ActiveSubscription calls get_user_active_subscription. It returns nil
// when the user has none.
func (c *Client) ActiveSubscription(ctx context.Context, userID string) (*catalog.Subscription, error) {
	var raw json.RawMessage
	body := map[string]string{"user_uuid": userID}
	err := c.Cached(ctx, c.keys.SubscriptionKey(userID), c.refresh, &raw, func() error {
		raw = nil
		return c.Post(ctx, c.baseURL+rpcSubscription, body, &raw)
	})
	if err != nil {
		return nil, fmt.Errorf("get_user_active_subscription: %w", err)
	}
	return decodeSubscription(raw)
}

// InvalidateUser drops the user's cached progress, subscription and the
// access decisions for moduleIDs.
func (c *Client) InvalidateUser(ctx context.Context, userID string, moduleIDs ...string) error {
	keys := []string{c.keys.ProgressKey(userID), c.keys.SubscriptionKey(userID)}
	for _, id := range moduleIDs {
		keys = append(keys, c.keys.AccessKey(userID, id))
	}
	var errs []error
	for _, k := range keys {
		errs = append(errs, c.Invalidate(ctx, k))
	}
	return errors.Join(errs...)
}

var _ catalog.Source = (*Client)(nil)

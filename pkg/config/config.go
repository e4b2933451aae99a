// Package config loads moduletree's TOML configuration.
//
// A configuration file looks like:
//
//	[source]
//	kind = "supabase"            # file | supabase | mongo
//	url = "https://abcd.supabase.co"
//
//	[cache]
//	backend = "file"             # file | redis | none
//	ttl = "10m"
//
//	[user]
//	id = "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10"
//
//	[layout]
//	node_width = 160
//
// Secrets are read from the environment rather than the file:
// MODULETREE_SUPABASE_KEY, MODULETREE_SUPABASE_TOKEN and MODULETREE_MONGO_URI.
// MODULETREE_USER overrides [user] id. Command line flags override both.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/moduletree/pkg/cache"
	mterrors "github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
)

// Source kinds.
const (
	SourceFile     = "file"
	SourceSupabase = "supabase"
	SourceMongo    = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Defaults.
const (
	DefaultSourcePath   = "catalog.toml"
	DefaultRedisAddr    = "localhost:6379"
	DefaultPixelRatio   = 1
	DefaultRenderWidth  = 1200
	DefaultRenderHeight = 800
	DefaultServerAddr   = ":8080"
	DefaultFetchTimeout = 30 * time.Second
)

// Environment variables read by ApplyEnv.
const (
	EnvSupabaseKey   = "MODULETREE_SUPABASE_KEY"
	EnvSupabaseToken = "MODULETREE_SUPABASE_TOKEN"
	EnvMongoURI      = "MODULETREE_MONGO_URI"
	EnvUser          = "MODULETREE_USER"
)

// Config is the full configuration.
type Config struct {
	Source   SourceConfig   `toml:"source"`
	Cache    CacheConfig    `toml:"cache"`
	User     UserConfig     `toml:"user"`
	Layout   layout.Config  `toml:"layout"`
	Render   RenderConfig   `toml:"render"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`

	validated bool
}

// SourceConfig selects and configures the catalog source.
type SourceConfig struct {
	Kind string `toml:"kind"`

	// Path is the fixture file for kind "file".
	Path string `toml:"path"`

	URL         string `toml:"url"`
	APIKey      string `toml:"api_key"`
	AccessToken string `toml:"access_token"`

	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// CacheConfig configures response caching for remote sources.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"ttl"`
}

// UserConfig identifies the user whose tree is loaded.
type UserConfig struct {
	ID string `toml:"id"`
}

// RenderConfig configures raster output.
type RenderConfig struct {
	PixelRatio float64 `toml:"pixel_ratio"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	Currency   string  `toml:"currency"`
	Completed  string  `toml:"completed_label"`
	Locked     string  `toml:"locked_label"`
	Free       string  `toml:"free_label"`
}

// PipelineConfig configures loading.
type PipelineConfig struct {
	AccessConcurrency  int           `toml:"access_concurrency"`
	StrictSubscription bool          `toml:"strict_subscription"`
	Timeout            time.Duration `toml:"timeout"`
}

// ServerConfig configures `moduletree serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns a configuration reading the fixture catalog.toml with a
// file cache.
func Default() *Config {
	return &Config{
		Source:   SourceConfig{Kind: SourceFile, Path: DefaultSourcePath},
		Cache:    CacheConfig{Backend: CacheFile, TTL: cache.DefaultTTL},
		Layout:   layout.DefaultConfig(),
		Render:   RenderConfig{PixelRatio: DefaultPixelRatio, Width: DefaultRenderWidth, Height: DefaultRenderHeight},
		Pipeline: PipelineConfig{Timeout: DefaultFetchTimeout},
		Server:   ServerConfig{Addr: DefaultServerAddr},
	}
}

// Load reads path over the defaults and applies the environment. An empty
// path skips the file; a missing file is FILE_NOT_FOUND.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, mterrors.Wrap(mterrors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "parse config %s", path)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Parse decodes TOML text over the defaults. The environment is not read.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, cfg); err != nil {
		return nil, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, nil
}

// ApplyEnv fills secrets and the user id from getenv. Values already set
// in the file are overridden only by MODULETREE_USER.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvSupabaseKey); v != "" {
		c.Source.APIKey = v
	}
	if v := getenv(EnvSupabaseToken); v != "" {
		c.Source.AccessToken = v
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Source.MongoURI = v
	}
	if v := getenv(EnvUser); v != "" {
		c.User.ID = v
	}
}

// ValidateAndSetDefaults fills unset fields and checks the result. It is
// idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if c.validated {
		return nil
	}
	d := Default()

	if c.Source.Kind == "" {
		c.Source.Kind = SourceFile
	}
	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Path == "" {
			c.Source.Path = DefaultSourcePath
		}
	case SourceSupabase:
		if c.Source.URL == "" {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "source.url is required for supabase")
		}
		if c.Source.APIKey == "" {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "supabase api key is required (set %s)", EnvSupabaseKey)
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "mongo uri is required (set %s)", EnvMongoURI)
		}
	default:
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown source kind %q", c.Source.Kind)
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			c.Cache.RedisAddr = DefaultRedisAddr
		}
	default:
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = d.Cache.TTL
	}

	c.Layout = c.Layout.WithDefaults()
	if err := c.Layout.Validate(); err != nil {
		return err
	}

	if c.Render.PixelRatio <= 0 {
		c.Render.PixelRatio = d.Render.PixelRatio
	}
	if c.Render.Width <= 0 {
		c.Render.Width = d.Render.Width
	}
	if c.Render.Height <= 0 {
		c.Render.Height = d.Render.Height
	}

	if c.Pipeline.AccessConcurrency < 0 {
		c.Pipeline.AccessConcurrency = 0
	}
	if c.Pipeline.Timeout <= 0 {
		c.Pipeline.Timeout = d.Pipeline.Timeout
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}

	c.validated = true
	return nil
}

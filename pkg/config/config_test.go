package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	mterrors "github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if cfg.Layout != layout.DefaultConfig() {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Source.Kind != SourceFile || cfg.Cache.Backend != CacheFile {
		t.Errorf("source=%q cache=%q", cfg.Source.Kind, cfg.Cache.Backend)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[source]
kind = "supabase"
url = "https://abcd.supabase.co"
api_key = "anon"

[cache]
backend = "redis"
ttl = "90s"

[layout]
node_width = 180
node_spacing = 240

[render]
pixel_ratio = 2
currency = "$"

[pipeline]
access_concurrency = 8
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if cfg.Cache.TTL != 90*time.Second {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}
	if cfg.Cache.RedisAddr != DefaultRedisAddr {
		t.Errorf("RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Layout.NodeWidth != 180 || cfg.Layout.NodeHeight != layout.DefaultNodeHeight {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Render.PixelRatio != 2 || cfg.Render.Currency != "$" || cfg.Render.Width != DefaultRenderWidth {
		t.Errorf("Render = %+v", cfg.Render)
	}
	if cfg.Pipeline.AccessConcurrency != 8 || cfg.Pipeline.Timeout != DefaultFetchTimeout {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"unknown source", `[source]
kind = "ftp"`},
		{"supabase without url", `[source]
kind = "supabase"
api_key = "k"`},
		{"supabase without key", `[source]
kind = "supabase"
url = "https://x.supabase.co"`},
		{"mongo without uri", `[source]
kind = "mongo"`},
		{"unknown cache", `[cache]
backend = "memcached"`},
		{"node taller than spacing", `[layout]
node_height = 200`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if err := cfg.ValidateAndSetDefaults(); !mterrors.Is(err, mterrors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := Parse("[source\nkind="); !mterrors.Is(err, mterrors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.User.ID = "from-file"
	env := map[string]string{
		EnvSupabaseKey: "secret",
		EnvUser:        "from-env",
		EnvMongoURI:    "mongodb://localhost",
	}
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.Source.APIKey != "secret" || cfg.User.ID != "from-env" || cfg.Source.MongoURI != "mongodb://localhost" {
		t.Errorf("after ApplyEnv: source=%+v user=%+v", cfg.Source, cfg.User)
	}
	if cfg.Source.AccessToken != "" {
		t.Errorf("unset variables must not clear values: %q", cfg.Source.AccessToken)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvUser, "6f1c2a9e-3b7d-4c1e-9a55-0d2f8e4b7c10")

	path := filepath.Join(t.TempDir(), "moduletree.toml")
	if err := os.WriteFile(path, []byte("[source]\npath = \"fixtures/tree.json\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Source.Path != "fixtures/tree.json" || cfg.Source.Kind != SourceFile {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.User.ID == "" {
		t.Error("user should come from the environment")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !mterrors.Is(err, mterrors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if cfg, err := Load(""); err != nil || cfg.Source.Kind != SourceFile {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestValidateIdempotent(t *testing.T) {
	cfg := Default()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	cfg.Source.Kind = "bogus"
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op: %v", err)
	}
}

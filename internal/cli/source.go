package cli

import (
	"context"
	"net/url"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/moduletree/pkg/cache"
	"github.com/matzehuels/moduletree/pkg/catalog"
	"github.com/matzehuels/moduletree/pkg/catalog/file"
	"github.com/matzehuels/moduletree/pkg/catalog/mongo"
	"github.com/matzehuels/moduletree/pkg/config"
	"github.com/matzehuels/moduletree/pkg/errors"
	"github.com/matzehuels/moduletree/pkg/integrations/supabase"
	"github.com/matzehuels/moduletree/pkg/layout"
	"github.com/matzehuels/moduletree/pkg/pipeline"
	"github.com/matzehuels/moduletree/pkg/render/canvas"
)

// =============================================================================
// Source Factory
// =============================================================================

// backend is an opened catalog source and whatever must be closed with it.
type backend struct {
	source catalog.Source
	cache  cache.Cache
	closer func(context.Context) error
}

// Close releases the source connection and the cache.
func (b *backend) Close(ctx context.Context) error {
	var err error
	if b.closer != nil {
		err = b.closer(ctx)
	}
	if b.cache != nil {
		if cerr := b.cache.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// openBackend opens the source named by cfg.Source.Kind. Remote sources get
// the configured response cache; a fixture file is read once and needs none.
func openBackend(ctx context.Context, cfg *config.Config, refresh bool, logger *log.Logger) (*backend, error) {
	switch cfg.Source.Kind {
	case config.SourceFile:
		src, err := file.Open(cfg.Source.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("opened fixture catalog", "path", cfg.Source.Path)
		return &backend{source: src}, nil

	case config.SourceSupabase:
		c, err := newCache(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client, err := supabase.NewClient(supabase.Config{
			URL:         cfg.Source.URL,
			APIKey:      cfg.Source.APIKey,
			AccessToken: cfg.Source.AccessToken,
			Cache:       c,
			TTL:         cfg.Cache.TTL,
			Refresh:     refresh,
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		logger.Debug("using supabase catalog", "url", cfg.Source.URL, "cache", cfg.Cache.Backend)
		return &backend{source: client, cache: c}, nil

	case config.SourceMongo:
		src, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Source.MongoURI,
			Database: cfg.Source.Database,
			Timeout:  cfg.Pipeline.Timeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("connected to mongo catalog", "host", redactURI(cfg.Source.MongoURI), "database", src.Database().Name())
		return &backend{source: src, closer: src.Close}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown source kind %q", cfg.Source.Kind)
}

// redactURI drops credentials and path from a connection string.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "?"
	}
	return u.Host
}

// =============================================================================
// Cache Factory
// =============================================================================

func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// =============================================================================
// Pipeline and Renderer
// =============================================================================

func newRunner(src catalog.Source, cfg *config.Config, logger *log.Logger, onStage func(pipeline.Stage)) *pipeline.Runner {
	opts := []pipeline.RunnerOption{
		pipeline.WithEngine(layout.New(layout.WithConfig(cfg.Layout))),
		pipeline.WithLogger(logger),
	}
	if onStage != nil {
		opts = append(opts, pipeline.WithStageCallback(onStage))
	}
	return pipeline.NewRunner(src, opts...)
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		UserID:             cfg.User.ID,
		AccessConcurrency:  cfg.Pipeline.AccessConcurrency,
		StrictSubscription: cfg.Pipeline.StrictSubscription,
	}
}

// labels returns the default captions with the configured overrides.
func labels(cfg *config.Config) canvas.Labels {
	l := canvas.DefaultLabels()
	if cfg.Render.Currency != "" {
		l.Currency = cfg.Render.Currency
	}
	if cfg.Render.Completed != "" {
		l.Completed = cfg.Render.Completed
	}
	if cfg.Render.Locked != "" {
		l.Locked = cfg.Render.Locked
	}
	if cfg.Render.Free != "" {
		l.Free = cfg.Render.Free
	}
	return l
}

func newRenderer(cfg *config.Config, pixelRatio float64, logger *log.Logger) *canvas.Renderer {
	if pixelRatio <= 0 {
		pixelRatio = cfg.Render.PixelRatio
	}
	return canvas.New(
		canvas.WithLabels(labels(cfg)),
		canvas.WithPixelRatio(pixelRatio),
		canvas.WithLogger(logger),
	)
}

// =============================================================================
// Load
// =============================================================================

// loadTree opens the configured source and runs the pipeline once within
// the configured fetch timeout.
func (c *CLI) loadTree(ctx context.Context, cfg *config.Config, refresh bool, onStage func(pipeline.Stage)) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, cfg.Pipeline.Timeout)
	defer cancel()

	b, err := openBackend(ctx, cfg, refresh, logger)
	if err != nil {
		return nil, err
	}
	defer b.Close(context.WithoutCancel(ctx))

	prog := newProgress(logger)
	res, err := newRunner(b.source, cfg, logger, onStage).Execute(ctx, pipelineOptions(cfg))
	if err != nil {
		return nil, err
	}
	prog.done(pluralize(res.Stats.Modules, "module", "modules") + " laid out")
	return res, nil
}

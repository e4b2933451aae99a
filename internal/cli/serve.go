package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/moduletree/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the API server command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve module tree layouts as JSON",
		Long: `Serve module tree layouts as JSON.

Endpoints:
  GET  /api/tree?user=ID                  positioned tree, subscription and stats
  GET  /api/modules/{id}?user=ID          module preview
  POST /api/modules/{id}/visit?user=ID    resolve the module's slug
  POST /api/modules/{id}/purchase?user=ID request a purchase
  GET  /metrics                           Prometheus metrics
  GET  /healthz                           liveness

Requests without ?user= use the configured user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}
	logger := loggerFromContext(ctx)

	b, err := openBackend(ctx, cfg, false, logger)
	if err != nil {
		return err
	}
	defer b.Close(context.WithoutCancel(ctx))

	metrics := observability.NewMetrics(nil)
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := &http.Server{
		Addr:         addr,
		Handler:      newServer(b.source, cfg, metrics, logger).routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Pipeline.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "source", cfg.Source.Kind, "cache", cfg.Cache.Backend)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

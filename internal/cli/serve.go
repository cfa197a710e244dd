package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlayout/pkg/config"
	"github.com/matzehuels/flowlayout/pkg/observability"
	"github.com/matzehuels/flowlayout/pkg/server"
	"github.com/matzehuels/flowlayout/pkg/store"
)

// cleanupInterval is how often expired runs are pruned from the history.
const cleanupInterval = time.Hour

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

POST a process schema to /v1/layout to get it back with coordinates, or to
/v1/render to get a drawing. Recent runs are listed under /v1/runs and
Prometheus metrics are exposed at /metrics.

The run history is kept in MongoDB when server.mongo_uri is set, in
server.history_dir when that is set, and in memory otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

// runServe serves until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	cfg := c.cfg.Server

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	history, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer history.Close()
	if cfg.HistoryRetention > 0 {
		go pruneHistory(ctx, history, cfg.HistoryRetention, c.Logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	observability.SetLayoutHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	defer observability.Reset()

	srv := server.New(runner, history, server.Options{
		Config:       c.cfg.Layout,
		FirstStart:   c.cfg.Output.FirstStart,
		MaxBodyBytes: cfg.MaxBodyBytes,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		Gatherer:     reg,
		Logger:       c.Logger,
	})

	printSuccess("Serving on %s", StyleLink.Render(cfg.Addr))
	printKeyValue("Cache", c.cfg.Cache.Backend)
	printKeyValue("History", historyKind(cfg))
	printNewline()
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// openHistory opens the configured run history backend.
func openHistory(ctx context.Context, cfg config.Server) (store.Store, error) {
	switch {
	case cfg.MongoURI != "":
		s, err := store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		return s, nil
	case cfg.HistoryDir != "":
		return store.NewFileStore(cfg.HistoryDir)
	}
	return store.NewMemoryStore(0), nil
}

func historyKind(cfg config.Server) string {
	switch {
	case cfg.MongoURI != "":
		return "mongodb (" + cfg.MongoDatabase + ")"
	case cfg.HistoryDir != "":
		return cfg.HistoryDir
	}
	return "memory"
}

// pruneHistory removes runs older than retention until ctx is done.
func pruneHistory(ctx context.Context, s store.Store, retention time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		n, err := s.Cleanup(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Warn("history cleanup failed", "error", err)
		} else if n > 0 {
			logger.Debug("pruned history", "runs", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"homeerp/internal/adapters/resources"
	"homeerp/internal/blob"
	"homeerp/internal/core"
	"homeerp/internal/logging"
	"homeerp/internal/platform/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "homeerp",
		Short: "Home ERP record service",
		Long: `homeerp stores recipes, video events, inventory, transactions, video
templates and educational resources, and serves them as JSON over HTTP.

Configuration is read from HOMEERP_* environment variables.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newExportCmd())
	return root
}

// app is the wired object graph shared by the subcommands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	service  *core.Service
	exporter *core.Exporter
	registry *prometheus.Registry
}

func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger, err := logging.New(logOut, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	opts := []core.Option{core.WithLogger(logger)}
	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := core.NewPrometheusMetrics(registry)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, core.WithMetrics(metrics))
	}

	store, err := core.OpenRecordStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	blobs, err := blob.Open(ctx, cfg.BlobConfig())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("open %s blob store: %w", cfg.Blob.Driver, err)
	}
	svc := core.NewService(store, opts...)
	return &app{
		cfg:      cfg,
		logger:   logger,
		service:  svc,
		exporter: core.NewExporter(svc, blobs),
		registry: registry,
	}, nil
}

// handler mounts the resource API and, when enabled, /metrics.
func (a *app) handler() http.Handler {
	api := resources.NewHandler(a.service, a.exporter, a.logger)
	mux := http.NewServeMux()
	if a.registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	}
	mux.Handle("/", api)
	return resources.LogRequests(mux, a.logger)
}

func (a *app) Close() error {
	return a.service.Close()
}

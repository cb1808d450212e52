package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"homeerp/internal/platform/config"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until interrupted.

Examples:
  # Default: sqlite file homeerp.db, listening on :8080
  homeerp serve

  # Ephemeral in-memory store on another port
  homeerp serve --addr=:9090 --storage=memory
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.HTTPAddr = addr
			}
			if driver, _ := cmd.Flags().GetString("storage"); driver != "" {
				cfg.Storage.Driver = driver
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					a.logger.Error("close store", "error", err)
				}
			}()
			ln, err := net.Listen("tcp", cfg.HTTPAddr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
			}
			return a.serve(ctx, ln)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides HOMEERP_HTTP_ADDR)")
	cmd.Flags().String("storage", "", "Storage driver: memory, sqlite or postgres (overrides HOMEERP_STORAGE_DRIVER)")
	return cmd
}

// serve blocks until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
func (a *app) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	a.logger.Info("homeerp listening",
		"addr", ln.Addr().String(),
		"storage", a.cfg.Storage.Driver,
		"blob", a.cfg.Blob.Driver,
		"metrics", a.cfg.MetricsEnabled,
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("homeerp shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/telemetry/health"
	"mercator-hq/warden/pkg/tier"
	"mercator-hq/warden/pkg/trail"
	"mercator-hq/warden/pkg/trail/retention"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the long-lived companion process",
	Long: `Run alongside the hooks to provide what short-lived hook processes cannot:
  - hot reload of the tier catalog when catalog.watch is set
  - scheduled trail retention and stale session cleanup (trail.prune_schedule)
  - a Prometheus metrics endpoint and health probes

Logs go to stderr. The process stops on SIGINT or SIGTERM.

Examples:
  warden serve
  warden serve --listen 0.0.0.0:9464`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveFlags struct {
	listen string
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveFlags.listen, "listen", "", "override telemetry.metrics.listen_address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listen != "" {
		cfg.Telemetry.Metrics.ListenAddress = serveFlags.listen
	}

	a, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := cli.SignalContext(cmd.Context())
	defer cancel()

	if cfg.Catalog.Watch {
		watcher, err := tier.NewWatcher(&tier.WatcherConfig{DebounceInterval: cfg.Catalog.DebounceInterval}, a.logger)
		if err != nil {
			return fmt.Errorf("start catalog watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, a.holder); err != nil {
				a.logger.Error("catalog watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
	}

	scheduler := retention.NewScheduler(a.pruner(), a.logger)
	scheduler.OnPrune(func(result retention.Result, err error) {
		a.metrics.RecordTrailPruned(result.Records)
	})
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              cfg.Telemetry.Metrics.ListenAddress,
		Handler:           a.serveMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving metrics and health", "address", server.Addr, "metrics_path", cfg.Telemetry.Metrics.Path)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}

// serveMux routes the metrics endpoint and the health probes.
func (a *app) serveMux() *http.ServeMux {
	checker := health.New(2 * time.Second).WithVersion(Version)
	checker.RegisterCheck("catalog", func(ctx context.Context) error {
		if a.holder.Current() == nil {
			return errors.New("no tier catalog loaded")
		}
		return nil
	})
	checker.RegisterCheck("state", func(ctx context.Context) error {
		_, err := a.store.List(ctx)
		return err
	})
	if a.trail != nil {
		checker.RegisterCheck("trail", func(ctx context.Context) error {
			_, err := a.trail.Count(ctx, &trail.Query{Limit: 1})
			return err
		})
	}

	mux := http.NewServeMux()
	if a.cfg.Telemetry.Metrics.Enabled {
		mux.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())
	}
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	return mux
}

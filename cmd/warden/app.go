package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"mercator-hq/warden/pkg/cli"
	"mercator-hq/warden/pkg/config"
	"mercator-hq/warden/pkg/gatekeeper"
	"mercator-hq/warden/pkg/hook"
	"mercator-hq/warden/pkg/session"
	"mercator-hq/warden/pkg/telemetry/logging"
	"mercator-hq/warden/pkg/telemetry/metrics"
	"mercator-hq/warden/pkg/telemetry/tracing"
	"mercator-hq/warden/pkg/tier"
	"mercator-hq/warden/pkg/trail"
	"mercator-hq/warden/pkg/trail/recorder"
	"mercator-hq/warden/pkg/trail/retention"
	"mercator-hq/warden/pkg/trail/storage"
)

const shutdownTimeout = 5 * time.Second

// app is one process worth of wired components.
type app struct {
	cfg    *config.Config
	log    *logging.Logger
	logger *slog.Logger

	holder   *tier.Holder
	store    session.Store
	manager  *session.Manager
	trail    trail.Storage
	recorder *recorder.Recorder
	metrics  *metrics.Collector
	tracer   *tracing.Tracer

	gk         *gatekeeper.Gatekeeper
	translator *hook.Translator
}

// loadConfig reads the config file named by --config with WARDEN_*
// environment overrides, then applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	return cfg, nil
}

// newApp wires every component from cfg. logWriter, when non-nil, replaces
// the configured log file.
func newApp(cfg *config.Config, logWriter io.Writer) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	lc := cfg.Telemetry.Logging
	a.log, err = logging.New(logging.Config{
		Level:     lc.Level,
		Format:    lc.Format,
		AddSource: lc.AddSource,
		Redact:    lc.RedactSecrets,
		File:      lc.File,
		Writer:    logWriter,
	})
	if err != nil {
		return a, cli.NewConfigError("telemetry.logging", err.Error())
	}
	a.logger = a.log.Logger

	a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		a.logger.Warn("tracing disabled", "error", err)
		a.tracer = tracing.Noop()
	}

	a.holder = tier.NewHolder(cfg.Catalog.Path, a.logger)
	a.holder.OnReload(func(c *tier.Catalog, err error) {
		a.metrics.RecordCatalogReload(err, c.Len())
	})
	// A missing catalog degrades decisions to "tier undetermined".
	_ = a.holder.Load()

	a.store, err = openSessionStore(&cfg.State)
	if err != nil {
		return a, err
	}

	if cfg.Trail.Enabled {
		a.trail, err = openTrail(&cfg.Trail, a.logger)
		if err != nil {
			return a, err
		}
		a.recorder = recorder.NewRecorder(a.trail, &recorder.Config{AsyncBuffer: cfg.Trail.AsyncBuffer}, a.logger)
		a.recorder.OnDrop(a.metrics.RecordTrailDropped)
	}

	managerOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithMaxViolations(cfg.State.MaxViolations),
		session.WithFaultHook(func(op, id string, err error) {
			a.metrics.RecordStorageFault(op)
		}),
	}
	if a.recorder != nil {
		managerOpts = append(managerOpts, session.WithResetHook(func(ctx context.Context, id string) {
			if err := a.recorder.Reset(ctx, id); err != nil {
				a.logger.Warn("trail reset not queued", "session_id", id, "error", err)
			}
		}))
	}
	a.manager = session.NewManager(a.store, managerOpts...)

	rules, err := gatekeeper.RulesFromConfig(&cfg.Rules, cfg.State.MaxViolations)
	if err != nil {
		return a, cli.NewConfigError("rules", err.Error())
	}

	gkOpts := []gatekeeper.Option{
		gatekeeper.WithLogger(a.logger),
		gatekeeper.WithAdvisory(cfg.Enforcement.Advisory()),
		gatekeeper.WithMetrics(a.metrics),
		gatekeeper.WithTracer(a.tracer),
	}
	if a.recorder != nil {
		gkOpts = append(gkOpts, gatekeeper.WithTrail(a.recorder))
	}
	a.gk = gatekeeper.New(a.manager, a.holder, rules, gkOpts...)
	a.translator = hook.NewTranslator(&cfg.Hook, cfg.Rules.ScoreField)

	return a, nil
}

func openSessionStore(cfg *config.StateConfig) (session.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return session.NewMemoryStore(), nil
	case config.BackendSQLite:
		store, err := session.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		return store, nil
	default:
		store, err := session.NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		return store, nil
	}
}

func openTrail(cfg *config.TrailConfig, logger *slog.Logger) (trail.Storage, error) {
	if cfg.Backend == config.BackendMemory {
		return storage.NewMemoryStorage(), nil
	}
	sc := storage.DefaultSQLiteConfig()
	sc.Path = cfg.Path
	s, err := storage.NewSQLiteStorage(sc, logger)
	if err != nil {
		return nil, fmt.Errorf("open trail: %w", err)
	}
	return s, nil
}

// handler returns the hook handler.
func (a *app) handler() *hook.Handler {
	return hook.NewHandler(a.gk, a.translator, a.logger)
}

// session resolves the --session flag against the configured default.
func (a *app) session() string {
	if sessionID != "" {
		return sessionID
	}
	return a.cfg.Hook.DefaultSession
}

// pruner returns a retention pruner over the trail and the session store.
func (a *app) pruner() *retention.Pruner {
	p := retention.NewPruner(a.trail, &retention.Config{
		Retention:     a.cfg.Trail.Retention,
		PruneSchedule: a.cfg.Trail.PruneSchedule,
		StaleAfter:    a.cfg.State.StaleAfter,
	}, a.logger)
	return p.WithSessions(a.store)
}

// Close flushes the trail, writes the metrics textfile and releases every
// component. It is safe on a partially built app.
func (a *app) Close() error {
	var errs []error

	if a.recorder != nil {
		errs = append(errs, a.recorder.Close())
	}
	if a.trail != nil {
		errs = append(errs, a.trail.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.metrics != nil {
		errs = append(errs, a.metrics.WriteTextfile(a.cfg.Telemetry.Metrics.TextfilePath))
	}
	if a.tracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.tracer.Shutdown(ctx))
		cancel()
	}

	err := errors.Join(errs...)
	if err != nil && a.logger != nil {
		a.logger.Error("shutdown incomplete", "error", err)
	}
	if a.log != nil {
		_ = a.log.Shutdown()
	}
	return err
}

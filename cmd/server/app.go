package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/halcyonfit/halcyon-engine/internal/config"
	"github.com/halcyonfit/halcyon-engine/internal/domain/goals"
	"github.com/halcyonfit/halcyon-engine/internal/platform/logger"
	"github.com/halcyonfit/halcyon-engine/internal/platform/postgres"
	"github.com/halcyonfit/halcyon-engine/internal/platform/probe"
	"github.com/halcyonfit/halcyon-engine/internal/platform/remote"
	"github.com/halcyonfit/halcyon-engine/internal/platform/sqlite"
	"github.com/halcyonfit/halcyon-engine/internal/service"
	"github.com/halcyonfit/halcyon-engine/internal/service/auth"
	"github.com/halcyonfit/halcyon-engine/internal/store"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// application holds the composed dependency graph. Everything is wired once
// in newApplication; nothing reaches for ambient state afterwards.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	prober      *probe.Prober
	coordinator *syncer.Coordinator
	notifier    *syncer.StatusNotifier
	reconciler  *syncer.Reconciler
	engine      service.EngineService
	jwtService  auth.JWTService
}

// newApplication loads configuration and wires every component of the
// engine: local store, remote client, connectivity probe, sync coordinator,
// status notifier, background reconciler and the engine service.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("store_driver", cfg.Store.Driver))

	db, recordStore, err := openRecordStore(cfg.Store, appLogger)
	if err != nil {
		return nil, err
	}

	remoteClient := remote.NewClient(cfg.Remote, appLogger)
	prober := probe.NewProber(
		cfg.Remote.BaseURL,
		cfg.Sync.ProbeInterval,
		cfg.Remote.Timeout,
		appLogger,
	)

	coordinator := syncer.NewCoordinator(recordStore, remoteClient, prober, appLogger)
	notifier := syncer.NewStatusNotifier(coordinator, prober, appLogger)
	reconciler := syncer.NewReconciler(coordinator, prober, syncer.ReconcilerConfig{
		Interval:    cfg.Sync.ReconcileInterval,
		WorkerCount: cfg.Sync.WorkerCount,
	}, appLogger)

	calculator := goals.NewOrchestrator(goals.NewDefaultParams(), appLogger)
	engine, err := service.NewEngineService(
		calculator,
		coordinator,
		notifier,
		cfg.Sync.WorkerCount,
		appLogger,
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create engine service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      appLogger,
		db:          db,
		prober:      prober,
		coordinator: coordinator,
		notifier:    notifier,
		reconciler:  reconciler,
		engine:      engine,
		jwtService:  jwtService,
	}, nil
}

// openRecordStore opens the configured storage backend and returns both the
// raw handle (for cleanup) and the record store bound to it. Migrations run
// as part of opening.
func openRecordStore(cfg config.StoreConfig, appLogger *slog.Logger) (*sql.DB, store.RecordStore, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return db, sqlite.NewSQLiteRecordStore(db, appLogger), nil

	case "postgres":
		db, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return db, postgres.NewPostgresRecordStore(db, appLogger), nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// startBackgroundWorkers launches the connectivity probe, the status
// notifier and the reconciler. They all exit when ctx is cancelled.
func (app *application) startBackgroundWorkers(ctx context.Context) {
	go app.prober.Run(ctx)
	go app.notifier.Run(ctx)
	go app.reconciler.Run(ctx)

	app.logger.Info("background workers started",
		slog.Duration("probe_interval", app.config.Sync.ProbeInterval),
		slog.Duration("reconcile_interval", app.config.Sync.ReconcileInterval),
		slog.Int("worker_count", app.config.Sync.WorkerCount))
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", err.Error()))
		}
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/bootstrap"
	"github.com/evrlink/evrlink-mirror/internal/config"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadSweeperConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "sweeper",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "sweeper",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Sweeper")

	// Connect to database
	db, err := bootstrap.OpenDatabase(ctx, cfg.Database, cfg.Debug, false)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	bootstrap.ServeMetrics(ctx, cfg.Metrics, registry)

	ledgerClient, err := bootstrap.OpenLedger(ctx, cfg.Ledger, clockAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open ledger", zap.Error(err), zap.String("backend", cfg.Ledger.Backend))
	}
	defer ledgerClient.Close()

	projector := reconciler.NewProjector(ledgerClient, dataStore, reconciler.NewKeyedMutex(), clockAdapter)
	service := reconciler.NewService(
		reconciler.Config{ConfirmationTimeout: cfg.Reconciler.ConfirmationTimeout},
		ledgerClient,
		dataStore,
		projector,
		clockAdapter,
		jsonAdapter,
		m,
	)

	// Heal entities created while nothing was listening
	if cfg.Sweeper.CatchUpOnStart {
		result, err := service.CatchUp(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("catch-up failed: %w", err))
		} else {
			logger.InfoCtx(ctx, "Catch-up completed",
				zap.Int("backgrounds", result.Backgrounds),
				zap.Int("gift_cards", result.GiftCards),
				zap.Int("failed", result.Failed))
		}
	}

	reconcileSweeper := sweeper.NewReconcileSweeper(sweeper.ReconcileSweeperConfig{
		Interval:             cfg.Sweeper.Interval,
		GracePeriod:          cfg.Sweeper.GracePeriod,
		BatchSize:            cfg.Sweeper.BatchSize,
		WorkerPoolSize:       cfg.Sweeper.WorkerPoolSize,
		RetryMaxElapsed:      cfg.Sweeper.RetryMaxElapsed,
		RetryInitialInterval: cfg.Sweeper.RetryInitialInterval,
	}, dataStore, service, clockAdapter, m)

	logger.InfoCtx(ctx, "Initialized reconcile sweeper",
		zap.Duration("interval", cfg.Sweeper.Interval),
		zap.Duration("grace_period", cfg.Sweeper.GracePeriod),
		zap.Int("batch_size", cfg.Sweeper.BatchSize),
		zap.Int("worker_pool_size", cfg.Sweeper.WorkerPoolSize),
	)

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if err := runSweeper(ctx, cancel, reconcileSweeper, sigCh, 10*time.Second); err != nil {
		logger.Error(err)
	}

	logger.Info("Sweeper stopped")
}

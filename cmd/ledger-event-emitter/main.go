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
	"github.com/evrlink/evrlink-mirror/internal/emitter"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/providers/jetstream"
	"github.com/evrlink/evrlink-mirror/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadLedgerEmitterConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "ledger-event-emitter",
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "ledger-event-emitter",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Ledger Event Emitter")

	// Connect to database; only the block cursor lives there
	db, err := bootstrap.OpenDatabase(ctx, cfg.Database, cfg.Debug, false)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	cursors := store.NewCursorStore(db)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	bootstrap.ServeMetrics(ctx, cfg.Metrics, registry)

	// Connect to the ledger node
	ledgerClient, err := bootstrap.OpenLedger(ctx, cfg.Ledger, clockAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open ledger", zap.Error(err), zap.String("rpc_url", cfg.Ledger.RPCURL))
	}
	defer ledgerClient.Close()

	// Initialize NATS publisher
	natsPublisher, err := jetstream.NewPublisher(
		ctx,
		jetstream.Config{
			URL:            cfg.NATS.URL,
			StreamName:     cfg.NATS.StreamName,
			MaxReconnects:  cfg.NATS.MaxReconnects,
			ReconnectWait:  cfg.NATS.ReconnectWait,
			ConnectionName: cfg.NATS.ConnectionName,
		}, natsJS, jsonAdapter, m)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer natsPublisher.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventEmitter := emitter.NewEmitter(
		ledgerClient,
		natsPublisher,
		cursors,
		emitter.Config{
			ChainID:         cfg.Ledger.ChainID,
			StartBlock:      cfg.Ledger.StartBlock,
			CursorSaveFreq:  cfg.Emitter.CursorSaveFreq,
			CursorSaveDelay: cfg.Emitter.CursorSaveDelay,
		},
		clockAdapter,
	)
	defer eventEmitter.Close()

	if err := runEmitter(ctx, cancel, eventEmitter, sigCh); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Ledger Event Emitter stopped")
}

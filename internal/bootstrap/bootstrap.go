// Package bootstrap opens the database and ledger connections shared by every binary.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/block"
	"github.com/evrlink/evrlink-mirror/internal/config"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/providers/ethereum"
	"github.com/evrlink/evrlink-mirror/internal/providers/simulated"
	"github.com/evrlink/evrlink-mirror/internal/store"
)

// OpenDatabase connects to the mirror database and configures its pool.
// With withReplica set and a read host configured, reads are routed to the replica.
// SQLite databases are migrated on open.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig, debug bool, withReplica bool) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if !debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	dsn := cfg.DSN()
	if cfg.Driver == config.DatabaseDriverSQLite {
		dsn = cfg.SQLitePath
	}

	db, err := store.Open(cfg.Driver, dsn, gormCfg)
	if err != nil {
		return nil, err
	}

	if cfg.Driver == config.DatabaseDriverSQLite {
		if err := store.Migrate(db); err != nil {
			return nil, err
		}
		logger.InfoCtx(ctx, "Opened sqlite mirror", zap.String("path", cfg.SQLitePath))
		return db, nil
	}

	if withReplica && cfg.ReadHost != "" {
		err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.Open(cfg.ReadDSN())},
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("failed to register read replica: %w", err)
		}
		logger.InfoCtx(ctx, "Routing reads to replica", zap.String("read_host", cfg.ReadHost))
	}

	if err := store.ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.String("host", cfg.Host),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)

	return db, nil
}

// OpenLedger builds the ledger client for the configured backend
func OpenLedger(ctx context.Context, cfg config.LedgerConfig, clock adapter.Clock) (ledger.Client, error) {
	switch cfg.Backend {
	case config.LedgerBackendSimulated:
		l, err := simulated.New(simulated.Config{
			Chain:           cfg.ChainID,
			Split:           ledger.SplitPolicy{CreatorBps: cfg.Split.CreatorBps, PlatformBps: cfg.Split.PlatformBps},
			Platform:        cfg.PlatformAddress,
			EnforceBalances: cfg.EnforceBalances,
		}, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to create simulated ledger: %w", err)
		}
		logger.WarnCtx(ctx, "Using the simulated ledger; state is lost on restart")
		return l, nil

	case config.LedgerBackendEthereum:
		url := cfg.WebSocketURL
		if url == "" {
			url = cfg.RPCURL
		}
		ethClient, err := adapter.NewEthClientDialer().Dial(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to dial ethereum node: %w", err)
		}

		blocks := block.NewProvider(ethereum.NewBlockFetcher(ethClient), block.Config{
			HeadTTL:     cfg.BlockHeadTTL,
			StaleWindow: 5 * cfg.BlockHeadTTL,
		}, clock)

		client, err := ethereum.NewClient(ethereum.Config{
			RPCURL:          cfg.RPCURL,
			WebSocketURL:    cfg.WebSocketURL,
			ChainID:         cfg.ChainID,
			ContractAddress: cfg.ContractAddress,
			SigningKeys:     cfg.SigningKeys,
			PollInterval:    cfg.PollInterval,
			GasLimitBuffer:  cfg.GasLimitBuffer,
		}, ethClient, blocks, clock)
		if err != nil {
			ethClient.Close()
			return nil, err
		}
		logger.InfoCtx(ctx, "Connected to ethereum node",
			zap.String("chain", string(cfg.ChainID)),
			zap.String("contract", cfg.ContractAddress))
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Backend)
	}
}

// ServeMetrics exposes the registry on /metrics until ctx is done
func ServeMetrics(ctx context.Context, cfg config.MetricsConfig, gatherer prometheus.Gatherer) {
	if !cfg.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.InfoCtx(ctx, "Serving metrics", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCtx(ctx, fmt.Errorf("metrics server: %w", err))
		}
	}()
}

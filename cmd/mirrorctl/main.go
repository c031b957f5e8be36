package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/bootstrap"
	"github.com/evrlink/evrlink-mirror/internal/config"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
)

const programName = "mirrorctl"

// app holds the dependencies shared by every subcommand
type app struct {
	store      store.Store
	service    reconciler.Service
	projector  reconciler.Projector
	closeFuncs []func()
}

func (a *app) close() {
	for _, f := range a.closeFuncs {
		f()
	}
}

// appLoader builds the app once the persistent flags are parsed
type appLoader func(ctx context.Context, configFile, envPath string, debug bool) (*app, error)

func loadApp(ctx context.Context, configFile, envPath string, debug bool) (*app, error) {
	cfg, err := config.LoadMirrorctlConfig(configFile, envPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	err = logger.Initialize(logger.Config{
		Debug:           debug || cfg.Debug,
		Service:         programName,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": programName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := bootstrap.OpenDatabase(ctx, cfg.Database, cfg.Debug, false)
	if err != nil {
		return nil, err
	}
	dataStore := store.NewPGStore(db)

	clockAdapter := adapter.NewClock()
	ledgerClient, err := bootstrap.OpenLedger(ctx, cfg.Ledger, clockAdapter)
	if err != nil {
		return nil, err
	}

	projector := reconciler.NewProjector(ledgerClient, dataStore, reconciler.NewKeyedMutex(), clockAdapter)
	service := reconciler.NewService(
		reconciler.Config{ConfirmationTimeout: cfg.Reconciler.ConfirmationTimeout},
		ledgerClient,
		dataStore,
		projector,
		clockAdapter,
		adapter.NewJSON(),
		nil,
	)

	return &app{
		store:     dataStore,
		service:   service,
		projector: projector,
		closeFuncs: []func(){
			ledgerClient.Close,
			func() { logger.Flush(2 * time.Second) },
		},
	}, nil
}

func newRootCommand(load appLoader) *cobra.Command {
	var (
		configFile string
		envPath    string
		debug      bool
		a          *app
	)

	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Operate the Evrlink mirror: inspect pending operations, heal rows and recompute statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := load(cmd.Context(), configFile, envPath, debug)
			if err != nil {
				return err
			}
			a = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "config/", "Path to environment files")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "D", false, "enable debug logging")

	current := func() *app { return a }
	rootCmd.AddCommand(
		pendingCommand(current),
		healCommand(current),
		statsCommand(current),
		catchUpCommand(current),
	)
	return rootCmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	config.ChdirRepoRoot()

	rootCmd := newRootCommand(loadApp)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}

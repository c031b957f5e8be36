package main

import (
	"context"
	"errors"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/sweeper"
)

// runSweeper starts s and blocks until a signal arrives or s fails.
// It then cancels ctx and waits up to shutdownTimeout for s to stop.
func runSweeper(ctx context.Context, cancel context.CancelFunc, s sweeper.Sweeper, sigCh <-chan os.Signal, shutdownTimeout time.Duration) error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	var runErr error
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()), zap.String("sweeper", s.Name()))
	case runErr = <-errChan:
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := s.Stop(shutdownCtx); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}

package main

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/emitter"
	"github.com/evrlink/evrlink-mirror/internal/logger"
)

// runEmitter runs e until a signal arrives or e fails, then cancels ctx.
// A canceled context is a clean shutdown, not a failure.
func runEmitter(ctx context.Context, cancel context.CancelFunc, e emitter.Emitter, sigCh <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	defer cancel()

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		return nil
	case err := <-errCh:
		return err
	}
}

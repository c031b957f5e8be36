package sweeper

import (
	"context"
)

// Sweeper is a periodic background loop owned by the sweeper binary
//
//go:generate mockgen -source=sweeper.go -destination=../mocks/sweeper.go -package=mocks -mock_names=Sweeper=MockSweeper
type Sweeper interface {
	// Start runs cycles until ctx is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop waits for the in-flight cycle, bounded by ctx
	Stop(ctx context.Context) error

	// Name identifies the sweeper in logs and metrics
	Name() string
}

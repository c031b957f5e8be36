package messaging

import (
	"context"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// EventHandler is called when a new ledger event is received
type EventHandler func(event *domain.LedgerEvent) error

// Subscriber defines the common interface for subscribing to marketplace events.
// Both the Ethereum provider and the simulated ledger implement this interface.
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeEvents replays events from fromBlock and then follows new ones until ctx is done.
	// handler errors are logged and do not stop the subscription.
	SubscribeEvents(ctx context.Context, fromBlock uint64, handler EventHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}

package messaging

import (
	"context"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// Publisher defines the interface for publishing ledger events to the message bus
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishEvent publishes a ledger event to the message broker.
	// Publishing the same event twice is deduplicated by the broker within its window.
	PublishEvent(ctx context.Context, event *domain.LedgerEvent) error
	// Close closes the connection
	Close()
}

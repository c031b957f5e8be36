package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/messaging"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
)

// SubjectPrefix is the subject namespace of ledger events
const SubjectPrefix = "ledger.events"

// SubjectWildcard matches every ledger event subject
const SubjectWildcard = SubjectPrefix + ".>"

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	// DuplicateWindow is how long the stream remembers message IDs for deduplication
	DuplicateWindow time.Duration
	// MaxAge bounds how long events stay in the stream
	MaxAge time.Duration
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
	metrics    *metrics.Metrics
}

// ConnectOptions returns the connection options shared by the publisher and the bridge
func ConnectOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// EnsureStream creates or updates the ledger event stream
func EnsureStream(ctx context.Context, js adapter.JetStream, cfg Config) error {
	duplicates := cfg.DuplicateWindow
	if duplicates <= 0 {
		duplicates = 24 * time.Hour
	}

	info, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{SubjectWildcard},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     cfg.MaxAge,
		Duplicates: duplicates,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update stream: %w", err)
	}

	logger.InfoCtx(ctx, "Stream ready",
		zap.String("stream", info.Config.Name),
		zap.Uint64("messages", info.State.Msgs),
		zap.Duration("duplicate_window", duplicates))
	return nil
}

// NewPublisher creates a new NATS JetStream publisher and makes sure the stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON, m *metrics.Metrics) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, err
	}

	if m == nil {
		m = metrics.NewNop()
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
		metrics:    m,
	}, nil
}

// PublishEvent publishes a ledger event to NATS JetStream.
// The message ID is the event's position in its transaction, so replays are dropped by the stream.
func (p *publisher) PublishEvent(ctx context.Context, event *domain.LedgerEvent) error {
	logger.DebugCtx(ctx, "Publishing Nats event", zap.String("kind", string(event.Kind)), zap.String("id", event.DedupID()))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, Subject(event.Kind), data, jetstream.WithMsgID(event.DedupID()), jetstream.WithExpectStream(p.streamName))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Event already on stream", zap.String("id", event.DedupID()))
		return nil
	}
	p.metrics.EventPublished(string(event.Kind))

	return nil
}

// Subject returns the NATS subject of an event kind, e.g. ledger.events.gift_card_created
func Subject(kind domain.EventKind) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, kind)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}

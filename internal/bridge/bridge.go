package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/providers/jetstream"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
)

const (
	resultAck  = "ack"
	resultNak  = "nak"
	resultTerm = "term"
)

// Config holds the configuration for the event bridge
type Config struct {
	URL            string
	StreamName     string
	ConsumerName   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
	AckWaitTimeout time.Duration
	MaxDeliver     int
	// Workers bounds the number of messages applied concurrently
	Workers int
}

// Bridge defines the interface for the event bridge
type Bridge interface {
	// Run consumes ledger events and applies them to the mirror until ctx is done
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc        adapter.NatsConn
	js        adapter.JetStream
	projector reconciler.Projector
	json      adapter.JSON
	metrics   *metrics.Metrics
	config    Config
}

// NewBridge creates a new event bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	projector reconciler.Projector,
	jsonAdapter adapter.JSON,
	m *metrics.Metrics,
) (Bridge, error) {
	nc, js, err := natsJS.Connect(cfg.URL, jetstream.ConnectOptions(jetstream.Config{
		ConnectionName: cfg.ConnectionName,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
	})...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &bridge{
		nc:        nc,
		js:        js,
		projector: projector,
		json:      jsonAdapter,
		metrics:   m,
		config:    cfg,
	}, nil
}

// Run starts the event bridge
func (b *bridge) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting event bridge", zap.String("stream", b.config.StreamName), zap.String("consumer", b.config.ConsumerName))

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, natsjs.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     natsjs.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: jetstream.SubjectWildcard,
	})
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved",
		zap.String("consumer", consumerInfo.Name),
		zap.Uint64("pending", consumerInfo.NumPending))

	pool := pond.NewPool(b.config.Workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	sub, err := consumer.Consume(func(msg adapter.Message) {
		pool.Submit(func() {
			b.handleMessage(ctx, msg)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming messages")

	<-ctx.Done()
	logger.InfoCtx(ctx, "Shutting down event bridge")
	return ctx.Err()
}

// handleMessage applies a single ledger event.
// Undecodable or malformed events are terminated, everything else that fails is redelivered.
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var delivered uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		delivered = metadata.NumDelivered
	}

	var event domain.LedgerEvent
	if err := b.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal event"), zap.String("subject", msg.Subject()))
		b.term(ctx, msg)
		return
	}

	logger.InfoCtx(ctx, "Received event",
		zap.String("kind", string(event.Kind)),
		zap.Uint64("entity_id", event.EntityID),
		zap.String("tx_hash", event.TxHash),
		zap.Uint64("block", event.BlockNumber),
		zap.Uint64("delivery_count", delivered),
	)

	result, err := b.projector.Apply(ctx, &event)
	if err != nil {
		b.metrics.ObserveProjection("bridge", metrics.ProjectionError)
		if errors.Is(err, domain.ErrValidation) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Dropping malformed event"), zap.String("id", event.DedupID()))
			b.term(ctx, msg)
			return
		}

		if errors.Is(err, store.ErrParentMissing) {
			// out of order; the parent should land before the redelivery
			logger.WarnCtx(ctx, "Parent row missing, redelivering event", zap.String("id", event.DedupID()), zap.Error(err))
		} else {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to apply event"), zap.String("id", event.DedupID()))
		}
		b.metrics.BridgeMessage(resultNak)
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if result != nil && result.Stale {
		b.metrics.ObserveProjection("bridge", metrics.ProjectionStale)
	} else {
		b.metrics.ObserveProjection("bridge", metrics.ProjectionApplied)
	}

	b.metrics.BridgeMessage(resultAck)
	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}
}

func (b *bridge) term(ctx context.Context, msg adapter.Message) {
	b.metrics.BridgeMessage(resultTerm)
	if err := msg.Term(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}

package jetstream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/mocks"
	"github.com/evrlink/evrlink-mirror/internal/providers/jetstream"
)

var testConfig = jetstream.Config{
	URL:             "nats://localhost:4222",
	StreamName:      "LEDGER_EVENTS",
	MaxReconnects:   3,
	ReconnectWait:   time.Second,
	ConnectionName:  "test",
	DuplicateWindow: time.Hour,
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "ledger.events.gift_card_created", jetstream.Subject(domain.EventKindGiftCardCreated))
	assert.Equal(t, "ledger.events.secret_set", jetstream.Subject(domain.EventKindSecretSet))
}

func TestNewPublisher_EnsuresStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	nc := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(testConfig.URL, gomock.Any()).Return(nc, js, nil)
	js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) (*natsjs.StreamInfo, error) {
			assert.Equal(t, "LEDGER_EVENTS", cfg.Name)
			assert.Equal(t, []string{jetstream.SubjectWildcard}, cfg.Subjects)
			assert.Equal(t, time.Hour, cfg.Duplicates)
			return &natsjs.StreamInfo{Config: cfg}, nil
		})

	pub, err := jetstream.NewPublisher(context.Background(), testConfig, natsJS, adapter.NewJSON(), nil)
	require.NoError(t, err)
	require.NotNil(t, pub)

	nc.EXPECT().Close()
	pub.Close()
}

func TestNewPublisher_StreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	nc := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nc, js, nil)
	js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(nil, errors.New("no responders"))
	nc.EXPECT().Close()

	_, err := jetstream.NewPublisher(context.Background(), testConfig, natsJS, adapter.NewJSON(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create/update stream")
}

func TestPublisher_PublishEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	nc := mocks.NewMockNatsConn(ctrl)
	js := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nc, js, nil)
	js.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(&natsjs.StreamInfo{}, nil)

	pub, err := jetstream.NewPublisher(context.Background(), testConfig, natsJS, adapter.NewJSON(), metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)

	event := &domain.LedgerEvent{
		Kind:        domain.EventKindGiftCardPurchased,
		Chain:       domain.ChainLocal,
		EntityID:    4,
		From:        "0x1111111111111111111111111111111111111111",
		To:          "0x2222222222222222222222222222222222222222",
		Amount:      "1000",
		TxHash:      "0xabc",
		BlockNumber: 12,
		LogIndex:    1,
	}

	// data plus the message ID and expected stream options
	js.EXPECT().
		Publish(gomock.Any(), "ledger.events.gift_card_purchased", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var decoded domain.LedgerEvent
			require.NoError(t, adapter.NewJSON().Unmarshal(data, &decoded))
			assert.Equal(t, event.DedupID(), decoded.DedupID())
			return &natsjs.PubAck{Stream: "LEDGER_EVENTS", Sequence: 1}, nil
		})
	require.NoError(t, pub.PublishEvent(context.Background(), event))

	// replays are acknowledged as duplicates
	js.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&natsjs.PubAck{Stream: "LEDGER_EVENTS", Sequence: 1, Duplicate: true}, nil)
	require.NoError(t, pub.PublishEvent(context.Background(), event))

	js.EXPECT().
		Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("timeout"))
	err = pub.PublishEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
}

package emitter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/emitter"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/messaging"
	"github.com/evrlink/evrlink-mirror/internal/mocks"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl       *gomock.Controller
	subscriber *mocks.MockSubscriber
	publisher  *mocks.MockPublisher
	cursors    *mocks.MockCursorStore
	clock      *mocks.MockClock
}

func setupTestEmitter(t *testing.T) *testEmitterMocks {
	ctrl := gomock.NewController(t)

	return &testEmitterMocks{
		ctrl:       ctrl,
		subscriber: mocks.NewMockSubscriber(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		cursors:    mocks.NewMockCursorStore(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}
}

func tearDownTestEmitter(mocks *testEmitterMocks) {
	mocks.ctrl.Finish()
}

func (tm *testEmitterMocks) newEmitter(startBlock, saveFreq uint64) emitter.Emitter {
	return emitter.NewEmitter(
		tm.subscriber,
		tm.publisher,
		tm.cursors,
		emitter.Config{
			ChainID:         domain.ChainLocal,
			StartBlock:      startBlock,
			CursorSaveFreq:  saveFreq,
			CursorSaveDelay: 5 * time.Second,
		},
		tm.clock,
	)
}

func (tm *testEmitterMocks) expectClock() {
	now := time.Now()
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Duration(0)).AnyTimes()
}

func transferEvent(block uint64) *domain.LedgerEvent {
	return &domain.LedgerEvent{
		Kind:        domain.EventKindGiftCardTransferred,
		Chain:       domain.ChainLocal,
		EntityID:    1,
		From:        "0x1111111111111111111111111111111111111111",
		To:          "0x2222222222222222222222222222222222222222",
		TxHash:      "0xtx",
		BlockNumber: block,
		Timestamp:   time.Now(),
	}
}

func TestEmitter_Run_WithStartBlock(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.expectClock()
	event := transferEvent(1001)

	tm.subscriber.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			_ = handler(event)
			cancel()
			return nil
		})
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)
	// 1001 - 0 >= 10
	tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), string(domain.ChainLocal), uint64(1001)).Return(nil)

	err := tm.newEmitter(1000, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_ResumesFromCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.expectClock()
	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), string(domain.ChainLocal)).Return(uint64(500), nil)
	// the cursor block is replayed; duplicates are dropped by the broker
	tm.subscriber.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(500), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			cancel()
			return nil
		})

	err := tm.newEmitter(0, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_WithNoCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.expectClock()
	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), string(domain.ChainLocal)).Return(uint64(0), nil)
	tm.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.subscriber.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			cancel()
			return nil
		})

	err := tm.newEmitter(0, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveByBlockFrequency(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.expectClock()
	tm.subscriber.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			for _, block := range []uint64{1000, 1002, 1005, 1010} {
				event := transferEvent(block)
				tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)
				if block != 1002 {
					tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), string(domain.ChainLocal), block).Return(nil)
				}
				if err := handler(event); err != nil {
					return err
				}
			}
			cancel()
			return nil
		})

	err := tm.newEmitter(1000, 5).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveErrorIsNotFatal(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.expectClock()
	tm.subscriber.EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			assert.NoError(t, handler(transferEvent(1000)))
			cancel()
			return nil
		})
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(nil)
	tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)

	err := tm.newEmitter(1000, 5).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_Errors(t *testing.T) {
	tests := []struct {
		name       string
		startBlock uint64
		setup      func(tm *testEmitterMocks)
		wantErr    string
	}{
		{
			name: "cursor read fails",
			setup: func(tm *testEmitterMocks) {
				tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), gomock.Any()).Return(uint64(0), assert.AnError)
			},
			wantErr: "failed to get block cursor",
		},
		{
			name: "latest block fails",
			setup: func(tm *testEmitterMocks) {
				tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), gomock.Any()).Return(uint64(0), nil)
				tm.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(0), assert.AnError)
			},
			wantErr: "failed to get latest block number",
		},
		{
			name:       "subscription fails",
			startBlock: 1000,
			setup: func(tm *testEmitterMocks) {
				tm.expectClock()
				tm.subscriber.EXPECT().SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).Return(domain.ErrSubscriptionFailed)
			},
			wantErr: domain.ErrSubscriptionFailed.Error(),
		},
		{
			name:       "publish fails",
			startBlock: 1000,
			setup: func(tm *testEmitterMocks) {
				tm.expectClock()
				tm.subscriber.EXPECT().
					SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
					DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
						return handler(transferEvent(1001))
					})
				tm.publisher.EXPECT().PublishEvent(gomock.Any(), gomock.Any()).Return(assert.AnError)
			},
			wantErr: "failed to publish event 0xtx:0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestEmitter(t)
			defer tearDownTestEmitter(tm)

			tt.setup(tm)

			err := tm.newEmitter(tt.startBlock, 10).Run(context.Background())
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEmitter_Close(t *testing.T) {
	tm := setupTestEmitter(t)
	defer tearDownTestEmitter(tm)

	tm.subscriber.EXPECT().Close()
	tm.publisher.EXPECT().Close()

	tm.newEmitter(0, 10).Close()
}

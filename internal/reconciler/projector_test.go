package reconciler_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/mocks"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

func TestEventProjection(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	message := "for you"

	tests := []struct {
		name        string
		event       domain.LedgerEvent
		wantColumns []string
		wantCreate  bool
		wantTxType  schema.TransactionType
		wantFrom    string
	}{
		{
			name: "created",
			event: domain.LedgerEvent{Kind: domain.EventKindGiftCardCreated, EntityID: 3, To: creator,
				Amount: "100", BackgroundID: 1, Message: &message},
			wantCreate: true,
			wantTxType: schema.TransactionTypeCreate,
			wantFrom:   domain.ETHEREUM_ZERO_ADDRESS,
		},
		{
			name: "purchased with message",
			event: domain.LedgerEvent{Kind: domain.EventKindGiftCardPurchased, EntityID: 3, From: creator, To: buyer,
				Amount: "100", Message: &message},
			wantColumns: []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable, store.ColumnMessage},
			wantTxType:  schema.TransactionTypePurchase,
			wantFrom:    types.NormalizeAddress(creator),
		},
		{
			name: "purchased without message",
			event: domain.LedgerEvent{Kind: domain.EventKindGiftCardPurchased, EntityID: 3, From: creator, To: buyer,
				Amount: "100"},
			wantColumns: []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable},
			wantTxType:  schema.TransactionTypePurchase,
			wantFrom:    types.NormalizeAddress(creator),
		},
		{
			name:        "claimed",
			event:       domain.LedgerEvent{Kind: domain.EventKindGiftCardClaimed, EntityID: 3, From: creator, To: recipient},
			wantColumns: []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable},
			wantTxType:  schema.TransactionTypeClaim,
			wantFrom:    types.NormalizeAddress(creator),
		},
		{
			name:        "transferred",
			event:       domain.LedgerEvent{Kind: domain.EventKindGiftCardTransferred, EntityID: 3, From: buyer, To: recipient},
			wantColumns: []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable},
			wantTxType:  schema.TransactionTypeTransfer,
			wantFrom:    types.NormalizeAddress(buyer),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := tt.event
			event.TxHash = "0xfeed"
			event.BlockNumber = 9
			event.LogIndex = 2
			event.Timestamp = at

			p, err := reconciler.EventProjection(&event)
			require.NoError(t, err)
			require.NotNil(t, p.GiftCard)
			assert.Equal(t, tt.wantCreate, p.GiftCard.Create)
			assert.Equal(t, tt.wantColumns, p.GiftCard.Columns)
			assert.Equal(t, domain.Position{BlockNumber: 9, LogIndex: 2}, p.Position)

			require.NotNil(t, p.Transaction)
			assert.Equal(t, tt.wantTxType, p.Transaction.Type)
			assert.Equal(t, tt.wantFrom, p.Transaction.FromAddress)
			assert.Equal(t, types.NormalizeAddress(event.To), p.Transaction.ToAddress)
			assert.Equal(t, reconciler.LedgerRef(tt.wantTxType, 3, "0xfeed"), p.Transaction.LedgerRef)
		})
	}
}

func TestEventProjection_SecretSetRecordsNoTransaction(t *testing.T) {
	event := &domain.LedgerEvent{Kind: domain.EventKindSecretSet, EntityID: 3, To: creator, Commitment: "0xabc", TxHash: "0x1"}

	p, err := reconciler.EventProjection(event)
	require.NoError(t, err)
	assert.Nil(t, p.Transaction)
	assert.Empty(t, p.Addresses)
	require.NotNil(t, p.GiftCard.Row.SecretCommitment)
	assert.Equal(t, "0xabc", *p.GiftCard.Row.SecretCommitment)
	assert.True(t, p.GiftCard.Row.IsClaimable)
}

func TestEventProjection_UnknownKind(t *testing.T) {
	_, err := reconciler.EventProjection(&domain.LedgerEvent{Kind: "burned", EntityID: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLedgerRef(t *testing.T) {
	assert.Equal(t, "create:7", reconciler.LedgerRef(schema.TransactionTypeCreate, 7, "0xabc"))
	assert.Equal(t, "create:7", reconciler.LedgerRef(schema.TransactionTypeCreate, 7, ""))
	assert.Equal(t, "purchase:7:0xabc", reconciler.LedgerRef(schema.TransactionTypePurchase, 7, "0xabc"))
}

// receiptEvents submits call straight to the ledger and returns the emitted events
func receiptEvents(t *testing.T, env *testEnv, call ledger.Call) []domain.LedgerEvent {
	t.Helper()
	ctx := context.Background()
	tx, err := env.ledger.Submit(ctx, call)
	require.NoError(t, err)
	r, err := env.ledger.WaitForConfirmation(ctx, tx, time.Second)
	require.NoError(t, err)
	return r.Events
}

func TestProjector_ApplyIsIdempotent(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	mint := receiptEvents(t, env, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://a", Category: "Nature"})
	create := receiptEvents(t, env, ledger.Call{Method: ledger.MethodCreateGiftCard, From: creator, BackgroundID: 1, Price: big.NewInt(1000)})

	for _, e := range append(mint, create...) {
		e := e
		_, err := env.projector.Apply(ctx, &e)
		require.NoError(t, err)
	}

	// replay
	result, err := env.projector.Apply(ctx, &create[0])
	require.NoError(t, err)
	assert.False(t, result.TransactionInserted)
	assert.False(t, result.GiftCardChanged)

	background, err := env.store.GetBackground(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), background.UsageCount)

	txs, err := env.store.GetGiftCardTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	user, err := env.store.GetUser(ctx, creator)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.GiftCardsCreated)
}

func TestProjector_PartialEventBeforeCreationHeals(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	mint := receiptEvents(t, env, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://a", Category: "Nature"})
	create := receiptEvents(t, env, ledger.Call{Method: ledger.MethodCreateGiftCard, From: creator, BackgroundID: 1, Price: big.NewInt(1000)})
	transfer := receiptEvents(t, env, ledger.Call{Method: ledger.MethodTransferGiftCard, From: creator, GiftCardID: 1, Recipient: recipient})

	_, err := env.projector.Apply(ctx, &mint[0])
	require.NoError(t, err)

	// the transfer arrives before the creation
	_, err = env.projector.Apply(ctx, &transfer[0])
	require.NoError(t, err)

	card, err := env.store.GetGiftCard(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, types.NormalizeAddress(recipient), card.CurrentOwner)
	assert.Equal(t, types.NormalizeAddress(creator), card.CreatorAddress)

	// the late creation does not roll the owner back
	result, err := env.projector.Apply(ctx, &create[0])
	require.NoError(t, err)
	assert.True(t, result.Stale)

	card, err = env.store.GetGiftCard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, types.NormalizeAddress(recipient), card.CurrentOwner)

	txs, err := env.store.GetGiftCardTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, schema.TransactionTypeCreate, txs[0].Type)
	assert.Equal(t, schema.TransactionTypeTransfer, txs[1].Type)
}

func TestProjector_CreationBeforeMintHealsBackground(t *testing.T) {
	env := newTestEnv(t, time.Second)
	ctx := context.Background()

	receiptEvents(t, env, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://a", Category: "Nature"})
	create := receiptEvents(t, env, ledger.Call{Method: ledger.MethodCreateGiftCard, From: creator, BackgroundID: 1, Price: big.NewInt(1000)})

	// the mint event never reached the mirror
	result, err := env.projector.Apply(ctx, &create[0])
	require.NoError(t, err)
	assert.True(t, result.TransactionInserted)

	background, err := env.store.GetBackground(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, background)
	assert.Equal(t, "ipfs://a", background.ImageRef)
	assert.Equal(t, uint64(1), background.UsageCount)

	card, err := env.store.GetGiftCard(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, uint64(1), card.BackgroundID)
}

func TestProjector_CreationWithUnknownBackgroundFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	st := newTestStore(t)
	ledgerClient := mocks.NewMockLedgerClient(ctrl)
	p := reconciler.NewProjector(ledgerClient, st, reconciler.NewKeyedMutex(), adapter.NewClock())

	ledgerClient.EXPECT().ReadBackground(gomock.Any(), uint64(9)).Return(nil, domain.ErrNotFound)

	event := &domain.LedgerEvent{
		Kind: domain.EventKindGiftCardCreated, EntityID: 4, From: domain.ETHEREUM_ZERO_ADDRESS, To: creator,
		BackgroundID: 9, Amount: "1", TxHash: "0x4", BlockNumber: 3, Timestamp: time.Now(),
	}

	_, err := p.Apply(ctx, event)
	require.ErrorIs(t, err, store.ErrParentMissing)

	card, err := st.GetGiftCard(ctx, 4)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestProjector_LedgerBehind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	st := newTestStore(t)
	ledgerClient := mocks.NewMockLedgerClient(ctrl)
	p := reconciler.NewProjector(ledgerClient, st, reconciler.NewKeyedMutex(), adapter.NewClock())

	ledgerClient.EXPECT().ReadGiftCard(gomock.Any(), uint64(5)).Return(&domain.GiftCardSnapshot{
		ID: 5, Creator: creator, Owner: creator, Price: big.NewInt(1), BackgroundID: 1, BlockNumber: 10,
	}, nil)

	event := &domain.LedgerEvent{
		Kind: domain.EventKindGiftCardTransferred, EntityID: 5, From: creator, To: recipient,
		TxHash: "0x2", BlockNumber: 11, Timestamp: time.Now(),
	}

	_, err := p.Apply(ctx, event)
	require.ErrorIs(t, err, reconciler.ErrLedgerBehind)

	card, err := st.GetGiftCard(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestProjector_HealGiftCardNotFound(t *testing.T) {
	env := newTestEnv(t, time.Second)

	_, err := env.projector.HealGiftCard(context.Background(), 1, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

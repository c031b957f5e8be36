package simulated

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
)

const (
	artist   = "0x1111111111111111111111111111111111111111"
	creator  = "0x2222222222222222222222222222222222222222"
	buyer    = "0x3333333333333333333333333333333333333333"
	platform = "0x5555555555555555555555555555555555555555"
)

func newTestLedger(t *testing.T, enforce bool) *Ledger {
	t.Helper()
	l, err := New(Config{Split: ledger.DefaultSplitPolicy, Platform: platform, EnforceBalances: enforce}, adapter.NewClock())
	require.NoError(t, err)
	return l
}

func mintAndCreate(t *testing.T, l *Ledger, price int64) uint64 {
	t.Helper()
	ctx := context.Background()

	_, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	require.NoError(t, err)

	tx, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodCreateGiftCard, From: creator, BackgroundID: 1, Price: big.NewInt(price)})
	require.NoError(t, err)

	r, err := l.WaitForConfirmation(ctx, tx, time.Second)
	require.NoError(t, err)
	return r.Events[0].EntityID
}

func TestLedger_SubmitAndConfirm(t *testing.T) {
	l := newTestLedger(t, false)
	ctx := context.Background()

	tx, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.Hash)

	r, err := l.WaitForConfirmation(ctx, tx, time.Second)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Equal(t, uint64(1), r.BlockNumber)
	require.Len(t, r.Events, 1)

	e := r.Events[0]
	assert.Equal(t, domain.ChainLocal, e.Chain)
	assert.Equal(t, tx.Hash, e.TxHash)
	assert.Equal(t, uint64(1), e.BlockNumber)
	assert.Equal(t, ContractAddress, e.Contract)
	assert.True(t, e.Valid())

	snapshot, err := l.ReadBackground(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, artist, snapshot.Artist)
	assert.Equal(t, uint64(1), snapshot.BlockNumber)
}

func TestLedger_RejectedCallIsNotMined(t *testing.T) {
	l := newTestLedger(t, false)
	ctx := context.Background()

	_, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodCreateGiftCard, From: creator, BackgroundID: 9, Price: big.NewInt(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	head, err := l.GetLatestBlock(ctx)
	require.NoError(t, err)
	assert.Zero(t, head)
}

func TestLedger_InsufficientFunds(t *testing.T) {
	l := newTestLedger(t, true)
	ctx := context.Background()
	cardID := mintAndCreate(t, l, 10_000)

	_, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodBuyGiftCard, From: buyer, GiftCardID: cardID, Value: big.NewInt(10_000)})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	l.Fund(buyer, big.NewInt(15_000))
	_, err = l.Submit(ctx, ledger.Call{Method: ledger.MethodBuyGiftCard, From: buyer, GiftCardID: cardID, Value: big.NewInt(10_000)})
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(5_000), l.BalanceOf(buyer))
	assert.Equal(t, big.NewInt(4_000), l.BalanceOf(creator))
	assert.Equal(t, big.NewInt(6_000), l.BalanceOf(platform))
}

func TestLedger_HeldConfirmationTimesOut(t *testing.T) {
	l := newTestLedger(t, false)
	ctx := context.Background()

	l.HoldConfirmations()
	tx, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	require.NoError(t, err)

	_, err = l.WaitForConfirmation(ctx, tx, 20*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrLedgerTimeout)

	r, err := l.TransactionReceipt(ctx, tx.Hash)
	require.NoError(t, err)
	assert.Nil(t, r)

	l.ReleaseConfirmations()
	r, err = l.TransactionReceipt(ctx, tx.Hash)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Len(t, r.Events, 1)
}

func TestLedger_WaitWakesOnRelease(t *testing.T) {
	l := newTestLedger(t, false)
	ctx := context.Background()

	l.HoldConfirmations()
	tx, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		l.ReleaseConfirmations()
	}()

	r, err := l.WaitForConfirmation(ctx, tx, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
}

func TestLedger_DropEvents(t *testing.T) {
	l := newTestLedger(t, false)
	ctx := context.Background()

	l.DropEvents(ledger.MethodMintBackground, true)
	tx, err := l.Submit(ctx, ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	require.NoError(t, err)

	r, err := l.WaitForConfirmation(ctx, tx, time.Second)
	require.NoError(t, err)
	assert.True(t, r.Succeeded())
	assert.Empty(t, r.EventsOfKind(domain.EventKindBackgroundMinted))

	totals, err := l.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), totals.Backgrounds, "state changes even when the log is lost")
}

func TestLedger_FailNextSubmit(t *testing.T) {
	l := newTestLedger(t, false)
	fault := errors.Join(domain.ErrNetworkFault, errors.New("connection reset"))
	l.FailNextSubmit(fault)

	_, err := l.Submit(context.Background(), ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	assert.ErrorIs(t, err, domain.ErrNetworkFault)

	_, err = l.Submit(context.Background(), ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg", Category: "thanks"})
	assert.NoError(t, err)
}

func TestLedger_SubscribeEventsReplaysAndFollows(t *testing.T) {
	l := newTestLedger(t, false)
	mintAndCreate(t, l, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []domain.EventKind
	received := make(chan struct{}, 8)

	go func() {
		_ = l.SubscribeEvents(ctx, 2, func(e *domain.LedgerEvent) error {
			mu.Lock()
			got = append(got, e.Kind)
			mu.Unlock()
			received <- struct{}{}
			return nil
		})
	}()

	<-received

	_, err := l.Submit(context.Background(), ledger.Call{Method: ledger.MethodMintBackground, From: artist, ImageRef: "ipfs://bg-2", Category: "thanks"})
	require.NoError(t, err)
	<-received

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []domain.EventKind{domain.EventKindGiftCardCreated, domain.EventKindBackgroundMinted}, got)
}

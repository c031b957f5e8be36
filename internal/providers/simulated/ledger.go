// Package simulated provides an in-process ledger backed by the marketplace
// contract state machine. It mines one block per transaction and offers hooks
// to delay confirmations, lose events and inject transport faults.
package simulated

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/messaging"
)

// ContractAddress is the address stamped on events emitted by the simulated ledger
const ContractAddress = "0x00000000000000000000000000000000000E7214"

// Config holds the configuration of the simulated ledger
type Config struct {
	Chain    domain.Chain       `mapstructure:"chain"`
	Split    ledger.SplitPolicy `mapstructure:"split"`
	Platform string             `mapstructure:"platform_address"`

	// EnforceBalances rejects purchases the buyer cannot pay for.
	// When false every account has unlimited funds.
	EnforceBalances bool `mapstructure:"enforce_balances"`
}

// Ledger is an in-memory implementation of ledger.Client
type Ledger struct {
	chain           domain.Chain
	contract        *ledger.Contract
	clock           adapter.Clock
	enforceBalances bool

	mu          sync.Mutex
	block       uint64
	nonce       uint64
	balances    map[string]*big.Int
	receipts    map[string]*domain.Receipt
	held        []*domain.Receipt
	holding     bool
	dropEvents  map[ledger.Method]bool
	faults      []error
	history     []domain.LedgerEvent
	subscribers map[int]chan domain.LedgerEvent
	nextSubID   int
	changed     chan struct{}
	closed      bool
}

// New creates a simulated ledger
func New(cfg Config, clock adapter.Clock) (*Ledger, error) {
	contract, err := ledger.NewContract(cfg.Split, cfg.Platform)
	if err != nil {
		return nil, err
	}

	chain := cfg.Chain
	if chain == "" {
		chain = domain.ChainLocal
	}

	return &Ledger{
		chain:           chain,
		contract:        contract,
		clock:           clock,
		enforceBalances: cfg.EnforceBalances,
		balances:        make(map[string]*big.Int),
		receipts:        make(map[string]*domain.Receipt),
		dropEvents:      make(map[ledger.Method]bool),
		subscribers:     make(map[int]chan domain.LedgerEvent),
		changed:         make(chan struct{}),
	}, nil
}

// Fund credits an account
func (l *Ledger) Fund(address string, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceLocked(address).Add(l.balanceLocked(address), amount)
}

// BalanceOf returns the balance of an account
func (l *Ledger) BalanceOf(address string) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return new(big.Int).Set(l.balanceLocked(address))
}

func (l *Ledger) balanceLocked(address string) *big.Int {
	key := strings.ToLower(address)
	b, ok := l.balances[key]
	if !ok {
		b = new(big.Int)
		l.balances[key] = b
	}
	return b
}

// HoldConfirmations keeps newly mined receipts invisible until ReleaseConfirmations.
// State changes still apply immediately, as on a node that lags behind the chain.
func (l *Ledger) HoldConfirmations() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.holding = true
}

// ReleaseConfirmations publishes every held receipt and its events
func (l *Ledger) ReleaseConfirmations() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.holding = false
	for _, r := range l.held {
		l.publishLocked(r)
	}
	l.held = nil
}

// DropEvents mines successful transactions of method without their event logs
func (l *Ledger) DropEvents(method ledger.Method, drop bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.dropEvents[method] = drop
}

// FailNextSubmit makes the next Submit fail with err before reaching the contract
func (l *Ledger) FailNextSubmit(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.faults = append(l.faults, err)
}

// Submit executes call and mines it into a new block
func (l *Ledger) Submit(ctx context.Context, call ledger.Call) (ledger.TxHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ledger.TxHandle{}, fmt.Errorf("%w: ledger closed", domain.ErrNetworkFault)
	}
	if len(l.faults) > 0 {
		err := l.faults[0]
		l.faults = l.faults[1:]
		return ledger.TxHandle{}, err
	}

	if l.enforceBalances && call.Method == ledger.MethodBuyGiftCard && call.Value != nil {
		if l.balanceLocked(call.From).Cmp(call.Value) < 0 {
			return ledger.TxHandle{}, ledger.MapRevert(ledger.RevertInsufficientFunds)
		}
	}

	outcome, err := l.contract.Execute(call)
	if err != nil {
		logger.DebugCtx(ctx, "Simulated ledger rejected call", zap.Stringer("call", call), zap.Error(err))
		return ledger.TxHandle{}, err
	}

	if call.Method == ledger.MethodBuyGiftCard && l.enforceBalances {
		l.balanceLocked(call.From).Sub(l.balanceLocked(call.From), call.Value)
		for _, p := range outcome.Payouts {
			l.balanceLocked(p.To).Add(l.balanceLocked(p.To), p.Amount)
		}
	}

	l.block++
	l.nonce++
	now := l.clock.Now()
	txHash := l.txHashLocked()
	blockHash := crypto.Keccak256Hash([]byte(txHash)).Hex()

	receipt := &domain.Receipt{
		TxHash:      txHash,
		BlockNumber: l.block,
		Status:      domain.ReceiptStatusSuccess,
	}
	if !l.dropEvents[call.Method] {
		for i, e := range outcome.Events {
			e.Chain = l.chain
			e.TxHash = txHash
			e.BlockNumber = l.block
			e.LogIndex = uint(i) //nolint:gosec,G115
			e.Timestamp = now
			e.BlockHash = &blockHash
			e.Contract = ContractAddress
			receipt.Events = append(receipt.Events, e)
		}
	}

	if l.holding {
		l.held = append(l.held, receipt)
	} else {
		l.publishLocked(receipt)
	}

	return ledger.TxHandle{Hash: txHash, From: call.From, SubmittedAt: now}, nil
}

func (l *Ledger) txHashLocked() string {
	seed := make([]byte, 16)
	binary.BigEndian.PutUint64(seed[:8], l.nonce)
	binary.BigEndian.PutUint64(seed[8:], l.block)
	return crypto.Keccak256Hash([]byte(l.chain), seed).Hex()
}

func (l *Ledger) publishLocked(r *domain.Receipt) {
	l.receipts[r.TxHash] = r
	for _, e := range r.Events {
		l.history = append(l.history, e)
		for id, ch := range l.subscribers {
			select {
			case ch <- e:
			default:
				// the subscriber resumes from its persisted cursor
				logger.Warn("Subscriber lagging, event not delivered",
					zap.Int("subscriber", id),
					zap.String("tx_hash", e.TxHash))
			}
		}
	}

	close(l.changed)
	l.changed = make(chan struct{})
}

// WaitForConfirmation blocks until the receipt of tx is visible or timeout elapses
func (l *Ledger) WaitForConfirmation(ctx context.Context, tx ledger.TxHandle, timeout time.Duration) (*domain.Receipt, error) {
	deadline := l.clock.After(timeout)

	for {
		l.mu.Lock()
		receipt, ok := l.receipts[tx.Hash]
		changed := l.changed
		l.mu.Unlock()

		if ok {
			return receipt, nil
		}

		select {
		case <-changed:
		case <-deadline:
			return nil, domain.ErrLedgerTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// TransactionReceipt returns the receipt of a visible transaction, or nil
func (l *Ledger) TransactionReceipt(_ context.Context, txHash string) (*domain.Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r, ok := l.receipts[txHash]; ok {
		return r, nil
	}
	return nil, nil
}

// ReadBackground returns the background state at the current block
func (l *Ledger) ReadBackground(_ context.Context, id uint64) (*domain.BackgroundSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, err := l.contract.Background(id)
	if err != nil {
		return nil, err
	}
	s.BlockNumber = l.block
	return s, nil
}

// ReadGiftCard returns the gift card state at the current block
func (l *Ledger) ReadGiftCard(_ context.Context, id uint64) (*domain.GiftCardSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, err := l.contract.GiftCard(id)
	if err != nil {
		return nil, err
	}
	s.BlockNumber = l.block
	return s, nil
}

// Totals returns the entity counts at the current block
func (l *Ledger) Totals(_ context.Context) (*domain.LedgerTotals, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.contract.Totals()
	t.BlockNumber = l.block
	return &t, nil
}

// GetLatestBlock returns the current block
func (l *Ledger) GetLatestBlock(_ context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.block, nil
}

// SubscribeEvents replays published events from fromBlock, then follows new ones until ctx is done
func (l *Ledger) SubscribeEvents(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return domain.ErrSubscriptionFailed
	}

	var backlog []domain.LedgerEvent
	for _, e := range l.history {
		if e.BlockNumber >= fromBlock {
			backlog = append(backlog, e)
		}
	}

	ch := make(chan domain.LedgerEvent, 1024)
	id := l.nextSubID
	l.nextSubID++
	l.subscribers[id] = ch
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}()

	deliver := func(e domain.LedgerEvent) {
		if err := handler(&e); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Error handling event"), zap.String("tx_hash", e.TxHash))
		}
	}

	for _, e := range backlog {
		deliver(e)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-ch:
			deliver(e)
		}
	}
}

// Close stops accepting transactions
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

var _ ledger.Client = (*Ledger)(nil)

package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/block"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
)

// Config holds the configuration of the Ethereum ledger client
type Config struct {
	RPCURL          string            `mapstructure:"rpc_url"`
	WebSocketURL    string            `mapstructure:"websocket_url"`
	ChainID         domain.Chain      `mapstructure:"chain_id"`
	ContractAddress string            `mapstructure:"contract_address"`
	SigningKeys     map[string]string `mapstructure:"signing_keys"` // address -> hex private key of custodial accounts
	PollInterval    time.Duration     `mapstructure:"poll_interval"`
	GasLimitBuffer  uint64            `mapstructure:"gas_limit_buffer"` // percent added to the gas estimate
}

// Client talks to the marketplace contract on an EVM chain
type Client struct {
	client       adapter.EthClient
	chain        domain.Chain
	chainID      *big.Int
	contract     common.Address
	keys         map[common.Address]*ecdsa.PrivateKey
	nonceLocks   map[common.Address]*sync.Mutex // held from nonce read to broadcast
	blocks       block.Provider
	clock        adapter.Clock
	pollInterval time.Duration
	gasBuffer    uint64
}

// NewClient creates a ledger client for the contract in cfg
func NewClient(cfg Config, client adapter.EthClient, blocks block.Provider, clock adapter.Clock) (*Client, error) {
	if !domain.IsValidChain(cfg.ChainID) {
		return nil, fmt.Errorf("unsupported chain: %s", cfg.ChainID)
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %s", cfg.ContractAddress)
	}

	chainID, ok := new(big.Int).SetString(strings.TrimPrefix(string(cfg.ChainID), "eip155:"), 10)
	if !ok {
		return nil, fmt.Errorf("invalid chain id: %s", cfg.ChainID)
	}

	keys := make(map[common.Address]*ecdsa.PrivateKey, len(cfg.SigningKeys))
	nonceLocks := make(map[common.Address]*sync.Mutex, len(cfg.SigningKeys))
	for addr, hexKey := range cfg.SigningKeys {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid signing key for %s: %w", addr, err)
		}
		derived := crypto.PubkeyToAddress(key.PublicKey)
		if common.IsHexAddress(addr) && derived != common.HexToAddress(addr) {
			return nil, fmt.Errorf("signing key does not match address %s", addr)
		}
		keys[derived] = key
		nonceLocks[derived] = &sync.Mutex{}
	}

	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	return &Client{
		client:       client,
		chain:        cfg.ChainID,
		chainID:      chainID,
		contract:     common.HexToAddress(cfg.ContractAddress),
		keys:         keys,
		nonceLocks:   nonceLocks,
		blocks:       blocks,
		clock:        clock,
		pollInterval: pollInterval,
		gasBuffer:    cfg.GasLimitBuffer,
	}, nil
}

// packCall encodes the contract input of call
func packCall(call ledger.Call) ([]byte, error) {
	switch call.Method {
	case ledger.MethodMintBackground:
		price := call.Price
		if price == nil {
			price = new(big.Int)
		}
		return parsedABI.Pack(string(call.Method), call.ImageRef, call.Category, price)
	case ledger.MethodCreateGiftCard:
		return parsedABI.Pack(string(call.Method), new(big.Int).SetUint64(call.BackgroundID), call.Price, call.Message)
	case ledger.MethodBuyGiftCard:
		return parsedABI.Pack(string(call.Method), new(big.Int).SetUint64(call.GiftCardID), call.Message)
	case ledger.MethodSetSecretKey, ledger.MethodClaimGiftCard:
		return parsedABI.Pack(string(call.Method), new(big.Int).SetUint64(call.GiftCardID), call.Secret)
	case ledger.MethodTransferGiftCard:
		return parsedABI.Pack(string(call.Method), new(big.Int).SetUint64(call.GiftCardID), common.HexToAddress(call.Recipient))
	default:
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrValidation, call.Method)
	}
}

// classifyError maps a node error into the stable error kinds.
// Reverts and funding problems are permanent; anything else is treated as a transport fault.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "execution reverted") || strings.Contains(msg, "insufficient funds") {
		return ledger.MapRevert(err.Error())
	}
	return fmt.Errorf("%w: %v", domain.ErrNetworkFault, err)
}

// Submit signs call with the custodial key of the caller and broadcasts it.
// The call is simulated first so that reverts are reported without spending gas.
func (c *Client) Submit(ctx context.Context, call ledger.Call) (ledger.TxHandle, error) {
	if err := call.Validate(); err != nil {
		return ledger.TxHandle{}, err
	}

	from := common.HexToAddress(call.From)
	key, ok := c.keys[from]
	if !ok {
		return ledger.TxHandle{}, fmt.Errorf("%w: no signing key for %s", domain.ErrUnauthorized, from.Hex())
	}

	data, err := packCall(call)
	if err != nil {
		return ledger.TxHandle{}, fmt.Errorf("failed to pack call: %w", err)
	}

	value := new(big.Int)
	if call.Method == ledger.MethodBuyGiftCard {
		value.Set(call.Value)
	}

	msg := ethereum.CallMsg{From: from, To: &c.contract, Value: value, Data: data}
	gas, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return ledger.TxHandle{}, classifyError(err)
	}
	gas += gas * c.gasBuffer / 100

	signed, err := c.signAndSend(ctx, from, key, gas, value, data)
	if err != nil {
		return ledger.TxHandle{}, err
	}

	logger.InfoCtx(ctx, "Transaction submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("method", string(call.Method)),
		zap.Uint64("nonce", signed.Nonce()))

	return ledger.TxHandle{Hash: signed.Hash().Hex(), From: from.Hex(), SubmittedAt: c.clock.Now()}, nil
}

// signAndSend reads the pending nonce of from, signs and broadcasts.
// Concurrent submissions by the same account would otherwise read the same nonce.
func (c *Client) signAndSend(ctx context.Context, from common.Address, key *ecdsa.PrivateKey, gas uint64, value *big.Int, data []byte) (*types.Transaction, error) {
	mu := c.nonceLocks[from]
	mu.Lock()
	defer mu.Unlock()

	nonce, err := c.client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, classifyError(err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &c.contract,
		Value:    value,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signed); err != nil {
		return nil, classifyError(err)
	}
	return signed, nil
}

// WaitForConfirmation polls for the receipt of tx until it is mined or timeout elapses
func (c *Client) WaitForConfirmation(ctx context.Context, tx ledger.TxHandle, timeout time.Duration) (*domain.Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var receipt *domain.Receipt
	operation := func() error {
		r, err := c.TransactionReceipt(waitCtx, tx.Hash)
		if err != nil {
			logger.WarnCtx(ctx, "Failed to fetch receipt, retrying", zap.String("tx_hash", tx.Hash), zap.Error(err))
			return err
		}
		if r == nil {
			return fmt.Errorf("transaction %s not mined yet", tx.Hash)
		}
		receipt = r
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.NewConstantBackOff(c.pollInterval), waitCtx)); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if waitCtx.Err() != nil {
			return nil, domain.ErrLedgerTimeout
		}
		return nil, err
	}

	return receipt, nil
}

// TransactionReceipt returns the receipt of a mined transaction, or nil while it is pending
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (*domain.Receipt, error) {
	hash := common.HexToHash(txHash)
	r, err := c.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(err)
	}

	receipt := &domain.Receipt{
		TxHash:      txHash,
		BlockNumber: r.BlockNumber.Uint64(),
		Status:      domain.ReceiptStatusSuccess,
	}

	if r.Status != types.ReceiptStatusSuccessful {
		receipt.Status = domain.ReceiptStatusReverted
		receipt.RevertReason = c.revertReason(ctx, hash, r.BlockNumber)
		return receipt, nil
	}

	for _, vLog := range r.Logs {
		if vLog == nil {
			continue
		}
		event, err := c.ParseEventLog(ctx, *vLog)
		if err != nil {
			return nil, fmt.Errorf("failed to parse receipt log %d: %w", vLog.Index, err)
		}
		if event != nil {
			receipt.Events = append(receipt.Events, *event)
		}
	}

	return receipt, nil
}

// revertReason replays a failed transaction against the parent block to recover the revert message
func (c *Client) revertReason(ctx context.Context, hash common.Hash, blockNumber *big.Int) string {
	tx, _, err := c.client.TransactionByHash(ctx, hash)
	if err != nil {
		return "execution reverted"
	}

	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return "execution reverted"
	}

	parent := new(big.Int).Sub(blockNumber, big.NewInt(1))
	_, err = c.client.CallContract(ctx, ethereum.CallMsg{
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
		Data:  tx.Data(),
	}, parent)
	if err == nil {
		return "execution reverted"
	}
	return err.Error()
}

// call executes a read-only contract method at the given block
func (c *Client) call(ctx context.Context, blockNumber uint64, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack data: %w", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return nil, classifyError(err)
	}

	out, err := parsedABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}
	return out, nil
}

// ReadBackground reads a background at the ledger head
func (c *Client) ReadBackground(ctx context.Context, id uint64) (*domain.BackgroundSnapshot, error) {
	head, err := c.blocks.LatestBlock(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	out, err := c.call(ctx, head, "backgrounds", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("unexpected backgrounds output length: %d", len(out))
	}

	artist, _ := out[0].(common.Address)
	if artist == (common.Address{}) {
		return nil, fmt.Errorf("%w: background %d", domain.ErrNotFound, id)
	}

	snapshot := &domain.BackgroundSnapshot{
		ID:          id,
		Artist:      artist.Hex(),
		BlockNumber: head,
		Price:       new(big.Int),
	}
	snapshot.ImageRef, _ = out[1].(string)
	snapshot.Category, _ = out[2].(string)
	if usage, ok := out[3].(*big.Int); ok {
		snapshot.UsageCount = usage.Uint64()
	}
	if price, ok := out[4].(*big.Int); ok {
		snapshot.Price = price
	}
	return snapshot, nil
}

// ReadGiftCard reads a gift card at the ledger head
func (c *Client) ReadGiftCard(ctx context.Context, id uint64) (*domain.GiftCardSnapshot, error) {
	head, err := c.blocks.LatestBlock(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	out, err := c.call(ctx, head, "giftCards", new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}
	if len(out) != 6 {
		return nil, fmt.Errorf("unexpected giftCards output length: %d", len(out))
	}

	creator, _ := out[0].(common.Address)
	if creator == (common.Address{}) {
		return nil, fmt.Errorf("%w: gift card %d", domain.ErrNotFound, id)
	}
	owner, _ := out[1].(common.Address)

	snapshot := &domain.GiftCardSnapshot{
		ID:          id,
		Creator:     creator.Hex(),
		Owner:       owner.Hex(),
		BlockNumber: head,
		Price:       new(big.Int),
	}
	if price, ok := out[2].(*big.Int); ok {
		snapshot.Price = price
	}
	snapshot.Message, _ = out[3].(string)
	if hash, ok := out[4].([32]byte); ok && hash != [32]byte{} {
		snapshot.Commitment = common.Hash(hash).Hex()
		snapshot.Claimable = true
	}
	if bgID, ok := out[5].(*big.Int); ok {
		snapshot.BackgroundID = bgID.Uint64()
	}
	return snapshot, nil
}

// Totals reads the entity counters at the ledger head
func (c *Client) Totals(ctx context.Context) (*domain.LedgerTotals, error) {
	head, err := c.blocks.LatestBlock(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	backgrounds, err := c.call(ctx, head, "backgroundCount")
	if err != nil {
		return nil, err
	}
	giftCards, err := c.call(ctx, head, "giftCardCount")
	if err != nil {
		return nil, err
	}

	totals := &domain.LedgerTotals{BlockNumber: head}
	if n, ok := backgrounds[0].(*big.Int); ok {
		totals.Backgrounds = n.Uint64()
	}
	if n, ok := giftCards[0].(*big.Int); ok {
		totals.GiftCards = n.Uint64()
	}
	return totals, nil
}

// Close closes the connection
func (c *Client) Close() {
	c.client.Close()
	logger.Info("Ethereum connection closed")
}

var _ ledger.Client = (*Client)(nil)

package ethereum

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/commitment"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/mocks"
)

const contractAddress = "0x00000000000000000000000000000000000E7214"

type testClientMocks struct {
	ctrl   *gomock.Controller
	eth    *mocks.MockEthClient
	blocks *mocks.MockBlockProvider
	client *Client
	caller common.Address
}

func setupClient(t *testing.T) *testClientMocks {
	ctrl := gomock.NewController(t)
	eth := mocks.NewMockEthClient(ctrl)
	blocks := mocks.NewMockBlockProvider(ctrl)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	caller := crypto.PubkeyToAddress(key.PublicKey)

	client, err := NewClient(Config{
		ChainID:         domain.ChainBaseSepolia,
		ContractAddress: contractAddress,
		SigningKeys:     map[string]string{caller.Hex(): hexutil.Encode(crypto.FromECDSA(key))},
		PollInterval:    5 * time.Millisecond,
		GasLimitBuffer:  20,
	}, eth, blocks, adapter.NewClock())
	require.NoError(t, err)

	return &testClientMocks{ctrl: ctrl, eth: eth, blocks: blocks, client: client, caller: caller}
}

func packEvent(t *testing.T, name string, args ...interface{}) []byte {
	t.Helper()
	data, err := parsedABI.Events[name].Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)
	return data
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "unsupported chain", cfg: Config{ChainID: "eip155:999", ContractAddress: contractAddress}},
		{name: "invalid contract", cfg: Config{ChainID: domain.ChainLocal, ContractAddress: "0x12"}},
		{name: "invalid key", cfg: Config{ChainID: domain.ChainLocal, ContractAddress: contractAddress, SigningKeys: map[string]string{"0x1": "zz"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil, nil, adapter.NewClock())
			assert.Error(t, err)
		})
	}
}

func TestDecodeLog(t *testing.T) {
	tm := setupClient(t)
	contract := common.HexToAddress(contractAddress)
	seller := common.HexToAddress("0x2222222222222222222222222222222222222222")
	buyer := common.HexToAddress("0x3333333333333333333333333333333333333333")
	txHash := common.HexToHash("0xabc")
	secretHash := commitment.Commit("my-secret-key")

	tests := []struct {
		name   string
		log    types.Log
		expect func(t *testing.T, e *domain.LedgerEvent)
	}{
		{
			name: "background minted",
			log: types.Log{
				Address: contract,
				Topics:  []common.Hash{backgroundMintedSignature, common.BigToHash(big.NewInt(7)), common.BytesToHash(seller.Bytes())},
				Data:    packEvent(t, "BackgroundMinted", "ipfs://bg", "birthday", big.NewInt(0)),
			},
			expect: func(t *testing.T, e *domain.LedgerEvent) {
				assert.Equal(t, domain.EventKindBackgroundMinted, e.Kind)
				assert.Equal(t, uint64(7), e.EntityID)
				assert.Equal(t, seller.Hex(), e.To)
				assert.Equal(t, "ipfs://bg", e.ImageRef)
				assert.Equal(t, "birthday", e.Category)
			},
		},
		{
			name: "gift card created",
			log: types.Log{
				Address: contract,
				Topics:  []common.Hash{giftCardCreatedSignature, common.BigToHash(big.NewInt(3)), common.BytesToHash(seller.Bytes())},
				Data:    packEvent(t, "GiftCardCreated", big.NewInt(100), big.NewInt(7), "hello"),
			},
			expect: func(t *testing.T, e *domain.LedgerEvent) {
				assert.Equal(t, domain.EventKindGiftCardCreated, e.Kind)
				assert.Equal(t, uint64(3), e.EntityID)
				assert.Equal(t, "100", e.Amount)
				assert.Equal(t, uint64(7), e.BackgroundID)
				require.NotNil(t, e.Message)
				assert.Equal(t, "hello", *e.Message)
			},
		},
		{
			name: "gift card purchased",
			log: types.Log{
				Address: contract,
				Topics:  []common.Hash{giftCardPurchasedSignature, common.BigToHash(big.NewInt(3)), common.BytesToHash(seller.Bytes()), common.BytesToHash(buyer.Bytes())},
				Data:    packEvent(t, "GiftCardPurchased", big.NewInt(100), "for you"),
			},
			expect: func(t *testing.T, e *domain.LedgerEvent) {
				assert.Equal(t, domain.EventKindGiftCardPurchased, e.Kind)
				assert.Equal(t, seller.Hex(), e.From)
				assert.Equal(t, buyer.Hex(), e.To)
				assert.Equal(t, "100", e.Amount)
			},
		},
		{
			name: "secret set",
			log: types.Log{
				Address: contract,
				Topics:  []common.Hash{secretKeySetSignature, common.BigToHash(big.NewInt(3)), common.BytesToHash(buyer.Bytes())},
				Data:    packEvent(t, "SecretKeySet", [32]byte(secretHash)),
			},
			expect: func(t *testing.T, e *domain.LedgerEvent) {
				assert.Equal(t, domain.EventKindSecretSet, e.Kind)
				assert.Equal(t, secretHash.Hex(), e.Commitment)
			},
		},
		{
			name: "gift card transferred",
			log: types.Log{
				Address: contract,
				Topics:  []common.Hash{giftCardTransferredSignature, common.BigToHash(big.NewInt(3)), common.BytesToHash(buyer.Bytes()), common.BytesToHash(seller.Bytes())},
			},
			expect: func(t *testing.T, e *domain.LedgerEvent) {
				assert.Equal(t, domain.EventKindGiftCardTransferred, e.Kind)
				assert.Equal(t, buyer.Hex(), e.From)
				assert.Equal(t, seller.Hex(), e.To)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.log.TxHash = txHash
			tt.log.BlockNumber = 10
			tt.log.Index = 2

			event, err := tm.client.decodeLog(tt.log)
			require.NoError(t, err)
			require.NotNil(t, event)
			assert.Equal(t, domain.ChainBaseSepolia, event.Chain)
			assert.Equal(t, txHash.Hex(), event.TxHash)
			assert.Equal(t, uint(2), event.LogIndex)
			assert.True(t, event.Valid())
			tt.expect(t, event)
		})
	}

	t.Run("malformed topics", func(t *testing.T) {
		_, err := tm.client.decodeLog(types.Log{Address: contract, Topics: []common.Hash{giftCardClaimedSignature}})
		assert.Error(t, err)
	})

	t.Run("unknown signature is skipped", func(t *testing.T) {
		event, err := tm.client.decodeLog(types.Log{Address: contract, Topics: []common.Hash{common.HexToHash("0x01")}})
		assert.NoError(t, err)
		assert.Nil(t, event)
	})
}

func TestParseEventLog_OtherContractIgnored(t *testing.T) {
	tm := setupClient(t)

	event, err := tm.client.ParseEventLog(context.Background(), types.Log{
		Address: common.HexToAddress("0x9999999999999999999999999999999999999999"),
		Topics:  []common.Hash{giftCardClaimedSignature},
	})
	assert.NoError(t, err)
	assert.Nil(t, event)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("revert during estimation is classified", func(t *testing.T) {
		tm := setupClient(t)
		tm.eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).
			Return(uint64(0), errors.New("execution reverted: Invalid secret"))

		_, err := tm.client.Submit(ctx, ledger.Call{Method: ledger.MethodClaimGiftCard, From: tm.caller.Hex(), GiftCardID: 1, Secret: "wrong"})
		assert.ErrorIs(t, err, domain.ErrInvalidSecret)
	})

	t.Run("transport error is a network fault", func(t *testing.T) {
		tm := setupClient(t)
		tm.eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(0), errors.New("dial tcp: connection refused"))

		_, err := tm.client.Submit(ctx, ledger.Call{Method: ledger.MethodSetSecretKey, From: tm.caller.Hex(), GiftCardID: 1, Secret: "s"})
		assert.ErrorIs(t, err, domain.ErrNetworkFault)
		assert.True(t, domain.RetrySafe(err))
	})

	t.Run("caller without key", func(t *testing.T) {
		tm := setupClient(t)
		_, err := tm.client.Submit(ctx, ledger.Call{Method: ledger.MethodSetSecretKey, From: "0x4444444444444444444444444444444444444444", GiftCardID: 1, Secret: "s"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("signs and broadcasts", func(t *testing.T) {
		tm := setupClient(t)
		value := big.NewInt(100)

		tm.eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
				assert.Equal(t, tm.caller, msg.From)
				assert.Equal(t, value, msg.Value)
				return uint64(100_000), nil
			})
		tm.eth.EXPECT().PendingNonceAt(gomock.Any(), tm.caller).Return(uint64(4), nil)
		tm.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)

		var sent *types.Transaction
		tm.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *types.Transaction) error {
				sent = tx
				return nil
			})

		handle, err := tm.client.Submit(ctx, ledger.Call{Method: ledger.MethodBuyGiftCard, From: tm.caller.Hex(), GiftCardID: 1, Value: value})
		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Equal(t, sent.Hash().Hex(), handle.Hash)
		assert.Equal(t, uint64(4), sent.Nonce())
		assert.Equal(t, uint64(120_000), sent.Gas())
		assert.Equal(t, value, sent.Value())

		signer, err := types.Sender(types.LatestSignerForChainID(big.NewInt(84532)), sent)
		require.NoError(t, err)
		assert.Equal(t, tm.caller, signer)
	})
}

func TestSubmit_ConcurrentCallsGetDistinctNonces(t *testing.T) {
	tm := setupClient(t)
	ctx := context.Background()
	const calls = 8

	// the node only advances the pending nonce once a transaction is broadcast
	var (
		mu      sync.Mutex
		pending uint64
		nonces  []uint64
	)
	tm.eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).Return(uint64(50_000), nil).Times(calls)
	tm.eth.EXPECT().PendingNonceAt(gomock.Any(), tm.caller).DoAndReturn(
		func(_ context.Context, _ common.Address) (uint64, error) {
			mu.Lock()
			defer mu.Unlock()
			return pending, nil
		}).Times(calls)
	tm.eth.EXPECT().SuggestGasPrice(gomock.Any()).DoAndReturn(
		func(_ context.Context) (*big.Int, error) {
			time.Sleep(time.Millisecond)
			return big.NewInt(1_000_000_000), nil
		}).Times(calls)
	tm.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, tx *types.Transaction) error {
			mu.Lock()
			defer mu.Unlock()
			if tx.Nonce() != pending {
				return errors.New("nonce too low")
			}
			pending++
			nonces = append(nonces, tx.Nonce())
			return nil
		}).Times(calls)

	var wg sync.WaitGroup
	errs := make(chan error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := tm.client.Submit(ctx, ledger.Call{Method: ledger.MethodSetSecretKey, From: tm.caller.Hex(), GiftCardID: id, Secret: "s"})
			errs <- err
		}(uint64(i + 1))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, nonces, calls)
	for i, n := range nonces {
		assert.Equal(t, uint64(i), n)
	}
}

func TestTransactionReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("pending", func(t *testing.T) {
		tm := setupClient(t)
		tm.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound)

		r, err := tm.client.TransactionReceipt(ctx, "0xabc")
		assert.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("success with events", func(t *testing.T) {
		tm := setupClient(t)
		buyer := common.HexToAddress("0x3333333333333333333333333333333333333333")
		ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

		tm.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(&types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(12),
			Logs: []*types.Log{{
				Address:     common.HexToAddress(contractAddress),
				Topics:      []common.Hash{giftCardClaimedSignature, common.BigToHash(big.NewInt(1)), common.BytesToHash(tm.caller.Bytes()), common.BytesToHash(buyer.Bytes())},
				BlockNumber: 12,
				Index:       0,
			}},
		}, nil)
		tm.blocks.EXPECT().BlockTime(gomock.Any(), uint64(12)).Return(ts, nil)

		r, err := tm.client.TransactionReceipt(ctx, "0xabc")
		require.NoError(t, err)
		assert.True(t, r.Succeeded())
		require.Len(t, r.EventsOfKind(domain.EventKindGiftCardClaimed), 1)
		assert.Equal(t, ts, r.Events[0].Timestamp)
	})
}

func TestWaitForConfirmation_Timeout(t *testing.T) {
	tm := setupClient(t)
	tm.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound).AnyTimes()

	_, err := tm.client.WaitForConfirmation(context.Background(), ledger.TxHandle{Hash: "0xabc"}, 30*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrLedgerTimeout)
}

func TestReadGiftCard(t *testing.T) {
	ctx := context.Background()
	creator := common.HexToAddress("0x2222222222222222222222222222222222222222")
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")

	t.Run("existing card", func(t *testing.T) {
		tm := setupClient(t)
		tm.blocks.EXPECT().LatestBlock(gomock.Any()).Return(uint64(50), nil)

		out, err := parsedABI.Methods["giftCards"].Outputs.Pack(creator, owner, big.NewInt(100), "hi", [32]byte(commitment.Commit("s")), big.NewInt(2))
		require.NoError(t, err)
		tm.eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), big.NewInt(50)).Return(out, nil)

		card, err := tm.client.ReadGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, creator.Hex(), card.Creator)
		assert.Equal(t, owner.Hex(), card.Owner)
		assert.True(t, card.Claimable)
		assert.Equal(t, commitment.Commit("s").Hex(), card.Commitment)
		assert.Equal(t, uint64(2), card.BackgroundID)
		assert.Equal(t, uint64(50), card.BlockNumber)
	})

	t.Run("missing card", func(t *testing.T) {
		tm := setupClient(t)
		tm.blocks.EXPECT().LatestBlock(gomock.Any()).Return(uint64(50), nil)

		out, err := parsedABI.Methods["giftCards"].Outputs.Pack(common.Address{}, common.Address{}, big.NewInt(0), "", [32]byte{}, big.NewInt(0))
		require.NoError(t, err)
		tm.eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), gomock.Any()).Return(out, nil)

		_, err = tm.client.ReadGiftCard(ctx, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// marketplaceABI describes the NFTGiftMarketplace contract
const marketplaceABI = `[
	{"type":"function","name":"mintBackground","stateMutability":"nonpayable","inputs":[{"name":"imageURI","type":"string"},{"name":"category","type":"string"},{"name":"price","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"createGiftCard","stateMutability":"nonpayable","inputs":[{"name":"backgroundId","type":"uint256"},{"name":"price","type":"uint256"},{"name":"message","type":"string"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"buyGiftCard","stateMutability":"payable","inputs":[{"name":"giftCardId","type":"uint256"},{"name":"message","type":"string"}],"outputs":[]},
	{"type":"function","name":"setSecretKey","stateMutability":"nonpayable","inputs":[{"name":"giftCardId","type":"uint256"},{"name":"secret","type":"string"}],"outputs":[]},
	{"type":"function","name":"claimGiftCard","stateMutability":"nonpayable","inputs":[{"name":"giftCardId","type":"uint256"},{"name":"secret","type":"string"}],"outputs":[]},
	{"type":"function","name":"transferGiftCard","stateMutability":"nonpayable","inputs":[{"name":"giftCardId","type":"uint256"},{"name":"recipient","type":"address"}],"outputs":[]},
	{"type":"function","name":"backgrounds","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"artist","type":"address"},{"name":"imageURI","type":"string"},{"name":"category","type":"string"},{"name":"usageCount","type":"uint256"},{"name":"price","type":"uint256"}]},
	{"type":"function","name":"giftCards","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"creator","type":"address"},{"name":"currentOwner","type":"address"},{"name":"price","type":"uint256"},{"name":"message","type":"string"},{"name":"secretHash","type":"bytes32"},{"name":"backgroundId","type":"uint256"}]},
	{"type":"function","name":"backgroundCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"giftCardCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"event","name":"BackgroundMinted","anonymous":false,"inputs":[{"name":"backgroundId","type":"uint256","indexed":true},{"name":"artist","type":"address","indexed":true},{"name":"imageURI","type":"string","indexed":false},{"name":"category","type":"string","indexed":false},{"name":"price","type":"uint256","indexed":false}]},
	{"type":"event","name":"GiftCardCreated","anonymous":false,"inputs":[{"name":"giftCardId","type":"uint256","indexed":true},{"name":"creator","type":"address","indexed":true},{"name":"price","type":"uint256","indexed":false},{"name":"backgroundId","type":"uint256","indexed":false},{"name":"message","type":"string","indexed":false}]},
	{"type":"event","name":"GiftCardPurchased","anonymous":false,"inputs":[{"name":"giftCardId","type":"uint256","indexed":true},{"name":"seller","type":"address","indexed":true},{"name":"buyer","type":"address","indexed":true},{"name":"price","type":"uint256","indexed":false},{"name":"message","type":"string","indexed":false}]},
	{"type":"event","name":"SecretKeySet","anonymous":false,"inputs":[{"name":"giftCardId","type":"uint256","indexed":true},{"name":"owner","type":"address","indexed":true},{"name":"secretHash","type":"bytes32","indexed":false}]},
	{"type":"event","name":"GiftCardClaimed","anonymous":false,"inputs":[{"name":"giftCardId","type":"uint256","indexed":true},{"name":"previousOwner","type":"address","indexed":true},{"name":"claimer","type":"address","indexed":true}]},
	{"type":"event","name":"GiftCardTransferred","anonymous":false,"inputs":[{"name":"giftCardId","type":"uint256","indexed":true},{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true}]}
]`

var parsedABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(marketplaceABI))
	if err != nil {
		panic(fmt.Sprintf("invalid marketplace ABI: %v", err))
	}
	return parsed
}

// Event signatures
var (
	backgroundMintedSignature    = parsedABI.Events["BackgroundMinted"].ID
	giftCardCreatedSignature     = parsedABI.Events["GiftCardCreated"].ID
	giftCardPurchasedSignature   = parsedABI.Events["GiftCardPurchased"].ID
	secretKeySetSignature        = parsedABI.Events["SecretKeySet"].ID
	giftCardClaimedSignature     = parsedABI.Events["GiftCardClaimed"].ID
	giftCardTransferredSignature = parsedABI.Events["GiftCardTransferred"].ID

	eventSignatures = []common.Hash{
		backgroundMintedSignature,
		giftCardCreatedSignature,
		giftCardPurchasedSignature,
		secretKeySetSignature,
		giftCardClaimedSignature,
		giftCardTransferredSignature,
	}
)

func topicUint(h common.Hash) uint64 {
	return new(big.Int).SetBytes(h.Bytes()).Uint64()
}

func topicAddress(h common.Hash) string {
	return common.BytesToAddress(h.Bytes()).Hex()
}

// ParseEventLog converts a marketplace log into a ledger event.
// Logs from other contracts or with unknown signatures return nil.
func (c *Client) ParseEventLog(ctx context.Context, vLog types.Log) (*domain.LedgerEvent, error) {
	if vLog.Address != c.contract || len(vLog.Topics) == 0 {
		return nil, nil
	}

	event, err := c.decodeLog(vLog)
	if err != nil || event == nil {
		return event, err
	}

	ts, err := c.blocks.BlockTime(ctx, vLog.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get block time: %w", err)
	}
	event.Timestamp = ts

	return event, nil
}

func (c *Client) decodeLog(vLog types.Log) (*domain.LedgerEvent, error) {
	blockHash := vLog.BlockHash.Hex()
	event := &domain.LedgerEvent{
		Chain:       c.chain,
		TxHash:      vLog.TxHash.Hex(),
		BlockNumber: vLog.BlockNumber,
		LogIndex:    vLog.Index,
		BlockHash:   &blockHash,
		Contract:    vLog.Address.Hex(),
	}

	data := make(map[string]interface{})

	switch vLog.Topics[0] {
	case backgroundMintedSignature:
		// BackgroundMinted(uint256 indexed backgroundId, address indexed artist, string imageURI, string category, uint256 price)
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid BackgroundMinted event: expected 3 topics, got %d", len(vLog.Topics))
		}
		if err := parsedABI.UnpackIntoMap(data, "BackgroundMinted", vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack BackgroundMinted: %w", err)
		}
		event.Kind = domain.EventKindBackgroundMinted
		event.EntityID = topicUint(vLog.Topics[1])
		event.To = topicAddress(vLog.Topics[2])
		event.ImageRef, _ = data["imageURI"].(string)
		event.Category, _ = data["category"].(string)
		if price, ok := data["price"].(*big.Int); ok {
			event.Amount = price.String()
		}

	case giftCardCreatedSignature:
		// GiftCardCreated(uint256 indexed giftCardId, address indexed creator, uint256 price, uint256 backgroundId, string message)
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid GiftCardCreated event: expected 3 topics, got %d", len(vLog.Topics))
		}
		if err := parsedABI.UnpackIntoMap(data, "GiftCardCreated", vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack GiftCardCreated: %w", err)
		}
		event.Kind = domain.EventKindGiftCardCreated
		event.EntityID = topicUint(vLog.Topics[1])
		event.To = topicAddress(vLog.Topics[2])
		if price, ok := data["price"].(*big.Int); ok {
			event.Amount = price.String()
		}
		if bgID, ok := data["backgroundId"].(*big.Int); ok {
			event.BackgroundID = bgID.Uint64()
		}
		if msg, ok := data["message"].(string); ok {
			event.Message = &msg
		}

	case giftCardPurchasedSignature:
		// GiftCardPurchased(uint256 indexed giftCardId, address indexed seller, address indexed buyer, uint256 price, string message)
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid GiftCardPurchased event: expected 4 topics, got %d", len(vLog.Topics))
		}
		if err := parsedABI.UnpackIntoMap(data, "GiftCardPurchased", vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack GiftCardPurchased: %w", err)
		}
		event.Kind = domain.EventKindGiftCardPurchased
		event.EntityID = topicUint(vLog.Topics[1])
		event.From = topicAddress(vLog.Topics[2])
		event.To = topicAddress(vLog.Topics[3])
		if price, ok := data["price"].(*big.Int); ok {
			event.Amount = price.String()
		}
		if msg, ok := data["message"].(string); ok {
			event.Message = &msg
		}

	case secretKeySetSignature:
		// SecretKeySet(uint256 indexed giftCardId, address indexed owner, bytes32 secretHash)
		if len(vLog.Topics) != 3 {
			return nil, fmt.Errorf("invalid SecretKeySet event: expected 3 topics, got %d", len(vLog.Topics))
		}
		if err := parsedABI.UnpackIntoMap(data, "SecretKeySet", vLog.Data); err != nil {
			return nil, fmt.Errorf("failed to unpack SecretKeySet: %w", err)
		}
		event.Kind = domain.EventKindSecretSet
		event.EntityID = topicUint(vLog.Topics[1])
		event.To = topicAddress(vLog.Topics[2])
		if hash, ok := data["secretHash"].([32]byte); ok {
			event.Commitment = common.Hash(hash).Hex()
		}

	case giftCardClaimedSignature, giftCardTransferredSignature:
		// GiftCardClaimed(uint256 indexed giftCardId, address indexed previousOwner, address indexed claimer)
		// GiftCardTransferred(uint256 indexed giftCardId, address indexed from, address indexed to)
		if len(vLog.Topics) != 4 {
			return nil, fmt.Errorf("invalid ownership event: expected 4 topics, got %d", len(vLog.Topics))
		}
		event.Kind = domain.EventKindGiftCardClaimed
		if vLog.Topics[0] == giftCardTransferredSignature {
			event.Kind = domain.EventKindGiftCardTransferred
		}
		event.EntityID = topicUint(vLog.Topics[1])
		event.From = topicAddress(vLog.Topics[2])
		event.To = topicAddress(vLog.Topics[3])

	default:
		return nil, nil
	}

	return event, nil
}

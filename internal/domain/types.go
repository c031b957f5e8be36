package domain

import (
	"fmt"
	"math"
	"math/big"
	"time"
)

// Chain represents the ledger network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
	ChainBaseSepolia     Chain = "eip155:84532"
	ChainLocal           Chain = "eip155:31337"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet ||
		chain == ChainEthereumSepolia ||
		chain == ChainBaseSepolia ||
		chain == ChainLocal
}

// EventKind represents the kind of event emitted by the marketplace contract
type EventKind string

const (
	EventKindBackgroundMinted    EventKind = "background_minted"
	EventKindGiftCardCreated     EventKind = "gift_card_created"
	EventKindGiftCardPurchased   EventKind = "gift_card_purchased"
	EventKindSecretSet           EventKind = "secret_set"
	EventKindGiftCardClaimed     EventKind = "gift_card_claimed"
	EventKindGiftCardTransferred EventKind = "gift_card_transferred"
)

// AllEventKinds lists every event kind the mirror projects
var AllEventKinds = []EventKind{
	EventKindBackgroundMinted,
	EventKindGiftCardCreated,
	EventKindGiftCardPurchased,
	EventKindSecretSet,
	EventKindGiftCardClaimed,
	EventKindGiftCardTransferred,
}

// EntityType identifies a ledger entity
type EntityType string

const (
	EntityTypeBackground EntityType = "background"
	EntityTypeGiftCard   EntityType = "gift_card"
)

// EntityType returns the entity the event kind mutates
func (k EventKind) EntityType() EntityType {
	if k == EventKindBackgroundMinted {
		return EntityTypeBackground
	}
	return EntityTypeGiftCard
}

// SnapshotLogIndex is the log index assigned to state read directly from the ledger.
// A snapshot read at block N reflects every event up to and including block N.
const SnapshotLogIndex = math.MaxUint32

// Position is the ledger ordering marker of a change
type Position struct {
	BlockNumber uint64 `json:"block_number"`
	LogIndex    uint   `json:"log_index"`
}

// Before reports whether p is ordered strictly before o
func (p Position) Before(o Position) bool {
	if p.BlockNumber != o.BlockNumber {
		return p.BlockNumber < o.BlockNumber
	}
	return p.LogIndex < o.LogIndex
}

// SnapshotPosition returns the position of a snapshot read at the given block
func SnapshotPosition(blockNumber uint64) Position {
	return Position{BlockNumber: blockNumber, LogIndex: SnapshotLogIndex}
}

// LedgerEvent represents a normalized marketplace event.
// This is the standard format published to NATS.
type LedgerEvent struct {
	Kind         EventKind `json:"kind"`
	Chain        Chain     `json:"chain"`
	EntityID     uint64    `json:"entity_id"`                // background ID for BackgroundMinted, gift card ID otherwise
	From         string    `json:"from,omitempty"`           // previous owner for purchase, claim and transfer
	To           string    `json:"to"`                       // artist, creator, buyer, owner, claimer or recipient
	Amount       string    `json:"amount,omitempty"`         // wei amount (price)
	BackgroundID uint64    `json:"background_id,omitempty"`  // background used by GiftCardCreated
	ImageRef     string    `json:"image_ref,omitempty"`      // BackgroundMinted
	Category     string    `json:"category,omitempty"`       // BackgroundMinted
	Message      *string   `json:"message,omitempty"`        // GiftCardCreated, GiftCardPurchased
	Commitment   string    `json:"commitment,omitempty"`     // SecretSet
	TxHash       string    `json:"tx_hash"`                  // transaction hash
	BlockNumber  uint64    `json:"block_number"`             // block number
	LogIndex     uint      `json:"log_index"`                // log index in the block
	Timestamp    time.Time `json:"timestamp"`                // block timestamp
	BlockHash    *string   `json:"block_hash,omitempty"`     // optional
	Contract     string    `json:"contract,omitempty"`       // emitting contract address
}

// Position returns the ledger ordering marker of the event
func (e *LedgerEvent) Position() Position {
	return Position{BlockNumber: e.BlockNumber, LogIndex: e.LogIndex}
}

// DedupID returns a stable identifier used for broker-side deduplication
func (e *LedgerEvent) DedupID() string {
	return fmt.Sprintf("%s:%d", e.TxHash, e.LogIndex)
}

// AmountInt returns the event amount as a big integer, zero when unset
func (e *LedgerEvent) AmountInt() *big.Int {
	v, ok := new(big.Int).SetString(e.Amount, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// Valid checks the fields required by the event kind
func (e *LedgerEvent) Valid() bool {
	if e.EntityID == 0 || e.TxHash == "" || e.To == "" {
		return false
	}

	switch e.Kind {
	case EventKindBackgroundMinted:
		return e.ImageRef != ""
	case EventKindGiftCardCreated:
		return e.BackgroundID != 0 && e.Amount != ""
	case EventKindGiftCardPurchased:
		return e.From != "" && e.Amount != ""
	case EventKindSecretSet:
		return e.Commitment != ""
	case EventKindGiftCardClaimed, EventKindGiftCardTransferred:
		return e.From != ""
	default:
		return false
	}
}

// ReceiptStatus represents the execution outcome of a mined transaction
type ReceiptStatus string

const (
	ReceiptStatusSuccess  ReceiptStatus = "success"
	ReceiptStatusReverted ReceiptStatus = "reverted"
)

// Receipt is the confirmation record of a mined transaction
type Receipt struct {
	TxHash       string        `json:"tx_hash"`
	BlockNumber  uint64        `json:"block_number"`
	Status       ReceiptStatus `json:"status"`
	Events       []LedgerEvent `json:"events"`
	RevertReason string        `json:"revert_reason,omitempty"`
}

// Succeeded reports whether the transaction executed successfully
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptStatusSuccess
}

// EventsOfKind returns the receipt events matching kind
func (r *Receipt) EventsOfKind(kind EventKind) []LedgerEvent {
	var events []LedgerEvent
	for _, e := range r.Events {
		if e.Kind == kind {
			events = append(events, e)
		}
	}
	return events
}

// BackgroundSnapshot is the ledger state of a background at a block
type BackgroundSnapshot struct {
	ID          uint64
	Artist      string
	ImageRef    string
	Category    string
	UsageCount  uint64
	Price       *big.Int
	BlockNumber uint64
}

// GiftCardSnapshot is the ledger state of a gift card at a block
type GiftCardSnapshot struct {
	ID           uint64
	Creator      string
	Owner        string
	Price        *big.Int
	Message      string
	Commitment   string // empty when no commitment is set
	Claimable    bool
	BackgroundID uint64
	BlockNumber  uint64
}

// LedgerTotals holds the number of entities ever created on the ledger
type LedgerTotals struct {
	Backgrounds uint64
	GiftCards   uint64
	BlockNumber uint64
}

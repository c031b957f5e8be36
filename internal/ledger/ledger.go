package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/messaging"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// Method is a mutating entry point of the marketplace contract
type Method string

const (
	MethodMintBackground   Method = "mintBackground"
	MethodCreateGiftCard   Method = "createGiftCard"
	MethodBuyGiftCard      Method = "buyGiftCard"
	MethodSetSecretKey     Method = "setSecretKey"
	MethodClaimGiftCard    Method = "claimGiftCard"
	MethodTransferGiftCard Method = "transferGiftCard"
)

// ExpectedEvent returns the event kind a successful call of m emits
func (m Method) ExpectedEvent() domain.EventKind {
	switch m {
	case MethodMintBackground:
		return domain.EventKindBackgroundMinted
	case MethodCreateGiftCard:
		return domain.EventKindGiftCardCreated
	case MethodBuyGiftCard:
		return domain.EventKindGiftCardPurchased
	case MethodSetSecretKey:
		return domain.EventKindSecretSet
	case MethodClaimGiftCard:
		return domain.EventKindGiftCardClaimed
	case MethodTransferGiftCard:
		return domain.EventKindGiftCardTransferred
	default:
		return ""
	}
}

// Call is a single contract invocation
type Call struct {
	Method       Method
	From         string
	Value        *big.Int // payment attached to buyGiftCard
	BackgroundID uint64
	GiftCardID   uint64
	ImageRef     string
	Category     string
	Price        *big.Int
	Message      string
	Secret       string // never logged or persisted
	Recipient    string
}

// EntityType returns the entity the call mutates
func (c Call) EntityType() domain.EntityType {
	return c.Method.ExpectedEvent().EntityType()
}

// EntityID returns the ID of the mutated entity when it is known before submission.
// Mint and create calls return 0; the ledger assigns the ID.
func (c Call) EntityID() uint64 {
	switch c.Method {
	case MethodMintBackground, MethodCreateGiftCard:
		return 0
	default:
		return c.GiftCardID
	}
}

// String renders the call for logs with the secret redacted
func (c Call) String() string {
	secret := ""
	if c.Secret != "" {
		secret = "<redacted>"
	}
	return fmt.Sprintf("%s{from=%s background=%d gift_card=%d price=%v value=%v recipient=%s secret=%s}",
		c.Method, c.From, c.BackgroundID, c.GiftCardID, c.Price, c.Value, c.Recipient, secret)
}

// Validate checks the fields each method requires. It never consults ledger state.
func (c Call) Validate() error {
	if !types.IsEthereumAddress(c.From) {
		return fmt.Errorf("%w: caller address is invalid", domain.ErrValidation)
	}

	switch c.Method {
	case MethodMintBackground:
		if c.ImageRef == "" {
			return fmt.Errorf("%w: image reference is required", domain.ErrValidation)
		}
		if c.Category == "" {
			return fmt.Errorf("%w: category is required", domain.ErrValidation)
		}
		if c.Price != nil && c.Price.Sign() < 0 {
			return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
	case MethodCreateGiftCard:
		if c.BackgroundID == 0 {
			return fmt.Errorf("%w: background id is required", domain.ErrValidation)
		}
		if c.Price == nil || c.Price.Sign() <= 0 {
			return fmt.Errorf("%w: price must be greater than zero", domain.ErrValidation)
		}
	case MethodBuyGiftCard:
		if c.GiftCardID == 0 {
			return fmt.Errorf("%w: gift card id is required", domain.ErrValidation)
		}
		if c.Value == nil || c.Value.Sign() < 0 {
			return fmt.Errorf("%w: payment value is required", domain.ErrValidation)
		}
	case MethodSetSecretKey, MethodClaimGiftCard:
		if c.GiftCardID == 0 {
			return fmt.Errorf("%w: gift card id is required", domain.ErrValidation)
		}
		if c.Secret == "" {
			return fmt.Errorf("%w: secret is required", domain.ErrValidation)
		}
	case MethodTransferGiftCard:
		if c.GiftCardID == 0 {
			return fmt.Errorf("%w: gift card id is required", domain.ErrValidation)
		}
		if !types.IsEthereumAddress(c.Recipient) {
			return fmt.Errorf("%w: recipient address is invalid", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown method %q", domain.ErrValidation, c.Method)
	}

	return nil
}

// TxHandle references a submitted transaction
type TxHandle struct {
	Hash        string
	From        string
	SubmittedAt time.Time
}

// Client is the ledger capability consumed by the reconciliation layer
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Client=MockLedgerClient
type Client interface {
	messaging.Subscriber

	// Submit broadcasts call. Calls the ledger would reject are returned as errors
	// of a stable kind and never broadcast.
	Submit(ctx context.Context, call Call) (TxHandle, error)

	// WaitForConfirmation blocks until the transaction is mined or timeout elapses.
	// On timeout it returns domain.ErrLedgerTimeout; the transaction may still confirm later.
	WaitForConfirmation(ctx context.Context, tx TxHandle, timeout time.Duration) (*domain.Receipt, error)

	// TransactionReceipt returns the receipt of a mined transaction, or nil while it is pending
	TransactionReceipt(ctx context.Context, txHash string) (*domain.Receipt, error)

	// ReadBackground returns the current background state or domain.ErrNotFound
	ReadBackground(ctx context.Context, id uint64) (*domain.BackgroundSnapshot, error)

	// ReadGiftCard returns the current gift card state or domain.ErrNotFound
	ReadGiftCard(ctx context.Context, id uint64) (*domain.GiftCardSnapshot, error)

	// Totals returns how many backgrounds and gift cards exist
	Totals(ctx context.Context) (*domain.LedgerTotals, error)
}

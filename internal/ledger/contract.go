package ledger

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/evrlink/evrlink-mirror/internal/commitment"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// BasisPoints is the denominator of a SplitPolicy share
const BasisPoints = 10_000

// SplitPolicy divides a purchase price between the card creator, the platform and the seller.
// Whatever the creator and platform shares leave over goes to the seller.
type SplitPolicy struct {
	CreatorBps  uint16 `mapstructure:"creator_bps"`
	PlatformBps uint16 `mapstructure:"platform_bps"`
}

// DefaultSplitPolicy pays 40% to the creator and 60% to the platform
var DefaultSplitPolicy = SplitPolicy{CreatorBps: 4000, PlatformBps: 6000}

// Validate checks the shares do not exceed the price
func (p SplitPolicy) Validate() error {
	if uint32(p.CreatorBps)+uint32(p.PlatformBps) > BasisPoints {
		return fmt.Errorf("split shares exceed %d basis points: creator=%d platform=%d",
			BasisPoints, p.CreatorBps, p.PlatformBps)
	}
	return nil
}

// Split divides price. The three shares always sum to price.
func (p SplitPolicy) Split(price *big.Int) (creator, platform, seller *big.Int) {
	bps := big.NewInt(BasisPoints)
	creator = new(big.Int).Div(new(big.Int).Mul(price, big.NewInt(int64(p.CreatorBps))), bps)
	platform = new(big.Int).Div(new(big.Int).Mul(price, big.NewInt(int64(p.PlatformBps))), bps)
	seller = new(big.Int).Sub(price, creator)
	seller.Sub(seller, platform)
	return creator, platform, seller
}

// PayoutRole identifies why a payout was made
type PayoutRole string

const (
	PayoutRoleCreator  PayoutRole = "creator"
	PayoutRolePlatform PayoutRole = "platform"
	PayoutRoleSeller   PayoutRole = "seller"
)

// Payout is a value transfer made by the contract during a purchase
type Payout struct {
	To     string
	Amount *big.Int
	Role   PayoutRole
}

// Outcome is the result of a successful contract execution
type Outcome struct {
	Events  []domain.LedgerEvent
	Payouts []Payout
}

type background struct {
	id         uint64
	artist     string
	imageRef   string
	category   string
	price      *big.Int
	usageCount uint64
}

type giftCard struct {
	id           uint64
	creator      string
	owner        string
	price        *big.Int
	message      string
	commitment   commitment.Digest
	backgroundID uint64
}

func (g *giftCard) claimable() bool {
	return !g.commitment.IsZero()
}

// Contract is the authoritative state machine of the marketplace.
// Execute either applies a call fully and returns its events, or rejects it and changes nothing.
// Emitted events carry the entity fields only; the caller stamps transaction and block data.
type Contract struct {
	mu          sync.RWMutex
	split       SplitPolicy
	platform    string
	backgrounds map[uint64]*background
	giftCards   map[uint64]*giftCard
	imageRefs   map[string]uint64
}

// NewContract creates an empty contract.
// When platform is empty the platform share is paid to the seller.
func NewContract(split SplitPolicy, platform string) (*Contract, error) {
	if err := split.Validate(); err != nil {
		return nil, err
	}
	if platform != "" && !types.IsEthereumAddress(platform) {
		return nil, fmt.Errorf("invalid platform address: %s", platform)
	}

	return &Contract{
		split:       split,
		platform:    platform,
		backgrounds: make(map[uint64]*background),
		giftCards:   make(map[uint64]*giftCard),
		imageRefs:   make(map[string]uint64),
	}, nil
}

// Execute runs call against the current state
func (c *Contract) Execute(call Call) (*Outcome, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch call.Method {
	case MethodMintBackground:
		return c.mintBackground(call)
	case MethodCreateGiftCard:
		return c.createGiftCard(call)
	case MethodBuyGiftCard:
		return c.buyGiftCard(call)
	case MethodSetSecretKey:
		return c.setSecretKey(call)
	case MethodClaimGiftCard:
		return c.claimGiftCard(call)
	case MethodTransferGiftCard:
		return c.transferGiftCard(call)
	default:
		return nil, fmt.Errorf("%w: unknown method %q", domain.ErrValidation, call.Method)
	}
}

func (c *Contract) mintBackground(call Call) (*Outcome, error) {
	if _, ok := c.imageRefs[call.ImageRef]; ok {
		return nil, revert(RevertImageAlreadyMinted)
	}

	price := new(big.Int)
	if call.Price != nil {
		price.Set(call.Price)
	}

	id := uint64(len(c.backgrounds)) + 1
	c.backgrounds[id] = &background{
		id:       id,
		artist:   call.From,
		imageRef: call.ImageRef,
		category: call.Category,
		price:    price,
	}
	c.imageRefs[call.ImageRef] = id

	return &Outcome{Events: []domain.LedgerEvent{{
		Kind:     domain.EventKindBackgroundMinted,
		EntityID: id,
		To:       call.From,
		Amount:   price.String(),
		ImageRef: call.ImageRef,
		Category: call.Category,
	}}}, nil
}

func (c *Contract) createGiftCard(call Call) (*Outcome, error) {
	bg, ok := c.backgrounds[call.BackgroundID]
	if !ok {
		return nil, revert(RevertBackgroundNotFound)
	}

	id := uint64(len(c.giftCards)) + 1
	c.giftCards[id] = &giftCard{
		id:           id,
		creator:      call.From,
		owner:        call.From,
		price:        new(big.Int).Set(call.Price),
		message:      call.Message,
		backgroundID: bg.id,
	}
	bg.usageCount++

	message := call.Message
	return &Outcome{Events: []domain.LedgerEvent{{
		Kind:         domain.EventKindGiftCardCreated,
		EntityID:     id,
		To:           call.From,
		Amount:       call.Price.String(),
		BackgroundID: bg.id,
		Message:      &message,
	}}}, nil
}

func (c *Contract) buyGiftCard(call Call) (*Outcome, error) {
	card, ok := c.giftCards[call.GiftCardID]
	if !ok {
		return nil, revert(RevertGiftCardNotFound)
	}
	if call.Value.Cmp(card.price) != 0 {
		return nil, revert(RevertIncorrectPrice)
	}
	if types.SameAddress(call.From, card.owner) {
		return nil, revert(RevertOwnerCannotBuy)
	}

	seller := card.owner
	creatorShare, platformShare, sellerShare := c.split.Split(card.price)
	if c.platform == "" {
		sellerShare.Add(sellerShare, platformShare)
		platformShare = new(big.Int)
	}

	card.owner = call.From
	card.message = call.Message
	card.commitment = commitment.Zero

	payouts := []Payout{{To: card.creator, Amount: creatorShare, Role: PayoutRoleCreator}}
	if platformShare.Sign() > 0 {
		payouts = append(payouts, Payout{To: c.platform, Amount: platformShare, Role: PayoutRolePlatform})
	}
	if sellerShare.Sign() > 0 {
		payouts = append(payouts, Payout{To: seller, Amount: sellerShare, Role: PayoutRoleSeller})
	}

	message := call.Message
	return &Outcome{
		Events: []domain.LedgerEvent{{
			Kind:     domain.EventKindGiftCardPurchased,
			EntityID: card.id,
			From:     seller,
			To:       call.From,
			Amount:   card.price.String(),
			Message:  &message,
		}},
		Payouts: payouts,
	}, nil
}

func (c *Contract) setSecretKey(call Call) (*Outcome, error) {
	card, ok := c.giftCards[call.GiftCardID]
	if !ok {
		return nil, revert(RevertGiftCardNotFound)
	}
	if !types.SameAddress(call.From, card.owner) {
		return nil, revert(RevertOnlyOwnerSetSecret)
	}

	card.commitment = commitment.Commit(call.Secret)

	return &Outcome{Events: []domain.LedgerEvent{{
		Kind:       domain.EventKindSecretSet,
		EntityID:   card.id,
		To:         card.owner,
		Commitment: card.commitment.Hex(),
	}}}, nil
}

func (c *Contract) claimGiftCard(call Call) (*Outcome, error) {
	card, ok := c.giftCards[call.GiftCardID]
	if !ok {
		return nil, revert(RevertGiftCardNotFound)
	}
	if !card.claimable() {
		return nil, revert(RevertNotClaimable)
	}
	if !commitment.Verify(call.Secret, card.commitment) {
		return nil, revert(RevertInvalidSecret)
	}

	previous := card.owner
	card.owner = call.From
	card.commitment = commitment.Zero

	return &Outcome{Events: []domain.LedgerEvent{{
		Kind:     domain.EventKindGiftCardClaimed,
		EntityID: card.id,
		From:     previous,
		To:       call.From,
	}}}, nil
}

func (c *Contract) transferGiftCard(call Call) (*Outcome, error) {
	card, ok := c.giftCards[call.GiftCardID]
	if !ok {
		return nil, revert(RevertGiftCardNotFound)
	}
	if !types.SameAddress(call.From, card.owner) {
		return nil, revert(RevertOnlyOwnerTransfer)
	}
	if types.SameAddress(call.Recipient, card.owner) {
		return nil, revert(RevertTransferToSelf)
	}

	previous := card.owner
	card.owner = call.Recipient
	card.commitment = commitment.Zero

	return &Outcome{Events: []domain.LedgerEvent{{
		Kind:     domain.EventKindGiftCardTransferred,
		EntityID: card.id,
		From:     previous,
		To:       call.Recipient,
	}}}, nil
}

// Background returns the current state of a background.
// The snapshot block number is left for the caller to stamp.
func (c *Contract) Background(id uint64) (*domain.BackgroundSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bg, ok := c.backgrounds[id]
	if !ok {
		return nil, fmt.Errorf("%w: background %d", domain.ErrNotFound, id)
	}

	return &domain.BackgroundSnapshot{
		ID:         bg.id,
		Artist:     bg.artist,
		ImageRef:   bg.imageRef,
		Category:   bg.category,
		UsageCount: bg.usageCount,
		Price:      new(big.Int).Set(bg.price),
	}, nil
}

// GiftCard returns the current state of a gift card
func (c *Contract) GiftCard(id uint64) (*domain.GiftCardSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	card, ok := c.giftCards[id]
	if !ok {
		return nil, fmt.Errorf("%w: gift card %d", domain.ErrNotFound, id)
	}

	snapshot := &domain.GiftCardSnapshot{
		ID:           card.id,
		Creator:      card.creator,
		Owner:        card.owner,
		Price:        new(big.Int).Set(card.price),
		Message:      card.message,
		Claimable:    card.claimable(),
		BackgroundID: card.backgroundID,
	}
	if card.claimable() {
		snapshot.Commitment = card.commitment.Hex()
	}
	return snapshot, nil
}

// Totals returns the number of backgrounds and gift cards
func (c *Contract) Totals() domain.LedgerTotals {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return domain.LedgerTotals{
		Backgrounds: uint64(len(c.backgrounds)),
		GiftCards:   uint64(len(c.giftCards)),
	}
}

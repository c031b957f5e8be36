package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// ErrLedgerBehind is returned when a snapshot read is older than the event it should cover
var ErrLedgerBehind = errors.New("ledger snapshot older than event")

// Projector applies ledger changes to the mirror.
// Writes to one entity are serialized; every write is idempotent.
//
//go:generate mockgen -source=projector.go -destination=../mocks/projector.go -package=mocks -mock_names=Projector=MockProjector
type Projector interface {
	// Apply projects a confirmed ledger event. A partial event for a gift card the
	// mirror has never seen is healed from a ledger snapshot.
	Apply(ctx context.Context, event *domain.LedgerEvent) (*store.ApplyResult, error)

	// HealBackground rewrites a background from the current ledger state
	HealBackground(ctx context.Context, id uint64) (*store.ApplyResult, error)

	// HealGiftCard rewrites a gift card from the current ledger state.
	// audit, when set, is recorded in the transaction log.
	HealGiftCard(ctx context.Context, id uint64, audit *schema.Transaction) (*store.ApplyResult, error)
}

type projector struct {
	ledger ledger.Client
	store  store.Store
	locks  *KeyedMutex
	clock  adapter.Clock
}

// NewProjector creates a projector. locks must be shared by every projector writing to the same mirror.
func NewProjector(ledgerClient ledger.Client, st store.Store, locks *KeyedMutex, clock adapter.Clock) Projector {
	return &projector{
		ledger: ledgerClient,
		store:  st,
		locks:  locks,
		clock:  clock,
	}
}

// Apply projects a confirmed ledger event
func (p *projector) Apply(ctx context.Context, event *domain.LedgerEvent) (*store.ApplyResult, error) {
	if event == nil || !event.Valid() {
		return nil, fmt.Errorf("%w: malformed ledger event", domain.ErrValidation)
	}

	unlock := p.locks.Lock(entityKey(event.Kind.EntityType(), event.EntityID))
	defer unlock()

	projection, err := EventProjection(event)
	if err != nil {
		return nil, err
	}

	result, err := p.applyWithParent(ctx, projection)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, store.ErrRowMissing) {
		return nil, err
	}

	// The creation of this gift card has not reached the mirror yet
	logger.WarnCtx(ctx, "Gift card missing from mirror, healing from ledger",
		zap.Uint64("gift_card_id", event.EntityID),
		zap.String("event_kind", string(event.Kind)),
		zap.String("tx_hash", event.TxHash))

	snapshot, err := p.ledger.ReadGiftCard(ctx, event.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to read gift card %d: %w", event.EntityID, err)
	}
	if snapshot.BlockNumber < event.BlockNumber {
		return nil, fmt.Errorf("%w: snapshot block %d, event block %d", ErrLedgerBehind, snapshot.BlockNumber, event.BlockNumber)
	}

	healed := GiftCardSnapshotProjection(snapshot, p.clock.Now())
	healed.Transaction = projection.Transaction
	healed.Addresses = append(healed.Addresses, projection.Addresses...)
	healed.TxHash = event.TxHash

	return p.applyWithParent(ctx, healed)
}

// applyWithParent applies a projection. A gift card whose background has not reached
// the mirror yet gets the background healed from the ledger first, then one retry.
func (p *projector) applyWithParent(ctx context.Context, projection store.Projection) (*store.ApplyResult, error) {
	result, err := p.store.ApplyProjection(ctx, projection)
	if err == nil || !errors.Is(err, store.ErrParentMissing) {
		return result, err
	}
	if projection.GiftCard == nil || projection.GiftCard.Row == nil || !projection.GiftCard.Create {
		return nil, err
	}

	backgroundID := projection.GiftCard.Row.BackgroundID
	logger.WarnCtx(ctx, "Background missing from mirror, healing from ledger",
		zap.Uint64("background_id", backgroundID),
		zap.Uint64("gift_card_id", projection.GiftCard.Row.ID),
		zap.String("tx_hash", projection.TxHash))

	if _, healErr := p.HealBackground(ctx, backgroundID); healErr != nil {
		return nil, fmt.Errorf("%w: %v", err, healErr)
	}
	return p.store.ApplyProjection(ctx, projection)
}

// HealBackground rewrites a background from the current ledger state
func (p *projector) HealBackground(ctx context.Context, id uint64) (*store.ApplyResult, error) {
	unlock := p.locks.Lock(entityKey(domain.EntityTypeBackground, id))
	defer unlock()

	snapshot, err := p.ledger.ReadBackground(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read background %d: %w", id, err)
	}

	return p.store.ApplyProjection(ctx, BackgroundSnapshotProjection(snapshot, p.clock.Now()))
}

// HealGiftCard rewrites a gift card from the current ledger state
func (p *projector) HealGiftCard(ctx context.Context, id uint64, audit *schema.Transaction) (*store.ApplyResult, error) {
	unlock := p.locks.Lock(entityKey(domain.EntityTypeGiftCard, id))
	defer unlock()

	snapshot, err := p.ledger.ReadGiftCard(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read gift card %d: %w", id, err)
	}

	projection := GiftCardSnapshotProjection(snapshot, p.clock.Now())
	if audit == nil {
		// the creation row is deterministic even without its transaction
		audit = &schema.Transaction{
			LedgerRef:   LedgerRef(schema.TransactionTypeCreate, id, ""),
			GiftCardID:  id,
			FromAddress: domain.ETHEREUM_ZERO_ADDRESS,
			ToAddress:   types.NormalizeAddress(snapshot.Creator),
			Type:        schema.TransactionTypeCreate,
			Amount:      schema.NewWei(snapshot.Price),
			BlockNumber: snapshot.BlockNumber,
			LogIndex:    domain.SnapshotLogIndex,
			Timestamp:   p.clock.Now(),
		}
	}
	projection.Transaction = audit
	projection.TxHash = audit.TxHash
	projection.Addresses = append(projection.Addresses, audit.FromAddress, audit.ToAddress)

	return p.applyWithParent(ctx, projection)
}

// LedgerRef returns the deduplication key of an audit row.
// A gift card is created once, so its creation row does not depend on the transaction.
func LedgerRef(txType schema.TransactionType, giftCardID uint64, txHash string) string {
	if txType == schema.TransactionTypeCreate {
		return fmt.Sprintf("create:%d", giftCardID)
	}
	return fmt.Sprintf("%s:%d:%s", txType, giftCardID, txHash)
}

// EventProjection maps a ledger event to the mirror change it causes
func EventProjection(event *domain.LedgerEvent) (store.Projection, error) {
	to := types.NormalizeAddress(event.To)
	from := ""
	if event.From != "" {
		from = types.NormalizeAddress(event.From)
	}
	amount := schema.NewWei(event.AmountInt())

	p := store.Projection{
		Position:  event.Position(),
		EventKind: event.Kind,
		TxHash:    event.TxHash,
		ChangedAt: event.Timestamp,
	}

	switch event.Kind {
	case domain.EventKindBackgroundMinted:
		p.Background = &schema.Background{
			ID:            event.EntityID,
			ArtistAddress: to,
			ImageRef:      event.ImageRef,
			Category:      event.Category,
			Price:         amount,
		}
		p.Addresses = []string{to}
		return p, nil

	case domain.EventKindGiftCardCreated:
		p.GiftCard = &store.GiftCardChange{
			Row: &schema.GiftCard{
				ID:             event.EntityID,
				CreatorAddress: to,
				CurrentOwner:   to,
				Price:          amount,
				Message:        types.SafeString(event.Message),
				BackgroundID:   event.BackgroundID,
			},
			Create: true,
		}
		p.Addresses = []string{to}

	case domain.EventKindGiftCardPurchased:
		columns := []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable}
		if event.Message != nil {
			columns = append(columns, store.ColumnMessage)
		}
		p.GiftCard = &store.GiftCardChange{
			Row: &schema.GiftCard{
				ID:           event.EntityID,
				CurrentOwner: to,
				Message:      types.SafeString(event.Message),
			},
			Columns: columns,
		}
		p.Addresses = []string{from, to}

	case domain.EventKindSecretSet:
		commitment := event.Commitment
		p.GiftCard = &store.GiftCardChange{
			Row: &schema.GiftCard{
				ID:               event.EntityID,
				CurrentOwner:     to,
				SecretCommitment: &commitment,
				IsClaimable:      true,
			},
			Columns: []string{store.ColumnSecretCommitment, store.ColumnIsClaimable, store.ColumnCurrentOwner},
		}
		return p, nil

	case domain.EventKindGiftCardClaimed, domain.EventKindGiftCardTransferred:
		p.GiftCard = &store.GiftCardChange{
			Row: &schema.GiftCard{
				ID:           event.EntityID,
				CurrentOwner: to,
			},
			Columns: []string{store.ColumnCurrentOwner, store.ColumnSecretCommitment, store.ColumnIsClaimable},
		}
		p.Addresses = []string{from, to}

	default:
		return p, fmt.Errorf("%w: unknown event kind %q", domain.ErrValidation, event.Kind)
	}

	txType, _ := types.EventKindToTransactionType(event.Kind)
	fromAddress := from
	if txType == schema.TransactionTypeCreate {
		fromAddress = domain.ETHEREUM_ZERO_ADDRESS
	}
	p.Transaction = &schema.Transaction{
		LedgerRef:   LedgerRef(txType, event.EntityID, event.TxHash),
		GiftCardID:  event.EntityID,
		FromAddress: fromAddress,
		ToAddress:   to,
		Type:        txType,
		Amount:      amount,
		TxHash:      event.TxHash,
		BlockNumber: event.BlockNumber,
		LogIndex:    event.LogIndex,
		Timestamp:   event.Timestamp,
	}

	return p, nil
}

// BackgroundSnapshotProjection maps a ledger read of a background to a full-row mirror change
func BackgroundSnapshotProjection(s *domain.BackgroundSnapshot, now time.Time) store.Projection {
	artist := types.NormalizeAddress(s.Artist)
	return store.Projection{
		Position:  domain.SnapshotPosition(s.BlockNumber),
		ChangedAt: now,
		Background: &schema.Background{
			ID:            s.ID,
			ArtistAddress: artist,
			ImageRef:      s.ImageRef,
			Category:      s.Category,
			UsageCount:    s.UsageCount,
			Price:         schema.NewWei(s.Price),
		},
		Addresses: []string{artist},
	}
}

// GiftCardSnapshotProjection maps a ledger read of a gift card to a full-row mirror change
func GiftCardSnapshotProjection(s *domain.GiftCardSnapshot, now time.Time) store.Projection {
	creator := types.NormalizeAddress(s.Creator)
	owner := types.NormalizeAddress(s.Owner)

	row := &schema.GiftCard{
		ID:             s.ID,
		CreatorAddress: creator,
		CurrentOwner:   owner,
		Price:          schema.NewWei(s.Price),
		Message:        s.Message,
		IsClaimable:    s.Claimable,
		BackgroundID:   s.BackgroundID,
	}
	if s.Commitment != "" {
		commitment := s.Commitment
		row.SecretCommitment = &commitment
	}

	return store.Projection{
		Position:  domain.SnapshotPosition(s.BlockNumber),
		ChangedAt: now,
		GiftCard: &store.GiftCardChange{
			Row:    row,
			Create: true,
		},
		Addresses: []string{creator, owner},
	}
}

package reconciler

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/evrlink/evrlink-mirror/internal/adapter"
	"github.com/evrlink/evrlink-mirror/internal/commitment"
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// DefaultConfirmationTimeout bounds the wait for a ledger confirmation
const DefaultConfirmationTimeout = 2 * time.Minute

// Config holds the configuration of the reconciliation service
type Config struct {
	// ConfirmationTimeout bounds WaitForConfirmation; on timeout the operation status is unknown
	ConfirmationTimeout time.Duration `mapstructure:"confirmation_timeout"`
}

// Status is the outcome reported for a successful operation
type Status string

const (
	// StatusConfirmed means the ledger confirmed the transaction and the mirror reflects it
	StatusConfirmed Status = "confirmed"
	// StatusProcessing means the ledger confirmed the transaction and the mirror write is pending
	StatusProcessing Status = "processing"
)

// Result is returned by every mutating operation that reached the ledger
type Result struct {
	Status      Status            `json:"status"`
	EntityType  domain.EntityType `json:"entity_type"`
	EntityID    uint64            `json:"entity_id"`
	TxHash      string            `json:"tx_hash"`
	BlockNumber uint64            `json:"block_number"`
}

// MintBackgroundInput is the input of MintBackground
type MintBackgroundInput struct {
	Caller   string
	ImageRef string
	Category string
	Price    *big.Int
}

// CreateGiftCardInput is the input of CreateGiftCard
type CreateGiftCardInput struct {
	Caller       string
	BackgroundID uint64
	Price        *big.Int
	Message      string
}

// BuyGiftCardInput is the input of BuyGiftCard
type BuyGiftCardInput struct {
	Caller     string
	GiftCardID uint64
	Message    string
	Value      *big.Int
}

// SecretInput is the input of SetSecretKey and ClaimGiftCard
type SecretInput struct {
	Caller     string
	GiftCardID uint64
	Secret     string
}

// TransferGiftCardInput is the input of TransferGiftCard
type TransferGiftCardInput struct {
	Caller     string
	GiftCardID uint64
	Recipient  string
}

// Service orchestrates the marketplace use cases: submit to the ledger, wait for
// confirmation, extract the emitted event and project it into the mirror.
//
//go:generate mockgen -source=service.go -destination=../mocks/reconciler.go -package=mocks -mock_names=Service=MockReconciler
type Service interface {
	MintBackground(ctx context.Context, input MintBackgroundInput) (*Result, error)
	CreateGiftCard(ctx context.Context, input CreateGiftCardInput) (*Result, error)
	BuyGiftCard(ctx context.Context, input BuyGiftCardInput) (*Result, error)
	SetSecretKey(ctx context.Context, input SecretInput) (*Result, error)
	ClaimGiftCard(ctx context.Context, input SecretInput) (*Result, error)
	TransferGiftCard(ctx context.Context, input TransferGiftCardInput) (*Result, error)

	// ResolveOperation drives an unresolved pending operation towards applied or failed
	// without resubmitting anything to the ledger
	ResolveOperation(ctx context.Context, txHash string) (*schema.PendingOperation, error)

	// CatchUp heals every ledger entity missing from the mirror
	CatchUp(ctx context.Context) (*CatchUpResult, error)
}

// operationRequest is the persisted form of a submitted call. The secret is never stored.
type operationRequest struct {
	Method        ledger.Method `json:"method"`
	BackgroundID  uint64        `json:"background_id,omitempty"`
	GiftCardID    uint64        `json:"gift_card_id,omitempty"`
	ImageRef      string        `json:"image_ref,omitempty"`
	Category      string        `json:"category,omitempty"`
	Price         string        `json:"price,omitempty"`
	Value         string        `json:"value,omitempty"`
	Message       string        `json:"message,omitempty"`
	Recipient     string        `json:"recipient,omitempty"`
	PreviousOwner string        `json:"previous_owner,omitempty"`
}

type service struct {
	cfg       Config
	ledger    ledger.Client
	store     store.Store
	projector Projector
	clock     adapter.Clock
	json      adapter.JSON
	metrics   *metrics.Metrics
}

// NewService creates the reconciliation service
func NewService(
	cfg Config,
	ledgerClient ledger.Client,
	st store.Store,
	projector Projector,
	clock adapter.Clock,
	json adapter.JSON,
	m *metrics.Metrics,
) Service {
	if cfg.ConfirmationTimeout <= 0 {
		cfg.ConfirmationTimeout = DefaultConfirmationTimeout
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &service{
		cfg:       cfg,
		ledger:    ledgerClient,
		store:     st,
		projector: projector,
		clock:     clock,
		json:      json,
		metrics:   m,
	}
}

// MintBackground mints a background owned by the caller
func (s *service) MintBackground(ctx context.Context, input MintBackgroundInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:   ledger.MethodMintBackground,
		From:     input.Caller,
		ImageRef: input.ImageRef,
		Category: input.Category,
		Price:    input.Price,
	})
}

// CreateGiftCard creates a gift card on a background
func (s *service) CreateGiftCard(ctx context.Context, input CreateGiftCardInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:       ledger.MethodCreateGiftCard,
		From:         input.Caller,
		BackgroundID: input.BackgroundID,
		Price:        input.Price,
		Message:      input.Message,
	})
}

// BuyGiftCard buys a gift card at its price
func (s *service) BuyGiftCard(ctx context.Context, input BuyGiftCardInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:     ledger.MethodBuyGiftCard,
		From:       input.Caller,
		GiftCardID: input.GiftCardID,
		Message:    input.Message,
		Value:      input.Value,
	})
}

// SetSecretKey locks a gift card behind a claim secret
func (s *service) SetSecretKey(ctx context.Context, input SecretInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:     ledger.MethodSetSecretKey,
		From:       input.Caller,
		GiftCardID: input.GiftCardID,
		Secret:     input.Secret,
	})
}

// ClaimGiftCard claims a gift card with its secret
func (s *service) ClaimGiftCard(ctx context.Context, input SecretInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:     ledger.MethodClaimGiftCard,
		From:       input.Caller,
		GiftCardID: input.GiftCardID,
		Secret:     input.Secret,
	})
}

// TransferGiftCard gives a gift card to a recipient
func (s *service) TransferGiftCard(ctx context.Context, input TransferGiftCardInput) (*Result, error) {
	return s.execute(ctx, ledger.Call{
		Method:     ledger.MethodTransferGiftCard,
		From:       input.Caller,
		GiftCardID: input.GiftCardID,
		Recipient:  input.Recipient,
	})
}

func (s *service) execute(ctx context.Context, call ledger.Call) (*Result, error) {
	operation := string(call.Method)

	if err := call.Validate(); err != nil {
		s.metrics.ObserveOperation(operation, metrics.OutcomeRejected)
		return nil, err
	}
	call.From = types.NormalizeAddress(call.From)
	if call.Recipient != "" {
		call.Recipient = types.NormalizeAddress(call.Recipient)
	}

	previousOwner, err := s.preflight(ctx, call)
	if err != nil {
		s.metrics.ObserveOperation(operation, metrics.OutcomeRejected)
		return nil, err
	}

	// Cancellation can only prevent submission
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := s.ledger.Submit(ctx, call)
	if err != nil {
		s.metrics.ObserveOperation(operation, metrics.OutcomeRejected)
		logger.WarnCtx(ctx, "Ledger rejected call",
			zap.Stringer("call", call),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err))
		return nil, err
	}

	// A broadcast transaction cannot be retracted; bookkeeping must outlive the caller
	bg := context.WithoutCancel(ctx)
	log := logger.FromContext(ctx).With(
		zap.String("operation", operation),
		zap.String("tx_hash", tx.Hash))

	s.recordSubmission(bg, call, tx, previousOwner)

	receipt, err := s.ledger.WaitForConfirmation(ctx, tx, s.cfg.ConfirmationTimeout)
	if err != nil {
		s.metrics.ObserveOperation(operation, metrics.OutcomeUnknown)
		s.mark(bg, tx.Hash, store.UpdatePendingOperationInput{
			Status:    schema.OperationStatusUnknown,
			LastError: types.StringPtr(err.Error()),
		})
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Ledger confirmation not observed, status unknown"),
			zap.String("operation", operation),
			zap.String("tx_hash", tx.Hash))
		if !errors.Is(err, domain.ErrLedgerTimeout) {
			err = fmt.Errorf("%w: %v", domain.ErrLedgerTimeout, err)
		}
		return nil, domain.NewTxError(tx.Hash, err)
	}
	s.metrics.ObserveConfirmation(operation, s.clock.Since(tx.SubmittedAt))

	if !receipt.Succeeded() {
		revertErr := ledger.MapRevert(receipt.RevertReason)
		s.metrics.ObserveOperation(operation, metrics.OutcomeFailed)
		now := s.clock.Now()
		s.mark(bg, tx.Hash, store.UpdatePendingOperationInput{
			Status:      schema.OperationStatusFailed,
			BlockNumber: &receipt.BlockNumber,
			LastError:   types.StringPtr(revertErr.Error()),
			ResolvedAt:  &now,
		})
		log.Warn("Ledger transaction reverted", zap.String("reason", receipt.RevertReason))
		return nil, domain.NewTxError(tx.Hash, revertErr)
	}

	event, err := expectedEvent(receipt, call.Method)
	if err != nil {
		s.metrics.ObserveOperation(operation, metrics.OutcomeEventNotFound)
		s.metrics.EventNotFound(operation)
		s.mark(bg, tx.Hash, store.UpdatePendingOperationInput{
			Status:      schema.OperationStatusEventMissing,
			BlockNumber: &receipt.BlockNumber,
			LastError:   types.StringPtr(err.Error()),
		})
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Confirmed transaction did not emit the expected event"),
			zap.String("operation", operation),
			zap.String("tx_hash", tx.Hash),
			zap.Uint64("block_number", receipt.BlockNumber))
		return nil, domain.NewTxError(tx.Hash, err)
	}

	result := &Result{
		Status:      StatusConfirmed,
		EntityType:  event.Kind.EntityType(),
		EntityID:    event.EntityID,
		TxHash:      tx.Hash,
		BlockNumber: receipt.BlockNumber,
	}

	if _, err := s.projector.Apply(bg, event); err != nil {
		s.metrics.ObserveProjection("reconciler", metrics.ProjectionError)
		s.metrics.ObserveOperation(operation, metrics.OutcomeProcessing)

		update := store.UpdatePendingOperationInput{
			Status:            schema.OperationStatusMirrorPending,
			EntityID:          &event.EntityID,
			BlockNumber:       &receipt.BlockNumber,
			LastError:         types.StringPtr(err.Error()),
			IncrementAttempts: true,
		}
		if payload, mErr := s.json.Marshal(event); mErr == nil {
			update.Event = datatypes.JSON(payload)
		}
		s.mark(bg, tx.Hash, update)

		log.Warn("Mirror write failed, left for the reconciliation sweep", zap.Error(err))
		result.Status = StatusProcessing
		return result, nil
	}
	s.metrics.ObserveProjection("reconciler", metrics.ProjectionApplied)

	now := s.clock.Now()
	s.mark(bg, tx.Hash, store.UpdatePendingOperationInput{
		Status:      schema.OperationStatusApplied,
		EntityID:    &event.EntityID,
		BlockNumber: &receipt.BlockNumber,
		ResolvedAt:  &now,
	})
	s.metrics.ObserveOperation(operation, metrics.OutcomeConfirmed)

	log.Info("Operation confirmed", zap.Uint64("entity_id", event.EntityID), zap.Uint64("block_number", receipt.BlockNumber))
	return result, nil
}

// preflight rejects calls the ledger would revert, before any gas is spent.
// It returns the gift card owner before the call, when the call targets a gift card.
func (s *service) preflight(ctx context.Context, call ledger.Call) (string, error) {
	switch call.Method {
	case ledger.MethodMintBackground:
		existing, err := s.store.GetBackgroundByImageRef(ctx, call.ImageRef)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return "", fmt.Errorf("%w: image already minted as background %d", domain.ErrValidation, existing.ID)
		}
		return "", nil

	case ledger.MethodCreateGiftCard:
		if _, err := s.ledger.ReadBackground(ctx, call.BackgroundID); err != nil {
			return "", err
		}
		return "", nil
	}

	card, err := s.ledger.ReadGiftCard(ctx, call.GiftCardID)
	if err != nil {
		return "", err
	}
	owner := types.NormalizeAddress(card.Owner)

	switch call.Method {
	case ledger.MethodBuyGiftCard:
		// same order as the contract: price first, then ownership
		if call.Value.Cmp(card.Price) != 0 {
			return "", fmt.Errorf("%w: paid %s, price is %s", domain.ErrIncorrectPrice,
				types.FormatEther(call.Value), types.FormatEther(card.Price))
		}
		if types.SameAddress(owner, call.From) {
			return "", fmt.Errorf("%w: caller already owns gift card %d", domain.ErrUnauthorized, call.GiftCardID)
		}
	case ledger.MethodSetSecretKey:
		if !types.SameAddress(owner, call.From) {
			return "", fmt.Errorf("%w: only the owner can set the secret", domain.ErrUnauthorized)
		}
	case ledger.MethodClaimGiftCard:
		if !card.Claimable || !commitment.VerifyHex(call.Secret, card.Commitment) {
			return "", fmt.Errorf("%w: gift card %d", domain.ErrInvalidSecret, call.GiftCardID)
		}
	case ledger.MethodTransferGiftCard:
		if !types.SameAddress(owner, call.From) {
			return "", fmt.Errorf("%w: only the owner can transfer", domain.ErrUnauthorized)
		}
		if types.SameAddress(owner, call.Recipient) {
			return "", fmt.Errorf("%w: recipient already owns gift card %d", domain.ErrValidation, call.GiftCardID)
		}
	}

	return owner, nil
}

func (s *service) recordSubmission(ctx context.Context, call ledger.Call, tx ledger.TxHandle, previousOwner string) {
	req := operationRequest{
		Method:        call.Method,
		BackgroundID:  call.BackgroundID,
		GiftCardID:    call.GiftCardID,
		ImageRef:      call.ImageRef,
		Category:      call.Category,
		Message:       call.Message,
		Recipient:     call.Recipient,
		PreviousOwner: previousOwner,
	}
	if call.Price != nil {
		req.Price = call.Price.String()
	}
	if call.Value != nil {
		req.Value = call.Value.String()
	}

	payload, err := s.json.Marshal(req)
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to encode pending operation request"), zap.String("tx_hash", tx.Hash))
	}

	var entityID *uint64
	if id := call.EntityID(); id != 0 {
		entityID = &id
	}

	if _, err := s.store.CreatePendingOperation(ctx, store.CreatePendingOperationInput{
		TxHash:      tx.Hash,
		Operation:   string(call.Method),
		EntityType:  call.EntityType(),
		EntityID:    entityID,
		Caller:      call.From,
		Request:     datatypes.JSON(payload),
		SubmittedAt: tx.SubmittedAt,
	}); err != nil {
		// the event bus still projects the transaction; only the sweep loses track of it
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to record pending operation"),
			zap.String("tx_hash", tx.Hash))
	}
}

func (s *service) mark(ctx context.Context, txHash string, input store.UpdatePendingOperationInput) {
	err := s.store.UpdatePendingOperation(ctx, txHash, input)
	if errors.Is(err, store.ErrOperationResolved) {
		logger.DebugCtx(ctx, "Pending operation already resolved, update skipped",
			zap.String("tx_hash", txHash),
			zap.String("status", string(input.Status)))
		return
	}
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to update pending operation"),
			zap.String("tx_hash", txHash),
			zap.String("status", string(input.Status)))
	}
}

// expectedEvent returns the single event of the kind method emits
func expectedEvent(receipt *domain.Receipt, method ledger.Method) (*domain.LedgerEvent, error) {
	kind := method.ExpectedEvent()
	events := receipt.EventsOfKind(kind)
	if len(events) != 1 {
		return nil, fmt.Errorf("%w: expected one %s event, found %d", domain.ErrEventNotFound, kind, len(events))
	}
	return &events[0], nil
}

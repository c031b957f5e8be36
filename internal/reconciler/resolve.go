package reconciler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/ledger"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/metrics"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

const catchUpBatchSize = 500

// CatchUpResult summarizes a catch-up pass
type CatchUpResult struct {
	Backgrounds int `json:"backgrounds"`
	GiftCards   int `json:"gift_cards"`
	Failed      int `json:"failed"`
}

// ResolveOperation drives an unresolved pending operation towards applied or failed.
// Nothing is ever resubmitted to the ledger.
func (s *service) ResolveOperation(ctx context.Context, txHash string) (*schema.PendingOperation, error) {
	op, err := s.store.GetPendingOperationByTxHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, fmt.Errorf("%w: pending operation %s", domain.ErrNotFound, txHash)
	}
	if op.Status.Resolved() {
		return op, nil
	}

	log := logger.FromContext(ctx).With(
		zap.String("tx_hash", op.TxHash),
		zap.String("operation", op.Operation),
		zap.String("status", string(op.Status)))

	var resolveErr error
	switch op.Status {
	case schema.OperationStatusSubmitted, schema.OperationStatusUnknown:
		resolveErr = s.resolveUnconfirmed(ctx, op)
	case schema.OperationStatusEventMissing:
		resolveErr = s.resolveEventMissing(ctx, op)
	case schema.OperationStatusMirrorPending:
		resolveErr = s.resolveMirrorPending(ctx, op)
	default:
		resolveErr = fmt.Errorf("%w: unexpected operation status %q", domain.ErrValidation, op.Status)
	}

	if resolveErr != nil {
		log.Warn("Pending operation still unresolved", zap.Error(resolveErr))
		// keep whatever status the attempt recorded
		s.mark(ctx, op.TxHash, store.UpdatePendingOperationInput{
			LastError:         types.StringPtr(resolveErr.Error()),
			IncrementAttempts: true,
		})
	}

	updated, err := s.store.GetPendingOperationByTxHash(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if updated != nil && updated.Status.Resolved() {
		log.Info("Pending operation resolved", zap.String("resolution", string(updated.Status)))
	}
	return updated, resolveErr
}

// resolveUnconfirmed polls the receipt of a transaction whose confirmation was never observed
func (s *service) resolveUnconfirmed(ctx context.Context, op *schema.PendingOperation) error {
	receipt, err := s.ledger.TransactionReceipt(ctx, op.TxHash)
	if err != nil {
		return err
	}
	if receipt == nil {
		return fmt.Errorf("%w: transaction %s not mined yet", domain.ErrLedgerTimeout, op.TxHash)
	}

	if !receipt.Succeeded() {
		now := s.clock.Now()
		revertErr := ledger.MapRevert(receipt.RevertReason)
		s.mark(ctx, op.TxHash, store.UpdatePendingOperationInput{
			Status:      schema.OperationStatusFailed,
			BlockNumber: &receipt.BlockNumber,
			LastError:   types.StringPtr(revertErr.Error()),
			ResolvedAt:  &now,
		})
		return nil
	}

	event, err := expectedEvent(receipt, ledger.Method(op.Operation))
	if err != nil {
		s.metrics.EventNotFound(op.Operation)
		s.mark(ctx, op.TxHash, store.UpdatePendingOperationInput{
			Status:      schema.OperationStatusEventMissing,
			BlockNumber: &receipt.BlockNumber,
			LastError:   types.StringPtr(err.Error()),
		})
		op.Status = schema.OperationStatusEventMissing
		op.BlockNumber = &receipt.BlockNumber
		return s.resolveEventMissing(ctx, op)
	}

	return s.applyEvent(ctx, op, event)
}

// resolveMirrorPending re-applies the event stored when the mirror write failed
func (s *service) resolveMirrorPending(ctx context.Context, op *schema.PendingOperation) error {
	if len(op.Event) == 0 {
		// nothing stored, fall back to the receipt
		return s.resolveUnconfirmed(ctx, op)
	}

	var event domain.LedgerEvent
	if err := s.json.Unmarshal(op.Event, &event); err != nil {
		return fmt.Errorf("failed to decode stored event: %w", err)
	}
	return s.applyEvent(ctx, op, &event)
}

func (s *service) applyEvent(ctx context.Context, op *schema.PendingOperation, event *domain.LedgerEvent) error {
	if _, err := s.projector.Apply(ctx, event); err != nil {
		s.metrics.ObserveProjection("sweeper", metrics.ProjectionError)
		update := store.UpdatePendingOperationInput{
			Status:            schema.OperationStatusMirrorPending,
			EntityID:          &event.EntityID,
			BlockNumber:       &event.BlockNumber,
			LastError:         types.StringPtr(err.Error()),
			IncrementAttempts: true,
		}
		if payload, mErr := s.json.Marshal(event); mErr == nil {
			update.Event = datatypes.JSON(payload)
		}
		s.mark(ctx, op.TxHash, update)
		// already recorded
		return nil
	}
	s.metrics.ObserveProjection("sweeper", metrics.ProjectionApplied)

	now := s.clock.Now()
	s.mark(ctx, op.TxHash, store.UpdatePendingOperationInput{
		Status:      schema.OperationStatusApplied,
		EntityID:    &event.EntityID,
		BlockNumber: &event.BlockNumber,
		ResolvedAt:  &now,
	})
	return nil
}

// resolveEventMissing heals the entity touched by a confirmed transaction whose event was never observed
func (s *service) resolveEventMissing(ctx context.Context, op *schema.PendingOperation) error {
	var req operationRequest
	if len(op.Request) > 0 {
		if err := s.json.Unmarshal(op.Request, &req); err != nil {
			return fmt.Errorf("failed to decode operation request: %w", err)
		}
	}

	entityID := uint64(0)
	if op.EntityID != nil {
		entityID = *op.EntityID
	}

	var err error
	switch {
	case entityID == 0:
		// mints and creations do not know their ID before the event
		var result *CatchUpResult
		result, err = s.CatchUp(ctx)
		if err == nil && result.Failed > 0 {
			err = fmt.Errorf("catch-up left %d entities unhealed", result.Failed)
		}
	case op.EntityType == domain.EntityTypeBackground:
		_, err = s.projector.HealBackground(ctx, entityID)
		s.healed(domain.EntityTypeBackground, err)
	default:
		_, err = s.projector.HealGiftCard(ctx, entityID, s.auditFromRequest(op, req, entityID))
		s.healed(domain.EntityTypeGiftCard, err)
	}
	if err != nil {
		return err
	}

	now := s.clock.Now()
	s.mark(ctx, op.TxHash, store.UpdatePendingOperationInput{
		Status:     schema.OperationStatusApplied,
		ResolvedAt: &now,
	})
	return nil
}

func (s *service) healed(entity domain.EntityType, err error) {
	if err == nil {
		s.metrics.Healed(string(entity), "event_missing")
	}
}

// auditFromRequest rebuilds the transaction log row of a gift card operation from its marker.
// Secret changes record no transaction.
func (s *service) auditFromRequest(op *schema.PendingOperation, req operationRequest, giftCardID uint64) *schema.Transaction {
	txType, ok := types.EventKindToTransactionType(ledger.Method(op.Operation).ExpectedEvent())
	if !ok || txType == schema.TransactionTypeCreate {
		return nil
	}

	from, to := req.PreviousOwner, op.Caller
	if txType == schema.TransactionTypeTransfer {
		from, to = op.Caller, req.Recipient
	}
	if from == "" || to == "" {
		return nil
	}

	amount := schema.NewWei(nil)
	if txType == schema.TransactionTypePurchase && req.Value != "" {
		if v, err := types.ParseWei(req.Value); err == nil {
			amount = schema.NewWei(v)
		}
	}

	blockNumber := uint64(0)
	if op.BlockNumber != nil {
		blockNumber = *op.BlockNumber
	}

	return &schema.Transaction{
		LedgerRef:   LedgerRef(txType, giftCardID, op.TxHash),
		GiftCardID:  giftCardID,
		FromAddress: types.NormalizeAddress(from),
		ToAddress:   types.NormalizeAddress(to),
		Type:        txType,
		Amount:      amount,
		TxHash:      op.TxHash,
		BlockNumber: blockNumber,
		LogIndex:    domain.SnapshotLogIndex,
		Timestamp:   s.clock.Now(),
	}
}

// CatchUp heals every ledger entity missing from the mirror, backgrounds first
func (s *service) CatchUp(ctx context.Context) (*CatchUpResult, error) {
	totals, err := s.ledger.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger totals: %w", err)
	}

	result := &CatchUpResult{}

	healedBackgrounds, failed, err := s.catchUpEntities(ctx, totals.Backgrounds,
		s.store.GetMissingBackgroundIDs,
		func(ctx context.Context, id uint64) error {
			_, err := s.projector.HealBackground(ctx, id)
			return err
		},
		domain.EntityTypeBackground)
	result.Backgrounds = healedBackgrounds
	result.Failed += failed
	if err != nil {
		return result, err
	}

	healedGiftCards, failed, err := s.catchUpEntities(ctx, totals.GiftCards,
		s.store.GetMissingGiftCardIDs,
		func(ctx context.Context, id uint64) error {
			_, err := s.projector.HealGiftCard(ctx, id, nil)
			return err
		},
		domain.EntityTypeGiftCard)
	result.GiftCards = healedGiftCards
	result.Failed += failed
	if err != nil {
		return result, err
	}

	if result.Backgrounds > 0 || result.GiftCards > 0 || result.Failed > 0 {
		logger.InfoCtx(ctx, "Mirror catch-up finished",
			zap.Int("backgrounds", result.Backgrounds),
			zap.Int("gift_cards", result.GiftCards),
			zap.Int("failed", result.Failed),
			zap.Uint64("ledger_block", totals.BlockNumber))
	}
	return result, nil
}

func (s *service) catchUpEntities(
	ctx context.Context,
	upTo uint64,
	missing func(ctx context.Context, upTo uint64, limit int) ([]uint64, error),
	heal func(ctx context.Context, id uint64) error,
	entity domain.EntityType,
) (int, int, error) {
	healed, failed := 0, 0
	for {
		ids, err := missing(ctx, upTo, catchUpBatchSize)
		if err != nil {
			return healed, failed, err
		}

		batchFailed := 0
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return healed, failed, err
			}
			if err := heal(ctx, id); err != nil {
				batchFailed++
				if errors.Is(err, domain.ErrNotFound) {
					logger.WarnCtx(ctx, "Entity vanished from ledger during catch-up",
						zap.String("entity", string(entity)), zap.Uint64("id", id))
					continue
				}
				logger.ErrorCtx(ctx, err,
					zap.String("message", "Failed to heal entity"),
					zap.String("entity", string(entity)),
					zap.Uint64("id", id))
				continue
			}
			healed++
			s.metrics.Healed(string(entity), "catch_up")
		}
		failed += batchFailed

		// a failed ID would come back in the next batch forever
		if len(ids) < catchUpBatchSize || batchFailed > 0 {
			return healed, failed, nil
		}
	}
}

package types

import (
	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

// EventKindToTransactionType converts a ledger event kind to the audit transaction type.
// Background mints and secret changes record no transaction.
func EventKindToTransactionType(kind domain.EventKind) (schema.TransactionType, bool) {
	switch kind {
	case domain.EventKindGiftCardCreated:
		return schema.TransactionTypeCreate, true
	case domain.EventKindGiftCardPurchased:
		return schema.TransactionTypePurchase, true
	case domain.EventKindGiftCardTransferred:
		return schema.TransactionTypeTransfer, true
	case domain.EventKindGiftCardClaimed:
		return schema.TransactionTypeClaim, true
	default:
		return "", false
	}
}

// SubjectChangeType converts an entity write to the change type published in the journal
func SubjectChangeType(subject schema.SubjectType, added bool) schema.ChangeType {
	switch subject {
	case schema.SubjectTypeBackground:
		if added {
			return schema.ChangeTypeBackgroundAdded
		}
		return schema.ChangeTypeBackgroundUpdated
	case schema.SubjectTypeGiftCard:
		if added {
			return schema.ChangeTypeGiftCardAdded
		}
		return schema.ChangeTypeGiftCardUpdated
	default:
		return schema.ChangeTypeUserUpdated
	}
}

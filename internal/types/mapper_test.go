package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

func TestEventKindToTransactionType(t *testing.T) {
	tests := []struct {
		kind     domain.EventKind
		expected schema.TransactionType
		ok       bool
	}{
		{domain.EventKindGiftCardCreated, schema.TransactionTypeCreate, true},
		{domain.EventKindGiftCardPurchased, schema.TransactionTypePurchase, true},
		{domain.EventKindGiftCardTransferred, schema.TransactionTypeTransfer, true},
		{domain.EventKindGiftCardClaimed, schema.TransactionTypeClaim, true},
		{domain.EventKindSecretSet, "", false},
		{domain.EventKindBackgroundMinted, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			txType, ok := EventKindToTransactionType(tt.kind)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, txType)
		})
	}
}

func TestSubjectChangeType(t *testing.T) {
	assert.Equal(t, schema.ChangeTypeBackgroundAdded, SubjectChangeType(schema.SubjectTypeBackground, true))
	assert.Equal(t, schema.ChangeTypeBackgroundUpdated, SubjectChangeType(schema.SubjectTypeBackground, false))
	assert.Equal(t, schema.ChangeTypeGiftCardAdded, SubjectChangeType(schema.SubjectTypeGiftCard, true))
	assert.Equal(t, schema.ChangeTypeGiftCardUpdated, SubjectChangeType(schema.SubjectTypeGiftCard, false))
	assert.Equal(t, schema.ChangeTypeUserUpdated, SubjectChangeType(schema.SubjectTypeUser, true))
}

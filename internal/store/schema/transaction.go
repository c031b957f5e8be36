package schema

import "time"

// TransactionType represents the kind of gift card movement recorded in the audit trail
type TransactionType string

const (
	TransactionTypeCreate   TransactionType = "CREATE"
	TransactionTypePurchase TransactionType = "PURCHASE"
	TransactionTypeTransfer TransactionType = "TRANSFER"
	TransactionTypeClaim    TransactionType = "CLAIM"
)

// Transaction represents the transactions table - append-only audit trail of gift card movements.
// Rows are never mutated; LedgerRef makes replays insert nothing.
type Transaction struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// LedgerRef is the deterministic key of the ledger change that produced the row
	LedgerRef   string          `gorm:"column:ledger_ref;not null;type:text;uniqueIndex"`
	GiftCardID  uint64          `gorm:"column:gift_card_id;not null;index"`
	GiftCard    *GiftCard       `gorm:"foreignKey:GiftCardID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	FromAddress string          `gorm:"column:from_address;not null;type:text;index"`
	ToAddress   string          `gorm:"column:to_address;not null;type:text;index"`
	Type        TransactionType `gorm:"column:type;not null;type:text;index"`
	Amount      Wei             `gorm:"column:amount;not null;default:0"`
	TxHash      string          `gorm:"column:tx_hash;not null;type:text;index"`
	BlockNumber uint64          `gorm:"column:block_number;not null"`
	LogIndex    uint            `gorm:"column:log_index;not null"`
	Timestamp   time.Time       `gorm:"column:timestamp;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

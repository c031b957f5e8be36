package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ChangeType represents the typed change notification emitted for mirror consumers
type ChangeType string

const (
	ChangeTypeBackgroundAdded   ChangeType = "BACKGROUND_ADDED"
	ChangeTypeBackgroundUpdated ChangeType = "BACKGROUND_UPDATED"
	ChangeTypeGiftCardAdded     ChangeType = "GIFT_CARD_ADDED"
	ChangeTypeGiftCardUpdated   ChangeType = "GIFT_CARD_UPDATED"
	ChangeTypeUserUpdated       ChangeType = "USER_UPDATED"
)

// SubjectType represents the type of entity that was changed
type SubjectType string

const (
	SubjectTypeBackground SubjectType = "background"
	SubjectTypeGiftCard   SubjectType = "gift_card"
	SubjectTypeUser       SubjectType = "user"
)

// ChangesJournal represents the changes_journal table - ordered log of mirror changes for polling consumers
type ChangesJournal struct {
	// Cursor is an auto-incrementing sequence number for pagination and ordering
	Cursor     uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ChangeType ChangeType `gorm:"column:change_type;not null;type:text;index"`
	// SubjectType identifies what kind of entity changed
	SubjectType SubjectType `gorm:"column:subject_type;not null;type:text;index:idx_changes_subject"`
	// SubjectID is the entity identifier (ledger ID or wallet address)
	SubjectID string    `gorm:"column:subject_id;not null;type:text;index:idx_changes_subject"`
	ChangedAt time.Time `gorm:"column:changed_at;not null"`
	// Meta carries the ledger reference of the change as JSON
	Meta datatypes.JSON `gorm:"column:meta"`
}

// TableName specifies the table name for the ChangesJournal model
func (ChangesJournal) TableName() string {
	return "changes_journal"
}

// ChangeMeta is the meta payload of a journal entry
type ChangeMeta struct {
	EventKind   string   `json:"event_kind,omitempty"`
	TxHash      string   `json:"tx_hash,omitempty"`
	BlockNumber uint64   `json:"block_number"`
	LogIndex    uint     `json:"log_index"`
	Fields      []string `json:"fields,omitempty"`
}

// AllModels lists every table of the mirror in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Background{},
		&GiftCard{},
		&Transaction{},
		&User{},
		&PendingOperation{},
		&ChangesJournal{},
		&KeyValueStore{},
	}
}

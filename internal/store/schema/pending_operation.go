package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// OperationStatus represents the reconciliation state of a submitted ledger transaction
type OperationStatus string

const (
	// OperationStatusSubmitted means the transaction was broadcast and is awaiting confirmation
	OperationStatusSubmitted OperationStatus = "submitted"
	// OperationStatusUnknown means confirmation timed out; the transaction may still be mined
	OperationStatusUnknown OperationStatus = "unknown"
	// OperationStatusFailed means the transaction reverted on the ledger
	OperationStatusFailed OperationStatus = "failed"
	// OperationStatusEventMissing means the transaction succeeded but the expected event was not found
	OperationStatusEventMissing OperationStatus = "event_missing"
	// OperationStatusMirrorPending means the ledger confirmed but the mirror write failed
	OperationStatusMirrorPending OperationStatus = "mirror_pending"
	// OperationStatusApplied means the mirror reflects the ledger change
	OperationStatusApplied OperationStatus = "applied"
)

// UnresolvedOperationStatuses lists the statuses the reconcile sweeper works on
var UnresolvedOperationStatuses = []OperationStatus{
	OperationStatusSubmitted,
	OperationStatusUnknown,
	OperationStatusEventMissing,
	OperationStatusMirrorPending,
}

// Resolved reports whether no further reconciliation is needed
func (s OperationStatus) Resolved() bool {
	return s == OperationStatusApplied || s == OperationStatusFailed
}

// PendingOperation represents the pending_operations table - durable marker of every submitted ledger transaction
type PendingOperation struct {
	// ID is a ULID
	ID     string `gorm:"column:id;primaryKey;type:text"`
	TxHash string `gorm:"column:tx_hash;not null;type:text;uniqueIndex"`
	// Operation is the contract method that was invoked
	Operation  string            `gorm:"column:operation;not null;type:text"`
	EntityType domain.EntityType `gorm:"column:entity_type;not null;type:text"`
	// EntityID is unknown until the event is observed for mints and creations
	EntityID *uint64         `gorm:"column:entity_id"`
	Caller   string          `gorm:"column:caller;not null;type:text;index"`
	Status   OperationStatus `gorm:"column:status;not null;type:text;index"`
	Attempts int             `gorm:"column:attempts;not null;default:0"`
	// LastError holds the most recent failure message
	LastError *string `gorm:"column:last_error;type:text"`
	// Request is the redacted call; secrets are never stored
	Request datatypes.JSON `gorm:"column:request"`
	// Event is the observed ledger event, stored when the mirror write is pending
	Event       datatypes.JSON `gorm:"column:event"`
	BlockNumber *uint64        `gorm:"column:block_number"`
	SubmittedAt time.Time      `gorm:"column:submitted_at;not null"`
	ResolvedAt  *time.Time     `gorm:"column:resolved_at"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the PendingOperation model
func (PendingOperation) TableName() string {
	return "pending_operations"
}

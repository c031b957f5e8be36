package dto

import (
	"encoding/json"
	"time"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/reconciler"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

// OperationResultResponse is returned by every mutating endpoint that reached the ledger
type OperationResultResponse struct {
	Status      reconciler.Status `json:"status"`
	EntityType  domain.EntityType `json:"entity_type"`
	EntityID    uint64            `json:"entity_id"`
	TxHash      string            `json:"tx_hash"`
	BlockNumber uint64            `json:"block_number"`
}

// OperationResponse represents the reconciliation state of a submitted transaction
type OperationResponse struct {
	TxHash      string                 `json:"tx_hash"`
	Operation   string                 `json:"operation"`
	EntityType  domain.EntityType      `json:"entity_type"`
	EntityID    *uint64                `json:"entity_id,omitempty"`
	Caller      string                 `json:"caller"`
	Status      schema.OperationStatus `json:"status"`
	Attempts    int                    `json:"attempts"`
	LastError   *string                `json:"last_error,omitempty"`
	Request     json.RawMessage        `json:"request,omitempty"`
	BlockNumber *uint64                `json:"block_number,omitempty"`
	SubmittedAt time.Time              `json:"submitted_at"`
	ResolvedAt  *time.Time             `json:"resolved_at,omitempty"`
}

// MapResultToDTO maps a reconciler.Result to OperationResultResponse
func MapResultToDTO(r *reconciler.Result) *OperationResultResponse {
	return &OperationResultResponse{
		Status:      r.Status,
		EntityType:  r.EntityType,
		EntityID:    r.EntityID,
		TxHash:      r.TxHash,
		BlockNumber: r.BlockNumber,
	}
}

// MapOperationToDTO maps a schema.PendingOperation to OperationResponse
func MapOperationToDTO(op *schema.PendingOperation) *OperationResponse {
	dto := &OperationResponse{
		TxHash:      op.TxHash,
		Operation:   op.Operation,
		EntityType:  op.EntityType,
		EntityID:    op.EntityID,
		Caller:      op.Caller,
		Status:      op.Status,
		Attempts:    op.Attempts,
		LastError:   op.LastError,
		BlockNumber: op.BlockNumber,
		SubmittedAt: op.SubmittedAt,
		ResolvedAt:  op.ResolvedAt,
	}

	if op.Request != nil {
		dto.Request = json.RawMessage(op.Request)
	}

	return dto
}

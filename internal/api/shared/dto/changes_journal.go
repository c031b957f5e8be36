package dto

import (
	"encoding/json"
	"time"

	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

// ChangeResponse represents a change journal entry
type ChangeResponse struct {
	ID          uint64             `json:"id"`
	ChangeType  schema.ChangeType  `json:"change_type"`
	SubjectType schema.SubjectType `json:"subject_type"`
	SubjectID   string             `json:"subject_id"`
	ChangedAt   time.Time          `json:"changed_at"`
	Meta        json.RawMessage    `json:"meta,omitempty"`
}

// ChangeListResponse represents a page of changes
type ChangeListResponse struct {
	Changes    []ChangeResponse `json:"items"`
	NextAnchor *uint64          `json:"next_anchor,omitempty"` // ID-based cursor for the next page
	Total      uint64           `json:"total"`                 // Changes after the requested anchor
}

// MapChangeToDTO maps a schema.ChangesJournal to ChangeResponse
func MapChangeToDTO(change *schema.ChangesJournal) *ChangeResponse {
	dto := &ChangeResponse{
		ID:          change.Cursor,
		ChangeType:  change.ChangeType,
		SubjectType: change.SubjectType,
		SubjectID:   change.SubjectID,
		ChangedAt:   change.ChangedAt,
	}

	if change.Meta != nil {
		dto.Meta = json.RawMessage(change.Meta)
	}

	return dto
}

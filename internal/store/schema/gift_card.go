package schema

import (
	"time"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// GiftCard represents the gift_cards table
type GiftCard struct {
	// ID is the ledger-assigned gift card identifier
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	CreatorAddress string `gorm:"column:creator_address;not null;type:text;index"`
	CurrentOwner   string `gorm:"column:current_owner;not null;type:text;index"`
	// Price is fixed at creation
	Price   Wei    `gorm:"column:price;not null"`
	Message string `gorm:"column:message;not null;type:text;default:''"`
	// SecretCommitment is set iff IsClaimable
	SecretCommitment *string `gorm:"column:secret_commitment;type:text"`
	IsClaimable      bool    `gorm:"column:is_claimable;not null;default:false;index"`
	BackgroundID     uint64  `gorm:"column:background_id;not null;index"`
	// Background is only declared for the foreign key; it is never preloaded
	Background *Background `gorm:"foreignKey:BackgroundID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	// LastBlock and LastLogIndex mark the last applied ledger change
	LastBlock    uint64    `gorm:"column:last_block;not null;default:0"`
	LastLogIndex uint      `gorm:"column:last_log_index;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the GiftCard model
func (GiftCard) TableName() string {
	return "gift_cards"
}

// Position returns the ledger position of the last applied change
func (g *GiftCard) Position() domain.Position {
	return domain.Position{BlockNumber: g.LastBlock, LogIndex: g.LastLogIndex}
}

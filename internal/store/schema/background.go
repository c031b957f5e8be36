package schema

import (
	"time"

	"github.com/evrlink/evrlink-mirror/internal/domain"
)

// Background represents the backgrounds table - artist-minted images reused by gift cards
type Background struct {
	// ID is the ledger-assigned background identifier
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement:false"`
	// ArtistAddress is the minter of the background
	ArtistAddress string `gorm:"column:artist_address;not null;type:text;index"`
	// ImageRef is the media reference of the image; one background per image
	ImageRef string `gorm:"column:image_ref;not null;type:text;uniqueIndex"`
	// Category groups backgrounds for browsing
	Category string `gorm:"column:category;not null;type:text;index"`
	// UsageCount is the number of gift cards created on top of this background
	UsageCount uint64 `gorm:"column:usage_count;not null;default:0"`
	// Price is the optional listing price in wei, 0 when unset
	Price Wei `gorm:"column:price;not null;default:0"`
	// LastBlock and LastLogIndex mark the last applied ledger change
	LastBlock    uint64    `gorm:"column:last_block;not null;default:0"`
	LastLogIndex uint      `gorm:"column:last_log_index;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the Background model
func (Background) TableName() string {
	return "backgrounds"
}

// Position returns the ledger position of the last applied change
func (b *Background) Position() domain.Position {
	return domain.Position{BlockNumber: b.LastBlock, LogIndex: b.LastLogIndex}
}

package schema

import "time"

// User represents the users table, keyed by wallet address.
// Counters are derived from the other tables and recomputed, never incremented.
type User struct {
	WalletAddress   string  `gorm:"column:wallet_address;primaryKey;type:text"`
	Username        *string `gorm:"column:username;type:text"`
	Email           *string `gorm:"column:email;type:text"`
	Bio             *string `gorm:"column:bio;type:text"`
	ProfileImageURL *string `gorm:"column:profile_image_url;type:text"`

	GiftCardsCreated  uint64 `gorm:"column:gift_cards_created;not null;default:0"`
	GiftCardsSent     uint64 `gorm:"column:gift_cards_sent;not null;default:0"`
	GiftCardsReceived uint64 `gorm:"column:gift_cards_received;not null;default:0"`
	BackgroundsMinted uint64 `gorm:"column:backgrounds_minted;not null;default:0"`

	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// UserStats holds the derived counters of a user
type UserStats struct {
	GiftCardsCreated  uint64 `json:"gift_cards_created"`
	GiftCardsSent     uint64 `json:"gift_cards_sent"`
	GiftCardsReceived uint64 `json:"gift_cards_received"`
	BackgroundsMinted uint64 `json:"backgrounds_minted"`
}

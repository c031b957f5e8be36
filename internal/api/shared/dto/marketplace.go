package dto

import (
	"time"

	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// BackgroundResponse represents a background
type BackgroundResponse struct {
	ID            uint64    `json:"id"`
	ArtistAddress string    `json:"artist_address"`
	ImageRef      string    `json:"image_ref"`
	Category      string    `json:"category"`
	UsageCount    uint64    `json:"usage_count"`
	Price         string    `json:"price"`
	PriceEth      string    `json:"price_eth"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BackgroundListResponse represents a paginated list of backgrounds
type BackgroundListResponse struct {
	Backgrounds []BackgroundResponse `json:"items"`
	Offset      *uint64              `json:"offset,omitempty"` // Offset for the next page
	Total       uint64               `json:"total"`
}

// CategoryListResponse lists background categories with their counts
type CategoryListResponse struct {
	Categories []store.CategoryCount `json:"items"`
}

// GiftCardResponse represents a gift card. The commitment itself is never exposed.
type GiftCardResponse struct {
	ID             uint64    `json:"id"`
	CreatorAddress string    `json:"creator_address"`
	CurrentOwner   string    `json:"current_owner"`
	Price          string    `json:"price"`
	PriceEth       string    `json:"price_eth"`
	Message        string    `json:"message"`
	IsClaimable    bool      `json:"is_claimable"`
	BackgroundID   uint64    `json:"background_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Expansions
	Background   *BackgroundResponse   `json:"background,omitempty"`
	Transactions []TransactionResponse `json:"transactions,omitempty"`
}

// GiftCardListResponse represents a paginated list of gift cards
type GiftCardListResponse struct {
	GiftCards []GiftCardResponse `json:"items"`
	Offset    *uint64            `json:"offset,omitempty"`
	Total     uint64             `json:"total"`
}

// TransactionResponse represents an audit trail row
type TransactionResponse struct {
	ID          uint64                 `json:"id"`
	GiftCardID  uint64                 `json:"gift_card_id"`
	FromAddress string                 `json:"from_address"`
	ToAddress   string                 `json:"to_address"`
	Type        schema.TransactionType `json:"type"`
	Amount      string                 `json:"amount"`
	AmountEth   string                 `json:"amount_eth"`
	TxHash      string                 `json:"tx_hash"`
	BlockNumber uint64                 `json:"block_number"`
	Timestamp   time.Time              `json:"timestamp"`
}

// TransactionListResponse represents a paginated list of transactions
type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"items"`
	Offset       *uint64               `json:"offset,omitempty"`
	Total        uint64                `json:"total"`
}

// UserResponse represents a user profile with derived statistics
type UserResponse struct {
	WalletAddress     string     `json:"wallet_address"`
	Username          *string    `json:"username,omitempty"`
	Email             *string    `json:"email,omitempty"`
	Bio               *string    `json:"bio,omitempty"`
	ProfileImageURL   *string    `json:"profile_image_url,omitempty"`
	GiftCardsCreated  uint64     `json:"gift_cards_created"`
	GiftCardsSent     uint64     `json:"gift_cards_sent"`
	GiftCardsReceived uint64     `json:"gift_cards_received"`
	BackgroundsMinted uint64     `json:"backgrounds_minted"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// LeaderboardResponse represents a ranked board
type LeaderboardResponse struct {
	Board   store.LeaderboardType    `json:"board"`
	Entries []store.LeaderboardEntry `json:"items"`
}

// MapBackgroundToDTO maps a schema.Background to BackgroundResponse
func MapBackgroundToDTO(b *schema.Background) *BackgroundResponse {
	return &BackgroundResponse{
		ID:            b.ID,
		ArtistAddress: b.ArtistAddress,
		ImageRef:      b.ImageRef,
		Category:      b.Category,
		UsageCount:    b.UsageCount,
		Price:         b.Price.String(),
		PriceEth:      types.FormatEther(b.Price.Int()),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// MapGiftCardToDTO maps a schema.GiftCard to GiftCardResponse
func MapGiftCardToDTO(g *schema.GiftCard) *GiftCardResponse {
	return &GiftCardResponse{
		ID:             g.ID,
		CreatorAddress: g.CreatorAddress,
		CurrentOwner:   g.CurrentOwner,
		Price:          g.Price.String(),
		PriceEth:       types.FormatEther(g.Price.Int()),
		Message:        g.Message,
		IsClaimable:    g.IsClaimable,
		BackgroundID:   g.BackgroundID,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

// MapTransactionToDTO maps a schema.Transaction to TransactionResponse
func MapTransactionToDTO(t *schema.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:          t.ID,
		GiftCardID:  t.GiftCardID,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		Type:        t.Type,
		Amount:      t.Amount.String(),
		AmountEth:   types.FormatEther(t.Amount.Int()),
		TxHash:      t.TxHash,
		BlockNumber: t.BlockNumber,
		Timestamp:   t.Timestamp,
	}
}

// MapUserToDTO maps a schema.User to UserResponse
func MapUserToDTO(u *schema.User) *UserResponse {
	return &UserResponse{
		WalletAddress:     u.WalletAddress,
		Username:          u.Username,
		Email:             u.Email,
		Bio:               u.Bio,
		ProfileImageURL:   u.ProfileImageURL,
		GiftCardsCreated:  u.GiftCardsCreated,
		GiftCardsSent:     u.GiftCardsSent,
		GiftCardsReceived: u.GiftCardsReceived,
		BackgroundsMinted: u.BackgroundsMinted,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

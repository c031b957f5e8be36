package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
)

// ErrRowMissing is returned when a partial change targets a gift card the mirror has never seen
var ErrRowMissing = errors.New("mirror row missing")

// ErrOperationResolved is returned when an update targets a pending operation that is already applied or failed
var ErrOperationResolved = errors.New("pending operation already resolved")

// ErrParentMissing is returned when a row references a background or gift card the mirror does not hold yet
var ErrParentMissing = errors.New("mirror parent row missing")

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// ApplyProjection applies a single ledger change to the mirror in one transaction.
	// Changes ordered at or before the stored position are skipped.
	ApplyProjection(ctx context.Context, p Projection) (*ApplyResult, error)
	// RecomputeUserStats recomputes the derived counters of a user from the mirror tables
	RecomputeUserStats(ctx context.Context, address string) (*schema.User, error)
	// UpsertUserProfile creates or updates the profile fields of a user
	UpsertUserProfile(ctx context.Context, input UpsertUserProfileInput) (*schema.User, error)

	// GetBackground retrieves a background by ledger ID
	GetBackground(ctx context.Context, id uint64) (*schema.Background, error)
	// GetBackgroundByImageRef retrieves a background by image reference
	GetBackgroundByImageRef(ctx context.Context, imageRef string) (*schema.Background, error)
	// GetBackgroundsByIDs retrieves backgrounds keyed by ID
	GetBackgroundsByIDs(ctx context.Context, ids []uint64) (map[uint64]*schema.Background, error)
	// ListBackgrounds retrieves backgrounds with filters and pagination
	ListBackgrounds(ctx context.Context, filter BackgroundQueryFilter) ([]*schema.Background, uint64, error)
	// GetCategories returns every background category with its background count
	GetCategories(ctx context.Context) ([]CategoryCount, error)

	// GetGiftCard retrieves a gift card by ledger ID
	GetGiftCard(ctx context.Context, id uint64) (*schema.GiftCard, error)
	// ListGiftCards retrieves gift cards with filters, sorting and pagination
	ListGiftCards(ctx context.Context, filter GiftCardQueryFilter) ([]*schema.GiftCard, uint64, error)
	// GetGiftCardTransactions retrieves the audit trail of a gift card, oldest first
	GetGiftCardTransactions(ctx context.Context, giftCardID uint64) ([]*schema.Transaction, error)

	// GetUser retrieves a user by wallet address
	GetUser(ctx context.Context, address string) (*schema.User, error)
	// GetUserTransactions retrieves transactions sent or received by an address, newest first
	GetUserTransactions(ctx context.Context, address string, limit int, offset uint64) ([]*schema.Transaction, uint64, error)
	// GetLeaderboard returns the top addresses of a board
	GetLeaderboard(ctx context.Context, board LeaderboardType, limit int) ([]LeaderboardEntry, error)

	// GetMissingBackgroundIDs returns IDs in [1, upTo] not present in the mirror
	GetMissingBackgroundIDs(ctx context.Context, upTo uint64, limit int) ([]uint64, error)
	// GetMissingGiftCardIDs returns IDs in [1, upTo] not present in the mirror
	GetMissingGiftCardIDs(ctx context.Context, upTo uint64, limit int) ([]uint64, error)

	// GetChanges retrieves journal entries after an anchor cursor
	GetChanges(ctx context.Context, filter ChangesQueryFilter) ([]*schema.ChangesJournal, uint64, error)

	// CreatePendingOperation records a submitted ledger transaction
	CreatePendingOperation(ctx context.Context, input CreatePendingOperationInput) (*schema.PendingOperation, error)
	// GetPendingOperationByTxHash retrieves the marker of a transaction
	GetPendingOperationByTxHash(ctx context.Context, txHash string) (*schema.PendingOperation, error)
	// UpdatePendingOperation moves a marker to a new status
	UpdatePendingOperation(ctx context.Context, txHash string, input UpdatePendingOperationInput) error
	// ListPendingOperations retrieves markers with filters and pagination, oldest first
	ListPendingOperations(ctx context.Context, filter PendingOperationFilter) ([]*schema.PendingOperation, uint64, error)
	// CountPendingOperationsByStatus counts markers per status
	CountPendingOperationsByStatus(ctx context.Context) (map[schema.OperationStatus]int64, error)

	// GetBlockCursor retrieves the last processed block number for a chain
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor stores the last processed block number for a chain
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error
	// SetKeyValue stores a value by key
	SetKeyValue(ctx context.Context, key string, value string) error
	// GetKeyValue retrieves a value by key, empty when missing
	GetKeyValue(ctx context.Context, key string) (string, error)
}

// =============================================================================
// Projection
// =============================================================================

// Projection is a single ledger change ready to be applied to the mirror
type Projection struct {
	// Position orders the change; snapshots use domain.SnapshotPosition
	Position domain.Position
	// EventKind is empty for snapshot heals
	EventKind domain.EventKind
	TxHash    string
	ChangedAt time.Time

	Background  *schema.Background
	GiftCard    *GiftCardChange
	Transaction *schema.Transaction
	// Addresses whose derived counters must be recomputed
	Addresses []string
}

// GiftCardChange is the gift card part of a projection
type GiftCardChange struct {
	Row *schema.GiftCard
	// Columns limits the update to the columns the change knows about; nil means every column
	Columns []string
	// Create allows the row to be inserted when missing
	Create bool
}

// ApplyResult reports what a projection changed
type ApplyResult struct {
	BackgroundChanged   bool
	GiftCardChanged     bool
	TransactionInserted bool
	UsersUpdated        []string
	// Stale is set when the stored entity already reflects a later change
	Stale bool
}

// Gift card columns
const (
	ColumnCreatorAddress   = "creator_address"
	ColumnCurrentOwner     = "current_owner"
	ColumnPrice            = "price"
	ColumnMessage          = "message"
	ColumnSecretCommitment = "secret_commitment"
	ColumnIsClaimable      = "is_claimable"
	ColumnBackgroundID     = "background_id"
)

// AllGiftCardColumns lists the ledger-owned columns of a gift card
var AllGiftCardColumns = []string{
	ColumnCreatorAddress,
	ColumnCurrentOwner,
	ColumnPrice,
	ColumnMessage,
	ColumnSecretCommitment,
	ColumnIsClaimable,
	ColumnBackgroundID,
}

// =============================================================================
// Filters and inputs
// =============================================================================

// BackgroundQueryFilter represents filters for background queries
type BackgroundQueryFilter struct {
	Category      string
	ArtistAddress string
	Limit         int
	Offset        uint64
}

// GiftCardSort is the sort key of gift card listings
type GiftCardSort string

const (
	GiftCardSortID      GiftCardSort = "id"
	GiftCardSortPrice   GiftCardSort = "price"
	GiftCardSortCreated GiftCardSort = "created"
)

// GiftCardQueryFilter represents filters for gift card queries
type GiftCardQueryFilter struct {
	Category        string
	MinPrice        *schema.Wei
	MaxPrice        *schema.Wei
	Owner           string
	Creator         string
	BackgroundID    *uint64
	Claimable       *bool
	MessageContains string
	SortBy          GiftCardSort
	OrderDesc       bool
	Limit           int
	Offset          uint64
}

// CategoryCount is a background category with its number of backgrounds
type CategoryCount struct {
	Category string `json:"category"`
	Count    uint64 `json:"count"`
}

// LeaderboardType identifies a leaderboard
type LeaderboardType string

const (
	LeaderboardTopCreators  LeaderboardType = "top_creators"
	LeaderboardTopArtists   LeaderboardType = "top_artists"
	LeaderboardTopReceivers LeaderboardType = "top_receivers"
)

// IsValidLeaderboard checks if a leaderboard type is known
func IsValidLeaderboard(board LeaderboardType) bool {
	return board == LeaderboardTopCreators ||
		board == LeaderboardTopArtists ||
		board == LeaderboardTopReceivers
}

// LeaderboardEntry is a ranked address
type LeaderboardEntry struct {
	Address string `json:"address"`
	Score   uint64 `json:"score"`
}

// ChangesQueryFilter represents filters for the changes journal
type ChangesQueryFilter struct {
	Anchor       *uint64
	SubjectTypes []schema.SubjectType
	SubjectIDs   []string
	Limit        int
}

// UpsertUserProfileInput holds the profile fields of a user; nil fields are left unchanged
type UpsertUserProfileInput struct {
	WalletAddress   string
	Username        *string
	Email           *string
	Bio             *string
	ProfileImageURL *string
	LoginAt         *time.Time
}

// CreatePendingOperationInput represents the data of a newly submitted transaction
type CreatePendingOperationInput struct {
	TxHash      string
	Operation   string
	EntityType  domain.EntityType
	EntityID    *uint64
	Caller      string
	Request     datatypes.JSON
	SubmittedAt time.Time
}

// UpdatePendingOperationInput represents a marker status change; nil fields are left unchanged.
// An empty Status keeps the current one.
type UpdatePendingOperationInput struct {
	Status      schema.OperationStatus
	EntityID    *uint64
	BlockNumber *uint64
	Event       datatypes.JSON
	LastError   *string
	// IncrementAttempts bumps the attempt counter
	IncrementAttempts bool
	ResolvedAt        *time.Time
}

// PendingOperationFilter represents filters for pending operation queries
type PendingOperationFilter struct {
	Statuses []schema.OperationStatus
	// SubmittedBefore only returns markers submitted before the given time
	SubmittedBefore *time.Time
	Caller          string
	Limit           int
	Offset          uint64
}

package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/evrlink/evrlink-mirror/internal/api/shared/constants"
	"github.com/evrlink/evrlink-mirror/internal/api/shared/dto"
	apierrors "github.com/evrlink/evrlink-mirror/internal/api/shared/errors"
	"github.com/evrlink/evrlink-mirror/internal/api/shared/types"
	"github.com/evrlink/evrlink-mirror/internal/store"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	internalTypes "github.com/evrlink/evrlink-mirror/internal/types"
)

// GiftCardSearch holds the filters of a gift card listing
type GiftCardSearch struct {
	Category  string
	MinPrice  *schema.Wei
	MaxPrice  *schema.Wei
	Owner     string
	Creator   string
	Claimable *bool
	Text      string
	SortBy    types.GiftCardSortBy
	Order     types.Order
	Limit     *int
	Offset    *uint64
}

// Facade is the read side of the marketplace, served from the mirror
//
//go:generate mockgen -source=facade.go -destination=../mocks/query.go -package=mocks -mock_names=Facade=MockQueryFacade
type Facade interface {
	// ListBackgrounds lists backgrounds filtered by category and artist
	ListBackgrounds(ctx context.Context, category string, artist string, limit *int, offset *uint64) (*dto.BackgroundListResponse, error)
	// GetBackground returns a background, nil when unknown
	GetBackground(ctx context.Context, id uint64) (*dto.BackgroundResponse, error)
	// GetCategories returns every category with its background count
	GetCategories(ctx context.Context) (*dto.CategoryListResponse, error)

	// ListGiftCards searches gift cards
	ListGiftCards(ctx context.Context, search GiftCardSearch) (*dto.GiftCardListResponse, error)
	// GetGiftCard returns a gift card with its background and audit trail, nil when unknown
	GetGiftCard(ctx context.Context, id uint64) (*dto.GiftCardResponse, error)

	// GetUser returns the profile and statistics of an address, nil when unknown
	GetUser(ctx context.Context, address string) (*dto.UserResponse, error)
	// GetUserTransactions returns the transactions sent or received by an address
	GetUserTransactions(ctx context.Context, address string, limit *int, offset *uint64) (*dto.TransactionListResponse, error)
	// UpdateProfile writes the profile fields of an address. Profile fields are the only
	// user data not derived from the ledger.
	UpdateProfile(ctx context.Context, address string, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// GetLeaderboard returns the top addresses of a board
	GetLeaderboard(ctx context.Context, board store.LeaderboardType, limit *int) (*dto.LeaderboardResponse, error)

	// GetChanges returns journal entries after an anchor
	GetChanges(ctx context.Context, anchor *uint64, limit *int) (*dto.ChangeListResponse, error)

	// GetOperation returns the pending marker of a transaction, nil when unknown
	GetOperation(ctx context.Context, txHash string) (*dto.OperationResponse, error)
}

type facade struct {
	store store.Store
}

// NewFacade creates a query facade over the mirror store
func NewFacade(st store.Store) Facade {
	return &facade{store: st}
}

func (f *facade) ListBackgrounds(ctx context.Context, category string, artist string, limit *int, offset *uint64) (*dto.BackgroundListResponse, error) {
	l, o := page(limit, offset, constants.DEFAULT_BACKGROUNDS_LIMIT)

	if artist != "" {
		if !internalTypes.IsEthereumAddress(artist) {
			return nil, apierrors.NewValidationError(fmt.Sprintf("invalid artist address: %s", artist))
		}
		artist = internalTypes.NormalizeAddress(artist)
	}

	backgrounds, total, err := f.store.ListBackgrounds(ctx, store.BackgroundQueryFilter{
		Category:      category,
		ArtistAddress: artist,
		Limit:         l,
		Offset:        o,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list backgrounds: %v", err))
	}

	items := make([]dto.BackgroundResponse, len(backgrounds))
	for i, b := range backgrounds {
		items[i] = *dto.MapBackgroundToDTO(b)
	}

	return &dto.BackgroundListResponse{
		Backgrounds: items,
		Offset:      nextOffset(o, len(backgrounds), total),
		Total:       total,
	}, nil
}

func (f *facade) GetBackground(ctx context.Context, id uint64) (*dto.BackgroundResponse, error) {
	background, err := f.store.GetBackground(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get background: %v", err))
	}
	if background == nil {
		return nil, nil
	}
	return dto.MapBackgroundToDTO(background), nil
}

func (f *facade) GetCategories(ctx context.Context) (*dto.CategoryListResponse, error) {
	categories, err := f.store.GetCategories(ctx)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get categories: %v", err))
	}
	if categories == nil {
		categories = []store.CategoryCount{}
	}
	return &dto.CategoryListResponse{Categories: categories}, nil
}

func (f *facade) ListGiftCards(ctx context.Context, search GiftCardSearch) (*dto.GiftCardListResponse, error) {
	l, o := page(search.Limit, search.Offset, constants.DEFAULT_GIFT_CARDS_LIMIT)

	filter := store.GiftCardQueryFilter{
		Category:        search.Category,
		MinPrice:        search.MinPrice,
		MaxPrice:        search.MaxPrice,
		Claimable:       search.Claimable,
		MessageContains: search.Text,
		SortBy:          types.ToStoreGiftCardSort(search.SortBy),
		OrderDesc:       search.Order.Desc(),
		Limit:           l,
		Offset:          o,
	}

	if search.Owner != "" {
		if !internalTypes.IsEthereumAddress(search.Owner) {
			return nil, apierrors.NewValidationError(fmt.Sprintf("invalid owner address: %s", search.Owner))
		}
		filter.Owner = internalTypes.NormalizeAddress(search.Owner)
	}
	if search.Creator != "" {
		if !internalTypes.IsEthereumAddress(search.Creator) {
			return nil, apierrors.NewValidationError(fmt.Sprintf("invalid creator address: %s", search.Creator))
		}
		filter.Creator = internalTypes.NormalizeAddress(search.Creator)
	}
	if search.MinPrice != nil && search.MaxPrice != nil && search.MinPrice.Int().Cmp(search.MaxPrice.Int()) > 0 {
		return nil, apierrors.NewValidationError("min_price must not exceed max_price")
	}

	giftCards, total, err := f.store.ListGiftCards(ctx, filter)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to list gift cards: %v", err))
	}

	// Attach backgrounds in one round trip
	ids := make([]uint64, 0, len(giftCards))
	for _, g := range giftCards {
		ids = append(ids, g.BackgroundID)
	}
	backgrounds, err := f.store.GetBackgroundsByIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get backgrounds: %v", err))
	}

	items := make([]dto.GiftCardResponse, len(giftCards))
	for i, g := range giftCards {
		item := dto.MapGiftCardToDTO(g)
		if b, ok := backgrounds[g.BackgroundID]; ok {
			item.Background = dto.MapBackgroundToDTO(b)
		}
		items[i] = *item
	}

	return &dto.GiftCardListResponse{
		GiftCards: items,
		Offset:    nextOffset(o, len(giftCards), total),
		Total:     total,
	}, nil
}

func (f *facade) GetGiftCard(ctx context.Context, id uint64) (*dto.GiftCardResponse, error) {
	giftCard, err := f.store.GetGiftCard(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get gift card: %v", err))
	}
	if giftCard == nil {
		return nil, nil
	}

	response := dto.MapGiftCardToDTO(giftCard)

	background, err := f.store.GetBackground(ctx, giftCard.BackgroundID)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get background: %v", err))
	}
	if background != nil {
		response.Background = dto.MapBackgroundToDTO(background)
	}

	transactions, err := f.store.GetGiftCardTransactions(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get gift card transactions: %v", err))
	}
	response.Transactions = make([]dto.TransactionResponse, len(transactions))
	for i, t := range transactions {
		response.Transactions[i] = *dto.MapTransactionToDTO(t)
	}

	return response, nil
}

func (f *facade) GetUser(ctx context.Context, address string) (*dto.UserResponse, error) {
	if !internalTypes.IsEthereumAddress(address) {
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid address: %s", address))
	}

	user, err := f.store.GetUser(ctx, internalTypes.NormalizeAddress(address))
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get user: %v", err))
	}
	if user == nil {
		return nil, nil
	}
	return dto.MapUserToDTO(user), nil
}

func (f *facade) GetUserTransactions(ctx context.Context, address string, limit *int, offset *uint64) (*dto.TransactionListResponse, error) {
	if !internalTypes.IsEthereumAddress(address) {
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid address: %s", address))
	}
	l, o := page(limit, offset, constants.DEFAULT_ACTIVITY_LIMIT)

	transactions, total, err := f.store.GetUserTransactions(ctx, internalTypes.NormalizeAddress(address), l, o)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get transactions: %v", err))
	}

	items := make([]dto.TransactionResponse, len(transactions))
	for i, t := range transactions {
		items[i] = *dto.MapTransactionToDTO(t)
	}

	return &dto.TransactionListResponse{
		Transactions: items,
		Offset:       nextOffset(o, len(transactions), total),
		Total:        total,
	}, nil
}

func (f *facade) UpdateProfile(ctx context.Context, address string, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if !internalTypes.IsEthereumAddress(address) {
		return nil, apierrors.NewValidationError(fmt.Sprintf("invalid address: %s", address))
	}

	user, err := f.store.UpsertUserProfile(ctx, store.UpsertUserProfileInput{
		WalletAddress:   internalTypes.NormalizeAddress(address),
		Username:        req.Username,
		Email:           req.Email,
		Bio:             req.Bio,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to update profile: %v", err))
	}
	return dto.MapUserToDTO(user), nil
}

func (f *facade) GetLeaderboard(ctx context.Context, board store.LeaderboardType, limit *int) (*dto.LeaderboardResponse, error) {
	if !store.IsValidLeaderboard(board) {
		return nil, apierrors.NewValidationError(fmt.Sprintf("unknown leaderboard: %s", board))
	}

	l := constants.DEFAULT_LEADERBOARD_LIMIT
	if limit != nil && *limit > 0 {
		l = min(*limit, constants.MAX_LEADERBOARD_LIMIT)
	}

	entries, err := f.store.GetLeaderboard(ctx, board, l)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get leaderboard: %v", err))
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}

	return &dto.LeaderboardResponse{Board: board, Entries: entries}, nil
}

func (f *facade) GetChanges(ctx context.Context, anchor *uint64, limit *int) (*dto.ChangeListResponse, error) {
	l, _ := page(limit, nil, constants.DEFAULT_CHANGES_LIMIT)

	changes, total, err := f.store.GetChanges(ctx, store.ChangesQueryFilter{
		Anchor: anchor,
		Limit:  l,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get changes: %v", err))
	}

	items := make([]dto.ChangeResponse, len(changes))
	for i, c := range changes {
		items[i] = *dto.MapChangeToDTO(c)
	}

	// More entries remain past this page
	var next *uint64
	if uint64(len(changes)) < total && len(changes) > 0 {
		cursor := changes[len(changes)-1].Cursor
		next = &cursor
	}

	return &dto.ChangeListResponse{
		Changes:    items,
		NextAnchor: next,
		Total:      total,
	}, nil
}

func (f *facade) GetOperation(ctx context.Context, txHash string) (*dto.OperationResponse, error) {
	op, err := f.store.GetPendingOperationByTxHash(ctx, txHash)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get operation: %v", err))
	}
	if op == nil {
		return nil, nil
	}
	return dto.MapOperationToDTO(op), nil
}

// page applies the default limit and caps it to the maximum page size
func page(limit *int, offset *uint64, defaultLimit int) (int, uint64) {
	l := defaultLimit
	if limit != nil && *limit > 0 {
		l = min(*limit, constants.MAX_PAGE_SIZE)
	}
	o := constants.DEFAULT_OFFSET
	if offset != nil {
		o = *offset
	}
	return l, o
}

func nextOffset(offset uint64, count int, total uint64) *uint64 {
	if offset+uint64(count) < total { //nolint:gosec,G115
		next := offset + uint64(count) //nolint:gosec,G115
		return &next
	}
	return nil
}

// ParseID parses a ledger-assigned entity ID
func ParseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, apierrors.NewBadRequestError("Invalid ID", s)
	}
	return id, nil
}

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

var (
	artistAddr  = types.NormalizeAddress("0x1111111111111111111111111111111111111111")
	creatorAddr = types.NormalizeAddress("0x2222222222222222222222222222222222222222")
	buyerAddr   = types.NormalizeAddress("0x3333333333333333333333333333333333333333")
	friendAddr  = types.NormalizeAddress("0x4444444444444444444444444444444444444444")
)

// =============================================================================
// Test Data Builders
// =============================================================================

func buildMintProjection(id uint64, artist, imageRef, category string, block uint64) Projection {
	return Projection{
		Position:  domain.Position{BlockNumber: block},
		EventKind: domain.EventKindBackgroundMinted,
		TxHash:    fmt.Sprintf("0xmint%d", id),
		ChangedAt: time.Now().UTC(),
		Background: &schema.Background{
			ID:            id,
			ArtistAddress: artist,
			ImageRef:      imageRef,
			Category:      category,
			Price:         "0",
		},
		Addresses: []string{artist},
	}
}

func buildCreateProjection(id, backgroundID uint64, creator string, price schema.Wei, message string, block uint64) Projection {
	txHash := fmt.Sprintf("0xcreate%d", id)
	return Projection{
		Position:  domain.Position{BlockNumber: block},
		EventKind: domain.EventKindGiftCardCreated,
		TxHash:    txHash,
		ChangedAt: time.Now().UTC(),
		GiftCard: &GiftCardChange{
			Row: &schema.GiftCard{
				ID:             id,
				CreatorAddress: creator,
				CurrentOwner:   creator,
				Price:          price,
				Message:        message,
				BackgroundID:   backgroundID,
			},
			Create: true,
		},
		Transaction: &schema.Transaction{
			LedgerRef:   fmt.Sprintf("create:%d", id),
			GiftCardID:  id,
			FromAddress: domain.ETHEREUM_ZERO_ADDRESS,
			ToAddress:   creator,
			Type:        schema.TransactionTypeCreate,
			Amount:      price,
			TxHash:      txHash,
			BlockNumber: block,
			Timestamp:   time.Now().UTC(),
		},
		Addresses: []string{creator},
	}
}

func buildOwnershipProjection(kind domain.EventKind, txType schema.TransactionType, id uint64, from, to string, block uint64, logIndex uint) Projection {
	txHash := fmt.Sprintf("0x%s%d_%d_%d", txType, id, block, logIndex)
	return Projection{
		Position:  domain.Position{BlockNumber: block, LogIndex: logIndex},
		EventKind: kind,
		TxHash:    txHash,
		ChangedAt: time.Now().UTC(),
		GiftCard: &GiftCardChange{
			Row:     &schema.GiftCard{ID: id, CurrentOwner: to},
			Columns: []string{ColumnCurrentOwner, ColumnSecretCommitment, ColumnIsClaimable},
		},
		Transaction: &schema.Transaction{
			LedgerRef:   fmt.Sprintf("%s:%d:%s", txType, id, txHash),
			GiftCardID:  id,
			FromAddress: from,
			ToAddress:   to,
			Type:        txType,
			TxHash:      txHash,
			BlockNumber: block,
			LogIndex:    logIndex,
			Timestamp:   time.Now().UTC(),
		},
		Addresses: []string{from, to},
	}
}

func buildSecretProjection(id uint64, owner, commitment string, block uint64) Projection {
	return Projection{
		Position:  domain.Position{BlockNumber: block},
		EventKind: domain.EventKindSecretSet,
		TxHash:    fmt.Sprintf("0xsecret%d_%d", id, block),
		ChangedAt: time.Now().UTC(),
		GiftCard: &GiftCardChange{
			Row: &schema.GiftCard{
				ID:               id,
				CurrentOwner:     owner,
				SecretCommitment: &commitment,
				IsClaimable:      true,
			},
			Columns: []string{ColumnCurrentOwner, ColumnSecretCommitment, ColumnIsClaimable},
		},
		Addresses: []string{owner},
	}
}

func seedGiftCard(t *testing.T, store Store, id, backgroundID uint64, price schema.Wei, message string) {
	ctx := context.Background()
	if bg, err := store.GetBackground(ctx, backgroundID); err == nil && bg == nil {
		_, err := store.ApplyProjection(ctx, buildMintProjection(backgroundID, artistAddr, fmt.Sprintf("ipfs://bg%d", backgroundID), "birthday", 1))
		require.NoError(t, err)
	}
	_, err := store.ApplyProjection(ctx, buildCreateProjection(id, backgroundID, creatorAddr, price, message, 2))
	require.NoError(t, err)
}

func changeTypes(t *testing.T, store Store, subject schema.SubjectType, subjectID string) []schema.ChangeType {
	changes, _, err := store.GetChanges(context.Background(), ChangesQueryFilter{
		SubjectTypes: []schema.SubjectType{subject},
		SubjectIDs:   []string{subjectID},
	})
	require.NoError(t, err)

	var result []schema.ChangeType
	for _, c := range changes {
		result = append(result, c.ChangeType)
	}
	return result
}

// =============================================================================
// Test: ApplyProjection
// =============================================================================

func testApplyBackgroundMint(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("mint creates background, user stats and journal", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://sunset", "birthday", 10))
		require.NoError(t, err)
		assert.True(t, result.BackgroundChanged)
		assert.False(t, result.Stale)
		assert.Equal(t, []string{artistAddr}, result.UsersUpdated)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, bg)
		assert.Equal(t, artistAddr, bg.ArtistAddress)
		assert.Equal(t, "ipfs://sunset", bg.ImageRef)
		assert.Equal(t, "birthday", bg.Category)
		assert.Equal(t, uint64(0), bg.UsageCount)
		assert.Equal(t, uint64(10), bg.LastBlock)

		user, err := store.GetUser(ctx, artistAddr)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, uint64(1), user.BackgroundsMinted)

		assert.Equal(t, []schema.ChangeType{schema.ChangeTypeBackgroundAdded}, changeTypes(t, store, schema.SubjectTypeBackground, "1"))
		assert.Equal(t, []schema.ChangeType{schema.ChangeTypeUserUpdated}, changeTypes(t, store, schema.SubjectTypeUser, artistAddr))
	})

	t.Run("replay changes nothing", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://sunset", "birthday", 10))
		require.NoError(t, err)
		assert.False(t, result.BackgroundChanged)
		assert.True(t, result.Stale)
		assert.Empty(t, result.UsersUpdated)

		assert.Len(t, changeTypes(t, store, schema.SubjectTypeBackground, "1"), 1)
	})

	t.Run("lookup by image ref", func(t *testing.T) {
		bg, err := store.GetBackgroundByImageRef(ctx, "ipfs://sunset")
		require.NoError(t, err)
		require.NotNil(t, bg)
		assert.Equal(t, uint64(1), bg.ID)

		missing, err := store.GetBackgroundByImageRef(ctx, "ipfs://unknown")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func testApplyGiftCardCreate(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 1))
	require.NoError(t, err)

	t.Run("create inserts gift card, audit row and raises usage", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildCreateProjection(1, 1, creatorAddr, "10000000000000000", "Happy birthday", 2))
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)
		assert.True(t, result.TransactionInserted)
		assert.True(t, result.BackgroundChanged)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, gc)
		assert.Equal(t, creatorAddr, gc.CreatorAddress)
		assert.Equal(t, creatorAddr, gc.CurrentOwner)
		assert.Equal(t, schema.Wei("10000000000000000"), gc.Price)
		assert.Equal(t, "Happy birthday", gc.Message)
		assert.Nil(t, gc.SecretCommitment)
		assert.False(t, gc.IsClaimable)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), bg.UsageCount)

		txs, err := store.GetGiftCardTransactions(ctx, 1)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, schema.TransactionTypeCreate, txs[0].Type)
		assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, txs[0].FromAddress)

		user, err := store.GetUser(ctx, creatorAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), user.GiftCardsCreated)

		assert.Equal(t, []schema.ChangeType{schema.ChangeTypeGiftCardAdded}, changeTypes(t, store, schema.SubjectTypeGiftCard, "1"))
		assert.Equal(t, []schema.ChangeType{schema.ChangeTypeBackgroundAdded, schema.ChangeTypeBackgroundUpdated},
			changeTypes(t, store, schema.SubjectTypeBackground, "1"))
	})

	t.Run("replay inserts no audit row and keeps usage", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildCreateProjection(1, 1, creatorAddr, "10000000000000000", "Happy birthday", 2))
		require.NoError(t, err)
		assert.False(t, result.TransactionInserted)
		assert.False(t, result.GiftCardChanged)
		assert.True(t, result.Stale)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), bg.UsageCount)

		txs, err := store.GetGiftCardTransactions(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("each creation increments usage once", func(t *testing.T) {
		_, err := store.ApplyProjection(ctx, buildCreateProjection(2, 1, creatorAddr, "5", "Congrats", 3))
		require.NoError(t, err)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), bg.UsageCount)

		user, err := store.GetUser(ctx, creatorAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), user.GiftCardsCreated)
	})

	t.Run("mint snapshot never lowers usage", func(t *testing.T) {
		snapshot := buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 0)
		snapshot.Position = domain.SnapshotPosition(2)
		snapshot.EventKind = ""
		_, err := store.ApplyProjection(ctx, snapshot)
		require.NoError(t, err)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), bg.UsageCount)
	})
}

func testApplyPartialUpdates(t *testing.T, store Store) {
	ctx := context.Background()
	seedGiftCard(t, store, 1, 1, "100", "hello")

	commitment := "0x" + fmt.Sprintf("%064x", 42)

	t.Run("secret set makes the card claimable", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildSecretProjection(1, creatorAddr, commitment, 3))
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)
		assert.False(t, result.TransactionInserted)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, gc.SecretCommitment)
		assert.Equal(t, commitment, *gc.SecretCommitment)
		assert.True(t, gc.IsClaimable)
		assert.Equal(t, "hello", gc.Message)
		assert.Equal(t, schema.Wei("100"), gc.Price)
	})

	t.Run("claim moves ownership and clears the commitment", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildOwnershipProjection(
			domain.EventKindGiftCardClaimed, schema.TransactionTypeClaim, 1, creatorAddr, friendAddr, 4, 0))
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)
		assert.True(t, result.TransactionInserted)
		assert.ElementsMatch(t, []string{creatorAddr, friendAddr}, result.UsersUpdated)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, friendAddr, gc.CurrentOwner)
		assert.Nil(t, gc.SecretCommitment)
		assert.False(t, gc.IsClaimable)
		assert.Equal(t, creatorAddr, gc.CreatorAddress)

		creator, err := store.GetUser(ctx, creatorAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), creator.GiftCardsSent)

		friend, err := store.GetUser(ctx, friendAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), friend.GiftCardsReceived)
	})

	t.Run("late older event is skipped but audited", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildOwnershipProjection(
			domain.EventKindGiftCardPurchased, schema.TransactionTypePurchase, 1, creatorAddr, buyerAddr, 3, 5))
		require.NoError(t, err)
		assert.True(t, result.Stale)
		assert.False(t, result.GiftCardChanged)
		assert.True(t, result.TransactionInserted)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, friendAddr, gc.CurrentOwner)

		buyer, err := store.GetUser(ctx, buyerAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), buyer.GiftCardsReceived)
	})

	t.Run("partial change for unknown gift card rolls back", func(t *testing.T) {
		_, err := store.ApplyProjection(ctx, buildOwnershipProjection(
			domain.EventKindGiftCardTransferred, schema.TransactionTypeTransfer, 99, creatorAddr, buyerAddr, 5, 0))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRowMissing)

		txs, err := store.GetGiftCardTransactions(ctx, 99)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func testApplySnapshotHeal(t *testing.T, store Store) {
	ctx := context.Background()
	_, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 1))
	require.NoError(t, err)

	t.Run("snapshot inserts a missing gift card", func(t *testing.T) {
		snapshot := buildCreateProjection(1, 1, creatorAddr, "100", "hello", 0)
		snapshot.Position = domain.SnapshotPosition(10)
		snapshot.EventKind = ""
		snapshot.GiftCard.Row.CurrentOwner = buyerAddr
		snapshot.Addresses = []string{creatorAddr, buyerAddr}

		result, err := store.ApplyProjection(ctx, snapshot)
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, buyerAddr, gc.CurrentOwner)
		assert.Equal(t, domain.SnapshotPosition(10), gc.Position())
	})

	t.Run("events covered by the snapshot are skipped", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildCreateProjection(1, 1, creatorAddr, "100", "hello", 5))
		require.NoError(t, err)
		assert.True(t, result.Stale)
		assert.False(t, result.TransactionInserted)

		result, err = store.ApplyProjection(ctx, buildOwnershipProjection(
			domain.EventKindGiftCardPurchased, schema.TransactionTypePurchase, 1, creatorAddr, buyerAddr, 10, 3))
		require.NoError(t, err)
		assert.True(t, result.Stale)
		assert.True(t, result.TransactionInserted)

		bg, err := store.GetBackground(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), bg.UsageCount)
	})

	t.Run("later event supersedes the snapshot", func(t *testing.T) {
		result, err := store.ApplyProjection(ctx, buildOwnershipProjection(
			domain.EventKindGiftCardTransferred, schema.TransactionTypeTransfer, 1, buyerAddr, friendAddr, 11, 0))
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, friendAddr, gc.CurrentOwner)
	})
}

// =============================================================================
// Test: Users
// =============================================================================

func testUsers(t *testing.T, store Store) {
	ctx := context.Background()
	seedGiftCard(t, store, 1, 1, "100", "hello")

	t.Run("recompute matches stored counters", func(t *testing.T) {
		user, err := store.RecomputeUserStats(ctx, creatorAddr)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), user.GiftCardsCreated)
		assert.Equal(t, uint64(0), user.GiftCardsSent)
	})

	t.Run("recompute accepts lowercase addresses", func(t *testing.T) {
		user, err := store.RecomputeUserStats(ctx, "0x2222222222222222222222222222222222222222")
		require.NoError(t, err)
		assert.Equal(t, creatorAddr, user.WalletAddress)
	})

	t.Run("recompute rejects invalid address", func(t *testing.T) {
		_, err := store.RecomputeUserStats(ctx, "not-an-address")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("profile upsert keeps unset fields", func(t *testing.T) {
		user, err := store.UpsertUserProfile(ctx, UpsertUserProfileInput{
			WalletAddress: buyerAddr,
			Username:      types.StringPtr("alice"),
			Email:         types.StringPtr("alice@example.com"),
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", types.SafeString(user.Username))

		login := time.Now().UTC().Truncate(time.Second)
		user, err = store.UpsertUserProfile(ctx, UpsertUserProfileInput{
			WalletAddress: buyerAddr,
			Bio:           types.StringPtr("collector"),
			LoginAt:       &login,
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", types.SafeString(user.Username))
		assert.Equal(t, "alice@example.com", types.SafeString(user.Email))
		assert.Equal(t, "collector", types.SafeString(user.Bio))
		require.NotNil(t, user.LastLoginAt)
		assert.True(t, login.Equal(user.LastLoginAt.UTC()))

		assert.Len(t, changeTypes(t, store, schema.SubjectTypeUser, buyerAddr), 2)
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		user, err := store.GetUser(ctx, friendAddr)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// =============================================================================
// Test: Queries
// =============================================================================

func testListBackgrounds(t *testing.T, store Store) {
	ctx := context.Background()
	for i, category := range []string{"birthday", "birthday", "wedding"} {
		id := uint64(i + 1)
		_, err := store.ApplyProjection(ctx, buildMintProjection(id, artistAddr, fmt.Sprintf("ipfs://bg%d", id), category, id))
		require.NoError(t, err)
	}

	t.Run("filter by category", func(t *testing.T) {
		backgrounds, total, err := store.ListBackgrounds(ctx, BackgroundQueryFilter{Category: "birthday", Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		require.Len(t, backgrounds, 2)
		assert.Equal(t, uint64(2), backgrounds[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		backgrounds, total, err := store.ListBackgrounds(ctx, BackgroundQueryFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, uint64(3), total)
		require.Len(t, backgrounds, 1)
		assert.Equal(t, uint64(2), backgrounds[0].ID)
	})

	t.Run("categories with counts", func(t *testing.T) {
		categories, err := store.GetCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []CategoryCount{{Category: "birthday", Count: 2}, {Category: "wedding", Count: 1}}, categories)
	})

	t.Run("by ids", func(t *testing.T) {
		backgrounds, err := store.GetBackgroundsByIDs(ctx, []uint64{1, 3, 7})
		require.NoError(t, err)
		assert.Len(t, backgrounds, 2)
		assert.Contains(t, backgrounds, uint64(3))
	})
}

func testListGiftCards(t *testing.T, store Store) {
	ctx := context.Background()
	_, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 1))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildMintProjection(2, artistAddr, "ipfs://bg2", "wedding", 1))
	require.NoError(t, err)

	cards := []struct {
		id      uint64
		bg      uint64
		price   schema.Wei
		message string
	}{
		{1, 1, "9", "Happy birthday"},
		{2, 1, "10", "see you soon"},
		{3, 2, "100000000000000000", "Congrats on the wedding"},
		{4, 2, "20000000000000000", "happy day"},
	}
	for _, c := range cards {
		_, err := store.ApplyProjection(ctx, buildCreateProjection(c.id, c.bg, creatorAddr, c.price, c.message, 2+c.id))
		require.NoError(t, err)
	}
	_, err = store.ApplyProjection(ctx, buildSecretProjection(4, creatorAddr, "0x"+fmt.Sprintf("%064x", 1), 20))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildOwnershipProjection(
		domain.EventKindGiftCardPurchased, schema.TransactionTypePurchase, 2, creatorAddr, buyerAddr, 21, 0))
	require.NoError(t, err)

	ids := func(cards []*schema.GiftCard) []uint64 {
		var out []uint64
		for _, c := range cards {
			out = append(out, c.ID)
		}
		return out
	}
	wei := func(s string) *schema.Wei {
		w := schema.Wei(s)
		return &w
	}
	yes := true

	tests := []struct {
		name     string
		filter   GiftCardQueryFilter
		expected []uint64
		total    uint64
	}{
		{name: "all by id", filter: GiftCardQueryFilter{}, expected: []uint64{1, 2, 3, 4}, total: 4},
		{name: "category", filter: GiftCardQueryFilter{Category: "wedding"}, expected: []uint64{3, 4}, total: 2},
		{name: "min price compares numerically", filter: GiftCardQueryFilter{MinPrice: wei("10")}, expected: []uint64{2, 3, 4}, total: 3},
		{name: "price range", filter: GiftCardQueryFilter{MinPrice: wei("10"), MaxPrice: wei("20000000000000000")}, expected: []uint64{2, 4}, total: 2},
		{name: "sort by price desc", filter: GiftCardQueryFilter{SortBy: GiftCardSortPrice, OrderDesc: true}, expected: []uint64{3, 4, 2, 1}, total: 4},
		{name: "owner", filter: GiftCardQueryFilter{Owner: buyerAddr}, expected: []uint64{2}, total: 1},
		{name: "creator", filter: GiftCardQueryFilter{Creator: creatorAddr, Limit: 2, Offset: 1}, expected: []uint64{2, 3}, total: 4},
		{name: "claimable", filter: GiftCardQueryFilter{Claimable: &yes}, expected: []uint64{4}, total: 1},
		{name: "message search ignores case", filter: GiftCardQueryFilter{MessageContains: "HAPPY"}, expected: []uint64{1, 4}, total: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, total, err := store.ListGiftCards(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.expected, ids(result))
		})
	}

	t.Run("user activity lists sent and received rows", func(t *testing.T) {
		txs, total, err := store.GetUserTransactions(ctx, buyerAddr, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, txs, 1)
		assert.Equal(t, schema.TransactionTypePurchase, txs[0].Type)

		txs, total, err = store.GetUserTransactions(ctx, creatorAddr, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), total)
		require.Len(t, txs, 2)
		assert.Equal(t, uint64(21), txs[0].BlockNumber)
	})
}

func testLeaderboards(t *testing.T, store Store) {
	ctx := context.Background()
	_, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 1))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildMintProjection(2, friendAddr, "ipfs://bg2", "birthday", 1))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildCreateProjection(1, 1, creatorAddr, "1", "a", 2))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildCreateProjection(2, 1, creatorAddr, "1", "b", 3))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildCreateProjection(3, 2, buyerAddr, "1", "c", 4))
	require.NoError(t, err)
	_, err = store.ApplyProjection(ctx, buildOwnershipProjection(
		domain.EventKindGiftCardTransferred, schema.TransactionTypeTransfer, 1, creatorAddr, friendAddr, 5, 0))
	require.NoError(t, err)

	tests := []struct {
		name     string
		board    LeaderboardType
		expected []LeaderboardEntry
	}{
		{
			name:     "top creators",
			board:    LeaderboardTopCreators,
			expected: []LeaderboardEntry{{Address: creatorAddr, Score: 2}, {Address: buyerAddr, Score: 1}},
		},
		{
			name:     "top artists by usage",
			board:    LeaderboardTopArtists,
			expected: []LeaderboardEntry{{Address: artistAddr, Score: 2}, {Address: friendAddr, Score: 1}},
		},
		{
			name:     "top receivers",
			board:    LeaderboardTopReceivers,
			expected: []LeaderboardEntry{{Address: friendAddr, Score: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := store.GetLeaderboard(ctx, tt.board, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, entries)
		})
	}

	t.Run("unknown board", func(t *testing.T) {
		_, err := store.GetLeaderboard(ctx, LeaderboardType("top_spenders"), 10)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func testMissingIDs(t *testing.T, store Store) {
	ctx := context.Background()
	for _, id := range []uint64{1, 2, 4} {
		_, err := store.ApplyProjection(ctx, buildMintProjection(id, artistAddr, fmt.Sprintf("ipfs://bg%d", id), "birthday", id))
		require.NoError(t, err)
	}

	missing, err := store.GetMissingBackgroundIDs(ctx, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 5, 6}, missing)

	missing, err = store.GetMissingBackgroundIDs(ctx, 6, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 5}, missing)

	missing, err = store.GetMissingBackgroundIDs(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = store.GetMissingGiftCardIDs(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, missing)
}

func testGetChanges(t *testing.T, store Store) {
	ctx := context.Background()
	seedGiftCard(t, store, 1, 1, "100", "hello")

	all, total, err := store.GetChanges(ctx, ChangesQueryFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, uint64(len(all)), total)

	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Cursor, all[i-1].Cursor)
	}

	anchor := all[0].Cursor
	after, total, err := store.GetChanges(ctx, ChangesQueryFilter{Anchor: &anchor, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, uint64(len(all)-1), total)
	require.Len(t, after, 1)
	assert.Equal(t, all[1].Cursor, after[0].Cursor)

	last := all[len(all)-1].Cursor
	none, total, err := store.GetChanges(ctx, ChangesQueryFilter{Anchor: &last})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, uint64(0), total)
}

// =============================================================================
// Test: Pending operations
// =============================================================================

func testPendingOperations(t *testing.T, store Store) {
	ctx := context.Background()
	submittedAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	giftCardID := uint64(7)

	op, err := store.CreatePendingOperation(ctx, CreatePendingOperationInput{
		TxHash:      "0xaaa",
		Operation:   "buyGiftCard",
		EntityType:  domain.EntityTypeGiftCard,
		EntityID:    &giftCardID,
		Caller:      buyerAddr,
		Request:     datatypes.JSON(`{"gift_card_id":7}`),
		SubmittedAt: submittedAt,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, op.ID)
	assert.Equal(t, schema.OperationStatusSubmitted, op.Status)

	_, err = store.CreatePendingOperation(ctx, CreatePendingOperationInput{
		TxHash:      "0xbbb",
		Operation:   "mintBackground",
		EntityType:  domain.EntityTypeBackground,
		Caller:      artistAddr,
		SubmittedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	t.Run("get by tx hash", func(t *testing.T) {
		got, err := store.GetPendingOperationByTxHash(ctx, "0xaaa")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, op.ID, got.ID)
		require.NotNil(t, got.EntityID)
		assert.Equal(t, giftCardID, *got.EntityID)

		missing, err := store.GetPendingOperationByTxHash(ctx, "0xmissing")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("update status and attempts", func(t *testing.T) {
		block := uint64(12)
		err := store.UpdatePendingOperation(ctx, "0xaaa", UpdatePendingOperationInput{
			Status:            schema.OperationStatusMirrorPending,
			BlockNumber:       &block,
			Event:             datatypes.JSON(`{"kind":"gift_card_purchased"}`),
			LastError:         types.StringPtr("connection reset"),
			IncrementAttempts: true,
		})
		require.NoError(t, err)

		got, err := store.GetPendingOperationByTxHash(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, schema.OperationStatusMirrorPending, got.Status)
		assert.Equal(t, 1, got.Attempts)
		assert.Equal(t, "connection reset", types.SafeString(got.LastError))
		require.NotNil(t, got.BlockNumber)
		assert.Equal(t, block, *got.BlockNumber)
		assert.JSONEq(t, `{"kind":"gift_card_purchased"}`, string(got.Event))
	})

	t.Run("update unknown marker", func(t *testing.T) {
		err := store.UpdatePendingOperation(ctx, "0xmissing", UpdatePendingOperationInput{Status: schema.OperationStatusApplied})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("list unresolved older than grace period", func(t *testing.T) {
		before := time.Now().UTC().Add(-time.Minute)
		ops, total, err := store.ListPendingOperations(ctx, PendingOperationFilter{
			Statuses:        schema.UnresolvedOperationStatuses,
			SubmittedBefore: &before,
			Limit:           10,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, ops, 1)
		assert.Equal(t, "0xaaa", ops[0].TxHash)
	})

	t.Run("count by status", func(t *testing.T) {
		counts, err := store.CountPendingOperationsByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[schema.OperationStatusMirrorPending])
		assert.Equal(t, int64(1), counts[schema.OperationStatusSubmitted])
	})

	t.Run("resolve", func(t *testing.T) {
		resolvedAt := time.Now().UTC()
		err := store.UpdatePendingOperation(ctx, "0xaaa", UpdatePendingOperationInput{
			Status:     schema.OperationStatusApplied,
			ResolvedAt: &resolvedAt,
		})
		require.NoError(t, err)

		got, err := store.GetPendingOperationByTxHash(ctx, "0xaaa")
		require.NoError(t, err)
		assert.True(t, got.Status.Resolved())
		assert.NotNil(t, got.ResolvedAt)
	})

	t.Run("resolved markers are terminal", func(t *testing.T) {
		for _, input := range []UpdatePendingOperationInput{
			{Status: schema.OperationStatusUnknown},
			{Status: schema.OperationStatusMirrorPending, IncrementAttempts: true},
			{Status: schema.OperationStatusFailed, LastError: types.StringPtr("reverted")},
			{LastError: types.StringPtr("late timeout"), IncrementAttempts: true},
		} {
			err := store.UpdatePendingOperation(ctx, "0xaaa", input)
			assert.ErrorIs(t, err, ErrOperationResolved)
		}

		got, err := store.GetPendingOperationByTxHash(ctx, "0xaaa")
		require.NoError(t, err)
		assert.Equal(t, schema.OperationStatusApplied, got.Status)
		assert.Equal(t, 1, got.Attempts)
		assert.Equal(t, "connection reset", types.SafeString(got.LastError))
	})

	t.Run("empty status keeps an unresolved one", func(t *testing.T) {
		err := store.UpdatePendingOperation(ctx, "0xbbb", UpdatePendingOperationInput{
			LastError:         types.StringPtr("not mined yet"),
			IncrementAttempts: true,
		})
		require.NoError(t, err)

		got, err := store.GetPendingOperationByTxHash(ctx, "0xbbb")
		require.NoError(t, err)
		assert.Equal(t, schema.OperationStatusSubmitted, got.Status)
		assert.Equal(t, 1, got.Attempts)
	})
}

func testSearchWildcards(t *testing.T, store Store) {
	ctx := context.Background()
	_, err := store.ApplyProjection(ctx, buildMintProjection(1, artistAddr, "ipfs://bg1", "birthday", 1))
	require.NoError(t, err)

	messages := []string{"100% yours", "1000 thanks", "gift_card for you", "giftXcard", `back\slash`}
	for i, m := range messages {
		id := uint64(i + 1)
		_, err := store.ApplyProjection(ctx, buildCreateProjection(id, 1, creatorAddr, "1", m, 2+id))
		require.NoError(t, err)
	}

	tests := []struct {
		term     string
		expected []uint64
	}{
		{term: "%", expected: []uint64{1}},
		{term: "0%", expected: []uint64{1}},
		{term: "_", expected: []uint64{3}},
		{term: "t_c", expected: []uint64{3}},
		{term: `\`, expected: []uint64{5}},
		{term: "GIFT", expected: []uint64{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			result, total, err := store.ListGiftCards(ctx, GiftCardQueryFilter{MessageContains: tt.term})
			require.NoError(t, err)
			assert.Equal(t, uint64(len(tt.expected)), total)

			var ids []uint64
			for _, c := range result {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.expected, ids)
		})
	}
}

// =============================================================================
// Test: Key-value
// =============================================================================

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()
	chain := string(domain.ChainLocal)

	cursor, err := store.GetBlockCursor(ctx, chain)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cursor)

	require.NoError(t, store.SetBlockCursor(ctx, chain, 100))
	require.NoError(t, store.SetBlockCursor(ctx, chain, 150))

	cursor, err = store.GetBlockCursor(ctx, chain)
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cursor)

	value, err := store.GetKeyValue(ctx, "block_cursor:"+chain)
	require.NoError(t, err)
	assert.Equal(t, "150", value)
}

func testKeyValueStore(t *testing.T, store Store) {
	ctx := context.Background()

	value, err := store.GetKeyValue(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetKeyValue(ctx, "sweeper:last_cycle", "a"))
	require.NoError(t, store.SetKeyValue(ctx, "sweeper:last_cycle", "b"))

	value, err = store.GetKeyValue(ctx, "sweeper:last_cycle")
	require.NoError(t, err)
	assert.Equal(t, "b", value)
}

func testApplyOrphanRows(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("gift card on an unknown background is rejected", func(t *testing.T) {
		_, err := store.ApplyProjection(ctx, buildCreateProjection(1, 999, creatorAddr, "100", "hello", 2))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParentMissing)

		gc, err := store.GetGiftCard(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, gc)

		txs, err := store.GetGiftCardTransactions(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("audit row for an unknown gift card is rejected", func(t *testing.T) {
		p := buildOwnershipProjection(domain.EventKindGiftCardTransferred, schema.TransactionTypeTransfer, 777, creatorAddr, buyerAddr, 5, 0)
		p.GiftCard = nil

		_, err := store.ApplyProjection(ctx, p)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParentMissing)

		txs, err := store.GetGiftCardTransactions(ctx, 777)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("creation succeeds once the background is mirrored", func(t *testing.T) {
		_, err := store.ApplyProjection(ctx, buildMintProjection(999, artistAddr, "ipfs://bg999", "birthday", 1))
		require.NoError(t, err)

		result, err := store.ApplyProjection(ctx, buildCreateProjection(1, 999, creatorAddr, "100", "hello", 2))
		require.NoError(t, err)
		assert.True(t, result.GiftCardChanged)
		assert.True(t, result.TransactionInserted)
	})
}

// testForeignKeyConstraints writes orphan rows below the store to check the schema itself refuses them
func testForeignKeyConstraints(t *testing.T, db *gorm.DB) {
	insert := func(row interface{}) error {
		return db.Transaction(func(tx *gorm.DB) error {
			return tx.Create(row).Error
		})
	}

	err := insert(&schema.GiftCard{
		ID:             1,
		CreatorAddress: creatorAddr,
		CurrentOwner:   creatorAddr,
		Price:          "100",
		BackgroundID:   999,
	})
	assert.Error(t, err, "gift card without background")

	err = insert(&schema.Transaction{
		LedgerRef:   "TRANSFER:777:0xorphan",
		GiftCardID:  777,
		FromAddress: creatorAddr,
		ToAddress:   buyerAddr,
		Type:        schema.TransactionTypeTransfer,
		Amount:      "0",
		TxHash:      "0xorphan",
		Timestamp:   time.Now().UTC(),
	})
	assert.Error(t, err, "transaction without gift card")

	require.NoError(t, insert(&schema.Background{
		ID:            999,
		ArtistAddress: artistAddr,
		ImageRef:      "ipfs://fk",
		Category:      "birthday",
		Price:         "0",
	}))
	assert.NoError(t, insert(&schema.GiftCard{
		ID:             1,
		CreatorAddress: creatorAddr,
		CurrentOwner:   creatorAddr,
		Price:          "100",
		BackgroundID:   999,
	}))
}

// RunStoreTests runs every store test against a database backend
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(*testing.T, Store)
	}{
		{"ApplyBackgroundMint", testApplyBackgroundMint},
		{"ApplyGiftCardCreate", testApplyGiftCardCreate},
		{"ApplyPartialUpdates", testApplyPartialUpdates},
		{"ApplySnapshotHeal", testApplySnapshotHeal},
		{"ApplyOrphanRows", testApplyOrphanRows},
		{"Users", testUsers},
		{"ListBackgrounds", testListBackgrounds},
		{"ListGiftCards", testListGiftCards},
		{"SearchWildcards", testSearchWildcards},
		{"Leaderboards", testLeaderboards},
		{"MissingIDs", testMissingIDs},
		{"GetChanges", testGetChanges},
		{"PendingOperations", testPendingOperations},
		{"BlockCursor", testBlockCursor},
		{"KeyValueStore", testKeyValueStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}

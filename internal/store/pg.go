package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/evrlink/evrlink-mirror/internal/domain"
	"github.com/evrlink/evrlink-mirror/internal/logger"
	"github.com/evrlink/evrlink-mirror/internal/store/schema"
	"github.com/evrlink/evrlink-mirror/internal/types"
)

// defaultMissingIDsLimit bounds a single catch-up scan
const defaultMissingIDsLimit = 1000

type pgStore struct {
	db      *gorm.DB
	cursors CursorStore
}

func hasDBResolver(db *gorm.DB) bool {
	return db != nil && db.Callback().Query().Get("gorm:db_resolver") != nil
}

// NewPGStore creates a new store instance. The gorm dialector may be PostgreSQL or SQLite.
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db, cursors: NewCursorStore(db)}
}

// Migrate creates or updates every mirror table
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(schema.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// PostgreSQL's limit of 65535 bind parameters per statement.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes the wildcards of s match literally in a LIKE pattern using ESCAPE '\'
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// forUpdate adds a row lock where the dialect supports one; SQLite serializes writers instead
func forUpdate(db *gorm.DB) *gorm.DB {
	if isPostgres(db) {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// positionGuard only lets an upsert overwrite a row whose last applied change is ordered before the incoming one
func positionGuard(table string) clause.Where {
	return clause.Where{Exprs: []clause.Expression{
		clause.Expr{SQL: fmt.Sprintf(
			"%[1]s.last_block < excluded.last_block OR (%[1]s.last_block = excluded.last_block AND %[1]s.last_log_index < excluded.last_log_index)",
			table)},
	}}
}

func rowExists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// =============================================================================
// Projection
// =============================================================================

var backgroundColumns = []string{
	"artist_address", "image_ref", "category", "usage_count", "price",
	"last_block", "last_log_index", "updated_at",
}

// ApplyProjection applies a single ledger change to the mirror in one transaction
func (s *pgStore) ApplyProjection(ctx context.Context, p Projection) (*ApplyResult, error) {
	result := &ApplyResult{}

	metaJSON, err := json.Marshal(schema.ChangeMeta{
		EventKind:   string(p.EventKind),
		TxHash:      p.TxHash,
		BlockNumber: p.Position.BlockNumber,
		LogIndex:    p.Position.LogIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change journal meta: %w", err)
	}

	changedAt := p.ChangedAt
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var journal []schema.ChangesJournal
		record := func(subject schema.SubjectType, subjectID string, added bool) {
			journal = append(journal, schema.ChangesJournal{
				ChangeType:  types.SubjectChangeType(subject, added),
				SubjectType: subject,
				SubjectID:   subjectID,
				ChangedAt:   changedAt,
				Meta:        metaJSON,
			})
		}
		recomputeUsage := func(backgroundID uint64) error {
			raised, err := recomputeBackgroundUsage(tx, backgroundID)
			if err != nil {
				return fmt.Errorf("failed to recompute background usage: %w", err)
			}
			if raised {
				result.BackgroundChanged = true
				record(schema.SubjectTypeBackground, strconv.FormatUint(backgroundID, 10), false)
			}
			return nil
		}

		// 1. Background
		if p.Background != nil {
			added, changed, err := upsertBackground(tx, p.Background, p.Position)
			if err != nil {
				return fmt.Errorf("failed to upsert background: %w", err)
			}
			if changed {
				result.BackgroundChanged = true
				record(schema.SubjectTypeBackground, strconv.FormatUint(p.Background.ID, 10), added)
			} else {
				result.Stale = true
			}
			if err := recomputeUsage(p.Background.ID); err != nil {
				return err
			}
		}

		// 2. Gift card
		if p.GiftCard != nil && p.GiftCard.Row != nil {
			if p.GiftCard.Create {
				// concurrent creations on one background must count each other's rows
				found, err := lockBackground(tx, p.GiftCard.Row.BackgroundID)
				if err != nil {
					return fmt.Errorf("failed to lock background: %w", err)
				}
				if !found {
					return fmt.Errorf("%w: background %d of gift card %d", ErrParentMissing, p.GiftCard.Row.BackgroundID, p.GiftCard.Row.ID)
				}
			}
			added, changed, err := writeGiftCard(tx, p.GiftCard, p.Position)
			if err != nil {
				return err
			}
			if changed {
				result.GiftCardChanged = true
				record(schema.SubjectTypeGiftCard, strconv.FormatUint(p.GiftCard.Row.ID, 10), added)
			} else {
				result.Stale = true
			}
			if added {
				if err := recomputeUsage(p.GiftCard.Row.BackgroundID); err != nil {
					return err
				}
			}
		}

		// 3. Audit row, deduplicated by ledger reference
		if p.Transaction != nil {
			row := *p.Transaction
			if p.GiftCard == nil || p.GiftCard.Row == nil || p.GiftCard.Row.ID != row.GiftCardID {
				found, err := rowExists(tx, &schema.GiftCard{}, "id = ?", row.GiftCardID)
				if err != nil {
					return fmt.Errorf("failed to check gift card: %w", err)
				}
				if !found {
					return fmt.Errorf("%w: gift card %d of transaction %s", ErrParentMissing, row.GiftCardID, row.LedgerRef)
				}
			}
			res := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "ledger_ref"}},
				DoNothing: true,
			}).Create(&row)
			if res.Error != nil {
				if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
					return fmt.Errorf("%w: gift card %d", ErrParentMissing, row.GiftCardID)
				}
				return fmt.Errorf("failed to create transaction: %w", res.Error)
			}
			result.TransactionInserted = res.RowsAffected > 0
		}

		// 4. Derived user counters
		seen := make(map[string]bool, len(p.Addresses))
		for _, addr := range p.Addresses {
			if !types.IsEthereumAddress(addr) {
				continue
			}
			addr = types.NormalizeAddress(addr)
			if seen[addr] {
				continue
			}
			seen[addr] = true

			_, changed, err := recomputeUserStats(tx, addr)
			if err != nil {
				return fmt.Errorf("failed to recompute user stats for %s: %w", addr, err)
			}
			if changed {
				result.UsersUpdated = append(result.UsersUpdated, addr)
				record(schema.SubjectTypeUser, addr, false)
			}
		}

		// 5. Change journal
		if len(journal) > 0 {
			if err := tx.CreateInBatches(journal, calculateSafeBatchSize(len(journal), 5)).Error; err != nil {
				return fmt.Errorf("failed to create change journal: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func upsertBackground(tx *gorm.DB, background *schema.Background, pos domain.Position) (added bool, changed bool, err error) {
	existed, err := rowExists(tx, &schema.Background{}, "id = ?", background.ID)
	if err != nil {
		return false, false, err
	}

	row := *background
	row.LastBlock = pos.BlockNumber
	row.LastLogIndex = pos.LogIndex

	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(backgroundColumns),
		Where:     positionGuard(row.TableName()),
	}).Create(&row)
	if res.Error != nil {
		return false, false, res.Error
	}

	changed = res.RowsAffected > 0
	return changed && !existed, changed, nil
}

// writeGiftCard inserts or updates a gift card. Partial changes only touch their columns;
// a partial change for an unknown gift card returns ErrRowMissing.
func writeGiftCard(tx *gorm.DB, change *GiftCardChange, pos domain.Position) (added bool, changed bool, err error) {
	existed, err := rowExists(tx, &schema.GiftCard{}, "id = ?", change.Row.ID)
	if err != nil {
		return false, false, fmt.Errorf("failed to check gift card: %w", err)
	}

	row := *change.Row
	row.LastBlock = pos.BlockNumber
	row.LastLogIndex = pos.LogIndex

	columns := change.Columns
	if columns == nil {
		columns = AllGiftCardColumns
	}

	if !existed {
		if !change.Create {
			return false, false, fmt.Errorf("%w: gift card %d", ErrRowMissing, row.ID)
		}

		assignments := append(append([]string{}, columns...), "last_block", "last_log_index", "updated_at")
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(assignments),
			Where:     positionGuard(row.TableName()),
		}).Create(&row)
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
				return false, false, fmt.Errorf("%w: background %d", ErrParentMissing, row.BackgroundID)
			}
			return false, false, fmt.Errorf("failed to create gift card: %w", res.Error)
		}
		return res.RowsAffected > 0, res.RowsAffected > 0, nil
	}

	values := map[string]interface{}{
		ColumnCreatorAddress:   row.CreatorAddress,
		ColumnCurrentOwner:     row.CurrentOwner,
		ColumnPrice:            row.Price,
		ColumnMessage:          row.Message,
		ColumnSecretCommitment: row.SecretCommitment,
		ColumnIsClaimable:      row.IsClaimable,
		ColumnBackgroundID:     row.BackgroundID,
	}
	updates := map[string]interface{}{
		"last_block":     row.LastBlock,
		"last_log_index": row.LastLogIndex,
	}
	for _, column := range columns {
		v, ok := values[column]
		if !ok {
			return false, false, fmt.Errorf("unknown gift card column: %s", column)
		}
		updates[column] = v
	}

	res := tx.Model(&schema.GiftCard{}).
		Where("id = ?", row.ID).
		Where("(last_block < ? OR (last_block = ? AND last_log_index < ?))", pos.BlockNumber, pos.BlockNumber, pos.LogIndex).
		Updates(updates)
	if res.Error != nil {
		return false, false, fmt.Errorf("failed to update gift card: %w", res.Error)
	}

	return false, res.RowsAffected > 0, nil
}

// lockBackground locks a background row and reports whether it exists
func lockBackground(tx *gorm.DB, backgroundID uint64) (bool, error) {
	var ids []uint64
	if err := forUpdate(tx.Model(&schema.Background{})).Where("id = ?", backgroundID).Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

// recomputeBackgroundUsage raises usage_count to the number of mirrored gift cards; it never lowers it
func recomputeBackgroundUsage(tx *gorm.DB, backgroundID uint64) (bool, error) {
	usage := tx.Model(&schema.GiftCard{}).Select("COUNT(*)").Where("background_id = ?", backgroundID)
	res := tx.Model(&schema.Background{}).
		Where("id = ? AND usage_count < (?)", backgroundID, usage).
		Update("usage_count", usage)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func countUserStats(tx *gorm.DB, address string) (schema.UserStats, error) {
	var stats schema.UserStats

	counters := []struct {
		target *uint64
		model  interface{}
		query  string
		args   []interface{}
	}{
		{&stats.GiftCardsCreated, &schema.GiftCard{}, "creator_address = ?", []interface{}{address}},
		{&stats.BackgroundsMinted, &schema.Background{}, "artist_address = ?", []interface{}{address}},
		{&stats.GiftCardsSent, &schema.Transaction{}, "from_address = ? AND type IN ?", []interface{}{
			address, []schema.TransactionType{schema.TransactionTypeTransfer, schema.TransactionTypeClaim},
		}},
		{&stats.GiftCardsReceived, &schema.Transaction{}, "to_address = ? AND type IN ?", []interface{}{
			address, []schema.TransactionType{schema.TransactionTypePurchase, schema.TransactionTypeTransfer, schema.TransactionTypeClaim},
		}},
	}

	for _, c := range counters {
		var count int64
		if err := tx.Model(c.model).Where(c.query, c.args...).Count(&count).Error; err != nil {
			return stats, err
		}
		*c.target = uint64(count) //nolint:gosec,G115
	}

	return stats, nil
}

// recomputeUserStats locks the user row before counting so concurrent projections see each other's rows
func recomputeUserStats(tx *gorm.DB, address string) (*schema.User, bool, error) {
	seed := schema.User{WalletAddress: address}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoNothing: true,
	}).Create(&seed).Error; err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	var user schema.User
	if err := forUpdate(tx).Where("wallet_address = ?", address).First(&user).Error; err != nil {
		return nil, false, fmt.Errorf("failed to lock user: %w", err)
	}

	stats, err := countUserStats(tx, address)
	if err != nil {
		return nil, false, fmt.Errorf("failed to count user stats: %w", err)
	}

	current := schema.UserStats{
		GiftCardsCreated:  user.GiftCardsCreated,
		GiftCardsSent:     user.GiftCardsSent,
		GiftCardsReceived: user.GiftCardsReceived,
		BackgroundsMinted: user.BackgroundsMinted,
	}
	if current == stats {
		return &user, false, nil
	}

	if err := tx.Model(&user).Updates(map[string]interface{}{
		"gift_cards_created":  stats.GiftCardsCreated,
		"gift_cards_sent":     stats.GiftCardsSent,
		"gift_cards_received": stats.GiftCardsReceived,
		"backgrounds_minted":  stats.BackgroundsMinted,
	}).Error; err != nil {
		return nil, false, fmt.Errorf("failed to update user stats: %w", err)
	}

	user.GiftCardsCreated = stats.GiftCardsCreated
	user.GiftCardsSent = stats.GiftCardsSent
	user.GiftCardsReceived = stats.GiftCardsReceived
	user.BackgroundsMinted = stats.BackgroundsMinted

	return &user, true, nil
}

// RecomputeUserStats recomputes the derived counters of a user from the mirror tables
func (s *pgStore) RecomputeUserStats(ctx context.Context, address string) (*schema.User, error) {
	if !types.IsEthereumAddress(address) {
		return nil, fmt.Errorf("%w: invalid address %q", domain.ErrValidation, address)
	}
	address = types.NormalizeAddress(address)

	var user *schema.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, changed, err := recomputeUserStats(tx, address)
		if err != nil {
			return err
		}
		user = u

		if !changed {
			return nil
		}
		return tx.Create(&schema.ChangesJournal{
			ChangeType:  schema.ChangeTypeUserUpdated,
			SubjectType: schema.SubjectTypeUser,
			SubjectID:   address,
			ChangedAt:   time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpsertUserProfile creates or updates the profile fields of a user
func (s *pgStore) UpsertUserProfile(ctx context.Context, input UpsertUserProfileInput) (*schema.User, error) {
	if !types.IsEthereumAddress(input.WalletAddress) {
		return nil, fmt.Errorf("%w: invalid address %q", domain.ErrValidation, input.WalletAddress)
	}
	address := types.NormalizeAddress(input.WalletAddress)

	var user schema.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := schema.User{WalletAddress: address}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "wallet_address"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		updates := map[string]interface{}{}
		if input.Username != nil {
			updates["username"] = *input.Username
		}
		if input.Email != nil {
			updates["email"] = *input.Email
		}
		if input.Bio != nil {
			updates["bio"] = *input.Bio
		}
		if input.ProfileImageURL != nil {
			updates["profile_image_url"] = *input.ProfileImageURL
		}
		if input.LoginAt != nil {
			updates["last_login_at"] = *input.LoginAt
		}

		if len(updates) > 0 {
			if err := tx.Model(&schema.User{}).Where("wallet_address = ?", address).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update user profile: %w", err)
			}
			if err := tx.Create(&schema.ChangesJournal{
				ChangeType:  schema.ChangeTypeUserUpdated,
				SubjectType: schema.SubjectTypeUser,
				SubjectID:   address,
				ChangedAt:   time.Now().UTC(),
			}).Error; err != nil {
				return fmt.Errorf("failed to create change journal: %w", err)
			}
		}

		return tx.Where("wallet_address = ?", address).First(&user).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// =============================================================================
// Backgrounds
// =============================================================================

// GetBackground retrieves a background by ledger ID
func (s *pgStore) GetBackground(ctx context.Context, id uint64) (*schema.Background, error) {
	var background schema.Background
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&background).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get background: %w", err)
	}
	return &background, nil
}

// GetBackgroundByImageRef retrieves a background by image reference
func (s *pgStore) GetBackgroundByImageRef(ctx context.Context, imageRef string) (*schema.Background, error) {
	var background schema.Background
	err := s.db.WithContext(ctx).Where("image_ref = ?", imageRef).First(&background).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get background by image ref: %w", err)
	}
	return &background, nil
}

// GetBackgroundsByIDs retrieves backgrounds keyed by ID
func (s *pgStore) GetBackgroundsByIDs(ctx context.Context, ids []uint64) (map[uint64]*schema.Background, error) {
	result := make(map[uint64]*schema.Background, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var backgrounds []*schema.Background
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&backgrounds).Error; err != nil {
		return nil, fmt.Errorf("failed to get backgrounds: %w", err)
	}
	for _, b := range backgrounds {
		result[b.ID] = b
	}

	return result, nil
}

// ListBackgrounds retrieves backgrounds with filters and pagination, newest first
func (s *pgStore) ListBackgrounds(ctx context.Context, filter BackgroundQueryFilter) ([]*schema.Background, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Background{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ArtistAddress != "" {
		query = query.Where("artist_address = ?", filter.ArtistAddress)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count backgrounds: %w", err)
	}

	query = query.Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(int(filter.Offset)) //nolint:gosec,G115
	}

	var backgrounds []*schema.Background
	if err := query.Find(&backgrounds).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list backgrounds: %w", err)
	}

	return backgrounds, uint64(total), nil //nolint:gosec,G115
}

// GetCategories returns every background category with its background count
func (s *pgStore) GetCategories(ctx context.Context) ([]CategoryCount, error) {
	var categories []CategoryCount
	err := s.db.WithContext(ctx).
		Model(&schema.Background{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC, category ASC").
		Scan(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// =============================================================================
// Gift cards
// =============================================================================

// GetGiftCard retrieves a gift card by ledger ID
func (s *pgStore) GetGiftCard(ctx context.Context, id uint64) (*schema.GiftCard, error) {
	var giftCard schema.GiftCard
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&giftCard).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gift card: %w", err)
	}
	return &giftCard, nil
}

// weiCondition compares a wei column with a bound. SQLite keeps wei as text, so
// integers are compared by digit count first and then lexically.
func weiCondition(db *gorm.DB, column string, op string, bound schema.Wei) (string, []interface{}) {
	value := bound.Int().String()
	if isPostgres(db) {
		return fmt.Sprintf("%s %s CAST(? AS numeric)", column, op), []interface{}{value}
	}

	strict := "<"
	if op == ">=" {
		strict = ">"
	}
	return fmt.Sprintf("(length(%[1]s) %[2]s ? OR (length(%[1]s) = ? AND %[1]s %[3]s ?))", column, strict, op),
		[]interface{}{len(value), len(value), value}
}

func weiOrder(db *gorm.DB, column string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	if isPostgres(db) {
		return fmt.Sprintf("%s %s", column, dir)
	}
	return fmt.Sprintf("length(%[1]s) %[2]s, %[1]s %[2]s", column, dir)
}

// ListGiftCards retrieves gift cards with filters, sorting and pagination
func (s *pgStore) ListGiftCards(ctx context.Context, filter GiftCardQueryFilter) ([]*schema.GiftCard, uint64, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&schema.GiftCard{})

	if filter.Category != "" {
		query = query.Where("background_id IN (?)",
			db.Model(&schema.Background{}).Select("id").Where("category = ?", filter.Category))
	}
	if filter.MinPrice != nil {
		cond, args := weiCondition(db, "price", ">=", *filter.MinPrice)
		query = query.Where(cond, args...)
	}
	if filter.MaxPrice != nil {
		cond, args := weiCondition(db, "price", "<=", *filter.MaxPrice)
		query = query.Where(cond, args...)
	}
	if filter.Owner != "" {
		query = query.Where("current_owner = ?", filter.Owner)
	}
	if filter.Creator != "" {
		query = query.Where("creator_address = ?", filter.Creator)
	}
	if filter.BackgroundID != nil {
		query = query.Where("background_id = ?", *filter.BackgroundID)
	}
	if filter.Claimable != nil {
		query = query.Where("is_claimable = ?", *filter.Claimable)
	}
	if filter.MessageContains != "" {
		like := "LIKE"
		if isPostgres(db) {
			like = "ILIKE"
		}
		query = query.Where(fmt.Sprintf(`message %s ? ESCAPE '\'`, like), "%"+escapeLike(filter.MessageContains)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count gift cards: %w", err)
	}

	dir := "ASC"
	if filter.OrderDesc {
		dir = "DESC"
	}
	switch filter.SortBy {
	case GiftCardSortPrice:
		query = query.Order(weiOrder(db, "price", filter.OrderDesc)).Order("id " + dir)
	case GiftCardSortCreated:
		query = query.Order("created_at " + dir).Order("id " + dir)
	default:
		query = query.Order("id " + dir)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(int(filter.Offset)) //nolint:gosec,G115
	}

	var giftCards []*schema.GiftCard
	if err := query.Find(&giftCards).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list gift cards: %w", err)
	}

	return giftCards, uint64(total), nil //nolint:gosec,G115
}

// GetGiftCardTransactions retrieves the audit trail of a gift card, oldest first
func (s *pgStore) GetGiftCardTransactions(ctx context.Context, giftCardID uint64) ([]*schema.Transaction, error) {
	var txs []*schema.Transaction
	err := s.db.WithContext(ctx).
		Where("gift_card_id = ?", giftCardID).
		Order("block_number ASC, log_index ASC, id ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get gift card transactions: %w", err)
	}
	return txs, nil
}

// =============================================================================
// Users
// =============================================================================

// GetUser retrieves a user by wallet address
func (s *pgStore) GetUser(ctx context.Context, address string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("wallet_address = ?", address).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserTransactions retrieves transactions sent or received by an address, newest first
func (s *pgStore) GetUserTransactions(ctx context.Context, address string, limit int, offset uint64) ([]*schema.Transaction, uint64, error) {
	query := s.db.WithContext(ctx).
		Model(&schema.Transaction{}).
		Where("from_address = ? OR to_address = ?", address, address)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user transactions: %w", err)
	}

	query = query.Order("block_number DESC, log_index DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(int(offset)) //nolint:gosec,G115
	}

	var txs []*schema.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get user transactions: %w", err)
	}

	return txs, uint64(total), nil //nolint:gosec,G115
}

// GetLeaderboard returns the top addresses of a board
func (s *pgStore) GetLeaderboard(ctx context.Context, board LeaderboardType, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	db := s.db.WithContext(ctx)
	var query *gorm.DB
	switch board {
	case LeaderboardTopCreators:
		query = db.Model(&schema.User{}).
			Select("wallet_address AS address, gift_cards_created AS score").
			Where("gift_cards_created > 0")
	case LeaderboardTopReceivers:
		query = db.Model(&schema.User{}).
			Select("wallet_address AS address, gift_cards_received AS score").
			Where("gift_cards_received > 0")
	case LeaderboardTopArtists:
		query = db.Model(&schema.Background{}).
			Select("artist_address AS address, CAST(SUM(usage_count) AS BIGINT) AS score").
			Group("artist_address")
	default:
		return nil, fmt.Errorf("%w: unknown leaderboard %q", domain.ErrValidation, board)
	}

	var entries []LeaderboardEntry
	if err := query.Order("score DESC, address ASC").Limit(limit).Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get leaderboard %s: %w", board, err)
	}

	return entries, nil
}

// =============================================================================
// Catch-up
// =============================================================================

// GetMissingBackgroundIDs returns IDs in [1, upTo] not present in the mirror
func (s *pgStore) GetMissingBackgroundIDs(ctx context.Context, upTo uint64, limit int) ([]uint64, error) {
	return s.missingIDs(ctx, &schema.Background{}, upTo, limit)
}

// GetMissingGiftCardIDs returns IDs in [1, upTo] not present in the mirror
func (s *pgStore) GetMissingGiftCardIDs(ctx context.Context, upTo uint64, limit int) ([]uint64, error) {
	return s.missingIDs(ctx, &schema.GiftCard{}, upTo, limit)
}

// missingIDs walks the sorted IDs of a table and collects the gaps. Ledger IDs are sequential from 1.
func (s *pgStore) missingIDs(ctx context.Context, model interface{}, upTo uint64, limit int) ([]uint64, error) {
	if limit <= 0 {
		limit = defaultMissingIDsLimit
	}
	missing := []uint64{}
	if upTo == 0 {
		return missing, nil
	}

	var ids []uint64
	if err := s.db.WithContext(ctx).Model(model).Where("id <= ?", upTo).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get ids: %w", err)
	}

	next := uint64(1)
	for _, id := range ids {
		for ; next < id; next++ {
			missing = append(missing, next)
			if len(missing) >= limit {
				return missing, nil
			}
		}
		next = id + 1
	}
	for ; next <= upTo; next++ {
		missing = append(missing, next)
		if len(missing) >= limit {
			break
		}
	}

	return missing, nil
}

// =============================================================================
// Changes
// =============================================================================

// GetChanges retrieves journal entries after an anchor cursor, in cursor order
func (s *pgStore) GetChanges(ctx context.Context, filter ChangesQueryFilter) ([]*schema.ChangesJournal, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.ChangesJournal{})

	if filter.Anchor != nil {
		query = query.Where("id > ?", *filter.Anchor)
	}
	if len(filter.SubjectTypes) > 0 {
		query = query.Where("subject_type IN ?", filter.SubjectTypes)
	}
	if len(filter.SubjectIDs) > 0 {
		query = query.Where("subject_id IN ?", filter.SubjectIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count changes: %w", err)
	}

	query = query.Order("id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var changes []*schema.ChangesJournal
	if err := query.Find(&changes).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query changes: %w", err)
	}

	return changes, uint64(total), nil //nolint:gosec,G115
}

// =============================================================================
// Pending operations
// =============================================================================

// CreatePendingOperation records a submitted ledger transaction
func (s *pgStore) CreatePendingOperation(ctx context.Context, input CreatePendingOperationInput) (*schema.PendingOperation, error) {
	submittedAt := input.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	op := schema.PendingOperation{
		ID:          ulid.Make().String(),
		TxHash:      input.TxHash,
		Operation:   input.Operation,
		EntityType:  input.EntityType,
		EntityID:    input.EntityID,
		Caller:      input.Caller,
		Status:      schema.OperationStatusSubmitted,
		Request:     input.Request,
		SubmittedAt: submittedAt,
	}

	if err := s.db.WithContext(ctx).Create(&op).Error; err != nil {
		return nil, fmt.Errorf("failed to create pending operation: %w", err)
	}

	return &op, nil
}

// GetPendingOperationByTxHash retrieves the marker of a transaction.
// Markers are read right after being written, so a replica miss is retried on the primary.
func (s *pgStore) GetPendingOperationByTxHash(ctx context.Context, txHash string) (*schema.PendingOperation, error) {
	query := func(db *gorm.DB) (*schema.PendingOperation, error) {
		var op schema.PendingOperation
		if err := db.WithContext(ctx).Where("tx_hash = ?", txHash).First(&op).Error; err != nil {
			return nil, err
		}
		return &op, nil
	}

	op, err := query(s.db)
	if err == nil {
		return op, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get pending operation: %w", err)
	}
	if !hasDBResolver(s.db) {
		return nil, nil
	}

	op, err = query(s.db.Clauses(dbresolver.Write))
	if err == nil {
		return op, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get pending operation: %w", err)
}

// UpdatePendingOperation moves a marker to a new status
func (s *pgStore) UpdatePendingOperation(ctx context.Context, txHash string, input UpdatePendingOperationInput) error {
	updates := map[string]interface{}{}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	if input.EntityID != nil {
		updates["entity_id"] = *input.EntityID
	}
	if input.BlockNumber != nil {
		updates["block_number"] = *input.BlockNumber
	}
	if len(input.Event) > 0 {
		updates["event"] = input.Event
	}
	if input.LastError != nil {
		updates["last_error"] = *input.LastError
	}
	if input.IncrementAttempts {
		updates["attempts"] = gorm.Expr("attempts + 1")
	}
	if input.ResolvedAt != nil {
		updates["resolved_at"] = *input.ResolvedAt
	}
	if len(updates) == 0 {
		return nil
	}

	// applied and failed are terminal
	res := s.db.WithContext(ctx).
		Model(&schema.PendingOperation{}).
		Where("tx_hash = ? AND status IN ?", txHash, schema.UnresolvedOperationStatuses).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update pending operation: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current schema.PendingOperation
	err := s.db.WithContext(ctx).
		Select("status").
		Where("tx_hash = ?", txHash).
		First(&current).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.WarnCtx(ctx, "Pending operation not found", zap.String("tx_hash", txHash))
		return fmt.Errorf("%w: pending operation %s", domain.ErrNotFound, txHash)
	}
	if err != nil {
		return fmt.Errorf("failed to get pending operation: %w", err)
	}
	return fmt.Errorf("%w: %s is %s", ErrOperationResolved, txHash, current.Status)
}

// ListPendingOperations retrieves markers with filters and pagination, oldest first
func (s *pgStore) ListPendingOperations(ctx context.Context, filter PendingOperationFilter) ([]*schema.PendingOperation, uint64, error) {
	query := s.db.WithContext(ctx).Model(&schema.PendingOperation{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.SubmittedBefore != nil {
		query = query.Where("submitted_at < ?", *filter.SubmittedBefore)
	}
	if filter.Caller != "" {
		query = query.Where("caller = ?", filter.Caller)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count pending operations: %w", err)
	}

	query = query.Order("submitted_at ASC, id ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(int(filter.Offset)) //nolint:gosec,G115
	}

	var ops []*schema.PendingOperation
	if err := query.Find(&ops).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list pending operations: %w", err)
	}

	return ops, uint64(total), nil //nolint:gosec,G115
}

// CountPendingOperationsByStatus counts markers per status
func (s *pgStore) CountPendingOperationsByStatus(ctx context.Context) (map[schema.OperationStatus]int64, error) {
	var rows []struct {
		Status schema.OperationStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).
		Model(&schema.PendingOperation{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count pending operations: %w", err)
	}

	counts := make(map[schema.OperationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// =============================================================================
// Key-value
// =============================================================================

// GetBlockCursor retrieves the last processed block number for a chain
func (s *pgStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	return s.cursors.GetBlockCursor(ctx, chain)
}

// SetBlockCursor stores the last processed block number for a chain
func (s *pgStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	return s.cursors.SetBlockCursor(ctx, chain, blockNumber)
}

// SetKeyValue stores a value by key
func (s *pgStore) SetKeyValue(ctx context.Context, key string, value string) error {
	kv := schema.KeyValueStore{
		Key:   key,
		Value: value,
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set key-value: %w", err)
	}

	return nil
}

// GetKeyValue retrieves a value by key from the key-value store
func (s *pgStore) GetKeyValue(ctx context.Context, key string) (string, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get key-value: %w", err)
	}

	return kv.Value, nil
}

package store

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var sqliteSeq atomic.Uint64

// initSQLiteTestDB opens a fresh in-memory database per test
func initSQLiteTestDB(t *testing.T) Store {
	dsn := fmt.Sprintf("file:mirror_test_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	db, err := Open(DriverSQLite, dsn, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return NewPGStore(db)
}

func cleanupSQLiteTestDB(t *testing.T) {}

// TestSQLiteStore runs all store tests against in-memory SQLite
func TestSQLiteStore(t *testing.T) {
	RunStoreTests(t, initSQLiteTestDB, cleanupSQLiteTestDB)
}

func TestSQLiteForeignKeys(t *testing.T) {
	dsn := fmt.Sprintf("file:mirror_fk_%d?mode=memory&cache=shared", sqliteSeq.Add(1))
	db, err := Open(DriverSQLite, dsn, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	testForeignKeyConstraints(t, db)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\% off`, escapeLike("100% off"))
	require.Equal(t, `gift\_card`, escapeLike("gift_card"))
	require.Equal(t, `a\\b`, escapeLike(`a\b`))
	require.Equal(t, "plain", escapeLike("plain"))
}

package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
)

// NewSQLiteDB opens a private in-memory SQLite database with every billing
// table migrated. The pool is limited to one connection, so concurrent
// transactions queue instead of failing with SQLITE_LOCKED. It is closed
// when the test ends.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to open SQLite database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate billing tables")
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

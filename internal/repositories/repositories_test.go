package repositories

import (
	"path/filepath"
	"testing"
	"vitals/internal/database"
	. "vitals/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a throwaway sqlite database with the full schema. Cache
// clients are left nil; CacheBuilder treats that as a no-op so repositories
// behave as if every read were a cache miss.
func newTestDB(t *testing.T) database.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	gormDB, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(&Sample{}, &OutlierFlag{}, &Prediction{}, &Rating{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return database.DB{SQL: gormDB}
}

package database

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"
	"vitals/config"
	"vitals/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNew_InvalidConfig(t *testing.T) {
	invalidConfig := config.Config{
		DatabaseDbPath:       "",
		DatabaseCacheAddress: "",
		DatabaseCachePort:    0,
	}

	_, err := New(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is empty")
}

func TestInitializeSQLiteDB_Success(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	testConfig := config.Config{
		DatabaseDbPath: dbPath,
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	assert.NoError(t, err)
	assert.NotNil(t, db.SQL)

	assert.FileExists(t, dbPath)

	if db.SQL != nil {
		sqlDB, _ := db.SQL.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}
}

func TestInitializeSQLiteDB_EmptyPath(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	testConfig := config.Config{
		DatabaseDbPath: "",
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database path is empty")
}

func TestInitializeSQLiteDB_InMemory(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	testConfig := config.Config{
		DatabaseDbPath: ":memory:",
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	assert.NoError(t, err)
	assert.NotNil(t, db.SQL)

	sqlDB, err := db.SQL.DB()
	assert.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())

	_ = sqlDB.Close()
}

func TestMigrate_CreatesSchema(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	tempDir := t.TempDir()
	testConfig := config.Config{
		DatabaseDbPath: filepath.Join(tempDir, "migrate.db"),
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	require.NoError(t, err)

	err = db.Migrate()
	require.NoError(t, err)

	for _, table := range []string{"samples", "outlier_flags", "predictions", "ratings"} {
		var count int64
		err = db.SQL.Raw(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&count).Error
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count, "expected table %s to exist", table)
	}

	// Running again must be a no-op, not a failure.
	err = db.Migrate()
	assert.NoError(t, err)

	sqlDB, _ := db.SQL.DB()
	_ = sqlDB.Close()
}

func TestClose_WithNilSQL(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
		SQL: nil,
	}

	err := db.Close()
	assert.NoError(t, err)
}

func TestSQLWithContext(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	testConfig := config.Config{
		DatabaseDbPath: ":memory:",
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	require.NoError(t, err)

	ctx := context.Background()
	gormDB := db.SQLWithContext(ctx)

	assert.NotNil(t, gormDB)
	assert.NotEqual(t, db.SQL, gormDB)

	if db.SQL != nil {
		sqlDB, _ := db.SQL.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}
}

func TestTXDefer_Success(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	testConfig := config.Config{
		DatabaseDbPath: filepath.Join(t.TempDir(), "txdefer.db"),
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	require.NoError(t, err)

	err = db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	assert.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "test").Error
	assert.NoError(t, err)

	TXDefer(tx, db.log)

	var count int64
	err = db.SQL.Model(&struct{}{}).Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	sqlDB, _ := db.SQL.DB()
	_ = sqlDB.Close()
}

func TestTXDefer_WithTransactionError(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	testConfig := config.Config{
		DatabaseDbPath: filepath.Join(t.TempDir(), "txdefer.db"),
	}

	err := db.initializeSQLiteDB(&gorm.Config{}, testConfig)
	require.NoError(t, err)

	err = db.SQL.Exec("CREATE TABLE test_table (id INTEGER PRIMARY KEY, name TEXT)").Error
	require.NoError(t, err)

	tx := db.SQL.Begin()
	assert.NoError(t, tx.Error)

	err = tx.Exec("INSERT INTO test_table (name) VALUES (?)", "doomed").Error
	assert.NoError(t, err)

	tx.Error = fmt.Errorf("simulated transaction error")
	TXDefer(tx, db.log)

	var count int64
	err = db.SQL.Model(&struct{}{}).Table("test_table").Count(&count).Error
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)

	sqlDB, _ := db.SQL.DB()
	_ = sqlDB.Close()
}

func TestInitializeCacheDB_MissingConfig(t *testing.T) {
	db := &DB{
		log: logger.New("test"),
	}

	invalidConfig := config.Config{
		DatabaseCacheAddress: "",
		DatabaseCachePort:    6379,
	}

	err := db.initializeCacheDB(invalidConfig)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache address is empty")

	invalidConfig2 := config.Config{
		DatabaseCacheAddress: "localhost",
		DatabaseCachePort:    0,
	}

	err = db.initializeCacheDB(invalidConfig2)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cache address is empty")
}

// CacheBuilder with a nil client is a deliberate no-op so repositories can
// run without a cache in tests.

func TestCacheBuilder_NilClientSet(t *testing.T) {
	err := NewCacheBuilder(nil, "series:user@example.com:HeartRateRecord").
		WithStruct(map[string]string{"hello": "world"}).
		WithTTL(5 * time.Minute).
		Set()
	assert.NoError(t, err)
}

func TestCacheBuilder_NilClientGet(t *testing.T) {
	var dest map[string]string
	found, err := NewCacheBuilder(nil, "series:user@example.com:HeartRateRecord").Get(&dest)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, dest)
}

func TestCacheBuilder_NilClientDelete(t *testing.T) {
	err := NewCacheBuilder(nil, "series:user@example.com:HeartRateRecord").Delete()
	assert.NoError(t, err)
}

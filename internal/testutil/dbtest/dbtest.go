// Package dbtest opens throwaway sqlite databases for repository and usecase tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"creator-marketplace/internal/domain/user"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private in-memory database with models migrated. One
// connection keeps every statement on the same memory database.
func Open(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	migrate(t, db, models)
	return db
}

// OpenFile returns a WAL-journaled database file with several connections, for
// tests that race transactions against each other. Transactions begin
// IMMEDIATE so writers queue on the busy timeout the way row locks queue them
// on mysql.
func OpenFile(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "market.db")
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite file: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	migrate(t, db, models)
	return db
}

func migrate(t *testing.T, db *gorm.DB, models []any) {
	t.Helper()
	if len(models) == 0 {
		return
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
}

// SeedUser inserts a user row; the users table must be migrated.
func SeedUser(t *testing.T, db *gorm.DB, userID string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{UserID: userID, Role: role, Name: userID}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", userID, err)
	}
	return u
}

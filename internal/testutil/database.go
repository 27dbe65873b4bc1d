// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"testing"

	"expensetracker/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AllModels is the list of all GORM models to auto-migrate in tests.
var AllModels = []interface{}{
	&models.User{},
	&models.RefreshToken{},
	&models.PasswordResetToken{},
	&models.Currency{},
	&models.AccountType{},
	&models.Account{},
	&models.Category{},
	&models.SubCategory{},
	&models.Transaction{},
	&models.Budget{},
	&models.Goal{},
	&models.AuditLog{},
}

// OpenSQLite opens a named shared-cache in-memory database and migrates all models.
func OpenSQLite(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(AllModels...); err != nil {
		return nil, err
	}
	return db, nil
}

// SetupTestDB creates an isolated in-memory SQLite database with all models migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenSQLite(fmt.Sprintf("unit%d", nextID()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensetracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal, failing loudly on typos in test tables.
func Amount(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// CreateTestUser creates a local user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a local user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	hashed := string(hash)

	user := &models.User{
		Email:           email,
		NormalizedEmail: email,
		PasswordHash:    &hashed,
		FullName:        "Test User",
		Locale:          "en-US",
		Timezone:        "UTC",
		IsActive:        true,
		Provider:        models.AuthProviderLocal,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCurrency creates a currency with a unique three-letter code.
func CreateTestCurrency(t *testing.T, db *gorm.DB, userID string) *models.Currency {
	t.Helper()
	n := nextID()
	code := string([]byte{'A' + byte(n%26), 'A' + byte(n/26%26), 'A' + byte(n/676%26)})
	return CreateTestCurrencyWithCode(t, db, userID, code)
}

// CreateTestCurrencyWithCode creates a currency with the given code.
func CreateTestCurrencyWithCode(t *testing.T, db *gorm.DB, userID, code string) *models.Currency {
	t.Helper()

	currency := &models.Currency{
		UserID: userID,
		Code:   code,
		Symbol: "$",
		Name:   "Currency " + code,
	}
	if err := db.Create(currency).Error; err != nil {
		t.Fatalf("failed to create test currency: %v", err)
	}
	return currency
}

// CreateTestAccountType creates an account type with a unique name.
func CreateTestAccountType(t *testing.T, db *gorm.DB) *models.AccountType {
	t.Helper()

	at := &models.AccountType{Name: fmt.Sprintf("Type %d", nextID())}
	if err := db.Create(at).Error; err != nil {
		t.Fatalf("failed to create test account type: %v", err)
	}
	return at
}

// CreateTestAccount creates a net-worth account with zero opening balance,
// along with its own currency and account type.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID string) *models.Account {
	t.Helper()
	return CreateTestAccountWithBalance(t, db, userID, decimal.Zero)
}

// CreateTestAccountWithBalance creates a net-worth account with the given opening balance.
func CreateTestAccountWithBalance(t *testing.T, db *gorm.DB, userID string, opening decimal.Decimal) *models.Account {
	t.Helper()

	currency := CreateTestCurrency(t, db, userID)
	at := CreateTestAccountType(t, db)

	account := &models.Account{
		UserID:            userID,
		Name:              fmt.Sprintf("Test Account %d", nextID()),
		AccountTypeID:     at.ID,
		CurrencyID:        currency.ID,
		OpeningBalance:    opening,
		IncludeInNetworth: true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category of the given type with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestSubCategory creates a subcategory under categoryID.
func CreateTestSubCategory(t *testing.T, db *gorm.DB, categoryID string) *models.SubCategory {
	t.Helper()

	sub := &models.SubCategory{
		CategoryID: categoryID,
		Name:       fmt.Sprintf("Test SubCategory %d", nextID()),
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("failed to create test subcategory: %v", err)
	}
	return sub
}

// CreateTestTransaction creates a transaction dated at date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, accountID, categoryID string, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		AccountID:       accountID,
		CategoryID:      categoryID,
		Description:     fmt.Sprintf("Test Transaction %d", nextID()),
		Amount:          amount,
		TransactionDate: date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates an active budget effective from the first of
// effectiveFrom's month.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, amount decimal.Decimal, effectiveFrom time.Time) *models.Budget {
	t.Helper()

	u := effectiveFrom.UTC()
	budget := &models.Budget{
		UserID:        userID,
		CategoryID:    categoryID,
		Amount:        amount,
		EffectiveFrom: time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoal creates a goal with the given status, target 1000 and no opening amount.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID, categoryID string, status models.GoalStatus, startDate time.Time) *models.Goal {
	t.Helper()

	goal := &models.Goal{
		UserID:        userID,
		Name:          fmt.Sprintf("Test Goal %d", nextID()),
		TargetAmount:  Amount("1000"),
		CurrentAmount: decimal.Zero,
		CategoryID:    categoryID,
		StartDate:     startDate.UTC(),
		Status:        status,
		Priority:      models.GoalPriorityMedium,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

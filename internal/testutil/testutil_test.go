package testutil_test

import (
	"testing"
	"time"

	"expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{
		"users", "refresh_tokens", "password_reset_tokens", "currencies", "account_types",
		"accounts", "categories", "sub_categories", "transactions", "budgets", "goals", "audit_logs",
	} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	db1 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db1)
	db2 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db2)

	testutil.CreateTestUser(t, db1)

	var count int64
	db2.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected isolated databases, found %d users in second db", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}
	if !user.HasLocalPassword() {
		t.Error("fixture user should have a local password")
	}

	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, testutil.Amount("50.25"))
	if !account.OpeningBalance.Equal(testutil.Amount("50.25")) {
		t.Errorf("expected opening balance 50.25, got %s", account.OpeningBalance)
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.Type != models.CategoryTypeExpense {
		t.Errorf("expected expense category, got %s", category.Type)
	}

	tx := testutil.CreateTestTransaction(t, db, user.ID, account.ID, category.ID, testutil.Amount("10"), time.Now())
	if !tx.Amount.Equal(testutil.Amount("10")) {
		t.Errorf("expected amount 10, got %s", tx.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, testutil.Amount("100"), time.Now())
	if budget.EffectiveFrom.Day() != 1 {
		t.Errorf("expected budget effective from first of month, got %s", budget.EffectiveFrom)
	}

	goalCat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeSavingsGoal)
	goal := testutil.CreateTestGoal(t, db, user.ID, goalCat.ID, models.GoalStatusActive, time.Now())
	if goal.Status != models.GoalStatusActive {
		t.Errorf("expected active goal, got %s", goal.Status)
	}
}

func TestActiveBudgetIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestBudget(t, db, user.ID, cat.ID, testutil.Amount("100"), time.Now())

	dup := &models.Budget{UserID: user.ID, CategoryID: cat.ID, Amount: testutil.Amount("5"), EffectiveFrom: time.Now(), IsActive: true}
	if err := db.Create(dup).Error; err == nil {
		t.Error("expected unique violation for second active budget")
	}

	closed := &models.Budget{UserID: user.ID, CategoryID: cat.ID, Amount: testutil.Amount("5"), EffectiveFrom: time.Now(), IsActive: false}
	if err := db.Create(closed).Error; err != nil {
		t.Errorf("inactive budget should not conflict: %v", err)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrGoalNotFound, "GOAL_NOT_FOUND")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")
	testutil.AssertAppErrorIs(t, errors.ErrActiveBudgetExists, errors.ErrActiveBudgetExists)
	testutil.AssertAppErrorIs(t, errors.WithMessage(errors.ErrUnauthorized, "Invalid or expired token"), errors.ErrUnauthorized)
	testutil.AssertAmount(t, testutil.Amount("12.50"), "12.5")
	testutil.AssertNoError(t, nil)
}

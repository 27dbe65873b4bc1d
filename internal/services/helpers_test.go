package services

import (
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestForUpdate(t *testing.T) {
	t.Run("postgres_locks_rows", func(t *testing.T) {
		db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=x dbname=x sslmode=disable"}),
			&gorm.Config{DisableAutomaticPing: true})
		testutil.AssertNoError(t, err)

		if _, ok := forUpdate(db).Statement.Clauses["FOR"]; !ok {
			t.Error("expected FOR UPDATE clause on postgres")
		}
		if _, ok := db.Statement.Clauses["FOR"]; ok {
			t.Error("expected the base handle to stay unlocked")
		}
	})

	t.Run("sqlite_unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)

		if _, ok := forUpdate(db).Statement.Clauses["FOR"]; ok {
			t.Error("expected no locking clause on sqlite")
		}
	})
}

func TestSumWindows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, cat.ID, testutil.Amount("10"), start)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, cat.ID, testutil.Amount("5"), end)
	testutil.CreateTestTransaction(t, db, user.ID, account.ID, cat.ID, testutil.Amount("99"), start.Add(-time.Second))

	open, err := sumAmount(db, user.ID, []string{cat.ID}, start, end)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, open, "10")

	closed, err := sumAmountThrough(db, user.ID, []string{cat.ID}, start, end)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, closed, "15")

	none, err := sumAmountThrough(db, user.ID, nil, start, end)
	testutil.AssertNoError(t, err)
	if !none.IsZero() {
		t.Errorf("expected zero without categories, got %s", none)
	}
}

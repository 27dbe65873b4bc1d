package services

import (
	"testing"
	"time"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/progress"
	"expensetracker/internal/testutil"
)

func newTestBudgetService(t *testing.T, now time.Time) (*budgetService, func()) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := NewBudgetService(db).(*budgetService)
	svc.now = func() time.Time { return now }
	return svc, func() { testutil.TeardownTestDB(t, db) }
}

var march15 = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func TestCreateBudget(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)

		view, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertNoError(t, err)

		if !view.IsActive || view.EffectiveTo != nil {
			t.Error("expected an open active budget")
		}
		if !view.EffectiveFrom.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected effectiveFrom 2025-03-01, got %s", view.EffectiveFrom)
		}
		if view.Category == nil || view.Category.ID != cat.ID {
			t.Error("expected category resolved")
		}
	})

	t.Run("income_category", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeIncome)

		_, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertAppError(t, err, "INVALID_BUDGET_CATEGORY")
		if err.Error() != "Budget can only be created for expense categories" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("non_positive_amount", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("0"))
		testutil.AssertAppError(t, err, "INVALID_BUDGET_AMOUNT")
		_, err = svc.CreateBudget(user.ID, cat.ID, testutil.Amount("-5"))
		testutil.AssertAppError(t, err, "INVALID_BUDGET_AMOUNT")
	})

	t.Run("second_active_budget_conflicts", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(user.ID, cat.ID, testutil.Amount("300"))
		testutil.AssertAppError(t, err, "ACTIVE_BUDGET_EXISTS")
	})

	t.Run("foreign_category", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		other := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, other.ID, models.CategoryTypeExpense)

		_, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("same_month_edits_in_place", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
		created, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertNoError(t, err)

		svc.now = func() time.Time { return march15.AddDate(0, 0, 10) }
		updated, err := svc.UpdateBudget(user.ID, created.ID, testutil.Amount("250"))
		testutil.AssertNoError(t, err)

		if updated.ID != created.ID {
			t.Errorf("expected same id, got %s", updated.ID)
		}
		if !updated.EffectiveFrom.Equal(created.EffectiveFrom) {
			t.Errorf("expected effectiveFrom preserved, got %s", updated.EffectiveFrom)
		}
		if !updated.Amount.Equal(testutil.Amount("250")) {
			t.Errorf("expected 250, got %s", updated.Amount)
		}
	})

	t.Run("later_month_rolls_over", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
		created, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertNoError(t, err)

		april5 := time.Date(2025, 4, 5, 12, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return april5 }
		next, err := svc.UpdateBudget(user.ID, created.ID, testutil.Amount("300"))
		testutil.AssertNoError(t, err)

		if next.ID == created.ID {
			t.Fatal("expected a new budget record")
		}
		if !next.EffectiveFrom.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected effectiveFrom 2025-04-01, got %s", next.EffectiveFrom)
		}
		if !next.IsActive {
			t.Error("expected new record active")
		}

		var old models.Budget
		testutil.AssertNoError(t, svc.db.First(&old, "id = ?", created.ID).Error)
		if old.IsActive {
			t.Error("expected old record closed")
		}
		if old.EffectiveTo == nil || !old.EffectiveTo.Equal(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("expected effectiveTo 2025-03-31, got %v", old.EffectiveTo)
		}

		history, err := svc.GetBudgetHistory(user.ID)
		testutil.AssertNoError(t, err)
		if len(history) != 2 || history[0].ID != next.ID {
			t.Errorf("expected newest budget first in history of 2, got %d", len(history))
		}
	})

	t.Run("closed_budget", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
		created, err := svc.CreateBudget(user.ID, cat.ID, testutil.Amount("200"))
		testutil.AssertNoError(t, err)

		svc.now = func() time.Time { return march15.AddDate(0, 1, 0) }
		_, err = svc.UpdateBudget(user.ID, created.ID, testutil.Amount("300"))
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateBudget(user.ID, created.ID, testutil.Amount("400"))
		testutil.AssertAppErrorIs(t, err, apperrors.ErrBudgetNotActive)
	})

	t.Run("other_users_budget", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		owner := testutil.CreateTestUser(t, svc.db)
		other := testutil.CreateTestUser(t, svc.db)
		cat := testutil.CreateTestCategory(t, svc.db, owner.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, svc.db, owner.ID, cat.ID, testutil.Amount("100"), march15)

		_, err := svc.UpdateBudget(other.ID, budget.ID, testutil.Amount("50"))
		testutil.AssertAppErrorIs(t, err, apperrors.ErrForbidden)

		err = svc.DeleteBudget(other.ID, budget.ID)
		testutil.AssertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing_budget", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)

		_, err := svc.UpdateBudget(user.ID, "missing", testutil.Amount("50"))
		testutil.AssertAppErrorIs(t, err, apperrors.ErrBudgetNotFound)
	})
}

func TestComputeBudgetStatus(t *testing.T) {
	tests := []struct {
		name      string
		allocated string
		spent     []string
		remaining string
		pct       int
		status    string
		color     string
	}{
		{"almost_there", "200", []string{"100", "80"}, "20", 90, progress.StatusAlmostThere, progress.ColorWarning},
		{"over_budget", "100", []string{"150"}, "-50", 150, progress.StatusOverBudget, progress.ColorError},
		{"exhausted", "100", []string{"100"}, "0", 100, progress.StatusBudgetExhausted, progress.ColorError},
		{"fresh_start", "100", nil, "100", 0, progress.StatusFreshStart, progress.ColorInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, done := newTestBudgetService(t, march15)
			defer done()
			user := testutil.CreateTestUser(t, svc.db)
			account := testutil.CreateTestAccount(t, svc.db, user.ID)
			cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
			budget := testutil.CreateTestBudget(t, svc.db, user.ID, cat.ID, testutil.Amount(tt.allocated), march15)

			for _, amt := range tt.spent {
				testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, cat.ID, testutil.Amount(amt), march15.AddDate(0, 0, -3))
			}

			st, err := svc.ComputeBudgetStatus(budget)
			testutil.AssertNoError(t, err)

			if !st.RemainingAmount.Equal(testutil.Amount(tt.remaining)) {
				t.Errorf("remaining: expected %s, got %s", tt.remaining, st.RemainingAmount)
			}
			if st.PercentageUsed != tt.pct {
				t.Errorf("percentage: expected %d, got %d", tt.pct, st.PercentageUsed)
			}
			if st.Status != tt.status || st.StatusColor != tt.color {
				t.Errorf("status: expected %s/%s, got %s/%s", tt.status, tt.color, st.Status, st.StatusColor)
			}
			if st.CategoryName != cat.Name {
				t.Errorf("expected category name %q, got %q", cat.Name, st.CategoryName)
			}
		})
	}

	t.Run("only_month_to_date_counts", func(t *testing.T) {
		svc, done := newTestBudgetService(t, march15)
		defer done()
		user := testutil.CreateTestUser(t, svc.db)
		account := testutil.CreateTestAccount(t, svc.db, user.ID)
		cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
		other := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
		budget := testutil.CreateTestBudget(t, svc.db, user.ID, cat.ID, testutil.Amount("100"), march15)

		testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, cat.ID, testutil.Amount("10"), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, cat.ID, testutil.Amount("20"), march15.Add(12*time.Hour))
		testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, cat.ID, testutil.Amount("40"), time.Date(2025, 2, 28, 23, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, cat.ID, testutil.Amount("80"), time.Date(2025, 3, 25, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, svc.db, user.ID, account.ID, other.ID, testutil.Amount("99"), march15)

		st, err := svc.ComputeBudgetStatus(budget)
		testutil.AssertNoError(t, err)
		if !st.SpentAmount.Equal(testutil.Amount("30")) {
			t.Errorf("expected spent 30, got %s", st.SpentAmount)
		}
	})
}

func TestComputeAllBudgetStatuses(t *testing.T) {
	svc, done := newTestBudgetService(t, march15)
	defer done()
	user := testutil.CreateTestUser(t, svc.db)
	food := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
	rent := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestBudget(t, svc.db, user.ID, food.ID, testutil.Amount("100"), march15)
	testutil.CreateTestBudget(t, svc.db, user.ID, rent.ID, testutil.Amount("900"), march15)

	statuses, err := svc.ComputeAllBudgetStatuses(user.ID)
	testutil.AssertNoError(t, err)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	st, err := svc.GetBudgetStatusByCategory(user.ID, rent.ID)
	testutil.AssertNoError(t, err)
	if !st.AllocatedAmount.Equal(testutil.Amount("900")) {
		t.Errorf("expected 900 allocated, got %s", st.AllocatedAmount)
	}

	unbudgeted := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
	_, err = svc.GetBudgetStatusByCategory(user.ID, unbudgeted.ID)
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")

	has, err := svc.HasActiveBudget(user.ID, food.ID)
	testutil.AssertNoError(t, err)
	if !has {
		t.Error("expected active budget for food")
	}
}

func TestDeleteBudget(t *testing.T) {
	svc, done := newTestBudgetService(t, march15)
	defer done()
	user := testutil.CreateTestUser(t, svc.db)
	cat := testutil.CreateTestCategory(t, svc.db, user.ID, models.CategoryTypeExpense)
	budget := testutil.CreateTestBudget(t, svc.db, user.ID, cat.ID, testutil.Amount("100"), march15)

	testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))

	active, err := svc.GetActiveBudgets(user.ID)
	testutil.AssertNoError(t, err)
	if len(active) != 0 {
		t.Errorf("expected no active budgets, got %d", len(active))
	}

	_, err = svc.CreateBudget(user.ID, cat.ID, testutil.Amount("50"))
	testutil.AssertNoError(t, err)
}

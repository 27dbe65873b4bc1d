package integration

import (
	"net/http"
	"testing"

	"expensetracker/internal/models"
)

func TestDashboardFlow_StatsAndSummary(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "dash@test.com", "password123")
	currencyID := app.createCurrency(t, token)
	accountID := app.createAccount(t, token, currencyID, "Main", "1000")

	groceries := app.createCategory(t, token, "Groceries", models.CategoryTypeExpense)
	salary := app.createCategory(t, token, "Salary", models.CategoryTypeIncome)
	emergency := app.createCategory(t, token, "Emergency Fund", models.CategoryTypeSavingsGoal)

	app.mustCreate(t, "/api/v1/budgets", `{"categoryId":"`+groceries+`","amount":400}`, token)
	app.mustCreate(t, "/api/v1/goals", goalBody("Cushion", emergency, "2000", "500", ""), token)

	app.spend(t, token, accountID, groceries, "100")
	app.spend(t, token, accountID, salary, "3000")
	app.spend(t, token, accountID, emergency, "300")

	// Stats
	rec := app.request("GET", "/api/v1/dashboard/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)
	if stats["todaySpending"].(float64) != 100 {
		t.Errorf("expected today spending 100, got %v", stats["todaySpending"])
	}
	if stats["monthlyBudgetRemaining"].(float64) != 300 {
		t.Errorf("expected 300 remaining, got %v", stats["monthlyBudgetRemaining"])
	}
	if stats["spendingVsBudgetScore"].(float64) != 75 {
		t.Errorf("expected score 75, got %v", stats["spendingVsBudgetScore"])
	}
	goals := stats["goalsProgress"].(map[string]interface{})
	if goals["current"].(float64) != 800 || goals["target"].(float64) != 2000 {
		t.Errorf("expected goals 800/2000, got %v/%v", goals["current"], goals["target"])
	}
	if goals["percentage"].(float64) != 40 {
		t.Errorf("expected 40%%, got %v", goals["percentage"])
	}

	// Summary: 1000 opening + 3000 income - 100 spend
	rec = app.request("GET", "/api/v1/dashboard/summary", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)
	if summary["totalBalance"].(float64) != 3900 {
		t.Errorf("expected total balance 3900, got %v", summary["totalBalance"])
	}
	if summary["monthlyIncome"].(float64) != 3000 || summary["monthlySpend"].(float64) != 100 {
		t.Errorf("unexpected monthly figures %v/%v", summary["monthlyIncome"], summary["monthlySpend"])
	}
	if summary["netSavings"].(float64) != 2900 {
		t.Errorf("expected net savings 2900, got %v", summary["netSavings"])
	}
}

func TestDashboardFlow_EmptyUser(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "empty@test.com", "password123")

	rec := app.request("GET", "/api/v1/dashboard/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	stats := parseJSON(t, rec)
	if stats["todaySpending"].(float64) != 0 || stats["monthlyBudgetRemaining"].(float64) != 0 {
		t.Errorf("expected zero figures, got %v", stats)
	}
	if stats["spendingVsBudgetScore"].(float64) != 100 {
		t.Errorf("expected score 100 with no budget, got %v", stats["spendingVsBudgetScore"])
	}

	rec = app.request("GET", "/api/v1/dashboard/stats", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

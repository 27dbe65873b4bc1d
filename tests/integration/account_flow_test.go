package integration

import (
	"fmt"
	"net/http"
	"testing"

	"expensetracker/internal/models"
)

func TestAccountFlow_CreateUpdateAndDelete(t *testing.T) {
	app := setupApp(t)
	token, _, userID := app.registerUser(t, "acct@test.com", "password123")
	currencyID := app.createCurrency(t, token)

	// Step 1: Create account with an opening balance
	accountID := app.createAccount(t, token, currencyID, "Checking", "250.75")

	rec := app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	account := parseJSON(t, rec)
	if account["userId"] != userID {
		t.Errorf("expected owner %s, got %v", userID, account["userId"])
	}
	if account["openingBalance"].(float64) != 250.75 {
		t.Errorf("expected opening balance 250.75, got %v", account["openingBalance"])
	}
	if account["includeInNetworth"] != true {
		t.Error("expected includeInNetworth to default to true")
	}

	// Step 2: List shows the account
	rec = app.request("GET", "/api/v1/accounts", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !containsID(t, rec.Body.Bytes(), accountID) {
		t.Errorf("expected account list to contain %s", accountID)
	}

	// Step 3: Update name and savings flag
	body := fmt.Sprintf(`{"name":"Rainy Day","accountTypeId":%q,"currencyId":%q,"isSavings":true,"openingBalance":250.75}`,
		app.accountTypeID(t, "Bank Account"), currencyID)
	rec = app.request("PUT", "/api/v1/accounts/"+accountID, body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	updated := parseJSON(t, rec)
	if updated["name"] != "Rainy Day" || updated["isSavings"] != true {
		t.Errorf("unexpected update result %v", updated)
	}

	// Step 4: A transaction blocks deletion of the account and its currency
	categoryID := app.createCategory(t, token, "Groceries", models.CategoryTypeExpense)
	txID := app.spend(t, token, accountID, categoryID, "12.50")

	rec = app.request("DELETE", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	assertCode(t, rec, "ACCOUNT_IN_USE")

	rec = app.request("DELETE", "/api/v1/currencies/"+currencyID, "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for currency in use, got %d", rec.Code)
	}
	assertCode(t, rec, "CURRENCY_IN_USE")

	// Step 5: Remove the transaction, then the account
	rec = app.request("DELETE", "/api/v1/transactions/"+txID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete transaction failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("DELETE", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account failed: %d %s", rec.Code, rec.Body.String())
	}
	rec = app.request("GET", "/api/v1/accounts/"+accountID, "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestAccountFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	aliceToken, _, _ := app.registerUser(t, "alice@test.com", "password123")
	bobToken, _, _ := app.registerUser(t, "bob@test.com", "password123")

	aliceCurrency := app.createCurrency(t, aliceToken)
	aliceAccount := app.createAccount(t, aliceToken, aliceCurrency, "Alice Bank", "10")

	// Bob cannot read or delete Alice's account
	rec := app.request("GET", "/api/v1/accounts/"+aliceAccount, "", bobToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign account, got %d", rec.Code)
	}
	rec = app.request("DELETE", "/api/v1/accounts/"+aliceAccount, "", bobToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting foreign account, got %d", rec.Code)
	}

	// Bob cannot open an account in Alice's currency
	body := fmt.Sprintf(`{"name":"Sneaky","accountTypeId":%q,"currencyId":%q,"openingBalance":0}`,
		app.accountTypeID(t, "Bank Account"), aliceCurrency)
	rec = app.request("POST", "/api/v1/accounts", body, bobToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign currency, got %d: %s", rec.Code, rec.Body.String())
	}

	// Bob's list is empty
	rec = app.request("GET", "/api/v1/accounts", "", bobToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if containsID(t, rec.Body.Bytes(), aliceAccount) {
		t.Error("bob should not see alice's account")
	}
}

func TestAccountFlow_TransactionsPaginated(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "pages@test.com", "password123")
	currencyID := app.createCurrency(t, token)
	accountID := app.createAccount(t, token, currencyID, "Wallet", "0")
	categoryID := app.createCategory(t, token, "Coffee", models.CategoryTypeExpense)

	for i := 1; i <= 3; i++ {
		app.spend(t, token, accountID, categoryID, fmt.Sprintf("%d.00", i))
	}

	rec := app.request("GET", "/api/v1/transactions?page=1&pageSize=2&accountId="+accountID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if page["total"].(float64) != 3 {
		t.Errorf("expected total 3, got %v", page["total"])
	}
	if page["totalPages"].(float64) != 2 {
		t.Errorf("expected 2 pages, got %v", page["totalPages"])
	}
	if items := page["items"].([]interface{}); len(items) != 2 {
		t.Errorf("expected 2 items on first page, got %d", len(items))
	}
}

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"expensetracker/internal/models"
)

func TestAuthFlow_RegisterLoginProfileRefresh(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register
	accessToken, refreshToken, userID := app.registerUser(t, "auth@test.com", "password123")
	if accessToken == "" || refreshToken == "" {
		t.Fatal("expected non-empty tokens from registration")
	}
	if userID == "" {
		t.Fatal("expected a user ID")
	}

	// Step 2: Login with same credentials
	loginAccess, loginRefresh := app.loginUser(t, "auth@test.com", "password123")

	// Step 3: Access profile with login access token
	rec := app.request("GET", "/api/v1/profile", "", loginAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := parseJSON(t, rec)
	if profile["email"] != "auth@test.com" || profile["id"] != userID {
		t.Errorf("unexpected profile %v", profile)
	}
	if profile["locale"] != "en-US" || profile["timezone"] != "UTC" {
		t.Errorf("expected default locale and timezone, got %v %v", profile["locale"], profile["timezone"])
	}

	// Step 4: Refresh rotates the token
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refreshToken":%q}`, loginRefresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	rotated := parseJSON(t, rec)
	newAccess := rotated["accessToken"].(string)
	newRefresh := rotated["refreshToken"].(string)
	if newRefresh == loginRefresh {
		t.Error("expected a new refresh token")
	}

	// Step 5: The old refresh token is revoked
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refreshToken":%q}`, loginRefresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 reusing rotated token, got %d", rec.Code)
	}

	// Step 6: The new access token works
	rec = app.request("GET", "/api/v1/profile", "", newAccess)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with new token, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 7: Logout revokes the new refresh token
	rec = app.request("POST", "/api/v1/auth/logout", fmt.Sprintf(`{"refreshToken":%q}`, newRefresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", rec.Code)
	}
	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refreshToken":%q}`, newRefresh), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestAuthFlow_DuplicateRegistration(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dup@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/register",
		`{"name":"Again","email":"DUP@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_InvalidCredentials(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "creds@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/login", `{"email":"creds@test.com","password":"wrong"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/profile", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestAuthFlow_SocialMockLinksExistingUser(t *testing.T) {
	app := setupApp(t)
	_, _, userID := app.registerUser(t, "social@test.com", "password123")

	rec := app.request("POST", "/api/v1/auth/social", `{"provider":"google","token":"mock-google:social@test.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["id"] != userID {
		t.Errorf("expected social sign-in to link user %s, got %v", userID, user["id"])
	}

	var stored models.User
	if err := app.DB.First(&stored, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if stored.Provider != models.AuthProviderMixed {
		t.Errorf("expected provider Mixed after linking a local user, got %s", stored.Provider)
	}
}

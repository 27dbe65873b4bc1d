package services

import (
	"testing"
	"time"

	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser(NewUserInput{FullName: "Alice Smith", Email: "alice@example.com", Password: "password123"})
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.FullName != "Alice Smith" {
			t.Errorf("expected full name Alice Smith, got %s", user.FullName)
		}
		if user.Provider != models.AuthProviderLocal {
			t.Errorf("expected Local provider, got %s", user.Provider)
		}
		if user.Locale != "en-US" || user.Timezone != "UTC" {
			t.Errorf("expected default locale and timezone, got %s %s", user.Locale, user.Timezone)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if !user.HasLocalPassword() || *user.PasswordHash == "password123" {
			t.Error("expected hashed password")
		}
	})

	t.Run("duplicate_email_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser(NewUserInput{Email: "dup@example.com", Password: "password123"})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(NewUserInput{Email: "DUP@example.com", Password: "password456"})
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("empty_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser(NewUserInput{Password: "password123"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("local_requires_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser(NewUserInput{Email: "test@example.com"})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("social_without_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		pid := "g-123"
		user, err := svc.CreateUser(NewUserInput{
			Email: "social@example.com", Provider: models.AuthProviderGoogle, ProviderID: &pid, IsEmailVerified: true,
		})
		testutil.AssertNoError(t, err)
		if user.HasLocalPassword() {
			t.Error("social user should not have a local password")
		}
	})
}

func TestGetUserByEmail(t *testing.T) {
	t.Run("found_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		created := testutil.CreateTestUserWithEmail(t, db, "find@example.com")

		user, err := svc.GetUserByEmail("FIND@example.com")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("expected user %s, got %s", created.ID, user.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByEmail("nobody@example.com")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("success_stamps_last_login", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db).(*userService)
		fixed := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }
		testutil.CreateTestUserWithEmail(t, db, "login@example.com")

		user, err := svc.AttemptLogin("login@example.com", testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if user.LastLoginAt == nil || !user.LastLoginAt.Equal(fixed) {
			t.Errorf("expected last login %s, got %v", fixed, user.LastLoginAt)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		testutil.CreateTestUserWithEmail(t, db, "wrong@example.com")

		_, err := svc.AttemptLogin("wrong@example.com", "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("ghost@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("social_only_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)
		pid := "fb-1"
		_, err := svc.CreateUser(NewUserInput{Email: "fb@example.com", Provider: models.AuthProviderFacebook, ProviderID: &pid})
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("fb@example.com", "password123")
		testutil.AssertAppError(t, err, "NO_LOCAL_PASSWORD")
	})
}

func TestSetPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.SetPassword(user.ID, "brand-new-pass"))

	reloaded, err := svc.GetUserByID(user.ID)
	testutil.AssertNoError(t, err)
	if !svc.VerifyPassword(reloaded, "brand-new-pass") {
		t.Error("expected new password to verify")
	}
	if svc.VerifyPassword(reloaded, testutil.TestPassword) {
		t.Error("old password should no longer verify")
	}

	err = svc.SetPassword("0190a0b1-0000-7000-8000-00000000dead", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestLinkProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)
	user := testutil.CreateTestUser(t, db)

	testutil.AssertNoError(t, svc.LinkProvider(user, models.AuthProviderGoogle, "g-42"))
	if user.Provider != models.AuthProviderMixed {
		t.Errorf("expected Mixed provider for local user, got %s", user.Provider)
	}

	found, err := svc.GetUserByProvider(models.AuthProviderGoogle, "g-42")
	testutil.AssertNoError(t, err)
	if found.ID != user.ID {
		t.Errorf("expected linked user %s, got %s", user.ID, found.ID)
	}
}

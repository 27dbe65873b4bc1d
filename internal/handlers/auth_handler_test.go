package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

type mockAuthService struct {
	registerFn       func(input services.RegisterInput, device string) (*services.AuthResult, error)
	loginFn          func(email, password, device string) (*services.AuthResult, error)
	socialLoginFn    func(ctx context.Context, provider, token, device string) (*services.AuthResult, error)
	refreshFn        func(refreshToken, device string) (*services.AuthResult, error)
	logoutFn         func(refreshToken string) error
	forgotPasswordFn func(email string) error
	resetPasswordFn  func(token, newPassword string) error
}

func (m *mockAuthService) Register(input services.RegisterInput, device string) (*services.AuthResult, error) {
	if m.registerFn != nil {
		return m.registerFn(input, device)
	}
	return authResult(input.Email), nil
}

func (m *mockAuthService) Login(email, password, device string) (*services.AuthResult, error) {
	if m.loginFn != nil {
		return m.loginFn(email, password, device)
	}
	return authResult(email), nil
}

func (m *mockAuthService) SocialLogin(ctx context.Context, provider, token, device string) (*services.AuthResult, error) {
	if m.socialLoginFn != nil {
		return m.socialLoginFn(ctx, provider, token, device)
	}
	return authResult("social@example.com"), nil
}

func (m *mockAuthService) Refresh(refreshToken, device string) (*services.AuthResult, error) {
	if m.refreshFn != nil {
		return m.refreshFn(refreshToken, device)
	}
	return authResult("user@example.com"), nil
}

func (m *mockAuthService) Logout(refreshToken string) error {
	if m.logoutFn != nil {
		return m.logoutFn(refreshToken)
	}
	return nil
}

func (m *mockAuthService) ForgotPassword(email string) error {
	if m.forgotPasswordFn != nil {
		return m.forgotPasswordFn(email)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(token, newPassword string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(token, newPassword)
	}
	return nil
}

var _ services.AuthServicer = (*mockAuthService)(nil)

func authResult(email string) *services.AuthResult {
	return &services.AuthResult{
		User:         &models.User{Base: models.Base{ID: testUserID}, Email: email, FullName: "Jane Doe"},
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
	}
}

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	r := newTestRouter()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/social", handler.Social)
	r.POST("/auth/refresh", handler.Refresh)
	r.POST("/auth/logout", handler.Logout)
	r.POST("/auth/forgot-password", handler.ForgotPassword)
	r.POST("/auth/reset-password", handler.ResetPassword)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("returns 201 with tokens", func(t *testing.T) {
		var got services.RegisterInput
		svc := &mockAuthService{
			registerFn: func(input services.RegisterInput, _ string) (*services.AuthResult, error) {
				got = input
				return authResult(input.Email), nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))

		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Jane Doe","email":"jane@example.com","password":"secret1"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["ok"] != true {
			t.Error("expected ok=true")
		}
		if result["accessToken"] != "access" || result["refreshToken"] != "refresh" {
			t.Errorf("unexpected tokens: %v", result)
		}
		if result["expiresIn"] != float64(3600) {
			t.Errorf("expected expiresIn 3600, got %v", result["expiresIn"])
		}
		user := result["user"].(map[string]interface{})
		if user["name"] != "Jane Doe" || user["email"] != "jane@example.com" {
			t.Errorf("unexpected user: %v", user)
		}
		if got.Name != "Jane Doe" {
			t.Errorf("expected name to be passed through, got %q", got.Name)
		}
	})

	t.Run("returns 400 for short password", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}))
		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Jane","email":"jane@example.com","password":"123"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 409 for duplicate email", func(t *testing.T) {
		svc := &mockAuthService{
			registerFn: func(services.RegisterInput, string) (*services.AuthResult, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/register",
			`{"name":"Jane","email":"jane@example.com","password":"secret1"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_EMAIL")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("returns 200 on valid credentials", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"jane@example.com","password":"secret1"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 401 on invalid credentials", func(t *testing.T) {
		svc := &mockAuthService{
			loginFn: func(string, string, string) (*services.AuthResult, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"jane@example.com","password":"wrong"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_CREDENTIALS")
	})

	t.Run("returns 400 for malformed email", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}))
		rec := doRequest(r, "POST", "/auth/login", `{"email":"nope","password":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Social(t *testing.T) {
	t.Run("rejects unknown provider", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}))
		rec := doRequest(r, "POST", "/auth/social", `{"provider":"myspace","token":"abc"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("surfaces link conflict", func(t *testing.T) {
		svc := &mockAuthService{
			socialLoginFn: func(context.Context, string, string, string) (*services.AuthResult, error) {
				return nil, apperrors.ErrSocialLinkRequired
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/social", `{"provider":"google","token":"mock-google:a@b.com"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SOCIAL_LINK_REQUIRED")
	})
}

func TestAuthHandler_RefreshAndLogout(t *testing.T) {
	t.Run("refresh rejects revoked token", func(t *testing.T) {
		svc := &mockAuthService{
			refreshFn: func(string, string) (*services.AuthResult, error) {
				return nil, apperrors.ErrInvalidRefreshToken
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/refresh", `{"refreshToken":"old"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_REFRESH_TOKEN")
	})

	t.Run("logout passes the token through", func(t *testing.T) {
		var revoked string
		svc := &mockAuthService{
			logoutFn: func(token string) error {
				revoked = token
				return nil
			},
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/logout", `{"refreshToken":"tok"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if revoked != "tok" {
			t.Errorf("expected token tok to be revoked, got %q", revoked)
		}
	})
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	t.Run("forgot password always succeeds", func(t *testing.T) {
		r := setupAuthRouter(NewAuthHandler(&mockAuthService{}))
		rec := doRequest(r, "POST", "/auth/forgot-password", `{"email":"ghost@example.com"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("reset with bad token returns 400", func(t *testing.T) {
		svc := &mockAuthService{
			resetPasswordFn: func(string, string) error { return apperrors.ErrInvalidResetToken },
		}
		r := setupAuthRouter(NewAuthHandler(svc))
		rec := doRequest(r, "POST", "/auth/reset-password", `{"token":"bad","newPassword":"secret1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_RESET_TOKEN")
	})
}

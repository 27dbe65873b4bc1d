package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/logger"
	"expensetracker/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
}

func testUser() *models.User {
	u := &models.User{Email: "mw@example.com"}
	u.ID = "0190a0b1-0000-7000-8000-000000000001"
	return u
}

func protectedRouter() *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString(UserIDKey)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := protectedRouter()

	t.Run("valid_token", func(t *testing.T) {
		token, err := GenerateAccessToken(testUser(), time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["userID"] != testUser().ID {
			t.Errorf("expected user id in context, got %q", body["userID"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
		body := decodeError(t, w)
		if body.Error.Code != "UNAUTHORIZED" || body.Error.Message != "Authorization header is required" {
			t.Errorf("unexpected error body %+v", body.Error)
		}
	})

	t.Run("expired_token", func(t *testing.T) {
		token, _ := GenerateAccessToken(testUser(), -time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})

	t.Run("opaque_refresh_token_rejected", func(t *testing.T) {
		token, _ := NewOpaqueToken(32)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestHashToken(t *testing.T) {
	a := HashToken("abc")
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if a != HashToken("abc") || a == HashToken("abd") {
		t.Error("hash must be deterministic and input dependent")
	}
}

func TestNewOpaqueToken(t *testing.T) {
	a, err := NewOpaqueToken(48)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := NewOpaqueToken(48)
	if a == b {
		t.Error("expected distinct tokens")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 chars for 48 bytes, got %d", len(a))
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v\nbody: %s", err, w.Body.String())
	}
	return body
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging(), ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrBudgetNotFound)
		c.Abort()
	})
	r.GET("/wrapped", func(c *gin.Context) {
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("db down")))
	})
	r.GET("/raw", func(c *gin.Context) { _ = c.Error(errors.New("boom")) })
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(errors.New("late"))
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	t.Run("app_error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
		body := decodeError(t, w)
		if body.Error.Code != "BUDGET_NOT_FOUND" || body.Error.Message != "Budget not found" {
			t.Errorf("unexpected error body %+v", body.Error)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Error("expected request id on error responses")
		}
	})

	t.Run("wrapped_internal_hidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wrapped", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Error.Message != apperrors.ErrInternalServer.Message {
			t.Errorf("expected generic message, got %q", body.Error.Message)
		}
	})

	t.Run("plain_error", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/raw", nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", w.Code)
		}
		if body := decodeError(t, w); body.Error.Code != "INTERNAL_ERROR" {
			t.Errorf("expected INTERNAL_ERROR, got %q", body.Error.Code)
		}
	})

	t.Run("written_response_untouched", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/written", nil))
		if w.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d", w.Code)
		}
		if w.Body.String() != `{"ok":true}` {
			t.Errorf("expected handler body only, got %s", w.Body.String())
		}
	})
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS("http://localhost:5173"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("expected configured origin")
	}
}

func TestRequestLogging(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("expected propagated request id, got %q", w.Header().Get("X-Request-ID"))
	}
}

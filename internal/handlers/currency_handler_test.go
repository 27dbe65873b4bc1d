package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "expensetracker/internal/errors"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
)

type mockCurrencyService struct {
	createCurrencyFn    func(userID, code, symbol, name string) (*models.Currency, error)
	getUserCurrenciesFn func(userID string) ([]models.Currency, error)
	getCurrencyByIDFn   func(userID, currencyID string) (*models.Currency, error)
	updateCurrencyFn    func(userID, currencyID, code, symbol, name string) (*models.Currency, error)
	deleteCurrencyFn    func(userID, currencyID string) error
}

func (m *mockCurrencyService) CreateCurrency(userID, code, symbol, name string) (*models.Currency, error) {
	if m.createCurrencyFn != nil {
		return m.createCurrencyFn(userID, code, symbol, name)
	}
	return &models.Currency{Code: code}, nil
}

func (m *mockCurrencyService) GetUserCurrencies(userID string) ([]models.Currency, error) {
	if m.getUserCurrenciesFn != nil {
		return m.getUserCurrenciesFn(userID)
	}
	return []models.Currency{}, nil
}

func (m *mockCurrencyService) GetCurrencyByID(userID, currencyID string) (*models.Currency, error) {
	if m.getCurrencyByIDFn != nil {
		return m.getCurrencyByIDFn(userID, currencyID)
	}
	return &models.Currency{}, nil
}

func (m *mockCurrencyService) UpdateCurrency(userID, currencyID, code, symbol, name string) (*models.Currency, error) {
	if m.updateCurrencyFn != nil {
		return m.updateCurrencyFn(userID, currencyID, code, symbol, name)
	}
	return &models.Currency{Code: code}, nil
}

func (m *mockCurrencyService) DeleteCurrency(userID, currencyID string) error {
	if m.deleteCurrencyFn != nil {
		return m.deleteCurrencyFn(userID, currencyID)
	}
	return nil
}

var _ services.CurrencyServicer = (*mockCurrencyService)(nil)

func setupCurrencyRouter(handler *CurrencyHandler) *gin.Engine {
	r := newTestRouter()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/currencies", handler.CreateCurrency)
	auth.GET("/currencies", handler.GetCurrencies)
	auth.GET("/currencies/:id", handler.GetCurrency)
	auth.PUT("/currencies/:id", handler.UpdateCurrency)
	auth.DELETE("/currencies/:id", handler.DeleteCurrency)
	return r
}

func TestCurrencyHandler_CreateCurrency(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		r := setupCurrencyRouter(NewCurrencyHandler(&mockCurrencyService{}, &mockAuditService{}))
		rec := doRequest(r, "POST", "/currencies", `{"code":"EUR","symbol":"€","name":"Euro"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if parseJSON(t, rec)["code"] != "EUR" {
			t.Error("expected EUR in response")
		}
	})

	t.Run("rejects non ISO code", func(t *testing.T) {
		r := setupCurrencyRouter(NewCurrencyHandler(&mockCurrencyService{}, &mockAuditService{}))
		rec := doRequest(r, "POST", "/currencies", `{"code":"ZZZ","symbol":"z","name":"Zed"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("duplicate code is 409", func(t *testing.T) {
		svc := &mockCurrencyService{
			createCurrencyFn: func(string, string, string, string) (*models.Currency, error) {
				return nil, apperrors.ErrDuplicateCurrency
			},
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "POST", "/currencies", `{"code":"USD","symbol":"$","name":"Dollar"}`)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CURRENCY")
	})
}

func TestCurrencyHandler_GetCurrencies(t *testing.T) {
	svc := &mockCurrencyService{
		getUserCurrenciesFn: func(userID string) ([]models.Currency, error) {
			if userID != testUserID {
				t.Errorf("expected user %s, got %s", testUserID, userID)
			}
			return []models.Currency{{Code: "EUR"}, {Code: "USD"}}, nil
		},
	}
	r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}))
	rec := doRequest(r, "GET", "/currencies", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(parseJSONArray(t, rec)); got != 2 {
		t.Errorf("expected 2 currencies, got %d", got)
	}
}

func TestCurrencyHandler_DeleteCurrency(t *testing.T) {
	t.Run("in use is 409", func(t *testing.T) {
		svc := &mockCurrencyService{
			deleteCurrencyFn: func(string, string) error { return apperrors.ErrCurrencyInUse },
		}
		r := setupCurrencyRouter(NewCurrencyHandler(svc, &mockAuditService{}))
		rec := doRequest(r, "DELETE", "/currencies/"+testOtherID, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CURRENCY_IN_USE")
	})

	t.Run("invalid id is 400", func(t *testing.T) {
		r := setupCurrencyRouter(NewCurrencyHandler(&mockCurrencyService{}, &mockAuditService{}))
		rec := doRequest(r, "DELETE", "/currencies/42", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

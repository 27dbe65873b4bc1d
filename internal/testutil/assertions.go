package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	apperrors "expensetracker/internal/errors"
)

// AssertAppError fails unless err is an *AppError carrying code.
func AssertAppError(t *testing.T, err error, code string) {
	t.Helper()
	appErr := requireAppError(t, err, code)
	if appErr.Code != code {
		t.Errorf("expected error code %q, got %q (message: %s)", code, appErr.Code, appErr.Message)
	}
}

// AssertAppErrorIs fails unless err matches sentinel by code and would be
// served with the sentinel's HTTP status.
func AssertAppErrorIs(t *testing.T, err error, sentinel *apperrors.AppError) {
	t.Helper()
	appErr := requireAppError(t, err, sentinel.Code)
	if !errors.Is(err, sentinel) {
		t.Errorf("expected %s, got %s (message: %s)", sentinel.Code, appErr.Code, appErr.Message)
		return
	}
	if appErr.StatusCode != sentinel.StatusCode {
		t.Errorf("%s: expected status %d, got %d", sentinel.Code, sentinel.StatusCode, appErr.StatusCode)
	}
}

// AssertAmount compares a money value against its decimal string form.
func AssertAmount(t *testing.T, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(Amount(want)) {
		t.Errorf("expected amount %s, got %s", want, got)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func requireAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError %s, got %T: %v", code, err, err)
	}
	return appErr
}

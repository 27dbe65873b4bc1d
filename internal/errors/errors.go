// Package errors provides custom error types for the expense tracker API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so wrapped copies of a
// sentinel still match it.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized        = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials  = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrNoLocalPassword     = &AppError{Code: "NO_LOCAL_PASSWORD", Message: "No local password set for this user", StatusCode: http.StatusUnauthorized}
	ErrInvalidRefreshToken = &AppError{Code: "INVALID_REFRESH_TOKEN", Message: "Invalid refresh token", StatusCode: http.StatusUnauthorized}
	ErrInvalidSocialToken  = &AppError{Code: "INVALID_SOCIAL_TOKEN", Message: "Invalid social token", StatusCode: http.StatusUnauthorized}
	ErrSocialLinkRequired  = &AppError{Code: "SOCIAL_LINK_REQUIRED", Message: "Email exists without social link", StatusCode: http.StatusConflict}
	ErrInvalidResetToken   = &AppError{Code: "INVALID_RESET_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusBadRequest}
	ErrForbidden           = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User and profile errors.
var (
	ErrUserNotFound      = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail    = &AppError{Code: "DUPLICATE_EMAIL", Message: "Email already exists", StatusCode: http.StatusConflict}
	ErrIncorrectPassword = &AppError{Code: "INCORRECT_PASSWORD", Message: "Current password is incorrect", StatusCode: http.StatusBadRequest}
	ErrPasswordMismatch  = &AppError{Code: "PASSWORD_MISMATCH", Message: "New password and confirmation do not match", StatusCode: http.StatusBadRequest}
	ErrNotLocalUser      = &AppError{Code: "NOT_LOCAL_USER", Message: "Password can only be changed for local accounts", StatusCode: http.StatusBadRequest}
)

// Currency errors.
var (
	ErrCurrencyNotFound  = &AppError{Code: "CURRENCY_NOT_FOUND", Message: "Currency not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCurrency = &AppError{Code: "DUPLICATE_CURRENCY", Message: "Currency with this code already exists", StatusCode: http.StatusConflict}
	ErrCurrencyInUse     = &AppError{Code: "CURRENCY_IN_USE", Message: "Currency is used by existing accounts", StatusCode: http.StatusConflict}
)

// Account errors.
var (
	ErrAccountNotFound     = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrAccountInUse        = &AppError{Code: "ACCOUNT_IN_USE", Message: "Account is used by existing transactions", StatusCode: http.StatusConflict}
	ErrAccountTypeNotFound = &AppError{Code: "ACCOUNT_TYPE_NOT_FOUND", Message: "Account type not found", StatusCode: http.StatusNotFound}
	ErrAccountTypeInUse    = &AppError{Code: "ACCOUNT_TYPE_IN_USE", Message: "Account type is used by existing accounts", StatusCode: http.StatusConflict}
)

// Category errors.
var (
	ErrCategoryNotFound    = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "Category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryInUse       = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions, budgets or goals", StatusCode: http.StatusConflict}
	ErrCategoryHasChildren = &AppError{Code: "CATEGORY_HAS_CHILDREN", Message: "Category has child categories", StatusCode: http.StatusConflict}
	ErrSelfParentCategory  = &AppError{Code: "SELF_PARENT_CATEGORY", Message: "A category cannot be its own parent", StatusCode: http.StatusBadRequest}
	ErrSubCategoryNotFound = &AppError{Code: "SUBCATEGORY_NOT_FOUND", Message: "Subcategory not found or doesn't belong to the selected category", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be positive", StatusCode: http.StatusBadRequest}
)

// Budget errors.
var (
	ErrBudgetNotFound       = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrActiveBudgetExists   = &AppError{Code: "ACTIVE_BUDGET_EXISTS", Message: "Active budget already exists for this category", StatusCode: http.StatusConflict}
	ErrBudgetCategoryType   = &AppError{Code: "INVALID_BUDGET_CATEGORY", Message: "Budget can only be created for expense categories", StatusCode: http.StatusBadRequest}
	ErrInvalidBudgetAmount  = &AppError{Code: "INVALID_BUDGET_AMOUNT", Message: "Budget amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrBudgetNotActive      = &AppError{Code: "BUDGET_NOT_ACTIVE", Message: "Cannot update completed budgets", StatusCode: http.StatusBadRequest}
	ErrNoActiveBudgetForCat = &AppError{Code: "BUDGET_NOT_FOUND", Message: "No active budget found for this category", StatusCode: http.StatusNotFound}
)

// Goal errors.
var (
	ErrGoalNotFound             = &AppError{Code: "GOAL_NOT_FOUND", Message: "Goal not found", StatusCode: http.StatusNotFound}
	ErrActiveGoalExists         = &AppError{Code: "ACTIVE_GOAL_EXISTS", Message: "You already have an active goal for this category. Only one active goal per category is allowed.", StatusCode: http.StatusConflict}
	ErrGoalCategoryType         = &AppError{Code: "INVALID_GOAL_CATEGORY", Message: "Category must be of type TargetedSavingsGoal", StatusCode: http.StatusBadRequest}
	ErrInvalidGoalDates         = &AppError{Code: "INVALID_GOAL_DATES", Message: "End date must be after start date", StatusCode: http.StatusBadRequest}
	ErrInvalidGoalTarget        = &AppError{Code: "INVALID_GOAL_TARGET", Message: "Target amount must be greater than 0", StatusCode: http.StatusBadRequest}
	ErrNegativeGoalCurrent      = &AppError{Code: "INVALID_GOAL_CURRENT", Message: "Current amount cannot be negative", StatusCode: http.StatusBadRequest}
	ErrGoalCurrentExceedsTarget = &AppError{Code: "INVALID_GOAL_CURRENT", Message: "Current amount cannot exceed target amount", StatusCode: http.StatusBadRequest}
)

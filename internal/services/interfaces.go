package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"expensetracker/internal/models"
	"expensetracker/internal/pagination"
)

// NewUserInput carries the fields needed to create a user.
type NewUserInput struct {
	FullName        string
	Email           string
	Password        string
	Phone           *string
	Provider        models.AuthProvider
	ProviderID      *string
	IsEmailVerified bool
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(input NewUserInput) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByProvider(provider models.AuthProvider, providerID string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	SetPassword(userID, password string) error
	LinkProvider(user *models.User, provider models.AuthProvider, providerID string) error
}

// AuthResult is a signed-in user plus the credentials issued for them.
type AuthResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// RegisterInput carries a local sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
}

// AuthServicer defines the contract for sign-in and token lifecycle operations.
type AuthServicer interface {
	Register(input RegisterInput, device string) (*AuthResult, error)
	Login(email, password, device string) (*AuthResult, error)
	SocialLogin(ctx context.Context, provider, token, device string) (*AuthResult, error)
	Refresh(refreshToken, device string) (*AuthResult, error)
	Logout(refreshToken string) error
	ForgotPassword(email string) error
	ResetPassword(token, newPassword string) error
}

// SocialIdentity is a verified identity asserted by an external provider.
type SocialIdentity struct {
	Provider   models.AuthProvider
	ProviderID string
	Email      string
	Name       string
}

// SocialVerifier validates a provider token and returns the identity it asserts.
type SocialVerifier interface {
	Verify(ctx context.Context, provider, token string) (*SocialIdentity, error)
}

// EmailSender delivers transactional email.
type EmailSender interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// ProfileUpdate holds the editable profile fields. Nil leaves a field unchanged.
type ProfileUpdate struct {
	FullName          *string
	Phone             *string
	ProfileImage      *string
	DefaultCurrencyID *string
	DefaultAccountID  *string
	Locale            *string
	Timezone          *string
}

// ProfileView is a user with their default currency and account resolved.
type ProfileView struct {
	models.User
	DefaultCurrency *models.Currency `json:"defaultCurrency,omitempty"`
	DefaultAccount  *models.Account  `json:"defaultAccount,omitempty"`
}

// ProfileServicer defines the contract for the signed-in user's own profile.
type ProfileServicer interface {
	GetProfile(userID string) (*ProfileView, error)
	UpdateProfile(userID string, update ProfileUpdate) (*ProfileView, error)
	ChangePassword(userID, currentPassword, newPassword, confirmPassword string) error
	SetProfileImage(userID, image string) (*ProfileView, error)
	GetAccountsByCurrency(userID, currencyID string) ([]models.Account, error)
}

// CurrencyServicer defines the contract for per-user currencies.
type CurrencyServicer interface {
	CreateCurrency(userID, code, symbol, name string) (*models.Currency, error)
	GetUserCurrencies(userID string) ([]models.Currency, error)
	GetCurrencyByID(userID, currencyID string) (*models.Currency, error)
	UpdateCurrency(userID, currencyID, code, symbol, name string) (*models.Currency, error)
	DeleteCurrency(userID, currencyID string) error
}

// AccountTypeServicer defines the contract for the shared account type lookup.
type AccountTypeServicer interface {
	CreateAccountType(name string, isCard bool) (*models.AccountType, error)
	GetAccountTypes() ([]models.AccountType, error)
	GetAccountTypeByID(id string) (*models.AccountType, error)
	UpdateAccountType(id, name string, isCard bool) (*models.AccountType, error)
	DeleteAccountType(id string) error
}

// AccountInput carries the writable fields of an account.
type AccountInput struct {
	Name              string
	AccountTypeID     string
	CurrencyID        string
	IsSavings         bool
	OpeningBalance    decimal.Decimal
	IncludeInNetworth bool
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	CreateAccount(userID string, input AccountInput) (*models.Account, error)
	GetUserAccounts(userID string) ([]models.Account, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	UpdateAccount(userID, accountID string, input AccountInput) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
	ParentID    *string
	Type        models.CategoryType
}

// CategoryDetail is a category with its subcategories attached.
type CategoryDetail struct {
	models.Category
	SubCategories []models.SubCategory `json:"subCategories,omitempty"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID string, input CategoryInput) (*models.Category, error)
	GetUserCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string, includeSubs bool) (*CategoryDetail, error)
	UpdateCategory(userID, categoryID string, input CategoryInput) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
	CreateSubCategory(userID, categoryID, name, description string) (*models.SubCategory, error)
	GetSubCategories(userID, categoryID string) ([]models.SubCategory, error)
	UpdateSubCategory(userID, subCategoryID, name, description string) (*models.SubCategory, error)
	DeleteSubCategory(userID, subCategoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	AccountID  *string
	CategoryID *string
	StartDate  *time.Time
	EndDate    *time.Time
}

// TransactionInput carries the writable fields of a transaction.
type TransactionInput struct {
	AccountID       string
	CategoryID      string
	SubCategoryID   *string
	Description     string
	Amount          decimal.Decimal
	TransactionDate time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, input TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, input TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	SumAmount(userID, categoryID string, start, end time.Time) (decimal.Decimal, error)
}

// BudgetView is a budget with its category resolved.
type BudgetView struct {
	models.Budget
	Category *models.Category `json:"category,omitempty"`
}

// BudgetStatus is the month-to-date standing of an active budget.
type BudgetStatus struct {
	BudgetID        string          `json:"budgetId"`
	CategoryID      string          `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`
	SpentAmount     decimal.Decimal `json:"spentAmount"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	PercentageUsed  int             `json:"percentageUsed"`
	EffectiveFrom   time.Time       `json:"effectiveFrom"`
	EffectiveTo     *time.Time      `json:"effectiveTo"`
	IsActive        bool            `json:"isActive"`
	Status          string          `json:"status"`
	StatusColor     string          `json:"statusColor"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID string, amount decimal.Decimal) (*BudgetView, error)
	UpdateBudget(userID, budgetID string, amount decimal.Decimal) (*BudgetView, error)
	GetActiveBudgets(userID string) ([]BudgetView, error)
	GetBudgetHistory(userID string) ([]BudgetView, error)
	HasActiveBudget(userID, categoryID string) (bool, error)
	ComputeBudgetStatus(budget *models.Budget) (*BudgetStatus, error)
	ComputeAllBudgetStatuses(userID string) ([]BudgetStatus, error)
	GetBudgetStatusByCategory(userID, categoryID string) (*BudgetStatus, error)
	DeleteBudget(userID, budgetID string) error
}

// GoalInput carries the writable fields of a goal.
type GoalInput struct {
	Name          string
	Description   *string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	CategoryID    string
	StartDate     time.Time
	EndDate       *time.Time
	Tag           *string
	Status        models.GoalStatus
	Priority      models.GoalPriority
}

// GoalView is a goal with its category resolved.
type GoalView struct {
	models.Goal
	Category *models.Category `json:"category,omitempty"`
}

// GoalProgress is the derived progress of a goal toward its target.
type GoalProgress struct {
	ID                 string              `json:"id"`
	GoalID             string              `json:"goalId"`
	Name               string              `json:"name"`
	Description        *string             `json:"description"`
	TargetAmount       decimal.Decimal     `json:"targetAmount"`
	CurrentAmount      decimal.Decimal     `json:"currentAmount"`
	RemainingAmount    decimal.Decimal     `json:"remainingAmount"`
	PercentageComplete int                 `json:"percentageComplete"`
	CategoryID         string              `json:"categoryId"`
	CategoryName       string              `json:"categoryName"`
	StartDate          time.Time           `json:"startDate"`
	EndDate            *time.Time          `json:"endDate"`
	Tag                *string             `json:"tag"`
	Status             models.GoalStatus   `json:"status"`
	Priority           models.GoalPriority `json:"priority"`
	StatusColor        string              `json:"statusColor"`
	PriorityColor      string              `json:"priorityColor"`
	DaysRemaining      int                 `json:"daysRemaining"`
	IsOverdue          bool                `json:"isOverdue"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// GoalServicer defines the contract for goal-related business logic.
type GoalServicer interface {
	CreateGoal(userID string, input GoalInput) (*GoalView, error)
	UpdateGoal(userID, goalID string, input GoalInput) (*GoalView, error)
	DeleteGoal(userID, goalID string) error
	GetGoalByID(userID, goalID string) (*GoalView, error)
	GetGoals(userID string) ([]GoalView, error)
	GetActiveGoals(userID string) ([]GoalView, error)
	GetCompletedGoals(userID string) ([]GoalView, error)
	ComputeGoalProgress(goal *models.Goal) (*GoalProgress, error)
	ComputeAllGoalProgress(userID string) ([]GoalProgress, error)
	GoalExists(userID, goalID string) (bool, error)
}

// GoalsProgressSummary aggregates progress across all active goals.
type GoalsProgressSummary struct {
	Current    decimal.Decimal `json:"current"`
	Target     decimal.Decimal `json:"target"`
	Percentage int             `json:"percentage"`
}

// DashboardStats bundles the headline dashboard figures.
type DashboardStats struct {
	TodaySpending          decimal.Decimal      `json:"todaySpending"`
	MonthlyBudgetRemaining decimal.Decimal      `json:"monthlyBudgetRemaining"`
	GoalsProgress          GoalsProgressSummary `json:"goalsProgress"`
	SpendingVsBudgetScore  int                  `json:"spendingVsBudgetScore"`
}

// DashboardSummary is the net-worth and month-to-date cash flow overview.
type DashboardSummary struct {
	TotalBalance  decimal.Decimal `json:"totalBalance"`
	MonthlySpend  decimal.Decimal `json:"monthlySpend"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	NetSavings    decimal.Decimal `json:"netSavings"`
}

// DashboardServicer defines the contract for dashboard aggregations.
type DashboardServicer interface {
	GetTodaySpending(ctx context.Context, userID string) (decimal.Decimal, error)
	GetMonthlyBudgetRemaining(ctx context.Context, userID string) (decimal.Decimal, error)
	GetGoalsProgress(ctx context.Context, userID string) (*GoalsProgressSummary, error)
	GetSpendingScore(ctx context.Context, userID string) (int, error)
	GetStats(ctx context.Context, userID string) (*DashboardStats, error)
	GetSummary(ctx context.Context, userID string) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

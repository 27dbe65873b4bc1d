package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"expensetracker/internal/config"
	"expensetracker/internal/email"
	"expensetracker/internal/handlers"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/models"
	"expensetracker/internal/services"
	"expensetracker/internal/testutil"
	"expensetracker/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database seeded with
// the default account types.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := testutil.OpenSQLite(fmt.Sprintf("integration%d", dbCounter.Add(1)))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	types := make([]models.AccountType, len(models.DefaultAccountTypes))
	copy(types, models.DefaultAccountTypes)
	if err := db.Create(&types).Error; err != nil {
		t.Fatalf("failed to seed account types: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       config.Get().JWTSecret,
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
		SocialMock:      true,
		SocialAutoLink:  true,
		DefaultLocale:   "en-US",
		DefaultTimezone: "UTC",
		FrontendURL:     "http://localhost:5173",
	}
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	cfg := testConfig()

	// Services
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	verifier := services.NewSocialVerifier(services.SocialVerifierOptions{Mock: true})
	authService := services.NewAuthService(db, userService, verifier, email.NewLogSender(logger.Get()), cfg)
	profileService := services.NewProfileService(db, userService)
	currencyService := services.NewCurrencyService(db)
	accountTypeService := services.NewAccountTypeService(db)
	accountService := services.NewAccountService(db)
	categoryService := services.NewCategoryService(db)
	transactionService := services.NewTransactionService(db)
	budgetService := services.NewBudgetService(db)
	goalService := services.NewGoalService(db)
	dashboardService := services.NewDashboardService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	profileHandler := handlers.NewProfileHandler(profileService, auditService)
	currencyHandler := handlers.NewCurrencyHandler(currencyService, auditService)
	accountHandler := handlers.NewAccountHandler(accountService, accountTypeService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	goalHandler := handlers.NewGoalHandler(goalService, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/social", authHandler.Social)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", profileHandler.GetProfile)
	protected.PUT("/profile", profileHandler.UpdateProfile)

	protected.POST("/currencies", currencyHandler.CreateCurrency)
	protected.DELETE("/currencies/:id", currencyHandler.DeleteCurrency)
	protected.GET("/account-types", accountHandler.GetAccountTypes)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.GET("/active", budgetHandler.GetActiveBudgets)
	budgets.GET("/status", budgetHandler.GetBudgetStatuses)
	budgets.GET("/status/:categoryId", budgetHandler.GetBudgetStatusByCategory)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("/progress", goalHandler.GetGoalProgress)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.GetStats)
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// parseJSONArray parses the response body into a slice of objects.
func parseJSONArray(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// mustCreate posts body to path, expects 201 and returns the new resource id.
func (app *testApp) mustCreate(t *testing.T, path, body, token string) string {
	t.Helper()
	rec := app.request("POST", path, body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST %s: expected 201, got %d: %s", path, rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["id"].(string)
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken, userID string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["accessToken"].(string), result["refreshToken"].(string), user["id"].(string)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["accessToken"].(string), result["refreshToken"].(string)
}

// accountTypeID returns the id of a seeded account type by name.
func (app *testApp) accountTypeID(t *testing.T, name string) string {
	t.Helper()
	var at models.AccountType
	if err := app.DB.Where("name = ?", name).First(&at).Error; err != nil {
		t.Fatalf("account type %q not seeded: %v", name, err)
	}
	return at.ID
}

// createCurrency adds USD for the signed-in user and returns its id.
func (app *testApp) createCurrency(t *testing.T, token string) string {
	t.Helper()
	return app.mustCreate(t, "/api/v1/currencies", `{"code":"USD","symbol":"$","name":"US Dollar"}`, token)
}

// createAccount creates a bank account in the given currency and returns its id.
func (app *testApp) createAccount(t *testing.T, token, currencyID, name, opening string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"accountTypeId":%q,"currencyId":%q,"openingBalance":%s}`,
		name, app.accountTypeID(t, "Bank Account"), currencyID, opening)
	return app.mustCreate(t, "/api/v1/accounts", body, token)
}

// createCategory creates a category of the given type and returns its id.
func (app *testApp) createCategory(t *testing.T, token, name string, categoryType models.CategoryType) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, categoryType)
	return app.mustCreate(t, "/api/v1/categories", body, token)
}

// spend records a transaction dated today and returns its id.
func (app *testApp) spend(t *testing.T, token, accountID, categoryID, amount string) string {
	t.Helper()
	body := fmt.Sprintf(`{"accountId":%q,"categoryId":%q,"amount":%s,"transactionDate":%q}`,
		accountID, categoryID, amount, time.Now().UTC().Format(time.RFC3339))
	return app.mustCreate(t, "/api/v1/transactions", body, token)
}

// assertCode checks the error code in an ErrorResponse body.
func assertCode(t *testing.T, rec *httptest.ResponseRecorder, code string) {
	t.Helper()
	detail, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error body, got %s", rec.Body.String())
	}
	if detail["code"] != code {
		t.Errorf("expected error code %s, got %v", code, detail["code"])
	}
}

// containsID reports whether a JSON array body holds an object with the given id.
func containsID(t *testing.T, body []byte, id string) bool {
	t.Helper()
	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("failed to parse JSON array: %v\nbody: %s", err, body)
	}
	for _, item := range items {
		if item["id"] == id {
			return true
		}
	}
	return false
}

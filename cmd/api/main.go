package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"expensetracker/internal/config"
	"expensetracker/internal/database"
	"expensetracker/internal/email"
	"expensetracker/internal/handlers"
	"expensetracker/internal/logger"
	"expensetracker/internal/middleware"
	"expensetracker/internal/services"
	"expensetracker/internal/validator"

	_ "expensetracker/internal/docs" // Import swagger docs
)

// @title           Expense Tracker API
// @version         1.0
// @description     Personal finance tracking: accounts, categories, transactions, monthly budgets and savings goals.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	mailer, closeMailer, err := newEmailSender(appConfig)
	if err != nil {
		return fmt.Errorf("failed to set up email delivery: %w", err)
	}
	defer closeMailer()

	validator.Register()

	// Services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	verifier := services.NewSocialVerifier(services.SocialVerifierOptions{
		Mock:           appConfig.SocialMock,
		GoogleClientID: appConfig.GoogleClientID,
	})
	authService := services.NewAuthService(db, userService, verifier, mailer, appConfig)
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

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(appConfig.CORSOrigin))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/social", authHandler.Social)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	profile := protected.Group("/profile")
	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.PUT("/password", profileHandler.ChangePassword)
	profile.PUT("/image", profileHandler.SetProfileImage)
	profile.GET("/accounts/:currencyId", profileHandler.GetAccountsByCurrency)

	currencies := protected.Group("/currencies")
	currencies.POST("", currencyHandler.CreateCurrency)
	currencies.GET("", currencyHandler.GetCurrencies)
	currencies.GET("/:id", currencyHandler.GetCurrency)
	currencies.PUT("/:id", currencyHandler.UpdateCurrency)
	currencies.DELETE("/:id", currencyHandler.DeleteCurrency)

	accountTypes := protected.Group("/account-types")
	accountTypes.GET("", accountHandler.GetAccountTypes)
	accountTypes.GET("/:id", accountHandler.GetAccountType)
	accountTypes.POST("", accountHandler.CreateAccountType)
	accountTypes.PUT("/:id", accountHandler.UpdateAccountType)
	accountTypes.DELETE("/:id", accountHandler.DeleteAccountType)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.POST("/:id/subcategories", categoryHandler.CreateSubCategory)
	categories.GET("/:id/subcategories", categoryHandler.GetSubCategories)
	categories.PUT("/subcategories/:id", categoryHandler.UpdateSubCategory)
	categories.DELETE("/subcategories/:id", categoryHandler.DeleteSubCategory)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)
	budgets.GET("/active", budgetHandler.GetActiveBudgets)
	budgets.GET("/history", budgetHandler.GetBudgetHistory)
	budgets.GET("/status", budgetHandler.GetBudgetStatuses)
	budgets.GET("/status/:categoryId", budgetHandler.GetBudgetStatusByCategory)

	goals := protected.Group("/goals")
	goals.POST("", goalHandler.CreateGoal)
	goals.GET("", goalHandler.GetGoals)
	goals.GET("/active", goalHandler.GetActiveGoals)
	goals.GET("/completed", goalHandler.GetCompletedGoals)
	goals.GET("/progress", goalHandler.GetGoalProgress)
	goals.GET("/:id", goalHandler.GetGoal)
	goals.PUT("/:id", goalHandler.UpdateGoal)
	goals.DELETE("/:id", goalHandler.DeleteGoal)
	goals.GET("/:id/exists", goalHandler.GoalExists)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/today-spending", dashboardHandler.GetTodaySpending)
	dashboard.GET("/monthly-budget-remaining", dashboardHandler.GetMonthlyBudgetRemaining)
	dashboard.GET("/goals-progress", dashboardHandler.GetGoalsProgress)
	dashboard.GET("/stats", dashboardHandler.GetStats)
	dashboard.GET("/summary", dashboardHandler.GetSummary)

	log.Infof("Starting expense tracker API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

// newEmailSender picks the configured delivery backend. The returned func
// releases any broker connection.
func newEmailSender(cfg *config.Config) (services.EmailSender, func(), error) {
	log := logger.Named("email")
	if cfg.EmailBackend != config.EmailBackendAMQP {
		return email.NewLogSender(log), func() {}, nil
	}

	sender, err := email.NewAMQPSender(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, log)
	if err != nil {
		return nil, nil, err
	}
	return sender, func() {
		if err := sender.Close(); err != nil {
			log.Warnf("amqp close error: %v", err)
		}
	}, nil
}

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quantfolio/internal/config"
	"quantfolio/internal/database"
	"quantfolio/internal/handlers"
	"quantfolio/internal/logger"
	"quantfolio/internal/middleware"
	"quantfolio/internal/services"
	"quantfolio/internal/validator"

	_ "quantfolio/internal/docs" // Import swagger docs
)

// @title           Quantfolio API
// @version         1.0
// @description     Quantfolio is an investment tracking application: user accounts, an investment catalog, per-user holdings, a buy/sell ledger, and an account activity feed.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	investmentService := services.NewInvestmentService(db)
	portfolioService := services.NewPortfolioService(db, investmentService)
	watchlistService := services.NewWatchlistService(db, investmentService)
	activityService := services.NewActivityService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, activityService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, activityService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, activityService)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Catalog pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/investments", investmentHandler.CreateInvestment)
	pipeline.DELETE("/investments/:id", investmentHandler.DeleteInvestment)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.DELETE("/profile", authHandler.DeleteProfile)

	// Catalog routes
	investments := protected.Group("/investments")
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/:id", investmentHandler.GetInvestment)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.POST("/buy", portfolioHandler.Buy)
	portfolio.POST("/sell", portfolioHandler.Sell)
	portfolio.GET("/assets", portfolioHandler.GetAssets)
	portfolio.GET("/transactions", portfolioHandler.GetTransactions)
	portfolio.GET("/transactions/:id", portfolioHandler.GetTransaction)

	// Watchlist routes
	watchlist := protected.Group("/watchlist")
	watchlist.POST("", watchlistHandler.Add)
	watchlist.GET("", watchlistHandler.List)
	watchlist.DELETE("/:id", watchlistHandler.Remove)

	// Activity feed
	protected.GET("/activity", activityHandler.List)

	log.Infof("Starting Quantfolio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quantfolio/internal/handlers"
	"quantfolio/internal/logger"
	"quantfolio/internal/middleware"
	"quantfolio/internal/models"
	"quantfolio/internal/services"
	"quantfolio/internal/validator"
)

const testPipelineKey = "test-pipeline-key"

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

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Investment{},
		&models.Asset{},
		&models.Transaction{},
		&models.ActivityLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	userService := services.NewUserService(db)
	investmentService := services.NewInvestmentService(db)
	portfolioService := services.NewPortfolioService(db, investmentService)
	watchlistService := services.NewWatchlistService(db, investmentService)
	activityService := services.NewActivityService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, activityService)
	investmentHandler := handlers.NewInvestmentHandler(investmentService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, activityService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, activityService)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Catalog pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(testPipelineKey))
	pipeline.POST("/investments", investmentHandler.CreateInvestment)
	pipeline.DELETE("/investments/:id", investmentHandler.DeleteInvestment)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/auth/logout", authHandler.Logout)

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)
	protected.DELETE("/profile", authHandler.DeleteProfile)

	investments := protected.Group("/investments")
	investments.GET("", investmentHandler.ListInvestments)
	investments.GET("/:id", investmentHandler.GetInvestment)

	portfolio := protected.Group("/portfolio")
	portfolio.POST("/buy", portfolioHandler.Buy)
	portfolio.POST("/sell", portfolioHandler.Sell)
	portfolio.GET("/assets", portfolioHandler.GetAssets)
	portfolio.GET("/transactions", portfolioHandler.GetTransactions)
	portfolio.GET("/transactions/:id", portfolioHandler.GetTransaction)

	watchlist := protected.Group("/watchlist")
	watchlist.POST("", watchlistHandler.Add)
	watchlist.GET("", watchlistHandler.List)
	watchlist.DELETE("/:id", watchlistHandler.Remove)

	protected.GET("/activity", activityHandler.List)

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

// pipelineRequest makes an HTTP request authenticated with the pipeline API key.
func (app *testApp) pipelineRequest(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testPipelineKey)
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

// assertDecimal compares a decimal JSON string field against an expected value
// numerically, so differing trailing zeros do not matter.
func assertDecimal(t *testing.T, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T (%v)", got, got)
	}
	g, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	if !g.Equal(decimal.RequireFromString(want)) {
		t.Errorf("decimal = %s, want %s", s, want)
	}
}

// errorCode extracts the error code from an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, username, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":%q}`, username, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, username, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":%q}`, username, password)
	rec := app.request("POST", "/api/v1/auth/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string), result["refresh_token"].(string)
}

// createInvestment creates a catalog entry through the pipeline API and returns its ID.
func (app *testApp) createInvestment(t *testing.T, name, investmentType string) float64 {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"type":%q}`, name, investmentType)
	rec := app.pipelineRequest("POST", "/api/v1/pipeline/investments", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create investment failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["id"].(float64)
}

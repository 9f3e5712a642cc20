package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/middleware"
	"quantfolio/internal/models"
	"quantfolio/internal/services"
)

// AuthHandler handles authentication and profile requests.
type AuthHandler struct {
	userService     services.UserServicer
	activityService services.ActivityServicer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService services.UserServicer, activityService services.ActivityServicer) *AuthHandler {
	return &AuthHandler{userService: userService, activityService: activityService}
}

// RegisterRequest represents the registration request payload.
type RegisterRequest struct {
	Username        string     `json:"username" binding:"required,min=1,max=150"`
	Email           string     `json:"email" binding:"required,email,max=255"`
	Password        string     `json:"password" binding:"required,max=128"`
	FullName        string     `json:"full_name" binding:"max=255"`
	PhoneNumber     string     `json:"phone_number" binding:"max=20"`
	Address         string     `json:"address" binding:"max=255"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	RiskProfile     string     `json:"risk_profile" binding:"omitempty,risk_profile"`
	AccountType     string     `json:"account_type" binding:"omitempty,account_type"`
	InvestmentGoals string     `json:"investment_goals"`
}

// LoginRequest represents the login request payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest represents the token refresh request payload.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents the logout request payload.
type LogoutRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UpdateProfileRequest represents the profile update payload; omitted
// fields are left unchanged.
type UpdateProfileRequest struct {
	FullName                *string        `json:"full_name,omitempty" binding:"omitempty,max=255"`
	PhoneNumber             *string        `json:"phone_number,omitempty" binding:"omitempty,max=20"`
	Address                 *string        `json:"address,omitempty" binding:"omitempty,max=255"`
	DateOfBirth             *time.Time     `json:"date_of_birth,omitempty"`
	ProfilePicture          *string        `json:"profile_picture,omitempty"`
	RiskProfile             *string        `json:"risk_profile,omitempty" binding:"omitempty,risk_profile"`
	InvestmentGoals         *string        `json:"investment_goals,omitempty"`
	PreferredInvestments    datatypes.JSON `json:"preferred_investments,omitempty"`
	NotificationPreferences datatypes.JSON `json:"notification_preferences,omitempty"`
	EmailSubscriptions      *bool          `json:"email_subscriptions,omitempty"`
	DailyDigestOptIn        *bool          `json:"daily_digest_opt_in,omitempty"`
}

// userPayload builds the user object returned by auth and profile endpoints.
func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":               user.ID,
		"username":         user.Username,
		"email":            user.Email,
		"full_name":        user.FullName,
		"account_type":     user.AccountType,
		"kyc_status":       user.KYCStatus,
		"risk_profile":     user.RiskProfile,
		"portfolio_value":  user.PortfolioValue,
		"investment_goals": user.InvestmentGoals,
	}
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with credentials and optional profile fields
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} map[string]interface{} "User registered and tokens generated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate email or username"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.CreateUser(services.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		Address:         req.Address,
		DateOfBirth:     req.DateOfBirth,
		RiskProfile:     models.RiskProfile(req.RiskProfile),
		AccountType:     models.AccountType(req.AccountType),
		InvestmentGoals: req.InvestmentGoals,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, refreshToken, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(user.ID, "register", "account created")

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          userPayload(user),
	})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate a user and issue access and refresh tokens
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} map[string]interface{} "User authenticated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.AttemptLogin(req.Username, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accessToken, refreshToken, err := h.issueTokens(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(user.ID, "login", "")

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user":          userPayload(user),
	})
}

// RefreshToken exchanges a valid refresh token for a new access token
// @Summary     Refresh access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RefreshRequest true "Refresh token"
// @Success     200 {object} map[string]interface{} "New access token"
// @Failure     401 {object} ErrorResponse "Invalid or revoked refresh token"
// @Router      /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}

	storedHash, err := h.userService.GetRefreshTokenHash(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}
	if storedHash == "" || storedHash != middleware.HashToken(req.RefreshToken) {
		respondWithError(c, apperrors.ErrTokenRevoked)
		return
	}

	user, err := h.userService.GetUserByID(claims.UserID)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}

	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": accessToken})
}

// Logout revokes the caller's refresh token
// @Summary     Logout user
// @Description Revoke the presented refresh token so it cannot be used again
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body LogoutRequest true "Refresh token to revoke"
// @Success     200 {object} map[string]interface{} "Logged out"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Malformed or already-revoked token"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	claims, err := middleware.ValidateRefreshToken(req.Refresh)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}
	// A caller may only revoke their own token.
	if claims.UserID != userID {
		respondWithError(c, apperrors.ErrInvalidRefreshToken)
		return
	}

	if err := h.userService.RevokeRefreshToken(userID, middleware.HashToken(req.Refresh)); err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "logout", "")

	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userPayload(user)})
}

// UpdateProfile updates the user's profile fields
// @Summary     Update user profile
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to update"
// @Success     200 {object} map[string]interface{} "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.ProfileUpdate{
		FullName:                req.FullName,
		PhoneNumber:             req.PhoneNumber,
		Address:                 req.Address,
		DateOfBirth:             req.DateOfBirth,
		ProfilePicture:          req.ProfilePicture,
		InvestmentGoals:         req.InvestmentGoals,
		PreferredInvestments:    req.PreferredInvestments,
		NotificationPreferences: req.NotificationPreferences,
		EmailSubscriptions:      req.EmailSubscriptions,
		DailyDigestOptIn:        req.DailyDigestOptIn,
	}
	if req.RiskProfile != nil {
		rp := models.RiskProfile(*req.RiskProfile)
		update.RiskProfile = &rp
	}

	user, err := h.userService.UpdateProfile(userID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.activityService.Log(userID, "profile_update", "")

	c.JSON(http.StatusOK, gin.H{"user": userPayload(user)})
}

// DeleteProfile deletes the user's account and all dependent records
// @Summary     Delete user account
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Account deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /profile [delete]
func (h *AuthHandler) DeleteProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// issueTokens generates an access/refresh token pair and stores the
// refresh token hash so it can later be revoked.
func (h *AuthHandler) issueTokens(user *models.User) (string, string, error) {
	accessToken, err := middleware.GenerateAccessToken(user)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	refreshToken, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		return "", "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := h.userService.StoreRefreshTokenHash(user.ID, middleware.HashToken(refreshToken)); err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

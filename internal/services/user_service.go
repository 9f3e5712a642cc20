package services

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "quantfolio/internal/errors"
	"quantfolio/internal/models"
)

const (
	maxFailedLoginAttempts = 5
	lockoutWindow          = 15 * time.Minute
)

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user. The create is atomic: on any validation
// failure no row is written.
func (s *userService) CreateUser(input RegisterInput) (*models.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username, email and password are required")
	}

	accountType := input.AccountType
	if accountType == "" {
		accountType = models.AccountTypePersonal
	}
	if !models.ValidAccountType(accountType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type")
	}
	if !models.ValidRiskProfile(input.RiskProfile) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid risk profile")
	}

	email := strings.ToLower(input.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}
	if err := s.db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateUsername
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Username:           input.Username,
		Email:              email,
		Password:           string(hashedPassword),
		FullName:           input.FullName,
		PhoneNumber:        input.PhoneNumber,
		Address:            input.Address,
		DateOfBirth:        input.DateOfBirth,
		RiskProfile:        input.RiskProfile,
		InvestmentGoals:    input.InvestmentGoals,
		AccountType:        accountType,
		KYCStatus:          models.KYCStatusNotStarted,
		EmailSubscriptions: true,
	}

	if err := s.db.Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, duplicateSentinel(err)
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (s *userService) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin authenticates a user by username and password, tracking
// failed attempts. Five failures inside the lockout window lock the account.
func (s *userService) AttemptLogin(username, password string) (*models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsSuspended {
		return nil, apperrors.ErrAccountSuspended
	}

	if user.FailedLoginAttempts >= maxFailedLoginAttempts &&
		user.LastFailedLoginAttempt != nil &&
		time.Since(*user.LastFailedLoginAttempt) < lockoutWindow {
		return nil, apperrors.ErrAccountLocked
	}

	if !s.VerifyPassword(user, password) {
		now := time.Now()
		updates := map[string]interface{}{
			"failed_login_attempts":     gorm.Expr("failed_login_attempts + 1"),
			"last_failed_login_attempt": now,
		}
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil, apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	updates := map[string]interface{}{
		"failed_login_attempts":     0,
		"last_failed_login_attempt": nil,
		"last_login_at":             now,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.FailedLoginAttempts = 0
	user.LastFailedLoginAttempt = nil
	user.LastLoginAt = &now

	return user, nil
}

// UpdateProfile applies the non-nil fields of update to the user's profile.
func (s *userService) UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.FullName != nil {
		updates["full_name"] = *update.FullName
	}
	if update.PhoneNumber != nil {
		updates["phone_number"] = *update.PhoneNumber
	}
	if update.Address != nil {
		updates["address"] = *update.Address
	}
	if update.DateOfBirth != nil {
		updates["date_of_birth"] = *update.DateOfBirth
	}
	if update.ProfilePicture != nil {
		updates["profile_picture"] = *update.ProfilePicture
	}
	if update.RiskProfile != nil {
		if !models.ValidRiskProfile(*update.RiskProfile) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid risk profile")
		}
		updates["risk_profile"] = *update.RiskProfile
	}
	if update.InvestmentGoals != nil {
		updates["investment_goals"] = *update.InvestmentGoals
	}
	if update.PreferredInvestments != nil {
		updates["preferred_investments"] = update.PreferredInvestments
	}
	if update.NotificationPreferences != nil {
		updates["notification_preferences"] = update.NotificationPreferences
	}
	if update.EmailSubscriptions != nil {
		updates["email_subscriptions"] = *update.EmailSubscriptions
	}
	if update.DailyDigestOptIn != nil {
		updates["daily_digest_opt_in"] = *update.DailyDigestOptIn
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetUserByID(userID)
}

// StoreRefreshTokenHash persists the hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(userID uint, tokenHash string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash for the user.
func (s *userService) GetRefreshTokenHash(userID uint) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// RevokeRefreshToken clears the user's stored refresh token hash if it
// matches tokenHash. A missing or mismatched hash means the token was
// already revoked or superseded.
func (s *userService) RevokeRefreshToken(userID uint, tokenHash string) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.RefreshTokenHash == "" ||
		subtle.ConstantTimeCompare([]byte(user.RefreshTokenHash), []byte(tokenHash)) != 1 {
		return apperrors.ErrTokenRevoked
	}

	if err := s.db.Model(user).Update("refresh_token_hash", "").Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// DeleteUser removes the user and all dependent rows (watchlist links,
// assets, transactions, activity logs) in a single transaction.
func (s *userService) DeleteUser(userID uint) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_watchlist WHERE user_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Asset{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.ActivityLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}

// duplicateSentinel maps a unique constraint violation to the sentinel for
// the column named in the constraint. Both drivers include the column or
// index name in the message ("users.username", "idx_users_username").
func duplicateSentinel(err error) *apperrors.AppError {
	if strings.Contains(err.Error(), "username") {
		return apperrors.ErrDuplicateUsername
	}
	return apperrors.ErrDuplicateEmail
}

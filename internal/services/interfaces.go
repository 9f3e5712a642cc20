package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"quantfolio/internal/models"
	"quantfolio/internal/pagination"
)

// RegisterInput carries the credential and profile fields accepted at registration.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	FullName        string
	PhoneNumber     string
	Address         string
	DateOfBirth     *time.Time
	RiskProfile     models.RiskProfile
	AccountType     models.AccountType
	InvestmentGoals string
}

// ProfileUpdate carries optional profile mutations; nil fields are left unchanged.
type ProfileUpdate struct {
	FullName                *string
	PhoneNumber             *string
	Address                 *string
	DateOfBirth             *time.Time
	ProfilePicture          *string
	RiskProfile             *models.RiskProfile
	InvestmentGoals         *string
	PreferredInvestments    datatypes.JSON
	NotificationPreferences datatypes.JSON
	EmailSubscriptions      *bool
	DailyDigestOptIn        *bool
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(input RegisterInput) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(username, password string) (*models.User, error)
	UpdateProfile(userID uint, update ProfileUpdate) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	RevokeRefreshToken(userID uint, tokenHash string) error
	DeleteUser(userID uint) error
}

// InvestmentServicer defines the contract for catalog management.
type InvestmentServicer interface {
	CreateInvestment(name, investmentType string) (*models.Investment, error)
	GetInvestmentByID(id uint) (*models.Investment, error)
	ListInvestments(page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	DeleteInvestment(id uint) error
}

// TransactionFilter holds optional filter parameters for listing ledger entries.
type TransactionFilter struct {
	InvestmentID *uint
	Type         *models.TransactionType
	FromDate     *time.Time
	ToDate       *time.Time
}

// PortfolioServicer defines the contract for holdings and the buy/sell ledger.
type PortfolioServicer interface {
	RecordBuy(userID, investmentID uint, quantity, price decimal.Decimal) (*models.Transaction, error)
	RecordSell(userID, investmentID uint, quantity, price decimal.Decimal) (*models.Transaction, error)
	GetUserAssets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Asset], error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
}

// WatchlistServicer defines the contract for the user watchlist relation.
type WatchlistServicer interface {
	Add(userID, investmentID uint) error
	Remove(userID, investmentID uint) error
	List(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
}

// ActivityServicer defines the contract for the account activity feed.
type ActivityServicer interface {
	Log(userID uint, activityType, details string)
	ListUserActivity(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.ActivityLog], error)
}
